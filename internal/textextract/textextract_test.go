package textextract_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/sitecrawler/internal/textextract"
)

func TestClient_ExtractJoinsTextElementsAndTakesFirstFilename(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseMultipartForm(10<<20))
		require.Equal(t, "auto", r.FormValue("strategy"))

		file, _, err := r.FormFile("files")
		require.NoError(t, err)
		defer file.Close()
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, "binary content", string(data))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"text":"first page","metadata":{"filename":"doc.pdf"}},
			{"text":"second page","metadata":{"filename":"doc.pdf"}}
		]`))
	}))
	defer server.Close()

	client := textextract.NewClient(server.URL, server.Client())
	text, title, err := client.Extract(context.Background(), "doc.pdf", []byte("binary content"))
	require.NoError(t, err)
	require.Equal(t, "first page second page", text)
	require.Equal(t, "doc.pdf", title)
}

func TestClient_ExtractEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := textextract.NewClient(server.URL, server.Client())
	text, title, err := client.Extract(context.Background(), "doc.pdf", []byte("data"))
	require.NoError(t, err)
	require.Equal(t, "", text)
	require.Equal(t, "", title)
}

func TestClient_ExtractServerErrorIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := textextract.NewClient(server.URL, server.Client())
	_, _, err := client.Extract(context.Background(), "doc.pdf", []byte("data"))
	require.Error(t, err)

	retryErr, ok := err.(interface{ IsRetryable() bool })
	require.True(t, ok)
	require.True(t, retryErr.IsRetryable())
}
