package store_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/sitecrawler/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.crawl")
	s, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_PutHTMLRoundTripsBodyAndContentType(t *testing.T) {
	s := openTestStore(t)

	body := "<html><body>hello</body></html>"
	record := store.Record{URI: "https://example.com/", ContentType: "text/html"}
	require.NoError(t, s.PutHTML("https://example.com/", body, record))

	got, found, err := s.GetRecord("https://example.com/")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, body, got.Content)
	require.Equal(t, "text/html", got.ContentType)
	require.Equal(t, store.RecordTypeContent, got.Type)

	// HTML bodies live in the record, never in a blob
	_, blobFound, err := s.GetBlob("https://example.com/")
	require.NoError(t, err)
	require.False(t, blobFound)
}

func TestStore_GetRecordMissingKey(t *testing.T) {
	s := openTestStore(t)

	_, found, err := s.GetRecord("https://example.com/missing")
	require.NoError(t, err)
	require.False(t, found)
}

func TestStore_PutBlobWritesRecordAndBytes(t *testing.T) {
	s := openTestStore(t)

	record := store.Record{URI: "https://example.com/file.pdf", ContentType: "application/pdf"}
	require.NoError(t, s.PutBlob("https://example.com/file.pdf", []byte("%PDF-1.4 ..."), record))

	got, found, err := s.GetRecord("https://example.com/file.pdf")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, store.BinaryContentPlaceholder, got.Content)
	require.Equal(t, store.RecordTypeContent, got.Type)

	blob, blobFound, err := s.GetBlob("https://example.com/file.pdf")
	require.NoError(t, err)
	require.True(t, blobFound)
	require.Equal(t, []byte("%PDF-1.4 ..."), blob)
}

func TestStore_OverwritingBinaryWithHTMLDropsBlob(t *testing.T) {
	s := openTestStore(t)
	key := "https://example.com/doc"

	require.NoError(t, s.PutBlob(key, []byte("bytes"), store.Record{URI: key, ContentType: "application/pdf"}))
	require.NoError(t, s.PutHTML(key, "<html></html>", store.Record{URI: key, ContentType: "text/html"}))

	_, blobFound, err := s.GetBlob(key)
	require.NoError(t, err)
	require.False(t, blobFound)
}

func TestStore_SetField(t *testing.T) {
	s := openTestStore(t)
	key := "https://example.com/"

	require.NoError(t, s.PutHTML(key, "<html></html>", store.Record{URI: key, ContentType: "text/html"}))
	require.NoError(t, s.SetField(key, "category", "docs"))

	got, _, err := s.GetRecord(key)
	require.NoError(t, err)
	require.Equal(t, "docs", got.Fields["category"])
}

func TestStore_SetFieldMissingKeyFails(t *testing.T) {
	s := openTestStore(t)
	require.Error(t, s.SetField("https://example.com/none", "x", "y"))
}

func TestStore_IterateSkipsBlobKeys(t *testing.T) {
	s := openTestStore(t)

	record := store.Record{URI: "https://example.com/a.pdf", ContentType: "application/pdf"}
	require.NoError(t, s.PutBlob("https://example.com/a.pdf", []byte("raw bytes"), record))

	count := 0
	err := s.Iterate(func(key string, r store.Record) bool {
		count++
		require.Equal(t, "https://example.com/a.pdf", key)
		return true
	})
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestStore_FilterByField(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.PutHTML("https://example.com/a", "<html></html>", store.Record{URI: "https://example.com/a", ContentType: "text/html"}))
	require.NoError(t, s.PutHTML("https://example.com/b", "<html></html>", store.Record{URI: "https://example.com/b", ContentType: "text/html"}))
	require.NoError(t, s.SetField("https://example.com/a", "category", "docs"))
	require.NoError(t, s.SetField("https://example.com/b", "category", "blog"))

	keys, err := s.FilterByField("category", "docs")
	require.NoError(t, err)
	require.Equal(t, []string{"https://example.com/a"}, keys)

	// typed base fields filter the same way
	keys, err = s.FilterByField("uri", "https://example.com/b")
	require.NoError(t, err)
	require.Equal(t, []string{"https://example.com/b"}, keys)
}

func TestStore_FilterByType(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.PutRecord("https://example.com/ok", store.Record{Type: store.RecordTypeContent}))
	require.NoError(t, s.PutRecord("https://example.com/bad", store.Record{Type: store.RecordTypeError}))

	keys, err := s.FilterByType(store.RecordTypeError)
	require.NoError(t, err)
	require.Equal(t, []string{"https://example.com/bad"}, keys)
}

func TestStore_DeleteRemovesRecordAndBlob(t *testing.T) {
	s := openTestStore(t)
	key := "https://example.com/x.pdf"

	require.NoError(t, s.PutBlob(key, []byte("data"), store.Record{URI: key, ContentType: "application/pdf"}))
	require.NoError(t, s.Delete(key))

	_, found, err := s.GetRecord(key)
	require.NoError(t, err)
	require.False(t, found)

	_, found, err = s.GetBlob(key)
	require.NoError(t, err)
	require.False(t, found)
}

func TestRecord_HasContentBlob(t *testing.T) {
	require.True(t, store.Record{Type: store.RecordTypeContent, ContentType: "application/pdf"}.HasContentBlob())
	require.False(t, store.Record{Type: store.RecordTypeContent, ContentType: "text/html"}.HasContentBlob())
	require.False(t, store.Record{Type: store.RecordTypeRedirect}.HasContentBlob())
	require.False(t, store.Record{Type: store.RecordTypeError}.HasContentBlob())
}
