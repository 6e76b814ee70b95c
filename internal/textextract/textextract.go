package textextract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/rohmanhakim/sitecrawler/pkg/failure"
)

// Client talks to the binary-text extraction service: a multipart POST
// carrying the binary's bytes, answering with the plain-text
// content the Extractor merges into a binary content record's fields. The
// service itself is an external collaborator; only the client side lives
// here.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

// element is one entry of the service's JSON array response.
type element struct {
	Text     string `json:"text"`
	Metadata struct {
		Filename string `json:"filename"`
	} `json:"metadata"`
}

// Extract posts filename/data as a multipart file field "files" with
// strategy=auto. The service answers with an array of text elements; the
// joined text and the first element's filename (as title) come back.
func (c *Client) Extract(ctx context.Context, filename string, data []byte) (text, title string, cerr failure.ClassifiedError) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("strategy", "auto"); err != nil {
		return "", "", &ClientError{Message: err.Error(), Retryable: false}
	}
	part, err := writer.CreateFormFile("files", filename)
	if err != nil {
		return "", "", &ClientError{Message: err.Error(), Retryable: false}
	}
	if _, err := part.Write(data); err != nil {
		return "", "", &ClientError{Message: err.Error(), Retryable: false}
	}
	if err := writer.Close(); err != nil {
		return "", "", &ClientError{Message: err.Error(), Retryable: false}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, &body)
	if err != nil {
		return "", "", &ClientError{Message: err.Error(), Retryable: false}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", &ClientError{Message: err.Error(), Retryable: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return "", "", &ClientError{Message: fmt.Sprintf("status %d", resp.StatusCode), Retryable: true}
	}
	if resp.StatusCode >= 400 {
		return "", "", &ClientError{Message: fmt.Sprintf("status %d", resp.StatusCode), Retryable: false}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", &ClientError{Message: err.Error(), Retryable: true}
	}

	var elements []element
	if err := json.Unmarshal(raw, &elements); err != nil {
		return "", "", &ClientError{Message: err.Error(), Retryable: false}
	}

	texts := make([]string, 0, len(elements))
	for _, el := range elements {
		texts = append(texts, el.Text)
	}
	if len(elements) > 0 {
		title = elements[0].Metadata.Filename
	}
	return strings.Join(texts, " "), title, nil
}

type ClientError struct {
	Message   string
	Retryable bool
}

func (e *ClientError) Error() string { return fmt.Sprintf("text extraction: %s", e.Message) }

func (e *ClientError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *ClientError) IsRetryable() bool { return e.Retryable }
