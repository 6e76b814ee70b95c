package articleparser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rohmanhakim/sitecrawler/pkg/failure"
)

// Article is the parsed result for one URL. Absent fields
// stay empty; the Extractor only merges what the service returned.
type Article struct {
	Headline    string `json:"headline,omitempty"`
	ArticleBody string `json:"articleBody,omitempty"`
	Description string `json:"description,omitempty"`
	MainImage   *struct {
		URL string `json:"url"`
	} `json:"mainImage,omitempty"`
	DatePublishedRaw string `json:"datePublishedRaw,omitempty"`
	DateModifiedRaw  string `json:"dateModifiedRaw,omitempty"`
}

// Response pairs one requested URL with its parsed article, or with the
// per-item error that caused the service to drop it.
type Response struct {
	URL     string   `json:"url"`
	Article *Article `json:"article,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Client talks to the batched article-parsing service: one POST carries
// every URL to parse, the response carries one item per URL. Like
// internal/textextract, this is an external collaborator; only the
// client-side batching and decoding is implemented here.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, apiKey: apiKey, httpClient: httpClient}
}

// ParseBatch submits urls in a single request and returns one Response per
// URL the service answered for. Per-item failures come back with Error set;
// the caller logs and drops those items rather than failing the pass.
func (c *Client) ParseBatch(ctx context.Context, urls []string) ([]Response, failure.ClassifiedError) {
	payload := struct {
		URLs []string `json:"urls"`
	}{URLs: urls}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, &ClientError{Message: err.Error(), Retryable: false}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(encoded))
	if err != nil {
		return nil, &ClientError{Message: err.Error(), Retryable: false}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.SetBasicAuth(c.apiKey, "")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ClientError{Message: err.Error(), Retryable: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, &ClientError{Message: fmt.Sprintf("status %d", resp.StatusCode), Retryable: true}
	}
	if resp.StatusCode >= 400 {
		return nil, &ClientError{Message: fmt.Sprintf("status %d", resp.StatusCode), Retryable: false}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ClientError{Message: err.Error(), Retryable: true}
	}

	var decoded []Response
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &ClientError{Message: err.Error(), Retryable: false}
	}
	return decoded, nil
}

// Fields flattens an Article into the field names the Extractor merges into
// a content record: title, content, description, image, datePublishedRaw,
// dateModifiedRaw. Absent article fields are omitted.
func (a *Article) Fields() map[string]any {
	fields := make(map[string]any)
	if a.Headline != "" {
		fields["title"] = a.Headline
	}
	if a.ArticleBody != "" {
		fields["content"] = a.ArticleBody
	}
	if a.Description != "" {
		fields["description"] = a.Description
	}
	if a.MainImage != nil && a.MainImage.URL != "" {
		fields["image"] = a.MainImage.URL
	}
	if a.DatePublishedRaw != "" {
		fields["datePublishedRaw"] = a.DatePublishedRaw
	}
	if a.DateModifiedRaw != "" {
		fields["dateModifiedRaw"] = a.DateModifiedRaw
	}
	return fields
}

type ClientError struct {
	Message   string
	Retryable bool
}

func (e *ClientError) Error() string { return fmt.Sprintf("article parser: %s", e.Message) }

func (e *ClientError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *ClientError) IsRetryable() bool { return e.Retryable }
