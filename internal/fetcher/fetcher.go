package fetcher

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rohmanhakim/sitecrawler/pkg/failure"
	"github.com/rohmanhakim/sitecrawler/pkg/mediatype"
)

// maxRedirects bounds redirect following per request; beyond this the
// fetch is a redirect loop, not a transient failure.
const maxRedirects = 30

// redirectStopMarker lets the error path distinguish our own CheckRedirect
// rejection from an ordinary transport failure after http.Client wraps it.
const redirectStopMarker = "stopped after maximum redirects"

const DefaultTimeout = 10 * time.Second

// Fetcher performs a single GET per call. The crawler's caching layer
// decides whether a fetch is needed at all; the Fetcher itself never
// consults or writes to the Document Store.
type Fetcher interface {
	Fetch(ctx context.Context, param FetchParam) (FetchResult, failure.ClassifiedError)
}

// HTTPFetcher is the production Fetcher: a single shared http.Client with a
// bounded redirect policy and certificate verification disabled, since many
// crawl targets present self-signed or otherwise untrusted certificates this
// crawler still needs to read.
type HTTPFetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

func NewHTTPFetcher(userAgent string, timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPFetcher{
		client: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("%s (%d)", redirectStopMarker, maxRedirects)
				}
				return nil
			},
		},
		timeout:   timeout,
		userAgent: userAgent,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, param FetchParam) (FetchResult, failure.ClassifiedError) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, param.URL, nil)
	if err != nil {
		return FetchResult{}, &FetchError{URL: param.URL, Message: err.Error(), Cause: ErrCauseConnection, Retryable: false}
	}
	req.Header.Set("User-Agent", f.userAgent)
	for k, v := range param.Headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return FetchResult{}, classifyTransportError(param.URL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FetchResult{}, classifyTransportError(param.URL, err)
	}

	if resp.StatusCode >= 400 {
		return FetchResult{}, &FetchError{
			URL:        param.URL,
			Message:    fmt.Sprintf("status %d", resp.StatusCode),
			Cause:      ErrCauseBadStatus,
			StatusCode: resp.StatusCode,
			Retryable:  false,
		}
	}

	finalURL := param.URL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	contentType := resp.Header.Get("Content-Type")

	if mediatype.IsHTML(contentType) && !utf8.Valid(body) {
		return FetchResult{}, &FetchError{
			URL:       param.URL,
			Message:   "response body is not valid UTF-8",
			Cause:     ErrCauseInvalidEncoding,
			Retryable: false,
		}
	}

	return FetchResult{
		Outcome:            classify(contentType),
		FinalURL:           finalURL,
		Body:               body,
		ContentType:        contentType,
		ServerLastModified: resp.Header.Get("Last-Modified"),
		Header:             resp.Header,
		StatusCode:         resp.StatusCode,
	}, nil
}

func classifyTransportError(url string, err error) *FetchError {
	switch {
	case strings.Contains(err.Error(), redirectStopMarker):
		return &FetchError{URL: url, Message: err.Error(), Cause: ErrCauseTooManyRedirects, Retryable: false}
	case errors.Is(err, context.DeadlineExceeded):
		return &FetchError{URL: url, Message: err.Error(), Cause: ErrCauseTimeout, Retryable: true}
	default:
		return &FetchError{URL: url, Message: err.Error(), Cause: ErrCauseConnection, Retryable: true}
	}
}
