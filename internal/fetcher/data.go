package fetcher

import (
	"net/http"

	"github.com/rohmanhakim/sitecrawler/pkg/mediatype"
)

// FetchParam describes a single fetch request.
type FetchParam struct {
	URL     string
	Headers map[string]string
}

// FetchOutcome classifies what a fetch produced, separately from transport
// errors: a successful HTTP round trip can still be "not content we keep".
type FetchOutcome string

const (
	OutcomeHTML               FetchOutcome = "html"
	OutcomeBinary             FetchOutcome = "binary"
	OutcomeInvalidContentType FetchOutcome = "invalid-content-type"
)

// FetchResult is what a completed fetch yields. FinalURL is the post-redirect
// URL; callers compare it to the requested URL to detect that a redirect
// mapping should be recorded. The body is classified by content type into
// HTML, allowed binary, or invalid regardless of whether redirects occurred
// along the way.
type FetchResult struct {
	Outcome            FetchOutcome
	FinalURL           string
	Body               []byte
	ContentType        string
	ServerLastModified string
	Header             http.Header
	StatusCode         int
}

// Redirected reports whether the response was served from a different URL
// than the one requested.
func (r FetchResult) Redirected(requested string) bool {
	return r.FinalURL != "" && r.FinalURL != requested
}

func classify(contentType string) FetchOutcome {
	switch {
	case mediatype.IsHTML(contentType):
		return OutcomeHTML
	case mediatype.IsBinary(contentType):
		return OutcomeBinary
	default:
		return OutcomeInvalidContentType
	}
}
