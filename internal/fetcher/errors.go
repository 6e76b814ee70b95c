package fetcher

import (
	"fmt"
	"strconv"

	"github.com/rohmanhakim/sitecrawler/pkg/failure"
)

type FetchErrorCause string

const (
	ErrCauseTimeout          FetchErrorCause = "timeout"
	ErrCauseConnection       FetchErrorCause = "connection_error"
	ErrCauseTooManyRedirects FetchErrorCause = "too_many_redirects"
	ErrCauseInvalidEncoding  FetchErrorCause = "invalid_encoding"
	ErrCauseBadStatus        FetchErrorCause = "bad_status"
)

// FetchError wraps a failed HTTP fetch. Timeouts and connection failures are
// transient and retryable; redirect loops, undecodable bodies, and HTTP
// status errors are not, since retrying them will not change the server's
// answer.
type FetchError struct {
	URL        string
	Message    string
	Cause      FetchErrorCause
	StatusCode int
	Retryable  bool
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Message)
}

func (e *FetchError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *FetchError) IsRetryable() bool { return e.Retryable }

// Tag is the symbolic error tag this failure is recorded and counted under:
// the numeric HTTP status for a status error, the cause name otherwise.
func (e *FetchError) Tag() string {
	if e.Cause == ErrCauseBadStatus {
		return strconv.Itoa(e.StatusCode)
	}
	return string(e.Cause)
}
