package store

import (
	"fmt"

	"github.com/rohmanhakim/sitecrawler/pkg/failure"
)

type StoreErrorCause string

const (
	ErrCauseOpenFailed  StoreErrorCause = "open failed"
	ErrCauseWriteFailed StoreErrorCause = "write failed"
	ErrCauseReadFailed  StoreErrorCause = "read failed"
	ErrCauseNotFound    StoreErrorCause = "not found"
	ErrCauseDiskFull    StoreErrorCause = "disk full"
)

// StoreError wraps a Document Store failure. Writes that exhaust their
// retry budget against a full disk surface as Cause ErrCauseDiskFull and
// are always fatal.
type StoreError struct {
	Message   string
	Cause     StoreErrorCause
	Retryable bool
}

func (e *StoreError) Error() string { return fmt.Sprintf("store error: %s", e.Message) }

func (e *StoreError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *StoreError) IsRetryable() bool { return e.Retryable }
