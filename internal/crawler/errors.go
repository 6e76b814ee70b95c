package crawler

import (
	"fmt"

	"github.com/rohmanhakim/sitecrawler/pkg/failure"
)

// CrawlError wraps a failure encountered while processing one URL. It is
// always recoverable at the crawl level: one bad URL never aborts the
// crawl, it is simply recorded as an error record and the Scheduler moves
// on. A fatal ClassifiedError from a lower layer (Store, config) still
// propagates up and stops the crawl.
type CrawlError struct {
	URL     string
	Tag     string
	Message string
}

func (e *CrawlError) Error() string {
	return fmt.Sprintf("crawl %s [%s]: %s", e.URL, e.Tag, e.Message)
}

func (e *CrawlError) Severity() failure.Severity { return failure.SeverityRecoverable }
