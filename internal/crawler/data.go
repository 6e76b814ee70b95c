package crawler

// QMsg is one unit of frontier work: a discovered URL, where it was
// discovered from, its depth from a starting URL, and how many times it
// has already been retried.
type QMsg struct {
	SourceURL  string
	URL        string
	Depth      int
	RetryCount int
}

// Transient transport failures are recorded under the fetcher's symbolic
// cause name (timeout, connection_error, too_many_redirects,
// invalid_encoding), HTTP status errors under the numeric status, and
// TagException is the catch-all for anything the dispatch doesn't
// recognise.
const TagException = "exception"
