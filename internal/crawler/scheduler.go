package crawler

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rohmanhakim/sitecrawler/internal/cache"
	"github.com/rohmanhakim/sitecrawler/internal/config"
	"github.com/rohmanhakim/sitecrawler/internal/fetcher"
	"github.com/rohmanhakim/sitecrawler/internal/linkextract"
	"github.com/rohmanhakim/sitecrawler/internal/report"
	"github.com/rohmanhakim/sitecrawler/internal/scope"
	"github.com/rohmanhakim/sitecrawler/internal/store"
	"github.com/rohmanhakim/sitecrawler/pkg/failure"
	"github.com/rohmanhakim/sitecrawler/pkg/hashutil"
	"github.com/rohmanhakim/sitecrawler/pkg/mediatype"
)

// Scheduler drives a single bounded-depth crawl with a pool of N
// concurrently scheduled worker goroutines pulling from a shared frontier
// queue. Workers are preemptible, so the seen set and every Reporter
// counter are guarded.
type Scheduler struct {
	settings config.CrawlSettings
	store    *store.Store
	fetcher  fetcher.Fetcher
	filter   *scope.Filter
	cache    *cache.Layer
	reporter *report.Reporter
	log      zerolog.Logger
}

func NewScheduler(
	settings config.CrawlSettings,
	s *store.Store,
	f fetcher.Fetcher,
	filter *scope.Filter,
	cacheLayer *cache.Layer,
	reporter *report.Reporter,
	log zerolog.Logger,
) *Scheduler {
	return &Scheduler{
		settings: settings,
		store:    s,
		fetcher:  f,
		filter:   filter,
		cache:    cacheLayer,
		reporter: reporter,
		log:      log.With().Str("crawl", settings.Name).Logger(),
	}
}

// Run drives the crawl to completion: every starting URL and every in-scope
// link discovered along the way is visited at most once, up to max_depth
// and max_pages, and Run returns once the frontier is exhausted.
func (s *Scheduler) Run(ctx context.Context) failure.ClassifiedError {
	seeds := []string(s.settings.StartingURLs)
	maxDepth := s.settings.MaxDepth
	if s.settings.IsSitemap {
		// sitemap seeds expand into the page URLs they list, and the crawl
		// fetches exactly those pages: depth 1 discards every outbound link.
		seeds = ExpandSitemaps(ctx, s.fetcher, seeds, s.settings.Headers, s.log)
		maxDepth = 1
	}

	seen := NewSet[string]()
	frontier := NewFIFOQueue[QMsg]()

	// pending counts messages enqueued but not yet fully processed; the
	// frontier is closed exactly when it reaches zero: queue drained and
	// every dispatched task done.
	var pending sync.WaitGroup
	var workersDone sync.WaitGroup
	var fatalMu sync.Mutex
	var fatalErr failure.ClassifiedError

	enqueue := func(msg QMsg) {
		if maxDepth > 0 && msg.Depth >= maxDepth {
			return
		}
		if !seen.AddBounded(msg.URL, boundedLimit(s.settings.MaxPages)) {
			return
		}
		pending.Add(1)
		frontier.Push(msg)
	}

	// retry re-submits a claimed URL after a transient failure without
	// touching the seen set: the URL stays claimed, so no other worker can
	// start a parallel fetch of it in the meantime.
	retry := func(msg QMsg) {
		pending.Add(1)
		frontier.Push(msg)
	}

	for _, u := range seeds {
		enqueue(QMsg{URL: u, Depth: 0})
	}

	workers := s.settings.Concurrency
	if workers < 1 {
		workers = 1
	}
	workersDone.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer workersDone.Done()
			for {
				msg, ok := frontier.PopBlocking()
				if !ok {
					return
				}
				if err := s.process(ctx, msg, seen, enqueue, retry); err != nil && err.Severity() == failure.SeverityFatal {
					fatalMu.Lock()
					if fatalErr == nil {
						fatalErr = err
					}
					fatalMu.Unlock()
				}
				pending.Done()
			}
		}()
	}

	go func() {
		pending.Wait()
		frontier.Close()
	}()

	workersDone.Wait()
	s.reporter.Finish()

	fatalMu.Lock()
	defer fatalMu.Unlock()
	return fatalErr
}

func boundedLimit(maxPages int) int {
	if maxPages <= 0 {
		return 0
	}
	return maxPages + 1
}

func (s *Scheduler) process(ctx context.Context, msg QMsg, seen *Set[string], enqueue, retry func(QMsg)) failure.ClassifiedError {
	if ctx.Err() != nil {
		return nil
	}
	s.reporter.IncTotal()

	if !s.filter.Accept(msg.URL) {
		return nil
	}

	decision, err := s.cache.Check(msg.URL)
	if err != nil {
		return err
	}

	switch decision.Decision {
	case cache.DecisionHitContent:
		// a cache hit still walks the stored page's links: the frontier is
		// rebuilt from the cached bodies exactly as it would be from fresh
		// fetches.
		s.reporter.IncCached()
		s.followStoredLinks(msg.URL, msg.Depth, decision.Record, enqueue)
		return nil
	case cache.DecisionHitRedirect:
		// follow the stored redirect mapping once: a fresh content record
		// at the target serves as the response body, anything else sends
		// the target through its own fetch path.
		s.reporter.IncCachedRedirect()
		target, err := s.cache.Check(decision.RedirectTo)
		if err != nil {
			return err
		}
		if target.Decision == cache.DecisionHitContent {
			s.followStoredLinks(decision.RedirectTo, msg.Depth, target.Record, enqueue)
			return nil
		}
		enqueue(QMsg{SourceURL: msg.URL, URL: decision.RedirectTo, Depth: msg.Depth})
		return nil
	}

	return s.fetchAndStore(ctx, msg, seen, enqueue, retry)
}

// followStoredLinks re-extracts outbound links from a cached HTML record's
// stored body. Binary records have no links to follow.
func (s *Scheduler) followStoredLinks(pageURL string, depth int, record store.Record, enqueue func(QMsg)) {
	if !mediatype.IsHTML(record.ContentType) {
		return
	}
	s.followLinks(pageURL, depth, []byte(record.Content), enqueue)
}

func (s *Scheduler) fetchAndStore(ctx context.Context, msg QMsg, seen *Set[string], enqueue, retry func(QMsg)) failure.ClassifiedError {
	result, fetchErr := s.fetcher.Fetch(ctx, fetcher.FetchParam{URL: msg.URL, Headers: s.settings.Headers})
	if fetchErr != nil {
		return s.handleFetchError(msg, fetchErr, retry)
	}
	s.reporter.IncFetched()

	if result.Outcome == fetcher.OutcomeInvalidContentType {
		// not an error: the URL simply isn't content this crawl keeps.
		return nil
	}

	key := msg.URL
	if result.Redirected(msg.URL) {
		record := store.Record{Type: store.RecordTypeRedirect, URI: msg.URL, RedirectedURL: result.FinalURL}
		if err := s.store.PutRecord(msg.URL, record); err != nil {
			return err
		}
		// the body in hand is the final URL's content; claim that URL now.
		// If another worker already claimed it, this response is a
		// duplicate and is dropped without emitting anything.
		if !seen.AddBounded(result.FinalURL, boundedLimit(s.settings.MaxPages)) {
			return nil
		}
		key = result.FinalURL
	}

	if err := s.storeContent(key, result); err != nil {
		return err
	}

	if result.Outcome == fetcher.OutcomeHTML {
		s.followLinks(key, msg.Depth, result.Body, enqueue)
	}
	return nil
}

// storeContent writes (or refreshes) the content record for key. An
// existing content record is only overwritten when the server's
// Last-Modified changed or was previously absent; an unchanged page keeps
// its record, extraction fields included.
func (s *Scheduler) storeContent(key string, result fetcher.FetchResult) failure.ClassifiedError {
	existing, found, err := s.store.GetRecord(key)
	if err != nil {
		return err
	}
	if found && existing.Type == store.RecordTypeContent &&
		existing.ServerLastModified != "" &&
		existing.ServerLastModified == result.ServerLastModified {
		return nil
	}

	record := store.Record{
		Type:               store.RecordTypeContent,
		URI:                key,
		ContentType:        result.ContentType,
		Crawled:            float64(time.Now().UnixNano()) / float64(time.Second),
		ServerLastModified: result.ServerLastModified,
		ContentHash:        hashutil.HashContent(result.Body),
	}
	if result.Outcome == fetcher.OutcomeBinary {
		err = s.store.PutBlob(key, result.Body, record)
	} else {
		err = s.store.PutHTML(key, string(result.Body), record)
	}
	if err != nil {
		return err
	}
	s.reporter.IncNewOrUpdated()
	return nil
}

func (s *Scheduler) followLinks(pageURL string, depth int, body []byte, enqueue func(QMsg)) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return
	}
	links, err := linkextract.Extract(base, body)
	if err != nil {
		return
	}
	for _, link := range links {
		if s.filter.Accept(link) {
			enqueue(QMsg{SourceURL: pageURL, URL: link, Depth: depth + 1})
		}
	}
}

// handleFetchError normalises a failed fetch into an error record and a
// per-tag counter bump: transient transport failures keep their symbolic
// tag, an HTTP status error is tagged with its numeric status, anything
// unrecognised is tagged "exception".
func (s *Scheduler) handleFetchError(msg QMsg, fetchErr failure.ClassifiedError, retry func(QMsg)) failure.ClassifiedError {
	tag := TagException
	retryable := false
	var fe *fetcher.FetchError
	if errors.As(fetchErr, &fe) {
		tag = fe.Tag()
		retryable = fe.IsRetryable()

		if fe.Cause == fetcher.ErrCauseBadStatus {
			event := s.log.Warn().Str("url", msg.URL).Int("status", fe.StatusCode)
			if fe.StatusCode >= 500 {
				event.Msg("server error")
			} else {
				event.Msg("client error")
			}
		} else {
			s.log.Warn().Str("url", msg.URL).Str("tag", tag).Msg("fetch failed")
		}
	} else {
		s.log.Warn().Str("url", msg.URL).Err(fetchErr).Msg("fetch failed")
	}

	if s.settings.RetryEnabled && retryable && msg.RetryCount < s.settings.MaxRetries {
		retry(QMsg{SourceURL: msg.SourceURL, URL: msg.URL, Depth: msg.Depth, RetryCount: msg.RetryCount + 1})
		return nil
	}

	record := store.Record{
		Type:      store.RecordTypeError,
		URI:       msg.URL,
		Content:   fetchErr.Error(),
		ErrorCode: tag,
	}
	if err := s.store.PutRecord(msg.URL, record); err != nil {
		return err
	}
	s.reporter.IncError(tag)
	return nil
}
