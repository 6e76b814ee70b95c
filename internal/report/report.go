package report

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Reporter tracks a single crawl's lifecycle and counters. The fixed
// counters are atomic so every worker goroutine can update them without a
// shared lock; the per-tag error counts share one mutex.
type Reporter struct {
	Name string

	total           int64
	cached          int64
	cachedRedirects int64
	fetched         int64
	newOrUpdated    int64

	errorMu sync.Mutex
	errors  map[string]int64

	lifecycleMu sync.Mutex
	startTime   time.Time
	endTime     time.Time
	done        bool

	log zerolog.Logger
}

func NewReporter(name string, log zerolog.Logger) *Reporter {
	return &Reporter{
		Name:      name,
		errors:    make(map[string]int64),
		startTime: time.Now(),
		log:       log.With().Str("crawl", name).Logger(),
	}
}

func (r *Reporter) IncTotal()           { atomic.AddInt64(&r.total, 1) }
func (r *Reporter) IncCached()          { atomic.AddInt64(&r.cached, 1) }
func (r *Reporter) IncCachedRedirect()  { atomic.AddInt64(&r.cachedRedirects, 1) }
func (r *Reporter) IncFetched()         { atomic.AddInt64(&r.fetched, 1) }
func (r *Reporter) IncNewOrUpdated()    { atomic.AddInt64(&r.newOrUpdated, 1) }

func (r *Reporter) IncError(tag string) {
	r.errorMu.Lock()
	defer r.errorMu.Unlock()
	r.errors[tag]++
}

// Finish marks the crawl as complete, fixing EndTime for Report().
func (r *Reporter) Finish() {
	r.lifecycleMu.Lock()
	r.endTime = time.Now()
	r.done = true
	r.lifecycleMu.Unlock()
	r.log.Info().
		Int64("total", atomic.LoadInt64(&r.total)).
		Int64("fetched", atomic.LoadInt64(&r.fetched)).
		Str("duration", FormatDuration(r.endTime.Sub(r.startTime))).
		Msg("crawl finished")
}

// Snapshot is the point-in-time, JSON-friendly view Report() returns.
type Snapshot struct {
	Name            string           `json:"name"`
	Total           int64            `json:"total"`
	Cached          int64            `json:"cached"`
	CachedRedirects int64            `json:"cached_redirects"`
	Fetched         int64            `json:"fetched"`
	NewOrUpdated    int64            `json:"new_or_updated"`
	Errors          map[string]int64 `json:"errors"`
	StartTime       time.Time        `json:"start_time"`
	EndTime         string           `json:"end_time"`
	Duration        string           `json:"duration"`
}

func (r *Reporter) Report() Snapshot {
	r.errorMu.Lock()
	errorsCopy := make(map[string]int64, len(r.errors))
	for k, v := range r.errors {
		errorsCopy[k] = v
	}
	r.errorMu.Unlock()

	r.lifecycleMu.Lock()
	endTime := "still running"
	duration := FormatDuration(time.Since(r.startTime))
	if r.done {
		endTime = r.endTime.Format(time.RFC3339)
		duration = FormatDuration(r.endTime.Sub(r.startTime))
	}
	startTime := r.startTime
	r.lifecycleMu.Unlock()

	return Snapshot{
		Name:            r.Name,
		Total:           atomic.LoadInt64(&r.total),
		Cached:          atomic.LoadInt64(&r.cached),
		CachedRedirects: atomic.LoadInt64(&r.cachedRedirects),
		Fetched:         atomic.LoadInt64(&r.fetched),
		NewOrUpdated:    atomic.LoadInt64(&r.newOrUpdated),
		Errors:          errorsCopy,
		StartTime:       startTime,
		EndTime:         endTime,
		Duration:        duration,
	}
}
