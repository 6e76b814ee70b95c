package cache

import (
	"time"

	"github.com/rohmanhakim/sitecrawler/internal/store"
	"github.com/rohmanhakim/sitecrawler/pkg/failure"
)

// Decision is what the Caching Layer tells the Scheduler to do with a URL
// before it ever reaches the Fetcher.
type Decision string

const (
	DecisionFetch       Decision = "fetch"
	DecisionHitContent  Decision = "hit-content"
	DecisionHitRedirect Decision = "hit-redirect"
)

// Result carries the decision plus, for a content hit, the cached record
// itself, and for a redirect hit the URL to follow next (followed at most
// once).
type Result struct {
	Decision   Decision
	Record     store.Record
	RedirectTo string
}

// Layer consults the Document Store before a fetch is attempted.
// cacheTTLHours < 0 disables expiry entirely: a cached content record is
// always a hit. cacheTTLHours == 0 means every cached record is immediately
// stale, which turns caching off. TTL fractions work (0.5 is thirty
// minutes).
type Layer struct {
	store         *store.Store
	cacheTTLHours float64
	now           func() time.Time
}

func NewLayer(s *store.Store, cacheTTLHours float64) *Layer {
	return &Layer{store: s, cacheTTLHours: cacheTTLHours, now: time.Now}
}

// Check looks up url in the Document Store and decides whether the
// Scheduler can skip fetching it. A redirect record is not followed here:
// the result carries its target in RedirectTo, and the caller checks that
// target with a second Check call.
func (l *Layer) Check(url string) (Result, failure.ClassifiedError) {
	record, found, err := l.store.GetRecord(url)
	if err != nil {
		return Result{}, err
	}
	if !found {
		return Result{Decision: DecisionFetch}, nil
	}

	switch record.Type {
	case store.RecordTypeRedirect:
		return Result{Decision: DecisionHitRedirect, RedirectTo: record.RedirectedURL}, nil
	case store.RecordTypeContent:
		if l.isFresh(record) {
			return Result{Decision: DecisionHitContent, Record: record}, nil
		}
		return Result{Decision: DecisionFetch}, nil
	default:
		// error records are never cache hits: an errored URL is retried
		// on the next crawl of the same name.
		return Result{Decision: DecisionFetch}, nil
	}
}

// IsCached reports whether url itself holds a fresh content record. A
// redirect record at url is not followed and reports false.
func (l *Layer) IsCached(url string) (bool, failure.ClassifiedError) {
	result, err := l.Check(url)
	if err != nil {
		return false, err
	}
	return result.Decision == DecisionHitContent, nil
}

func (l *Layer) isFresh(record store.Record) bool {
	if l.cacheTTLHours < 0 {
		return true
	}
	now := float64(l.now().UnixNano()) / float64(time.Second)
	ageHours := (now - record.Crawled) / 3600
	return ageHours < l.cacheTTLHours
}
