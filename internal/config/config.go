package config

import (
	"encoding/json"
	"os"

	"github.com/rohmanhakim/sitecrawler/internal/extract"
)

// StringList unmarshals from either a single JSON string or an array of
// strings, so starting_urls accepts both forms in a settings document.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = StringList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = StringList(many)
	return nil
}

// CrawlSettings is the recognised option set for a single crawl job. Zero
// values below are filled in by Default() or by a settings file, never
// silently assumed deep inside the Scheduler.
type CrawlSettings struct {
	Name         string     `json:"name"`
	StartingURLs StringList `json:"starting_urls"`
	IsSitemap    bool       `json:"is_sitemap"`

	AllowedDomains   []string `json:"allowed_domains"`
	AllowedRegex     []string `json:"allowed_regex"`
	DeniedRegex      []string `json:"denied_regex"`
	DeniedExtensions []string `json:"denied_extensions"`

	AllowStartingURLHostname bool `json:"allow_starting_url_hostname"`
	AllowStartingURLTLD      bool `json:"allow_starting_url_tld"`

	MaxDepth    int `json:"max_depth"`
	MaxPages    int `json:"max_pages"`
	Concurrency int `json:"concurrency"`

	// RetryEnabled opts in to re-enqueueing a URL after a transient fetch
	// failure, up to MaxRetries. Off by default: a failed URL is recorded
	// as an error record and the crawl moves on.
	RetryEnabled bool `json:"retry_enabled"`
	MaxRetries   int  `json:"max_retries"`

	CacheTTLHours float64 `json:"cache_ttl_hours"`

	Headers   map[string]string `json:"headers"`
	UserAgent string            `json:"user_agent"`

	ExtractionRules extract.RuleSet `json:"extraction_rules"`

	DataDir string `json:"data_dir"`

	AIParsing bool `json:"ai_parsing"`
}

// Default returns the settings document with every documented default
// applied. cache_ttl_hours defaults to 0, which makes every cached record
// immediately stale: caching off.
func Default() CrawlSettings {
	return CrawlSettings{
		IsSitemap:                false,
		AllowStartingURLHostname: true,
		AllowStartingURLTLD:      false,
		MaxDepth:                 300,
		Concurrency:              10,
		RetryEnabled:             false,
		MaxRetries:               2,
		UserAgent:                "SiteCrawler/1.0",
		DataDir:                  "data",
		AIParsing:                false,
	}
}

// LoadFile reads a JSON settings document from path and overlays it onto
// Default(). This is the same wire format a job submitter would post.
func LoadFile(path string) (CrawlSettings, error) {
	settings := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return settings, err
	}
	if err := json.Unmarshal(raw, &settings); err != nil {
		return settings, err
	}
	return settings, nil
}

// Validate checks the invariants a crawl cannot safely proceed without.
func (s CrawlSettings) Validate() error {
	if s.Name == "" {
		return &ConfigError{Field: "name", Message: "must not be empty"}
	}
	if len(s.StartingURLs) == 0 {
		return &ConfigError{Field: "starting_urls", Message: "must not be empty"}
	}
	if s.MaxDepth < 0 {
		return &ConfigError{Field: "max_depth", Message: "must not be negative"}
	}
	if s.Concurrency < 1 {
		return &ConfigError{Field: "concurrency", Message: "must be at least 1"}
	}
	if s.MaxRetries < 0 {
		return &ConfigError{Field: "max_retries", Message: "must not be negative"}
	}
	return nil
}

// Option mutates a CrawlSettings under construction.
type Option func(*CrawlSettings)

func WithName(name string) Option { return func(s *CrawlSettings) { s.Name = name } }

func WithStartingURLs(urls ...string) Option {
	return func(s *CrawlSettings) { s.StartingURLs = urls }
}

func WithAllowedDomains(domains ...string) Option {
	return func(s *CrawlSettings) { s.AllowedDomains = domains }
}

func WithExtractionRules(rules extract.RuleSet) Option {
	return func(s *CrawlSettings) { s.ExtractionRules = rules }
}

func WithConcurrency(n int) Option { return func(s *CrawlSettings) { s.Concurrency = n } }

func WithMaxDepth(n int) Option { return func(s *CrawlSettings) { s.MaxDepth = n } }

func WithMaxPages(n int) Option { return func(s *CrawlSettings) { s.MaxPages = n } }

func WithDataDir(dir string) Option { return func(s *CrawlSettings) { s.DataDir = dir } }

func WithAIParsing(enabled bool) Option { return func(s *CrawlSettings) { s.AIParsing = enabled } }

func WithRetryEnabled(enabled bool) Option {
	return func(s *CrawlSettings) { s.RetryEnabled = enabled }
}

// New builds a CrawlSettings from Default() with the given options applied.
func New(opts ...Option) CrawlSettings {
	settings := Default()
	for _, opt := range opts {
		opt(&settings)
	}
	return settings
}
