package scope

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// builtinDeniedExtensions are rejected regardless of settings: media,
// script, and style assets a content crawl never needs to fetch.
// User-supplied denied_extensions are unioned with these, never replace
// them.
var builtinDeniedExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".svg", ".ico", ".webp", ".bmp",
	".css", ".js", ".woff", ".woff2", ".ttf", ".eot",
	".mp3", ".mp4", ".avi", ".mov", ".wav", ".ogg",
	".zip", ".gz", ".tar", ".rar", ".7z",
}

// Filter decides whether a discovered link is in-scope for the current
// crawl. It holds no mutable state once built and is safe
// for concurrent use by every worker goroutine.
type Filter struct {
	allowedHosts     map[string]bool
	allowRegexes     []*regexp.Regexp
	denyRegexes      []*regexp.Regexp
	deniedExtensions []string
}

// Param configures a Filter. AllowedDomains, plus the hostname/eTLD+1 of
// each starting URL when the corresponding AllowStartingURL* flag is set,
// make up the allow-set a link's host must match.
type Param struct {
	AllowedDomains           []string
	StartingURLs             []string
	AllowStartingURLHostname bool
	AllowStartingURLTLD      bool
	AllowRegexes             []string
	DenyRegexes              []string
	DeniedExtensions         []string
}

func NewFilter(p Param) (*Filter, error) {
	allowed := make(map[string]bool)
	for _, d := range p.AllowedDomains {
		allowed[strings.ToLower(d)] = true
	}
	for _, raw := range p.StartingURLs {
		parsed, err := url.Parse(raw)
		if err != nil {
			continue
		}
		host := strings.ToLower(parsed.Hostname())
		if p.AllowStartingURLHostname && host != "" {
			allowed[host] = true
		}
		if p.AllowStartingURLTLD && host != "" {
			if etld1, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
				allowed[etld1] = true
			}
		}
	}

	allowRegexes, err := compileAll("allowed_regex", p.AllowRegexes)
	if err != nil {
		return nil, err
	}
	// deny patterns match anywhere in the URL, case-insensitively, the way
	// the user's patterns are documented to behave; allow patterns are taken
	// verbatim.
	denyRegexes, err := compileAll("denied_regex", prefixInsensitive(p.DenyRegexes))
	if err != nil {
		return nil, err
	}

	denied := append([]string{}, builtinDeniedExtensions...)
	for _, ext := range p.DeniedExtensions {
		denied = append(denied, strings.ToLower(ext))
	}

	return &Filter{
		allowedHosts:     allowed,
		allowRegexes:     allowRegexes,
		denyRegexes:      denyRegexes,
		deniedExtensions: denied,
	}, nil
}

func compileAll(field string, patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, &FilterError{Field: field, Message: err.Error()}
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

func prefixInsensitive(patterns []string) []string {
	out := make([]string, len(patterns))
	for i, p := range patterns {
		out[i] = "(?i)" + p
	}
	return out
}

// Accept reports whether rawURL is in scope for this crawl. Checks run in a
// fixed order: host allow-set, the "@" rejection, allow-regex (immediate
// accept), deny-regex, denied extensions.
func (f *Filter) Accept(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if !f.hostAllowed(strings.ToLower(parsed.Hostname())) {
		return false
	}

	if strings.Contains(rawURL, "@") {
		return false
	}

	for _, re := range f.allowRegexes {
		if re.MatchString(rawURL) {
			return true
		}
	}

	for _, re := range f.denyRegexes {
		if re.MatchString(rawURL) {
			return false
		}
	}

	lowerURL := strings.ToLower(rawURL)
	for _, ext := range f.deniedExtensions {
		if strings.HasSuffix(lowerURL, ext) {
			return false
		}
	}

	return true
}

func (f *Filter) hostAllowed(host string) bool {
	if host == "" {
		return false
	}
	if f.allowedHosts[host] {
		return true
	}
	if etld1, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return f.allowedHosts[etld1]
	}
	return false
}

func (f *Filter) String() string {
	return fmt.Sprintf("Filter{hosts=%d}", len(f.allowedHosts))
}
