package extract

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// CreateID derives a stable record id from a URL: a UUIDv3 in the URL
// namespace, so the same URL always yields the same id and re-crawls
// update rather than duplicate a record.
func CreateID(rawURL string) string {
	return uuid.NewMD5(uuid.NameSpaceURL, []byte(rawURL)).String()
}

// GetPath renders the URL's path as a breadcrumb for the path_s field:
// segments joined with " / ", so "/test/path/" becomes "test / path". A URL
// with no path falls back to its host.
func GetPath(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	trimmed := strings.Trim(parsed.Path, "/")
	if trimmed == "" {
		return parsed.Hostname()
	}
	return strings.Join(strings.Split(trimmed, "/"), " / ")
}

// GetTypeFromURL derives the typeUrl_s facet from a URL: the first path
// segment, title-cased, with "-" and "_" treated as word separators, so
// "/path-to-page" becomes "Path To Page". A URL with no path segments is a
// plain "Web Page".
func GetTypeFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "Web Page"
	}
	trimmed := strings.Trim(parsed.Path, "/")
	if trimmed == "" {
		return "Web Page"
	}
	first := strings.SplitN(trimmed, "/", 2)[0]
	first = strings.NewReplacer("-", " ", "_", " ").Replace(first)

	words := strings.Fields(first)
	for i, w := range words {
		runes := []rune(w)
		words[i] = strings.ToUpper(string(runes[:1])) + strings.ToLower(string(runes[1:]))
	}
	return strings.Join(words, " ")
}
