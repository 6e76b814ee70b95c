package mediatype

import "strings"

// The two content-type allow-sets a fetched response is routed by. Anything
// outside both sets is not stored at all: the crawl keeps going, the URL is
// simply dropped.
var htmlTypes = map[string]bool{
	"text/html":             true,
	"text/xhtml":            true,
	"application/xhtml+xml": true,
	"application/xhtml":     true,
	"application/html":      true,
}

var binaryTypes = map[string]bool{
	"application/pdf": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"application/epub+zip": true,
}

// Base strips any ";charset=..." parameter suffix and lowercases the result.
func Base(contentType string) string {
	base, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(base))
}

// IsHTML reports whether contentType names an HTML document.
func IsHTML(contentType string) bool {
	return htmlTypes[Base(contentType)]
}

// IsBinary reports whether contentType names an allowed binary document
// (PDF, Word, PowerPoint, EPUB).
func IsBinary(contentType string) bool {
	return binaryTypes[Base(contentType)]
}
