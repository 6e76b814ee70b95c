package store

import "github.com/rohmanhakim/sitecrawler/pkg/mediatype"

// BinaryContentPlaceholder is what a binary record's _content holds; the
// actual bytes live in the sibling blob under the key^bytes suffix.
const BinaryContentPlaceholder = "N/A"

// RecordType distinguishes the three record shapes the Document Store
// holds. A URL has at most one record at a time; a later fetch of the same
// URL replaces whatever record was there, so a redirect record never
// coexists with a content or error record for the same key.
type RecordType string

const (
	RecordTypeContent  RecordType = "content"
	RecordTypeRedirect RecordType = "redirect"
	RecordTypeError    RecordType = "error"
)

// Record is the JSON document stored under a URL key. Fields are a superset
// across the three RecordTypes; which are populated depends on Type.
//
//   - content: _content holds the raw HTML body, or "N/A" for a binary whose
//     bytes live in the sibling blob; crawled, content_type,
//     server_last_modified describe the fetch; id, path_s, typeUrl_s and the
//     open fields bag are filled in by the extraction pass, which also stamps
//     parsed_hash with the rule-set fingerprint it applied.
//   - redirect: redirected_url only.
//   - error: error_code (numeric HTTP status or a symbolic tag) plus the
//     error message in _content.
type Record struct {
	Type RecordType `json:"type"`
	URI  string     `json:"uri,omitempty"`

	Content            string  `json:"_content,omitempty"`
	ContentType        string  `json:"content_type,omitempty"`
	Crawled            float64 `json:"crawled,omitempty"`
	ServerLastModified string  `json:"server_last_modified,omitempty"`
	ContentHash        string  `json:"content_hash,omitempty"`
	ParsedHash         uint32  `json:"parsed_hash,omitempty"`

	// extraction-derived
	ID            string         `json:"id,omitempty"`
	PathS         string         `json:"path_s,omitempty"`
	TypeURLS      string         `json:"typeUrl_s,omitempty"`
	Fields        map[string]any `json:"fields,omitempty"`
	MarkdownS     string         `json:"markdown_s,omitempty"`
	ContentDigest map[string]int `json:"content_digest,omitempty"`

	RedirectedURL string `json:"redirected_url,omitempty"`

	ErrorCode string `json:"error_code,omitempty"`
}

// HasContentBlob reports whether this record has a sibling blob under the
// key^bytes suffix: only non-HTML content records keep their raw bytes in
// a blob; HTML bodies live in _content directly.
func (r Record) HasContentBlob() bool {
	return r.Type == RecordTypeContent && r.ContentType != "" && !mediatype.IsHTML(r.ContentType)
}
