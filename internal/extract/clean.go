package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// stripTags are removed wholesale (tag and contents) before extraction
// rules run and before Markdown rendering: scripts, styles, and page
// chrome never contribute to a derived field.
var stripTags = []string{"script", "style", "noscript", "footer", "header", "nav", "button", "form"}

// Clean parses rawHTML, removes chrome/non-content tags, and returns both the
// cleaned HTML string and a goquery document built from it so callers can
// run CSS-selector rules against the same cleaned tree used for Markdown
// rendering.
func Clean(rawHTML []byte) (string, *goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(rawHTML)))
	if err != nil {
		return "", nil, err
	}
	for _, tag := range stripTags {
		doc.Find(tag).Remove()
	}
	cleaned, err := doc.Html()
	if err != nil {
		return "", nil, err
	}
	return cleaned, doc, nil
}
