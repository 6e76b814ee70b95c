package linkextract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rohmanhakim/sitecrawler/pkg/urlutil"
)

// Extract parses htmlBody as HTML relative to base and returns the set of
// absolute, fragment-less link targets found in <a href>, deduplicated.
// Empty hrefs, in-page anchors ("#..."), and mailto/tel/javascript links
// are skipped.
func Extract(base *url.URL, htmlBody []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(htmlBody)))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" || strings.HasPrefix(href, "#") {
			return
		}
		if strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") || strings.HasPrefix(href, "javascript:") {
			return
		}
		resolved, err := urlutil.ResolveDefragmented(base, href)
		if err != nil || resolved == "" {
			return
		}
		if seen[resolved] {
			return
		}
		seen[resolved] = true
		links = append(links, resolved)
	})
	return links, nil
}
