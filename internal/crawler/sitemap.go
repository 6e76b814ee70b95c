package crawler

import (
	"context"
	"encoding/xml"

	"github.com/rs/zerolog"

	"github.com/rohmanhakim/sitecrawler/internal/fetcher"
)

// maxSitemapNesting bounds how deep a sitemap index tree is followed. Real
// indexes are one or two levels deep; anything past this is a cycle.
const maxSitemapNesting = 5

// sitemapDoc covers both document shapes a sitemap URL can answer with: a
// <urlset> of page locations, or a <sitemapindex> of further sitemaps.
type sitemapDoc struct {
	URLs     []sitemapEntry `xml:"url"`
	Sitemaps []sitemapEntry `xml:"sitemap"`
}

type sitemapEntry struct {
	Loc string `xml:"loc"`
}

// ExpandSitemaps fetches each seed as a sitemap document and returns the
// page URLs the sitemap tree lists, following <sitemapindex> nesting. A
// seed that cannot be fetched or parsed is logged and skipped; the
// remaining seeds still expand.
func ExpandSitemaps(ctx context.Context, f fetcher.Fetcher, seeds []string, headers map[string]string, log zerolog.Logger) []string {
	seen := make(map[string]bool)
	var pages []string

	var walk func(sitemapURL string, nesting int)
	walk = func(sitemapURL string, nesting int) {
		if nesting > maxSitemapNesting || seen[sitemapURL] {
			return
		}
		seen[sitemapURL] = true

		result, err := f.Fetch(ctx, fetcher.FetchParam{URL: sitemapURL, Headers: headers})
		if err != nil {
			log.Warn().Str("sitemap", sitemapURL).Err(err).Msg("sitemap fetch failed")
			return
		}

		var doc sitemapDoc
		if err := xml.Unmarshal(result.Body, &doc); err != nil {
			log.Warn().Str("sitemap", sitemapURL).Err(err).Msg("sitemap parse failed")
			return
		}

		for _, entry := range doc.Sitemaps {
			if entry.Loc != "" {
				walk(entry.Loc, nesting+1)
			}
		}
		for _, entry := range doc.URLs {
			if entry.Loc != "" && !seen[entry.Loc] {
				seen[entry.Loc] = true
				pages = append(pages, entry.Loc)
			}
		}
	}

	for _, seed := range seeds {
		walk(seed, 0)
	}
	return pages
}
