package urlutil

import "net/url"

// ResolveDefragmented resolves href against base and strips any fragment.
// This is the one normalization the Link Extractor and the Document Store
// key space agree on: an absolute, fragment-less string compared
// byte-exactly. No other rewriting (case-folding, default-port stripping,
// query removal) is applied; two differently-cased spellings of the same
// URL are two different store keys.
func ResolveDefragmented(base *url.URL, href string) (string, error) {
	parsed, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	resolved := base.ResolveReference(parsed)
	resolved.Fragment = ""
	resolved.RawFragment = ""
	return resolved.String(), nil
}
