package extract_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/sitecrawler/internal/extract"
	"github.com/rohmanhakim/sitecrawler/internal/store"
	"github.com/rohmanhakim/sitecrawler/internal/textextract"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.crawl"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestExtractor(s *store.Store, rules extract.RuleSet) *extract.Extractor {
	return extract.NewExtractor(s, rules, nil, nil, false, zerolog.New(io.Discard))
}

func TestExtractor_DerivesFieldsFromStoredHTML(t *testing.T) {
	s := openTestStore(t)

	url := "https://example.com/docs/guide"
	require.NoError(t, s.PutHTML(url, `<html><body><h1>Guide Title</h1></body></html>`, store.Record{
		URI:         url,
		ContentType: "text/html",
	}))

	rules := extract.RuleSet{Rules: []extract.Rule{{FieldName: "title", CSS: "h1"}}}
	extractor := newTestExtractor(s, rules)

	updated, err := extractor.Run(context.Background())
	require.Nil(t, err)
	require.Equal(t, 1, updated)

	record, found, getErr := s.GetRecord(url)
	require.NoError(t, getErr)
	require.True(t, found)
	require.Equal(t, "Guide Title", record.Fields["title"])
	require.Equal(t, rules.Fingerprint(), record.ParsedHash)
	require.Equal(t, extract.CreateID(url), record.ID)
	require.Equal(t, "docs / guide", record.PathS)
	require.Equal(t, "Docs", record.TypeURLS)
}

func TestExtractor_MissingSelectorYieldsEmptyField(t *testing.T) {
	s := openTestStore(t)

	url := "https://example.com/"
	require.NoError(t, s.PutHTML(url, `<html><title>foo</title></html>`, store.Record{
		URI:         url,
		ContentType: "text/html",
	}))

	rules := extract.RuleSet{Rules: []extract.Rule{
		{FieldName: "title", CSS: "title"},
		{FieldName: "desc", CSS: "bar"},
	}}
	extractor := newTestExtractor(s, rules)

	_, err := extractor.Run(context.Background())
	require.Nil(t, err)

	record, _, getErr := s.GetRecord(url)
	require.NoError(t, getErr)
	require.Equal(t, "foo", record.Fields["title"])
	require.Equal(t, "", record.Fields["desc"])
}

func TestExtractor_SkipsRecordsAlreadyAtCurrentFingerprint(t *testing.T) {
	s := openTestStore(t)
	rules := extract.RuleSet{Rules: []extract.Rule{{FieldName: "title", CSS: "h1"}}}

	url := "https://example.com/"
	require.NoError(t, s.PutHTML(url, `<html><body><h1>X</h1></body></html>`, store.Record{
		URI:         url,
		ContentType: "text/html",
		ParsedHash:  rules.Fingerprint(),
	}))

	extractor := newTestExtractor(s, rules)
	updated, err := extractor.Run(context.Background())
	require.Nil(t, err)
	require.Equal(t, 0, updated)
}

func TestExtractor_SkipsRedirectAndErrorRecords(t *testing.T) {
	s := openTestStore(t)
	rules := extract.RuleSet{Rules: []extract.Rule{{FieldName: "title", CSS: "h1"}}}

	require.NoError(t, s.PutRecord("https://example.com/old", store.Record{
		Type:          store.RecordTypeRedirect,
		RedirectedURL: "https://example.com/new",
	}))
	require.NoError(t, s.PutRecord("https://example.com/bad", store.Record{
		Type:      store.RecordTypeError,
		ErrorCode: "timeout",
	}))

	extractor := newTestExtractor(s, rules)
	updated, err := extractor.Run(context.Background())
	require.Nil(t, err)
	require.Equal(t, 0, updated)
}

func TestExtractor_MalformedRuleSetIsFatal(t *testing.T) {
	s := openTestStore(t)
	rules := extract.RuleSet{Rules: []extract.Rule{{FieldName: "bad", CSS: "h1", Regex: "(x)"}}}

	extractor := newTestExtractor(s, rules)
	_, err := extractor.Run(context.Background())
	require.NotNil(t, err)
}

func TestExtractor_BinaryEnrichmentFailureSkipsOnlyThatURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	s := openTestStore(t)
	rules := extract.RuleSet{Rules: []extract.Rule{{FieldName: "title", CSS: "h1"}}}

	require.NoError(t, s.PutBlob("https://example.com/doc.pdf", []byte("%PDF-1.4"), store.Record{
		URI:         "https://example.com/doc.pdf",
		ContentType: "application/pdf",
	}))
	require.NoError(t, s.PutHTML("https://example.com/page", `<html><body><h1>Still Works</h1></body></html>`, store.Record{
		URI:         "https://example.com/page",
		ContentType: "text/html",
	}))

	textClient := textextract.NewClient(server.URL, server.Client())
	extractor := extract.NewExtractor(s, rules, textClient, nil, false, zerolog.New(io.Discard))

	updated, err := extractor.Run(context.Background())
	require.Nil(t, err, "one URL's enrichment failure must not fail the pass")
	require.Equal(t, 1, updated)

	// the HTML record was still extracted
	page, _, getErr := s.GetRecord("https://example.com/page")
	require.NoError(t, getErr)
	require.Equal(t, "Still Works", page.Fields["title"])
	require.Equal(t, rules.Fingerprint(), page.ParsedHash)

	// the failed binary stays stale for the next pass
	pdf, _, getErr := s.GetRecord("https://example.com/doc.pdf")
	require.NoError(t, getErr)
	require.NotEqual(t, rules.Fingerprint(), pdf.ParsedHash)
}

func TestExtractor_PopulatesMarkdownAndDigest(t *testing.T) {
	s := openTestStore(t)

	url := "https://example.com/page"
	require.NoError(t, s.PutHTML(url, `<html><body><h1>Heading</h1><p>Some paragraph text.</p></body></html>`, store.Record{
		URI:         url,
		ContentType: "text/html",
	}))

	extractor := newTestExtractor(s, extract.RuleSet{})
	_, err := extractor.Run(context.Background())
	require.Nil(t, err)

	record, _, getErr := s.GetRecord(url)
	require.NoError(t, getErr)
	require.NotEmpty(t, record.MarkdownS)
	require.Equal(t, 1, record.ContentDigest["heading_count"])
}
