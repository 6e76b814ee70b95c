package extract_test

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/sitecrawler/internal/extract"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestApply_ZeroMatchesUsesDefault(t *testing.T) {
	def := "untitled"
	rs := extract.RuleSet{Rules: []extract.Rule{
		{FieldName: "title", CSS: "h1.missing", DefaultValue: &def},
	}}
	doc := mustDoc(t, `<html><body><p>no heading here</p></body></html>`)

	result, err := extract.Apply(rs, doc, "")
	require.NoError(t, err)
	require.Equal(t, "untitled", result["title"])
}

func TestApply_ZeroMatchesNoDefaultIsEmptyString(t *testing.T) {
	rs := extract.RuleSet{Rules: []extract.Rule{{FieldName: "title", CSS: "h1.missing"}}}
	doc := mustDoc(t, `<html><body></body></html>`)

	result, err := extract.Apply(rs, doc, "")
	require.NoError(t, err)
	require.Equal(t, "", result["title"])
}

func TestApply_OneMatchIsScalar(t *testing.T) {
	rs := extract.RuleSet{Rules: []extract.Rule{{FieldName: "title", CSS: "h1"}}}
	doc := mustDoc(t, `<html><body><h1>Only Heading</h1></body></html>`)

	result, err := extract.Apply(rs, doc, "")
	require.NoError(t, err)
	require.Equal(t, "Only Heading", result["title"])
}

func TestApply_MultipleMatchesIsList(t *testing.T) {
	rs := extract.RuleSet{Rules: []extract.Rule{{FieldName: "tags", CSS: "li.tag"}}}
	doc := mustDoc(t, `<html><body><ul><li class="tag">a</li><li class="tag">b</li></ul></body></html>`)

	result, err := extract.Apply(rs, doc, "")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, result["tags"])
}

func TestApply_CSSWithAttribute(t *testing.T) {
	rs := extract.RuleSet{Rules: []extract.Rule{{FieldName: "canonical", CSS: "link[rel=canonical]", Attribute: "href"}}}
	doc := mustDoc(t, `<html><head><link rel="canonical" href="https://example.com/"></head></html>`)

	result, err := extract.Apply(rs, doc, "")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/", result["canonical"])
}

func TestApply_FixedValue(t *testing.T) {
	v := "static"
	rs := extract.RuleSet{Rules: []extract.Rule{{FieldName: "source", FixedValue: &v}}}
	doc := mustDoc(t, `<html></html>`)

	result, err := extract.Apply(rs, doc, "")
	require.NoError(t, err)
	require.Equal(t, "static", result["source"])
}

func TestApply_RegexRequiresCapturingGroup(t *testing.T) {
	rs := extract.RuleSet{Rules: []extract.Rule{{FieldName: "bad", Regex: `no-group`}}}
	doc := mustDoc(t, `<html></html>`)

	_, err := extract.Apply(rs, doc, "no-group here")
	require.Error(t, err)
}

func TestApply_RegexWithCapturingGroup(t *testing.T) {
	rs := extract.RuleSet{Rules: []extract.Rule{{FieldName: "version", Regex: `version=(\d+\.\d+)`}}}
	doc := mustDoc(t, `<html></html>`)

	result, err := extract.Apply(rs, doc, "build version=1.2 done")
	require.NoError(t, err)
	require.Equal(t, "1.2", result["version"])
}

func TestRuleSet_FingerprintStableAndOrderSensitive(t *testing.T) {
	a := extract.RuleSet{Rules: []extract.Rule{{FieldName: "x", CSS: "h1"}, {FieldName: "y", CSS: "h2"}}}
	b := extract.RuleSet{Rules: []extract.Rule{{FieldName: "y", CSS: "h2"}, {FieldName: "x", CSS: "h1"}}}

	require.Equal(t, a.Fingerprint(), a.Fingerprint())
	require.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}
