package extract

import (
	"context"
	"strings"

	converter "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	mdparser "github.com/gomarkdown/markdown/parser"
)

// RenderMarkdown converts cleaned HTML to Markdown for downstream
// indexing/RAG consumers. This is a presentation concern only: the
// Markdown text is stored alongside the extracted fields, never fed back
// into rule evaluation.
func RenderMarkdown(ctx context.Context, cleanedHTML string) (string, error) {
	return converter.ConvertString(cleanedHTML)
}

// ComputeDigest parses Markdown (as produced by RenderMarkdown) into an AST
// and counts headings, words, and paragraphs. This is a distinct role from
// RenderMarkdown: gomarkdown's parser is used purely to derive the
// content_digest structural summary, never to re-render output.
func ComputeDigest(md string) ContentDigest {
	p := mdparser.NewWithExtensions(mdparser.CommonExtensions)
	doc := markdown.Parse([]byte(md), p)

	var digest ContentDigest
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		switch n := node.(type) {
		case *ast.Heading:
			digest.HeadingCount++
		case *ast.Paragraph:
			digest.ParagraphCount++
		case *ast.Text:
			digest.WordCount += len(strings.Fields(string(n.Literal)))
		}
		return ast.GoToNext
	})
	return digest
}
