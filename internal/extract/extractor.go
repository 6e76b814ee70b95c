package extract

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/rs/zerolog"

	"github.com/rohmanhakim/sitecrawler/internal/articleparser"
	"github.com/rohmanhakim/sitecrawler/internal/store"
	"github.com/rohmanhakim/sitecrawler/internal/textextract"
	"github.com/rohmanhakim/sitecrawler/pkg/failure"
	"github.com/rohmanhakim/sitecrawler/pkg/mediatype"
	"github.com/rohmanhakim/sitecrawler/pkg/retry"
	"github.com/rohmanhakim/sitecrawler/pkg/timeutil"
)

// textExtractRetry bounds the retries against a flapping binary-text
// extraction service before the affected URL is dropped from the pass.
var textExtractRetry = retry.NewRetryParam(
	250*time.Millisecond,
	1,
	3,
	timeutil.NewBackoffParam(500*time.Millisecond, 2.0, 5*time.Second),
)

type binaryText struct {
	text  string
	title string
}

// Extractor re-derives a content record's extraction fields whenever its
// parsed_hash no longer matches the current rule-set fingerprint. It is a
// separate pass from the Scheduler: crawling populates raw records,
// extraction derives fields from them.
type Extractor struct {
	store         *store.Store
	rules         RuleSet
	fingerprint   uint32
	textClient    *textextract.Client
	articleClient *articleparser.Client
	aiParsing     bool
	log           zerolog.Logger
}

func NewExtractor(s *store.Store, rules RuleSet, textClient *textextract.Client, articleClient *articleparser.Client, aiParsing bool, log zerolog.Logger) *Extractor {
	return &Extractor{
		store:         s,
		rules:         rules,
		fingerprint:   rules.Fingerprint(),
		textClient:    textClient,
		articleClient: articleClient,
		aiParsing:     aiParsing,
		log:           log,
	}
}

// Run walks every content record in the store and re-extracts any whose
// parsed_hash is stale, returning the number of records it updated. A URL
// whose external enrichment fails is logged and skipped; the pass itself
// only fails on a malformed rule-set or a Store error.
func (e *Extractor) Run(ctx context.Context) (int, failure.ClassifiedError) {
	if err := e.rules.Validate(); err != nil {
		return 0, &RulesFatalError{Message: err.Error()}
	}

	var stale []string
	var staleHTML []string
	err := e.store.Iterate(func(key string, r store.Record) bool {
		if r.Type != store.RecordTypeContent || r.ParsedHash == e.fingerprint {
			return true
		}
		stale = append(stale, key)
		if mediatype.IsHTML(r.ContentType) {
			staleHTML = append(staleHTML, key)
		}
		return true
	})
	if err != nil {
		return 0, err
	}

	articles := e.parseArticles(ctx, staleHTML)

	updated := 0
	for _, key := range stale {
		if ctx.Err() != nil {
			break
		}
		changed, err := e.extractOne(ctx, key, articles[key])
		if err != nil {
			if err.Severity() == failure.SeverityFatal {
				return updated, err
			}
			e.log.Warn().Str("url", key).Err(err).Msg("extraction skipped")
			continue
		}
		if changed {
			updated++
		}
	}
	return updated, nil
}

// parseArticles runs one batched article-parse call over every stale HTML
// URL. Per-item failures are logged and that item dropped;
// a failed batch disables enrichment for this pass rather than failing it.
func (e *Extractor) parseArticles(ctx context.Context, urls []string) map[string]map[string]any {
	if !e.aiParsing || e.articleClient == nil || len(urls) == 0 {
		return nil
	}
	responses, err := e.articleClient.ParseBatch(ctx, urls)
	if err != nil {
		e.log.Warn().Err(err).Msg("article parsing unavailable for this pass")
		return nil
	}
	articles := make(map[string]map[string]any, len(responses))
	for _, resp := range responses {
		if resp.Error != "" || resp.Article == nil {
			e.log.Warn().Str("url", resp.URL).Str("error", resp.Error).Msg("article dropped")
			continue
		}
		articles[resp.URL] = resp.Article.Fields()
	}
	return articles
}

func (e *Extractor) extractOne(ctx context.Context, key string, articleFields map[string]any) (bool, failure.ClassifiedError) {
	record, found, err := e.store.GetRecord(key)
	if err != nil || !found {
		return false, err
	}

	var cleanedHTML string
	if mediatype.IsHTML(record.ContentType) {
		cleaned, doc, parseErr := Clean([]byte(record.Content))
		if parseErr != nil {
			return false, &ExtractError{URL: key, Message: parseErr.Error()}
		}
		cleanedHTML = cleaned
		result, applyErr := Apply(e.rules, doc, cleanedHTML)
		if applyErr != nil {
			return false, &ExtractError{URL: key, Message: applyErr.Error()}
		}
		record.Fields = result
	} else if e.textClient != nil {
		blob, blobFound, blobErr := e.store.GetBlob(key)
		if blobErr != nil || !blobFound {
			return false, blobErr
		}
		extracted, extractErr := retry.Retry(textExtractRetry, func() (binaryText, failure.ClassifiedError) {
			text, title, err := e.textClient.Extract(ctx, path.Base(record.URI), blob)
			return binaryText{text: text, title: title}, err
		})
		if extractErr != nil {
			// an enrichment failure only costs this URL, never the pass:
			// rewrap so the caller sees a recoverable, skippable error
			// whatever severity the client assigned.
			return false, &ExtractError{URL: key, Message: extractErr.Error()}
		}
		record.Fields = Result{"content": extracted.text, "title": extracted.title}
	}

	record.ID = CreateID(record.URI)
	record.PathS = GetPath(record.URI)
	record.TypeURLS = GetTypeFromURL(record.URI)
	record.ParsedHash = e.fingerprint

	if len(articleFields) > 0 {
		if record.Fields == nil {
			record.Fields = make(map[string]any)
		}
		for k, v := range articleFields {
			record.Fields[k] = v
		}
	}

	if cleanedHTML != "" {
		md, mdErr := RenderMarkdown(ctx, cleanedHTML)
		if mdErr == nil {
			record.MarkdownS = md
			digest := ComputeDigest(md)
			record.ContentDigest = map[string]int{
				"heading_count":   digest.HeadingCount,
				"word_count":      digest.WordCount,
				"paragraph_count": digest.ParagraphCount,
			}
		}
	}

	if err := e.store.PutRecord(key, record); err != nil {
		return false, err
	}
	return true, nil
}

// ExtractError marks one record the pass could not process. Recoverable:
// the pass logs it, skips the record, and keeps going.
type ExtractError struct {
	URL     string
	Message string
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract %s: %s", e.URL, e.Message)
}

func (e *ExtractError) Severity() failure.Severity { return failure.SeverityRecoverable }

// RulesFatalError marks a malformed rule-set. A configuration mistake stops
// the pass before it touches any record.
type RulesFatalError struct {
	Message string
}

func (e *RulesFatalError) Error() string { return "extraction rules: " + e.Message }

func (e *RulesFatalError) Severity() failure.Severity { return failure.SeverityFatal }
