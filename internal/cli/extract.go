package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rohmanhakim/sitecrawler/internal/articleparser"
	"github.com/rohmanhakim/sitecrawler/internal/extract"
	"github.com/rohmanhakim/sitecrawler/internal/store"
	"github.com/rohmanhakim/sitecrawler/internal/textextract"
)

var (
	textExtractURL   string
	articleParserURL string
	articleParserKey string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Re-derive extraction fields for every stale content record",
	Run:   runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&textExtractURL, "text-extract-url", "", "binary-text extraction service endpoint")
	extractCmd.Flags().StringVar(&articleParserURL, "article-parser-url", "", "article parsing service endpoint")
	extractCmd.Flags().StringVar(&articleParserKey, "article-parser-key", "", "article parsing service API key")
}

func runExtract(cmd *cobra.Command, args []string) {
	settings, err := InitSettings()
	if err != nil {
		fatalf("config error: %v", err)
	}

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	docStore, storeErr := store.Open(storePath(settings.DataDir, settings.Name))
	if storeErr != nil {
		fatalf("store: %v", storeErr)
	}
	defer docStore.Close()

	httpClient := &http.Client{Timeout: 60 * time.Second}

	var textClient *textextract.Client
	if textExtractURL != "" {
		textClient = textextract.NewClient(textExtractURL, httpClient)
	}

	var articleClient *articleparser.Client
	if articleParserURL != "" {
		articleClient = articleparser.NewClient(articleParserURL, articleParserKey, httpClient)
	}

	extractor := extract.NewExtractor(docStore, settings.ExtractionRules, textClient, articleClient, settings.AIParsing, log)

	updated, extractErr := extractor.Run(context.Background())
	if extractErr != nil {
		fatalf("extraction failed: %v", extractErr)
	}

	fmt.Printf("updated %d records\n", updated)
}
