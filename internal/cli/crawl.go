package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rohmanhakim/sitecrawler/internal/cache"
	"github.com/rohmanhakim/sitecrawler/internal/crawler"
	"github.com/rohmanhakim/sitecrawler/internal/fetcher"
	"github.com/rohmanhakim/sitecrawler/internal/jobs"
	"github.com/rohmanhakim/sitecrawler/internal/report"
	"github.com/rohmanhakim/sitecrawler/internal/scope"
	"github.com/rohmanhakim/sitecrawler/internal/store"
	"github.com/rohmanhakim/sitecrawler/pkg/fileutil"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Run a crawl against the configured starting URLs",
	Run:   runCrawl,
}

// storePath is where a named crawl's content store lives: one file per
// crawl, named <name>.crawl, under the data directory.
func storePath(dataDir, name string) string {
	return filepath.Join(dataDir, name+".crawl")
}

func runCrawl(cmd *cobra.Command, args []string) {
	settings, err := InitSettings()
	if err != nil {
		fatalf("config error: %v", err)
	}

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := fileutil.EnsureDir(settings.DataDir); err != nil {
		fatalf("data dir: %v", err)
	}

	lock, lockErr := jobs.Acquire(os.TempDir(), settings.Name)
	if lockErr != nil {
		fatalf("%v", lockErr)
	}
	defer lock.Release()

	registry := jobs.NewRegistry()
	registry.SetStatus(settings.Name, jobs.StatusRunning)

	docStore, storeErr := store.Open(storePath(settings.DataDir, settings.Name))
	if storeErr != nil {
		fatalf("store: %v", storeErr)
	}
	defer docStore.Close()

	filter, filterErr := scope.NewFilter(scope.Param{
		AllowedDomains:           settings.AllowedDomains,
		StartingURLs:             settings.StartingURLs,
		AllowStartingURLHostname: settings.AllowStartingURLHostname,
		AllowStartingURLTLD:      settings.AllowStartingURLTLD,
		AllowRegexes:             settings.AllowedRegex,
		DenyRegexes:              settings.DeniedRegex,
		DeniedExtensions:         settings.DeniedExtensions,
	})
	if filterErr != nil {
		fatalf("scope filter: %v", filterErr)
	}

	cacheLayer := cache.NewLayer(docStore, settings.CacheTTLHours)
	httpFetcher := fetcher.NewHTTPFetcher(settings.UserAgent, fetcher.DefaultTimeout)
	reporter := report.NewReporter(settings.Name, log)

	scheduler := crawler.NewScheduler(settings, docStore, httpFetcher, filter, cacheLayer, reporter, log)

	if err := scheduler.Run(context.Background()); err != nil {
		registry.SetStatus(settings.Name, jobs.StatusFailed)
		fatalf("crawl failed: %v", err)
	}
	registry.SetStatus(settings.Name, jobs.StatusCompleted)

	snapshot := reporter.Report()
	encoded, _ := json.MarshalIndent(snapshot, "", "  ")
	fmt.Println(string(encoded))
}
