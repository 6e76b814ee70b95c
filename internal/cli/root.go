package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rohmanhakim/sitecrawler/internal/config"
)

var (
	cfgFile          string
	name             string
	startingURLs     []string
	allowedDomains   []string
	allowedRegex     []string
	deniedRegex      []string
	deniedExtensions []string
	isSitemap        bool
	maxDepth         int
	maxPages         int
	concurrency      int
	retryEnabled     bool
	maxRetries       int
	cacheTTLHours    float64
	userAgent        string
	dataDir          string
	aiParsing        bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sitecrawler",
	Short: "A bounded-depth, single-site web crawler with a persistent content store.",
	Long: `sitecrawler fetches a single site starting from one or more seed URLs,
respects a configurable scope filter and depth/page budget, stores every
fetched page in a local content store, and applies a declarative field
extraction rule-set to each stored page.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(); it only needs to run once.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "settings JSON file path")
	rootCmd.PersistentFlags().StringVar(&name, "name", "", "crawl name, also the lock and content store file name")
	rootCmd.PersistentFlags().StringArrayVar(&startingURLs, "starting-url", nil, "one or more starting URLs (can be repeated)")
	rootCmd.PersistentFlags().StringArrayVar(&allowedDomains, "allowed-domain", nil, "explicit allowed hostnames/domains (can be repeated)")
	rootCmd.PersistentFlags().StringArrayVar(&allowedRegex, "allowed-regex", nil, "regex that immediately admits a matching URL (can be repeated)")
	rootCmd.PersistentFlags().StringArrayVar(&deniedRegex, "denied-regex", nil, "regex that rejects a matching URL (can be repeated)")
	rootCmd.PersistentFlags().StringArrayVar(&deniedExtensions, "denied-extension", nil, "additional rejected file extensions (can be repeated)")
	rootCmd.PersistentFlags().BoolVar(&isSitemap, "is-sitemap", false, "treat starting URLs as sitemap documents")
	rootCmd.PersistentFlags().IntVar(&maxDepth, "max-depth", 0, "maximum link depth from a starting URL (0 uses the default)")
	rootCmd.PersistentFlags().IntVar(&maxPages, "max-pages", 0, "page budget: at most max-pages+1 URLs are admitted to the frontier (0 for unlimited)")
	rootCmd.PersistentFlags().IntVar(&concurrency, "concurrency", 0, "number of concurrent fetch workers (0 uses the default)")
	rootCmd.PersistentFlags().BoolVar(&retryEnabled, "retry", false, "re-enqueue a URL after a transient fetch failure")
	rootCmd.PersistentFlags().IntVar(&maxRetries, "max-retries", -1, "retries per URL on a transient fetch error (-1 uses the default)")
	rootCmd.PersistentFlags().Float64Var(&cacheTTLHours, "cache-ttl-hours", 0, "hours before a cached page is refetched (0 disables caching entirely; negative never expires)")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory holding the content store")
	rootCmd.PersistentFlags().BoolVar(&aiParsing, "ai-parsing", false, "enable the remote article-parsing enrichment pass")

	rootCmd.AddCommand(crawlCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(reportCmd)
}

// InitSettings builds a CrawlSettings from --config-file if given, otherwise
// from the persistent flags layered onto config.Default().
func InitSettings() (config.CrawlSettings, error) {
	if cfgFile != "" {
		settings, err := config.LoadFile(cfgFile)
		if err != nil {
			return settings, err
		}
		return settings, settings.Validate()
	}

	opts := []config.Option{
		config.WithName(name),
		config.WithStartingURLs(startingURLs...),
	}
	if len(allowedDomains) > 0 {
		opts = append(opts, config.WithAllowedDomains(allowedDomains...))
	}
	if maxDepth > 0 {
		opts = append(opts, config.WithMaxDepth(maxDepth))
	}
	if maxPages > 0 {
		opts = append(opts, config.WithMaxPages(maxPages))
	}
	if concurrency > 0 {
		opts = append(opts, config.WithConcurrency(concurrency))
	}
	if dataDir != "" {
		opts = append(opts, config.WithDataDir(dataDir))
	}
	if aiParsing {
		opts = append(opts, config.WithAIParsing(true))
	}
	if retryEnabled {
		opts = append(opts, config.WithRetryEnabled(true))
	}

	settings := config.New(opts...)
	settings.IsSitemap = isSitemap
	settings.AllowedRegex = allowedRegex
	settings.DeniedRegex = deniedRegex
	settings.DeniedExtensions = deniedExtensions
	if maxRetries >= 0 {
		settings.MaxRetries = maxRetries
	}
	settings.CacheTTLHours = cacheTTLHours
	if userAgent != "" {
		settings.UserAgent = userAgent
	}

	if err := settings.Validate(); err != nil {
		return settings, err
	}
	return settings, nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
