package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/seerhq/seer/internal/config"
	"github.com/seerhq/seer/internal/crawler"
	"github.com/seerhq/seer/internal/database"
	"github.com/seerhq/seer/internal/fetch"
	"github.com/seerhq/seer/internal/log"
	"github.com/seerhq/seer/internal/model"
	"github.com/seerhq/seer/internal/pipeline"
	"github.com/seerhq/seer/internal/report"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [url...]",
		Short: "Crawl one or more sites within depth and page budgets",
		Long: `Crawl fetches pages starting from a seed URL, staying on the seed's
domain and within explicit depth and page budgets.

Each page's main content is converted to markdown and enriched with
structured metadata: contact details, headings, images, social profiles,
and a page-type classification. Results are saved to a local SQLite
database for history queries unless --no-save is given.

Examples:
  # Crawl a single site with default budgets (depth 2, 10 pages)
  seer crawl https://example.com

  # Crawl deeper with a larger page budget
  seer crawl --depth 3 --max-pages 50 https://example.com

  # Crawl several sites concurrently
  seer crawl https://a.example https://b.example https://c.example

  # Render script-driven pages in a headless browser
  seer crawl --render headless https://example.com

  # Crawl through a SOCKS5 proxy (e.g. Tor)
  seer crawl --proxy 127.0.0.1:9050 http://exampleonion.onion

  # Output a JSON report to a file
  seer crawl --json --output report.json https://example.com

Configuration file (.seer) example:
  sites:
    forum.example.com:
      cookie: "session_id=abc123"
      headers:
        Authorization: "Bearer token"
      depth: 3
      render: headless`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl budget flags
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum number of link hops from the seed (0 = seed only)")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to fetch per crawl")
	cmd.Flags().StringSliceP("keywords", "k", nil,
		"Keywords threaded through to results for analysis (default: built-in threat-intel list)")

	// Fetch behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultFetchTimeout,
		"Connection timeout for each request")
	cmd.Flags().Duration("crawl-timeout", config.DefaultCrawlTimeout,
		"Time budget for a whole crawl (partial results are kept on expiry)")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Politeness delay between consecutive fetches of one crawl")
	cmd.Flags().StringP("render", "r", config.RenderModeHTTP,
		"Fetch strategy: http or headless")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address (e.g., 127.0.0.1:9050)")
	cmd.Flags().String("user-agent", "",
		"Fixed User-Agent header (default: rotating browser pool)")
	cmd.Flags().Bool("respect-robots", false,
		"Honor robots.txt disallow rules of the crawled site")
	cmd.Flags().Int("min-content-length", config.DefaultMinContentLength,
		"Minimum text length for a region to count as main content")

	// Batch crawling flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent crawls for multi-seed runs")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .seer in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output full Markdown report including page content")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().StringP("export-dir", "e", "",
		"Directory for per-job markdown export files")

	// Persistence flags
	cmd.Flags().Bool("no-save", false,
		"Do not persist crawl results to the local database")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.MaxDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.Keywords, err = cmd.Flags().GetStringSlice("keywords")
	if err != nil {
		return nil, err
	}

	cfg.FetchTimeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.CrawlTimeout, err = cmd.Flags().GetDuration("crawl-timeout")
	if err != nil {
		return nil, err
	}

	cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.RenderMode, err = cmd.Flags().GetString("render")
	if err != nil {
		return nil, err
	}

	cfg.ProxyAddress, err = cmd.Flags().GetString("proxy")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.RespectRobots, err = cmd.Flags().GetBool("respect-robots")
	if err != nil {
		return nil, err
	}

	cfg.MinContentLength, err = cmd.Flags().GetInt("min-content-length")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use an empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.ExportDir, err = cmd.Flags().GetString("export-dir")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	if !noSave {
		cfg.SaveToDB = true
		cfg.DBDir = config.XDGDataDir()
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Positional arguments are the seed URLs
	cfg.Seeds = args

	return cfg, nil
}

// runCrawl executes crawls for all configured seeds.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting crawl",
		"seeds", cfg.Seeds,
		"maxDepth", cfg.MaxDepth,
		"maxPages", cfg.MaxPages,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.CrawlDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	analyzer := pipeline.NewKeywordAnalyzer(logger)

	var err error
	if len(cfg.Seeds) > 1 && cfg.BatchSize > 1 {
		err = runBatchCrawl(ctx, cfg, db, analyzer, logger)
	} else {
		err = runSequentialCrawl(ctx, cfg, db, analyzer, logger)
	}
	if err != nil {
		return err
	}

	if matches := analyzer.Matches(); len(matches) > 0 {
		fmt.Printf("Keyword matches: %d\n", len(matches))
		for _, m := range matches {
			fmt.Printf("  • %q ×%d on %s\n", m.Keyword, m.Count, m.URL)
		}
	}

	return nil
}

// runSequentialCrawl crawls seeds one at a time, applying per-site
// configuration (cookies, headers, budgets, render mode).
func runSequentialCrawl(ctx context.Context, cfg *config.Config, db *database.CrawlDB, analyzer pipeline.Analyzer, logger *slog.Logger) error {
	for _, seed := range cfg.Seeds {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		site := siteConfigFor(cfg, seed)

		fetcher, cleanup, err := newFetcher(cfg, site)
		if err != nil {
			return fmt.Errorf("failed to set up fetcher for %s: %w", seed, err)
		}

		p := newPipeline(cfg, db, analyzer, fetcher, site, logger)
		job := pipeline.NewJob(seedParams(cfg, seed, site))

		fmt.Printf("Crawling %s...\n", seed)
		startTime := time.Now()

		execErr := p.Execute(ctx, job)
		cleanup()
		if execErr != nil {
			logger.Error("crawl failed", "url", seed, "error", execErr)
			fmt.Fprintf(os.Stderr, "Crawl error for %s: %v\n", seed, execErr)
			if job.Result == nil {
				continue
			}
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Crawl completed in %s\n\n", elapsed.Round(time.Millisecond))

		if err := outputReport(cfg, job.Result); err != nil {
			logger.Error("report failed", "url", seed, "error", err)
		}
	}

	return nil
}

// runBatchCrawl crawls multiple seeds concurrently using BatchProcessor.
func runBatchCrawl(ctx context.Context, cfg *config.Config, db *database.CrawlDB, analyzer pipeline.Analyzer, logger *slog.Logger) error {
	fmt.Printf("Starting batch crawl of %d seeds (concurrency: %d)...\n\n",
		len(cfg.Seeds), cfg.BatchSize)

	startTime := time.Now()

	// Batch mode shares one fetcher across crawls, so per-site overrides
	// (cookies, headers, render mode) are not applied.
	if cfg.SiteConfigs != nil && len(cfg.SiteConfigs.Sites) > 0 {
		logger.Warn("batch processing uses default site config only; site-specific configs are ignored",
			"siteCount", len(cfg.SiteConfigs.Sites))
		fmt.Fprintf(os.Stderr, "Warning: Site-specific configurations are ignored in batch mode. Use sequential mode (--batch 1) to apply per-site settings.\n\n")
	}

	var defaults config.SiteConfig
	if cfg.SiteConfigs != nil {
		defaults = cfg.SiteConfigs.Defaults
	}

	fetcher, cleanup, err := newFetcher(cfg, defaults)
	if err != nil {
		return fmt.Errorf("failed to set up fetcher: %w", err)
	}
	defer cleanup()

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return newPipeline(cfg, db, analyzer, fetcher, defaults, logger)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	params := make([]model.CrawlParameters, len(cfg.Seeds))
	for i, seed := range cfg.Seeds {
		params[i] = seedParams(cfg, seed, defaults)
	}

	// Process with callback for streaming output
	var mu sync.Mutex
	err = bp.ProcessBatchWithCallback(ctx, params, func(job *pipeline.Job, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Printf("[%d/%d] Crawl completed: %s\n", index+1, len(cfg.Seeds), job.Params.SeedURL)

		if job.Result == nil {
			return
		}
		if err := outputReport(cfg, job.Result); err != nil {
			logger.Error("report failed", "url", job.Params.SeedURL, "error", err)
		}
	})

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch crawl completed in %s\n", elapsed.Round(time.Millisecond))

	return err
}

// siteConfigFor returns the merged site configuration for a seed URL.
func siteConfigFor(cfg *config.Config, seed string) config.SiteConfig {
	if cfg.SiteConfigs == nil {
		return config.SiteConfig{}
	}

	host := seed
	if u, err := url.Parse(seed); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}

	return cfg.SiteConfigs.GetSiteConfig(host)
}

// seedParams builds crawl parameters for a seed, applying site overrides
// on top of the global configuration.
func seedParams(cfg *config.Config, seed string, site config.SiteConfig) model.CrawlParameters {
	maxDepth := cfg.MaxDepth
	if site.Depth > 0 {
		maxDepth = site.Depth
	}
	maxPages := cfg.MaxPages
	if site.MaxPages > 0 {
		maxPages = site.MaxPages
	}

	keywords := cfg.Keywords
	if len(keywords) == 0 {
		keywords = config.DefaultKeywords
	}
	if len(site.Keywords) > 0 {
		merged := make([]string, 0, len(keywords)+len(site.Keywords))
		merged = append(merged, keywords...)
		merged = append(merged, site.Keywords...)
		keywords = merged
	}

	return model.CrawlParameters{
		SeedURL:  seed,
		Keywords: keywords,
		MaxDepth: maxDepth,
		MaxPages: maxPages,
	}
}

// newFetcher builds the fetcher for a crawl. The returned cleanup function
// releases fetcher resources (the headless browser) and must be called once
// the crawl is done.
func newFetcher(cfg *config.Config, site config.SiteConfig) (fetch.Fetcher, func(), error) {
	mode := cfg.RenderMode
	if site.Render != "" {
		mode = site.Render
	}

	if mode == config.RenderModeHeadless {
		var opts []fetch.HeadlessOption
		if cfg.UserAgent != "" {
			opts = append(opts, fetch.WithHeadlessUserAgent(cfg.UserAgent))
		}
		f := fetch.NewHeadlessFetcher(opts...)
		return f, func() { _ = f.Close() }, nil
	}

	client := fetch.NewHTTPClient(cfg.FetchTimeout)
	if cfg.ProxyAddress != "" {
		proxyClient, err := fetch.NewProxyClient(cfg.ProxyAddress, cfg.FetchTimeout)
		if err != nil {
			return nil, nil, err
		}
		client = proxyClient.HTTPClient()
	}

	opts := []fetch.Option{
		fetch.WithHTTPClient(client),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
	}
	if cfg.UserAgent != "" {
		opts = append(opts, fetch.WithUserAgent(cfg.UserAgent))
	}
	if site.Cookie != "" {
		opts = append(opts, fetch.WithCookie(site.Cookie))
	}
	if len(site.Headers) > 0 {
		opts = append(opts, fetch.WithHeaders(site.Headers))
	}

	return fetch.NewHTTPFetcher(opts...), func() {}, nil
}

// newPipeline assembles the crawl pipeline: crawl, then persist and export
// when configured, then keyword analysis.
func newPipeline(cfg *config.Config, db *database.CrawlDB, analyzer pipeline.Analyzer, fetcher fetch.Fetcher, site config.SiteConfig, logger *slog.Logger) *pipeline.Pipeline {
	mode := cfg.RenderMode
	if site.Render != "" {
		mode = site.Render
	}

	crawlerOpts := []crawler.Option{
		crawler.WithDelay(cfg.CrawlDelay),
		crawler.WithRespectRobots(cfg.RespectRobots),
		crawler.WithMode(mode),
		crawler.WithMinContentLength(cfg.MinContentLength),
		crawler.WithLogger(logger),
	}
	if len(site.IgnorePatterns) > 0 {
		crawlerOpts = append(crawlerOpts, crawler.WithIgnorePatterns(site.IgnorePatterns))
	}
	if len(site.FollowPatterns) > 0 {
		crawlerOpts = append(crawlerOpts, crawler.WithFollowPatterns(site.FollowPatterns))
	}

	c := crawler.New(fetcher, crawlerOpts...)

	p := pipeline.New(
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	)
	p.AddStep(pipeline.NewCrawlStep(c,
		pipeline.WithCrawlTimeout(cfg.CrawlTimeout),
		pipeline.WithCrawlStepLogger(logger),
	))
	if db != nil {
		p.AddStep(pipeline.NewPersistStep(db, pipeline.WithPersistStepLogger(logger)))
	}
	if cfg.ExportDir != "" {
		p.AddStep(pipeline.NewExportStep(cfg.ExportDir, pipeline.WithExportStepLogger(logger)))
	}
	p.AddStep(pipeline.NewAnalyzeStep(analyzer, pipeline.WithAnalyzeStepLogger(logger)))

	return p
}

// outputReport outputs the crawl result in the requested format.
func outputReport(cfg *config.Config, result *model.CrawlResult) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports may contain session cookies or gated content, so keep
		// them readable by the owner only.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// JSON output (full structured result)
	if cfg.JSONReport {
		_, err := report.NewJSONWriter(output, report.WithPrettyPrint()).Write(result)
		return err
	}

	// Full markdown report including page content
	if cfg.MarkdownReport {
		_, err := report.NewMarkdownWriter(output).Write(result)
		return err
	}

	// Human-readable summary (default): markdown without page content
	_, err := report.NewMarkdownWriter(output, report.WithoutPageContent()).Write(result)
	return err
}
