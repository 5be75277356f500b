package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/restmap/restmap/internal/config"
	"github.com/restmap/restmap/internal/crawler"
	"github.com/restmap/restmap/internal/database"
	"github.com/restmap/restmap/internal/fetch"
	"github.com/restmap/restmap/internal/log"
	"github.com/restmap/restmap/internal/model"
	"github.com/restmap/restmap/internal/report"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <url> [url...]",
		Short: "Crawl a REST API and map its endpoints",
		Long: `Crawl fetches JSON from the seed URL, extracts hypermedia links
(HAL _links, JSON:API links, plain href fields, and URL-shaped values),
and follows them breadth-first until the depth or URL limit is reached.

The discovered endpoints are reported flat, grouped by parent, or as a
nested tree.

Examples:
  # Map an API and print a nested endpoint tree
  restmap crawl --format tree https://api.example.com

  # Authenticated crawl restricted to one host
  restmap crawl -H "Authorization: Bearer TOKEN" --allowed-domain api.example.com https://api.example.com

  # Map several APIs concurrently, write markdown to a file
  restmap crawl -b 3 --format markdown -o apis.md https://a.example.com https://b.example.com

Configuration file (.restmap) example:
  apis:
    api.example.com:
      headers:
        Authorization: "Bearer token"
      max_depth: 5
      delay_ms: 250`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCrawlCmd,
	}

	// Traversal flags
	cmd.Flags().IntP("max-depth", "d", config.DefaultMaxDepth,
		"Maximum crawl depth (0 = unlimited)")
	cmd.Flags().Int("concurrency", config.DefaultMaxConcurrentRequests,
		"Maximum number of requests in flight at once")
	cmd.Flags().Int("max-urls", config.DefaultMaxURLs,
		"Maximum number of URLs to fetch per crawl (0 = unlimited)")
	cmd.Flags().Duration("delay", config.DefaultDelay,
		"Pause between request dispatches")

	// Request flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Per-request timeout")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().StringArrayP("header", "H", nil,
		"Extra header sent with every request, as 'Name: value' (repeatable)")
	cmd.Flags().StringArray("allowed-domain", nil,
		"Restrict crawling to this host (repeatable; default: unrestricted)")
	cmd.Flags().Bool("no-redirects", false,
		"Do not follow HTTP redirects")

	// Batch crawling
	cmd.Flags().IntP("batch", "b", 1,
		"Number of concurrent crawls when multiple URLs are given")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .restmap in current or home directory)")

	// Report flags
	cmd.Flags().StringP("format", "f", "text",
		"Report format: json, compact, hierarchical, tree, text, or markdown")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-save", false,
		"Do not save the crawl result to the local history database")

	return cmd
}

// crawlOptions carries the parsed crawl command flags that are not part of
// the engine configuration itself.
type crawlOptions struct {
	seeds      []string
	format     string
	outputPath string
	batchSize  int
	save       bool
	siteFile   *config.File
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, opts, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with credential redaction
	verbose := getVerboseFlag(cmd)
	logger := log.NewLogger(os.Stderr, verbose)
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

	return runCrawl(ctx, cfg, opts, logger)
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

// buildConfig creates a Config and crawl options from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, *crawlOptions, error) {
	cfg := config.NewConfig()
	opts := &crawlOptions{seeds: args}

	var err error

	cfg.MaxDepth, err = cmd.Flags().GetInt("max-depth")
	if err != nil {
		return nil, nil, err
	}

	cfg.MaxConcurrentRequests, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, nil, err
	}

	cfg.MaxURLs, err = cmd.Flags().GetInt("max-urls")
	if err != nil {
		return nil, nil, err
	}

	cfg.Delay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, nil, err
	}

	headers, err := cmd.Flags().GetStringArray("header")
	if err != nil {
		return nil, nil, err
	}
	for _, h := range headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			return nil, nil, fmt.Errorf("invalid header %q: expected 'Name: value'", h)
		}
		cfg.Headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}

	cfg.AllowedDomains, err = cmd.Flags().GetStringArray("allowed-domain")
	if err != nil {
		return nil, nil, err
	}

	noRedirects, err := cmd.Flags().GetBool("no-redirects")
	if err != nil {
		return nil, nil, err
	}
	cfg.FollowRedirects = !noRedirects

	opts.batchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, nil, err
	}

	opts.format, err = cmd.Flags().GetString("format")
	if err != nil {
		return nil, nil, err
	}

	opts.outputPath, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, nil, err
	}
	opts.save = !noSave

	// Load per-API configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	configFlag, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, err
	}
	configPath := config.FindConfigFile(configFlag)
	if configPath != "" {
		opts.siteFile, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if configFlag != "" {
		return nil, nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, configFlag)
	} else {
		opts.siteFile = &config.File{APIs: make(map[string]config.SiteConfig)}
	}

	return cfg, opts, nil
}

// runCrawl executes the crawl against all seeds and writes the report.
func runCrawl(ctx context.Context, cfg *config.Config, opts *crawlOptions, logger *slog.Logger) error {
	logger.Info("starting crawl",
		"seeds", opts.seeds,
		"maxDepth", cfg.MaxDepth,
		"maxURLs", cfg.MaxURLs,
		"batch", opts.batchSize,
	)

	// Open database connection if saving is enabled
	var db *database.CrawlDB
	if opts.save {
		var err error
		db, err = database.Open(config.XDGDataDir(), database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", config.XDGDataDir())
	}

	output, closeOutput, err := openOutput(opts.outputPath)
	if err != nil {
		return err
	}
	defer closeOutput()

	writer, err := newReportWriter(opts.format, output)
	if err != nil {
		return err
	}

	var results []*model.CrawlResult
	if len(opts.seeds) > 1 && opts.batchSize > 1 {
		results, err = runBatchCrawl(ctx, cfg, opts, logger)
	} else {
		results, err = runSequentialCrawl(ctx, cfg, opts, logger)
	}
	if err != nil {
		return err
	}

	anyFailed := false
	for _, result := range results {
		if _, err := writer.Write(result); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		if err := saveCrawlResult(ctx, db, result, logger); err != nil {
			logger.Error("failed to save crawl result", "startURL", result.StartURL, "error", err)
		}
		if result.Stats.FailedRequests > 0 {
			anyFailed = true
		}
	}

	if anyFailed {
		return errPartialCrawl
	}
	return nil
}

// runSequentialCrawl crawls seeds one at a time, applying per-API
// configuration for each seed's host.
func runSequentialCrawl(ctx context.Context, cfg *config.Config, opts *crawlOptions, logger *slog.Logger) ([]*model.CrawlResult, error) {
	results := make([]*model.CrawlResult, 0, len(opts.seeds))

	for _, seed := range opts.seeds {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		seedCfg := configForSeed(cfg, opts.siteFile, seed)

		engine, err := newEngine(seedCfg, logger)
		if err != nil {
			return nil, err
		}

		fmt.Fprintf(os.Stderr, "Crawling %s...\n", seed)
		startTime := time.Now()

		result, err := engine.Crawl(ctx, seed)
		if err != nil {
			return nil, fmt.Errorf("crawl of %s failed: %w", seed, err)
		}

		elapsed := time.Since(startTime)
		fmt.Fprintf(os.Stderr, "Crawl completed in %s: %s\n", elapsed.Round(time.Millisecond), result.Summary())

		results = append(results, result)
	}

	return results, nil
}

// runBatchCrawl crawls multiple seeds concurrently using BatchCrawler.
// Per-API configurations are not applied in batch mode because all engines
// share one configuration.
func runBatchCrawl(ctx context.Context, cfg *config.Config, opts *crawlOptions, logger *slog.Logger) ([]*model.CrawlResult, error) {
	if len(opts.siteFile.APIs) > 0 {
		logger.Warn("batch crawling ignores per-API configs; use --batch 1 to apply them",
			"apiCount", len(opts.siteFile.APIs))
		fmt.Fprintf(os.Stderr, "Warning: Per-API configurations are ignored in batch mode. Use --batch 1 to apply per-API settings.\n\n")
	}

	fmt.Fprintf(os.Stderr, "Starting batch crawl of %d APIs (concurrency: %d)...\n",
		len(opts.seeds), opts.batchSize)

	startTime := time.Now()

	// One shared client: it is safe for concurrent use and every engine in
	// the batch runs with the same flag-derived configuration.
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}

	bc := crawler.NewBatchCrawler(
		func() *crawler.Engine {
			return crawler.NewEngine(client, cfg, crawler.WithLogger(logger))
		},
		crawler.WithBatchConcurrency(opts.batchSize),
		crawler.WithBatchLogger(logger),
	)

	results, err := bc.CrawlAll(ctx, opts.seeds)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(os.Stderr, "Batch crawl completed in %s\n", time.Since(startTime).Round(time.Millisecond))

	return results, nil
}

// newClient builds an HTTP client from the configuration.
func newClient(cfg *config.Config) (*fetch.Client, error) {
	client, err := fetch.NewClient(cfg.Headers,
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithFollowRedirects(cfg.FollowRedirects),
	)
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return client, nil
}

// newEngine builds an HTTP client and crawl engine from the configuration.
func newEngine(cfg *config.Config, logger *slog.Logger) (*crawler.Engine, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return crawler.NewEngine(client, cfg, crawler.WithLogger(logger)), nil
}

// configForSeed returns a copy of cfg with the per-API configuration for the
// seed's host applied. The base config is never mutated, so each seed starts
// from the same flag-derived settings.
func configForSeed(cfg *config.Config, file *config.File, seed string) *config.Config {
	seedCfg := *cfg
	seedCfg.Headers = make(map[string]string, len(cfg.Headers))
	for name, value := range cfg.Headers {
		seedCfg.Headers[name] = value
	}

	if file == nil {
		return &seedCfg
	}

	u, err := url.Parse(seed)
	if err != nil {
		return &seedCfg
	}
	if siteConfig, ok := file.APIs[u.Host]; ok {
		siteConfig.ApplyTo(&seedCfg)
	}
	return &seedCfg
}

// openOutput resolves the report destination. It returns stdout when no path
// is given, otherwise it creates the file (and parent directories).
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports from authenticated APIs may carry sensitive endpoint metadata,
	// so the file is only readable by the owner.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// newReportWriter maps a format name to a report writer.
func newReportWriter(format string, output io.Writer) (report.Writer, error) {
	switch format {
	case "json":
		return report.NewJSONWriter(output, report.WithPrettyPrint()), nil
	case "compact":
		return report.NewJSONWriter(output), nil
	case "hierarchical":
		return report.NewJSONWriter(output, report.WithView(report.ViewHierarchical), report.WithPrettyPrint()), nil
	case "tree":
		return report.NewJSONWriter(output, report.WithView(report.ViewTree), report.WithPrettyPrint()), nil
	case "text":
		return report.NewTextWriter(output), nil
	case "markdown":
		return report.NewMarkdownWriter(output), nil
	default:
		return nil, fmt.Errorf("unknown format %q: want json, compact, hierarchical, tree, text, or markdown", format)
	}
}

// saveCrawlResult saves the crawl result to the database if enabled.
// If db is nil, this function is a no-op.
func saveCrawlResult(ctx context.Context, db *database.CrawlDB, result *model.CrawlResult, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	id, err := db.SaveCrawlResult(ctx, result)
	if err != nil {
		return err
	}

	logger.Info("crawl result saved", "startURL", result.StartURL, "runID", id)
	return nil
}
