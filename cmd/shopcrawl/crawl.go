package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/shopcrawl/internal/config"
	"github.com/IshaanNene/shopcrawl/internal/engine"
	"github.com/IshaanNene/shopcrawl/internal/fetcher"
	"github.com/IshaanNene/shopcrawl/internal/observability"
	"github.com/IshaanNene/shopcrawl/internal/pipeline"
	"github.com/IshaanNene/shopcrawl/internal/storage"
	"github.com/IshaanNene/shopcrawl/internal/training"
	"github.com/IshaanNene/shopcrawl/internal/types"
)

type crawlFlags struct {
	input         string
	output        string
	depth         int
	maxPages      int
	maxProducts   int
	minDelay      time.Duration
	maxDelay      time.Duration
	productSource string
	productsType  string
	ignoreRobots  bool
	userAgent     string
}

// crawlCmd creates the "crawl" subcommand.
func crawlCmd() *cobra.Command {
	f := &crawlFlags{}
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl seed storefronts and write NER training data",
		Long: `Read seed URLs from a CSV file, crawl each storefront breadth-first for
collection and product pages, scrape the products and write one PRODUCT-labelled
training example per product as JSON Lines.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(func(cfg *config.Config) { f.apply(cmd, cfg) })
			if err != nil {
				return err
			}
			return runCrawl(cmd, cfg)
		},
	}

	cmd.Flags().StringVarP(&f.input, "input", "i", "", "seed CSV file (first column holds URLs)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "training data JSONL output path")
	cmd.Flags().IntVarP(&f.depth, "depth", "d", 0, "maximum crawl depth")
	cmd.Flags().IntVar(&f.maxPages, "max-pages", 0, "maximum pages fetched per domain during discovery")
	cmd.Flags().IntVar(&f.maxProducts, "max-products", 0, "maximum products scraped per domain")
	cmd.Flags().DurationVar(&f.minDelay, "min-delay", 0, "minimum politeness delay")
	cmd.Flags().DurationVar(&f.maxDelay, "max-delay", 0, "maximum politeness delay")
	cmd.Flags().StringVar(&f.productSource, "product-source", "", "product pass input: frontier or discovered")
	cmd.Flags().StringVar(&f.productsType, "products", "", "product archive backends: none or a list of jsonl, sqlite, mongodb")
	cmd.Flags().BoolVar(&f.ignoreRobots, "ignore-robots", false, "do not consult robots.txt")
	cmd.Flags().StringVar(&f.userAgent, "user-agent", "", "custom User-Agent string")

	return cmd
}

// apply copies explicitly set flags onto cfg.
func (f *crawlFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	set := cmd.Flags().Changed
	if set("input") {
		cfg.Storage.InputPath = f.input
	}
	if set("output") {
		cfg.Storage.OutputPath = f.output
	}
	if set("depth") {
		cfg.Crawl.MaxDepth = f.depth
	}
	if set("max-pages") {
		cfg.Crawl.MaxPagesPerDomain = f.maxPages
	}
	if set("max-products") {
		cfg.Crawl.MaxProductsPerDomain = f.maxProducts
	}
	if set("min-delay") {
		cfg.Crawl.MinDelay = f.minDelay
	}
	if set("max-delay") {
		cfg.Crawl.MaxDelay = f.maxDelay
	}
	if set("product-source") {
		cfg.Crawl.ProductSource = f.productSource
	}
	if set("products") {
		cfg.Storage.ProductsType = f.productsType
	}
	if f.ignoreRobots {
		cfg.Crawl.RespectRobotsTxt = false
	}
	if f.userAgent != "" {
		cfg.Crawl.UserAgents = []string{f.userAgent}
	}
}

// runCrawl executes the crawl command.
func runCrawl(cmd *cobra.Command, cfg *config.Config) error {
	logger := setupLogger(cfg.Logging)

	seeds, err := loadSeeds(cfg.Storage.InputPath, logger)
	if err != nil {
		return err
	}

	httpFetcher, err := fetcher.NewHTTPFetcher(cfg, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	defer httpFetcher.Close()

	eng := engine.New(cfg.Crawl, httpFetcher, logger)
	if cfg.Crawl.RespectRobotsTxt {
		eng.SetPolicySource(engine.NewRobotsCache(httpFetcher.Client(), httpFetcher.UserAgent(), logger))
	}
	eng.SetPipeline(pipeline.FromConfig(cfg.Pipeline, logger))

	metrics := observability.NewMetrics(eng.Stats(), logger)
	if cfg.Metrics.Enabled {
		srv, err := metrics.StartServer(cfg.Metrics.Port, cfg.Metrics.Path)
		if err != nil {
			logger.Warn("failed to start metrics server", "error", err)
		} else {
			defer srv.Close()
		}
	}

	store, err := storage.New(cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	if store != nil {
		defer func() {
			if err := store.Close(); err != nil {
				logger.Error("close storage", "backend", store.Name(), "error", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting crawl",
		"seeds", len(seeds),
		"depth", cfg.Crawl.MaxDepth,
		"robots", cfg.Crawl.RespectRobotsTxt,
		"output", cfg.Storage.OutputPath,
		"products", cfg.Storage.ProductsType,
	)

	start := time.Now()
	products, err := eng.Run(ctx, seeds)
	switch {
	case errors.Is(err, context.Canceled):
		logger.Warn("crawl interrupted, writing partial results", "products", len(products))
	case err != nil:
		return fmt.Errorf("crawl: %w", err)
	}

	if store != nil && len(products) > 0 {
		if err := store.Store(products); err != nil {
			logger.Error("store products", "backend", store.Name(), "error", err)
		} else {
			metrics.ProductsStored.Add(int64(len(products)))
		}
	}

	written, err := writeExamples(cfg.Storage.OutputPath, products, logger)
	if err != nil {
		return err
	}
	metrics.ExamplesWritten.Add(int64(written))

	elapsed := time.Since(start)
	stats := eng.Stats().Counters()
	logger.Info("crawl complete", "elapsed", elapsed, "stats", metrics.Snapshot())

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n✅ Crawl complete in %s\n", elapsed.Round(time.Millisecond))
	fmt.Fprintf(out, "   Domains:   %d\n", stats["domains_crawled"])
	fmt.Fprintf(out, "   Pages:     %d fetched, %d failed, %d skipped\n",
		stats["pages_fetched"], stats["pages_failed"], stats["pages_skipped"])
	fmt.Fprintf(out, "   Products:  %d scraped, %d dropped\n", stats["products_scraped"], stats["products_dropped"])
	fmt.Fprintf(out, "   Examples:  %d written to %s\n", written, cfg.Storage.OutputPath)

	if n := stats["products_unscraped"]; n > 0 {
		fmt.Fprintf(out, "\n💡 %d product pages were visited during discovery but not scraped.\n", n)
		fmt.Fprintln(out, "   Re-run with --product-source discovered to scrape them too.")
	}
	return nil
}

// loadSeeds reads the seed file and drops URLs that cannot be crawled.
func loadSeeds(path string, logger *slog.Logger) ([]string, error) {
	raw, err := storage.ReadSeedsFile(path)
	if err != nil {
		return nil, err
	}
	seeds := make([]string, 0, len(raw))
	for _, u := range raw {
		if err := config.ValidateURL(u); err != nil {
			logger.Warn("seed skipped", "url", u, "reason", err)
			continue
		}
		seeds = append(seeds, u)
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("%s: %w", path, types.ErrNoSeeds)
	}
	return seeds, nil
}

// writeExamples converts products into training examples and writes them as
// JSON Lines to path, replacing any previous file.
func writeExamples(path string, products []*types.Product, logger *slog.Logger) (int, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	ew := training.NewExampleWriter(f)
	for _, p := range products {
		ex, ok := training.GenerateExample(p)
		if !ok {
			logger.Debug("no example for product", "url", p.URL, "name", p.Name)
			continue
		}
		if err := ew.Write(ex); err != nil {
			return ew.Count(), fmt.Errorf("write example: %w", err)
		}
	}
	if err := ew.Flush(); err != nil {
		return ew.Count(), fmt.Errorf("flush examples: %w", err)
	}
	if skipped := len(products) - ew.Count(); skipped > 0 {
		logger.Info("products without a locatable name were not converted", "skipped", skipped)
	}
	return ew.Count(), f.Close()
}
