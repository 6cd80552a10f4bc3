// Package shopcrawl provides a public SDK for embedding the product crawler
// as a library.
//
// Example usage:
//
//	crawler := shopcrawl.NewCrawler(
//	    shopcrawl.WithMaxDepth(2),
//	    shopcrawl.WithMaxProducts(20),
//	    shopcrawl.WithProductSource("discovered"),
//	)
//
//	products, err := crawler.Crawl(ctx, "https://shop.example.com/")
//	if err != nil {
//	    return err
//	}
//	for _, ex := range crawler.Examples(products) {
//	    fmt.Println(ex.Text)
//	}
package shopcrawl

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/IshaanNene/shopcrawl/internal/config"
	"github.com/IshaanNene/shopcrawl/internal/engine"
	"github.com/IshaanNene/shopcrawl/internal/fetcher"
	"github.com/IshaanNene/shopcrawl/internal/pipeline"
	"github.com/IshaanNene/shopcrawl/internal/training"
	"github.com/IshaanNene/shopcrawl/internal/types"
)

type (
	// Product is one scraped product page.
	Product = types.Product

	// TrainingExample is a sentence with labelled PRODUCT spans.
	TrainingExample = types.TrainingExample

	// Entity is a labelled rune span of a TrainingExample.
	Entity = types.Entity
)

// ErrNoSeeds is returned by Crawl when it is given no seed URLs.
var ErrNoSeeds = types.ErrNoSeeds

// Crawler is the high-level API for using shopcrawl as a library.
type Crawler struct {
	cfg    *config.Config
	engine *engine.Engine
	logger *slog.Logger
}

// Option configures a Crawler.
type Option func(*config.Config)

// WithMaxDepth sets the maximum crawl depth.
func WithMaxDepth(depth int) Option {
	return func(c *config.Config) { c.Crawl.MaxDepth = depth }
}

// WithMaxPages caps the pages fetched per domain during discovery.
func WithMaxPages(n int) Option {
	return func(c *config.Config) { c.Crawl.MaxPagesPerDomain = n }
}

// WithMaxProducts caps the products scraped per domain.
func WithMaxProducts(n int) Option {
	return func(c *config.Config) { c.Crawl.MaxProductsPerDomain = n }
}

// WithDelay sets the politeness delay range. The delay is drawn once per
// run unless per-request jitter is enabled.
func WithDelay(minDelay, maxDelay time.Duration) Option {
	return func(c *config.Config) {
		c.Crawl.MinDelay = minDelay
		c.Crawl.MaxDelay = maxDelay
	}
}

// WithJitter re-draws the politeness delay before every request.
func WithJitter() Option {
	return func(c *config.Config) { c.Crawl.JitterPerRequest = true }
}

// WithUserAgent sets a custom User-Agent.
func WithUserAgent(ua string) Option {
	return func(c *config.Config) { c.Crawl.UserAgents = []string{ua} }
}

// WithRobotsRespect enables/disables robots.txt compliance.
func WithRobotsRespect(respect bool) Option {
	return func(c *config.Config) { c.Crawl.RespectRobotsTxt = respect }
}

// WithProductSource selects where the product pass takes its URLs from:
// "frontier" (pages still queued when discovery stops) or "discovered"
// (every product URL seen).
func WithProductSource(source string) Option {
	return func(c *config.Config) { c.Crawl.ProductSource = source }
}

// WithRequireTrustedName drops products whose name was derived from the URL.
func WithRequireTrustedName() Option {
	return func(c *config.Config) { c.Pipeline.RequireTrustedName = true }
}

// WithLogLevel sets the log level: debug, info, warn or error.
func WithLogLevel(level string) Option {
	return func(c *config.Config) { c.Logging.Level = level }
}

// WithVerbose enables debug-level logging.
func WithVerbose() Option {
	return WithLogLevel("debug")
}

// NewCrawler creates a new Crawler with the given options.
func NewCrawler(opts ...Option) *Crawler {
	cfg := config.DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Logging.Level)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	return &Crawler{
		cfg:    cfg,
		logger: logger,
	}
}

// Crawl crawls every seed's domain and returns the scraped products in
// domain order. When ctx is cancelled the products collected so far are
// returned with the context error.
func (c *Crawler) Crawl(ctx context.Context, seeds ...string) ([]*Product, error) {
	if len(seeds) == 0 {
		return nil, ErrNoSeeds
	}
	if err := config.Validate(c.cfg); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	for _, s := range seeds {
		if err := config.ValidateURL(s); err != nil {
			return nil, fmt.Errorf("seed %q: %w", s, err)
		}
	}

	httpFetcher, err := fetcher.NewHTTPFetcher(c.cfg, c.logger)
	if err != nil {
		return nil, fmt.Errorf("create fetcher: %w", err)
	}
	defer httpFetcher.Close()

	eng := engine.New(c.cfg.Crawl, httpFetcher, c.logger)
	if c.cfg.Crawl.RespectRobotsTxt {
		eng.SetPolicySource(engine.NewRobotsCache(httpFetcher.Client(), httpFetcher.UserAgent(), c.logger))
	}
	eng.SetPipeline(pipeline.FromConfig(c.cfg.Pipeline, c.logger))

	c.engine = eng
	return eng.Run(ctx, seeds)
}

// Examples converts products into training examples. Products whose name
// cannot be located in their sentence are left out.
func (c *Crawler) Examples(products []*Product) []*TrainingExample {
	out := make([]*TrainingExample, 0, len(products))
	for _, p := range products {
		if ex, ok := training.GenerateExample(p); ok {
			out = append(out, ex)
		}
	}
	return out
}

// Stats returns crawl statistics of the last Crawl call.
func (c *Crawler) Stats() map[string]any {
	if c.engine != nil {
		return c.engine.Stats().Snapshot()
	}
	return nil
}
