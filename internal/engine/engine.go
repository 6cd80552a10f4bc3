package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IshaanNene/shopcrawl/internal/config"
	"github.com/IshaanNene/shopcrawl/internal/parser"
	"github.com/IshaanNene/shopcrawl/internal/types"
	"github.com/IshaanNene/shopcrawl/internal/urlnorm"
)

// Fetcher retrieves one page. A non-200 status is reported as a
// *types.FetchError.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*types.Response, error)
}

// Pipeline post-processes a scraped product. Returning an error drops it.
type Pipeline interface {
	Process(p *types.Product) (*types.Product, error)
}

// Engine crawls one storefront domain at a time: a bounded breadth-first
// traversal over collection pages, then a scrape pass over product pages.
type Engine struct {
	cfg      config.CrawlConfig
	logger   *slog.Logger
	fetcher  Fetcher
	robots   PolicySource
	throttle *Throttle
	pipeline Pipeline
	stats    *Stats
}

// New creates an Engine that ignores robots.txt until a PolicySource is
// attached with SetPolicySource.
func New(cfg config.CrawlConfig, fetcher Fetcher, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:      cfg,
		logger:   logger.With("component", "engine"),
		fetcher:  fetcher,
		throttle: NewThrottle(cfg.MinDelay, cfg.MaxDelay, cfg.JitterPerRequest),
		stats:    &Stats{StartTime: time.Now()},
		robots:   IgnoreRobots,
	}
}

// SetPolicySource replaces the robots policy source.
func (e *Engine) SetPolicySource(ps PolicySource) { e.robots = ps }

// SetPipeline sets the product pipeline.
func (e *Engine) SetPipeline(p Pipeline) { e.pipeline = p }

// SetSleeper replaces the politeness sleeper.
func (e *Engine) SetSleeper(s Sleeper) { e.throttle.SetSleeper(s) }

// Stats returns the run's statistics.
func (e *Engine) Stats() *Stats { return e.stats }

// Run groups seeds by registrable domain and crawls each group in turn,
// returning products in group order. On cancellation it returns what was
// collected so far along with the context error.
func (e *Engine) Run(ctx context.Context, seeds []string) ([]*types.Product, error) {
	groups := urlnorm.GroupByDomain(seeds)
	if len(groups) == 0 {
		return nil, types.ErrNoSeeds
	}

	e.logger.Info("crawl starting",
		"domains", len(groups),
		"seeds", len(seeds),
		"max_depth", e.cfg.MaxDepth,
		"max_pages", e.cfg.MaxPagesPerDomain,
		"max_products", e.cfg.MaxProductsPerDomain,
		"product_source", e.cfg.ProductSource,
		"delay", e.throttle.Delay(),
	)

	var all []*types.Product
	for _, g := range groups {
		products, err := e.CrawlDomain(ctx, g.Seeds)
		all = append(all, products...)
		if err != nil {
			return all, err
		}
	}

	e.logger.Info("crawl finished", "products", len(all), "stats", e.stats.Snapshot())
	return all, nil
}

// CrawlDomain crawls one domain starting from seeds, which must share a
// registrable domain.
func (e *Engine) CrawlDomain(ctx context.Context, seeds []string) ([]*types.Product, error) {
	if len(seeds) == 0 {
		return nil, types.ErrNoSeeds
	}
	e.stats.DomainsCrawled.Add(1)

	c := &domainCrawl{
		Engine:     e,
		log:        e.logger.With("domain", urlnorm.RegistrableDomain(seeds[0])),
		policy:     e.robots.Policy(ctx, seeds[0]),
		frontier:   NewFrontier(),
		visited:    NewVisitedSet(),
		discovered: NewVisitedSet(),
	}
	for _, s := range seeds {
		c.enqueue(types.CrawlTarget{URL: s, Depth: 0})
	}

	c.log.Info("discovering product pages", "seeds", len(seeds))
	if err := c.traverse(ctx); err != nil {
		return c.products, err
	}

	candidates := c.candidates()
	c.log.Info("scraping product pages", "candidates", len(candidates), "visited", c.visited.Len())
	err := c.scrape(ctx, candidates)
	c.log.Info("domain finished", "products", len(c.products))
	return c.products, err
}

// domainCrawl is the state of one CrawlDomain call.
type domainCrawl struct {
	*Engine
	log        *slog.Logger
	policy     Policy
	frontier   *Frontier
	visited    *VisitedSet
	discovered *VisitedSet
	products   []*types.Product
}

func (c *domainCrawl) enqueue(t types.CrawlTarget) {
	c.frontier.Push(t)
	c.stats.LinksEnqueued.Add(1)
	if parser.IsProductPage(t.URL) {
		c.discovered.Add(t.URL)
	}
}

func (c *domainCrawl) budgetLeft() bool {
	return c.visited.Len() < c.cfg.MaxPagesPerDomain && len(c.products) < c.cfg.MaxProductsPerDomain
}

// traverse runs the breadth-first discovery phase.
func (c *domainCrawl) traverse(ctx context.Context) error {
	for c.frontier.Len() > 0 && c.budgetLeft() {
		if err := ctx.Err(); err != nil {
			return err
		}
		target, _ := c.frontier.Pop()
		if !c.visited.Add(target.URL) {
			c.log.Debug("skipping page", "url", target.URL, "error", types.ErrDuplicate)
			continue
		}
		if target.Depth > c.cfg.MaxDepth {
			c.stats.PagesSkipped.Add(1)
			c.log.Debug("skipping page", "url", target.URL, "error", types.ErrMaxDepth)
			continue
		}
		if !c.policy.Allowed(c.cfg.RobotsAgent, target.URL) {
			c.stats.PagesSkipped.Add(1)
			c.log.Debug("skipping page", "url", target.URL, "error", types.ErrBlocked)
			continue
		}

		c.expand(ctx, target)

		if err := c.throttle.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// expand fetches one page and enqueues the unseen links it exposes.
func (c *domainCrawl) expand(ctx context.Context, target types.CrawlTarget) {
	c.log.Debug("fetching", "url", target.URL, "depth", target.Depth)
	page, err := c.fetchPage(ctx, target.URL)
	if err != nil {
		c.log.Warn("page failed", "url", target.URL, "error", err)
		return
	}

	next := target.Depth + 1
	if parser.IsCollectionURL(target.URL) {
		links := parser.FindProductLinks(page)
		c.log.Debug("found product links", "url", target.URL, "count", len(links))
		for _, link := range links {
			if !c.visited.Has(link) {
				c.enqueue(types.CrawlTarget{URL: link, Depth: next})
			}
		}
	}
	for _, link := range parser.FindCollectionPages(page) {
		if !c.visited.Has(link) {
			c.enqueue(types.CrawlTarget{URL: link, Depth: next})
		}
	}
}

// candidates returns the URLs for the product pass.
func (c *domainCrawl) candidates() []string {
	if c.cfg.ProductSource == config.ProductSourceDiscovered {
		return c.discovered.List()
	}

	var out []string
	queued := NewVisitedSet()
	for _, t := range c.frontier.Snapshot() {
		if parser.IsProductPage(t.URL) {
			out = append(out, t.URL)
			queued.Add(t.URL)
		}
	}
	var missed int64
	for _, u := range c.discovered.List() {
		if !queued.Has(u) {
			missed++
		}
	}
	if missed > 0 {
		c.stats.ProductsUnscraped.Add(missed)
		c.log.Info("discovered product pages left unscraped", "count", missed, "product_source", config.ProductSourceFrontier)
	}
	return out
}

// scrape fetches and extracts each candidate until the product cap is hit.
func (c *domainCrawl) scrape(ctx context.Context, candidates []string) error {
	done := NewVisitedSet()
	for _, u := range candidates {
		if len(c.products) >= c.cfg.MaxProductsPerDomain {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !done.Add(u) {
			c.log.Debug("skipping product", "url", u, "error", types.ErrDuplicate)
			continue
		}
		if !c.policy.Allowed(c.cfg.RobotsAgent, u) {
			c.stats.PagesSkipped.Add(1)
			c.log.Debug("skipping product", "url", u, "error", types.ErrBlocked)
			continue
		}

		if p, err := c.scrapeProduct(ctx, u); err != nil {
			c.log.Warn("product dropped", "url", u, "error", err)
		} else {
			c.products = append(c.products, p)
			c.log.Info("found product", "name", p.Name, "regular", p.Regular(), "sale", p.Sale())
		}

		if err := c.throttle.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (c *domainCrawl) scrapeProduct(ctx context.Context, productURL string) (*types.Product, error) {
	page, err := c.fetchPage(ctx, productURL)
	if err != nil {
		return nil, err
	}
	p, err := parser.ExtractFromPage(productURL, page)
	if err != nil {
		c.stats.ProductsDropped.Add(1)
		return nil, err
	}
	if c.pipeline != nil {
		p, err = c.pipeline.Process(p)
		if err != nil {
			c.stats.ProductsDropped.Add(1)
			return nil, err
		}
	}
	c.stats.ProductsScraped.Add(1)
	return p, nil
}

func (c *domainCrawl) fetchPage(ctx context.Context, rawURL string) (*parser.Page, error) {
	resp, err := c.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		c.stats.PagesFailed.Add(1)
		return nil, err
	}
	if !resp.IsOK() {
		c.stats.PagesFailed.Add(1)
		return nil, &types.FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: errors.New("unexpected status")}
	}
	c.stats.PagesFetched.Add(1)
	c.stats.BytesDownloaded.Add(int64(len(resp.Body)))

	page, err := parser.PageFromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}
	return page, nil
}
