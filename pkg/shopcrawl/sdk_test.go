package shopcrawl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const nav = `<nav class="nav"><a href="/collections/chairs">Chairs</a><a href="/about">About</a></nav>`

// storefront serves a tiny shop: a home page linking one collection, which
// lists three products. robots.txt blocks one of them.
func storefront(t *testing.T) (*httptest.Server, *sync.Map) {
	t.Helper()
	hits := &sync.Map{}
	page := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			hits.Store(r.URL.Path, true)
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprintf(w, "<html><head></head><body>%s</body></html>", body)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "User-agent: *\nDisallow: /products/blocked-bench\n")
	})
	mux.HandleFunc("/{$}", page(nav+`<h1>Welcome</h1>`))
	mux.HandleFunc("/collections/chairs", page(nav+`
		<div class="product-grid">
			<div class="product-card"><a href="/products/oak-chair">Oak Chair</a></div>
			<div class="product-card"><a href="/products/pine-stool?variant=2">Pine Stool</a></div>
			<div class="product-card"><a href="/products/blocked-bench">Bench</a></div>
		</div>`))
	mux.HandleFunc("/products/oak-chair", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head>
			<meta property="og:title" content="Oak Chair">
			<meta property="og:description" content="Solid oak dining chair">
			</head><body>`+nav+`<span class="price">$120.00</span></body></html>`)
	})
	mux.HandleFunc("/products/pine-stool", page(nav+`<h1 class="title">Pine Stool</h1><p>Compact stool.</p>`))
	mux.HandleFunc("/products/blocked-bench", page(`<h1 class="title">Bench</h1>`))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, hits
}

func quietCrawler(opts ...Option) *Crawler {
	base := []Option{WithDelay(0, 0), WithLogLevel("error")}
	return NewCrawler(append(base, opts...)...)
}

func TestCrawlDiscovered(t *testing.T) {
	srv, hits := storefront(t)
	c := quietCrawler(WithProductSource("discovered"))

	products, err := c.Crawl(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatalf("Crawl: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d: %+v", len(products), products)
	}

	oak, stool := products[0], products[1]
	if oak.Name != "Oak Chair" || oak.NameSource != "og:title" || oak.Regular() != "$120.00" {
		t.Errorf("unexpected oak chair: %+v", oak)
	}
	if oak.URL != srv.URL+"/products/oak-chair" {
		t.Errorf("oak URL = %q", oak.URL)
	}
	if stool.Name != "Pine Stool" || stool.NameSource != "heading" || stool.RegularPrice != nil {
		t.Errorf("unexpected stool: %+v", stool)
	}
	if stool.URL != srv.URL+"/products/pine-stool" {
		t.Errorf("stool URL should be normalized, got %q", stool.URL)
	}

	if _, ok := hits.Load("/products/blocked-bench"); ok {
		t.Error("robots-disallowed product was fetched")
	}
	if _, ok := hits.Load("/about"); ok {
		t.Error("non-collection nav link was followed")
	}

	examples := c.Examples(products)
	if len(examples) != 2 {
		t.Fatalf("expected 2 examples, got %d", len(examples))
	}
	if examples[0].Text != "Price: Oak Chair at $120.00" && examples[0].Text != "Oak Chair: Solid oak dining chair" {
		t.Errorf("unexpected sentence %q", examples[0].Text)
	}
	if e := examples[1].Entities; len(e) != 1 || e[0].Start != 0 || e[0].End != 10 || e[0].Label != "PRODUCT" {
		t.Errorf("unexpected entities %v", e)
	}
}

func TestCrawlFrontierBudget(t *testing.T) {
	srv, _ := storefront(t)

	// Discovery stops after the collection page, leaving the product links
	// queued for the product pass.
	c := quietCrawler(WithMaxPages(2))
	products, err := c.Crawl(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatalf("Crawl: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	stats := c.Stats()
	if stats["products_unscraped"] != int64(0) {
		t.Errorf("products_unscraped = %v", stats["products_unscraped"])
	}
}

func TestCrawlFrontierExhausted(t *testing.T) {
	srv, _ := storefront(t)

	// With budget to spare, discovery visits and dequeues every product page,
	// so nothing is left in the frontier for the product pass.
	c := quietCrawler()
	products, err := c.Crawl(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatalf("Crawl: %v", err)
	}
	if len(products) != 0 {
		t.Errorf("expected no products, got %d", len(products))
	}
	if got := c.Stats()["products_unscraped"]; got != int64(3) {
		t.Errorf("products_unscraped = %v, want 3", got)
	}
}

func TestCrawlRequireTrustedName(t *testing.T) {
	srv, _ := storefront(t)
	c := quietCrawler(WithProductSource("discovered"), WithRequireTrustedName())
	products, err := c.Crawl(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatalf("Crawl: %v", err)
	}
	for _, p := range products {
		if !p.Trusted() {
			t.Errorf("untrusted product kept: %+v", p)
		}
	}
}

func TestCrawlInputErrors(t *testing.T) {
	c := quietCrawler()
	if _, err := c.Crawl(context.Background()); !errors.Is(err, ErrNoSeeds) {
		t.Errorf("expected ErrNoSeeds, got %v", err)
	}
	if _, err := c.Crawl(context.Background(), "ftp://shop.example.com/"); err == nil {
		t.Error("expected invalid seed error")
	}
	if c.Stats() != nil {
		t.Error("Stats before a crawl should be nil")
	}

	bad := quietCrawler(WithProductSource("everything"))
	_, err := bad.Crawl(context.Background(), "https://shop.example.com/")
	if err == nil || !strings.Contains(err.Error(), "product_source") {
		t.Errorf("expected product_source validation error, got %v", err)
	}
}

func TestCrawlCancelled(t *testing.T) {
	srv, _ := storefront(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := quietCrawler()
	_, err := c.Crawl(ctx, srv.URL+"/")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
