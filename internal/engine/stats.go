package engine

import (
	"sync/atomic"
	"time"
)

// Stats tracks crawl statistics across every domain of a run.
type Stats struct {
	DomainsCrawled    atomic.Int64
	PagesFetched      atomic.Int64
	PagesFailed       atomic.Int64
	PagesSkipped      atomic.Int64
	LinksEnqueued     atomic.Int64
	ProductsScraped   atomic.Int64
	ProductsDropped   atomic.Int64
	ProductsUnscraped atomic.Int64
	BytesDownloaded   atomic.Int64
	StartTime         time.Time
}

// Counters returns the current counter values keyed by metric name.
func (s *Stats) Counters() map[string]int64 {
	return map[string]int64{
		"domains_crawled":    s.DomainsCrawled.Load(),
		"pages_fetched":      s.PagesFetched.Load(),
		"pages_failed":       s.PagesFailed.Load(),
		"pages_skipped":      s.PagesSkipped.Load(),
		"links_enqueued":     s.LinksEnqueued.Load(),
		"products_scraped":   s.ProductsScraped.Load(),
		"products_dropped":   s.ProductsDropped.Load(),
		"products_unscraped": s.ProductsUnscraped.Load(),
		"bytes_downloaded":   s.BytesDownloaded.Load(),
	}
}

// Snapshot returns the counters plus elapsed time, for logging.
func (s *Stats) Snapshot() map[string]any {
	out := make(map[string]any, 10)
	for k, v := range s.Counters() {
		out[k] = v
	}
	if !s.StartTime.IsZero() {
		out["elapsed"] = time.Since(s.StartTime).Round(time.Millisecond).String()
	}
	return out
}
