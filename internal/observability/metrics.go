// Package observability exposes crawl counters for scraping by Prometheus.
package observability

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"sync/atomic"
	"time"
)

// CounterSource supplies named counter values, such as engine.Stats.
type CounterSource interface {
	Counters() map[string]int64
}

// help texts for known counters; unknown names fall back to the name itself.
var help = map[string]string{
	"domains_crawled":    "Total domains crawled",
	"pages_fetched":      "Total pages fetched successfully",
	"pages_failed":       "Total page fetches that failed",
	"pages_skipped":      "Total URLs skipped by depth or robots rules",
	"links_enqueued":     "Total links added to the frontier",
	"products_scraped":   "Total products extracted",
	"products_dropped":   "Total products dropped by the pipeline",
	"products_unscraped": "Total product pages visited during traversal but not scraped",
	"bytes_downloaded":   "Total response bytes downloaded",
	"products_stored":    "Total products written to storage",
	"examples_written":   "Total training examples written",
}

// Metrics tracks operational metrics for a crawl run.
type Metrics struct {
	source CounterSource

	ProductsStored  atomic.Int64
	ExamplesWritten atomic.Int64

	logger *slog.Logger
}

// NewMetrics creates a new Metrics instance reading engine counters from source.
func NewMetrics(source CounterSource, logger *slog.Logger) *Metrics {
	return &Metrics{
		source: source,
		logger: logger.With("component", "metrics"),
	}
}

// Snapshot returns all metrics as a map.
func (m *Metrics) Snapshot() map[string]int64 {
	out := make(map[string]int64)
	if m.source != nil {
		for k, v := range m.source.Counters() {
			out[k] = v
		}
	}
	out["products_stored"] = m.ProductsStored.Load()
	out["examples_written"] = m.ExamplesWritten.Load()
	return out
}

// ServeHTTP serves metrics in Prometheus text exposition format.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	snap := m.Snapshot()
	names := make([]string, 0, len(snap))
	for name := range snap {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		metric := "shopcrawl_" + name + "_total"
		text, ok := help[name]
		if !ok {
			text = name
		}
		fmt.Fprintf(w, "# HELP %s %s\n", metric, text)
		fmt.Fprintf(w, "# TYPE %s counter\n", metric)
		fmt.Fprintf(w, "%s %d\n", metric, snap[name])
	}
}

// Handler returns a mux serving metrics on path, a JSON snapshot on
// /api/stats and a liveness probe on /health.
func (m *Metrics) Handler(path string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(path, m)
	mux.HandleFunc("/api/stats", m.handleStats)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})
	return mux
}

func (m *Metrics) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]any{
		"timestamp": time.Now().Format(time.RFC3339),
	}
	for k, v := range m.Snapshot() {
		stats[k] = v
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		m.logger.Debug("write stats", "error", err)
	}
}

// StartServer binds the metrics listener and serves it in the background.
// A bind failure, such as a port already in use, is returned to the caller.
func (m *Metrics) StartServer(port int, path string) (*http.Server, error) {
	addr := fmt.Sprintf(":%d", port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	m.logger.Info("metrics server starting", "addr", ln.Addr().String(), "path", path)

	srv := &http.Server{Handler: m.Handler(path), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("metrics server error", "error", err)
		}
	}()
	return srv, nil
}
