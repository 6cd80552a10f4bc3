package observability

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

type staticCounters map[string]int64

func (s staticCounters) Counters() map[string]int64 { return s }

func TestMetricsExposition(t *testing.T) {
	m := NewMetrics(staticCounters{"pages_fetched": 12, "pages_failed": 3, "custom_thing": 1}, testLogger)
	m.ProductsStored.Add(5)
	m.ExamplesWritten.Add(4)

	srv := httptest.NewServer(m.Handler("/metrics"))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	out := string(body)

	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain") {
		t.Errorf("Content-Type = %q", resp.Header.Get("Content-Type"))
	}
	for _, want := range []string{
		"# HELP shopcrawl_pages_fetched_total Total pages fetched successfully\n",
		"# TYPE shopcrawl_pages_fetched_total counter\n",
		"shopcrawl_pages_fetched_total 12\n",
		"shopcrawl_pages_failed_total 3\n",
		"shopcrawl_products_stored_total 5\n",
		"shopcrawl_examples_written_total 4\n",
		"# HELP shopcrawl_custom_thing_total custom_thing\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}

	// Sorted by name.
	if strings.Index(out, "custom_thing") > strings.Index(out, "pages_failed") {
		t.Error("metrics are not sorted")
	}
}

func TestMetricsHealth(t *testing.T) {
	m := NewMetrics(nil, testLogger)
	rec := httptest.NewRecorder()
	m.Handler("/metrics").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("health = %d %q", rec.Code, rec.Body.String())
	}
	if got := m.Snapshot(); len(got) != 2 {
		t.Errorf("snapshot without source = %v", got)
	}
}

func TestMetricsStatsJSON(t *testing.T) {
	m := NewMetrics(staticCounters{"products_scraped": 9}, testLogger)
	m.ExamplesWritten.Add(8)

	rec := httptest.NewRecorder()
	m.Handler("/metrics").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var stats map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats["products_scraped"] != float64(9) || stats["examples_written"] != float64(8) {
		t.Errorf("unexpected stats %v", stats)
	}
	if _, ok := stats["timestamp"]; !ok {
		t.Error("missing timestamp")
	}
}

func TestStartServerPortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	m := NewMetrics(staticCounters{}, testLogger)
	srv, err := m.StartServer(port, "/metrics")
	if err == nil {
		srv.Close()
		t.Fatalf("expected bind error on busy port %d", port)
	}
}

func TestStartServerServes(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	m := NewMetrics(staticCounters{"pages_fetched": 2}, testLogger)
	srv, err := m.StartServer(port, "/metrics")
	if err != nil {
		t.Fatalf("StartServer: %v", err)
	}
	defer srv.Close()

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/metrics", port))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "shopcrawl_pages_fetched_total 2") {
		t.Errorf("metrics body:\n%s", body)
	}
}
