package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/IshaanNene/shopcrawl/internal/config"
	"github.com/IshaanNene/shopcrawl/internal/ner"
	"github.com/IshaanNene/shopcrawl/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

type fetchFunc func(ctx context.Context, rawURL string) (*types.Response, error)

func (f fetchFunc) Fetch(ctx context.Context, rawURL string) (*types.Response, error) {
	return f(ctx, rawURL)
}

type extractFunc func(text string) ([]string, error)

func (f extractFunc) Extract(text string) ([]string, error) { return f(text) }

const catalogPage = `<html><head><title>Shop</title><script>var x = "Oak Chair";</script></head>
<body><h1>New arrivals</h1><ul><li>Oak Chair</li><li>Velvet Sofa</li><li>oak chair</li></ul></body></html>`

func pageFetcher(body string) fetchFunc {
	return func(ctx context.Context, rawURL string) (*types.Response, error) {
		return &types.Response{URL: rawURL, StatusCode: http.StatusOK, Body: []byte(body), FinalURL: rawURL}, nil
	}
}

func newTestServer(f fetchFunc, x ner.EntityExtractor) *Server {
	cfg := config.ServerConfig{Port: 0}
	return NewServer(cfg, f, x, testLogger)
}

func post(t *testing.T, s *Server, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/process", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec, out
}

func TestProcessSuccess(t *testing.T) {
	var seen string
	gaz := ner.NewGazetteer([]string{"Oak Chair", "Velvet Sofa"})
	extract := extractFunc(func(text string) ([]string, error) {
		seen = text
		return gaz.Extract(text)
	})
	s := newTestServer(pageFetcher(catalogPage), extract)

	rec, out := post(t, s, `{"url":"https://shop.example.com/collections/all"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(seen, "var x") {
		t.Errorf("script text reached the extractor: %q", seen)
	}
	want := []any{"Oak Chair", "Velvet Sofa"}
	if !reflect.DeepEqual(out["products"], want) {
		t.Errorf("products = %v, want %v", out["products"], want)
	}
	if out["count"] != float64(2) {
		t.Errorf("count = %v", out["count"])
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}
}

func TestProcessNoProducts(t *testing.T) {
	s := newTestServer(pageFetcher("<p>nothing here</p>"), ner.NewGazetteer(nil))
	rec, out := post(t, s, `{"url":"https://shop.example.com/"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !reflect.DeepEqual(out["products"], []any{}) || out["count"] != float64(0) {
		t.Errorf("unexpected body %v", out)
	}
}

func TestProcessErrors(t *testing.T) {
	statusFetcher := fetchFunc(func(ctx context.Context, rawURL string) (*types.Response, error) {
		return nil, &types.FetchError{URL: rawURL, StatusCode: 403, Err: errors.New("HTTP 403")}
	})
	transportFetcher := fetchFunc(func(ctx context.Context, rawURL string) (*types.Response, error) {
		return nil, &types.FetchError{URL: rawURL, Err: errors.New("dial tcp: connection refused")}
	})
	emptyFetcher := fetchFunc(func(ctx context.Context, rawURL string) (*types.Response, error) {
		return nil, &types.FetchError{URL: rawURL, StatusCode: 200, Err: types.ErrEmptyResponse}
	})
	failingExtractor := extractFunc(func(string) ([]string, error) { return nil, errors.New("model unavailable") })
	okExtractor := ner.NewGazetteer([]string{"Oak Chair"})

	tests := []struct {
		name       string
		fetcher    fetchFunc
		extractor  ner.EntityExtractor
		body       string
		wantStatus int
		wantError  string
		wantHint   string
	}{
		{"missing url", pageFetcher(catalogPage), okExtractor, `{}`, 400, "No URL provided", ""},
		{"blank url", pageFetcher(catalogPage), okExtractor, `{"url":"  "}`, 400, "No URL provided", ""},
		{"invalid json", pageFetcher(catalogPage), okExtractor, `{"url":`, 400, "No URL provided", ""},
		{"bad scheme", pageFetcher(catalogPage), okExtractor, `{"url":"ftp://shop.example.com"}`, 400, "Website request failed: invalid URL", suggestRequest},
		{"non-200", statusFetcher, okExtractor, `{"url":"https://shop.example.com"}`, 400, "Website returned status 403", suggestStatus},
		{"transport", transportFetcher, okExtractor, `{"url":"https://shop.example.com"}`, 400, "Website request failed: dial tcp: connection refused", suggestRequest},
		{"extractor", pageFetcher(catalogPage), failingExtractor, `{"url":"https://shop.example.com"}`, 500, "Processing error: extract entities: model unavailable", suggestProcessor},
		{"empty body", emptyFetcher, okExtractor, `{"url":"https://shop.example.com"}`, 200, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(tt.fetcher, tt.extractor)
			rec, out := post(t, s, tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%v)", rec.Code, tt.wantStatus, out)
			}
			if tt.wantError == "" {
				if _, ok := out["error"]; ok {
					t.Errorf("unexpected error field: %v", out)
				}
				return
			}
			msg, _ := out["error"].(string)
			if !strings.HasPrefix(msg, tt.wantError) {
				t.Errorf("error = %q, want prefix %q", msg, tt.wantError)
			}
			hint, _ := out["suggestion"].(string)
			if hint != tt.wantHint {
				t.Errorf("suggestion = %q, want %q", hint, tt.wantHint)
			}
		})
	}
}

func TestProcessMethodNotAllowed(t *testing.T) {
	s := newTestServer(pageFetcher(catalogPage), ner.NewGazetteer(nil))
	req := httptest.NewRequest(http.MethodGet, "/process", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHealthAndIndex(t *testing.T) {
	s := newTestServer(pageFetcher(catalogPage), ner.NewGazetteer(nil))
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	var health map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if health["status"] != "ok" || health["version"] != config.Version {
		t.Errorf("health = %v", health)
	}

	resp, err = http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		t.Errorf("index: status %d, type %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	resp2, err := http.Get(srv.URL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Errorf("unknown path status = %d", resp2.StatusCode)
	}
}

func TestHostLimiter(t *testing.T) {
	l := NewHostLimiter(time.Hour)
	ctx := context.Background()

	if err := l.Wait(ctx, "shop.example.com"); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	if err := l.Wait(ctx, "other.example.com"); err != nil {
		t.Fatalf("other host should not wait: %v", err)
	}

	short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	if err := l.Wait(short, "SHOP.example.com"); err == nil {
		t.Error("second wait on the same host should not fit in the deadline")
	}
	if l.Len() != 2 {
		t.Errorf("Len = %d, want 2", l.Len())
	}

	var disabled *HostLimiter
	if err := disabled.Wait(ctx, "shop.example.com"); err != nil {
		t.Errorf("nil limiter: %v", err)
	}
	if err := NewHostLimiter(0).Wait(ctx, "shop.example.com"); err != nil {
		t.Errorf("zero interval: %v", err)
	}
}

func TestProcessThrottledRequestCancelled(t *testing.T) {
	calls := 0
	f := fetchFunc(func(ctx context.Context, rawURL string) (*types.Response, error) {
		calls++
		return &types.Response{URL: rawURL, StatusCode: 200, Body: []byte("<p>x</p>")}, nil
	})
	s := NewServer(config.ServerConfig{HostInterval: time.Hour}, f, ner.NewGazetteer(nil), testLogger)

	if rec, _ := post(t, s, `{"url":"https://shop.example.com/a"}`); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodPost, "/process", strings.NewReader(`{"url":"https://shop.example.com/b"}`)).WithContext(ctx)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if calls != 1 {
		t.Errorf("fetch calls = %d, want 1", calls)
	}
}

func ExampleServer_Handler() {
	s := NewServer(config.ServerConfig{}, pageFetcher(catalogPage), ner.NewGazetteer([]string{"Velvet Sofa"}), testLogger)
	req := httptest.NewRequest(http.MethodPost, "/process", strings.NewReader(`{"url":"https://shop.example.com/"}`))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	fmt.Print(rec.Body.String())
	// Output: {"products":["Velvet Sofa"],"count":1}
}
