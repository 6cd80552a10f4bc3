// Package api serves the product extraction endpoint.
package api

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/IshaanNene/shopcrawl/internal/config"
	"github.com/IshaanNene/shopcrawl/internal/engine"
	"github.com/IshaanNene/shopcrawl/internal/ner"
	"github.com/IshaanNene/shopcrawl/internal/parser"
	"github.com/IshaanNene/shopcrawl/internal/types"
)

//go:embed index.html
var indexHTML []byte

const (
	suggestStatus    = "Try again later or use a different website"
	suggestRequest   = "Try a different URL or check if the site allows scraping"
	suggestProcessor = "Try again or contact support"
)

// Server fetches a page on request and reports the product names found in
// its visible text.
type Server struct {
	mux       *http.ServeMux
	port      int
	fetcher   engine.Fetcher
	extractor ner.EntityExtractor
	limiter   *HostLimiter
	logger    *slog.Logger
}

// processResponse is the success body of POST /process.
type processResponse struct {
	Products []string `json:"products"`
	Count    int      `json:"count"`
}

// errorResponse is the failure body of every endpoint.
type errorResponse struct {
	Error      string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
}

// NewServer creates a new API server.
func NewServer(cfg config.ServerConfig, fetcher engine.Fetcher, extractor ner.EntityExtractor, logger *slog.Logger) *Server {
	s := &Server{
		mux:       http.NewServeMux(),
		port:      cfg.Port,
		fetcher:   fetcher,
		extractor: extractor,
		limiter:   NewHostLimiter(cfg.HostInterval),
		logger:    logger.With("component", "api_server"),
	}

	s.registerRoutes()
	return s
}

// Handler returns the HTTP handler for the server's routes.
func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server starting", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("API server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("POST /process", s.handleProcess)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": config.Version,
	})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.URL) == "" {
		s.jsonResponse(w, http.StatusBadRequest, errorResponse{Error: "No URL provided"})
		return
	}
	target := strings.TrimSpace(body.URL)

	if err := config.ValidateURL(target); err != nil {
		s.jsonResponse(w, http.StatusBadRequest, errorResponse{
			Error:      fmt.Sprintf("Website request failed: %v: %v", types.ErrInvalidURL, err),
			Suggestion: suggestRequest,
		})
		return
	}
	u, _ := url.Parse(target)

	if err := s.limiter.Wait(r.Context(), u.Hostname()); err != nil {
		s.logger.Debug("request cancelled while throttled", "url", target, "error", err)
		s.jsonResponse(w, http.StatusServiceUnavailable, errorResponse{
			Error:      fmt.Sprintf("Website request failed: %v", err),
			Suggestion: suggestStatus,
		})
		return
	}

	products, err := s.process(r.Context(), target)
	if err != nil {
		status, resp := classifyError(err)
		s.logger.Warn("process failed", "url", target, "status", status, "error", err)
		s.jsonResponse(w, status, resp)
		return
	}

	s.logger.Info("processed", "url", target, "products", len(products))
	s.jsonResponse(w, http.StatusOK, processResponse{Products: products, Count: len(products)})
}

// process fetches target and runs the extractor over its visible text.
func (s *Server) process(ctx context.Context, target string) ([]string, error) {
	resp, err := s.fetcher.Fetch(ctx, target)
	if errors.Is(err, types.ErrEmptyResponse) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	doc, err := resp.Document()
	if err != nil {
		return nil, err
	}

	products, err := s.extractor.Extract(parser.VisibleText(doc))
	if err != nil {
		return nil, fmt.Errorf("extract entities: %w", err)
	}
	if products == nil {
		products = []string{}
	}
	return products, nil
}

func classifyError(err error) (int, errorResponse) {
	var fe *types.FetchError
	if errors.As(err, &fe) {
		if fe.StatusCode != 0 && fe.StatusCode != http.StatusOK {
			return http.StatusBadRequest, errorResponse{
				Error:      fmt.Sprintf("Website returned status %d", fe.StatusCode),
				Suggestion: suggestStatus,
			}
		}
		return http.StatusBadRequest, errorResponse{
			Error:      fmt.Sprintf("Website request failed: %v", fe.Err),
			Suggestion: suggestRequest,
		}
	}
	return http.StatusInternalServerError, errorResponse{
		Error:      fmt.Sprintf("Processing error: %v", err),
		Suggestion: suggestProcessor,
	}
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Debug("write response", "error", err)
	}
}
