package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Crawl.MaxDepth < 0 {
		return fmt.Errorf("crawl.max_depth must be >= 0, got %d", cfg.Crawl.MaxDepth)
	}
	if cfg.Crawl.MaxPagesPerDomain < 1 {
		return fmt.Errorf("crawl.max_pages_per_domain must be >= 1, got %d", cfg.Crawl.MaxPagesPerDomain)
	}
	if cfg.Crawl.MaxProductsPerDomain < 1 {
		return fmt.Errorf("crawl.max_products_per_domain must be >= 1, got %d", cfg.Crawl.MaxProductsPerDomain)
	}
	if cfg.Crawl.RequestTimeout <= 0 {
		return fmt.Errorf("crawl.request_timeout must be > 0")
	}
	if cfg.Crawl.MinDelay < 0 || cfg.Crawl.MaxDelay < 0 {
		return fmt.Errorf("crawl delays must be >= 0")
	}
	if cfg.Crawl.MaxDelay < cfg.Crawl.MinDelay {
		return fmt.Errorf("crawl.max_delay (%s) must be >= crawl.min_delay (%s)", cfg.Crawl.MaxDelay, cfg.Crawl.MinDelay)
	}
	if cfg.Crawl.ProductSource != ProductSourceFrontier && cfg.Crawl.ProductSource != ProductSourceDiscovered {
		return fmt.Errorf("crawl.product_source must be %q or %q, got %q",
			ProductSourceFrontier, ProductSourceDiscovered, cfg.Crawl.ProductSource)
	}

	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}

	validProductStores := map[string]bool{
		"jsonl": true, "sqlite": true, "mongodb": true,
	}
	for _, kind := range ProductStores(cfg.Storage.ProductsType) {
		if !validProductStores[kind] {
			return fmt.Errorf("storage.products_type %q is not supported (valid: none, jsonl, sqlite, mongodb)", kind)
		}
		if kind == "mongodb" && cfg.Storage.MongoURI == "" {
			return fmt.Errorf("storage.mongo_uri is required for products_type mongodb")
		}
	}

	if cfg.Split.TrainRatio < 0 || cfg.Split.DevRatio < 0 || cfg.Split.TrainRatio+cfg.Split.DevRatio > 1 {
		return fmt.Errorf("split ratios must be non-negative and sum to <= 1, got train=%.2f dev=%.2f",
			cfg.Split.TrainRatio, cfg.Split.DevRatio)
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", cfg.Server.Port)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port < 1 || cfg.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port must be 1-65535, got %d", cfg.Metrics.Port)
		}
	}

	return nil
}

// ValidateURL checks if a URL string is valid for crawling.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}

// ProductStores splits a products_type value into backend names. "none" and
// the empty string yield no backends.
func ProductStores(productsType string) []string {
	var out []string
	for _, kind := range strings.Split(productsType, ",") {
		kind = strings.ToLower(strings.TrimSpace(kind))
		if kind != "" && kind != "none" {
			out = append(out, kind)
		}
	}
	return out
}
