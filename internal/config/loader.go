package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file, environment, and defaults.
// Priority (highest to lowest): env vars > config file > defaults. CLI flags
// are applied afterwards by the caller.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("SHOPCRAWL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("shopcrawl")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".shopcrawl"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper so env overrides resolve.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("crawl.max_depth", cfg.Crawl.MaxDepth)
	v.SetDefault("crawl.max_pages_per_domain", cfg.Crawl.MaxPagesPerDomain)
	v.SetDefault("crawl.max_products_per_domain", cfg.Crawl.MaxProductsPerDomain)
	v.SetDefault("crawl.request_timeout", cfg.Crawl.RequestTimeout)
	v.SetDefault("crawl.min_delay", cfg.Crawl.MinDelay)
	v.SetDefault("crawl.max_delay", cfg.Crawl.MaxDelay)
	v.SetDefault("crawl.jitter_per_request", cfg.Crawl.JitterPerRequest)
	v.SetDefault("crawl.respect_robots_txt", cfg.Crawl.RespectRobotsTxt)
	v.SetDefault("crawl.robots_agent", cfg.Crawl.RobotsAgent)
	v.SetDefault("crawl.product_source", cfg.Crawl.ProductSource)
	v.SetDefault("crawl.user_agents", cfg.Crawl.UserAgents)

	v.SetDefault("fetcher.follow_redirects", cfg.Fetcher.FollowRedirects)
	v.SetDefault("fetcher.max_redirects", cfg.Fetcher.MaxRedirects)
	v.SetDefault("fetcher.max_body_size", cfg.Fetcher.MaxBodySize)
	v.SetDefault("fetcher.idle_conn_timeout", cfg.Fetcher.IdleConnTimeout)
	v.SetDefault("fetcher.max_idle_conns", cfg.Fetcher.MaxIdleConns)

	v.SetDefault("pipeline.require_trusted_name", cfg.Pipeline.RequireTrustedName)
	v.SetDefault("pipeline.require_price", cfg.Pipeline.RequirePrice)

	v.SetDefault("storage.input_path", cfg.Storage.InputPath)
	v.SetDefault("storage.output_path", cfg.Storage.OutputPath)
	v.SetDefault("storage.products_type", cfg.Storage.ProductsType)
	v.SetDefault("storage.products_path", cfg.Storage.ProductsPath)
	v.SetDefault("storage.sqlite_path", cfg.Storage.SQLitePath)
	v.SetDefault("storage.mongo_uri", cfg.Storage.MongoURI)
	v.SetDefault("storage.mongo_database", cfg.Storage.MongoDatabase)
	v.SetDefault("storage.mongo_collection", cfg.Storage.MongoCollection)

	v.SetDefault("split.input_path", cfg.Split.InputPath)
	v.SetDefault("split.output_dir", cfg.Split.OutputDir)
	v.SetDefault("split.train_ratio", cfg.Split.TrainRatio)
	v.SetDefault("split.dev_ratio", cfg.Split.DevRatio)
	v.SetDefault("split.seed", cfg.Split.Seed)

	v.SetDefault("server.port", cfg.Server.Port)
	v.SetDefault("server.gazetteer_path", cfg.Server.GazetteerPath)
	v.SetDefault("server.host_interval", cfg.Server.HostInterval)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.port", cfg.Metrics.Port)
	v.SetDefault("metrics.path", cfg.Metrics.Path)
}
