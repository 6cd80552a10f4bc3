package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Product candidate sources for the post-traversal scrape pass.
const (
	ProductSourceFrontier   = "frontier"
	ProductSourceDiscovered = "discovered"
)

// Config is the root configuration for shopcrawl.
type Config struct {
	Crawl    CrawlConfig    `mapstructure:"crawl"    yaml:"crawl"`
	Fetcher  FetcherConfig  `mapstructure:"fetcher"  yaml:"fetcher"`
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline"`
	Storage  StorageConfig  `mapstructure:"storage"  yaml:"storage"`
	Split    SplitConfig    `mapstructure:"split"    yaml:"split"`
	Server   ServerConfig   `mapstructure:"server"   yaml:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"  yaml:"metrics"`
}

// CrawlConfig controls the per-domain crawl engine.
type CrawlConfig struct {
	MaxDepth             int           `mapstructure:"max_depth"               yaml:"max_depth"`
	MaxPagesPerDomain    int           `mapstructure:"max_pages_per_domain"    yaml:"max_pages_per_domain"`
	MaxProductsPerDomain int           `mapstructure:"max_products_per_domain" yaml:"max_products_per_domain"`
	RequestTimeout       time.Duration `mapstructure:"request_timeout"         yaml:"request_timeout"`
	MinDelay             time.Duration `mapstructure:"min_delay"               yaml:"min_delay"`
	MaxDelay             time.Duration `mapstructure:"max_delay"               yaml:"max_delay"`
	JitterPerRequest     bool          `mapstructure:"jitter_per_request"      yaml:"jitter_per_request"`
	RespectRobotsTxt     bool          `mapstructure:"respect_robots_txt"      yaml:"respect_robots_txt"`
	RobotsAgent          string        `mapstructure:"robots_agent"            yaml:"robots_agent"`
	ProductSource        string        `mapstructure:"product_source"          yaml:"product_source"`
	UserAgents           []string      `mapstructure:"user_agents"             yaml:"user_agents"`
}

// FetcherConfig controls the HTTP fetcher.
type FetcherConfig struct {
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
}

// PipelineConfig controls post-extraction product filtering.
type PipelineConfig struct {
	RequireTrustedName bool `mapstructure:"require_trusted_name" yaml:"require_trusted_name"`
	RequirePrice       bool `mapstructure:"require_price"        yaml:"require_price"`
}

// StorageConfig controls where seeds are read and results are written.
// ProductsType is "none" or a comma-separated list of jsonl, sqlite and mongodb.
type StorageConfig struct {
	InputPath       string `mapstructure:"input_path"       yaml:"input_path"`
	OutputPath      string `mapstructure:"output_path"      yaml:"output_path"`
	ProductsType    string `mapstructure:"products_type"    yaml:"products_type"`
	ProductsPath    string `mapstructure:"products_path"    yaml:"products_path"`
	SQLitePath      string `mapstructure:"sqlite_path"      yaml:"sqlite_path"`
	MongoURI        string `mapstructure:"mongo_uri"        yaml:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`
}

// SplitConfig controls train/dev/test partitioning.
type SplitConfig struct {
	InputPath  string  `mapstructure:"input_path"  yaml:"input_path"`
	OutputDir  string  `mapstructure:"output_dir"  yaml:"output_dir"`
	TrainRatio float64 `mapstructure:"train_ratio" yaml:"train_ratio"`
	DevRatio   float64 `mapstructure:"dev_ratio"   yaml:"dev_ratio"`
	Seed       int64   `mapstructure:"seed"        yaml:"seed"`
}

// ServerConfig controls the extraction endpoint.
type ServerConfig struct {
	Port          int           `mapstructure:"port"           yaml:"port"`
	GazetteerPath string        `mapstructure:"gazetteer_path" yaml:"gazetteer_path"`
	HostInterval  time.Duration `mapstructure:"host_interval"  yaml:"host_interval"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MetricsConfig controls the Prometheus text endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    int    `mapstructure:"port"    yaml:"port"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Crawl: CrawlConfig{
			MaxDepth:             3,
			MaxPagesPerDomain:    50,
			MaxProductsPerDomain: 100,
			RequestTimeout:       15 * time.Second,
			MinDelay:             1 * time.Second,
			MaxDelay:             3 * time.Second,
			RespectRobotsTxt:     true,
			RobotsAgent:          "*",
			ProductSource:        ProductSourceFrontier,
			UserAgents: []string{
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.1 Safari/605.1.15",
				"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/92.0.4515.107 Safari/537.36",
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:90.0) Gecko/20100101 Firefox/90.0",
			},
		},
		Fetcher: FetcherConfig{
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    20,
		},
		Storage: StorageConfig{
			InputPath:       "URL_list.csv",
			OutputPath:      "ner_training_data.jsonl",
			ProductsType:    "none",
			ProductsPath:    "products.jsonl",
			SQLitePath:      "products.db",
			MongoDatabase:   "shopcrawl",
			MongoCollection: "products",
		},
		Split: SplitConfig{
			InputPath:  "ner_training_data.jsonl",
			OutputDir:  "./corpus",
			TrainRatio: 0.7,
			DevRatio:   0.2,
		},
		Server: ServerConfig{
			Port:          5000,
			GazetteerPath: "ner_training_data.jsonl",
			HostInterval:  2 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}
