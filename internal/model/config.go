package model

import "time"

// Config is the complete lifespan configuration.
// Keys use the same names in YAML files, viper and LIFESPAN_* env vars.
type Config struct {
	Source       SourceConfig    `yaml:"source" mapstructure:"source"`
	HTTP         HTTPConfig      `yaml:"http" mapstructure:"http"`
	Cache        CacheConfig     `yaml:"cache" mapstructure:"cache"`
	RateLimiting RateLimitConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Robots       RobotsConfig    `yaml:"robots" mapstructure:"robots"`
	Overrides    OverridesConfig `yaml:"overrides" mapstructure:"overrides"`
	Output       OutputConfig    `yaml:"output" mapstructure:"output"`
	Logging      LoggingConfig   `yaml:"logging" mapstructure:"logging"`
}

// SourceConfig locates the table and column to scrape
type SourceConfig struct {
	URL         string `yaml:"url" mapstructure:"url"`
	Subject     string `yaml:"subject" mapstructure:"subject"`
	Selector    string `yaml:"selector" mapstructure:"selector"`         // CSS selector of the table
	Column      string `yaml:"column" mapstructure:"column"`             // Header text of the name column
	ColumnIndex int    `yaml:"column_index" mapstructure:"column_index"` // Used when no header matches Column
	HeaderLabel string `yaml:"header_label" mapstructure:"header_label"` // Echoed header text filtered from rows
}

// HTTPConfig controls the page fetcher
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	InsecureTLS  bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig controls the fetched-page cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// RateLimitConfig paces requests per host
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// RobotsConfig controls robots.txt compliance
type RobotsConfig struct {
	Respect bool `yaml:"respect" mapstructure:"respect"`
}

// OverridesConfig points at the override data file (empty = embedded default)
type OverridesConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// OutputConfig selects rendered artifacts
type OutputConfig struct {
	JSON     string `yaml:"json" mapstructure:"json"`
	CSV      string `yaml:"csv" mapstructure:"csv"`
	Markdown string `yaml:"markdown" mapstructure:"markdown"`
	Plot     string `yaml:"plot" mapstructure:"plot"`
	Verbose  bool   `yaml:"verbose" mapstructure:"verbose"`
}

// LoggingConfig sets the log level (debug, info, warn, error)
type LoggingConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			URL:         "https://en.wikipedia.org/wiki/List_of_presidents_of_the_United_States",
			Subject:     "List of presidents of the United States",
			Selector:    "table.wikitable",
			Column:      "Name (Birth–Death)",
			ColumnIndex: 2,
			HeaderLabel: "Name (Birth–Death)",
		},
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "Lifespan/0.1 (+https://github.com/ppiankov/lifespan)",
			MaxBodyBytes: 5_000_000,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".lifespan-cache",
			MemoryTTL: 10 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 1,
			BurstSize:         1,
		},
		Robots: RobotsConfig{
			Respect: true,
		},
		Output: OutputConfig{
			JSON: "lifespans.json",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
