//nolint:lll
package config

import (
	"github.com/MeKo-Tech/langid/internal/corpus"
)

// Config represents the complete configuration for the langid application.
// It covers every command (detect, repl, serve, profiles) and is loaded from
// configuration files, environment variables and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Tokenizer TokenizerConfig `mapstructure:"tokenizer" yaml:"tokenizer" json:"tokenizer"`

	// Reference corpus
	Corpus corpus.Config `mapstructure:"corpus" yaml:"corpus" json:"corpus"`

	// Snapshot persistence
	Store StoreConfig `mapstructure:"store" yaml:"store" json:"store"`

	Detection DetectionConfig `mapstructure:"detection" yaml:"detection" json:"detection"`

	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

// TokenizerConfig contains n-gram extraction settings.
type TokenizerConfig struct {
	MinLen    int    `mapstructure:"min_len" yaml:"min_len" json:"min_len"`
	MaxLen    int    `mapstructure:"max_len" yaml:"max_len" json:"max_len"`
	Normalize string `mapstructure:"normalize" yaml:"normalize" json:"normalize"`
}

// StoreConfig selects where reference snapshots are kept. An empty driver
// disables persistence.
type StoreConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver" json:"driver"`
	Path   string `mapstructure:"path" yaml:"path" json:"path"`
}

// DetectionConfig contains result selection settings.
type DetectionConfig struct {
	TopK int `mapstructure:"top_k" yaml:"top_k" json:"top_k"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string          `mapstructure:"host" yaml:"host" json:"host"`
	Port            int             `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string          `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxBodyKB       int             `mapstructure:"max_body_kb" yaml:"max_body_kb" json:"max_body_kb"`
	TimeoutSec      int             `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int             `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit" json:"rate_limit"`
}

// RateLimitConfig contains per-client request limits. Zero disables a limit.
type RateLimitConfig struct {
	Enabled           bool  `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	RequestsPerMinute int   `mapstructure:"requests_per_minute" yaml:"requests_per_minute" json:"requests_per_minute"`
	RequestsPerHour   int   `mapstructure:"requests_per_hour" yaml:"requests_per_hour" json:"requests_per_hour"`
	MaxRequestsPerDay int   `mapstructure:"max_requests_per_day" yaml:"max_requests_per_day" json:"max_requests_per_day"`
	MaxDataPerDay     int64 `mapstructure:"max_data_per_day" yaml:"max_data_per_day" json:"max_data_per_day"`
}
