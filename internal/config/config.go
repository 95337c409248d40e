package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/MeKo-Tech/langid/internal/corpus"
	"github.com/MeKo-Tech/langid/internal/report"
	"github.com/MeKo-Tech/langid/internal/tokenizer"
)

// Store drivers.
const (
	StoreNone   = ""
	StoreYAML   = "yaml"
	StoreSQLite = "sqlite"
)

var (
	validLogLevels    = []string{"debug", "info", "warn", "error"}
	validStoreDrivers = []string{StoreNone, StoreYAML, StoreSQLite}
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	tok := tokenizer.DefaultConfig()
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Tokenizer: TokenizerConfig{
			MinLen:    tok.MinLen,
			MaxLen:    tok.MaxLen,
			Normalize: tok.Normalize,
		},
		Corpus: corpus.DefaultConfig(),
		Store: StoreConfig{
			Driver: StoreNone,
		},
		Detection: DetectionConfig{
			TopK: 3,
		},
		Output: OutputConfig{
			Format: report.FormatText,
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxBodyKB:       1024,
			TimeoutSec:      30,
			ShutdownTimeout: 10,
			RateLimit: RateLimitConfig{
				Enabled:           false,
				RequestsPerMinute: 600,
				RequestsPerHour:   10000,
			},
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	if c.Output.Format != "" && !report.ValidFormat(c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(report.Formats, ", "))
	}

	if _, err := tokenizer.New(c.ToTokenizerConfig()); err != nil {
		return fmt.Errorf("invalid tokenizer settings: %w", err)
	}

	if c.Corpus.LabelLength < 0 {
		return fmt.Errorf("invalid corpus label length: %d (must be >= 0)", c.Corpus.LabelLength)
	}

	if !slices.Contains(validStoreDrivers, c.Store.Driver) {
		return fmt.Errorf("invalid store driver: %s (must be one of: yaml, sqlite or empty)", c.Store.Driver)
	}
	if c.Store.Driver != StoreNone && c.Store.Path == "" {
		return fmt.Errorf("store driver %s requires store.path", c.Store.Driver)
	}

	if c.Detection.TopK < 0 {
		return fmt.Errorf("invalid detection top_k: %d (must be >= 0)", c.Detection.TopK)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxBodyKB <= 0 {
		return fmt.Errorf("invalid max body size: %d (must be positive)", c.Server.MaxBodyKB)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid timeout: %d (must be positive)", c.Server.TimeoutSec)
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("invalid shutdown timeout: %d (must be >= 0)", c.Server.ShutdownTimeout)
	}

	rl := c.Server.RateLimit
	if rl.RequestsPerMinute < 0 || rl.RequestsPerHour < 0 || rl.MaxRequestsPerDay < 0 || rl.MaxDataPerDay < 0 {
		return errors.New("invalid rate limit: limits must be >= 0")
	}

	return nil
}

// ToTokenizerConfig converts to tokenizer.Config.
func (c *Config) ToTokenizerConfig() tokenizer.Config {
	return tokenizer.Config{
		MinLen:    c.Tokenizer.MinLen,
		MaxLen:    c.Tokenizer.MaxLen,
		Normalize: c.Tokenizer.Normalize,
	}
}
