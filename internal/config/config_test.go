package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const infoLevel = "info"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, infoLevel, cfg.LogLevel)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, 1, cfg.Tokenizer.MinLen)
	assert.Equal(t, 5, cfg.Tokenizer.MaxLen)
	assert.Equal(t, "NFC", cfg.Tokenizer.Normalize)
	assert.Equal(t, "data/training", cfg.Corpus.Dir)
	assert.Equal(t, 2, cfg.Corpus.LabelLength)
	assert.Equal(t, StoreNone, cfg.Store.Driver)
	assert.Equal(t, 3, cfg.Detection.TopK)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.False(t, cfg.Server.RateLimit.Enabled)

	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "trace" }, wantErr: "invalid log level"},
		{name: "bad format", mutate: func(c *Config) { c.Output.Format = "xml" }, wantErr: "invalid output format"},
		{name: "empty format", mutate: func(c *Config) { c.Output.Format = "" }},
		{name: "zero min len", mutate: func(c *Config) { c.Tokenizer.MinLen = 0 }, wantErr: "invalid tokenizer settings"},
		{name: "max below min", mutate: func(c *Config) { c.Tokenizer.MinLen = 4; c.Tokenizer.MaxLen = 3 }, wantErr: "invalid tokenizer settings"},
		{name: "bad normalize", mutate: func(c *Config) { c.Tokenizer.Normalize = "NFX" }, wantErr: "invalid tokenizer settings"},
		{name: "negative label length", mutate: func(c *Config) { c.Corpus.LabelLength = -1 }, wantErr: "label length"},
		{name: "unknown store", mutate: func(c *Config) { c.Store.Driver = "redis" }, wantErr: "invalid store driver"},
		{name: "store without path", mutate: func(c *Config) { c.Store.Driver = StoreYAML }, wantErr: "requires store.path"},
		{name: "sqlite store", mutate: func(c *Config) { c.Store.Driver = StoreSQLite; c.Store.Path = "p.db" }},
		{name: "negative top", mutate: func(c *Config) { c.Detection.TopK = -1 }, wantErr: "top_k"},
		{name: "zero port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "invalid server port"},
		{name: "port too large", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "invalid server port"},
		{name: "zero body", mutate: func(c *Config) { c.Server.MaxBodyKB = 0 }, wantErr: "max body size"},
		{name: "zero timeout", mutate: func(c *Config) { c.Server.TimeoutSec = 0 }, wantErr: "invalid timeout"},
		{name: "negative shutdown", mutate: func(c *Config) { c.Server.ShutdownTimeout = -1 }, wantErr: "shutdown timeout"},
		{name: "negative rate", mutate: func(c *Config) { c.Server.RateLimit.RequestsPerMinute = -1 }, wantErr: "invalid rate limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestToTokenizerConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tokenizer = TokenizerConfig{MinLen: 2, MaxLen: 4, Normalize: "none"}

	tc := cfg.ToTokenizerConfig()
	assert.Equal(t, 2, tc.MinLen)
	assert.Equal(t, 4, tc.MaxLen)
	assert.Equal(t, "none", tc.Normalize)
}
