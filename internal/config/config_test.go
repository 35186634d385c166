package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/tally/internal/receipt"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "http://localhost:9003", cfg.Engine.URL)
	assert.Equal(t, 60, cfg.Engine.TimeoutSec)
	assert.Equal(t, 1920, cfg.Engine.MaxImageWidth)
	assert.InDelta(t, 15.0, cfg.Parser.RowGapThreshold, 1e-9)
	assert.InDelta(t, 40.0, cfg.Parser.QuantityOffset, 1e-9)
	assert.InDelta(t, 0.75, cfg.Parser.SimilarityThreshold, 1e-9)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }},
		{"bad output format", func(c *Config) { c.Output.Format = "xml" }},
		{"empty engine url", func(c *Config) { c.Engine.URL = "" }},
		{"zero engine timeout", func(c *Config) { c.Engine.TimeoutSec = 0 }},
		{"similarity above one", func(c *Config) { c.Parser.SimilarityThreshold = 1.5 }},
		{"negative row gap", func(c *Config) { c.Parser.RowGapThreshold = -1 }},
		{"negative merge margin", func(c *Config) { c.Parser.MergeMargin = -5 }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"zero upload limit", func(c *Config) { c.Server.MaxUploadMB = 0 }},
		{"rate limit without rate", func(c *Config) {
			c.Server.RateLimitEnabled = true
			c.Server.RequestsPerMin = 0
		}},
		{"rate limit without hourly rate", func(c *Config) {
			c.Server.RateLimitEnabled = true
			c.Server.RequestsPerHour = 0
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestToParserConfig(t *testing.T) {
	cfg := DefaultConfig()
	pc, err := cfg.ToParserConfig()
	require.NoError(t, err)
	assert.InDelta(t, 15.0, pc.RowGapThreshold, 1e-9)
	assert.InDelta(t, 1.0, pc.CurrencyTolerance, 1e-9)
	assert.Nil(t, pc.Keywords, "no keywords file configured")
}

func TestToParserConfigLoadsKeywordsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vendor:\n  - campus cafe\n"), 0o600))

	cfg := DefaultConfig()
	cfg.Parser.KeywordsFile = path
	pc, err := cfg.ToParserConfig()
	require.NoError(t, err)
	require.NotNil(t, pc.Keywords)
	assert.Equal(t, []string{"campus cafe"}, pc.Keywords.Vendor)
	// Untouched lists keep the built-in defaults.
	assert.Equal(t, receipt.DefaultKeywords().Total, pc.Keywords.Total)
}

func TestToParserConfigMissingKeywordsFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Parser.KeywordsFile = filepath.Join(t.TempDir(), "nope.yaml")
	_, err := cfg.ToParserConfig()
	assert.Error(t, err)
}
