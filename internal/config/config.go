package config

import (
	"fmt"
	"strings"

	"github.com/MeKo-Tech/tally/internal/receipt"
)

// Config represents the complete configuration for the tally application.
// It includes settings for all commands (parse, serve) and supports loading
// from configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose"   yaml:"verbose"   json:"verbose"`

	// Detection engine connection
	Engine EngineConfig `mapstructure:"engine" yaml:"engine" json:"engine"`

	// Receipt parser tuning
	Parser ParserConfig `mapstructure:"parser" yaml:"parser" json:"parser"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

// EngineConfig describes how to reach the remote text-detection engine.
type EngineConfig struct {
	URL           string `mapstructure:"url"             yaml:"url"             json:"url"`
	TimeoutSec    int    `mapstructure:"timeout_sec"     yaml:"timeout_sec"     json:"timeout_sec"`
	MaxImageWidth int    `mapstructure:"max_image_width" yaml:"max_image_width" json:"max_image_width"`
}

// ParserConfig contains the spatial-layout parser thresholds. Zero values
// fall back to the parser package defaults.
type ParserConfig struct {
	RowGapThreshold     float64 `mapstructure:"row_gap_threshold"    yaml:"row_gap_threshold"    json:"row_gap_threshold"`
	QuantityOffset      float64 `mapstructure:"quantity_offset"      yaml:"quantity_offset"      json:"quantity_offset"`
	SimilarityThreshold float64 `mapstructure:"similarity_threshold" yaml:"similarity_threshold" json:"similarity_threshold"`
	MergeMargin         float64 `mapstructure:"merge_margin"         yaml:"merge_margin"         json:"merge_margin"`
	OverlapWindow       int     `mapstructure:"overlap_window"       yaml:"overlap_window"       json:"overlap_window"`
	CurrencyTolerance   float64 `mapstructure:"currency_tolerance"   yaml:"currency_tolerance"   json:"currency_tolerance"`
	KeywordsFile        string  `mapstructure:"keywords_file"        yaml:"keywords_file"        json:"keywords_file"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	File   string `mapstructure:"file"   yaml:"file"   json:"file"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host"             yaml:"host"             json:"host"`
	Port            int    `mapstructure:"port"             yaml:"port"             json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin"      yaml:"cors_origin"      json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb"    yaml:"max_upload_mb"    json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec"      yaml:"timeout_sec"      json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`

	// Rate limiting
	RateLimitEnabled bool `mapstructure:"rate_limit_enabled" yaml:"rate_limit_enabled" json:"rate_limit_enabled"`
	RequestsPerMin   int  `mapstructure:"requests_per_min"   yaml:"requests_per_min"   json:"requests_per_min"`
	RequestsPerHour  int  `mapstructure:"requests_per_hour"  yaml:"requests_per_hour"  json:"requests_per_hour"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	parser := receipt.DefaultConfig()
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Engine: EngineConfig{
			URL:           "http://localhost:9003",
			TimeoutSec:    60,
			MaxImageWidth: 1920,
		},
		Parser: ParserConfig{
			RowGapThreshold:     parser.RowGapThreshold,
			QuantityOffset:      parser.QuantityOffset,
			SimilarityThreshold: parser.SimilarityThreshold,
			MergeMargin:         parser.MergeMargin,
			OverlapWindow:       parser.OverlapWindow,
			CurrencyTolerance:   parser.CurrencyTolerance,
		},
		Output: OutputConfig{
			Format: "json",
		},
		Server: ServerConfig{
			Host:             "localhost",
			Port:             8080,
			CORSOrigin:       "*",
			MaxUploadMB:      50,
			TimeoutSec:       30,
			ShutdownTimeout:  10,
			RateLimitEnabled: false,
			RequestsPerMin:   120,
			RequestsPerHour:  2000,
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	validFormats := []string{"json", "text"}
	if c.Output.Format != "" && !contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(validFormats, ", "))
	}

	if c.Engine.URL == "" {
		return fmt.Errorf("engine URL must not be empty")
	}
	if c.Engine.TimeoutSec <= 0 {
		return fmt.Errorf("invalid engine timeout: %d (must be positive)", c.Engine.TimeoutSec)
	}
	if c.Engine.MaxImageWidth < 0 {
		return fmt.Errorf("invalid engine max image width: %d (must not be negative)", c.Engine.MaxImageWidth)
	}

	if err := validateThreshold(c.Parser.SimilarityThreshold, "parser.similarity_threshold"); err != nil {
		return err
	}
	if c.Parser.RowGapThreshold < 0 {
		return fmt.Errorf("invalid parser.row_gap_threshold: %v (must not be negative)", c.Parser.RowGapThreshold)
	}
	if c.Parser.QuantityOffset < 0 {
		return fmt.Errorf("invalid parser.quantity_offset: %v (must not be negative)", c.Parser.QuantityOffset)
	}
	if c.Parser.MergeMargin < 0 {
		return fmt.Errorf("invalid parser.merge_margin: %v (must not be negative)", c.Parser.MergeMargin)
	}
	if c.Parser.OverlapWindow < 0 {
		return fmt.Errorf("invalid parser.overlap_window: %d (must not be negative)", c.Parser.OverlapWindow)
	}
	if c.Parser.CurrencyTolerance < 0 {
		return fmt.Errorf("invalid parser.currency_tolerance: %v (must not be negative)", c.Parser.CurrencyTolerance)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid max upload size: %d (must be positive)", c.Server.MaxUploadMB)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid timeout: %d (must be positive)", c.Server.TimeoutSec)
	}
	if c.Server.RateLimitEnabled {
		if c.Server.RequestsPerMin <= 0 {
			return fmt.Errorf("invalid requests per minute: %d (must be positive)", c.Server.RequestsPerMin)
		}
		if c.Server.RequestsPerHour <= 0 {
			return fmt.Errorf("invalid requests per hour: %d (must be positive)", c.Server.RequestsPerHour)
		}
	}

	return nil
}

// ToParserConfig converts the config to the receipt parser configuration,
// loading a keyword table override when one is configured.
func (c *Config) ToParserConfig() (receipt.Config, error) {
	cfg := receipt.Config{
		RowGapThreshold:     c.Parser.RowGapThreshold,
		QuantityOffset:      c.Parser.QuantityOffset,
		SimilarityThreshold: c.Parser.SimilarityThreshold,
		MergeMargin:         c.Parser.MergeMargin,
		OverlapWindow:       c.Parser.OverlapWindow,
		CurrencyTolerance:   c.Parser.CurrencyTolerance,
	}
	if c.Parser.KeywordsFile != "" {
		kw, err := receipt.LoadKeywords(c.Parser.KeywordsFile)
		if err != nil {
			return receipt.Config{}, fmt.Errorf("load keywords file: %w", err)
		}
		cfg.Keywords = kw
	}
	return cfg, nil
}

// validateThreshold checks that a threshold value is within [0.0, 1.0].
func validateThreshold(value float64, name string) error {
	if value < 0.0 || value > 1.0 {
		return fmt.Errorf("invalid %s: %v (must be between 0.0 and 1.0)", name, value)
	}
	return nil
}

// contains checks if a slice contains a string.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
