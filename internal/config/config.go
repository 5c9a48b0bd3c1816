// Package config provides centralized configuration management for the combiner.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import "time"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Input    InputConfig
	Output   OutputConfig
	Database DatabaseConfig
	Logging  LoggingConfig
}

// InputConfig holds settings for reading provider exports.
type InputConfig struct {
	// Dir is the directory scanned for CSV exports (default: input)
	Dir string `env:"COMBINER_INPUT_DIR" default:"input"`

	// MaxFileSize is the maximum allowed file size in bytes (default: 100MB)
	MaxFileSize int64 `env:"COMBINER_MAX_FILE_SIZE" default:"104857600"`

	// IncludeHidden also processes dot-files (default: false)
	IncludeHidden bool `env:"COMBINER_INCLUDE_HIDDEN" default:"false"`
}

// OutputConfig holds settings for the aggregate artifact.
type OutputConfig struct {
	// Path is the aggregate CSV destination, overwritten each run (default: AggregateCsv.csv)
	Path string `env:"COMBINER_OUTPUT_PATH" default:"AggregateCsv.csv"`

	// ReportPath is an optional YAML file receiving the run diagnostics
	ReportPath string `env:"COMBINER_REPORT_PATH"`
}

// DatabaseConfig holds the optional PostgreSQL load settings.
// Loading is skipped when URL is empty.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// Table receives the aggregated rows, created if absent (default: ad_campaigns)
	Table string `env:"DB_TABLE" default:"ad_campaigns"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// Timeout bounds the whole load operation (default: 2m)
	Timeout time.Duration `env:"DB_TIMEOUT" default:"2m"`
}

// Enabled reports whether the aggregate should be loaded into PostgreSQL.
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}
