package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Report sinks accepted in REPORT_SINK.
const (
	SinkNone     = ""
	SinkSQLite   = "sqlite"
	SinkPostgres = "postgres"
)

// Config holds the application configuration.
type Config struct {
	Environment string
	LogLevel    string
	ReportSink  string
	DatabaseURL string
	AuditSink   string
}

// Load loads configuration from environment variables. APP_ENV defaults to
// "local"; DATABASE_URL is only required when a report sink is selected.
func Load() (*Config, error) {
	return LoadFromEnv()
}

// LoadFromEnv reads the environment and validates the result.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Environment: strings.ToLower(strings.TrimSpace(os.Getenv("APP_ENV"))),
		LogLevel:    strings.TrimSpace(os.Getenv("LOG_LEVEL")),
		ReportSink:  strings.ToLower(strings.TrimSpace(os.Getenv("REPORT_SINK"))),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		AuditSink:   strings.TrimSpace(os.Getenv("AUDIT_SINK")),
	}
	if cfg.Environment == "" {
		cfg.Environment = "local"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	switch c.Environment {
	case "production", "staging", "development", "local":
	default:
		return fmt.Errorf("invalid APP_ENV %q: expected production, staging, development or local", c.Environment)
	}

	switch c.ReportSink {
	case SinkNone:
		return nil
	case SinkSQLite, SinkPostgres:
	default:
		return fmt.Errorf("invalid REPORT_SINK %q: expected sqlite or postgres", c.ReportSink)
	}

	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if len(missing) > 0 {
		return errors.New("missing required environment variables for " + c.ReportSink + " sink: " + strings.Join(missing, ", "))
	}

	if c.ReportSink == SinkPostgres && !isPostgresURL(c.DatabaseURL) {
		return errors.New("DATABASE_URL must be a postgres:// or postgresql:// URL for the postgres sink")
	}

	return nil
}

func isPostgresURL(val string) bool {
	prefixes := []string{"postgres://", "postgresql://"}
	for _, p := range prefixes {
		if strings.HasPrefix(val, p) {
			return true
		}
	}
	return false
}
