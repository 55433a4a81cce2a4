package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures runtime configuration sourced from environment variables.
type Config struct {
	Environment  string `env:"AUDITOR_ENV" envDefault:"development"`
	DatabasePath string `env:"AUDITOR_DB_PATH" envDefault:"data/auditor.db"`
	TrailPath    string `env:"AUDITOR_TRAIL_PATH" envDefault:"data/critical_alerts.log"`
	LogDir       string `env:"AUDITOR_LOG_DIR" envDefault:"data/logs"`
	MetricsPort  int    `env:"AUDITOR_METRICS_PORT" envDefault:"9108"`
	Debug        bool   `env:"AUDITOR_DEBUG" envDefault:"false"`

	// Anomaly detection tuning.
	FailedLoginWindow    time.Duration `env:"AUDITOR_FAILED_LOGIN_WINDOW" envDefault:"15m"`
	FailedLoginThreshold int           `env:"AUDITOR_FAILED_LOGIN_THRESHOLD" envDefault:"5"`

	// Notification dispatch.
	NotifyInterval time.Duration `env:"AUDITOR_NOTIFY_INTERVAL" envDefault:"1m"`
	NotifyURLs     []string      `env:"AUDITOR_NOTIFY_URLS" envSeparator:","`
}

// Load parses environment variables and ensures the data directory exists so
// the engine can boot with zero configuration.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return Config{}, fmt.Errorf("ensure data directory: %w", err)
	}

	return cfg, nil
}

// IsDevelopment returns true when running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}
