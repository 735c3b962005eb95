// Package config defines service configuration and its loading order.
package config

import "time"

// Config contains runtime configuration shared by the API and the worker.
type Config struct {
	// DBURL is the Postgres connection string. Required.
	DBURL string `koanf:"db_url"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// UploadDir is where the trigger endpoint stages uploaded files until a
	// worker consumes and deletes them.
	UploadDir string `koanf:"upload_dir"`

	// PollInterval is how long an idle worker sleeps between claim attempts.
	PollInterval time.Duration `koanf:"poll_interval"`

	// MetricsAddr is where the worker exposes its Prometheus metrics. The
	// API serves them on its own Addr under /metrics.
	MetricsAddr string `koanf:"metrics_addr"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
}

// New returns a Config populated with defaults. DBURL has no default and
// must come from the file or environment.
func New() *Config {
	return &Config{
		Addr:         ":8080",
		UploadDir:    "/tmp/eventscope/uploads",
		PollInterval: 2 * time.Second,
		MetricsAddr:  ":9090",
		LogLevel:     "info",
	}
}
