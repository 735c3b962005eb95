package config

import (
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if EVENTSCOPE_CONFIG is set
//  3. env (prefix EVENTSCOPE_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("EVENTSCOPE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Environment variables: EVENTSCOPE_DB_URL, EVENTSCOPE_POLL_INTERVAL, ...
	// Keys keep their underscores to match the koanf tags on the struct.
	envProvider := env.Provider("EVENTSCOPE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "eventscope_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.DBURL == "" {
		return nil, errors.New("db_url must not be empty")
	}
	if cfg.PollInterval <= 0 {
		return nil, errors.New("poll_interval must be positive")
	}
	return &cfg, nil
}
