package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithEnvDBURL(t *testing.T) {
	t.Setenv("EVENTSCOPE_DB_URL", "postgres://localhost/eventscope")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/eventscope", cfg.DBURL)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadRequiresDBURL(t *testing.T) {
	t.Setenv("EVENTSCOPE_DB_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db_url: postgres://file/db\npoll_interval: 7s\nlog_level: debug\n"), 0o644))

	t.Setenv("EVENTSCOPE_CONFIG", path)
	t.Setenv("EVENTSCOPE_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://file/db", cfg.DBURL)
	assert.Equal(t, 7*time.Second, cfg.PollInterval)
	assert.Equal(t, "warn", cfg.LogLevel, "env wins over file")
}

func TestLoadRejectsNonPositivePollInterval(t *testing.T) {
	t.Setenv("EVENTSCOPE_DB_URL", "postgres://localhost/eventscope")
	t.Setenv("EVENTSCOPE_POLL_INTERVAL", "0s")

	_, err := Load()
	assert.Error(t, err)
}
