package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "http://localhost:5000/api", cfg.Backend.URL)
	assert.Equal(t, "memory", cfg.Cache.Type)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("BACKEND_URL", "http://backend:5000/api")
	t.Setenv("CACHE_TYPE", "redis")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "http://backend:5000/api", cfg.Backend.URL)
	assert.Equal(t, "redis", cfg.Cache.Type)
	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadFromDotEnv(t *testing.T) {
	// godotenv never overrides variables that are already set
	t.Setenv("BACKEND_TIMEOUT", "")
	require.NoError(t, os.Unsetenv("BACKEND_TIMEOUT"))
	t.Cleanup(func() { _ = os.Unsetenv("BACKEND_TIMEOUT") })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BACKEND_TIMEOUT=3s\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown cache", "CACHE_TYPE", "memcached"},
		{"bad port", "SERVER_PORT", "70000"},
		{"bad level", "LOG_LEVEL", "loud"},
		{"unparsable duration", "SERVER_READ_TIMEOUT", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}
