package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.Backend.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Backend.RequestTimeout)
	assert.Equal(t, "fast", cfg.Upload.DefaultQuality)
	assert.Equal(t, []string{"application/pdf"}, cfg.Upload.AcceptedTypes)
	assert.Equal(t, 2, cfg.Chat.MinMessageLength)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "echo", cfg.LLM.Provider)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Zero(t, cfg.Server.RateLimit.RequestsPerMinute)
	assert.Equal(t, 10, cfg.Server.RateLimit.Burst)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := []byte(`
backend:
  base_url: http://backend.internal:9000
  chat_timeout: 90s
upload:
  default_quality: hi-res
logging:
  level: debug
`)
	require.NoError(t, os.WriteFile(path, yaml, 0o644))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("DATABASE_PATH", "/tmp/other.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://backend.internal:9000", cfg.Backend.BaseURL)
	assert.Equal(t, 90*time.Second, cfg.Backend.ChatTimeout)
	assert.Equal(t, "hi-res", cfg.Upload.DefaultQuality)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/tmp/other.db", cfg.Database.Path)
}

func TestLoad_EnvOverridesBackend(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("BACKEND_ENDPOINT", "http://10.0.0.5:8000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:8000", cfg.Backend.BaseURL)
}

func TestDatabaseConfig_URLs(t *testing.T) {
	c := DatabaseConfig{Path: "/var/lib/docchat/sessions.db"}
	assert.Equal(t, "sqlite:///var/lib/docchat/sessions.db", c.MigrateURL())
	assert.Contains(t, c.DSN(), "file:/var/lib/docchat/sessions.db?")
	assert.Contains(t, c.DSN(), "foreign_keys(1)")
}
