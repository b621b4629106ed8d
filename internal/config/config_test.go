package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_API_KEY", "secret-from-env")

	dir := t.TempDir()
	path := writeConfig(t, `
server:
  addr: ":9999"
  api_key: "${TEST_API_KEY}"
database:
  path: "`+filepath.Join(dir, "data", "toran.db")+`"
redis:
  enabled: true
  address: "localhost:6379"
  cache_ttl_seconds: 120
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "secret-from-env", cfg.Server.APIKey, "env placeholders expand")
	assert.Equal(t, 120*time.Second, cfg.CacheTTL())
	assert.DirExists(t, filepath.Join(dir, "data"), "database directory is created")
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
database:
  path: "`+filepath.Join(dir, "toran.db")+`"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 60*time.Second, cfg.CacheTTL())
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
