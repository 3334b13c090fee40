package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  base_url: https://journal.example.com/api
  tokens_file: /tmp/tokens.yml
  timeout: 10s
cache:
  db_path: /tmp/cache.sqlite
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://journal.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, "/tmp/tokens.yml", cfg.API.TokensFile)

	timeout, err := cfg.API.ParseTimeout()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, timeout)
}

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"api": {"base_url": "http://localhost:9000/api", "tokens_file": "/tmp/t.yml"},
		"cache": {"db_path": "/tmp/c.sqlite"}
	}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/api", cfg.API.BaseURL)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, Default().API.BaseURL, cfg.API.BaseURL)
	assert.NotEmpty(t, cfg.API.TokensFile)
	assert.NotEmpty(t, cfg.Cache.DBPath)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TRADEBOOK_BASE_URL", "https://override.example.com/api")
	t.Setenv("TRADEBOOK_TIMEOUT", "5s")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, "https://override.example.com/api", cfg.API.BaseURL)

	timeout, err := cfg.API.ParseTimeout()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, timeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }},
		{"non-http base url", func(c *Config) { c.API.BaseURL = "ftp://x" }},
		{"empty tokens file", func(c *Config) { c.API.TokensFile = "" }},
		{"bad timeout", func(c *Config) { c.API.Timeout = "fast" }},
		{"empty cache path", func(c *Config) { c.Cache.DBPath = "" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestSaveToFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")

	cfg := Default()
	cfg.API.BaseURL = "https://saved.example.com/api"
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://saved.example.com/api", loaded.API.BaseURL)
}
