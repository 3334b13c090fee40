// Package config loads tradebook settings from a YAML or JSON file, with
// environment variables (optionally from a .env file) taking precedence.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete client configuration.
type Config struct {
	API   APIConfig   `json:"api" yaml:"api"`
	Cache CacheConfig `json:"cache" yaml:"cache"`
}

// APIConfig locates the backend and the credential file.
type APIConfig struct {
	BaseURL    string `json:"base_url" yaml:"base_url"`
	TokensFile string `json:"tokens_file" yaml:"tokens_file"`
	Timeout    string `json:"timeout,omitempty" yaml:"timeout,omitempty"` // e.g. "30s"
}

// CacheConfig locates the local trade cache.
type CacheConfig struct {
	DBPath string `json:"db_path" yaml:"db_path"`
}

// ParseTimeout converts the timeout string to a duration, defaulting to 30s.
func (a APIConfig) ParseTimeout() (time.Duration, error) {
	if a.Timeout == "" {
		return 30 * time.Second, nil
	}
	return time.ParseDuration(a.Timeout)
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dir := filepath.Join(home, ".tradebook")
	return &Config{
		API: APIConfig{
			BaseURL:    "http://localhost:8000/api",
			TokensFile: filepath.Join(dir, "tokens.yml"),
			Timeout:    "30s",
		},
		Cache: CacheConfig{
			DBPath: filepath.Join(dir, "cache.sqlite"),
		},
	}
}

// Load reads the config file at path, layering env overrides on top. A
// missing file falls back to defaults; env vars still apply. A .env file
// in the working directory is read first if present.
func Load(path string) (*Config, error) {
	// Missing .env is the normal case, not an error.
	_ = godotenv.Load()

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// Try YAML first, fall back to JSON.
		if yerr := yaml.Unmarshal(data, cfg); yerr != nil {
			if jerr := json.Unmarshal(data, cfg); jerr != nil {
				return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", yerr)
			}
		}
	case os.IsNotExist(err):
		// Defaults plus env only.
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration, choosing the format by extension.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TRADEBOOK_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("TRADEBOOK_TOKENS_FILE"); v != "" {
		cfg.API.TokensFile = v
	}
	if v := os.Getenv("TRADEBOOK_TIMEOUT"); v != "" {
		cfg.API.Timeout = v
	}
	if v := os.Getenv("TRADEBOOK_CACHE_DB"); v != "" {
		cfg.Cache.DBPath = v
	}
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("api.base_url must be an http(s) URL")
	}
	if c.API.TokensFile == "" {
		return fmt.Errorf("api.tokens_file is required")
	}
	if _, err := c.API.ParseTimeout(); err != nil {
		return fmt.Errorf("api.timeout: %w", err)
	}
	if c.Cache.DBPath == "" {
		return fmt.Errorf("cache.db_path is required")
	}
	return nil
}
