package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tradebook/tradebook/api"
	"github.com/tradebook/tradebook/auth"
	"github.com/tradebook/tradebook/cache"
	"github.com/tradebook/tradebook/config"
)

var rootCmd = &cobra.Command{
	Use:   "tradebook",
	Short: "A command-line client for the trading journal backend",
	Long: `Tradebook is a command-line client for a trading journal service.

It provides tools for:
  - Recording, updating and reviewing journal trades
  - Bulk tagging, CSV import/export and trade comparison
  - Server-computed analytics: summaries, equity curves, heatmaps
  - Managing strategies, symbols, tags and trade templates
  - Syncing trades into a local SQLite cache for offline browsing`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

var (
	cfgPath string
	verbose bool
)

func init() {
	defaultCfg := "config.yml"
	if home, err := os.UserHomeDir(); err == nil {
		defaultCfg = filepath.Join(home, ".tradebook", "config.yml")
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultCfg, "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newClient builds the API client from the config file. The auth-lost
// handler fires once per lost session, after a refresh fails for good.
func newClient() (*api.Client, *config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}

	store, err := auth.NewStore(cfg.API.TokensFile)
	if err != nil {
		return nil, nil, fmt.Errorf("open token store: %w", err)
	}

	timeout, err := cfg.API.ParseTimeout()
	if err != nil {
		return nil, nil, fmt.Errorf("api.timeout: %w", err)
	}

	client := api.NewClient(cfg.API.BaseURL, store,
		api.WithHTTPClient(&http.Client{Timeout: timeout}),
		api.WithLogger(newLogger()),
		api.WithAuthLostHandler(func() {
			fmt.Fprintln(os.Stderr, "session expired, run: tradebook login")
		}),
	)
	return client, cfg, nil
}

// configOnly loads the config without building a client, for commands
// that never touch the network.
func configOnly() (*config.Config, error) {
	return config.Load(cfgPath)
}

func openCache(cfg *config.Config) (*cache.Cache, error) {
	if dir := filepath.Dir(cfg.Cache.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	return cache.Open(cfg.Cache.DBPath)
}
