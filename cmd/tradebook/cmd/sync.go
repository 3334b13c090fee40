package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/tradebook/tradebook/api"
	"github.com/tradebook/tradebook/cache"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror trades into the local SQLite cache",
	Long: `Fetch every trade from the backend and replace the local cache
with the result. With --every, keep running and sync on a cron schedule
until interrupted.

Examples:
  tradebook sync
  tradebook sync --every "@hourly"
  tradebook sync --every "0 */4 * * *"`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last completed sync",
	Args:  cobra.NoArgs,
	RunE:  runSyncStatus,
}

var cachedCmd = &cobra.Command{
	Use:   "cached",
	Short: "Browse the local trade cache without the network",
}

var cachedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached trades",
	Args:  cobra.NoArgs,
	RunE:  runCachedList,
}

var cachedShowCmd = &cobra.Command{
	Use:   "show <trade-id>",
	Short: "Show one cached trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runCachedShow,
}

var (
	syncEvery  string
	cachedFrom string
	cachedTo   string
)

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.Flags().StringVar(&syncEvery, "every", "", "cron schedule to keep syncing on")

	rootCmd.AddCommand(cachedCmd)
	cachedCmd.AddCommand(cachedListCmd)
	cachedCmd.AddCommand(cachedShowCmd)
	cachedListCmd.Flags().StringVar(&cachedFrom, "from", "", "earliest exit date (YYYY-MM-DD)")
	cachedListCmd.Flags().StringVar(&cachedTo, "to", "", "latest exit date (YYYY-MM-DD)")
}

// fetchAllTrades walks the paginated listing until the last page.
func fetchAllTrades(ctx context.Context, client *api.Client) ([]api.Trade, error) {
	var all []api.Trade
	pageNum := 1
	for {
		page, err := client.ListTrades(ctx, api.TradesListParams{Page: &pageNum})
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", pageNum, err)
		}
		all = append(all, page.Results...)
		if page.Next == nil || len(page.Results) == 0 {
			return all, nil
		}
		pageNum++
	}
}

func syncOnce(ctx context.Context, client *api.Client, store *cache.Cache) error {
	started := time.Now()
	trades, err := fetchAllTrades(ctx, client)
	if err != nil {
		return err
	}
	run, err := store.ReplaceTrades(trades, started)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Synced %d trades in %s (run %s)\n",
		run.Trades, time.Since(started).Round(time.Millisecond), run.ID)
	return nil
}

func runSync(cmd *cobra.Command, args []string) error {
	client, cfg, err := newClient()
	if err != nil {
		return err
	}
	store, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := syncOnce(cmd.Context(), client, store); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if syncEvery == "" {
		return nil
	}

	c := cron.New()
	_, err = c.AddFunc(syncEvery, func() {
		if err := syncOnce(context.Background(), client, store); err != nil {
			fmt.Fprintf(os.Stderr, "sync failed: %v\n", err)
		}
	})
	if err != nil {
		return fmt.Errorf("bad --every schedule %q: %w", syncEvery, err)
	}

	fmt.Printf("Watching on schedule %q, ctrl-c to stop\n", syncEvery)
	c.Start()
	defer c.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	return nil
}

func runSyncStatus(cmd *cobra.Command, args []string) error {
	cfg, err := configOnly()
	if err != nil {
		return err
	}
	store, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.LastSyncRun()
	if err != nil {
		return err
	}
	if run == nil {
		fmt.Println("Never synced; run: tradebook sync")
		return nil
	}
	fmt.Printf("Last sync: %s (%d trades, run %s)\n", run.FinishedAt, run.Trades, run.ID)
	return nil
}

func runCachedList(cmd *cobra.Command, args []string) error {
	cfg, err := configOnly()
	if err != nil {
		return err
	}
	store, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	rows, err := store.ListTrades(cachedFrom, cachedTo)
	if err != nil {
		return err
	}

	fmt.Printf("%-6s %-10s %-6s %10s %10s %10s  %s\n",
		"ID", "SYMBOL", "SIDE", "ENTRY", "EXIT", "PNL", "EXIT DATE")
	for _, r := range rows {
		fmt.Printf("%-6d %-10s %-6s %10s %10s %10s  %s\n",
			r.ID, r.SymbolName, r.Side, r.EntryPrice, r.ExitPrice, r.Pnl, r.ExitDate)
	}
	fmt.Printf("\n%d cached trades\n", len(rows))
	return nil
}

func runCachedShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("trade id: %w", err)
	}
	cfg, err := configOnly()
	if err != nil {
		return err
	}
	store, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	r, err := store.GetTrade(id)
	if err != nil {
		return err
	}

	fmt.Printf("Trade %d: %s %s\n", r.ID, r.Side, r.SymbolName)
	fmt.Printf("  Entry:    %s @ %s\n", r.EntryPrice, r.EntryDate)
	fmt.Printf("  Exit:     %s @ %s\n", r.ExitPrice, r.ExitDate)
	fmt.Printf("  P&L:      %s  (rr %s)\n", r.Pnl, deref(r.Rr))
	fmt.Printf("  Strategy: %s\n", deref(r.StrategyName))
	if r.IsPaper {
		fmt.Println("  Paper trade")
	}
	if r.Notes != "" {
		fmt.Printf("  Notes:    %s\n", r.Notes)
	}
	fmt.Printf("  Synced:   %s\n", r.SyncedAt)
	return nil
}
