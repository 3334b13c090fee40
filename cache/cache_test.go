package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradebook/tradebook/api"
	"github.com/tradebook/tradebook/tradelogic"
)

func sp(s string) *string { return &s }

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func sampleTrades() []api.Trade {
	return []api.Trade{
		{
			ID: 1, Symbol: 7, SymbolName: "AAPL", Side: tradelogic.Long,
			EntryPrice: "100.5", ExitPrice: "110", Quantity: sp("10"),
			EntryDate: "2026-03-01T09:30:00Z", ExitDate: "2026-03-01T15:45:00Z",
			Pnl: "95", Rr: sp("2.5"), Notes: "breakout",
		},
		{
			ID: 2, Symbol: 9, SymbolName: "BTCUSD", Side: tradelogic.Short,
			EntryPrice: "65000", ExitPrice: "64000",
			EntryDate: "2026-03-03T02:00:00Z", ExitDate: "2026-03-04T08:00:00Z",
			Pnl: "1000", IsPaper: true,
		},
	}
}

func TestReplaceTrades_RoundTrip(t *testing.T) {
	t.Parallel()

	c := openTestCache(t)
	run, err := c.ReplaceTrades(sampleTrades(), time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 2, run.Trades)

	rows, err := c.ListTrades("", "")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Newest exit first.
	assert.Equal(t, 2, rows[0].ID)
	assert.Equal(t, 1, rows[1].ID)

	got := rows[1]
	assert.Equal(t, "AAPL", got.SymbolName)
	assert.Equal(t, "long", got.Side)
	assert.Equal(t, "100.5", got.EntryPrice)
	require.NotNil(t, got.Rr)
	assert.Equal(t, "2.5", *got.Rr)
	assert.Nil(t, got.StopLoss)
	assert.False(t, got.IsPaper)
	assert.True(t, rows[0].IsPaper)
}

func TestReplaceTrades_ReplacesWholesale(t *testing.T) {
	t.Parallel()

	c := openTestCache(t)
	_, err := c.ReplaceTrades(sampleTrades(), time.Now())
	require.NoError(t, err)

	_, err = c.ReplaceTrades(sampleTrades()[:1], time.Now())
	require.NoError(t, err)

	rows, err := c.ListTrades("", "")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestListTrades_DateRange(t *testing.T) {
	t.Parallel()

	c := openTestCache(t)
	_, err := c.ReplaceTrades(sampleTrades(), time.Now())
	require.NoError(t, err)

	rows, err := c.ListTrades("2026-03-02", "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].ID)

	// A bare upper-bound day includes timestamps within that day.
	rows, err = c.ListTrades("", "2026-03-01")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].ID)

	rows, err = c.ListTrades("2026-03-05", "")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestGetTrade(t *testing.T) {
	t.Parallel()

	c := openTestCache(t)
	_, err := c.ReplaceTrades(sampleTrades(), time.Now())
	require.NoError(t, err)

	row, err := c.GetTrade(2)
	require.NoError(t, err)
	assert.Equal(t, "BTCUSD", row.SymbolName)

	_, err = c.GetTrade(42)
	assert.Error(t, err)
}

func TestLastSyncRun(t *testing.T) {
	t.Parallel()

	c := openTestCache(t)

	run, err := c.LastSyncRun()
	require.NoError(t, err)
	assert.Nil(t, run, "fresh cache has no sync history")

	first, err := c.ReplaceTrades(nil, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	second, err := c.ReplaceTrades(sampleTrades(), time.Now())
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	run, err = c.LastSyncRun()
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, second.ID, run.ID)
	assert.Equal(t, 2, run.Trades)
}
