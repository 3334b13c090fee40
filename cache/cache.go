// Package cache keeps a local SQLite copy of fetched trades so the journal
// can be browsed offline. It is a read cache, not a store of record: the
// backend always wins, and sync simply replaces rows wholesale.
package cache

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/tradebook/tradebook/api"
)

const schema = `
CREATE TABLE IF NOT EXISTS trades (
	id            INTEGER PRIMARY KEY,
	symbol        INTEGER NOT NULL,
	symbol_name   TEXT NOT NULL,
	side          TEXT NOT NULL,
	entry_price   TEXT NOT NULL,
	exit_price    TEXT NOT NULL,
	stop_loss     TEXT,
	quantity      TEXT,
	entry_date    TEXT NOT NULL,
	exit_date     TEXT NOT NULL,
	pnl           TEXT NOT NULL,
	rr            TEXT,
	leverage      TEXT,
	strategy_name TEXT,
	notes         TEXT NOT NULL DEFAULT '',
	is_paper      INTEGER NOT NULL DEFAULT 0,
	synced_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_exit_date ON trades(exit_date);

CREATE TABLE IF NOT EXISTS sync_runs (
	id          TEXT PRIMARY KEY,
	started_at  TEXT NOT NULL,
	finished_at TEXT NOT NULL,
	trades      INTEGER NOT NULL
);
`

// Row is a cached trade. Wire decimals stay as their original strings so a
// cached trade renders exactly like a fresh one.
type Row struct {
	ID           int     `db:"id"`
	Symbol       int     `db:"symbol"`
	SymbolName   string  `db:"symbol_name"`
	Side         string  `db:"side"`
	EntryPrice   string  `db:"entry_price"`
	ExitPrice    string  `db:"exit_price"`
	StopLoss     *string `db:"stop_loss"`
	Quantity     *string `db:"quantity"`
	EntryDate    string  `db:"entry_date"`
	ExitDate     string  `db:"exit_date"`
	Pnl          string  `db:"pnl"`
	Rr           *string `db:"rr"`
	Leverage     *string `db:"leverage"`
	StrategyName *string `db:"strategy_name"`
	Notes        string  `db:"notes"`
	IsPaper      bool    `db:"is_paper"`
	SyncedAt     string  `db:"synced_at"`
}

// SyncRun records one completed sync.
type SyncRun struct {
	ID         string `db:"id"`
	StartedAt  string `db:"started_at"`
	FinishedAt string `db:"finished_at"`
	Trades     int    `db:"trades"`
}

// Cache is the local trade store.
type Cache struct {
	db *sqlx.DB
}

// Open creates or opens the cache database at path.
func Open(path string) (*Cache, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// ReplaceTrades swaps the cached set for the given trades and records the
// sync run. Done in one transaction so a failed sync never leaves a
// half-empty cache.
func (c *Cache) ReplaceTrades(trades []api.Trade, startedAt time.Time) (SyncRun, error) {
	tx, err := c.db.Beginx()
	if err != nil {
		return SyncRun{}, fmt.Errorf("begin sync: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM trades`); err != nil {
		return SyncRun{}, fmt.Errorf("clear cache: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, t := range trades {
		row := fromTrade(t, now)
		_, err := tx.NamedExec(`
			INSERT INTO trades
			(id, symbol, symbol_name, side, entry_price, exit_price, stop_loss, quantity,
			 entry_date, exit_date, pnl, rr, leverage, strategy_name, notes, is_paper, synced_at)
			VALUES
			(:id, :symbol, :symbol_name, :side, :entry_price, :exit_price, :stop_loss, :quantity,
			 :entry_date, :exit_date, :pnl, :rr, :leverage, :strategy_name, :notes, :is_paper, :synced_at)`,
			row)
		if err != nil {
			return SyncRun{}, fmt.Errorf("insert trade %d: %w", t.ID, err)
		}
	}

	run := SyncRun{
		ID:         uuid.NewString(),
		StartedAt:  startedAt.UTC().Format(time.RFC3339),
		FinishedAt: now,
		Trades:     len(trades),
	}
	if _, err := tx.NamedExec(`
		INSERT INTO sync_runs (id, started_at, finished_at, trades)
		VALUES (:id, :started_at, :finished_at, :trades)`, run); err != nil {
		return SyncRun{}, fmt.Errorf("record sync run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return SyncRun{}, fmt.Errorf("commit sync: %w", err)
	}
	return run, nil
}

// ListTrades returns cached trades, newest exit first. from/to are
// inclusive date strings; either may be empty.
func (c *Cache) ListTrades(from, to string) ([]Row, error) {
	query := `SELECT * FROM trades WHERE 1=1`
	args := []any{}
	if from != "" {
		query += ` AND exit_date >= ?`
		args = append(args, from)
	}
	if to != "" {
		// Dates sort lexicographically in ISO form; pad the upper bound so
		// a bare day matches timestamps within it.
		query += ` AND exit_date <= ?`
		args = append(args, to+"~")
	}
	query += ` ORDER BY exit_date DESC`

	var rows []Row
	if err := c.db.Select(&rows, query, args...); err != nil {
		return nil, fmt.Errorf("list cached trades: %w", err)
	}
	return rows, nil
}

// GetTrade returns one cached trade by id.
func (c *Cache) GetTrade(id int) (Row, error) {
	var row Row
	if err := c.db.Get(&row, `SELECT * FROM trades WHERE id = ?`, id); err != nil {
		return Row{}, fmt.Errorf("trade %d not cached: %w", id, err)
	}
	return row, nil
}

// LastSyncRun returns the most recent sync, if any.
func (c *Cache) LastSyncRun() (*SyncRun, error) {
	var runs []SyncRun
	if err := c.db.Select(&runs, `SELECT * FROM sync_runs ORDER BY finished_at DESC, rowid DESC LIMIT 1`); err != nil {
		return nil, fmt.Errorf("last sync run: %w", err)
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

// Close releases the database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

func fromTrade(t api.Trade, syncedAt string) Row {
	return Row{
		ID:           t.ID,
		Symbol:       t.Symbol,
		SymbolName:   t.SymbolName,
		Side:         string(t.Side),
		EntryPrice:   t.EntryPrice,
		ExitPrice:    t.ExitPrice,
		StopLoss:     t.StopLoss,
		Quantity:     t.Quantity,
		EntryDate:    t.EntryDate,
		ExitDate:     t.ExitDate,
		Pnl:          t.Pnl,
		Rr:           t.Rr,
		Leverage:     t.Leverage,
		StrategyName: t.StrategyName,
		Notes:        t.Notes,
		IsPaper:      t.IsPaper,
		SyncedAt:     syncedAt,
	}
}
