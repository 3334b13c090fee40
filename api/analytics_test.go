package api

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsSummary(t *testing.T) {
	t.Parallel()

	var gotQuery url.Values
	c, _ := newTradeTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analytics/summary/", r.URL.Path)
		gotQuery = r.URL.Query()
		io.WriteString(w, `{
			"total_pnl": 1250.5, "win_count": 10, "loss_count": 5,
			"total_trades": 15, "win_rate": 66.7, "avg_win": 200.0,
			"avg_loss": -150.0, "profit_factor": 2.1, "expectancy": 83.4,
			"current_streak": 3, "current_streak_type": "win",
			"longest_win_streak": 5, "longest_loss_streak": 2,
			"max_drawdown": -420.0, "max_drawdown_duration_days": 12,
			"sharpe_ratio": null
		}`)
	}))

	sum, err := c.AnalyticsSummary(context.Background(), AnalyticsParams{
		From:    "2026-01-01",
		To:      "2026-06-30",
		IsPaper: bp(true),
	})
	require.NoError(t, err)

	assert.Equal(t, "2026-01-01", gotQuery.Get("from"))
	assert.Equal(t, "2026-06-30", gotQuery.Get("to"))
	assert.Equal(t, "true", gotQuery.Get("is_paper"))

	assert.InDelta(t, 1250.5, sum.TotalPnl, 1e-9)
	assert.Equal(t, 15, sum.TotalTrades)
	require.NotNil(t, sum.WinRate)
	assert.InDelta(t, 66.7, *sum.WinRate, 1e-9)
	require.NotNil(t, sum.CurrentStreakType)
	assert.Equal(t, "win", *sum.CurrentStreakType)
	assert.Nil(t, sum.SharpeRatio)
}

func TestEquityCurveAndDrawdown(t *testing.T) {
	t.Parallel()

	c, _ := newTradeTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/analytics/equity-curve/":
			io.WriteString(w, `{"data":[{"date":"2026-01-02","cumulative_pnl":100.0},{"date":"2026-01-03","cumulative_pnl":80.0}]}`)
		case "/analytics/drawdown/":
			io.WriteString(w, `{"data":[{"date":"2026-01-03","equity":80.0,"drawdown":-20.0}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	curve, err := c.EquityCurve(context.Background(), AnalyticsParams{})
	require.NoError(t, err)
	require.Len(t, curve, 2)
	assert.InDelta(t, 100.0, curve[0].CumulativePnl, 1e-9)

	dd, err := c.Drawdown(context.Background(), AnalyticsParams{})
	require.NoError(t, err)
	require.Len(t, dd, 1)
	assert.InDelta(t, -20.0, dd[0].Drawdown, 1e-9)
}

func TestByPeriod_SetsPeriodParam(t *testing.T) {
	t.Parallel()

	c, _ := newTradeTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "week", r.URL.Query().Get("period"))
		io.WriteString(w, `{"data":[{"period":"2026-W10","pnl":55.0,"count":4},{"period":null,"pnl":0,"count":0}]}`)
	}))

	items, err := c.ByPeriod(context.Background(), PeriodWeek, AnalyticsParams{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.NotNil(t, items[0].Period)
	assert.Equal(t, "2026-W10", *items[0].Period)
	assert.Nil(t, items[1].Period)
}

func TestCalendarAndHeatmap(t *testing.T) {
	t.Parallel()

	c, _ := newTradeTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/analytics/calendar/":
			assert.Equal(t, "2026", r.URL.Query().Get("year"))
			assert.Equal(t, "3", r.URL.Query().Get("month"))
			io.WriteString(w, `{"data":[{"date":"2026-03-02","total_pnl":42.0,"count":1,"trades":[{"id":9,"symbol":"BTCUSD","side":"long","pnl":42.0,"strategy":null}]}],"year":2026,"month":3}`)
		case "/analytics/heatmap/":
			assert.Equal(t, "2026-02-01", r.URL.Query().Get("from"))
			assert.Equal(t, "false", r.URL.Query().Get("is_paper"))
			io.WriteString(w, `{"data":[{"day_of_week":1,"hour":14,"wins":3,"losses":1,"total_pnl":120.0,"count":4}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	days, err := c.Calendar(context.Background(), 2026, 3)
	require.NoError(t, err)
	require.Len(t, days, 1)
	require.Len(t, days[0].Trades, 1)
	assert.Equal(t, "BTCUSD", days[0].Trades[0].Symbol)

	cells, err := c.Heatmap(context.Background(), AnalyticsParams{From: "2026-02-01", IsPaper: bp(false)})
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, 14, cells[0].Hour)
}

func TestBySymbolByStrategyAndPDF(t *testing.T) {
	t.Parallel()

	c, _ := newTradeTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/analytics/by-symbol/":
			io.WriteString(w, `{"data":[{"symbol":"ETHUSD","pnl":300.0,"count":7}]}`)
		case "/analytics/by-strategy/":
			io.WriteString(w, `{"data":[{"strategy":"breakout","pnl":-50.0,"count":2}]}`)
		case "/analytics/pdf-report/":
			assert.Equal(t, "2026-01-01", r.URL.Query().Get("from"))
			w.Header().Set("Content-Type", "application/pdf")
			w.Write([]byte("%PDF-1.7"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	bySym, err := c.BySymbol(context.Background(), AnalyticsParams{})
	require.NoError(t, err)
	require.Len(t, bySym, 1)
	assert.Equal(t, "ETHUSD", bySym[0].Symbol)

	byStrat, err := c.ByStrategy(context.Background(), AnalyticsParams{})
	require.NoError(t, err)
	require.Len(t, byStrat, 1)
	assert.InDelta(t, -50.0, byStrat[0].Pnl, 1e-9)

	pdf, err := c.PDFReport(context.Background(), AnalyticsParams{From: "2026-01-01"})
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(pdf))
}
