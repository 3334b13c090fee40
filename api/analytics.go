package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// AnalyticsParams filter the read-only analytics endpoints.
type AnalyticsParams struct {
	From    string
	To      string
	IsPaper *bool
}

func (p AnalyticsParams) values() url.Values {
	q := url.Values{}
	if p.From != "" {
		q.Set("from", p.From)
	}
	if p.To != "" {
		q.Set("to", p.To)
	}
	if p.IsPaper != nil {
		q.Set("is_paper", strconv.FormatBool(*p.IsPaper))
	}
	return q
}

// dataEnvelope is the {"data": [...]} wrapper most analytics endpoints use.
type dataEnvelope[T any] struct {
	Data []T `json:"data"`
}

// AnalyticsSummary returns the server-computed performance overview.
func (c *Client) AnalyticsSummary(ctx context.Context, params AnalyticsParams) (AnalyticsSummary, error) {
	var out AnalyticsSummary
	if err := c.do(ctx, http.MethodGet, "/analytics/summary/", params.values(), nil, &out); err != nil {
		return AnalyticsSummary{}, fmt.Errorf("analytics summary: %w", err)
	}
	return out, nil
}

// EquityCurve returns cumulative P&L over time.
func (c *Client) EquityCurve(ctx context.Context, params AnalyticsParams) ([]EquityCurvePoint, error) {
	var out dataEnvelope[EquityCurvePoint]
	if err := c.do(ctx, http.MethodGet, "/analytics/equity-curve/", params.values(), nil, &out); err != nil {
		return nil, fmt.Errorf("equity curve: %w", err)
	}
	return out.Data, nil
}

// Drawdown returns the equity/drawdown series.
func (c *Client) Drawdown(ctx context.Context, params AnalyticsParams) ([]DrawdownPoint, error) {
	var out dataEnvelope[DrawdownPoint]
	if err := c.do(ctx, http.MethodGet, "/analytics/drawdown/", params.values(), nil, &out); err != nil {
		return nil, fmt.Errorf("drawdown: %w", err)
	}
	return out.Data, nil
}

// BySymbol returns P&L aggregated per symbol.
func (c *Client) BySymbol(ctx context.Context, params AnalyticsParams) ([]BySymbolItem, error) {
	var out dataEnvelope[BySymbolItem]
	if err := c.do(ctx, http.MethodGet, "/analytics/by-symbol/", params.values(), nil, &out); err != nil {
		return nil, fmt.Errorf("by symbol: %w", err)
	}
	return out.Data, nil
}

// ByStrategy returns P&L aggregated per strategy.
func (c *Client) ByStrategy(ctx context.Context, params AnalyticsParams) ([]ByStrategyItem, error) {
	var out dataEnvelope[ByStrategyItem]
	if err := c.do(ctx, http.MethodGet, "/analytics/by-strategy/", params.values(), nil, &out); err != nil {
		return nil, fmt.Errorf("by strategy: %w", err)
	}
	return out.Data, nil
}

// Period buckets for ByPeriod.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ByPeriod returns P&L bucketed by day, week or month.
func (c *Client) ByPeriod(ctx context.Context, period Period, params AnalyticsParams) ([]ByPeriodItem, error) {
	q := params.values()
	q.Set("period", string(period))

	var out dataEnvelope[ByPeriodItem]
	if err := c.do(ctx, http.MethodGet, "/analytics/by-period/", q, nil, &out); err != nil {
		return nil, fmt.Errorf("by period: %w", err)
	}
	return out.Data, nil
}

// Calendar returns per-day totals for one month.
func (c *Client) Calendar(ctx context.Context, year, month int) ([]CalendarDay, error) {
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	q.Set("month", strconv.Itoa(month))

	var out struct {
		Data  []CalendarDay `json:"data"`
		Year  int           `json:"year"`
		Month int           `json:"month"`
	}
	if err := c.do(ctx, http.MethodGet, "/analytics/calendar/", q, nil, &out); err != nil {
		return nil, fmt.Errorf("calendar: %w", err)
	}
	return out.Data, nil
}

// Heatmap returns win/loss counts per weekday and hour.
func (c *Client) Heatmap(ctx context.Context, params AnalyticsParams) ([]HeatmapCell, error) {
	var out dataEnvelope[HeatmapCell]
	if err := c.do(ctx, http.MethodGet, "/analytics/heatmap/", params.values(), nil, &out); err != nil {
		return nil, fmt.Errorf("heatmap: %w", err)
	}
	return out.Data, nil
}

// PDFReport downloads the server-rendered performance report.
func (c *Client) PDFReport(ctx context.Context, params AnalyticsParams) ([]byte, error) {
	var blob []byte
	if err := c.do(ctx, http.MethodGet, "/analytics/pdf-report/", params.values(), nil, &blob); err != nil {
		return nil, fmt.Errorf("pdf report: %w", err)
	}
	return blob, nil
}
