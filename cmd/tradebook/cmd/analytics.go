package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tradebook/tradebook/api"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Server-computed performance analytics",
	Long: `Display performance analytics. All aggregation happens on the
backend; these commands only render the results.

Subcommands:
  summary     - Overall performance summary
  equity      - Cumulative P&L curve
  drawdown    - Drawdown series
  by-symbol   - P&L grouped by symbol
  by-strategy - P&L grouped by strategy
  by-period   - P&L grouped by day, week or month
  calendar    - Per-day results for one month
  heatmap     - Win/loss counts by weekday and hour
  report      - Download the PDF report

Examples:
  tradebook analytics summary --from 2026-01-01
  tradebook analytics by-period --period month`,
}

var analyticsSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Overall performance summary",
	Args:  cobra.NoArgs,
	RunE:  runAnalyticsSummary,
}

var analyticsEquityCmd = &cobra.Command{
	Use:   "equity",
	Short: "Cumulative P&L curve",
	Args:  cobra.NoArgs,
	RunE:  runAnalyticsEquity,
}

var analyticsDrawdownCmd = &cobra.Command{
	Use:   "drawdown",
	Short: "Drawdown series",
	Args:  cobra.NoArgs,
	RunE:  runAnalyticsDrawdown,
}

var analyticsBySymbolCmd = &cobra.Command{
	Use:   "by-symbol",
	Short: "P&L grouped by symbol",
	Args:  cobra.NoArgs,
	RunE:  runAnalyticsBySymbol,
}

var analyticsByStrategyCmd = &cobra.Command{
	Use:   "by-strategy",
	Short: "P&L grouped by strategy",
	Args:  cobra.NoArgs,
	RunE:  runAnalyticsByStrategy,
}

var analyticsByPeriodCmd = &cobra.Command{
	Use:   "by-period",
	Short: "P&L grouped by day, week or month",
	Args:  cobra.NoArgs,
	RunE:  runAnalyticsByPeriod,
}

var analyticsCalendarCmd = &cobra.Command{
	Use:   "calendar [YYYY-MM]",
	Short: "Per-day results for one month",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAnalyticsCalendar,
}

var analyticsHeatmapCmd = &cobra.Command{
	Use:   "heatmap",
	Short: "Win/loss counts by weekday and hour",
	Args:  cobra.NoArgs,
	RunE:  runAnalyticsHeatmap,
}

var analyticsReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Download the PDF report",
	Args:  cobra.NoArgs,
	RunE:  runAnalyticsReport,
}

var (
	analyticsFrom   string
	analyticsTo     string
	analyticsPaper  bool
	analyticsReal   bool
	analyticsPeriod string
	reportOutput    string
)

func addAnalyticsFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&analyticsFrom, "from", "", "earliest date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&analyticsTo, "to", "", "latest date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&analyticsPaper, "paper", false, "only paper trades")
	cmd.Flags().BoolVar(&analyticsReal, "real", false, "only real trades")
}

func init() {
	rootCmd.AddCommand(analyticsCmd)
	analyticsCmd.AddCommand(analyticsSummaryCmd)
	analyticsCmd.AddCommand(analyticsEquityCmd)
	analyticsCmd.AddCommand(analyticsDrawdownCmd)
	analyticsCmd.AddCommand(analyticsBySymbolCmd)
	analyticsCmd.AddCommand(analyticsByStrategyCmd)
	analyticsCmd.AddCommand(analyticsByPeriodCmd)
	analyticsCmd.AddCommand(analyticsCalendarCmd)
	analyticsCmd.AddCommand(analyticsHeatmapCmd)
	analyticsCmd.AddCommand(analyticsReportCmd)

	for _, c := range []*cobra.Command{
		analyticsSummaryCmd, analyticsEquityCmd, analyticsDrawdownCmd,
		analyticsBySymbolCmd, analyticsByStrategyCmd, analyticsByPeriodCmd,
		analyticsHeatmapCmd, analyticsReportCmd,
	} {
		addAnalyticsFlags(c)
	}
	analyticsByPeriodCmd.Flags().StringVar(&analyticsPeriod, "period", "month", "day, week or month")
	analyticsReportCmd.Flags().StringVarP(&reportOutput, "output", "o", "report.pdf", "output file")
}

func analyticsParams() api.AnalyticsParams {
	params := api.AnalyticsParams{From: analyticsFrom, To: analyticsTo}
	switch {
	case analyticsPaper:
		yes := true
		params.IsPaper = &yes
	case analyticsReal:
		no := false
		params.IsPaper = &no
	}
	return params
}

func fmtRatio(p *float64) string {
	if p == nil {
		return "-"
	}
	return strconv.FormatFloat(*p, 'f', 2, 64)
}

func runAnalyticsSummary(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}

	s, err := client.AnalyticsSummary(cmd.Context(), analyticsParams())
	if err != nil {
		return fmt.Errorf("analytics summary: %w", err)
	}

	fmt.Printf("Total P&L:      %.2f over %d trades\n", s.TotalPnl, s.TotalTrades)
	fmt.Printf("Wins / Losses:  %d / %d (win rate %s%%)\n", s.WinCount, s.LossCount, fmtRatio(s.WinRate))
	fmt.Printf("Avg win / loss: %s / %s\n", fmtRatio(s.AvgWin), fmtRatio(s.AvgLoss))
	fmt.Printf("Profit factor:  %s\n", fmtRatio(s.ProfitFactor))
	fmt.Printf("Expectancy:     %s\n", fmtRatio(s.Expectancy))
	fmt.Printf("Sharpe ratio:   %s\n", fmtRatio(s.SharpeRatio))
	fmt.Printf("Max drawdown:   %.2f", s.MaxDrawdown)
	if s.MaxDrawdownDurationDays != nil {
		fmt.Printf(" (%d days)", *s.MaxDrawdownDurationDays)
	}
	fmt.Println()
	if s.CurrentStreakType != nil {
		fmt.Printf("Streak:         %d %s (best win %d, worst loss %d)\n",
			s.CurrentStreak, *s.CurrentStreakType, s.LongestWinStreak, s.LongestLossStreak)
	}
	return nil
}

func runAnalyticsEquity(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}
	points, err := client.EquityCurve(cmd.Context(), analyticsParams())
	if err != nil {
		return fmt.Errorf("equity curve: %w", err)
	}
	for _, p := range points {
		fmt.Printf("%s  %12.2f\n", p.Date, p.CumulativePnl)
	}
	return nil
}

func runAnalyticsDrawdown(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}
	points, err := client.Drawdown(cmd.Context(), analyticsParams())
	if err != nil {
		return fmt.Errorf("drawdown: %w", err)
	}
	for _, p := range points {
		fmt.Printf("%s  equity %12.2f  drawdown %12.2f\n", p.Date, p.Equity, p.Drawdown)
	}
	return nil
}

func runAnalyticsBySymbol(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}
	items, err := client.BySymbol(cmd.Context(), analyticsParams())
	if err != nil {
		return fmt.Errorf("by symbol: %w", err)
	}
	for _, it := range items {
		fmt.Printf("%-12s %12.2f  (%d trades)\n", it.Symbol, it.Pnl, it.Count)
	}
	return nil
}

func runAnalyticsByStrategy(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}
	items, err := client.ByStrategy(cmd.Context(), analyticsParams())
	if err != nil {
		return fmt.Errorf("by strategy: %w", err)
	}
	for _, it := range items {
		fmt.Printf("%-20s %12.2f  (%d trades)\n", it.Strategy, it.Pnl, it.Count)
	}
	return nil
}

func runAnalyticsByPeriod(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}
	items, err := client.ByPeriod(cmd.Context(), api.Period(analyticsPeriod), analyticsParams())
	if err != nil {
		return fmt.Errorf("by period: %w", err)
	}
	for _, it := range items {
		label := "-"
		if it.Period != nil {
			label = *it.Period
		}
		fmt.Printf("%-12s %12.2f  (%d trades)\n", label, it.Pnl, it.Count)
	}
	return nil
}

func runAnalyticsCalendar(cmd *cobra.Command, args []string) error {
	now := time.Now()
	year, month := now.Year(), int(now.Month())
	if len(args) == 1 {
		t, err := time.Parse("2006-01", args[0])
		if err != nil {
			return fmt.Errorf("month must be YYYY-MM: %w", err)
		}
		year, month = t.Year(), int(t.Month())
	}

	client, _, err := newClient()
	if err != nil {
		return err
	}
	days, err := client.Calendar(cmd.Context(), year, month)
	if err != nil {
		return fmt.Errorf("calendar: %w", err)
	}
	for _, d := range days {
		fmt.Printf("%s  %10.2f  (%d trades)\n", d.Date, d.TotalPnl, d.Count)
	}
	return nil
}

func runAnalyticsHeatmap(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}
	cells, err := client.Heatmap(cmd.Context(), analyticsParams())
	if err != nil {
		return fmt.Errorf("heatmap: %w", err)
	}

	weekdays := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	for _, c := range cells {
		day := "?"
		if c.DayOfWeek >= 0 && c.DayOfWeek < len(weekdays) {
			day = weekdays[c.DayOfWeek]
		}
		fmt.Printf("%s %02d:00  %d wins / %d losses  pnl %10.2f\n",
			day, c.Hour, c.Wins, c.Losses, c.TotalPnl)
	}
	return nil
}

func runAnalyticsReport(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}
	data, err := client.PDFReport(cmd.Context(), analyticsParams())
	if err != nil {
		return fmt.Errorf("pdf report: %w", err)
	}
	if err := os.WriteFile(reportOutput, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Printf("✓ Saved report to %s (%d bytes)\n", reportOutput, len(data))
	return nil
}
