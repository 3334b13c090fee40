package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tradebook/tradebook/tradelogic"
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Size a position before entering a trade",
	Long: `Compute a position size from the account balance and a planned
entry and stop. Runs entirely offline.

The method is picked from the flags given: --shares sizes a fixed share
count and derives the risk, --risk-amount risks a fixed currency amount,
and otherwise --risk-pct risks a percent of the account (default 1%).

Examples:
  tradebook calc --account 10000 --entry 100 --stop 95
  tradebook calc --account 10000 --entry 100 --stop 95 --target 110 --risk-pct 2
  tradebook calc --account 10000 --entry 100 --stop 95 --risk-amount 250
  tradebook calc --account 10000 --entry 100 --stop 95 --shares 40`,
	Args: cobra.NoArgs,
	RunE: runCalc,
}

var (
	calcAccount    float64
	calcEntry      float64
	calcStop       float64
	calcTarget     float64
	calcRiskPct    float64
	calcRiskAmount float64
	calcShares     float64
)

func init() {
	rootCmd.AddCommand(calcCmd)

	calcCmd.Flags().Float64Var(&calcAccount, "account", 0, "account size (required)")
	calcCmd.Flags().Float64Var(&calcEntry, "entry", 0, "entry price (required)")
	calcCmd.Flags().Float64Var(&calcStop, "stop", 0, "stop loss price")
	calcCmd.Flags().Float64Var(&calcTarget, "target", 0, "target price, for the R/R figure")
	calcCmd.Flags().Float64Var(&calcRiskPct, "risk-pct", 1, "percent of account to risk")
	calcCmd.Flags().Float64Var(&calcRiskAmount, "risk-amount", 0, "currency amount to risk")
	calcCmd.Flags().Float64Var(&calcShares, "shares", 0, "fixed share count")
	calcCmd.MarkFlagRequired("account")
	calcCmd.MarkFlagRequired("entry")
}

func runCalc(cmd *cobra.Command, args []string) error {
	in := tradelogic.SizingInput{
		Method:      tradelogic.SizeByRiskPercent,
		AccountSize: calcAccount,
		EntryPrice:  calcEntry,
		StopLoss:    calcStop,
		TargetPrice: calcTarget,
		RiskPercent: calcRiskPct,
		RiskAmount:  calcRiskAmount,
		FixedShares: calcShares,
	}
	switch {
	case cmd.Flags().Changed("shares"):
		in.Method = tradelogic.SizeByFixedShares
	case cmd.Flags().Changed("risk-amount"):
		in.Method = tradelogic.SizeByRiskAmount
	}

	size := tradelogic.CalculatePositionSize(in)
	if size == nil {
		return fmt.Errorf("cannot size this position: check account, entry, stop and risk inputs")
	}

	fmt.Printf("Position size:  %.2f shares (%d whole)\n", size.Shares, size.WholeShares)
	fmt.Printf("Position value: %.2f\n", size.PositionValue)
	fmt.Printf("Risk:           %.2f (%.2f%% of account)\n", size.RiskAmount, size.RiskPercent)
	if size.RiskReward > 0 {
		fmt.Printf("Reward/risk:    %.2f\n", size.RiskReward)
	}
	return nil
}
