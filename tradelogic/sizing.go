package tradelogic

import "math"

// SizingMethod selects how a position size is derived.
type SizingMethod string

const (
	SizeByRiskPercent SizingMethod = "risk_percent"
	SizeByRiskAmount  SizingMethod = "risk_amount"
	SizeByFixedShares SizingMethod = "fixed_shares"
)

// SizingInput is the planner's view of a trade before entry. Zero or
// non-finite values count as "not provided"; TargetPrice is optional and
// only feeds the R/R figure.
type SizingInput struct {
	Method      SizingMethod
	AccountSize float64
	EntryPrice  float64
	StopLoss    float64
	TargetPrice float64
	RiskPercent float64 // percent of account, for SizeByRiskPercent
	RiskAmount  float64 // currency amount, for SizeByRiskAmount
	FixedShares float64 // share count, for SizeByFixedShares
}

// PositionSize is a computed sizing plan. Shares keeps the fractional
// size; WholeShares is it floored for instruments that only trade whole
// units. RiskReward is zero when no target price was given.
type PositionSize struct {
	Shares        float64
	WholeShares   int
	PositionValue float64
	RiskAmount    float64
	RiskPercent   float64
	RiskReward    float64
}

// CalculatePositionSize sizes a position by one of three methods: risk a
// percent of the account, risk a fixed amount, or start from a fixed share
// count and derive the risk. The per-share risk is the distance from entry
// to stop, so the two risk-based methods need a stop that differs from the
// entry. Returns nil when the inputs cannot produce a positive size.
func CalculatePositionSize(in SizingInput) *PositionSize {
	if !finite(in.AccountSize) || !finite(in.EntryPrice) || !finite(in.StopLoss) ||
		!finite(in.TargetPrice) || !finite(in.RiskPercent) || !finite(in.RiskAmount) ||
		!finite(in.FixedShares) {
		return nil
	}
	if in.AccountSize <= 0 || in.EntryPrice <= 0 {
		return nil
	}

	riskPerShare := math.Abs(in.EntryPrice - in.StopLoss)

	var shares, riskAmount float64
	switch in.Method {
	case SizeByRiskPercent:
		if in.RiskPercent <= 0 {
			return nil
		}
		riskAmount = in.AccountSize * in.RiskPercent / 100
		if in.StopLoss > 0 && riskPerShare > 0 {
			shares = riskAmount / riskPerShare
		}
	case SizeByRiskAmount:
		if in.RiskAmount <= 0 {
			return nil
		}
		riskAmount = in.RiskAmount
		if in.StopLoss > 0 && riskPerShare > 0 {
			shares = riskAmount / riskPerShare
		}
	case SizeByFixedShares:
		if in.StopLoss <= 0 || in.FixedShares <= 0 {
			return nil
		}
		shares = in.FixedShares
		riskAmount = shares * riskPerShare
	default:
		return nil
	}

	if shares <= 0 {
		return nil
	}

	riskReward := 0.0
	if in.TargetPrice > 0 && in.StopLoss > 0 && riskPerShare > 0 {
		riskReward = math.Abs(in.TargetPrice-in.EntryPrice) / riskPerShare
	}

	return &PositionSize{
		Shares:        shares,
		WholeShares:   int(math.Floor(shares)),
		PositionValue: shares * in.EntryPrice,
		RiskAmount:    riskAmount,
		RiskPercent:   riskAmount / in.AccountSize * 100,
		RiskReward:    riskReward,
	}
}
