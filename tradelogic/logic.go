// Package tradelogic computes derived trade figures (profit, risk, R/R,
// outcome) from user-entered fields.
//
// Every function tolerates missing input: optional values are pointers, and
// a nil pointer, NaN or Inf means "cannot compute". Failure is always a nil
// result, never a panic. Money amounts round to 2 decimals, ratios to 4,
// half away from zero.
package tradelogic

import "math"

// Side is the direction of a trade.
type Side string

const (
	Long  Side = "long"
	Short Side = "short"
)

// Outcome classifies a closed trade.
type Outcome string

const (
	Win       Outcome = "win"
	Loss      Outcome = "loss"
	Breakeven Outcome = "breakeven"
)

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func present(p *float64) bool {
	return p != nil && finite(*p)
}

// leverageOrDefault falls back to 1x when leverage is missing, non-finite
// or non-positive.
func leverageOrDefault(leverage *float64) float64 {
	if present(leverage) && *leverage > 0 {
		return *leverage
	}
	return 1
}

func roundMoney(x float64) float64 {
	return math.Round(x*100) / 100
}

func roundRatio(x float64) float64 {
	return math.Round(x*10000) / 10000
}

func ptr(x float64) *float64 { return &x }

// ExpectedOutcome derives the outcome implied by prices alone: the sign of
// exit-entry for a long, inverted for a short. A zero move or non-finite
// input is breakeven.
func ExpectedOutcome(side Side, entryPrice, exitPrice float64) Outcome {
	if !finite(entryPrice) || !finite(exitPrice) {
		return Breakeven
	}
	diff := exitPrice - entryPrice
	if diff == 0 {
		return Breakeven
	}
	if side == Long {
		if diff > 0 {
			return Win
		}
		return Loss
	}
	if diff < 0 {
		return Win
	}
	return Loss
}

// OutcomeFromPnl classifies the user-entered profit amount. Zero and
// non-finite values are breakeven.
func OutcomeFromPnl(pnl float64) Outcome {
	if !finite(pnl) || pnl == 0 {
		return Breakeven
	}
	if pnl > 0 {
		return Win
	}
	return Loss
}

// PnlSignMatchesPrices reports whether the entered profit amount agrees with
// the direction implied by side and prices. This is a plausibility check,
// not a correctness proof; breakeven always matches breakeven.
func PnlSignMatchesPrices(side Side, entryPrice, exitPrice, pnl float64) bool {
	return ExpectedOutcome(side, entryPrice, exitPrice) == OutcomeFromPnl(pnl)
}

// CalculateProfit computes profit from quantity:
// long (exit-entry)*quantity*leverage, short negated. Requires finite prices
// and quantity > 0.
func CalculateProfit(side Side, entryPrice, exitPrice, quantity, leverage *float64) *float64 {
	if !present(entryPrice) || !present(exitPrice) || !present(quantity) || *quantity <= 0 {
		return nil
	}
	lev := leverageOrDefault(leverage)
	diff := *exitPrice - *entryPrice
	if side == Short {
		diff = *entryPrice - *exitPrice
	}
	return ptr(roundMoney(diff * *quantity * lev))
}

// CalculateProfitFromAmount computes profit from the invested amount:
// percent price change times amountInvested times leverage. Requires
// entry > 0 and amountInvested > 0.
func CalculateProfitFromAmount(side Side, entryPrice, exitPrice, amountInvested, leverage *float64) *float64 {
	if !present(entryPrice) || !present(exitPrice) || !present(amountInvested) ||
		*amountInvested <= 0 || *entryPrice <= 0 {
		return nil
	}
	lev := leverageOrDefault(leverage)
	diff := *exitPrice - *entryPrice
	if side == Short {
		diff = *entryPrice - *exitPrice
	}
	pct := diff / *entryPrice
	return ptr(roundMoney(pct * *amountInvested * lev))
}

// ProfitMethod names which inputs produced a profit figure.
type ProfitMethod string

const (
	MethodQuantity ProfitMethod = "quantity"
	MethodAmount   ProfitMethod = "amount"
	MethodNone     ProfitMethod = ""
)

// BestProfitCalculation tries the quantity-based calculation first and falls
// back to the amount-based one. Quantity wins when both are available since
// it does not depend on the entry price as a divisor.
func BestProfitCalculation(side Side, entryPrice, exitPrice, quantity, amountInvested, leverage *float64) (*float64, ProfitMethod) {
	if profit := CalculateProfit(side, entryPrice, exitPrice, quantity, leverage); profit != nil {
		return profit, MethodQuantity
	}
	if profit := CalculateProfitFromAmount(side, entryPrice, exitPrice, amountInvested, leverage); profit != nil {
		return profit, MethodAmount
	}
	return nil, MethodNone
}

// RrFromStopLoss computes the risk/reward ratio profit/risk where risk is
// |entry-stop|*quantity, falling back to amountRisked when the stop-based
// figure is unavailable. Nil when risk cannot be established or is not
// positive.
func RrFromStopLoss(profit float64, entryPrice, stopLoss, quantity *float64, side *Side, amountRisked *float64) *float64 {
	if !finite(profit) {
		return nil
	}

	var risk *float64
	if present(entryPrice) && present(stopLoss) && present(quantity) && side != nil && *quantity > 0 {
		if *side == Long {
			risk = ptr(math.Abs(*entryPrice-*stopLoss) * *quantity)
		} else {
			risk = ptr(math.Abs(*stopLoss-*entryPrice) * *quantity)
		}
	}
	if risk == nil && present(amountRisked) && *amountRisked > 0 {
		risk = amountRisked
	}
	if risk != nil && *risk > 0 {
		return ptr(roundRatio(profit / *risk))
	}
	return nil
}

// RiskPercentOfCapital is amountRisked as a percentage of totalCapital,
// rounded to 2 decimals. Nil if either is missing or capital is not
// positive.
func RiskPercentOfCapital(totalCapital, amountRisked *float64) *float64 {
	if !present(totalCapital) || !present(amountRisked) || *totalCapital <= 0 {
		return nil
	}
	return ptr(math.Round(*amountRisked / *totalCapital * 10000) / 100)
}

// ReturnOnCapitalPercent is pnl as a percentage of totalCapital, rounded to
// 2 decimals. Nil if capital is missing or not positive.
func ReturnOnCapitalPercent(pnl float64, totalCapital *float64) *float64 {
	if !present(totalCapital) || *totalCapital <= 0 || !finite(pnl) {
		return nil
	}
	return ptr(math.Round(pnl / *totalCapital * 10000) / 100)
}

// CalculateAmountRisked is the capital at risk if the stop is hit:
// |distance to stop|*quantity*leverage, where distance is entry-stop for a
// long and stop-entry for a short.
func CalculateAmountRisked(side Side, entryPrice, stopLoss, quantity, leverage *float64) *float64 {
	if !present(entryPrice) || !present(stopLoss) || !present(quantity) || *quantity <= 0 {
		return nil
	}
	lev := leverageOrDefault(leverage)
	distance := *entryPrice - *stopLoss
	if side == Short {
		distance = *stopLoss - *entryPrice
	}
	return ptr(roundMoney(math.Abs(distance) * *quantity * lev))
}
