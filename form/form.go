// Package form validates a trade entry before submission and derives its
// display state.
//
// Validation is two-layered: per-field constraints first, then cross-field
// invariants (date ordering, leverage positivity, pnl sign vs direction).
// Every failure is field-scoped so a UI can render it inline; nothing here
// talks to the network.
package form

import (
	"math"
	"time"

	"github.com/tradebook/tradebook/api"
	"github.com/tradebook/tradebook/tradelogic"
)

// MinPrice is the smallest accepted entry/exit price.
const MinPrice = 1e-6

// Errors maps field names to messages.
type Errors map[string]string

// TradeForm is the raw user input for one trade. Optional numeric fields
// are pointers; nil means the user left them blank.
type TradeForm struct {
	Symbol          int
	Side            tradelogic.Side
	EntryPrice      *float64
	ExitPrice       *float64
	StopLoss        *float64
	Quantity        *float64
	AmountInvested  *float64
	AmountRisked    *float64
	Leverage        *float64
	EntryDate       string
	ExitDate        string
	Pnl             *float64
	TotalCapital    *float64
	Notes           string
	Strategy        *int
	TagIDs          []int
	EmotionRating   *int
	EmotionNotes    string
	PreTradePlan    string
	PostTradeReview string
	IsPaper         bool
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Accepted timestamp layouts, most specific first. The web form submits
// datetime-local values without a zone.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// dateOnly truncates to the calendar day; the ordering invariant compares
// days, not clock times.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Validate checks the form and, when clean, produces the submission
// payload. Tag ids not in knownTags are silently dropped; a stale tag
// reference is not the user's problem.
func (f *TradeForm) Validate(knownTags []api.Tag) (api.TradeInput, Errors) {
	errs := Errors{}

	if f.Symbol < 1 {
		errs["symbol"] = "Select a symbol"
	}
	if f.Side != tradelogic.Long && f.Side != tradelogic.Short {
		errs["side"] = "Side must be long or short"
	}
	if f.EntryPrice == nil || !finite(*f.EntryPrice) || *f.EntryPrice < MinPrice {
		errs["entry_price"] = "Entry price is required"
	}
	if f.ExitPrice == nil || !finite(*f.ExitPrice) || *f.ExitPrice < MinPrice {
		errs["exit_price"] = "Exit price is required"
	}
	if f.Pnl == nil || !finite(*f.Pnl) {
		errs["pnl"] = "Profit amount is required"
	}

	var entryAt, exitAt time.Time
	entryOK, exitOK := false, false
	if f.EntryDate == "" {
		errs["entry_date"] = "Entry date is required"
	} else if entryAt, entryOK = parseDate(f.EntryDate); !entryOK {
		errs["entry_date"] = "Entry date is not a valid date"
	}
	if f.ExitDate == "" {
		errs["exit_date"] = "Exit date is required"
	} else if exitAt, exitOK = parseDate(f.ExitDate); !exitOK {
		errs["exit_date"] = "Exit date is not a valid date"
	}
	if entryOK && exitOK && dateOnly(exitAt).Before(dateOnly(entryAt)) {
		errs["exit_date"] = "Exit date must be on or after entry date"
	}

	// A non-finite leverage is "use the default", not an error; only a
	// finite non-positive value is rejected.
	if f.Leverage != nil && finite(*f.Leverage) && *f.Leverage <= 0 {
		errs["leverage"] = "Leverage must be greater than 0"
	}

	// The sign check needs every participant; with anything missing it is
	// skipped, not failed.
	if f.EntryPrice != nil && f.ExitPrice != nil && f.Pnl != nil &&
		(f.Side == tradelogic.Long || f.Side == tradelogic.Short) &&
		finite(*f.EntryPrice) && finite(*f.ExitPrice) && finite(*f.Pnl) {
		if !tradelogic.PnlSignMatchesPrices(f.Side, *f.EntryPrice, *f.ExitPrice, *f.Pnl) {
			errs["pnl"] = "Profit amount sign does not match trade direction: " +
				"long trades profit when exit > entry, short trades profit when entry > exit"
		}
	}

	if len(errs) > 0 {
		return api.TradeInput{}, errs
	}

	lev := 1.0
	if f.Leverage != nil && finite(*f.Leverage) && *f.Leverage > 0 {
		lev = *f.Leverage
	}

	return api.TradeInput{
		Symbol:          f.Symbol,
		Side:            f.Side,
		EntryPrice:      *f.EntryPrice,
		ExitPrice:       *f.ExitPrice,
		StopLoss:        f.StopLoss,
		Quantity:        f.Quantity,
		EntryDate:       f.EntryDate,
		ExitDate:        f.ExitDate,
		Pnl:             *f.Pnl,
		Rr:              f.riskReward(),
		Leverage:        &lev,
		TotalCapital:    f.TotalCapital,
		AmountRisked:    f.AmountRisked,
		Notes:           f.Notes,
		Strategy:        f.Strategy,
		TagIDs:          filterTags(f.TagIDs, knownTags),
		EmotionRating:   f.EmotionRating,
		EmotionNotes:    f.EmotionNotes,
		PreTradePlan:    f.PreTradePlan,
		PostTradeReview: f.PostTradeReview,
		IsPaper:         f.IsPaper,
	}, nil
}

// filterTags drops ids that are not in the known tag set.
func filterTags(ids []int, known []api.Tag) []int {
	if len(ids) == 0 {
		return nil
	}
	keep := make(map[int]bool, len(known))
	for _, tag := range known {
		keep[tag.ID] = true
	}
	var out []int
	for _, id := range ids {
		if keep[id] {
			out = append(out, id)
		}
	}
	return out
}

// Outcome is the live win/loss/breakeven badge for the current pnl value.
// Display state only, never persisted.
func (f *TradeForm) Outcome() tradelogic.Outcome {
	if f.Pnl == nil {
		return tradelogic.Breakeven
	}
	return tradelogic.OutcomeFromPnl(*f.Pnl)
}

// SuggestedProfit derives a profit figure from the current inputs along
// with which calculation produced it, for the "use calculated value"
// affordance.
func (f *TradeForm) SuggestedProfit() (*float64, tradelogic.ProfitMethod) {
	return tradelogic.BestProfitCalculation(
		f.Side, f.EntryPrice, f.ExitPrice, f.Quantity, f.AmountInvested, f.Leverage)
}

// riskReward computes R/R for submission from the validated pnl.
func (f *TradeForm) riskReward() *float64 {
	if f.Pnl == nil {
		return nil
	}
	side := f.Side
	return tradelogic.RrFromStopLoss(*f.Pnl, f.EntryPrice, f.StopLoss, f.Quantity, &side, f.AmountRisked)
}
