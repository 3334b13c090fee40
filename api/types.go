package api

import "github.com/tradebook/tradebook/tradelogic"

// User is the authenticated account.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// LoginResponse is the token pair issued at login.
type LoginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RegisterResponse is the new account plus its first token pair.
type RegisterResponse struct {
	User    User   `json:"user"`
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Trade is a journal entry as the backend returns it. Decimal fields come
// over the wire as strings; optional ones as nullable strings.
type Trade struct {
	ID              int             `json:"id"`
	Symbol          int             `json:"symbol"`
	SymbolName      string          `json:"symbol_name"`
	Side            tradelogic.Side `json:"side"`
	EntryPrice      string          `json:"entry_price"`
	ExitPrice       string          `json:"exit_price"`
	StopLoss        *string         `json:"stop_loss"`
	Quantity        *string         `json:"quantity"`
	EntryDate       string          `json:"entry_date"`
	ExitDate        string          `json:"exit_date"`
	Pnl             string          `json:"pnl"`
	Rr              *string         `json:"rr"`
	Leverage        *string         `json:"leverage"`
	TotalCapital    *string         `json:"total_capital"`
	AmountRisked    *string         `json:"amount_risked"`
	Notes           string          `json:"notes"`
	Strategy        *int            `json:"strategy"`
	StrategyName    *string         `json:"strategy_name"`
	Tags            []Tag           `json:"tags"`
	EmotionRating   *int            `json:"emotion_rating"`
	EmotionNotes    string          `json:"emotion_notes"`
	PreTradePlan    string          `json:"pre_trade_plan"`
	PostTradeReview string          `json:"post_trade_review"`
	Screenshot      *string         `json:"screenshot"`
	IsPaper         bool            `json:"is_paper"`
}

// TradeInput is a new trade ready for submission. Required fields are
// values; optional ones are pointers left nil to omit.
type TradeInput struct {
	Symbol          int
	Side            tradelogic.Side
	EntryPrice      float64
	ExitPrice       float64
	StopLoss        *float64
	Quantity        *float64
	EntryDate       string
	ExitDate        string
	Pnl             float64
	Rr              *float64
	Leverage        *float64
	TotalCapital    *float64
	AmountRisked    *float64
	Notes           string
	Strategy        *int
	TagIDs          []int
	EmotionRating   *int
	EmotionNotes    string
	PreTradePlan    string
	PostTradeReview string
	IsPaper         bool
}

// TradeUpdate is a partial update; nil fields are left untouched on the
// server.
type TradeUpdate struct {
	Symbol          *int
	Side            *tradelogic.Side
	EntryPrice      *float64
	ExitPrice       *float64
	StopLoss        *float64
	Quantity        *float64
	EntryDate       *string
	ExitDate        *string
	Pnl             *float64
	Rr              *float64
	Leverage        *float64
	TotalCapital    *float64
	AmountRisked    *float64
	Notes           *string
	Strategy        *int
	TagIDs          []int
	EmotionRating   *float64
	EmotionNotes    *string
	PreTradePlan    *string
	PostTradeReview *string
	IsPaper         *bool
}

// Strategy, Symbol and Tag are the user's lookup catalogs.
type Strategy struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Symbol struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Tag struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// TradeTemplate pre-fills the trade form with a saved setup.
type TradeTemplate struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Symbol       string  `json:"symbol"`
	Side         string  `json:"side"`
	Strategy     *int    `json:"strategy"`
	StrategyName *string `json:"strategy_name"`
	Tags         []Tag   `json:"tags"`
	TagIDs       []int   `json:"tag_ids,omitempty"`
	Notes        string  `json:"notes"`
	PreTradePlan string  `json:"pre_trade_plan"`
	IsPaper      bool    `json:"is_paper"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

// TemplateInput creates or replaces a trade template.
type TemplateInput struct {
	Name         string `json:"name"`
	Symbol       string `json:"symbol,omitempty"`
	Side         string `json:"side,omitempty"`
	Strategy     *int   `json:"strategy,omitempty"`
	TagIDs       []int  `json:"tag_ids,omitempty"`
	Notes        string `json:"notes,omitempty"`
	PreTradePlan string `json:"pre_trade_plan,omitempty"`
	IsPaper      bool   `json:"is_paper"`
}

// ImportResult summarizes a CSV import.
type ImportResult struct {
	Created     int      `json:"created"`
	Errors      []string `json:"errors"`
	TotalErrors int      `json:"total_errors"`
}

// AnalyticsSummary is the server-computed performance overview. All the
// aggregation happens backend-side; the client only renders it.
type AnalyticsSummary struct {
	TotalPnl                float64  `json:"total_pnl"`
	WinCount                int      `json:"win_count"`
	LossCount               int      `json:"loss_count"`
	TotalTrades             int      `json:"total_trades"`
	WinRate                 *float64 `json:"win_rate"`
	AvgWin                  *float64 `json:"avg_win"`
	AvgLoss                 *float64 `json:"avg_loss"`
	ProfitFactor            *float64 `json:"profit_factor"`
	Expectancy              *float64 `json:"expectancy"`
	CurrentStreak           int      `json:"current_streak"`
	CurrentStreakType       *string  `json:"current_streak_type"`
	LongestWinStreak        int      `json:"longest_win_streak"`
	LongestLossStreak       int      `json:"longest_loss_streak"`
	MaxDrawdown             float64  `json:"max_drawdown"`
	MaxDrawdownDurationDays *int     `json:"max_drawdown_duration_days"`
	SharpeRatio             *float64 `json:"sharpe_ratio"`
}

type EquityCurvePoint struct {
	Date          string  `json:"date"`
	CumulativePnl float64 `json:"cumulative_pnl"`
}

type DrawdownPoint struct {
	Date     string  `json:"date"`
	Equity   float64 `json:"equity"`
	Drawdown float64 `json:"drawdown"`
}

type CalendarDay struct {
	Date     string          `json:"date"`
	TotalPnl float64         `json:"total_pnl"`
	Count    int             `json:"count"`
	Trades   []CalendarTrade `json:"trades"`
}

type CalendarTrade struct {
	ID       int     `json:"id"`
	Symbol   string  `json:"symbol"`
	Side     string  `json:"side"`
	Pnl      float64 `json:"pnl"`
	Strategy *string `json:"strategy"`
}

type HeatmapCell struct {
	DayOfWeek int     `json:"day_of_week"`
	Hour      int     `json:"hour"`
	Wins      int     `json:"wins"`
	Losses    int     `json:"losses"`
	TotalPnl  float64 `json:"total_pnl"`
	Count     int     `json:"count"`
}

type BySymbolItem struct {
	Symbol string  `json:"symbol"`
	Pnl    float64 `json:"pnl"`
	Count  int     `json:"count"`
}

type ByStrategyItem struct {
	Strategy string  `json:"strategy"`
	Pnl      float64 `json:"pnl"`
	Count    int     `json:"count"`
}

type ByPeriodItem struct {
	Period *string `json:"period"`
	Pnl    float64 `json:"pnl"`
	Count  int     `json:"count"`
}
