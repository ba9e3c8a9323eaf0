package broker

import (
	"time"

	"github.com/quantrail/brokergate/internal/core"
)

// Trading-API entities arrive with all monetary and quantity fields encoded
// as decimal strings. Those fields stay strings through normalization;
// conversion to numeric form happens only at the point of arithmetic or
// formatting, never by round-tripping through float64.

// Account is a point-in-time snapshot of a brokerage account. Re-fetched on
// every request, never cached.
type Account struct {
	Mode core.Mode `json:"mode"`

	ID               string    `json:"id"`
	AccountNumber    string    `json:"account_number"`
	Status           string    `json:"status"`
	Currency         string    `json:"currency"`
	Equity           string    `json:"equity"`
	LastEquity       string    `json:"last_equity"`
	Cash             string    `json:"cash"`
	BuyingPower      string    `json:"buying_power"`
	RegTBuyingPower  string    `json:"regt_buying_power"`
	DaytradingPower  string    `json:"daytrading_buying_power"`
	PortfolioValue   string    `json:"portfolio_value"`
	LongMarketValue  string    `json:"long_market_value"`
	ShortMarketValue string    `json:"short_market_value"`
	InitialMargin    string    `json:"initial_margin"`
	MaintMargin      string    `json:"maintenance_margin"`
	DaytradeCount    int       `json:"daytrade_count"`
	PatternDayTrader bool      `json:"pattern_day_trader"`
	TradingBlocked   bool      `json:"trading_blocked"`
	CreatedAt        time.Time `json:"created_at"`
}

// Position is one row per held symbol. It ceases to exist upon full close.
type Position struct {
	Mode core.Mode `json:"mode,omitempty"`

	Symbol         string `json:"symbol"`
	AssetClass     string `json:"asset_class"`
	Exchange       string `json:"exchange"`
	Side           string `json:"side"`
	Qty            string `json:"qty"`
	AvgEntryPrice  string `json:"avg_entry_price"`
	CurrentPrice   string `json:"current_price"`
	MarketValue    string `json:"market_value"`
	CostBasis      string `json:"cost_basis"`
	UnrealizedPL   string `json:"unrealized_pl"`
	UnrealizedPLPC string `json:"unrealized_plpc"`
	ChangeToday    string `json:"change_today"`
}

// PositionList is the mode-tagged set of open positions.
type PositionList struct {
	Mode      core.Mode  `json:"mode"`
	Positions []Position `json:"positions"`
}

// Order is an order as the brokerage reports it. Identity is the
// server-assigned ID. Nullable upstream fields stay pointers; a missing
// fill time is nil, never a zero timestamp that could be misread.
type Order struct {
	Mode core.Mode `json:"mode,omitempty"`

	ID            string `json:"id"`
	ClientOrderID string `json:"client_order_id"`
	Symbol        string `json:"symbol"`
	AssetClass    string `json:"asset_class"`
	Side          string `json:"side"`
	Type          string `json:"type"`
	TimeInForce   string `json:"time_in_force"`
	Status        string `json:"status"`

	Qty            *string `json:"qty"`
	Notional       *string `json:"notional"`
	FilledQty      string  `json:"filled_qty"`
	FilledAvgPrice *string `json:"filled_avg_price"`
	LimitPrice     *string `json:"limit_price"`
	StopPrice      *string `json:"stop_price"`
	TrailPrice     *string `json:"trail_price"`
	TrailPercent   *string `json:"trail_percent"`
	ExtendedHours  bool    `json:"extended_hours"`

	CreatedAt   time.Time  `json:"created_at"`
	SubmittedAt time.Time  `json:"submitted_at"`
	FilledAt    *time.Time `json:"filled_at"`
	CanceledAt  *time.Time `json:"canceled_at"`
	ExpiredAt   *time.Time `json:"expired_at"`
	FailedAt    *time.Time `json:"failed_at"`
}

// Terminal reports whether the order reached a final lifecycle state.
func (o Order) Terminal() bool {
	switch o.Status {
	case "filled", "canceled", "expired", "rejected":
		return true
	}
	return false
}

// OrderList is the mode-tagged set of orders matching a query.
type OrderList struct {
	Mode   core.Mode `json:"mode"`
	Orders []Order   `json:"orders"`
}

// OrderFilter narrows an order listing.
type OrderFilter struct {
	// Status is "open", "closed", or "all".
	Status  string
	Symbols []string
	Limit   int
}

// CancelResult is the outcome of a bulk cancel for one order.
type CancelResult struct {
	ID     string `json:"id"`
	Status int    `json:"status"`
}

// BulkCancelResult is the mode-tagged outcome of cancel-all.
type BulkCancelResult struct {
	Mode     core.Mode      `json:"mode"`
	Canceled []CancelResult `json:"canceled"`
}

// CloseResult is the outcome of a bulk close for one position.
type CloseResult struct {
	Symbol string `json:"symbol"`
	Status int    `json:"status"`
	Order  *Order `json:"order,omitempty"`
}

// BulkCloseResult is the mode-tagged outcome of close-all.
type BulkCloseResult struct {
	Mode   core.Mode     `json:"mode"`
	Closed []CloseResult `json:"closed"`
}

// The market-data API, unlike the trading API, encodes prices as JSON
// numbers; float64 is faithful to the wire there.

// Trade is the latest trade of a snapshot.
type Trade struct {
	Price     float64   `json:"p"`
	Size      float64   `json:"s"`
	Timestamp time.Time `json:"t"`
}

// Quote is the latest bid/ask of a snapshot.
type Quote struct {
	BidPrice  float64   `json:"bp"`
	BidSize   float64   `json:"bs"`
	AskPrice  float64   `json:"ap"`
	AskSize   float64   `json:"as"`
	Timestamp time.Time `json:"t"`
}

// Bar is one OHLCV bar.
type Bar struct {
	Timestamp  time.Time `json:"t"`
	Open       float64   `json:"o"`
	High       float64   `json:"h"`
	Low        float64   `json:"l"`
	Close      float64   `json:"c"`
	Volume     float64   `json:"v"`
	TradeCount uint64    `json:"n"`
	VWAP       float64   `json:"vw"`
}

// Snapshot is the ephemeral market picture for one symbol: latest trade and
// quote plus the minute, daily, and previous daily bars. Any of the parts
// may be absent outside market hours.
type Snapshot struct {
	Mode   core.Mode `json:"mode,omitempty"`
	Symbol string    `json:"symbol"`

	LatestTrade  *Trade `json:"latest_trade"`
	LatestQuote  *Quote `json:"latest_quote"`
	MinuteBar    *Bar   `json:"minute_bar"`
	DailyBar     *Bar   `json:"daily_bar"`
	PrevDailyBar *Bar   `json:"prev_daily_bar"`
}

// SnapshotMap is the mode-tagged multi-symbol snapshot result.
type SnapshotMap struct {
	Mode      core.Mode            `json:"mode"`
	Snapshots map[string]*Snapshot `json:"snapshots"`
}

// BarSeries is an ordered bar sequence for one symbol, most recent first.
type BarSeries struct {
	Mode      core.Mode `json:"mode"`
	Symbol    string    `json:"symbol"`
	Timeframe string    `json:"timeframe"`
	Bars      []Bar     `json:"bars"`
}

// BarsQuery describes a bar-series request.
type BarsQuery struct {
	Symbol    string
	Timeframe string // e.g. "1Min", "1Hour", "1Day"
	Start     time.Time
	End       time.Time
	Limit     int
}

// PortfolioPoint is one aligned sample of the account equity series.
// String values preserve the upstream numbers exactly.
type PortfolioPoint struct {
	Timestamp     time.Time `json:"timestamp"`
	Equity        string    `json:"equity"`
	ProfitLoss    string    `json:"profit_loss"`
	ProfitLossPct string    `json:"profit_loss_pct"`
}

// PortfolioHistory is the mode-tagged account equity time series.
type PortfolioHistory struct {
	Mode      core.Mode        `json:"mode"`
	Timeframe string           `json:"timeframe"`
	BaseValue string           `json:"base_value"`
	Points    []PortfolioPoint `json:"points"`
}

// HistoryQuery describes a portfolio-history request.
type HistoryQuery struct {
	Period    string // e.g. "1D", "1M", "1A"
	Timeframe string // e.g. "5Min", "1D"
}

// Clock is the market clock.
type Clock struct {
	Mode      core.Mode `json:"mode"`
	Timestamp time.Time `json:"timestamp"`
	IsOpen    bool      `json:"is_open"`
	NextOpen  time.Time `json:"next_open"`
	NextClose time.Time `json:"next_close"`
}

// CalendarDay is one trading day with session open/close times.
type CalendarDay struct {
	Date  string `json:"date"`
	Open  string `json:"open"`
	Close string `json:"close"`
}

// Calendar is the mode-tagged trading calendar slice.
type Calendar struct {
	Mode core.Mode     `json:"mode"`
	Days []CalendarDay `json:"days"`
}

// Watchlist is a named, identified collection of symbols. No ordering
// guarantee among members.
type Watchlist struct {
	Mode      core.Mode `json:"mode,omitempty"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Symbols   []string  `json:"symbols"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OptionContract is one listed option contract, as returned by the contract
// search that must precede an option order. Greeks and prices are consumed
// as opaque upstream fields.
type OptionContract struct {
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name"`
	UnderlyingSymbol string  `json:"underlying_symbol"`
	Type             string  `json:"type"` // "call" or "put"
	Style            string  `json:"style"`
	ExpirationDate   string  `json:"expiration_date"`
	StrikePrice      string  `json:"strike_price"`
	Status           string  `json:"status"`
	Tradable         bool    `json:"tradable"`
	OpenInterest     *string `json:"open_interest"`
	ClosePrice       *string `json:"close_price"`
}

// OptionContractList is the mode-tagged contract search result.
type OptionContractList struct {
	Mode      core.Mode        `json:"mode"`
	Contracts []OptionContract `json:"contracts"`
}

// OptionQuery describes a contract search.
type OptionQuery struct {
	UnderlyingSymbol string
	ExpirationDate   string
	Type             string // "call", "put", or empty for both
	StrikeGTE        string
	StrikeLTE        string
	Limit            int
}
