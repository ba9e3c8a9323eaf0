package broker

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/quantrail/brokergate/internal/core"
)

// Wire shapes of the upstream responses that do not map one-to-one onto the
// internal types, and the reshaping between the two.

// snapshotWire is the upstream stock/crypto snapshot shape.
type snapshotWire struct {
	LatestTrade  *Trade `json:"latestTrade"`
	LatestQuote  *Quote `json:"latestQuote"`
	MinuteBar    *Bar   `json:"minuteBar"`
	DailyBar     *Bar   `json:"dailyBar"`
	PrevDailyBar *Bar   `json:"prevDailyBar"`
}

func normalizeSnapshot(symbol string, w *snapshotWire) *Snapshot {
	if w == nil {
		return nil
	}
	return &Snapshot{
		Symbol:       symbol,
		LatestTrade:  w.LatestTrade,
		LatestQuote:  w.LatestQuote,
		MinuteBar:    w.MinuteBar,
		DailyBar:     w.DailyBar,
		PrevDailyBar: w.PrevDailyBar,
	}
}

// barsWire is the upstream bar-series shape.
type barsWire struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"bars"`
}

// normalizeBars reverses the upstream oldest-first ordering: callers get the
// series most recent first.
func normalizeBars(w barsWire, timeframe string) *BarSeries {
	bars := make([]Bar, len(w.Bars))
	for i, b := range w.Bars {
		bars[len(bars)-1-i] = b
	}
	return &BarSeries{
		Symbol:    w.Symbol,
		Timeframe: timeframe,
		Bars:      bars,
	}
}

// historyWire is the upstream portfolio-history shape: four parallel arrays
// aligned by index. Numbers are decoded as json.Number so their exact
// decimal text survives.
type historyWire struct {
	Timestamp     []int64       `json:"timestamp"`
	Equity        []json.Number `json:"equity"`
	ProfitLoss    []json.Number `json:"profit_loss"`
	ProfitLossPct []json.Number `json:"profit_loss_pct"`
	Timeframe     string        `json:"timeframe"`
	BaseValue     json.Number   `json:"base_value"`
}

// normalizeHistory zips the parallel arrays into points. A length divergence
// is flagged as malformed, never silently truncated.
func normalizeHistory(w historyWire) (*PortfolioHistory, error) {
	n := len(w.Timestamp)
	if len(w.Equity) != n || len(w.ProfitLoss) != n || len(w.ProfitLossPct) != n {
		return nil, core.WrapError(core.ErrMalformedData,
			fmt.Errorf("portfolio history arrays diverge: timestamp=%d equity=%d profit_loss=%d profit_loss_pct=%d",
				n, len(w.Equity), len(w.ProfitLoss), len(w.ProfitLossPct)))
	}

	points := make([]PortfolioPoint, n)
	for i := 0; i < n; i++ {
		points[i] = PortfolioPoint{
			Timestamp:     time.Unix(w.Timestamp[i], 0).UTC(),
			Equity:        w.Equity[i].String(),
			ProfitLoss:    w.ProfitLoss[i].String(),
			ProfitLossPct: w.ProfitLossPct[i].String(),
		}
	}
	return &PortfolioHistory{
		Timeframe: w.Timeframe,
		BaseValue: w.BaseValue.String(),
		Points:    points,
	}, nil
}

// watchlistWire is the upstream watchlist shape; membership arrives as full
// asset records, of which only the symbols matter here.
type watchlistWire struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Assets    []struct {
		Symbol string `json:"symbol"`
	} `json:"assets"`
}

func normalizeWatchlist(w watchlistWire) Watchlist {
	symbols := make([]string, 0, len(w.Assets))
	for _, a := range w.Assets {
		symbols = append(symbols, a.Symbol)
	}
	return Watchlist{
		ID:        w.ID,
		Name:      w.Name,
		Symbols:   symbols,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

// closeAllWire is one entry of the bulk position close response.
type closeAllWire struct {
	Symbol string `json:"symbol"`
	Status int    `json:"status"`
	Body   *Order `json:"body"`
}

func normalizeCloseAll(entries []closeAllWire) []CloseResult {
	out := make([]CloseResult, len(entries))
	for i, e := range entries {
		out[i] = CloseResult{Symbol: e.Symbol, Status: e.Status, Order: e.Body}
	}
	return out
}

// contractsWire is the upstream option contract search shape.
type contractsWire struct {
	Contracts []OptionContract `json:"option_contracts"`
}
