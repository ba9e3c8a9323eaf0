// internal/api/handler/api/market.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/quantrail/brokergate/internal/api/response"
	"github.com/quantrail/brokergate/internal/broker"
	"github.com/quantrail/brokergate/internal/core"
)

// MarketGateway defines the interface needed from broker.Gateway.
type MarketGateway interface {
	GetSnapshot(ctx context.Context, mode, symbol string) (*broker.Snapshot, error)
	GetSnapshots(ctx context.Context, mode string, symbols []string) (*broker.SnapshotMap, error)
	GetBars(ctx context.Context, mode string, q broker.BarsQuery) (*broker.BarSeries, error)
	GetCryptoSnapshot(ctx context.Context, mode, symbol string) (*broker.Snapshot, error)
	GetClock(ctx context.Context, mode string) (*broker.Clock, error)
	GetCalendar(ctx context.Context, mode, start, end string) (*broker.Calendar, error)
	SearchOptionContracts(ctx context.Context, mode string, q broker.OptionQuery) (*broker.OptionContractList, error)
}

// MarketHandler handles market data API requests.
type MarketHandler struct {
	gw MarketGateway
}

// NewMarketHandler creates a new market data handler.
func NewMarketHandler(gw MarketGateway) *MarketHandler {
	return &MarketHandler{gw: gw}
}

// Snapshot returns the market snapshot for one equity symbol.
func (h *MarketHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.gw.GetSnapshot(r.Context(), modeParam(r), r.PathValue("symbol"))
	if err != nil {
		response.GatewayError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, snap)
}

// Snapshots returns snapshots for the comma-separated symbols parameter.
func (h *MarketHandler) Snapshots(w http.ResponseWriter, r *http.Request) {
	var symbols []string
	if s := r.URL.Query().Get("symbols"); s != "" {
		symbols = strings.Split(s, ",")
	}
	snaps, err := h.gw.GetSnapshots(r.Context(), modeParam(r), symbols)
	if err != nil {
		response.GatewayError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, snaps)
}

// Bars returns a bar series for one symbol, most recent first.
func (h *MarketHandler) Bars(w http.ResponseWriter, r *http.Request) {
	q := broker.BarsQuery{
		Symbol:    r.PathValue("symbol"),
		Timeframe: r.URL.Query().Get("timeframe"),
	}
	for _, p := range []struct {
		name string
		dst  *time.Time
	}{
		{"start", &q.Start},
		{"end", &q.End},
	} {
		raw := r.URL.Query().Get(p.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.GatewayError(w, core.WrapError(core.ErrOrderInvalid,
				fmt.Errorf("%s is not RFC3339: %q", p.name, raw)))
			return
		}
		*p.dst = t
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil {
			response.GatewayError(w, core.WrapError(core.ErrOrderInvalid,
				fmt.Errorf("invalid limit %q", l)))
			return
		}
		q.Limit = n
	}

	series, err := h.gw.GetBars(r.Context(), modeParam(r), q)
	if err != nil {
		response.GatewayError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, series)
}

// CryptoSnapshot returns the snapshot for one crypto pair. The pair is
// passed as a query parameter because its symbol contains a slash.
func (h *MarketHandler) CryptoSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.gw.GetCryptoSnapshot(r.Context(), modeParam(r), r.URL.Query().Get("symbol"))
	if err != nil {
		response.GatewayError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, snap)
}

// Clock returns the market clock.
func (h *MarketHandler) Clock(w http.ResponseWriter, r *http.Request) {
	clock, err := h.gw.GetClock(r.Context(), modeParam(r))
	if err != nil {
		response.GatewayError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, clock)
}

// Calendar returns the trading calendar between two optional dates.
func (h *MarketHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	cal, err := h.gw.GetCalendar(r.Context(), modeParam(r),
		r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		response.GatewayError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, cal)
}

// OptionContracts searches listed option contracts for an underlying.
func (h *MarketHandler) OptionContracts(w http.ResponseWriter, r *http.Request) {
	q := broker.OptionQuery{
		UnderlyingSymbol: r.URL.Query().Get("underlying"),
		ExpirationDate:   r.URL.Query().Get("expiration"),
		Type:             r.URL.Query().Get("type"),
		StrikeGTE:        r.URL.Query().Get("strike_gte"),
		StrikeLTE:        r.URL.Query().Get("strike_lte"),
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil {
			response.GatewayError(w, core.WrapError(core.ErrOrderInvalid,
				fmt.Errorf("invalid limit %q", l)))
			return
		}
		q.Limit = n
	}

	contracts, err := h.gw.SearchOptionContracts(r.Context(), modeParam(r), q)
	if err != nil {
		response.GatewayError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, contracts)
}
