// internal/api/handler/api/watchlist.go
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/quantrail/brokergate/internal/api/response"
	"github.com/quantrail/brokergate/internal/broker"
	"github.com/quantrail/brokergate/internal/core"
)

// WatchlistGateway defines the interface needed from broker.Gateway.
type WatchlistGateway interface {
	Watchlist(ctx context.Context, mode string, action broker.WatchlistAction) (*broker.WatchlistResult, error)
}

// CreateWatchlistRequest is the request body for creating a watchlist.
type CreateWatchlistRequest struct {
	Name    string   `json:"name"`
	Symbols []string `json:"symbols,omitempty"`
}

// AddSymbolRequest is the request body for adding a symbol to a watchlist.
type AddSymbolRequest struct {
	Symbol string `json:"symbol"`
}

// WatchlistHandler handles watchlist API requests.
type WatchlistHandler struct {
	gw WatchlistGateway
}

// NewWatchlistHandler creates a new watchlist handler.
func NewWatchlistHandler(gw WatchlistGateway) *WatchlistHandler {
	return &WatchlistHandler{gw: gw}
}

// List returns all watchlists.
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, broker.WatchlistList{})
}

// Create creates a new watchlist.
func (h *WatchlistHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateWatchlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.GatewayError(w, core.WrapError(core.ErrOrderInvalid,
			fmt.Errorf("invalid request body: %w", err)))
		return
	}
	h.run(w, r, broker.WatchlistCreate{Name: req.Name, Symbols: req.Symbols})
}

// Get returns one watchlist with its members.
func (h *WatchlistHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, broker.WatchlistView{ID: r.PathValue("id")})
}

// AddSymbol appends one symbol to a watchlist.
func (h *WatchlistHandler) AddSymbol(w http.ResponseWriter, r *http.Request) {
	var req AddSymbolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.GatewayError(w, core.WrapError(core.ErrOrderInvalid,
			fmt.Errorf("invalid request body: %w", err)))
		return
	}
	h.run(w, r, broker.WatchlistAddSymbol{ID: r.PathValue("id"), Symbol: req.Symbol})
}

// Delete removes a watchlist.
func (h *WatchlistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, broker.WatchlistDelete{ID: r.PathValue("id")})
}

func (h *WatchlistHandler) run(w http.ResponseWriter, r *http.Request, action broker.WatchlistAction) {
	result, err := h.gw.Watchlist(r.Context(), modeParam(r), action)
	if err != nil {
		response.GatewayError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}
