// internal/api/handler/api/account.go
package api

import (
	"context"
	"net/http"

	"github.com/quantrail/brokergate/internal/api/response"
	"github.com/quantrail/brokergate/internal/broker"
)

// AccountGateway defines the interface needed from broker.Gateway.
type AccountGateway interface {
	GetAccount(ctx context.Context, mode string) (*broker.Account, error)
	GetPortfolioHistory(ctx context.Context, mode string, q broker.HistoryQuery) (*broker.PortfolioHistory, error)
}

// AccountHandler handles account API requests.
type AccountHandler struct {
	gw AccountGateway
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(gw AccountGateway) *AccountHandler {
	return &AccountHandler{gw: gw}
}

// Get returns the account snapshot for the requested mode.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	acct, err := h.gw.GetAccount(r.Context(), modeParam(r))
	if err != nil {
		response.GatewayError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, acct)
}

// History returns the account equity time series.
func (h *AccountHandler) History(w http.ResponseWriter, r *http.Request) {
	q := broker.HistoryQuery{
		Period:    r.URL.Query().Get("period"),
		Timeframe: r.URL.Query().Get("timeframe"),
	}
	history, err := h.gw.GetPortfolioHistory(r.Context(), modeParam(r), q)
	if err != nil {
		response.GatewayError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, history)
}
