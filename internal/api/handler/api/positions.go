// internal/api/handler/api/positions.go
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/quantrail/brokergate/internal/api/response"
	"github.com/quantrail/brokergate/internal/broker"
	"github.com/quantrail/brokergate/internal/core"
)

var errConfirmRequired = errors.New("bulk liquidation requires confirm=true")

// PositionsGateway defines the interface needed from broker.Gateway.
type PositionsGateway interface {
	ListPositions(ctx context.Context, mode string) (*broker.PositionList, error)
	GetPosition(ctx context.Context, mode, symbol string) (*broker.Position, error)
	ClosePosition(ctx context.Context, mode, symbol string) (*broker.Order, error)
	CloseAllPositions(ctx context.Context, mode string) (*broker.BulkCloseResult, error)
}

// PositionsHandler handles position API requests.
type PositionsHandler struct {
	gw PositionsGateway
}

// NewPositionsHandler creates a new positions handler.
func NewPositionsHandler(gw PositionsGateway) *PositionsHandler {
	return &PositionsHandler{gw: gw}
}

// List returns all open positions.
func (h *PositionsHandler) List(w http.ResponseWriter, r *http.Request) {
	positions, err := h.gw.ListPositions(r.Context(), modeParam(r))
	if err != nil {
		response.GatewayError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, positions)
}

// Get returns the open position for one symbol.
func (h *PositionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	pos, err := h.gw.GetPosition(r.Context(), modeParam(r), r.PathValue("symbol"))
	if err != nil {
		response.GatewayError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, pos)
}

// Close liquidates one position.
func (h *PositionsHandler) Close(w http.ResponseWriter, r *http.Request) {
	order, err := h.gw.ClosePosition(r.Context(), modeParam(r), r.PathValue("symbol"))
	if err != nil {
		response.GatewayError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, order)
}

// CloseAll liquidates every open position. Refused without confirm=true.
func (h *PositionsHandler) CloseAll(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		response.GatewayError(w, core.WrapError(core.ErrOrderInvalid, errConfirmRequired))
		return
	}
	result, err := h.gw.CloseAllPositions(r.Context(), modeParam(r))
	if err != nil {
		response.GatewayError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}
