// internal/api/handler/api/orders.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/quantrail/brokergate/internal/api/response"
	"github.com/quantrail/brokergate/internal/broker"
	"github.com/quantrail/brokergate/internal/core"
	"github.com/shopspring/decimal"
)

var errCancelConfirmRequired = errors.New("bulk cancel requires confirm=true")

// OrdersGateway defines the interface needed from broker.Gateway.
type OrdersGateway interface {
	ListOrders(ctx context.Context, mode string, filter broker.OrderFilter) (*broker.OrderList, error)
	GetOrder(ctx context.Context, mode, orderID string) (*broker.Order, error)
	PlaceOrder(ctx context.Context, mode string, spec broker.OrderSpec) (*broker.Order, error)
	CancelOrder(ctx context.Context, mode, orderID string) error
	CancelAllOrders(ctx context.Context, mode string) (*broker.BulkCancelResult, error)
}

// PlaceOrderRequest is the request body for submitting an order. Numeric
// fields arrive as decimal strings and are parsed without passing through
// float64.
type PlaceOrderRequest struct {
	Mode          string `json:"mode,omitempty"`
	AssetClass    string `json:"asset_class,omitempty"`
	Symbol        string `json:"symbol"`
	Side          string `json:"side"`
	Type          string `json:"type,omitempty"`
	Qty           string `json:"qty,omitempty"`
	Notional      string `json:"notional,omitempty"`
	TimeInForce   string `json:"time_in_force,omitempty"`
	LimitPrice    string `json:"limit_price,omitempty"`
	StopPrice     string `json:"stop_price,omitempty"`
	TrailPrice    string `json:"trail_price,omitempty"`
	TrailPercent  string `json:"trail_percent,omitempty"`
	ExtendedHours bool   `json:"extended_hours,omitempty"`
	ClientOrderID string `json:"client_order_id,omitempty"`
}

// OrdersHandler handles order API requests.
type OrdersHandler struct {
	gw OrdersGateway
}

// NewOrdersHandler creates a new orders handler.
func NewOrdersHandler(gw OrdersGateway) *OrdersHandler {
	return &OrdersHandler{gw: gw}
}

// List returns orders matching the query filter.
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := broker.OrderFilter{
		Status: r.URL.Query().Get("status"),
	}
	if s := r.URL.Query().Get("symbols"); s != "" {
		filter.Symbols = strings.Split(s, ",")
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil {
			response.GatewayError(w, core.WrapError(core.ErrOrderInvalid,
				fmt.Errorf("invalid limit %q", l)))
			return
		}
		filter.Limit = n
	}

	orders, err := h.gw.ListOrders(r.Context(), modeParam(r), filter)
	if err != nil {
		response.GatewayError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, orders)
}

// Get returns one order by its server-assigned ID.
func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.gw.GetOrder(r.Context(), modeParam(r), r.PathValue("id"))
	if err != nil {
		response.GatewayError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, order)
}

// Place submits a new order.
func (h *OrdersHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.GatewayError(w, core.WrapError(core.ErrOrderInvalid,
			fmt.Errorf("invalid request body: %w", err)))
		return
	}

	spec, err := req.toSpec()
	if err != nil {
		response.GatewayError(w, err)
		return
	}

	mode := req.Mode
	if mode == "" {
		mode = modeParam(r)
	}

	order, err := h.gw.PlaceOrder(r.Context(), mode, spec)
	if err != nil {
		response.GatewayError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, order)
}

// Cancel cancels one open order.
func (h *OrdersHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.gw.CancelOrder(r.Context(), modeParam(r), r.PathValue("id")); err != nil {
		response.GatewayError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"canceled": true})
}

// CancelAll cancels every open order. Refused without confirm=true.
func (h *OrdersHandler) CancelAll(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		response.GatewayError(w, core.WrapError(core.ErrOrderInvalid, errCancelConfirmRequired))
		return
	}
	result, err := h.gw.CancelAllOrders(r.Context(), modeParam(r))
	if err != nil {
		response.GatewayError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}

func (r PlaceOrderRequest) toSpec() (broker.OrderSpec, error) {
	spec := broker.OrderSpec{
		AssetClass:    broker.AssetClass(r.AssetClass),
		Symbol:        r.Symbol,
		Side:          broker.OrderSide(r.Side),
		Type:          broker.OrderType(r.Type),
		TimeInForce:   broker.TimeInForce(r.TimeInForce),
		ExtendedHours: r.ExtendedHours,
		ClientOrderID: r.ClientOrderID,
	}

	fields := []struct {
		name string
		raw  string
		dst  **decimal.Decimal
	}{
		{"qty", r.Qty, &spec.Qty},
		{"notional", r.Notional, &spec.Notional},
		{"limit_price", r.LimitPrice, &spec.LimitPrice},
		{"stop_price", r.StopPrice, &spec.StopPrice},
		{"trail_price", r.TrailPrice, &spec.TrailPrice},
		{"trail_percent", r.TrailPercent, &spec.TrailPercent},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := decimal.NewFromString(f.raw)
		if err != nil {
			return broker.OrderSpec{}, core.WrapError(core.ErrOrderInvalid,
				fmt.Errorf("%s is not a valid decimal: %q", f.name, f.raw))
		}
		*f.dst = &d
	}

	return spec, nil
}
