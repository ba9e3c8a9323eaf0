// internal/api/handler/api/orders_test.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/quantrail/brokergate/internal/broker"
	"github.com/quantrail/brokergate/internal/core"
)

type fakeOrdersGateway struct {
	placeCalls     int
	cancelAllCalls int
	lastMode       string
	lastSpec       broker.OrderSpec
}

func (f *fakeOrdersGateway) ListOrders(_ context.Context, mode string, _ broker.OrderFilter) (*broker.OrderList, error) {
	return &broker.OrderList{Mode: "paper"}, nil
}

func (f *fakeOrdersGateway) GetOrder(_ context.Context, mode, orderID string) (*broker.Order, error) {
	return &broker.Order{Mode: "paper", ID: orderID}, nil
}

func (f *fakeOrdersGateway) PlaceOrder(_ context.Context, mode string, spec broker.OrderSpec) (*broker.Order, error) {
	f.placeCalls++
	f.lastMode = mode
	f.lastSpec = spec
	return &broker.Order{Mode: "paper", ID: "order-1", Symbol: spec.Symbol}, nil
}

func (f *fakeOrdersGateway) CancelOrder(_ context.Context, mode, orderID string) error {
	return nil
}

func (f *fakeOrdersGateway) CancelAllOrders(_ context.Context, mode string) (*broker.BulkCancelResult, error) {
	f.cancelAllCalls++
	return &broker.BulkCancelResult{Mode: "paper"}, nil
}

func TestOrdersHandler_Place(t *testing.T) {
	gw := &fakeOrdersGateway{}
	handler := NewOrdersHandler(gw)

	body := `{
		"mode": "paper",
		"symbol": "AAPL",
		"side": "buy",
		"type": "limit",
		"qty": "10.000000001",
		"limit_price": "189.50"
	}`
	req := httptest.NewRequest("POST", "/api/v1/orders", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.Place(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if gw.placeCalls != 1 {
		t.Fatalf("expected 1 place call, got %d", gw.placeCalls)
	}
	if gw.lastMode != "paper" {
		t.Errorf("expected mode paper, got %q", gw.lastMode)
	}
	if gw.lastSpec.Qty == nil || gw.lastSpec.Qty.String() != "10.000000001" {
		t.Errorf("qty lost precision: %v", gw.lastSpec.Qty)
	}
	if gw.lastSpec.LimitPrice == nil || gw.lastSpec.LimitPrice.String() != "189.5" {
		t.Errorf("unexpected limit price: %v", gw.lastSpec.LimitPrice)
	}
}

func TestOrdersHandler_Place_BadDecimal(t *testing.T) {
	gw := &fakeOrdersGateway{}
	handler := NewOrdersHandler(gw)

	body := `{"symbol": "AAPL", "side": "buy", "qty": "ten"}`
	req := httptest.NewRequest("POST", "/api/v1/orders", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.Place(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if gw.placeCalls != 0 {
		t.Errorf("gateway called despite invalid decimal")
	}

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error.Code != core.ErrOrderInvalid.Code {
		t.Errorf("expected %s, got %q", core.ErrOrderInvalid.Code, resp.Error.Code)
	}
}

func TestOrdersHandler_Place_BadBody(t *testing.T) {
	gw := &fakeOrdersGateway{}
	handler := NewOrdersHandler(gw)

	req := httptest.NewRequest("POST", "/api/v1/orders", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	handler.Place(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if gw.placeCalls != 0 {
		t.Errorf("gateway called despite bad body")
	}
}

func TestOrdersHandler_CancelAll_RequiresConfirm(t *testing.T) {
	gw := &fakeOrdersGateway{}
	handler := NewOrdersHandler(gw)

	req := httptest.NewRequest("DELETE", "/api/v1/orders", nil)
	w := httptest.NewRecorder()

	handler.CancelAll(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without confirm, got %d", w.Code)
	}
	if gw.cancelAllCalls != 0 {
		t.Errorf("bulk cancel executed without confirmation")
	}
}

func TestOrdersHandler_CancelAll_Confirmed(t *testing.T) {
	gw := &fakeOrdersGateway{}
	handler := NewOrdersHandler(gw)

	req := httptest.NewRequest("DELETE", "/api/v1/orders?confirm=true", nil)
	w := httptest.NewRecorder()

	handler.CancelAll(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if gw.cancelAllCalls != 1 {
		t.Errorf("expected 1 cancel-all call, got %d", gw.cancelAllCalls)
	}
}

func TestOrdersHandler_List_BadLimit(t *testing.T) {
	gw := &fakeOrdersGateway{}
	handler := NewOrdersHandler(gw)

	req := httptest.NewRequest("GET", "/api/v1/orders?limit=abc", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
