// internal/api/handler/api/positions_test.go
package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quantrail/brokergate/internal/broker"
	"github.com/quantrail/brokergate/internal/core"
)

type fakePositionsGateway struct {
	closeAllCalls int
	resolveErr    error
}

func (f *fakePositionsGateway) ListPositions(_ context.Context, mode string) (*broker.PositionList, error) {
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	return &broker.PositionList{Mode: "paper"}, nil
}

func (f *fakePositionsGateway) GetPosition(_ context.Context, mode, symbol string) (*broker.Position, error) {
	return &broker.Position{Mode: "paper", Symbol: symbol}, nil
}

func (f *fakePositionsGateway) ClosePosition(_ context.Context, mode, symbol string) (*broker.Order, error) {
	return &broker.Order{Mode: "paper", Symbol: symbol}, nil
}

func (f *fakePositionsGateway) CloseAllPositions(_ context.Context, mode string) (*broker.BulkCloseResult, error) {
	f.closeAllCalls++
	return &broker.BulkCloseResult{Mode: "paper"}, nil
}

func TestPositionsHandler_CloseAll_RequiresConfirm(t *testing.T) {
	gw := &fakePositionsGateway{}
	handler := NewPositionsHandler(gw)

	req := httptest.NewRequest("DELETE", "/api/v1/positions", nil)
	w := httptest.NewRecorder()

	handler.CloseAll(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without confirm, got %d", w.Code)
	}
	if gw.closeAllCalls != 0 {
		t.Errorf("bulk close executed without confirmation")
	}
}

func TestPositionsHandler_CloseAll_Confirmed(t *testing.T) {
	gw := &fakePositionsGateway{}
	handler := NewPositionsHandler(gw)

	req := httptest.NewRequest("DELETE", "/api/v1/positions?confirm=true", nil)
	w := httptest.NewRecorder()

	handler.CloseAll(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if gw.closeAllCalls != 1 {
		t.Errorf("expected 1 close-all call, got %d", gw.closeAllCalls)
	}
}

func TestPositionsHandler_List_ModeRequired(t *testing.T) {
	gw := &fakePositionsGateway{
		resolveErr: core.WrapError(core.ErrModeInvalid, nil),
	}
	handler := NewPositionsHandler(gw)

	req := httptest.NewRequest("GET", "/api/v1/positions", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for ambiguous mode, got %d", w.Code)
	}
}
