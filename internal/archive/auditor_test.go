package archive

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/quantrail/brokergate/internal/broker"
	"github.com/quantrail/brokergate/internal/core"
)

func TestAuditor_RecordOrder(t *testing.T) {
	store, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	auditor := NewAuditor(store)
	ctx := context.Background()

	rec := broker.OrderAudit{
		Time:      time.Date(2026, 8, 28, 14, 0, 0, 0, time.UTC),
		Mode:      core.ModePaper,
		Operation: "place_order",
		OrderID:   "ord-1",
		Request:   map[string]string{"symbol": "AAPL"},
	}
	if err := auditor.RecordOrder(ctx, rec); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	paths, err := auditor.ListDay(ctx, "paper", "2026-08-28")
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 {
		t.Fatalf("expected 1 record, got %d", len(paths))
	}
	if !strings.HasSuffix(paths[0], "-place_order.json") {
		t.Errorf("unexpected path: %s", paths[0])
	}

	data, err := store.Read(ctx, paths[0])
	if err != nil {
		t.Fatal(err)
	}
	var got broker.OrderAudit
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Mode != core.ModePaper || got.OrderID != "ord-1" {
		t.Errorf("round trip mismatch: %+v", got)
	}
}
