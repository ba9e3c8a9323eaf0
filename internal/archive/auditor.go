package archive

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/quantrail/brokergate/internal/broker"
)

// Auditor writes one JSON blob per gateway write operation, keyed as
// orders/<mode>/<yyyy-mm-dd>/<unix-nanos>-<operation>.json so a day's
// activity lists under one prefix.
type Auditor struct {
	store Store
}

// NewAuditor creates an Auditor over any Store backend.
func NewAuditor(store Store) *Auditor {
	return &Auditor{store: store}
}

// RecordOrder implements broker.Auditor.
func (a *Auditor) RecordOrder(ctx context.Context, rec broker.OrderAudit) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding audit record: %w", err)
	}
	path := fmt.Sprintf("orders/%s/%s/%d-%s.json",
		rec.Mode,
		rec.Time.UTC().Format("2006-01-02"),
		rec.Time.UTC().UnixNano(),
		rec.Operation,
	)
	return a.store.Write(ctx, path, data)
}

// ListDay returns the audit record paths for one mode and day (YYYY-MM-DD).
func (a *Auditor) ListDay(ctx context.Context, mode, day string) ([]string, error) {
	return a.store.List(ctx, fmt.Sprintf("orders/%s/%s", mode, day))
}
