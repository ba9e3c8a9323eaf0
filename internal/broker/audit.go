package broker

import (
	"context"
	"time"

	"github.com/quantrail/brokergate/internal/core"
	"go.uber.org/zap"
)

// OrderAudit is one append-only record of a write operation: what was sent,
// what came back, and under which mode. The trail exists for replay and
// debugging; the brokerage stays the state of record.
type OrderAudit struct {
	Time      time.Time `json:"time"`
	Mode      core.Mode `json:"mode"`
	Operation string    `json:"operation"`
	OrderID   string    `json:"order_id,omitempty"`
	Request   any       `json:"request,omitempty"`
	Response  any       `json:"response,omitempty"`
}

// Auditor records order audit entries. Implementations must be safe for
// concurrent use.
type Auditor interface {
	RecordOrder(ctx context.Context, rec OrderAudit) error
}

// audit records a write operation when an auditor is configured. An audit
// failure is logged, never propagated: the trade already happened and the
// caller must see its real outcome.
func (g *Gateway) audit(ctx context.Context, mode core.Mode, op, orderID string, request, response any) {
	if g.auditor == nil {
		return
	}
	rec := OrderAudit{
		Time:      time.Now().UTC(),
		Mode:      mode,
		Operation: op,
		OrderID:   orderID,
		Request:   request,
		Response:  response,
	}
	if err := g.auditor.RecordOrder(ctx, rec); err != nil {
		g.log.Warn("audit record failed",
			zap.String("operation", op),
			zap.String("mode", mode.String()),
			zap.Error(err),
		)
	}
}
