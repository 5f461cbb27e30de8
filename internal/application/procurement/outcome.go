package procurement

import (
	"github.com/commercehub/backoffice/internal/domain/inventory"
	"github.com/google/uuid"
)

// SideEffectFailure records one degraded post-finalization step
type SideEffectFailure struct {
	Step    string `json:"step"`
	Message string `json:"message"`
}

// SideEffectOutcome reports what happened after an approval was
// finalized. The finalization itself is already durable by the time
// this is built; everything here is best effort and a failure in one
// step never rolls back the approval or blocks the remaining steps.
type SideEffectOutcome struct {
	GeneratedOrderIDs []uuid.UUID               `json:"generated_order_ids"`
	BackorderIDs      []uuid.UUID               `json:"backorder_ids"`
	LowStockAlerts    []inventory.LowStockAlert `json:"low_stock_alerts"`
	NotificationsSent bool                      `json:"notifications_sent"`
	ReminderScheduled bool                      `json:"reminder_scheduled"`
	Failures          []SideEffectFailure       `json:"failures,omitempty"`
}

// NewSideEffectOutcome creates an empty outcome report
func NewSideEffectOutcome() *SideEffectOutcome {
	return &SideEffectOutcome{
		GeneratedOrderIDs: make([]uuid.UUID, 0),
		BackorderIDs:      make([]uuid.UUID, 0),
		LowStockAlerts:    make([]inventory.LowStockAlert, 0),
	}
}

// RecordFailure marks a step as degraded
func (o *SideEffectOutcome) RecordFailure(step string, err error) {
	o.Failures = append(o.Failures, SideEffectFailure{Step: step, Message: err.Error()})
}

// Degraded returns true if any side-effect step failed
func (o *SideEffectOutcome) Degraded() bool {
	return len(o.Failures) > 0
}
