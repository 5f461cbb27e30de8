package procurement

import (
	"context"
	"time"

	"github.com/commercehub/backoffice/internal/domain/identity"
	"github.com/commercehub/backoffice/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Notice priorities. Partial fulfillment escalates to high so the
// requester reviews what was cut.
const (
	NoticePriorityNormal = "normal"
	NoticePriorityHigh   = "high"
)

// ApprovalNotice is the completion notification payload: a rendered
// title/message pair plus routing fields for the recipient's inbox.
type ApprovalNotice struct {
	RequesterID           uuid.UUID       `json:"requester_id"`
	PONumber              string          `json:"po_number"`
	Status                string          `json:"status"`
	FulfillmentPercentage decimal.Decimal `json:"fulfillment_percentage"`
	Title                 string          `json:"title"`
	Message               string          `json:"message"`
	Priority              string          `json:"priority"`
	ActionURL             string          `json:"action_url"`
}

// Notifier delivers workflow notifications to interested actors.
// Failures never abort the workflow; the caller records them as
// degraded side effects.
type Notifier interface {
	// NotifyApprovalComplete tells the requester their order was finalized
	NotifyApprovalComplete(ctx context.Context, notice ApprovalNotice) error

	// NotifyRejection tells the requester their order was rejected
	NotifyRejection(ctx context.Context, requesterID uuid.UUID, poNumber, reason string) error

	// NotifyLowStock alerts procurement staff about SKUs below threshold
	NotifyLowStock(ctx context.Context, brandID uuid.UUID, alerts []inventory.LowStockAlert) error

	// NotifyBackorderCreated alerts procurement staff that a backorder
	// was opened for an under-fulfilled line
	NotifyBackorderCreated(ctx context.Context, brandID, backorderID uuid.UUID, poNumber, sku string, quantity decimal.Decimal) error
}

// CalendarScheduler books delivery reminders for approved orders
type CalendarScheduler interface {
	// ScheduleDeliveryReminder creates a reminder ahead of the expected
	// delivery date
	ScheduleDeliveryReminder(ctx context.Context, brandID uuid.UUID, poNumber string, expectedDelivery time.Time) error
}

// StockAllocator reserves approved quantities against brand inventory
type StockAllocator interface {
	// Allocate reserves the quantity for a product, returning the item's
	// post-allocation state for low-stock evaluation
	Allocate(ctx context.Context, brandID, productID uuid.UUID, quantity decimal.Decimal) (*inventory.StockItem, error)

	// SnapshotBySKUs returns current available stock keyed by SKU
	SnapshotBySKUs(ctx context.Context, brandID uuid.UUID, skus []string) (map[string]decimal.Decimal, error)
}

// ProductCatalog resolves which distributor fulfills a product.
// Products with no assigned distributor fall back to the order's
// distributor, or to direct brand fulfillment.
type ProductCatalog interface {
	DistributorFor(ctx context.Context, brandID, productID uuid.UUID) (*uuid.UUID, error)
}

// ProfileDirectory resolves actor profiles for permission checks and
// audit attribution
type ProfileDirectory interface {
	Resolve(ctx context.Context, actorID uuid.UUID) (*identity.Actor, error)
}
