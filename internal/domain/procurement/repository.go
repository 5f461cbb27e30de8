package procurement

import (
	"context"

	"github.com/commercehub/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// PurchaseOrderRepository defines persistence for purchase orders
type PurchaseOrderRepository interface {
	// Save persists the order and its lines
	Save(ctx context.Context, order *PurchaseOrder) error

	// SaveWithLock persists the order with optimistic lock checking.
	// Returns shared.ErrConcurrencyConflict when the stored version moved.
	SaveWithLock(ctx context.Context, order *PurchaseOrder, expectedVersion int) error

	// FinalizeFromSubmitted persists an approval finalization with a
	// conditional write that only succeeds while the stored status is
	// still submitted. A lost race returns shared.ErrConcurrencyConflict.
	FinalizeFromSubmitted(ctx context.Context, order *PurchaseOrder) error

	// FindByID loads an order with its lines
	FindByID(ctx context.Context, brandID, id uuid.UUID) (*PurchaseOrder, error)

	// FindByPONumber loads an order by its brand-unique number
	FindByPONumber(ctx context.Context, brandID uuid.UUID, poNumber string) (*PurchaseOrder, error)

	// List returns a filtered, paginated page of orders
	List(ctx context.Context, brandID uuid.UUID, filter shared.Filter) (*shared.Paginated[PurchaseOrder], error)

	// CountByStatus returns order counts grouped by status for a brand
	CountByStatus(ctx context.Context, brandID uuid.UUID) (map[Status]int64, error)

	// ExistsByPONumber checks brand-scoped PO number uniqueness
	ExistsByPONumber(ctx context.Context, brandID uuid.UUID, poNumber string) (bool, error)

	// Delete removes a draft order
	Delete(ctx context.Context, brandID, id uuid.UUID) error
}

// ApprovalHistoryRepository defines persistence for the audit trail
type ApprovalHistoryRepository interface {
	// Save appends an audit entry
	Save(ctx context.Context, entry *ApprovalHistoryEntry) error

	// Update persists post-hoc generated references on an entry
	Update(ctx context.Context, entry *ApprovalHistoryEntry) error

	// FindByOrderID returns the audit trail for an order, oldest first
	FindByOrderID(ctx context.Context, brandID, orderID uuid.UUID) ([]ApprovalHistoryEntry, error)
}

// BackorderRepository defines persistence for backorders
type BackorderRepository interface {
	// Save persists a backorder
	Save(ctx context.Context, backorder *Backorder) error

	// FindByID loads a backorder
	FindByID(ctx context.Context, brandID, id uuid.UUID) (*Backorder, error)

	// FindByOrderID returns backorders created for an order
	FindByOrderID(ctx context.Context, brandID, orderID uuid.UUID) ([]Backorder, error)

	// ListOpen returns a paginated page of open backorders for a brand
	ListOpen(ctx context.Context, brandID uuid.UUID, filter shared.Filter) (*shared.Paginated[Backorder], error)
}
