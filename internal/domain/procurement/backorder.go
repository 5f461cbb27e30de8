package procurement

import (
	"time"

	"github.com/commercehub/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BackorderStatus represents the lifecycle status of a backorder
type BackorderStatus string

const (
	BackorderStatusOpen      BackorderStatus = "open"
	BackorderStatusResolved  BackorderStatus = "resolved"
	BackorderStatusCancelled BackorderStatus = "cancelled"
)

// IsValid checks if the status is a valid BackorderStatus
func (s BackorderStatus) IsValid() bool {
	switch s {
	case BackorderStatusOpen, BackorderStatusResolved, BackorderStatusCancelled:
		return true
	}
	return false
}

// Backorder tracks quantity that could not be approved due to a stock
// shortfall. Created once per finalized under-fulfilled line; resolved or
// cancelled later by inventory replenishment.
type Backorder struct {
	shared.BrandAggregateRoot
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null"`
	SKU          string          `gorm:"type:varchar(50);not null;index"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ExpectedDate *time.Time
	Status       BackorderStatus `gorm:"type:varchar(20);not null;default:'open'"`
	ResolvedAt   *time.Time
	Notes        string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Backorder) TableName() string {
	return "backorders"
}

// NewBackorder creates a new open backorder for an under-fulfilled line
func NewBackorder(brandID, orderID, lineID, productID uuid.UUID, sku string, quantity decimal.Decimal, expectedDate *time.Time, createdBy uuid.UUID) (*Backorder, error) {
	if orderID == uuid.Nil || lineID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Backorder requires an order and line reference")
	}
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Backorder quantity must be positive")
	}

	b := &Backorder{
		BrandAggregateRoot: shared.NewBrandAggregateRoot(brandID),
		OrderID:            orderID,
		LineID:             lineID,
		ProductID:          productID,
		SKU:                sku,
		Quantity:           quantity,
		ExpectedDate:       expectedDate,
		Status:             BackorderStatusOpen,
	}
	b.SetCreatedBy(createdBy)
	b.AddDomainEvent(NewBackorderCreatedEvent(b))

	return b, nil
}

// Resolve marks the backorder as fulfilled by replenishment
func (b *Backorder) Resolve() error {
	if b.Status != BackorderStatusOpen {
		return shared.NewDomainError("INVALID_STATE", "Only open backorders can be resolved")
	}
	now := time.Now()
	b.Status = BackorderStatusResolved
	b.ResolvedAt = &now
	b.UpdatedAt = now
	b.IncrementVersion()
	return nil
}

// CancelBackorder closes the backorder without fulfillment
func (b *Backorder) CancelBackorder(reason string) error {
	if b.Status != BackorderStatusOpen {
		return shared.NewDomainError("INVALID_STATE", "Only open backorders can be cancelled")
	}
	b.Status = BackorderStatusCancelled
	b.Notes = reason
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// IsOpen returns true while the backorder awaits replenishment
func (b *Backorder) IsOpen() bool {
	return b.Status == BackorderStatusOpen
}
