package fulfillment

import (
	"context"
	"fmt"
	"time"

	"github.com/commercehub/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle status of a fulfillment order
type Status string

const (
	StatusPending   Status = "pending"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// OrderLine is a line on a fulfillment order, carrying the approved
// quantity from the originating purchase order line
type OrderLine struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	SourceLineID uuid.UUID       `gorm:"type:uuid;not null"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null"`
	SKU          string          `gorm:"type:varchar(50);not null"`
	ProductName  string          `gorm:"type:varchar(200);not null"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt    time.Time
}

// TableName returns the table name for GORM
func (OrderLine) TableName() string {
	return "fulfillment_order_lines"
}

// Order is a per-distributor fulfillment order generated from an
// approved purchase order
type Order struct {
	shared.BrandAggregateRoot
	OrderNumber     string      `gorm:"type:varchar(50);not null;uniqueIndex:idx_fulfillment_brand_number,priority:2"`
	PurchaseOrderID uuid.UUID   `gorm:"type:uuid;not null;index"`
	DistributorID   *uuid.UUID  `gorm:"type:uuid;index"`
	Lines           []OrderLine `gorm:"foreignKey:OrderID;references:ID"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status          Status          `gorm:"type:varchar(20);not null;default:'pending'"`
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "fulfillment_orders"
}

// NewOrder creates a pending fulfillment order for a distributor
func NewOrder(brandID, purchaseOrderID uuid.UUID, orderNumber string, distributorID *uuid.UUID) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if purchaseOrderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Purchase order reference is required")
	}

	return &Order{
		BrandAggregateRoot: shared.NewBrandAggregateRoot(brandID),
		OrderNumber:        orderNumber,
		PurchaseOrderID:    purchaseOrderID,
		DistributorID:      distributorID,
		Lines:              make([]OrderLine, 0),
		TotalAmount:        decimal.Zero,
		Status:             StatusPending,
	}, nil
}

// AddLine adds an approved quantity from a purchase order line
func (o *Order) AddLine(sourceLineID, productID uuid.UUID, sku, productName string, quantity, unitPrice decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Fulfillment quantity must be positive")
	}

	line := OrderLine{
		ID:           uuid.New(),
		OrderID:      o.ID,
		SourceLineID: sourceLineID,
		ProductID:    productID,
		SKU:          sku,
		ProductName:  productName,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		Amount:       quantity.Mul(unitPrice),
		CreatedAt:    time.Now(),
	}
	o.Lines = append(o.Lines, line)
	o.TotalAmount = o.TotalAmount.Add(line.Amount)
	o.UpdatedAt = time.Now()

	return nil
}

// MarkShipped transitions the order to shipped
func (o *Order) MarkShipped() error {
	if o.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot ship order in %s status", o.Status))
	}
	now := time.Now()
	o.Status = StatusShipped
	o.ShippedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()
	return nil
}

// MarkDelivered transitions the order to delivered
func (o *Order) MarkDelivered() error {
	if o.Status != StatusShipped {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot deliver order in %s status", o.Status))
	}
	now := time.Now()
	o.Status = StatusDelivered
	o.DeliveredAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()
	return nil
}

// Repository defines persistence for fulfillment orders
type Repository interface {
	// Save persists the order and its lines
	Save(ctx context.Context, order *Order) error

	// FindByID loads an order with its lines
	FindByID(ctx context.Context, brandID, id uuid.UUID) (*Order, error)

	// FindByPurchaseOrderID returns orders generated from a purchase order
	FindByPurchaseOrderID(ctx context.Context, brandID, purchaseOrderID uuid.UUID) ([]Order, error)

	// List returns a filtered, paginated page of orders
	List(ctx context.Context, brandID uuid.UUID, filter shared.Filter) (*shared.Paginated[Order], error)
}
