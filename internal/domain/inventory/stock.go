package inventory

import (
	"context"
	"time"

	"github.com/commercehub/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockItem tracks on-hand quantity per brand and SKU
type StockItem struct {
	shared.BrandAggregateRoot
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_brand_product,priority:2"`
	SKU               string          `gorm:"type:varchar(50);not null;index"`
	ProductName       string          `gorm:"type:varchar(200);not null"`
	Quantity          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReservedQuantity  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LowStockThreshold decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (StockItem) TableName() string {
	return "stock_items"
}

// NewStockItem creates a stock record for a product
func NewStockItem(brandID, productID uuid.UUID, sku, productName string, quantity, lowStockThreshold decimal.Decimal) (*StockItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Stock quantity cannot be negative")
	}

	return &StockItem{
		BrandAggregateRoot: shared.NewBrandAggregateRoot(brandID),
		ProductID:          productID,
		SKU:                sku,
		ProductName:        productName,
		Quantity:           quantity,
		LowStockThreshold:  lowStockThreshold,
	}, nil
}

// Available returns the quantity not yet reserved
func (s *StockItem) Available() decimal.Decimal {
	return s.Quantity.Sub(s.ReservedQuantity)
}

// IsLowStock returns true once available stock falls to the threshold
func (s *StockItem) IsLowStock() bool {
	return s.Available().LessThanOrEqual(s.LowStockThreshold)
}

// Allocate reserves quantity for fulfillment
func (s *StockItem) Allocate(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Allocation quantity must be positive")
	}
	if quantity.GreaterThan(s.Available()) {
		return shared.ErrInsufficientStock
	}
	s.ReservedQuantity = s.ReservedQuantity.Add(quantity)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// Release returns reserved quantity to the available pool
func (s *StockItem) Release(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Release quantity must be positive")
	}
	if quantity.GreaterThan(s.ReservedQuantity) {
		return shared.NewDomainError("INVALID_QUANTITY", "Cannot release more than reserved")
	}
	s.ReservedQuantity = s.ReservedQuantity.Sub(quantity)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// LowStockAlert is raised for a SKU whose post-allocation stock fell to
// the configured threshold
type LowStockAlert struct {
	ProductID uuid.UUID       `json:"product_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Remaining decimal.Decimal `json:"remaining"`
	Threshold decimal.Decimal `json:"threshold"`
}

// StockRepository defines persistence for stock items
type StockRepository interface {
	// Save persists a stock item
	Save(ctx context.Context, item *StockItem) error

	// FindByProductID loads the stock record for a product
	FindByProductID(ctx context.Context, brandID, productID uuid.UUID) (*StockItem, error)

	// FindBySKUs loads stock records for a set of SKUs
	FindBySKUs(ctx context.Context, brandID uuid.UUID, skus []string) ([]StockItem, error)

	// AllocateAtomic reserves quantity with a conditional write that only
	// succeeds while sufficient unreserved stock remains. Returns
	// shared.ErrInsufficientStock when the guard fails.
	AllocateAtomic(ctx context.Context, brandID, productID uuid.UUID, quantity decimal.Decimal) (*StockItem, error)

	// ListLowStock returns items at or below their low-stock threshold
	ListLowStock(ctx context.Context, brandID uuid.UUID) ([]StockItem, error)
}
