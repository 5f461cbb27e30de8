package inventory

import (
	"context"

	"github.com/commercehub/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// Product is a catalog entry carrying the distributor assignment used
// to route approved quantity into fulfillment orders
type Product struct {
	shared.BaseEntity
	BrandID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_product_brand_sku,priority:1"`
	SKU           string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_product_brand_sku,priority:2"`
	Name          string     `gorm:"type:varchar(200);not null"`
	DistributorID *uuid.UUID `gorm:"type:uuid;index"`
	Active        bool       `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// ProductRepository resolves catalog entries
type ProductRepository interface {
	// FindByID loads a product
	FindByID(ctx context.Context, brandID, id uuid.UUID) (*Product, error)

	// DistributorFor returns the distributor assigned to a product, or
	// nil when the brand fulfills it directly
	DistributorFor(ctx context.Context, brandID, productID uuid.UUID) (*uuid.UUID, error)
}
