package persistence

import (
	"context"
	"errors"

	"github.com/commercehub/backoffice/internal/domain/inventory"
	"github.com/commercehub/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID loads a product
func (r *GormProductRepository) FindByID(ctx context.Context, brandID, id uuid.UUID) (*inventory.Product, error) {
	var product inventory.Product
	if err := r.db.WithContext(ctx).
		Where("brand_id = ? AND id = ?", brandID, id).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// DistributorFor returns the distributor assigned to a product
func (r *GormProductRepository) DistributorFor(ctx context.Context, brandID, productID uuid.UUID) (*uuid.UUID, error) {
	product, err := r.FindByID(ctx, brandID, productID)
	if err != nil {
		return nil, err
	}
	return product.DistributorID, nil
}
