package persistence

import (
	"context"
	"errors"

	"github.com/commercehub/backoffice/internal/domain/procurement"
	"github.com/commercehub/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBackorderRepository implements BackorderRepository using GORM
type GormBackorderRepository struct {
	db *gorm.DB
}

// NewGormBackorderRepository creates a new GormBackorderRepository
func NewGormBackorderRepository(db *gorm.DB) *GormBackorderRepository {
	return &GormBackorderRepository{db: db}
}

// Save persists a backorder
func (r *GormBackorderRepository) Save(ctx context.Context, backorder *procurement.Backorder) error {
	return r.db.WithContext(ctx).Save(backorder).Error
}

// FindByID loads a backorder
func (r *GormBackorderRepository) FindByID(ctx context.Context, brandID, id uuid.UUID) (*procurement.Backorder, error) {
	var backorder procurement.Backorder
	if err := r.db.WithContext(ctx).
		Where("brand_id = ? AND id = ?", brandID, id).
		First(&backorder).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &backorder, nil
}

// FindByOrderID returns backorders created for an order
func (r *GormBackorderRepository) FindByOrderID(ctx context.Context, brandID, orderID uuid.UUID) ([]procurement.Backorder, error) {
	var backorders []procurement.Backorder
	if err := r.db.WithContext(ctx).
		Where("brand_id = ? AND order_id = ?", brandID, orderID).
		Order("created_at asc").
		Find(&backorders).Error; err != nil {
		return nil, err
	}
	return backorders, nil
}

// ListOpen returns a paginated page of open backorders for a brand
func (r *GormBackorderRepository) ListOpen(ctx context.Context, brandID uuid.UUID, filter shared.Filter) (*shared.Paginated[procurement.Backorder], error) {
	query := r.db.WithContext(ctx).
		Model(&procurement.Backorder{}).
		Where("brand_id = ? AND status = ?", brandID, procurement.BackorderStatusOpen)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var backorders []procurement.Backorder
	if err := query.
		Order("created_at desc").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&backorders).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(backorders, total, filter.Page, filter.PageSize)
	return &page, nil
}
