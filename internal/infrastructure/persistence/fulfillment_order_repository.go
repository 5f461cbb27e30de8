package persistence

import (
	"context"
	"errors"

	"github.com/commercehub/backoffice/internal/domain/fulfillment"
	"github.com/commercehub/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormFulfillmentOrderRepository implements fulfillment.Repository using GORM
type GormFulfillmentOrderRepository struct {
	db *gorm.DB
}

// NewGormFulfillmentOrderRepository creates a new GormFulfillmentOrderRepository
func NewGormFulfillmentOrderRepository(db *gorm.DB) *GormFulfillmentOrderRepository {
	return &GormFulfillmentOrderRepository{db: db}
}

// Save persists the order and its lines
func (r *GormFulfillmentOrderRepository) Save(ctx context.Context, order *fulfillment.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(order).Error; err != nil {
			return err
		}
		for i := range order.Lines {
			order.Lines[i].OrderID = order.ID
			if err := tx.Save(&order.Lines[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID loads an order with its lines
func (r *GormFulfillmentOrderRepository) FindByID(ctx context.Context, brandID, id uuid.UUID) (*fulfillment.Order, error) {
	var order fulfillment.Order
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("brand_id = ? AND id = ?", brandID, id).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByPurchaseOrderID returns orders generated from a purchase order
func (r *GormFulfillmentOrderRepository) FindByPurchaseOrderID(ctx context.Context, brandID, purchaseOrderID uuid.UUID) ([]fulfillment.Order, error) {
	var orders []fulfillment.Order
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("brand_id = ? AND purchase_order_id = ?", brandID, purchaseOrderID).
		Order("created_at asc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// List returns a filtered, paginated page of orders
func (r *GormFulfillmentOrderRepository) List(ctx context.Context, brandID uuid.UUID, filter shared.Filter) (*shared.Paginated[fulfillment.Order], error) {
	query := r.db.WithContext(ctx).
		Model(&fulfillment.Order{}).
		Where("brand_id = ?", brandID)

	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var orders []fulfillment.Order
	if err := query.
		Preload("Lines").
		Order("created_at desc").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&orders).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(orders, total, filter.Page, filter.PageSize)
	return &page, nil
}
