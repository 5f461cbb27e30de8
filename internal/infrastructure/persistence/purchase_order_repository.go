package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/commercehub/backoffice/internal/domain/procurement"
	"github.com/commercehub/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// Save creates or updates a purchase order with its lines
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *procurement.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(order).Error; err != nil {
			return err
		}

		// Replace lines: delete removed ones, upsert the rest
		currentLineIDs := make([]uuid.UUID, len(order.Lines))
		for i := range order.Lines {
			currentLineIDs[i] = order.Lines[i].ID
		}
		if len(currentLineIDs) > 0 {
			if err := tx.Where("order_id = ? AND id NOT IN ?", order.ID, currentLineIDs).
				Delete(&procurement.PurchaseOrderLine{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("order_id = ?", order.ID).
				Delete(&procurement.PurchaseOrderLine{}).Error; err != nil {
				return err
			}
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

// SaveWithLock saves with optimistic locking (version check)
func (r *GormPurchaseOrderRepository) SaveWithLock(ctx context.Context, order *procurement.PurchaseOrder, expectedVersion int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&procurement.PurchaseOrder{}).
			Where("id = ? AND brand_id = ? AND version = ?", order.ID, order.BrandID, expectedVersion).
			Updates(r.updateColumns(order))

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&procurement.PurchaseOrder{}).
				Where("id = ? AND brand_id = ?", order.ID, order.BrandID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return shared.ErrNotFound
			}
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The order has been modified by another user")
		}

		return r.saveLines(tx, order)
	})
}

// FinalizeFromSubmitted persists an approval finalization guarded on the
// stored status still being submitted. Exactly one concurrent finalizer
// can win; the rest see zero affected rows and get a conflict.
func (r *GormPurchaseOrderRepository) FinalizeFromSubmitted(ctx context.Context, order *procurement.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&procurement.PurchaseOrder{}).
			Where("id = ? AND brand_id = ? AND status = ?", order.ID, order.BrandID, procurement.StatusSubmitted).
			Updates(map[string]interface{}{
				"status":                 order.Status,
				"fulfillment_percentage": order.FulfillmentPercentage,
				"approved_by":            order.ApprovedBy,
				"approved_at":            order.ApprovedAt,
				"version":                order.Version,
				"updated_at":             time.Now(),
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&procurement.PurchaseOrder{}).
				Where("id = ? AND brand_id = ?", order.ID, order.BrandID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return shared.ErrNotFound
			}
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The order was finalized by another user")
		}

		return r.saveLines(tx, order)
	})
}

// FindByID finds a purchase order with its lines within a brand
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, brandID, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	var order procurement.PurchaseOrder
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

// FindByPONumber finds a purchase order by its brand-unique number
func (r *GormPurchaseOrderRepository) FindByPONumber(ctx context.Context, brandID uuid.UUID, poNumber string) (*procurement.PurchaseOrder, error) {
	var order procurement.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("brand_id = ? AND po_number = ?", brandID, poNumber).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// List returns a filtered, paginated page of purchase orders
func (r *GormPurchaseOrderRepository) List(ctx context.Context, brandID uuid.UUID, filter shared.Filter) (*shared.Paginated[procurement.PurchaseOrder], error) {
	query := r.db.WithContext(ctx).Model(&procurement.PurchaseOrder{}).Where("brand_id = ?", brandID)

	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if distributorID, ok := filter.Filters["distributor_id"]; ok {
		query = query.Where("distributor_id = ?", distributorID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("po_number ILIKE ? OR supplier_name ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "created_at"
	}
	orderDir := filter.OrderDir
	if orderDir != "asc" {
		orderDir = "desc"
	}

	var orders []procurement.PurchaseOrder
	if err := query.
		Preload("Lines").
		Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&orders).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(orders, total, filter.Page, filter.PageSize)
	return &page, nil
}

// CountByStatus returns order counts grouped by status for a brand
func (r *GormPurchaseOrderRepository) CountByStatus(ctx context.Context, brandID uuid.UUID) (map[procurement.Status]int64, error) {
	var rows []struct {
		Status procurement.Status
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&procurement.PurchaseOrder{}).
		Select("status, count(*) as count").
		Where("brand_id = ?", brandID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[procurement.Status]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// ExistsByPONumber checks brand-scoped PO number uniqueness
func (r *GormPurchaseOrderRepository) ExistsByPONumber(ctx context.Context, brandID uuid.UUID, poNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&procurement.PurchaseOrder{}).
		Where("brand_id = ? AND po_number = ?", brandID, poNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete removes a draft order and its lines
func (r *GormPurchaseOrderRepository) Delete(ctx context.Context, brandID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("brand_id = ? AND id = ? AND status = ?", brandID, id, procurement.StatusDraft).
			Delete(&procurement.PurchaseOrder{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return tx.Where("order_id = ?", id).Delete(&procurement.PurchaseOrderLine{}).Error
	})
}

// updateColumns builds the column map for guarded order updates
func (r *GormPurchaseOrderRepository) updateColumns(order *procurement.PurchaseOrder) map[string]interface{} {
	return map[string]interface{}{
		"distributor_id":         order.DistributorID,
		"supplier_name":          order.SupplierName,
		"supplier_email":         order.SupplierEmail,
		"subtotal":               order.Subtotal,
		"tax_amount":             order.TaxAmount,
		"shipping_cost":          order.ShippingCost,
		"total_amount":           order.TotalAmount,
		"status":                 order.Status,
		"fulfillment_percentage": order.FulfillmentPercentage,
		"approved_by":            order.ApprovedBy,
		"approved_at":            order.ApprovedAt,
		"rejection_reason":       order.RejectionReason,
		"expected_delivery_date": order.ExpectedDeliveryDate,
		"submitted_at":           order.SubmittedAt,
		"cancelled_at":           order.CancelledAt,
		"notes":                  order.Notes,
		"version":                order.Version,
		"updated_at":             time.Now(),
	}
}

// saveLines upserts the order's current lines and removes orphans
func (r *GormPurchaseOrderRepository) saveLines(tx *gorm.DB, order *procurement.PurchaseOrder) error {
	currentLineIDs := make([]uuid.UUID, len(order.Lines))
	for i := range order.Lines {
		currentLineIDs[i] = order.Lines[i].ID
	}
	if len(currentLineIDs) > 0 {
		if err := tx.Where("order_id = ? AND id NOT IN ?", order.ID, currentLineIDs).
			Delete(&procurement.PurchaseOrderLine{}).Error; err != nil {
			return err
		}
	}
	for i := range order.Lines {
		order.Lines[i].OrderID = order.ID
		if err := tx.Save(&order.Lines[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
