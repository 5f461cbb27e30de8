package persistence

import (
	"context"

	"github.com/commercehub/backoffice/internal/domain/procurement"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormApprovalHistoryRepository implements ApprovalHistoryRepository using GORM
type GormApprovalHistoryRepository struct {
	db *gorm.DB
}

// NewGormApprovalHistoryRepository creates a new GormApprovalHistoryRepository
func NewGormApprovalHistoryRepository(db *gorm.DB) *GormApprovalHistoryRepository {
	return &GormApprovalHistoryRepository{db: db}
}

// Save appends an audit entry
func (r *GormApprovalHistoryRepository) Save(ctx context.Context, entry *procurement.ApprovalHistoryEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// Update persists post-hoc generated references on an entry
func (r *GormApprovalHistoryRepository) Update(ctx context.Context, entry *procurement.ApprovalHistoryEntry) error {
	return r.db.WithContext(ctx).
		Model(&procurement.ApprovalHistoryEntry{}).
		Where("id = ?", entry.ID).
		Updates(map[string]interface{}{
			"generated_order_ids": entry.GeneratedOrderIDs,
			"backorder_ids":       entry.BackorderIDs,
		}).Error
}

// FindByOrderID returns the audit trail for an order, oldest first
func (r *GormApprovalHistoryRepository) FindByOrderID(ctx context.Context, brandID, orderID uuid.UUID) ([]procurement.ApprovalHistoryEntry, error) {
	var entries []procurement.ApprovalHistoryEntry
	if err := r.db.WithContext(ctx).
		Where("brand_id = ? AND order_id = ?", brandID, orderID).
		Order("created_at asc").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
