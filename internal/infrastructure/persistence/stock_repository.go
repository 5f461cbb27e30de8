package persistence

import (
	"context"
	"errors"

	"github.com/commercehub/backoffice/internal/domain/inventory"
	"github.com/commercehub/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormStockRepository implements StockRepository using GORM. It also
// serves as the workflow's stock allocator.
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// Save persists a stock item
func (r *GormStockRepository) Save(ctx context.Context, item *inventory.StockItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// FindByProductID loads the stock record for a product
func (r *GormStockRepository) FindByProductID(ctx context.Context, brandID, productID uuid.UUID) (*inventory.StockItem, error) {
	var item inventory.StockItem
	if err := r.db.WithContext(ctx).
		Where("brand_id = ? AND product_id = ?", brandID, productID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindBySKUs loads stock records for a set of SKUs
func (r *GormStockRepository) FindBySKUs(ctx context.Context, brandID uuid.UUID, skus []string) ([]inventory.StockItem, error) {
	if len(skus) == 0 {
		return nil, nil
	}
	var items []inventory.StockItem
	if err := r.db.WithContext(ctx).
		Where("brand_id = ? AND sku IN ?", brandID, skus).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// AllocateAtomic reserves quantity with a single guarded UPDATE. The
// guard only passes while enough unreserved stock remains, so two
// racing allocations can never oversell.
func (r *GormStockRepository) AllocateAtomic(ctx context.Context, brandID, productID uuid.UUID, quantity decimal.Decimal) (*inventory.StockItem, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Allocation quantity must be positive")
	}

	result := r.db.WithContext(ctx).
		Model(&inventory.StockItem{}).
		Where("brand_id = ? AND product_id = ? AND quantity - reserved_quantity >= ?", brandID, productID, quantity).
		Updates(map[string]interface{}{
			"reserved_quantity": gorm.Expr("reserved_quantity + ?", quantity),
			"version":           gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByProductID(ctx, brandID, productID); err != nil {
			return nil, err
		}
		return nil, shared.ErrInsufficientStock
	}

	return r.FindByProductID(ctx, brandID, productID)
}

// Allocate satisfies the workflow allocator contract
func (r *GormStockRepository) Allocate(ctx context.Context, brandID, productID uuid.UUID, quantity decimal.Decimal) (*inventory.StockItem, error) {
	return r.AllocateAtomic(ctx, brandID, productID, quantity)
}

// SnapshotBySKUs returns current available stock keyed by SKU
func (r *GormStockRepository) SnapshotBySKUs(ctx context.Context, brandID uuid.UUID, skus []string) (map[string]decimal.Decimal, error) {
	items, err := r.FindBySKUs(ctx, brandID, skus)
	if err != nil {
		return nil, err
	}
	snapshot := make(map[string]decimal.Decimal, len(items))
	for i := range items {
		snapshot[items[i].SKU] = items[i].Available()
	}
	return snapshot, nil
}

// ListLowStock returns items at or below their low-stock threshold
func (r *GormStockRepository) ListLowStock(ctx context.Context, brandID uuid.UUID) ([]inventory.StockItem, error) {
	var items []inventory.StockItem
	if err := r.db.WithContext(ctx).
		Where("brand_id = ? AND quantity - reserved_quantity <= low_stock_threshold", brandID).
		Order("sku asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
