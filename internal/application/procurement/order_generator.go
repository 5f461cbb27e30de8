package procurement

import (
	"context"
	"fmt"

	"github.com/commercehub/backoffice/internal/domain/fulfillment"
	"github.com/commercehub/backoffice/internal/domain/inventory"
	"github.com/commercehub/backoffice/internal/domain/procurement"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderGenerator turns an approved purchase order into per-distributor
// fulfillment orders, reserving stock line by line as it goes. Each
// distributor group is saved independently so one failing group never
// blocks the others.
type OrderGenerator struct {
	fulfillmentRepo fulfillment.Repository
	catalog         ProductCatalog
	allocator       StockAllocator
	logger          *zap.Logger
}

// NewOrderGenerator creates a new OrderGenerator
func NewOrderGenerator(fulfillmentRepo fulfillment.Repository, catalog ProductCatalog, allocator StockAllocator, logger *zap.Logger) *OrderGenerator {
	return &OrderGenerator{
		fulfillmentRepo: fulfillmentRepo,
		catalog:         catalog,
		allocator:       allocator,
		logger:          logger,
	}
}

// Generate reserves stock for each approved line, groups the reserved
// lines by fulfilling distributor and creates one fulfillment order per
// group. Lines whose reservation fails are skipped and reported, so a
// fulfillment order never ships quantity that was not reserved. Returns
// the IDs of the orders that were saved, low-stock alerts observed
// during allocation, and per-line or per-group failures for the
// caller's partial-result report.
func (g *OrderGenerator) Generate(ctx context.Context, order *procurement.PurchaseOrder) (created []uuid.UUID, alerts []inventory.LowStockAlert, failures []error) {
	lines := order.ApprovedLines()
	if len(lines) == 0 {
		return nil, nil, nil
	}

	// Group approved lines by fulfilling distributor. A nil key means
	// the brand fulfills directly.
	groups := make(map[uuid.UUID][]procurement.PurchaseOrderLine)
	direct := make([]procurement.PurchaseOrderLine, 0)
	for _, line := range lines {
		item, err := g.allocator.Allocate(ctx, order.BrandID, line.ProductID, line.ApprovedQty)
		if err != nil {
			g.logger.Warn("stock reservation failed, line excluded from fulfillment",
				zap.String("order_id", order.ID.String()),
				zap.String("sku", line.SKU),
				zap.Error(err))
			failures = append(failures, fmt.Errorf("reserve %s: %w", line.SKU, err))
			continue
		}
		if item.IsLowStock() {
			alerts = append(alerts, inventory.LowStockAlert{
				ProductID: item.ProductID,
				SKU:       item.SKU,
				Name:      item.ProductName,
				Remaining: item.Available(),
				Threshold: item.LowStockThreshold,
			})
		}

		distributorID, err := g.catalog.DistributorFor(ctx, order.BrandID, line.ProductID)
		if err != nil {
			g.logger.Warn("distributor resolution failed, using order default",
				zap.String("order_id", order.ID.String()),
				zap.String("product_id", line.ProductID.String()),
				zap.Error(err))
			distributorID = order.DistributorID
		}
		if distributorID == nil {
			distributorID = order.DistributorID
		}
		if distributorID == nil {
			direct = append(direct, line)
			continue
		}
		groups[*distributorID] = append(groups[*distributorID], line)
	}

	seq := 0
	build := func(distributorID *uuid.UUID, groupLines []procurement.PurchaseOrderLine) {
		seq++
		fo, err := fulfillment.NewOrder(order.BrandID, order.ID,
			fmt.Sprintf("%s-F%d", order.PONumber, seq), distributorID)
		if err != nil {
			failures = append(failures, err)
			return
		}
		for _, line := range groupLines {
			if err := fo.AddLine(line.ID, line.ProductID, line.SKU, line.ProductName, line.ApprovedQty, line.UnitPrice); err != nil {
				failures = append(failures, err)
				return
			}
		}
		if err := g.fulfillmentRepo.Save(ctx, fo); err != nil {
			g.logger.Error("fulfillment order save failed",
				zap.String("order_id", order.ID.String()),
				zap.String("order_number", fo.OrderNumber),
				zap.Error(err))
			failures = append(failures, err)
			return
		}
		created = append(created, fo.ID)
	}

	for distributorID, groupLines := range groups {
		id := distributorID
		build(&id, groupLines)
	}
	if len(direct) > 0 {
		build(nil, direct)
	}

	return created, alerts, failures
}
