package procurement

import (
	"context"

	"github.com/commercehub/backoffice/internal/domain/procurement"
	"github.com/commercehub/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BackorderManager creates backorder records for finalized lines that
// left unfulfilled quantity. Each line is handled independently.
type BackorderManager struct {
	backorderRepo procurement.BackorderRepository
	notifier      Notifier
	logger        *zap.Logger
}

// NewBackorderManager creates a new BackorderManager
func NewBackorderManager(backorderRepo procurement.BackorderRepository, notifier Notifier, logger *zap.Logger) *BackorderManager {
	return &BackorderManager{
		backorderRepo: backorderRepo,
		notifier:      notifier,
		logger:        logger,
	}
}

// CreateForOrder creates one backorder per line with outstanding
// backorder quantity, raising an alert for each record it saves.
// Alerting is best effort and never fails the record. Returns the IDs
// that were saved plus per-line failures for the caller's
// partial-result report.
func (m *BackorderManager) CreateForOrder(ctx context.Context, order *procurement.PurchaseOrder, createdBy uuid.UUID) (created []uuid.UUID, failures []error) {
	for _, line := range order.BackorderedLines() {
		backorder, err := procurement.NewBackorder(
			order.BrandID, order.ID, line.ID, line.ProductID,
			line.SKU, line.BackorderQty, order.ExpectedDeliveryDate, createdBy)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		if err := m.backorderRepo.Save(ctx, backorder); err != nil {
			m.logger.Error("backorder save failed",
				zap.String("order_id", order.ID.String()),
				zap.String("line_id", line.ID.String()),
				zap.Error(err))
			failures = append(failures, err)
			continue
		}
		created = append(created, backorder.ID)

		if err := m.notifier.NotifyBackorderCreated(ctx, order.BrandID, backorder.ID,
			order.PONumber, line.SKU, line.BackorderQty); err != nil {
			m.logger.Warn("backorder alert failed",
				zap.String("backorder_id", backorder.ID.String()),
				zap.String("sku", line.SKU),
				zap.Error(err))
		}
	}
	return created, failures
}

// ListOpen returns open backorders for a brand
func (m *BackorderManager) ListOpen(ctx context.Context, brandID uuid.UUID, page, pageSize int) ([]BackorderResponse, int64, error) {
	filter := sharedFilter(page, pageSize)
	result, err := m.backorderRepo.ListOpen(ctx, brandID, filter)
	if err != nil {
		return nil, 0, err
	}
	items := make([]BackorderResponse, 0, len(result.Items))
	for idx := range result.Items {
		items = append(items, ToBackorderResponse(&result.Items[idx]))
	}
	return items, result.Total, nil
}

// Resolve closes an open backorder after inventory replenishment
func (m *BackorderManager) Resolve(ctx context.Context, brandID, backorderID uuid.UUID) (*BackorderResponse, error) {
	backorder, err := m.backorderRepo.FindByID(ctx, brandID, backorderID)
	if err != nil {
		return nil, err
	}
	if err := backorder.Resolve(); err != nil {
		return nil, err
	}
	if err := m.backorderRepo.Save(ctx, backorder); err != nil {
		return nil, err
	}
	resp := ToBackorderResponse(backorder)
	return &resp, nil
}

// Cancel closes an open backorder without fulfillment
func (m *BackorderManager) Cancel(ctx context.Context, brandID, backorderID uuid.UUID, reason string) (*BackorderResponse, error) {
	backorder, err := m.backorderRepo.FindByID(ctx, brandID, backorderID)
	if err != nil {
		return nil, err
	}
	if err := backorder.CancelBackorder(reason); err != nil {
		return nil, err
	}
	if err := m.backorderRepo.Save(ctx, backorder); err != nil {
		return nil, err
	}
	resp := ToBackorderResponse(backorder)
	return &resp, nil
}

func sharedFilter(page, pageSize int) shared.Filter {
	f := shared.DefaultFilter()
	if page > 0 {
		f.Page = page
	}
	if pageSize > 0 {
		f.PageSize = pageSize
	}
	return f
}
