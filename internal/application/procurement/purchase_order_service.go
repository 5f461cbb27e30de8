package procurement

import (
	"context"
	"fmt"
	"time"

	appidentity "github.com/commercehub/backoffice/internal/application/identity"
	"github.com/commercehub/backoffice/internal/domain/identity"
	"github.com/commercehub/backoffice/internal/domain/procurement"
	"github.com/commercehub/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PurchaseOrderService handles purchase order lifecycle operations
// outside the approval saga: creation, submission, rejection,
// cancellation, duplication and read models.
type PurchaseOrderService struct {
	orderRepo   procurement.PurchaseOrderRepository
	historyRepo procurement.ApprovalHistoryRepository
	directory   ProfileDirectory
	permissions *appidentity.PermissionEvaluator
	allocator   StockAllocator
	notifier    Notifier
	logger      *zap.Logger
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(
	orderRepo procurement.PurchaseOrderRepository,
	historyRepo procurement.ApprovalHistoryRepository,
	directory ProfileDirectory,
	permissions *appidentity.PermissionEvaluator,
	allocator StockAllocator,
	notifier Notifier,
	logger *zap.Logger,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		orderRepo:   orderRepo,
		historyRepo: historyRepo,
		directory:   directory,
		permissions: permissions,
		allocator:   allocator,
		notifier:    notifier,
		logger:      logger,
	}
}

// Create creates a new draft purchase order with its requested lines
func (s *PurchaseOrderService) Create(ctx context.Context, brandID, actorID uuid.UUID, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	poNumber := req.PONumber
	if poNumber == "" {
		poNumber = generatePONumber()
	}

	exists, err := s.orderRepo.ExistsByPONumber(ctx, brandID, poNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("DUPLICATE_PO_NUMBER",
			fmt.Sprintf("PO number %s already exists for this brand", poNumber))
	}

	order, err := procurement.NewPurchaseOrder(brandID, poNumber, req.SupplierName, actorID)
	if err != nil {
		return nil, err
	}
	order.SetCreatedBy(actorID)
	order.SupplierEmail = req.SupplierEmail
	order.Notes = req.Notes

	if req.DistributorID != nil {
		if err := order.SetDistributor(*req.DistributorID); err != nil {
			return nil, err
		}
	}
	if req.ExpectedDeliveryDate != nil {
		order.SetExpectedDeliveryDate(*req.ExpectedDeliveryDate)
	}

	// Snapshot available stock so decision-time checks see what the
	// requester saw
	skus := make([]string, 0, len(req.Lines))
	for _, line := range req.Lines {
		skus = append(skus, line.SKU)
	}
	snapshot, err := s.allocator.SnapshotBySKUs(ctx, brandID, skus)
	if err != nil {
		return nil, err
	}

	for _, line := range req.Lines {
		if _, err := order.AddLine(line.ProductID, line.SKU, line.ProductName, line.RequestedQty, line.UnitPrice, lookupStock(snapshot, line.SKU)); err != nil {
			return nil, err
		}
	}

	if err := order.SetCharges(req.TaxAmount, req.ShippingCost); err != nil {
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	resp := ToPurchaseOrderResponse(order)
	return &resp, nil
}

// Submit moves a draft order into the approval workflow
func (s *PurchaseOrderService) Submit(ctx context.Context, brandID, actorID, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, brandID, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.Submit(); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order, order.Version-1); err != nil {
		return nil, err
	}

	s.recordHistory(ctx, order, actorID, procurement.HistoryActionSubmitted, "")

	resp := ToPurchaseOrderResponse(order)
	return &resp, nil
}

// GetByID retrieves a purchase order by ID
func (s *PurchaseOrderService) GetByID(ctx context.Context, brandID, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, brandID, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseOrderResponse(order)
	return &resp, nil
}

// List retrieves a filtered, paginated page of purchase orders
func (s *PurchaseOrderService) List(ctx context.Context, brandID uuid.UUID, filter ListFilter) ([]PurchaseOrderResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search
	if filter.Status != "" {
		status := procurement.Status(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS",
				fmt.Sprintf("Unknown status %s", filter.Status))
		}
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.DistributorID != nil {
		domainFilter.Filters["distributor_id"] = *filter.DistributorID
	}

	page, err := s.orderRepo.List(ctx, brandID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	items := make([]PurchaseOrderResponse, 0, len(page.Items))
	for idx := range page.Items {
		items = append(items, ToPurchaseOrderResponse(&page.Items[idx]))
	}
	return items, page.Total, nil
}

// Reject rejects a submitted order with a mandatory reason
func (s *PurchaseOrderService) Reject(ctx context.Context, brandID, actorID, orderID uuid.UUID, req RejectRequest) (*PurchaseOrderResponse, error) {
	order, actor, err := s.loadForApproval(ctx, brandID, actorID, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.Reject(actorID, req.Comments); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order, order.Version-1); err != nil {
		return nil, err
	}

	entry := procurement.NewApprovalHistoryEntry(order.BrandID, order.ID, actorID, actor.Username, procurement.HistoryActionRejected, req.Comments)
	s.saveHistory(ctx, entry)

	// Rejection notice is best effort
	if err := s.notifier.NotifyRejection(ctx, order.RequestedBy, order.PONumber, req.Comments); err != nil {
		s.logger.Warn("rejection notice failed",
			zap.String("order_id", order.ID.String()), zap.Error(err))
	}

	resp := ToPurchaseOrderResponse(order)
	return &resp, nil
}

// Cancel cancels an active order with a mandatory reason
func (s *PurchaseOrderService) Cancel(ctx context.Context, brandID, actorID, orderID uuid.UUID, req CancelRequest) (*PurchaseOrderResponse, error) {
	order, actor, err := s.loadForApproval(ctx, brandID, actorID, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.Cancel(req.Reason); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order, order.Version-1); err != nil {
		return nil, err
	}

	entry := procurement.NewApprovalHistoryEntry(order.BrandID, order.ID, actorID, actor.Username, procurement.HistoryActionCancelled, req.Reason)
	s.saveHistory(ctx, entry)

	resp := ToPurchaseOrderResponse(order)
	return &resp, nil
}

// CancelLine cancels a single line. Cancelling the last active line
// cascades to the parent order with a system-supplied reason.
func (s *PurchaseOrderService) CancelLine(ctx context.Context, brandID, actorID, orderID, lineID uuid.UUID, req CancelRequest) (*CancelLineResponse, error) {
	order, actor, err := s.loadForApproval(ctx, brandID, actorID, orderID)
	if err != nil {
		return nil, err
	}

	cascaded, err := order.CancelLine(lineID, req.Reason)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order, order.Version-1); err != nil {
		return nil, err
	}

	entry := procurement.NewApprovalHistoryEntry(order.BrandID, order.ID, actorID, actor.Username, procurement.HistoryActionLineCancelled, req.Reason).
		WithAffectedLines([]uuid.UUID{lineID}, false)
	s.saveHistory(ctx, entry)
	if cascaded {
		cascade := procurement.NewApprovalHistoryEntry(order.BrandID, order.ID, actorID, actor.Username, procurement.HistoryActionCancelled, procurement.SystemCancelReason)
		s.saveHistory(ctx, cascade)
	}

	return &CancelLineResponse{Order: ToPurchaseOrderResponse(order), Cascaded: cascaded}, nil
}

// Duplicate clones an order into a new draft with fresh stock snapshots
func (s *PurchaseOrderService) Duplicate(ctx context.Context, brandID, actorID, orderID uuid.UUID, req DuplicateRequest) (*PurchaseOrderResponse, error) {
	source, err := s.orderRepo.FindByID(ctx, brandID, orderID)
	if err != nil {
		return nil, err
	}

	poNumber := req.PONumber
	if poNumber == "" {
		poNumber = generatePONumber()
	}
	exists, err := s.orderRepo.ExistsByPONumber(ctx, brandID, poNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("DUPLICATE_PO_NUMBER",
			fmt.Sprintf("PO number %s already exists for this brand", poNumber))
	}

	skus := make([]string, 0, len(source.Lines))
	for idx := range source.Lines {
		skus = append(skus, source.Lines[idx].SKU)
	}
	snapshot, err := s.allocator.SnapshotBySKUs(ctx, brandID, skus)
	if err != nil {
		return nil, err
	}

	clone, err := source.Duplicate(poNumber, actorID, snapshot)
	if err != nil {
		return nil, err
	}
	clone.SetCreatedBy(actorID)

	if err := s.orderRepo.Save(ctx, clone); err != nil {
		return nil, err
	}

	s.recordHistory(ctx, clone, actorID, procurement.HistoryActionDuplicated,
		fmt.Sprintf("Duplicated from %s", source.PONumber))

	resp := ToPurchaseOrderResponse(clone)
	return &resp, nil
}

// GetHistory returns the audit trail for an order, oldest first
func (s *PurchaseOrderService) GetHistory(ctx context.Context, brandID, orderID uuid.UUID) ([]HistoryEntryResponse, error) {
	if _, err := s.orderRepo.FindByID(ctx, brandID, orderID); err != nil {
		return nil, err
	}
	entries, err := s.historyRepo.FindByOrderID(ctx, brandID, orderID)
	if err != nil {
		return nil, err
	}
	items := make([]HistoryEntryResponse, 0, len(entries))
	for idx := range entries {
		items = append(items, ToHistoryEntryResponse(&entries[idx]))
	}
	return items, nil
}

// GetStatusSummary returns order counts per workflow status for a brand
func (s *PurchaseOrderService) GetStatusSummary(ctx context.Context, brandID uuid.UUID) (*StatusSummaryResponse, error) {
	counts, err := s.orderRepo.CountByStatus(ctx, brandID)
	if err != nil {
		return nil, err
	}
	resp := &StatusSummaryResponse{Counts: make(map[string]int64, len(counts))}
	for status, count := range counts {
		resp.Counts[status.String()] = count
		resp.Total += count
	}
	return resp, nil
}

// loadForApproval loads the order and the actor, and checks approval
// permission against the actor's scope
func (s *PurchaseOrderService) loadForApproval(ctx context.Context, brandID, actorID, orderID uuid.UUID) (*procurement.PurchaseOrder, *identity.Actor, error) {
	order, err := s.orderRepo.FindByID(ctx, brandID, orderID)
	if err != nil {
		return nil, nil, err
	}
	actor, err := s.directory.Resolve(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.permissions.CanApprove(actor, order); err != nil {
		return nil, nil, err
	}
	return order, actor, nil
}

func (s *PurchaseOrderService) recordHistory(ctx context.Context, order *procurement.PurchaseOrder, actorID uuid.UUID, action procurement.HistoryAction, comments string) {
	actorName := ""
	if actor, err := s.directory.Resolve(ctx, actorID); err == nil {
		actorName = actor.Username
	}
	entry := procurement.NewApprovalHistoryEntry(order.BrandID, order.ID, actorID, actorName, action, comments)
	s.saveHistory(ctx, entry)
}

// saveHistory writes an audit entry. Audit persistence never fails the
// operation that produced it, but a dropped entry is worth an error log.
func (s *PurchaseOrderService) saveHistory(ctx context.Context, entry *procurement.ApprovalHistoryEntry) {
	if err := s.historyRepo.Save(ctx, entry); err != nil {
		s.logger.Error("audit entry save failed",
			zap.String("order_id", entry.OrderID.String()),
			zap.String("action", string(entry.Action)),
			zap.Error(err))
	}
}

// lookupStock pulls a SKU's snapshot out of the allocator result.
// Unknown SKUs leave the snapshot unset so decisions skip the stock check.
func lookupStock(snapshot map[string]decimal.Decimal, sku string) *decimal.Decimal {
	if stock, ok := snapshot[sku]; ok {
		s := stock
		return &s
	}
	return nil
}

// generatePONumber builds a time-based brand-unique PO number
func generatePONumber() string {
	return fmt.Sprintf("PO-%s-%s", time.Now().Format("20060102"), uuid.New().String()[:8])
}
