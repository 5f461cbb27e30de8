package procurement

import (
	"context"
	"fmt"

	appidentity "github.com/commercehub/backoffice/internal/application/identity"
	"github.com/commercehub/backoffice/internal/domain/identity"
	"github.com/commercehub/backoffice/internal/domain/procurement"
	"github.com/commercehub/backoffice/internal/domain/shared"
	"github.com/commercehub/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ApprovalService orchestrates the approval workflow: bulk line
// decisions and the completion saga that finalizes an order and fans
// out its side effects.
type ApprovalService struct {
	orderRepo        procurement.PurchaseOrderRepository
	historyRepo      procurement.ApprovalHistoryRepository
	directory        ProfileDirectory
	permissions      *appidentity.PermissionEvaluator
	orderGenerator   *OrderGenerator
	backorderManager *BackorderManager
	notifier         Notifier
	calendar         CalendarScheduler
	logger           *zap.Logger
}

// NewApprovalService creates a new ApprovalService
func NewApprovalService(
	orderRepo procurement.PurchaseOrderRepository,
	historyRepo procurement.ApprovalHistoryRepository,
	directory ProfileDirectory,
	permissions *appidentity.PermissionEvaluator,
	orderGenerator *OrderGenerator,
	backorderManager *BackorderManager,
	notifier Notifier,
	calendar CalendarScheduler,
	logger *zap.Logger,
) *ApprovalService {
	return &ApprovalService{
		orderRepo:        orderRepo,
		historyRepo:      historyRepo,
		directory:        directory,
		permissions:      permissions,
		orderGenerator:   orderGenerator,
		backorderManager: backorderManager,
		notifier:         notifier,
		calendar:         calendar,
		logger:           logger,
	}
}

// BulkApproveLines validates and applies a batch of line decisions to a
// submitted order. Each decision is validated independently; valid ones
// are applied and invalid ones are reported per line, so a mixed batch
// partially succeeds. The order status itself never changes here.
func (s *ApprovalService) BulkApproveLines(ctx context.Context, brandID, actorID, orderID uuid.UUID, req BulkApproveRequest) (*BulkApproveResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "approval", "bulk_approve_lines",
		attribute.String("order_id", orderID.String()),
		attribute.Int("decision_count", len(req.Decisions)))
	defer span.End()

	if len(req.Decisions) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "At least one line decision is required")
	}

	order, actor, err := s.load(ctx, brandID, actorID, orderID)
	if err != nil {
		return nil, err
	}
	// Each applied decision bumps the aggregate version, so the guard
	// for the batch write is the version we loaded, not version-1.
	loadedVersion := order.Version

	// Overrides need the stronger capability; checked once for the batch
	for _, d := range req.Decisions {
		if d.OverrideApplied {
			if err := s.permissions.CanOverrideStock(actor, order); err != nil {
				return nil, err
			}
			break
		}
	}

	resp := &BulkApproveResponse{
		Applied: make([]uuid.UUID, 0, len(req.Decisions)),
		Errors:  make([]procurement.DecisionError, 0),
	}
	overrideApplied := false
	for _, d := range req.Decisions {
		if decErr := order.ApplyLineDecision(d.ToDomain(), actorID); decErr != nil {
			resp.Errors = append(resp.Errors, *decErr)
			continue
		}
		resp.Applied = append(resp.Applied, d.LineID)
		if d.OverrideApplied {
			overrideApplied = true
		}
	}

	if len(resp.Applied) > 0 {
		if err := s.orderRepo.SaveWithLock(ctx, order, loadedVersion); err != nil {
			return nil, err
		}
		entry := procurement.NewApprovalHistoryEntry(order.BrandID, order.ID, actorID, actor.Username,
			procurement.HistoryActionLinesDecided, req.Comments).
			WithAffectedLines(resp.Applied, overrideApplied)
		if err := s.historyRepo.Save(ctx, entry); err != nil {
			s.logger.Error("audit entry save failed",
				zap.String("order_id", order.ID.String()), zap.Error(err))
		}
	}

	resp.Processed = len(resp.Applied)
	resp.Failed = len(resp.Errors)
	resp.Message = fmt.Sprintf("Applied %d of %d line decisions", resp.Processed, len(req.Decisions))
	resp.Order = ToPurchaseOrderResponse(order)
	return resp, nil
}

// ApproveComplete finalizes a fully decided order and runs the
// post-approval side effects. Loading, finalization and the conditional
// status write are hard steps; everything after the write is best
// effort and reported in the outcome instead of failing the call.
func (s *ApprovalService) ApproveComplete(ctx context.Context, brandID, actorID, orderID uuid.UUID, req ApproveCompleteRequest) (*ApproveCompleteResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "approval", "approve_complete",
		attribute.String("order_id", orderID.String()))
	defer span.End()

	// Step 1: load and authorize
	order, actor, err := s.load(ctx, brandID, actorID, orderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	// Step 2: finalize in the domain, computing the fulfillment percentage
	if err := order.FinalizeApproval(actorID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	// Step 3: conditional write guarded on the stored status still being
	// submitted. A concurrent finalizer loses here and gets a conflict.
	if err := s.orderRepo.FinalizeFromSubmitted(ctx, order); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	outcome := NewSideEffectOutcome()

	// Step 4: reserve stock per approved line and generate
	// per-distributor fulfillment orders, unless the caller deferred
	// ordering
	if req.ShouldCreateOrders() {
		created, alerts, genFailures := s.orderGenerator.Generate(ctx, order)
		outcome.GeneratedOrderIDs = append(outcome.GeneratedOrderIDs, created...)
		outcome.LowStockAlerts = append(outcome.LowStockAlerts, alerts...)
		for _, f := range genFailures {
			outcome.RecordFailure("generate_orders", f)
		}
		if len(created) > 0 && len(genFailures) == 0 {
			if err := s.markOrdered(ctx, order); err != nil {
				outcome.RecordFailure("mark_ordered", err)
			}
		}
	}

	// Step 5: track unfulfilled quantity as backorders
	backorders, boFailures := s.backorderManager.CreateForOrder(ctx, order, actorID)
	outcome.BackorderIDs = append(outcome.BackorderIDs, backorders...)
	for _, f := range boFailures {
		outcome.RecordFailure("create_backorders", f)
	}

	// Step 6: notify the requester and book the delivery reminder
	notice := buildApprovalNotice(order)
	if err := s.notifier.NotifyApprovalComplete(ctx, notice); err != nil {
		outcome.RecordFailure("notify_requester", err)
	} else {
		outcome.NotificationsSent = true
	}
	if len(outcome.LowStockAlerts) > 0 {
		if err := s.notifier.NotifyLowStock(ctx, order.BrandID, outcome.LowStockAlerts); err != nil {
			outcome.RecordFailure("notify_low_stock", err)
		}
	}
	if order.ExpectedDeliveryDate != nil {
		if err := s.calendar.ScheduleDeliveryReminder(ctx, order.BrandID, order.PONumber, *order.ExpectedDeliveryDate); err != nil {
			outcome.RecordFailure("schedule_reminder", err)
		} else {
			outcome.ReminderScheduled = true
		}
	}

	// Step 7: audit entry carrying the generated references
	entry := procurement.NewApprovalHistoryEntry(order.BrandID, order.ID, actorID, actor.Username,
		procurement.HistoryActionApproved, req.Comments)
	entry.AttachGeneratedRefs(outcome.GeneratedOrderIDs, outcome.BackorderIDs)
	if err := s.historyRepo.Save(ctx, entry); err != nil {
		s.logger.Error("audit entry save failed",
			zap.String("order_id", order.ID.String()), zap.Error(err))
		outcome.RecordFailure("record_history", err)
	}

	if outcome.Degraded() {
		s.logger.Warn("approval completed with degraded side effects",
			zap.String("order_id", order.ID.String()),
			zap.Int("failures", len(outcome.Failures)))
	}

	return &ApproveCompleteResponse{
		Order:             ToPurchaseOrderResponse(order),
		Outcome:           *outcome,
		OrdersCreated:     len(outcome.GeneratedOrderIDs),
		BackordersCreated: len(outcome.BackorderIDs),
		Message:           notice.Message,
	}, nil
}

// buildApprovalNotice renders the completion notification. Partial
// fulfillment escalates the priority so the requester reviews what was
// cut.
func buildApprovalNotice(order *procurement.PurchaseOrder) ApprovalNotice {
	notice := ApprovalNotice{
		RequesterID:           order.RequestedBy,
		PONumber:              order.PONumber,
		Status:                order.Status.String(),
		FulfillmentPercentage: order.FulfillmentPercentage,
		Title:                 fmt.Sprintf("Purchase order %s approved", order.PONumber),
		Message:               fmt.Sprintf("Purchase order %s was fully approved", order.PONumber),
		Priority:              NoticePriorityNormal,
		ActionURL:             "/purchase-orders/" + order.ID.String(),
	}
	if !order.IsFullyFulfilled() {
		notice.Priority = NoticePriorityHigh
		notice.Message = fmt.Sprintf("Purchase order %s was approved at %s%% fulfillment; some lines were rejected or backordered",
			order.PONumber, order.FulfillmentPercentage.String())
	}
	return notice
}

// markOrdered advances the order once fulfillment orders exist for it
func (s *ApprovalService) markOrdered(ctx context.Context, order *procurement.PurchaseOrder) error {
	if err := order.MarkOrdered(); err != nil {
		return err
	}
	return s.orderRepo.SaveWithLock(ctx, order, order.Version-1)
}

func (s *ApprovalService) load(ctx context.Context, brandID, actorID, orderID uuid.UUID) (*procurement.PurchaseOrder, *identity.Actor, error) {
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
