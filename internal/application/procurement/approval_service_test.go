package procurement

import (
	"context"
	"errors"
	"testing"
	"time"

	appidentity "github.com/commercehub/backoffice/internal/application/identity"
	"github.com/commercehub/backoffice/internal/domain/identity"
	"github.com/commercehub/backoffice/internal/domain/procurement"
	"github.com/commercehub/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type approvalFixture struct {
	service     *ApprovalService
	orderRepo   *fakeOrderRepo
	historyRepo *fakeHistoryRepo
	backorders  *fakeBackorderRepo
	fulfillment *fakeFulfillmentRepo
	allocator   *fakeAllocator
	notifier    *fakeNotifier
	calendar    *fakeCalendar
	brandID     uuid.UUID
	actor       *identity.Actor
}

func newApprovalFixture(t *testing.T) *approvalFixture {
	t.Helper()
	brandID := uuid.New()
	actor := &identity.Actor{
		Username: "approver",
		Role:     identity.RoleBrandAdmin,
		BrandID:  &brandID,
		Active:   true,
	}
	actor.ID = uuid.New()

	f := &approvalFixture{
		orderRepo:   newFakeOrderRepo(),
		historyRepo: &fakeHistoryRepo{},
		backorders:  &fakeBackorderRepo{},
		fulfillment: &fakeFulfillmentRepo{},
		allocator:   newFakeAllocator(),
		notifier:    &fakeNotifier{},
		calendar:    &fakeCalendar{},
		brandID:     brandID,
		actor:       actor,
	}

	logger := zap.NewNop()
	f.service = NewApprovalService(
		f.orderRepo,
		f.historyRepo,
		newFakeDirectory(actor),
		appidentity.NewPermissionEvaluator(false),
		NewOrderGenerator(f.fulfillment, &fakeCatalog{}, f.allocator, logger),
		NewBackorderManager(f.backorders, f.notifier, logger),
		f.notifier,
		f.calendar,
		logger,
	)
	return f
}

func (f *approvalFixture) submittedOrder(t *testing.T, lineQty ...int64) *procurement.PurchaseOrder {
	t.Helper()
	order, err := procurement.NewPurchaseOrder(f.brandID, "PO-"+uuid.New().String()[:8], "Acme", uuid.New())
	require.NoError(t, err)
	for i, q := range lineQty {
		_, err := order.AddLine(uuid.New(), "SKU-"+string(rune('A'+i)), "Item",
			decimal.NewFromInt(q), decimal.NewFromInt(10), nil)
		require.NoError(t, err)
	}
	require.NoError(t, order.Submit())
	f.orderRepo.put(order)
	return order
}

func decision(lineID uuid.UUID, approved, backorder, rejected int64) LineDecisionRequest {
	return LineDecisionRequest{
		LineID:       lineID,
		ApprovedQty:  decimal.NewFromInt(approved),
		BackorderQty: decimal.NewFromInt(backorder),
		RejectedQty:  decimal.NewFromInt(rejected),
	}
}

func TestBulkApproveLines_EmptyBatch(t *testing.T) {
	f := newApprovalFixture(t)
	order := f.submittedOrder(t, 10)

	_, err := f.service.BulkApproveLines(context.Background(), f.brandID, f.actor.ID, order.ID, BulkApproveRequest{})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "INVALID_INPUT", domainErr.Code)
}

func TestBulkApproveLines_AppliesValidDecisions(t *testing.T) {
	f := newApprovalFixture(t)
	order := f.submittedOrder(t, 10, 5)

	resp, err := f.service.BulkApproveLines(context.Background(), f.brandID, f.actor.ID, order.ID, BulkApproveRequest{
		Decisions: []LineDecisionRequest{
			decision(order.Lines[0].ID, 10, 0, 0),
			decision(order.Lines[1].ID, 0, 5, 0),
		},
	})
	require.NoError(t, err)

	assert.Len(t, resp.Applied, 2)
	assert.Empty(t, resp.Errors)
	assert.Equal(t, 2, resp.Processed)
	assert.Equal(t, 0, resp.Failed)
	// status never changes on bulk approval
	assert.Equal(t, procurement.StatusSubmitted.String(), resp.Order.Status)

	entries := f.historyRepo.byAction(procurement.HistoryActionLinesDecided)
	require.Len(t, entries, 1)
	assert.Len(t, entries[0].AffectedLineIDs, 2)
}

func TestBulkApproveLines_BatchSavesWithLoadedVersion(t *testing.T) {
	f := newApprovalFixture(t)
	order := f.submittedOrder(t, 10, 5)
	loadedVersion := order.Version

	// Two applied decisions bump the aggregate version twice, but the
	// guarded write must still succeed against the version the batch
	// loaded; the version-enforcing repo fake rejects anything else.
	resp, err := f.service.BulkApproveLines(context.Background(), f.brandID, f.actor.ID, order.ID, BulkApproveRequest{
		Decisions: []LineDecisionRequest{
			decision(order.Lines[0].ID, 10, 0, 0),
			decision(order.Lines[1].ID, 0, 5, 0),
		},
	})
	require.NoError(t, err)
	assert.Len(t, resp.Applied, 2)
	assert.Equal(t, loadedVersion+2, order.Version)
	assert.Equal(t, order.Version, f.orderRepo.storedVersion[order.ID])
}

func TestBulkApproveLines_StaleVersionConflicts(t *testing.T) {
	f := newApprovalFixture(t)
	order := f.submittedOrder(t, 10)

	// a concurrent writer bumped the stored row after our load
	f.orderRepo.storedVersion[order.ID]++

	_, err := f.service.BulkApproveLines(context.Background(), f.brandID, f.actor.ID, order.ID, BulkApproveRequest{
		Decisions: []LineDecisionRequest{decision(order.Lines[0].ID, 10, 0, 0)},
	})
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
}

func TestBulkApproveLines_PartialSuccess(t *testing.T) {
	f := newApprovalFixture(t)
	order := f.submittedOrder(t, 10, 5)

	resp, err := f.service.BulkApproveLines(context.Background(), f.brandID, f.actor.ID, order.ID, BulkApproveRequest{
		Decisions: []LineDecisionRequest{
			decision(order.Lines[0].ID, 10, 0, 0),
			decision(order.Lines[1].ID, 3, 0, 0), // 3 != 5, mismatch
			decision(uuid.New(), 1, 0, 0),        // unknown line
		},
	})
	require.NoError(t, err)

	assert.Len(t, resp.Applied, 1)
	require.Len(t, resp.Errors, 2)
	assert.Equal(t, procurement.DecisionCodeAmountMismatch, resp.Errors[0].Code)
	assert.Equal(t, procurement.DecisionCodeLineNotFound, resp.Errors[1].Code)
}

func TestBulkApproveLines_OverrideNeedsCapability(t *testing.T) {
	f := newApprovalFixture(t)
	// finance can approve but not override
	f.actor.Role = identity.RoleBrandFinance
	order := f.submittedOrder(t, 10)

	req := BulkApproveRequest{Decisions: []LineDecisionRequest{{
		LineID:          order.Lines[0].ID,
		ApprovedQty:     decimal.NewFromInt(10),
		OverrideApplied: true,
		OverrideReason:  "restock confirmed",
	}}}

	_, err := f.service.BulkApproveLines(context.Background(), f.brandID, f.actor.ID, order.ID, req)
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "PERMISSION_DENIED", domainErr.Code)

	// admins may override
	f.actor.Role = identity.RoleBrandAdmin
	resp, err := f.service.BulkApproveLines(context.Background(), f.brandID, f.actor.ID, order.ID, req)
	require.NoError(t, err)
	assert.Len(t, resp.Applied, 1)
}

func TestBulkApproveLines_PermissionDenied(t *testing.T) {
	f := newApprovalFixture(t)
	f.actor.Role = identity.RoleBrandStaff
	order := f.submittedOrder(t, 10)

	_, err := f.service.BulkApproveLines(context.Background(), f.brandID, f.actor.ID, order.ID, BulkApproveRequest{
		Decisions: []LineDecisionRequest{decision(order.Lines[0].ID, 10, 0, 0)},
	})
	assert.Error(t, err)
}

func TestApproveComplete_FullFlow(t *testing.T) {
	f := newApprovalFixture(t)
	order := f.submittedOrder(t, 10, 6)
	delivery := time.Now().Add(72 * time.Hour)
	order.ExpectedDeliveryDate = &delivery

	_, err := f.service.BulkApproveLines(context.Background(), f.brandID, f.actor.ID, order.ID, BulkApproveRequest{
		Decisions: []LineDecisionRequest{
			decision(order.Lines[0].ID, 10, 0, 0),
			decision(order.Lines[1].ID, 2, 4, 0),
		},
	})
	require.NoError(t, err)

	resp, err := f.service.ApproveComplete(context.Background(), f.brandID, f.actor.ID, order.ID, ApproveCompleteRequest{Comments: "ok"})
	require.NoError(t, err)

	// 12 of 16 approved
	assert.Equal(t, procurement.StatusOrdered.String(), resp.Order.Status)
	assert.True(t, resp.Order.FulfillmentPercentage.Equal(decimal.NewFromInt(75)))

	// fulfillment orders generated and backorders created
	assert.Len(t, resp.Outcome.GeneratedOrderIDs, 1)
	assert.Len(t, resp.Outcome.BackorderIDs, 1)
	assert.Equal(t, 1, resp.OrdersCreated)
	assert.Equal(t, 1, resp.BackordersCreated)
	assert.NotEmpty(t, resp.Message)
	assert.Len(t, f.fulfillment.saved, 1)
	require.Len(t, f.backorders.saved, 1)
	assert.True(t, f.backorders.saved[0].Quantity.Equal(decimal.NewFromInt(4)))

	// both approved lines allocated during generation
	assert.Len(t, f.allocator.allocated, 2)

	// notifications and reminder; partial fulfillment escalates the notice
	assert.True(t, resp.Outcome.NotificationsSent)
	assert.True(t, resp.Outcome.ReminderScheduled)
	assert.Equal(t, 1, f.notifier.approvalNotices)
	assert.Equal(t, NoticePriorityHigh, f.notifier.lastNotice.Priority)
	assert.Contains(t, f.notifier.lastNotice.ActionURL, order.ID.String())
	assert.Equal(t, 1, f.notifier.backorderNotices)
	assert.Len(t, f.calendar.scheduled, 1)

	assert.False(t, resp.Outcome.Degraded())
	assert.Len(t, f.historyRepo.byAction(procurement.HistoryActionApproved), 1)
}

func TestApproveComplete_FullApprovalSendsNormalPriority(t *testing.T) {
	f := newApprovalFixture(t)
	order := f.submittedOrder(t, 10)

	_, err := f.service.BulkApproveLines(context.Background(), f.brandID, f.actor.ID, order.ID, BulkApproveRequest{
		Decisions: []LineDecisionRequest{decision(order.Lines[0].ID, 10, 0, 0)},
	})
	require.NoError(t, err)

	_, err = f.service.ApproveComplete(context.Background(), f.brandID, f.actor.ID, order.ID, ApproveCompleteRequest{})
	require.NoError(t, err)

	notice := f.notifier.lastNotice
	assert.Equal(t, NoticePriorityNormal, notice.Priority)
	assert.Equal(t, order.PONumber, notice.PONumber)
	assert.NotEmpty(t, notice.Title)
	assert.NotEmpty(t, notice.Message)
	assert.True(t, notice.FulfillmentPercentage.Equal(decimal.NewFromInt(100)))
}

func TestApproveComplete_DeferredOrderGeneration(t *testing.T) {
	f := newApprovalFixture(t)
	order := f.submittedOrder(t, 10, 6)

	_, err := f.service.BulkApproveLines(context.Background(), f.brandID, f.actor.ID, order.ID, BulkApproveRequest{
		Decisions: []LineDecisionRequest{
			decision(order.Lines[0].ID, 10, 0, 0),
			decision(order.Lines[1].ID, 2, 4, 0),
		},
	})
	require.NoError(t, err)

	deferred := false
	resp, err := f.service.ApproveComplete(context.Background(), f.brandID, f.actor.ID, order.ID,
		ApproveCompleteRequest{CreateOrders: &deferred})
	require.NoError(t, err)

	// approval finalizes but nothing is generated or reserved
	assert.Equal(t, procurement.StatusPartiallyApproved.String(), resp.Order.Status)
	assert.Empty(t, resp.Outcome.GeneratedOrderIDs)
	assert.Equal(t, 0, resp.OrdersCreated)
	assert.Empty(t, f.fulfillment.saved)
	assert.Empty(t, f.allocator.allocated)

	// backorders are tracked regardless
	assert.Len(t, resp.Outcome.BackorderIDs, 1)
}

func TestApproveComplete_ReservationFailureSkipsLine(t *testing.T) {
	f := newApprovalFixture(t)
	order := f.submittedOrder(t, 10, 6)
	f.allocator.failProducts[order.Lines[1].ProductID] = shared.ErrInsufficientStock

	_, err := f.service.BulkApproveLines(context.Background(), f.brandID, f.actor.ID, order.ID, BulkApproveRequest{
		Decisions: []LineDecisionRequest{
			decision(order.Lines[0].ID, 10, 0, 0),
			decision(order.Lines[1].ID, 6, 0, 0),
		},
	})
	require.NoError(t, err)

	resp, err := f.service.ApproveComplete(context.Background(), f.brandID, f.actor.ID, order.ID, ApproveCompleteRequest{})
	require.NoError(t, err)

	// the unreservable line is excluded from the generated order
	require.Len(t, f.fulfillment.saved, 1)
	require.Len(t, f.fulfillment.saved[0].Lines, 1)
	assert.Equal(t, order.Lines[0].ID, f.fulfillment.saved[0].Lines[0].SourceLineID)

	// reported as degraded, and the order is not marked ordered
	assert.True(t, resp.Outcome.Degraded())
	assert.NotEqual(t, procurement.StatusOrdered.String(), resp.Order.Status)
	steps := make(map[string]bool)
	for _, failure := range resp.Outcome.Failures {
		steps[failure.Step] = true
	}
	assert.True(t, steps["generate_orders"])
}

func TestApproveComplete_BackorderAlertFailureTolerated(t *testing.T) {
	f := newApprovalFixture(t)
	order := f.submittedOrder(t, 10)
	f.notifier.backorderErr = errors.New("alert bus down")

	_, err := f.service.BulkApproveLines(context.Background(), f.brandID, f.actor.ID, order.ID, BulkApproveRequest{
		Decisions: []LineDecisionRequest{decision(order.Lines[0].ID, 0, 10, 0)},
	})
	require.NoError(t, err)

	resp, err := f.service.ApproveComplete(context.Background(), f.brandID, f.actor.ID, order.ID, ApproveCompleteRequest{})
	require.NoError(t, err)

	// the backorder record survives its failed alert
	assert.Len(t, resp.Outcome.BackorderIDs, 1)
	assert.Equal(t, 0, f.notifier.backorderNotices)
	require.Len(t, f.backorders.saved, 1)
}

func TestApproveComplete_UndecidedLinesFail(t *testing.T) {
	f := newApprovalFixture(t)
	order := f.submittedOrder(t, 10, 5)

	_, err := f.service.BulkApproveLines(context.Background(), f.brandID, f.actor.ID, order.ID, BulkApproveRequest{
		Decisions: []LineDecisionRequest{decision(order.Lines[0].ID, 10, 0, 0)},
	})
	require.NoError(t, err)

	_, err = f.service.ApproveComplete(context.Background(), f.brandID, f.actor.ID, order.ID, ApproveCompleteRequest{})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "UNDECIDED_LINES", domainErr.Code)
	// nothing was written or fanned out
	assert.Equal(t, 0, f.orderRepo.finalizeCalls)
	assert.Empty(t, f.fulfillment.saved)
}

func TestApproveComplete_LostFinalizeRace(t *testing.T) {
	f := newApprovalFixture(t)
	order := f.submittedOrder(t, 10)

	_, err := f.service.BulkApproveLines(context.Background(), f.brandID, f.actor.ID, order.ID, BulkApproveRequest{
		Decisions: []LineDecisionRequest{decision(order.Lines[0].ID, 10, 0, 0)},
	})
	require.NoError(t, err)

	// another finalizer already moved the stored row off submitted
	f.orderRepo.storedStatus[order.ID] = procurement.StatusApproved

	_, err = f.service.ApproveComplete(context.Background(), f.brandID, f.actor.ID, order.ID, ApproveCompleteRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	assert.Empty(t, f.fulfillment.saved)
}

func TestApproveComplete_DegradedSideEffects(t *testing.T) {
	f := newApprovalFixture(t)
	order := f.submittedOrder(t, 10, 6)

	_, err := f.service.BulkApproveLines(context.Background(), f.brandID, f.actor.ID, order.ID, BulkApproveRequest{
		Decisions: []LineDecisionRequest{
			decision(order.Lines[0].ID, 10, 0, 0),
			decision(order.Lines[1].ID, 2, 4, 0),
		},
	})
	require.NoError(t, err)

	f.backorders.saveErr = errors.New("backorder store down")
	f.notifier.notifyErr = errors.New("notification bus down")

	resp, err := f.service.ApproveComplete(context.Background(), f.brandID, f.actor.ID, order.ID, ApproveCompleteRequest{})
	require.NoError(t, err)

	// approval finalized despite degraded side effects
	assert.True(t, resp.Outcome.Degraded())
	assert.False(t, resp.Outcome.NotificationsSent)
	assert.Empty(t, resp.Outcome.BackorderIDs)

	steps := make(map[string]bool)
	for _, failure := range resp.Outcome.Failures {
		steps[failure.Step] = true
	}
	assert.True(t, steps["create_backorders"])
	assert.True(t, steps["notify_requester"])
}

func TestApproveComplete_NoReminderWithoutDeliveryDate(t *testing.T) {
	f := newApprovalFixture(t)
	order := f.submittedOrder(t, 10)

	_, err := f.service.BulkApproveLines(context.Background(), f.brandID, f.actor.ID, order.ID, BulkApproveRequest{
		Decisions: []LineDecisionRequest{decision(order.Lines[0].ID, 10, 0, 0)},
	})
	require.NoError(t, err)

	resp, err := f.service.ApproveComplete(context.Background(), f.brandID, f.actor.ID, order.ID, ApproveCompleteRequest{})
	require.NoError(t, err)
	assert.False(t, resp.Outcome.ReminderScheduled)
	assert.Empty(t, f.calendar.scheduled)
}

func TestApproveComplete_FullyRejectedSkipsFulfillment(t *testing.T) {
	f := newApprovalFixture(t)
	order := f.submittedOrder(t, 10)

	_, err := f.service.BulkApproveLines(context.Background(), f.brandID, f.actor.ID, order.ID, BulkApproveRequest{
		Decisions: []LineDecisionRequest{decision(order.Lines[0].ID, 0, 0, 10)},
	})
	require.NoError(t, err)

	resp, err := f.service.ApproveComplete(context.Background(), f.brandID, f.actor.ID, order.ID, ApproveCompleteRequest{})
	require.NoError(t, err)

	// nothing approved, so no fulfillment orders and no ordered transition
	assert.Equal(t, procurement.StatusPartiallyApproved.String(), resp.Order.Status)
	assert.Empty(t, resp.Outcome.GeneratedOrderIDs)
	assert.Empty(t, f.allocator.allocated)
}
