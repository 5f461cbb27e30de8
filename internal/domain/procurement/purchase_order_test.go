package procurement

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestOrder(t *testing.T) *PurchaseOrder {
	order, err := NewPurchaseOrder(uuid.New(), "PO-2026-001", "Acme Supplies", uuid.New())
	require.NoError(t, err)
	return order
}

func addTestLine(t *testing.T, order *PurchaseOrder, sku string, requested int64, stock *decimal.Decimal) *PurchaseOrderLine {
	line, err := order.AddLine(uuid.New(), sku, "Item "+sku, qty(requested), decimal.NewFromInt(10), stock)
	require.NoError(t, err)
	return line
}

func submittedOrder(t *testing.T, lineQty ...int64) *PurchaseOrder {
	order := createTestOrder(t)
	for i, q := range lineQty {
		addTestLine(t, order, "SKU-"+string(rune('A'+i)), q, nil)
	}
	require.NoError(t, order.Submit())
	return order
}

func decide(t *testing.T, order *PurchaseOrder, line *PurchaseOrderLine, approved, backorder, rejected int64) {
	err := order.ApplyLineDecision(LineDecision{
		LineID:       line.ID,
		ApprovedQty:  qty(approved),
		BackorderQty: qty(backorder),
		RejectedQty:  qty(rejected),
	}, uuid.New())
	require.Nil(t, err)
}

func TestNewPurchaseOrder_Validation(t *testing.T) {
	brandID := uuid.New()
	requester := uuid.New()

	_, err := NewPurchaseOrder(brandID, "", "Acme", requester)
	assert.Error(t, err)

	_, err = NewPurchaseOrder(brandID, "PO-1", "", requester)
	assert.Error(t, err)

	_, err = NewPurchaseOrder(brandID, "PO-1", "Acme", uuid.Nil)
	assert.Error(t, err)

	order, err := NewPurchaseOrder(brandID, "PO-1", "Acme", requester)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, order.Status)
	assert.Equal(t, brandID, order.BrandID)
	assert.Len(t, order.GetDomainEvents(), 1)
}

func TestAddLine_RejectsDuplicateProduct(t *testing.T) {
	order := createTestOrder(t)
	productID := uuid.New()

	_, err := order.AddLine(productID, "SKU-A", "Item", qty(5), qty(10), nil)
	require.NoError(t, err)

	_, err = order.AddLine(productID, "SKU-A", "Item", qty(3), qty(10), nil)
	assert.Error(t, err)
}

func TestAddLine_RecalculatesTotals(t *testing.T) {
	order := createTestOrder(t)
	addTestLine(t, order, "SKU-A", 5, nil)  // 5 * 10 = 50
	addTestLine(t, order, "SKU-B", 3, nil)  // 3 * 10 = 30
	require.NoError(t, order.SetCharges(decimal.NewFromInt(8), decimal.NewFromInt(12)))

	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(80)))
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(100)))
}

func TestSubmit(t *testing.T) {
	order := createTestOrder(t)

	// no lines
	err := order.Submit()
	assert.Error(t, err)

	addTestLine(t, order, "SKU-A", 5, nil)
	require.NoError(t, order.Submit())
	assert.Equal(t, StatusSubmitted, order.Status)
	assert.NotNil(t, order.SubmittedAt)

	// double submit
	err = order.Submit()
	assert.Error(t, err)
}

func TestApplyLineDecision_RequiresSubmittedOrder(t *testing.T) {
	order := createTestOrder(t)
	line := addTestLine(t, order, "SKU-A", 10, nil)

	err := order.ApplyLineDecision(LineDecision{LineID: line.ID, ApprovedQty: qty(10)}, uuid.New())
	require.NotNil(t, err)
	assert.Equal(t, DecisionCodeLineNotDecidable, err.Code)
}

func TestApplyLineDecision_UnknownLine(t *testing.T) {
	order := submittedOrder(t, 10)

	err := order.ApplyLineDecision(LineDecision{LineID: uuid.New(), ApprovedQty: qty(10)}, uuid.New())
	require.NotNil(t, err)
	assert.Equal(t, DecisionCodeLineNotFound, err.Code)
}

func TestFinalizeApproval_FullApproval(t *testing.T) {
	order := createTestOrder(t)
	lineA := addTestLine(t, order, "SKU-A", 10, nil)
	lineB := addTestLine(t, order, "SKU-B", 5, nil)
	require.NoError(t, order.Submit())

	decide(t, order, lineA, 10, 0, 0)
	decide(t, order, lineB, 5, 0, 0)

	require.NoError(t, order.FinalizeApproval(uuid.New()))
	assert.Equal(t, StatusApproved, order.Status)
	assert.True(t, order.FulfillmentPercentage.Equal(decimal.NewFromInt(100)))
	assert.True(t, order.IsFullyFulfilled())
	assert.NotNil(t, order.ApprovedBy)
	assert.NotNil(t, order.ApprovedAt)
}

func TestFinalizeApproval_PartialApproval(t *testing.T) {
	order := createTestOrder(t)
	lineA := addTestLine(t, order, "SKU-A", 10, nil)
	lineB := addTestLine(t, order, "SKU-B", 10, nil)
	require.NoError(t, order.Submit())

	decide(t, order, lineA, 10, 0, 0)
	decide(t, order, lineB, 5, 3, 2)

	require.NoError(t, order.FinalizeApproval(uuid.New()))
	assert.Equal(t, StatusPartiallyApproved, order.Status)
	// 15 of 20 approved
	assert.True(t, order.FulfillmentPercentage.Equal(decimal.NewFromInt(75)))
}

func TestFinalizeApproval_FullyRejectedStillPartial(t *testing.T) {
	order := createTestOrder(t)
	line := addTestLine(t, order, "SKU-A", 10, nil)
	require.NoError(t, order.Submit())

	decide(t, order, line, 0, 0, 10)

	require.NoError(t, order.FinalizeApproval(uuid.New()))
	assert.Equal(t, StatusPartiallyApproved, order.Status)
	assert.True(t, order.FulfillmentPercentage.IsZero())
}

func TestFinalizeApproval_UndecidedLinesBlock(t *testing.T) {
	order := createTestOrder(t)
	lineA := addTestLine(t, order, "SKU-A", 10, nil)
	addTestLine(t, order, "SKU-B", 5, nil)
	require.NoError(t, order.Submit())

	decide(t, order, lineA, 10, 0, 0)

	err := order.FinalizeApproval(uuid.New())
	assert.Error(t, err)
	assert.Equal(t, StatusSubmitted, order.Status)
}

func TestFinalizeApproval_CancelledLinesExcluded(t *testing.T) {
	order := createTestOrder(t)
	lineA := addTestLine(t, order, "SKU-A", 10, nil)
	lineB := addTestLine(t, order, "SKU-B", 10, nil)
	require.NoError(t, order.Submit())

	decide(t, order, lineA, 10, 0, 0)
	_, err := order.CancelLine(lineB.ID, "not needed")
	require.NoError(t, err)

	require.NoError(t, order.FinalizeApproval(uuid.New()))
	assert.Equal(t, StatusApproved, order.Status)
	assert.True(t, order.FulfillmentPercentage.Equal(decimal.NewFromInt(100)))
}

func TestFinalizeApproval_NoDecidableLines(t *testing.T) {
	order := createTestOrder(t)
	line := addTestLine(t, order, "SKU-A", 10, nil)
	require.NoError(t, order.Submit())

	cascaded, err := order.CancelLine(line.ID, "scrapped")
	require.NoError(t, err)
	assert.True(t, cascaded)

	err = order.FinalizeApproval(uuid.New())
	assert.Error(t, err)
}

func TestReject_RequiresReason(t *testing.T) {
	order := submittedOrder(t, 10)

	err := order.Reject(uuid.New(), "")
	assert.Error(t, err)

	require.NoError(t, order.Reject(uuid.New(), "budget freeze"))
	assert.Equal(t, StatusRejected, order.Status)
	assert.Equal(t, "budget freeze", order.RejectionReason)
}

func TestCancel_RequiresReason(t *testing.T) {
	order := submittedOrder(t, 10)

	err := order.Cancel("")
	assert.Error(t, err)

	require.NoError(t, order.Cancel("duplicate request"))
	assert.Equal(t, StatusCancelled, order.Status)
	assert.NotNil(t, order.CancelledAt)

	// terminal, no further transitions
	assert.Error(t, order.Cancel("again"))
}

func TestCancelLine_CascadesWhenLastActiveLine(t *testing.T) {
	order := createTestOrder(t)
	lineA := addTestLine(t, order, "SKU-A", 10, nil)
	lineB := addTestLine(t, order, "SKU-B", 5, nil)
	require.NoError(t, order.Submit())

	cascaded, err := order.CancelLine(lineA.ID, "first out")
	require.NoError(t, err)
	assert.False(t, cascaded)
	assert.Equal(t, StatusSubmitted, order.Status)

	cascaded, err = order.CancelLine(lineB.ID, "second out")
	require.NoError(t, err)
	assert.True(t, cascaded)
	assert.Equal(t, StatusCancelled, order.Status)
	assert.Equal(t, SystemCancelReason, order.RejectionReason)
}

func TestCancelLine_TerminalOrder(t *testing.T) {
	order := createTestOrder(t)
	line := addTestLine(t, order, "SKU-A", 10, nil)
	require.NoError(t, order.Submit())
	require.NoError(t, order.Reject(uuid.New(), "over budget"))

	_, err := order.CancelLine(line.ID, "too late")
	assert.Error(t, err)
}

func TestCancelLine_RecalculatesTotals(t *testing.T) {
	order := createTestOrder(t)
	lineA := addTestLine(t, order, "SKU-A", 10, nil) // 100
	addTestLine(t, order, "SKU-B", 5, nil)           // 50
	require.NoError(t, order.Submit())

	_, err := order.CancelLine(lineA.ID, "cut")
	require.NoError(t, err)
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(50)))
}

func TestMarkOrdered(t *testing.T) {
	order := createTestOrder(t)
	line := addTestLine(t, order, "SKU-A", 10, nil)
	require.NoError(t, order.Submit())
	decide(t, order, line, 10, 0, 0)
	require.NoError(t, order.FinalizeApproval(uuid.New()))

	require.NoError(t, order.MarkOrdered())
	assert.Equal(t, StatusOrdered, order.Status)

	assert.Error(t, order.MarkOrdered())
}

func TestDuplicate_ResetsDecisionsAndRefreshesStock(t *testing.T) {
	order := createTestOrder(t)
	lineA := addTestLine(t, order, "SKU-A", 10, stockPtr(4))
	lineB := addTestLine(t, order, "SKU-B", 5, nil)
	require.NoError(t, order.Submit())
	decide(t, order, lineA, 4, 6, 0)
	decide(t, order, lineB, 5, 0, 0)
	require.NoError(t, order.FinalizeApproval(uuid.New()))

	requester := uuid.New()
	clone, err := order.Duplicate("PO-2026-002", requester, map[string]decimal.Decimal{
		"SKU-A": decimal.NewFromInt(25),
	})
	require.NoError(t, err)

	assert.Equal(t, StatusDraft, clone.Status)
	assert.Equal(t, "PO-2026-002", clone.PONumber)
	assert.Equal(t, requester, clone.RequestedBy)
	assert.Nil(t, clone.ApprovedBy)
	assert.True(t, clone.FulfillmentPercentage.IsZero())
	require.Len(t, clone.Lines, 2)

	for _, line := range clone.Lines {
		assert.Equal(t, LineStatusPending, line.Status)
		assert.True(t, line.ApprovedQty.IsZero())
		assert.True(t, line.BackorderQty.IsZero())
		assert.True(t, line.RejectedQty.IsZero())
		assert.False(t, line.Override)
	}
	require.NotNil(t, clone.Lines[0].AvailableStock)
	assert.True(t, clone.Lines[0].AvailableStock.Equal(decimal.NewFromInt(25)))
	assert.Nil(t, clone.Lines[1].AvailableStock)
}

func TestBackorderedAndApprovedLines(t *testing.T) {
	order := createTestOrder(t)
	lineA := addTestLine(t, order, "SKU-A", 10, nil)
	lineB := addTestLine(t, order, "SKU-B", 5, nil)
	lineC := addTestLine(t, order, "SKU-C", 3, nil)
	require.NoError(t, order.Submit())

	decide(t, order, lineA, 6, 4, 0)
	decide(t, order, lineB, 0, 0, 5)
	decide(t, order, lineC, 3, 0, 0)

	backordered := order.BackorderedLines()
	require.Len(t, backordered, 1)
	assert.Equal(t, lineA.ID, backordered[0].ID)

	approved := order.ApprovedLines()
	require.Len(t, approved, 2)
}
