package procurement

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func qty(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func stockPtr(v int64) *decimal.Decimal {
	s := decimal.NewFromInt(v)
	return &s
}

func newTestLine(t *testing.T, requested int64, stock *decimal.Decimal) *PurchaseOrderLine {
	line, err := NewPurchaseOrderLine(uuid.New(), uuid.New(), "SKU-001", "Widget", qty(requested), decimal.NewFromFloat(9.99), stock)
	require.NoError(t, err)
	return line
}

func TestNewPurchaseOrderLine_Validation(t *testing.T) {
	orderID := uuid.New()

	_, err := NewPurchaseOrderLine(orderID, uuid.Nil, "SKU-001", "Widget", qty(10), qty(1), nil)
	assert.Error(t, err)

	_, err = NewPurchaseOrderLine(orderID, uuid.New(), "", "Widget", qty(10), qty(1), nil)
	assert.Error(t, err)

	_, err = NewPurchaseOrderLine(orderID, uuid.New(), "SKU-001", "Widget", qty(0), qty(1), nil)
	assert.Error(t, err)

	_, err = NewPurchaseOrderLine(orderID, uuid.New(), "SKU-001", "Widget", qty(10), qty(-1), nil)
	assert.Error(t, err)

	line, err := NewPurchaseOrderLine(orderID, uuid.New(), "SKU-001", "Widget", qty(10), decimal.NewFromFloat(2.5), nil)
	require.NoError(t, err)
	assert.Equal(t, LineStatusPending, line.Status)
	assert.True(t, line.Amount.Equal(decimal.NewFromInt(25)))
}

func TestDeriveLineStatus(t *testing.T) {
	tests := []struct {
		name                           string
		approved, backorder, rejected  int64
		requested                      int64
		want                           LineStatus
	}{
		{"fully rejected", 0, 0, 10, 10, LineStatusRejected},
		{"fully backordered", 0, 10, 0, 10, LineStatusBackordered},
		{"fully approved", 10, 0, 0, 10, LineStatusApproved},
		{"approved and backordered", 6, 4, 0, 10, LineStatusPartiallyApproved},
		{"approved and rejected", 6, 0, 4, 10, LineStatusPartiallyApproved},
		{"three-way split", 5, 3, 2, 10, LineStatusPartiallyApproved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveLineStatus(qty(tt.approved), qty(tt.backorder), qty(tt.rejected), qty(tt.requested))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateDecision_QuantityReconciliation(t *testing.T) {
	line := newTestLine(t, 10, nil)

	err := line.ValidateDecision(LineDecision{LineID: line.ID, ApprovedQty: qty(5), BackorderQty: qty(3), RejectedQty: qty(1)})
	require.NotNil(t, err)
	assert.Equal(t, DecisionCodeAmountMismatch, err.Code)

	err = line.ValidateDecision(LineDecision{LineID: line.ID, ApprovedQty: qty(5), BackorderQty: qty(3), RejectedQty: qty(3)})
	require.NotNil(t, err)
	assert.Equal(t, DecisionCodeAmountMismatch, err.Code)

	err = line.ValidateDecision(LineDecision{LineID: line.ID, ApprovedQty: qty(5), BackorderQty: qty(3), RejectedQty: qty(2)})
	assert.Nil(t, err)
}

func TestValidateDecision_NegativeQuantities(t *testing.T) {
	line := newTestLine(t, 10, nil)

	err := line.ValidateDecision(LineDecision{LineID: line.ID, ApprovedQty: qty(12), BackorderQty: qty(-2), RejectedQty: qty(0)})
	require.NotNil(t, err)
	assert.Equal(t, DecisionCodeNegativeQuantity, err.Code)
}

func TestValidateDecision_StockCheck(t *testing.T) {
	line := newTestLine(t, 10, stockPtr(4))

	// approving more than available stock without override fails
	err := line.ValidateDecision(LineDecision{LineID: line.ID, ApprovedQty: qty(10)})
	require.NotNil(t, err)
	assert.Equal(t, DecisionCodeInsufficientStock, err.Code)

	// within available stock passes
	err = line.ValidateDecision(LineDecision{LineID: line.ID, ApprovedQty: qty(4), BackorderQty: qty(6)})
	assert.Nil(t, err)

	// override with reason passes even above stock
	err = line.ValidateDecision(LineDecision{LineID: line.ID, ApprovedQty: qty(10), OverrideApplied: true, OverrideReason: "inbound shipment confirmed"})
	assert.Nil(t, err)

	// override without reason fails
	err = line.ValidateDecision(LineDecision{LineID: line.ID, ApprovedQty: qty(10), OverrideApplied: true})
	require.NotNil(t, err)
	assert.Equal(t, DecisionCodeMissingOverride, err.Code)
}

func TestValidateDecision_NoSnapshotSkipsStockCheck(t *testing.T) {
	line := newTestLine(t, 10, nil)

	err := line.ValidateDecision(LineDecision{LineID: line.ID, ApprovedQty: qty(10)})
	assert.Nil(t, err)
}

func TestValidateDecision_CancelledLine(t *testing.T) {
	line := newTestLine(t, 10, nil)
	require.NoError(t, line.Cancel("no longer needed"))

	err := line.ValidateDecision(LineDecision{LineID: line.ID, ApprovedQty: qty(10)})
	require.NotNil(t, err)
	assert.Equal(t, DecisionCodeLineNotDecidable, err.Code)
}

func TestApplyDecision_SetsStatusAndOverrideAudit(t *testing.T) {
	line := newTestLine(t, 10, stockPtr(4))
	actorID := uuid.New()

	err := line.ApplyDecision(LineDecision{
		LineID:          line.ID,
		ApprovedQty:     qty(10),
		OverrideApplied: true,
		OverrideReason:  "expedited restock arriving",
	}, actorID)
	require.Nil(t, err)

	assert.Equal(t, LineStatusApproved, line.Status)
	assert.True(t, line.Override)
	require.NotNil(t, line.OverrideBy)
	assert.Equal(t, actorID, *line.OverrideBy)
	assert.NotNil(t, line.OverrideAt)
	assert.Equal(t, "expedited restock arriving", line.OverrideReason)
}

func TestApplyDecision_RedecideClearsOverride(t *testing.T) {
	line := newTestLine(t, 10, stockPtr(4))
	actorID := uuid.New()

	require.Nil(t, line.ApplyDecision(LineDecision{
		LineID: line.ID, ApprovedQty: qty(10),
		OverrideApplied: true, OverrideReason: "restock arriving",
	}, actorID))

	require.Nil(t, line.ApplyDecision(LineDecision{
		LineID: line.ID, ApprovedQty: qty(4), BackorderQty: qty(6),
	}, actorID))

	assert.Equal(t, LineStatusPartiallyApproved, line.Status)
	assert.False(t, line.Override)
	assert.Nil(t, line.OverrideBy)
	assert.Empty(t, line.OverrideReason)
}

func TestLineCancel_ZeroesDecision(t *testing.T) {
	line := newTestLine(t, 10, nil)
	require.Nil(t, line.ApplyDecision(LineDecision{LineID: line.ID, ApprovedQty: qty(10)}, uuid.New()))

	require.NoError(t, line.Cancel("supplier discontinued item"))

	assert.Equal(t, LineStatusCancelled, line.Status)
	assert.True(t, line.ApprovedQty.IsZero())
	assert.True(t, line.BackorderQty.IsZero())
	assert.True(t, line.RejectedQty.IsZero())
	assert.Equal(t, "supplier discontinued item", line.CancelReason)

	err := line.Cancel("again")
	assert.Error(t, err)
}
