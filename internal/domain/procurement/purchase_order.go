package procurement

import (
	"fmt"
	"time"

	"github.com/commercehub/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SystemCancelReason is recorded when cancelling the last active line
// cascades to the parent order.
const SystemCancelReason = "All line items cancelled"

// PurchaseOrder is the approval-governed procurement aggregate root.
// It owns its lines and the status lifecycle; all mutations flow through
// workflow transitions so the audit trail stays complete.
type PurchaseOrder struct {
	shared.BrandAggregateRoot
	PONumber              string              `gorm:"type:varchar(50);not null;uniqueIndex:idx_purchase_order_brand_number,priority:2"`
	DistributorID         *uuid.UUID          `gorm:"type:uuid;index"`
	SupplierName          string              `gorm:"type:varchar(200);not null"`
	SupplierEmail         string              `gorm:"type:varchar(200)"`
	RequestedBy           uuid.UUID           `gorm:"type:uuid;not null;index"` // original requester, notified on completion
	Lines                 []PurchaseOrderLine `gorm:"foreignKey:OrderID;references:ID"`
	Subtotal              decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount             decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	ShippingCost          decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount           decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Status                Status              `gorm:"type:varchar(20);not null;default:'draft'"`
	FulfillmentPercentage decimal.Decimal     `gorm:"type:decimal(5,2);not null;default:0"`
	ApprovedBy            *uuid.UUID          `gorm:"type:uuid"`
	ApprovedAt            *time.Time
	RejectionReason       string `gorm:"type:varchar(500)"`
	ExpectedDeliveryDate  *time.Time
	SubmittedAt           *time.Time `gorm:"index"`
	CancelledAt           *time.Time
	Notes                 string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewPurchaseOrder creates a new draft purchase order
func NewPurchaseOrder(brandID uuid.UUID, poNumber, supplierName string, requestedBy uuid.UUID) (*PurchaseOrder, error) {
	if poNumber == "" {
		return nil, shared.NewDomainError("INVALID_PO_NUMBER", "PO number cannot be empty")
	}
	if len(poNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_PO_NUMBER", "PO number cannot exceed 50 characters")
	}
	if supplierName == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER_NAME", "Supplier name cannot be empty")
	}
	if requestedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REQUESTER", "Requester ID cannot be empty")
	}

	po := &PurchaseOrder{
		BrandAggregateRoot:    shared.NewBrandAggregateRoot(brandID),
		PONumber:              poNumber,
		SupplierName:          supplierName,
		RequestedBy:           requestedBy,
		Lines:                 make([]PurchaseOrderLine, 0),
		Subtotal:              decimal.Zero,
		TaxAmount:             decimal.Zero,
		ShippingCost:          decimal.Zero,
		TotalAmount:           decimal.Zero,
		FulfillmentPercentage: decimal.Zero,
		Status:                StatusDraft,
	}

	po.AddDomainEvent(NewPurchaseOrderCreatedEvent(po))

	return po, nil
}

// SetDistributor associates the order with a distributor
func (o *PurchaseOrder) SetDistributor(distributorID uuid.UUID) error {
	if o.Status != StatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot set distributor on a non-draft order")
	}
	if distributorID == uuid.Nil {
		return shared.NewDomainError("INVALID_DISTRIBUTOR", "Distributor ID cannot be empty")
	}
	o.DistributorID = &distributorID
	o.touch()
	return nil
}

// SetCharges sets order-level tax and shipping amounts
func (o *PurchaseOrder) SetCharges(tax, shipping decimal.Decimal) error {
	if o.Status != StatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot change charges on a non-draft order")
	}
	if tax.IsNegative() || shipping.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Tax and shipping cannot be negative")
	}
	o.TaxAmount = tax
	o.ShippingCost = shipping
	o.recalculateTotals()
	o.touch()
	return nil
}

// SetExpectedDeliveryDate sets the expected delivery date used for reminders
func (o *PurchaseOrder) SetExpectedDeliveryDate(date time.Time) {
	o.ExpectedDeliveryDate = &date
	o.touch()
}

// AddLine adds a new line to the order
// Only allowed in draft status
func (o *PurchaseOrder) AddLine(productID uuid.UUID, sku, productName string, requestedQty, unitPrice decimal.Decimal, availableStock *decimal.Decimal) (*PurchaseOrderLine, error) {
	if o.Status != StatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add lines to a non-draft order")
	}

	for _, line := range o.Lines {
		if line.ProductID == productID {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product already exists in order, amend the existing line instead")
		}
	}

	line, err := NewPurchaseOrderLine(o.ID, productID, sku, productName, requestedQty, unitPrice, availableStock)
	if err != nil {
		return nil, err
	}

	o.Lines = append(o.Lines, *line)
	o.recalculateTotals()
	o.touch()

	return line, nil
}

// Submit transitions the order from draft to submitted, entering the
// approval workflow. Requires at least one line.
func (o *PurchaseOrder) Submit() error {
	if !o.Status.CanTransitionTo(StatusSubmitted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot submit order in %s status", o.Status))
	}
	if len(o.Lines) == 0 {
		return shared.NewDomainError("NO_LINES", "Cannot submit order without lines")
	}

	now := time.Now()
	o.Status = StatusSubmitted
	o.SubmittedAt = &now
	o.touch()

	o.AddDomainEvent(NewPurchaseOrderSubmittedEvent(o))

	return nil
}

// ApplyLineDecision applies a single approval decision to the matching line
func (o *PurchaseOrder) ApplyLineDecision(d LineDecision, actorID uuid.UUID) *DecisionError {
	if !o.Status.CanFinalize() {
		return newDecisionError(d.LineID, DecisionCodeLineNotDecidable,
			fmt.Sprintf("Line decisions require a submitted order, order is %s", o.Status))
	}

	for idx := range o.Lines {
		if o.Lines[idx].ID == d.LineID {
			if err := o.Lines[idx].ApplyDecision(d, actorID); err != nil {
				return err
			}
			o.touch()
			return nil
		}
	}

	return newDecisionError(d.LineID, DecisionCodeLineNotFound, "Line not found in order")
}

// FinalizeApproval closes line-level decisions into a PO-level status and
// fulfillment percentage. Cancelled lines are excluded from the computation.
// An order with no decidable lines can never be finalized.
func (o *PurchaseOrder) FinalizeApproval(actorID uuid.UUID) error {
	if !o.Status.CanFinalize() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot finalize order in %s status", o.Status))
	}

	totalRequested := decimal.Zero
	totalApproved := decimal.Zero
	decidable := 0
	for idx := range o.Lines {
		line := &o.Lines[idx]
		if line.IsCancelled() {
			continue
		}
		decidable++
		if !line.IsDecided() {
			return shared.NewDomainError("UNDECIDED_LINES",
				fmt.Sprintf("Line %s has no decision applied", line.ID))
		}
		totalRequested = totalRequested.Add(line.RequestedQty)
		totalApproved = totalApproved.Add(line.ApprovedQty)
	}
	if decidable == 0 {
		return shared.NewDomainError("NO_LINES", "Cannot finalize order without decidable lines")
	}

	percentage := totalApproved.Div(totalRequested).Mul(decimal.NewFromInt(100)).Round(2)

	now := time.Now()
	o.FulfillmentPercentage = percentage
	if percentage.Equal(decimal.NewFromInt(100)) {
		o.Status = StatusApproved
	} else {
		o.Status = StatusPartiallyApproved
	}
	o.ApprovedBy = &actorID
	o.ApprovedAt = &now
	o.touch()

	o.AddDomainEvent(NewPurchaseOrderApprovedEvent(o))

	return nil
}

// Reject rejects a submitted order. A non-empty reason is required.
func (o *PurchaseOrder) Reject(actorID uuid.UUID, reason string) error {
	if !o.Status.CanTransitionTo(StatusRejected) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject order in %s status", o.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}

	now := time.Now()
	o.Status = StatusRejected
	o.RejectionReason = reason
	o.ApprovedBy = &actorID
	o.ApprovedAt = &now
	o.touch()

	o.AddDomainEvent(NewPurchaseOrderRejectedEvent(o, reason))

	return nil
}

// Cancel cancels the order from any active state. A non-empty reason is required.
func (o *PurchaseOrder) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(StatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	o.Status = StatusCancelled
	o.CancelledAt = &now
	o.RejectionReason = reason
	o.touch()

	o.AddDomainEvent(NewPurchaseOrderCancelledEvent(o, reason))

	return nil
}

// CancelLine cancels a single line. Once every line is cancelled the parent
// order cascades to cancelled with a system-supplied reason.
func (o *PurchaseOrder) CancelLine(lineID uuid.UUID, reason string) (cascaded bool, err error) {
	if o.Status.IsTerminal() {
		return false, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel lines on a %s order", o.Status))
	}

	var target *PurchaseOrderLine
	for idx := range o.Lines {
		if o.Lines[idx].ID == lineID {
			target = &o.Lines[idx]
			break
		}
	}
	if target == nil {
		return false, shared.NewDomainError("LINE_NOT_FOUND", "Line not found in order")
	}

	if err := target.Cancel(reason); err != nil {
		return false, err
	}
	o.recalculateTotals()
	o.touch()

	if o.allLinesCancelled() {
		now := time.Now()
		o.Status = StatusCancelled
		o.CancelledAt = &now
		o.RejectionReason = SystemCancelReason
		o.AddDomainEvent(NewPurchaseOrderCancelledEvent(o, SystemCancelReason))
		return true, nil
	}

	return false, nil
}

// MarkOrdered records that downstream fulfillment orders were generated
func (o *PurchaseOrder) MarkOrdered() error {
	if !o.Status.CanTransitionTo(StatusOrdered) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark order as ordered in %s status", o.Status))
	}
	o.Status = StatusOrdered
	o.touch()
	return nil
}

// Duplicate clones the order into a new draft. Quantities are kept while
// decisions, overrides and approval metadata are reset; stock snapshots are
// refreshed via the supplied lookup (nil entries leave the snapshot unset).
func (o *PurchaseOrder) Duplicate(poNumber string, requestedBy uuid.UUID, stockBySKU map[string]decimal.Decimal) (*PurchaseOrder, error) {
	clone, err := NewPurchaseOrder(o.BrandID, poNumber, o.SupplierName, requestedBy)
	if err != nil {
		return nil, err
	}
	clone.SupplierEmail = o.SupplierEmail
	clone.DistributorID = o.DistributorID
	clone.TaxAmount = o.TaxAmount
	clone.ShippingCost = o.ShippingCost
	clone.Notes = o.Notes

	for idx := range o.Lines {
		var fresh *decimal.Decimal
		if stock, ok := stockBySKU[o.Lines[idx].SKU]; ok {
			s := stock
			fresh = &s
		}
		clone.Lines = append(clone.Lines, *o.Lines[idx].ResetForDraft(clone.ID, fresh))
	}
	clone.recalculateTotals()

	return clone, nil
}

// GetLine returns a line by its ID
func (o *PurchaseOrder) GetLine(lineID uuid.UUID) *PurchaseOrderLine {
	for idx := range o.Lines {
		if o.Lines[idx].ID == lineID {
			return &o.Lines[idx]
		}
	}
	return nil
}

// BackorderedLines returns decided lines with outstanding backorder quantity
func (o *PurchaseOrder) BackorderedLines() []PurchaseOrderLine {
	lines := make([]PurchaseOrderLine, 0)
	for _, line := range o.Lines {
		if !line.IsCancelled() && line.NeedsBackorder() {
			lines = append(lines, line)
		}
	}
	return lines
}

// ApprovedLines returns decided lines with approved quantity to fulfill
func (o *PurchaseOrder) ApprovedLines() []PurchaseOrderLine {
	lines := make([]PurchaseOrderLine, 0)
	for _, line := range o.Lines {
		if !line.IsCancelled() && line.ApprovedQty.GreaterThan(decimal.Zero) {
			lines = append(lines, line)
		}
	}
	return lines
}

// IsFullyFulfilled returns true if every requested unit was approved
func (o *PurchaseOrder) IsFullyFulfilled() bool {
	return o.FulfillmentPercentage.Equal(decimal.NewFromInt(100))
}

// LineCount returns the number of lines in the order
func (o *PurchaseOrder) LineCount() int {
	return len(o.Lines)
}

// recalculateTotals recalculates the order totals from non-cancelled lines
func (o *PurchaseOrder) recalculateTotals() {
	subtotal := decimal.Zero
	for _, line := range o.Lines {
		if line.IsCancelled() {
			continue
		}
		subtotal = subtotal.Add(line.Amount)
	}
	o.Subtotal = subtotal
	o.TotalAmount = subtotal.Add(o.TaxAmount).Add(o.ShippingCost)
}

// allLinesCancelled checks if every line has been cancelled
func (o *PurchaseOrder) allLinesCancelled() bool {
	for _, line := range o.Lines {
		if !line.IsCancelled() {
			return false
		}
	}
	return len(o.Lines) > 0
}

func (o *PurchaseOrder) touch() {
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}
