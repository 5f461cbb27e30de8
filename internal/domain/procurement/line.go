package procurement

import (
	"fmt"
	"time"

	"github.com/commercehub/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Decision error codes surfaced per line during bulk approval
const (
	DecisionCodeAmountMismatch    = "AMOUNT_MISMATCH"
	DecisionCodeInsufficientStock = "INSUFFICIENT_STOCK"
	DecisionCodeMissingOverride   = "MISSING_OVERRIDE_REASON"
	DecisionCodeNegativeQuantity  = "NEGATIVE_QUANTITY"
	DecisionCodeLineNotFound      = "LINE_NOT_FOUND"
	DecisionCodeLineNotDecidable  = "LINE_NOT_DECIDABLE"
)

// DecisionError is a per-line validation failure. Bulk approval collects
// these and keeps processing sibling lines.
type DecisionError struct {
	LineID  uuid.UUID `json:"line_id"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// Error implements the error interface
func (e *DecisionError) Error() string {
	return e.Message
}

func newDecisionError(lineID uuid.UUID, code, message string) *DecisionError {
	return &DecisionError{LineID: lineID, Code: code, Message: message}
}

// LineDecision is a proposed per-line approval split
type LineDecision struct {
	LineID          uuid.UUID       `json:"line_id"`
	ApprovedQty     decimal.Decimal `json:"approved_qty"`
	BackorderQty    decimal.Decimal `json:"backorder_qty"`
	RejectedQty     decimal.Decimal `json:"rejected_qty"`
	OverrideApplied bool            `json:"override_applied"`
	OverrideReason  string          `json:"override_reason,omitempty"`
	Notes           string          `json:"notes,omitempty"`
}

// DeriveLineStatus computes the line status from a decided quantity split.
// This is the single derivation used by every decision path; precedence is
// fully rejected, then fully backordered, then fully approved, then mixed.
func DeriveLineStatus(approved, backorder, rejected, requested decimal.Decimal) LineStatus {
	switch {
	case rejected.Equal(requested):
		return LineStatusRejected
	case backorder.Equal(requested):
		return LineStatusBackordered
	case approved.Equal(requested):
		return LineStatusApproved
	default:
		return LineStatusPartiallyApproved
	}
}

// PurchaseOrderLine represents a line item in a purchase order.
// The reconciliation invariant approved+backorder+rejected == requested
// must hold after every applied decision.
type PurchaseOrderLine struct {
	ID             uuid.UUID        `gorm:"type:uuid;primary_key"`
	OrderID        uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID        `gorm:"type:uuid;not null"`
	SKU            string           `gorm:"type:varchar(50);not null"`
	ProductName    string           `gorm:"type:varchar(200);not null"`
	RequestedQty   decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	ApprovedQty    decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	BackorderQty   decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	RejectedQty    decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	AvailableStock *decimal.Decimal `gorm:"type:decimal(18,4)"` // stock snapshot at decision time
	UnitPrice      decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Amount         decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Status         LineStatus       `gorm:"type:varchar(20);not null;default:'pending'"`
	Override       bool             `gorm:"not null;default:false"`
	OverrideBy     *uuid.UUID       `gorm:"type:uuid"`
	OverrideReason string           `gorm:"type:varchar(500)"`
	OverrideAt     *time.Time
	CancelReason   string `gorm:"type:varchar(500)"`
	Notes          string `gorm:"type:varchar(500)"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName returns the table name for GORM
func (PurchaseOrderLine) TableName() string {
	return "purchase_order_lines"
}

// NewPurchaseOrderLine creates a new undecided line
func NewPurchaseOrderLine(orderID, productID uuid.UUID, sku, productName string, requestedQty, unitPrice decimal.Decimal, availableStock *decimal.Decimal) (*PurchaseOrderLine, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if requestedQty.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Requested quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	return &PurchaseOrderLine{
		ID:             uuid.New(),
		OrderID:        orderID,
		ProductID:      productID,
		SKU:            sku,
		ProductName:    productName,
		RequestedQty:   requestedQty,
		ApprovedQty:    decimal.Zero,
		BackorderQty:   decimal.Zero,
		RejectedQty:    decimal.Zero,
		AvailableStock: availableStock,
		UnitPrice:      unitPrice,
		Amount:         requestedQty.Mul(unitPrice),
		Status:         LineStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// ValidateDecision checks a proposed decision against the line without
// mutating it. The override permission itself is checked by the caller;
// this validates arithmetic, stock sufficiency and the override reason.
func (l *PurchaseOrderLine) ValidateDecision(d LineDecision) *DecisionError {
	if l.Status == LineStatusCancelled {
		return newDecisionError(l.ID, DecisionCodeLineNotDecidable, "Line has been cancelled")
	}

	if d.ApprovedQty.IsNegative() || d.BackorderQty.IsNegative() || d.RejectedQty.IsNegative() {
		return newDecisionError(l.ID, DecisionCodeNegativeQuantity, "Quantities cannot be negative")
	}

	total := d.ApprovedQty.Add(d.BackorderQty).Add(d.RejectedQty)
	if !total.Equal(l.RequestedQty) {
		return newDecisionError(l.ID, DecisionCodeAmountMismatch,
			fmt.Sprintf("Approved, backorder and rejected quantities must total %s, got %s",
				l.RequestedQty.String(), total.String()))
	}

	if !d.OverrideApplied && l.AvailableStock != nil && d.ApprovedQty.GreaterThan(*l.AvailableStock) {
		return newDecisionError(l.ID, DecisionCodeInsufficientStock,
			fmt.Sprintf("Approved quantity %s exceeds available stock %s",
				d.ApprovedQty.String(), l.AvailableStock.String()))
	}

	if d.OverrideApplied && d.OverrideReason == "" {
		return newDecisionError(l.ID, DecisionCodeMissingOverride, "Override reason is required when overriding stock")
	}

	return nil
}

// ApplyDecision validates and applies a decision, deriving the line status
func (l *PurchaseOrderLine) ApplyDecision(d LineDecision, actorID uuid.UUID) *DecisionError {
	if err := l.ValidateDecision(d); err != nil {
		return err
	}

	now := time.Now()
	l.ApprovedQty = d.ApprovedQty
	l.BackorderQty = d.BackorderQty
	l.RejectedQty = d.RejectedQty
	l.Status = DeriveLineStatus(d.ApprovedQty, d.BackorderQty, d.RejectedQty, l.RequestedQty)
	l.Override = d.OverrideApplied
	if d.OverrideApplied {
		l.OverrideBy = &actorID
		l.OverrideReason = d.OverrideReason
		l.OverrideAt = &now
	} else {
		l.OverrideBy = nil
		l.OverrideReason = ""
		l.OverrideAt = nil
	}
	if d.Notes != "" {
		l.Notes = d.Notes
	}
	l.UpdatedAt = now

	return nil
}

// Cancel cancels the line and zeroes any prior decision
func (l *PurchaseOrderLine) Cancel(reason string) error {
	if l.Status == LineStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Line is already cancelled")
	}

	l.Status = LineStatusCancelled
	l.CancelReason = reason
	l.ApprovedQty = decimal.Zero
	l.BackorderQty = decimal.Zero
	l.RejectedQty = decimal.Zero
	l.UpdatedAt = time.Now()

	return nil
}

// IsCancelled returns true if the line has been cancelled
func (l *PurchaseOrderLine) IsCancelled() bool {
	return l.Status == LineStatusCancelled
}

// IsDecided returns true once a decision has been applied
func (l *PurchaseOrderLine) IsDecided() bool {
	return l.Status.IsDecided()
}

// NeedsBackorder returns true if the applied decision left unfulfilled quantity
func (l *PurchaseOrderLine) NeedsBackorder() bool {
	return l.BackorderQty.GreaterThan(decimal.Zero)
}

// ResetForDraft clears decision state so the line can re-enter a draft order
func (l *PurchaseOrderLine) ResetForDraft(newOrderID uuid.UUID, freshStock *decimal.Decimal) *PurchaseOrderLine {
	now := time.Now()
	return &PurchaseOrderLine{
		ID:             uuid.New(),
		OrderID:        newOrderID,
		ProductID:      l.ProductID,
		SKU:            l.SKU,
		ProductName:    l.ProductName,
		RequestedQty:   l.RequestedQty,
		ApprovedQty:    decimal.Zero,
		BackorderQty:   decimal.Zero,
		RejectedQty:    decimal.Zero,
		AvailableStock: freshStock,
		UnitPrice:      l.UnitPrice,
		Amount:         l.RequestedQty.Mul(l.UnitPrice),
		Status:         LineStatusPending,
		Notes:          l.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
