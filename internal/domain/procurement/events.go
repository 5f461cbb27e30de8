package procurement

import (
	"github.com/commercehub/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypePurchaseOrder = "PurchaseOrder"
	AggregateTypeBackorder     = "Backorder"
)

// Event type constants
const (
	EventTypePurchaseOrderCreated   = "PurchaseOrderCreated"
	EventTypePurchaseOrderSubmitted = "PurchaseOrderSubmitted"
	EventTypePurchaseOrderApproved  = "PurchaseOrderApproved"
	EventTypePurchaseOrderRejected  = "PurchaseOrderRejected"
	EventTypePurchaseOrderCancelled = "PurchaseOrderCancelled"
	EventTypeBackorderCreated       = "BackorderCreated"
)

// PurchaseOrderCreatedEvent is raised when a new purchase order is created
type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID `json:"order_id"`
	PONumber     string    `json:"po_number"`
	SupplierName string    `json:"supplier_name"`
	RequestedBy  uuid.UUID `json:"requested_by"`
}

// NewPurchaseOrderCreatedEvent creates a new PurchaseOrderCreatedEvent
func NewPurchaseOrderCreatedEvent(order *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCreated, AggregateTypePurchaseOrder, order.ID, order.BrandID),
		OrderID:         order.ID,
		PONumber:        order.PONumber,
		SupplierName:    order.SupplierName,
		RequestedBy:     order.RequestedBy,
	}
}

// EventType returns the event type name
func (e *PurchaseOrderCreatedEvent) EventType() string {
	return EventTypePurchaseOrderCreated
}

// PurchaseOrderSubmittedEvent is raised when an order enters the approval workflow
type PurchaseOrderSubmittedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	PONumber    string          `json:"po_number"`
	LineCount   int             `json:"line_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewPurchaseOrderSubmittedEvent creates a new PurchaseOrderSubmittedEvent
func NewPurchaseOrderSubmittedEvent(order *PurchaseOrder) *PurchaseOrderSubmittedEvent {
	return &PurchaseOrderSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderSubmitted, AggregateTypePurchaseOrder, order.ID, order.BrandID),
		OrderID:         order.ID,
		PONumber:        order.PONumber,
		LineCount:       order.LineCount(),
		TotalAmount:     order.TotalAmount,
	}
}

// EventType returns the event type name
func (e *PurchaseOrderSubmittedEvent) EventType() string {
	return EventTypePurchaseOrderSubmitted
}

// PurchaseOrderApprovedEvent is raised when line decisions are finalized
// into an approved or partially approved order
type PurchaseOrderApprovedEvent struct {
	shared.BaseDomainEvent
	OrderID               uuid.UUID       `json:"order_id"`
	PONumber              string          `json:"po_number"`
	Status                Status          `json:"status"`
	FulfillmentPercentage decimal.Decimal `json:"fulfillment_percentage"`
	ApprovedBy            *uuid.UUID      `json:"approved_by,omitempty"`
}

// NewPurchaseOrderApprovedEvent creates a new PurchaseOrderApprovedEvent
func NewPurchaseOrderApprovedEvent(order *PurchaseOrder) *PurchaseOrderApprovedEvent {
	return &PurchaseOrderApprovedEvent{
		BaseDomainEvent:       shared.NewBaseDomainEvent(EventTypePurchaseOrderApproved, AggregateTypePurchaseOrder, order.ID, order.BrandID),
		OrderID:               order.ID,
		PONumber:              order.PONumber,
		Status:                order.Status,
		FulfillmentPercentage: order.FulfillmentPercentage,
		ApprovedBy:            order.ApprovedBy,
	}
}

// EventType returns the event type name
func (e *PurchaseOrderApprovedEvent) EventType() string {
	return EventTypePurchaseOrderApproved
}

// PurchaseOrderRejectedEvent is raised when a submitted order is rejected
type PurchaseOrderRejectedEvent struct {
	shared.BaseDomainEvent
	OrderID  uuid.UUID `json:"order_id"`
	PONumber string    `json:"po_number"`
	Reason   string    `json:"reason"`
}

// NewPurchaseOrderRejectedEvent creates a new PurchaseOrderRejectedEvent
func NewPurchaseOrderRejectedEvent(order *PurchaseOrder, reason string) *PurchaseOrderRejectedEvent {
	return &PurchaseOrderRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderRejected, AggregateTypePurchaseOrder, order.ID, order.BrandID),
		OrderID:         order.ID,
		PONumber:        order.PONumber,
		Reason:          reason,
	}
}

// EventType returns the event type name
func (e *PurchaseOrderRejectedEvent) EventType() string {
	return EventTypePurchaseOrderRejected
}

// PurchaseOrderCancelledEvent is raised when an order is cancelled,
// directly or by cancelling its last remaining line
type PurchaseOrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID  uuid.UUID `json:"order_id"`
	PONumber string    `json:"po_number"`
	Reason   string    `json:"reason"`
}

// NewPurchaseOrderCancelledEvent creates a new PurchaseOrderCancelledEvent
func NewPurchaseOrderCancelledEvent(order *PurchaseOrder, reason string) *PurchaseOrderCancelledEvent {
	return &PurchaseOrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCancelled, AggregateTypePurchaseOrder, order.ID, order.BrandID),
		OrderID:         order.ID,
		PONumber:        order.PONumber,
		Reason:          reason,
	}
}

// EventType returns the event type name
func (e *PurchaseOrderCancelledEvent) EventType() string {
	return EventTypePurchaseOrderCancelled
}

// BackorderCreatedEvent is raised when under-fulfilled quantity is tracked
type BackorderCreatedEvent struct {
	shared.BaseDomainEvent
	BackorderID uuid.UUID       `json:"backorder_id"`
	OrderID     uuid.UUID       `json:"order_id"`
	LineID      uuid.UUID       `json:"line_id"`
	SKU         string          `json:"sku"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// NewBackorderCreatedEvent creates a new BackorderCreatedEvent
func NewBackorderCreatedEvent(b *Backorder) *BackorderCreatedEvent {
	return &BackorderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBackorderCreated, AggregateTypeBackorder, b.ID, b.BrandID),
		BackorderID:     b.ID,
		OrderID:         b.OrderID,
		LineID:          b.LineID,
		SKU:             b.SKU,
		Quantity:        b.Quantity,
	}
}

// EventType returns the event type name
func (e *BackorderCreatedEvent) EventType() string {
	return EventTypeBackorderCreated
}
