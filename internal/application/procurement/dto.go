package procurement

import (
	"time"

	"github.com/commercehub/backoffice/internal/domain/procurement"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/shopspring/decimal"
)

// CreateLineRequest is one requested line on a new purchase order
type CreateLineRequest struct {
	ProductID    uuid.UUID       `json:"product_id" binding:"required"`
	SKU          string          `json:"sku" binding:"required,max=50"`
	ProductName  string          `json:"product_name" binding:"required,max=200"`
	RequestedQty decimal.Decimal `json:"requested_qty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
}

// CreatePurchaseOrderRequest creates a draft purchase order
type CreatePurchaseOrderRequest struct {
	PONumber             string              `json:"po_number" binding:"omitempty,max=50"`
	SupplierName         string              `json:"supplier_name" binding:"required,max=200"`
	SupplierEmail        string              `json:"supplier_email" binding:"omitempty,email"`
	DistributorID        *uuid.UUID          `json:"distributor_id"`
	Lines                []CreateLineRequest `json:"lines" binding:"required,min=1,dive"`
	TaxAmount            decimal.Decimal     `json:"tax_amount"`
	ShippingCost         decimal.Decimal     `json:"shipping_cost"`
	ExpectedDeliveryDate *time.Time          `json:"expected_delivery_date"`
	Notes                string              `json:"notes"`
}

// LineDecisionRequest is one proposed per-line approval split
type LineDecisionRequest struct {
	LineID          uuid.UUID       `json:"line_id" binding:"required"`
	ApprovedQty     decimal.Decimal `json:"approved_qty"`
	BackorderQty    decimal.Decimal `json:"backorder_qty"`
	RejectedQty     decimal.Decimal `json:"rejected_qty"`
	OverrideApplied bool            `json:"override_applied"`
	OverrideReason  string          `json:"override_reason"`
	Notes           string          `json:"notes"`
}

// ToDomain converts the request into a domain decision
func (r LineDecisionRequest) ToDomain() procurement.LineDecision {
	var d procurement.LineDecision
	copier.Copy(&d, &r)
	return d
}

// BulkApproveRequest applies decisions to a batch of lines
type BulkApproveRequest struct {
	Decisions []LineDecisionRequest `json:"decisions" binding:"required,min=1,dive"`
	Comments  string                `json:"comments"`
}

// ApproveCompleteRequest finalizes line decisions into a PO-level
// status. CreateOrders defaults to true; callers set it to false to
// finalize the approval without generating fulfillment orders yet.
type ApproveCompleteRequest struct {
	CreateOrders *bool  `json:"create_orders"`
	Comments     string `json:"comments"`
}

// ShouldCreateOrders reports whether fulfillment order generation was
// requested, defaulting to true when the flag is omitted
func (r ApproveCompleteRequest) ShouldCreateOrders() bool {
	return r.CreateOrders == nil || *r.CreateOrders
}

// RejectRequest rejects a submitted order
type RejectRequest struct {
	Comments string `json:"comments" binding:"required"`
}

// CancelRequest cancels an order or a single line
type CancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// DuplicateRequest clones an order into a new draft
type DuplicateRequest struct {
	PONumber string `json:"po_number"`
}

// LineResponse is the API view of a purchase order line
type LineResponse struct {
	ID             uuid.UUID        `json:"id"`
	ProductID      uuid.UUID        `json:"product_id"`
	SKU            string           `json:"sku"`
	ProductName    string           `json:"product_name"`
	RequestedQty   decimal.Decimal  `json:"requested_qty"`
	ApprovedQty    decimal.Decimal  `json:"approved_qty"`
	BackorderQty   decimal.Decimal  `json:"backorder_qty"`
	RejectedQty    decimal.Decimal  `json:"rejected_qty"`
	AvailableStock *decimal.Decimal `json:"available_stock,omitempty"`
	UnitPrice      decimal.Decimal  `json:"unit_price"`
	Amount         decimal.Decimal  `json:"amount"`
	Status         string           `json:"status"`
	Override       bool             `json:"override"`
	OverrideReason string           `json:"override_reason,omitempty"`
	CancelReason   string           `json:"cancel_reason,omitempty"`
	Notes          string           `json:"notes,omitempty"`
}

// PurchaseOrderResponse is the API view of a purchase order
type PurchaseOrderResponse struct {
	ID                    uuid.UUID       `json:"id"`
	BrandID               uuid.UUID       `json:"brand_id"`
	PONumber              string          `json:"po_number"`
	DistributorID         *uuid.UUID      `json:"distributor_id,omitempty"`
	SupplierName          string          `json:"supplier_name"`
	SupplierEmail         string          `json:"supplier_email,omitempty"`
	RequestedBy           uuid.UUID       `json:"requested_by"`
	Lines                 []LineResponse  `json:"lines"`
	Subtotal              decimal.Decimal `json:"subtotal"`
	TaxAmount             decimal.Decimal `json:"tax_amount"`
	ShippingCost          decimal.Decimal `json:"shipping_cost"`
	TotalAmount           decimal.Decimal `json:"total_amount"`
	Status                string          `json:"status"`
	FulfillmentPercentage decimal.Decimal `json:"fulfillment_percentage"`
	ApprovedBy            *uuid.UUID      `json:"approved_by,omitempty"`
	ApprovedAt            *time.Time      `json:"approved_at,omitempty"`
	RejectionReason       string          `json:"rejection_reason,omitempty"`
	ExpectedDeliveryDate  *time.Time      `json:"expected_delivery_date,omitempty"`
	SubmittedAt           *time.Time      `json:"submitted_at,omitempty"`
	CancelledAt           *time.Time      `json:"cancelled_at,omitempty"`
	Notes                 string          `json:"notes,omitempty"`
	Version               int             `json:"version"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// ToLineResponse converts a domain line to its API view
func ToLineResponse(line *procurement.PurchaseOrderLine) LineResponse {
	var resp LineResponse
	copier.Copy(&resp, line)
	resp.Status = line.Status.String()
	return resp
}

// ToPurchaseOrderResponse converts a domain order to its API view
func ToPurchaseOrderResponse(order *procurement.PurchaseOrder) PurchaseOrderResponse {
	var resp PurchaseOrderResponse
	copier.Copy(&resp, order)
	resp.Status = order.Status.String()
	resp.Version = order.Version
	resp.Lines = make([]LineResponse, 0, len(order.Lines))
	for idx := range order.Lines {
		resp.Lines = append(resp.Lines, ToLineResponse(&order.Lines[idx]))
	}
	return resp
}

// BulkApproveResponse reports the partial-success result of a bulk
// decision batch: which lines were applied and which were refused
type BulkApproveResponse struct {
	Applied   []uuid.UUID                 `json:"applied"`
	Errors    []procurement.DecisionError `json:"errors"`
	Processed int                         `json:"processed"`
	Failed    int                         `json:"failed"`
	Message   string                      `json:"message"`
	Order     PurchaseOrderResponse       `json:"order"`
}

// ApproveCompleteResponse pairs the finalized order with the outcome of
// the best-effort side-effect steps
type ApproveCompleteResponse struct {
	Order             PurchaseOrderResponse `json:"order"`
	Outcome           SideEffectOutcome     `json:"outcome"`
	OrdersCreated     int                   `json:"orders_created"`
	BackordersCreated int                   `json:"backorders_created"`
	Message           string                `json:"message"`
}

// CancelLineResponse reports whether cancelling the line cascaded to the
// parent order
type CancelLineResponse struct {
	Order    PurchaseOrderResponse `json:"order"`
	Cascaded bool                  `json:"cascaded"`
}

// HistoryEntryResponse is the API view of one audit entry
type HistoryEntryResponse struct {
	ID                uuid.UUID `json:"id"`
	ActorID           uuid.UUID `json:"actor_id"`
	ActorName         string    `json:"actor_name,omitempty"`
	Action            string    `json:"action"`
	Comments          string    `json:"comments,omitempty"`
	AffectedLineIDs   []string  `json:"affected_line_ids,omitempty"`
	OverrideApplied   bool      `json:"override_applied"`
	GeneratedOrderIDs []string  `json:"generated_order_ids,omitempty"`
	BackorderIDs      []string  `json:"backorder_ids,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// ToHistoryEntryResponse converts an audit entry to its API view
func ToHistoryEntryResponse(entry *procurement.ApprovalHistoryEntry) HistoryEntryResponse {
	var resp HistoryEntryResponse
	copier.Copy(&resp, entry)
	resp.Action = string(entry.Action)
	return resp
}

// BackorderResponse is the API view of a backorder
type BackorderResponse struct {
	ID           uuid.UUID       `json:"id"`
	OrderID      uuid.UUID       `json:"order_id"`
	LineID       uuid.UUID       `json:"line_id"`
	ProductID    uuid.UUID       `json:"product_id"`
	SKU          string          `json:"sku"`
	Quantity     decimal.Decimal `json:"quantity"`
	ExpectedDate *time.Time      `json:"expected_date,omitempty"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToBackorderResponse converts a backorder to its API view
func ToBackorderResponse(b *procurement.Backorder) BackorderResponse {
	var resp BackorderResponse
	copier.Copy(&resp, b)
	resp.Status = string(b.Status)
	return resp
}

// StatusSummaryResponse reports order counts per workflow status
type StatusSummaryResponse struct {
	Counts map[string]int64 `json:"counts"`
	Total  int64            `json:"total"`
}

// ListFilter narrows and paginates order listings
type ListFilter struct {
	Page          int        `json:"page"`
	PageSize      int        `json:"page_size"`
	Status        string     `json:"status"`
	DistributorID *uuid.UUID `json:"distributor_id"`
	Search        string     `json:"search"`
	OrderBy       string     `json:"order_by"`
	OrderDir      string     `json:"order_dir"`
}
