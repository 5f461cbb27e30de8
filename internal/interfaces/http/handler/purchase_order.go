package handler

import (
	appprocurement "github.com/commercehub/backoffice/internal/application/procurement"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PurchaseOrderHandler exposes the purchase order lifecycle endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	service *appprocurement.PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(service *appprocurement.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{service: service}
}

// Create handles POST /api/v1/purchase-orders
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	brandID, err := getBrandID(c)
	if err != nil {
		h.Unauthorized(c, "Brand context required")
		return
	}
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor context required")
		return
	}

	var req appprocurement.CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), brandID, actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Submit handles POST /api/v1/purchase-orders/:id/submit
func (h *PurchaseOrderHandler) Submit(c *gin.Context) {
	brandID, actorID, orderID, ok := h.authAndOrderID(c)
	if !ok {
		return
	}

	resp, err := h.service.Submit(c.Request.Context(), brandID, actorID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Get handles GET /api/v1/purchase-orders/:id
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	brandID, err := getBrandID(c)
	if err != nil {
		h.Unauthorized(c, "Brand context required")
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid purchase order ID")
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), brandID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List handles GET /api/v1/purchase-orders
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	brandID, err := getBrandID(c)
	if err != nil {
		h.Unauthorized(c, "Brand context required")
		return
	}

	filter := appprocurement.ListFilter{
		Status:   c.Query("status"),
		Search:   c.Query("search"),
		OrderBy:  c.Query("order_by"),
		OrderDir: c.Query("order_dir"),
	}
	var page struct {
		Page     int `form:"page" binding:"omitempty,min=1"`
		PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
	}
	if err := c.ShouldBindQuery(&page); err != nil {
		h.BadRequest(c, "Invalid pagination parameters")
		return
	}
	filter.Page = page.Page
	filter.PageSize = page.PageSize
	if raw := c.Query("distributor_id"); raw != "" {
		distributorID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid distributor ID")
			return
		}
		filter.DistributorID = &distributorID
	}

	items, total, err := h.service.List(c.Request.Context(), brandID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	pageNum, pageSize := filter.Page, filter.PageSize
	if pageNum == 0 {
		pageNum = 1
	}
	if pageSize == 0 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, items, total, pageNum, pageSize)
}

// Reject handles POST /api/v1/purchase-orders/:id/reject
func (h *PurchaseOrderHandler) Reject(c *gin.Context) {
	brandID, actorID, orderID, ok := h.authAndOrderID(c)
	if !ok {
		return
	}

	var req appprocurement.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.Reject(c.Request.Context(), brandID, actorID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel handles POST /api/v1/purchase-orders/:id/cancel
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	brandID, actorID, orderID, ok := h.authAndOrderID(c)
	if !ok {
		return
	}

	var req appprocurement.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.Cancel(c.Request.Context(), brandID, actorID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CancelLine handles POST /api/v1/purchase-orders/:id/lines/:lineId/cancel
func (h *PurchaseOrderHandler) CancelLine(c *gin.Context) {
	brandID, actorID, orderID, ok := h.authAndOrderID(c)
	if !ok {
		return
	}
	lineID, err := uuid.Parse(c.Param("lineId"))
	if err != nil {
		h.BadRequest(c, "Invalid line ID")
		return
	}

	var req appprocurement.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.CancelLine(c.Request.Context(), brandID, actorID, orderID, lineID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Duplicate handles POST /api/v1/purchase-orders/:id/duplicate
func (h *PurchaseOrderHandler) Duplicate(c *gin.Context) {
	brandID, actorID, orderID, ok := h.authAndOrderID(c)
	if !ok {
		return
	}

	var req appprocurement.DuplicateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.Duplicate(c.Request.Context(), brandID, actorID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// History handles GET /api/v1/purchase-orders/:id/history
func (h *PurchaseOrderHandler) History(c *gin.Context) {
	brandID, err := getBrandID(c)
	if err != nil {
		h.Unauthorized(c, "Brand context required")
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid purchase order ID")
		return
	}

	entries, err := h.service.GetHistory(c.Request.Context(), brandID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// Summary handles GET /api/v1/purchase-orders/summary
func (h *PurchaseOrderHandler) Summary(c *gin.Context) {
	brandID, err := getBrandID(c)
	if err != nil {
		h.Unauthorized(c, "Brand context required")
		return
	}

	resp, err := h.service.GetStatusSummary(c.Request.Context(), brandID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// authAndOrderID pulls the auth context and the :id path parameter,
// writing the error response itself when any piece is missing
func (h *PurchaseOrderHandler) authAndOrderID(c *gin.Context) (brandID, actorID, orderID uuid.UUID, ok bool) {
	brandID, err := getBrandID(c)
	if err != nil {
		h.Unauthorized(c, "Brand context required")
		return uuid.Nil, uuid.Nil, uuid.Nil, false
	}
	actorID, err = getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor context required")
		return uuid.Nil, uuid.Nil, uuid.Nil, false
	}
	orderID, err = uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid purchase order ID")
		return uuid.Nil, uuid.Nil, uuid.Nil, false
	}
	return brandID, actorID, orderID, true
}
