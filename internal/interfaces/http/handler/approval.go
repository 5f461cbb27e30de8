package handler

import (
	appprocurement "github.com/commercehub/backoffice/internal/application/procurement"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ApprovalHandler exposes the line decision and finalization endpoints
type ApprovalHandler struct {
	BaseHandler
	service *appprocurement.ApprovalService
}

// NewApprovalHandler creates a new ApprovalHandler
func NewApprovalHandler(service *appprocurement.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{service: service}
}

// BulkApprove handles POST /api/v1/purchase-orders/:id/lines/bulk-approve.
// It records per-line decisions without changing the order status;
// refused decisions are reported alongside the applied ones.
func (h *ApprovalHandler) BulkApprove(c *gin.Context) {
	brandID, actorID, orderID, ok := h.auth(c)
	if !ok {
		return
	}

	var req appprocurement.BulkApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.BulkApproveLines(c.Request.Context(), brandID, actorID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ApproveComplete handles POST /api/v1/purchase-orders/:id/approve-complete.
// This is the only endpoint that moves a submitted order to a final
// approval status.
func (h *ApprovalHandler) ApproveComplete(c *gin.Context) {
	brandID, actorID, orderID, ok := h.auth(c)
	if !ok {
		return
	}

	var req appprocurement.ApproveCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.ApproveComplete(c.Request.Context(), brandID, actorID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *ApprovalHandler) auth(c *gin.Context) (brandID, actorID, orderID uuid.UUID, ok bool) {
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
