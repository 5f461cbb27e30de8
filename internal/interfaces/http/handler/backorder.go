package handler

import (
	appprocurement "github.com/commercehub/backoffice/internal/application/procurement"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BackorderHandler exposes backorder read endpoints
type BackorderHandler struct {
	BaseHandler
	manager *appprocurement.BackorderManager
}

// NewBackorderHandler creates a new BackorderHandler
func NewBackorderHandler(manager *appprocurement.BackorderManager) *BackorderHandler {
	return &BackorderHandler{manager: manager}
}

// ListOpen handles GET /api/v1/backorders
func (h *BackorderHandler) ListOpen(c *gin.Context) {
	brandID, err := getBrandID(c)
	if err != nil {
		h.Unauthorized(c, "Brand context required")
		return
	}

	var page struct {
		Page     int `form:"page" binding:"omitempty,min=1"`
		PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
	}
	if err := c.ShouldBindQuery(&page); err != nil {
		h.BadRequest(c, "Invalid pagination parameters")
		return
	}

	items, total, err := h.manager.ListOpen(c.Request.Context(), brandID, page.Page, page.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	pageNum, pageSize := page.Page, page.PageSize
	if pageNum == 0 {
		pageNum = 1
	}
	if pageSize == 0 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, items, total, pageNum, pageSize)
}

// Resolve handles POST /api/v1/backorders/:id/resolve
func (h *BackorderHandler) Resolve(c *gin.Context) {
	brandID, backorderID, ok := h.auth(c)
	if !ok {
		return
	}

	resp, err := h.manager.Resolve(c.Request.Context(), brandID, backorderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel handles POST /api/v1/backorders/:id/cancel
func (h *BackorderHandler) Cancel(c *gin.Context) {
	brandID, backorderID, ok := h.auth(c)
	if !ok {
		return
	}

	var req appprocurement.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.manager.Cancel(c.Request.Context(), brandID, backorderID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *BackorderHandler) auth(c *gin.Context) (brandID, backorderID uuid.UUID, ok bool) {
	brandID, err := getBrandID(c)
	if err != nil {
		h.Unauthorized(c, "Brand context required")
		return uuid.Nil, uuid.Nil, false
	}
	backorderID, err = uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid backorder ID")
		return uuid.Nil, uuid.Nil, false
	}
	return brandID, backorderID, true
}
