package handler

import "github.com/gin-gonic/gin"

// RegisterRoutes wires the purchase order lifecycle endpoints
func (h *PurchaseOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/purchase-orders")
	{
		orders.POST("", h.Create)
		orders.GET("", h.List)
		orders.GET("/summary", h.Summary)
		orders.GET("/:id", h.Get)
		orders.POST("/:id/submit", h.Submit)
		orders.POST("/:id/reject", h.Reject)
		orders.POST("/:id/cancel", h.Cancel)
		orders.POST("/:id/duplicate", h.Duplicate)
		orders.GET("/:id/history", h.History)
		orders.POST("/:id/lines/:lineId/cancel", h.CancelLine)
	}
}

// RegisterRoutes wires the approval workflow endpoints
func (h *ApprovalHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/purchase-orders")
	{
		orders.POST("/:id/lines/bulk-approve", h.BulkApprove)
		orders.POST("/:id/approve-complete", h.ApproveComplete)
	}
}

// RegisterRoutes wires the backorder endpoints
func (h *BackorderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	backorders := rg.Group("/backorders")
	{
		backorders.GET("", h.ListOpen)
		backorders.POST("/:id/resolve", h.Resolve)
		backorders.POST("/:id/cancel", h.Cancel)
	}
}

// RegisterRoutes wires the health endpoints
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
	rg.GET("/ready", h.Ready)
}
