package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SystemHandler exposes health and readiness endpoints
type SystemHandler struct {
	BaseHandler
	pinger  Pinger
	started time.Time
	version string
}

// Pinger reports backend connectivity
type Pinger interface {
	Ping() error
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(pinger Pinger, version string) *SystemHandler {
	return &SystemHandler{
		pinger:  pinger,
		started: time.Now(),
		version: version,
	}
}

// Health handles GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.started).String(),
	})
}

// Ready handles GET /ready; fails when the database is unreachable
func (h *SystemHandler) Ready(c *gin.Context) {
	if h.pinger != nil {
		if err := h.pinger.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
				"reason": "database unreachable",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
