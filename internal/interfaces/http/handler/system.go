package handler

import (
	"github.com/gin-gonic/gin"
)

// SystemHandler serves liveness and readiness probes.
type SystemHandler struct {
	BaseHandler
	version string
	ready   func() error
}

// NewSystemHandler creates a new SystemHandler. The ready probe reports
// whether the database connection is healthy.
func NewSystemHandler(version string, ready func() error) *SystemHandler {
	return &SystemHandler{version: version, ready: ready}
}

// RegisterRoutes mounts the probe endpoints on the API group.
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
	rg.GET("/ready", h.Ready)
}

// Health reports process liveness.
func (h *SystemHandler) Health(c *gin.Context) {
	h.Success(c, gin.H{"status": "ok", "version": h.version})
}

// Ready reports downstream readiness.
func (h *SystemHandler) Ready(c *gin.Context) {
	if h.ready != nil {
		if err := h.ready(); err != nil {
			c.JSON(503, gin.H{"status": "unavailable"})
			return
		}
	}
	h.Success(c, gin.H{"status": "ready"})
}
