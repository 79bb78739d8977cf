package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/imyashkale/mcpdashboard/internal/services"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	dashboard *services.DashboardService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(dashboard *services.DashboardService) *HealthHandler {
	return &HealthHandler{dashboard: dashboard}
}

// Check handles the health check endpoint
func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":             "healthy",
		"timestamp":          time.Now(),
		"service":            "mcpdashboard",
		"gateway_configured": h.dashboard.GatewayConfigured(),
	})
}
