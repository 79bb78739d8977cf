package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imyashkale/mcpdashboard/internal/models"
	"github.com/imyashkale/mcpdashboard/internal/services"
)

// RemoteHandler exposes the backend's own view of servers and tools
type RemoteHandler struct {
	dashboard *services.DashboardService
}

// NewRemoteHandler creates a new remote handler
func NewRemoteHandler(dashboard *services.DashboardService) *RemoteHandler {
	return &RemoteHandler{dashboard: dashboard}
}

// Servers lists the servers the backend is connected to
func (h *RemoteHandler) Servers(c *gin.Context) {
	servers, err := h.dashboard.RemoteServers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if servers == nil {
		servers = []string{}
	}

	c.JSON(http.StatusOK, models.RemoteServersResponse{Servers: servers})
}

// Tools lists every tool the backend can call
func (h *RemoteHandler) Tools(c *gin.Context) {
	tools, err := h.dashboard.RemoteTools(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if tools == nil {
		tools = []models.ToolDescriptor{}
	}

	c.JSON(http.StatusOK, models.RemoteToolsResponse{Tools: tools})
}
