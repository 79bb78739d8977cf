package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imyashkale/mcpdashboard/internal/models"
	"github.com/imyashkale/mcpdashboard/internal/queue"
	"github.com/imyashkale/mcpdashboard/internal/services"
)

// ServerHandler handles MCP server registration and connection requests
type ServerHandler struct {
	dashboard *services.DashboardService
	workflows workflowRunner
}

// NewServerHandler creates a new server handler. jobs may be nil.
func NewServerHandler(dashboard *services.DashboardService, jobs *queue.JobQueue) *ServerHandler {
	return &ServerHandler{
		dashboard: dashboard,
		workflows: workflowRunner{dashboard: dashboard, jobs: jobs},
	}
}

// List handles listing every registered server
func (h *ServerHandler) List(c *gin.Context) {
	servers := h.dashboard.Snapshot().Servers
	if servers == nil {
		servers = []models.ServerDescriptor{}
	}

	c.JSON(http.StatusOK, models.ServerListResponse{
		Servers: servers,
		Total:   len(servers),
	})
}

// Create handles the add-server form
func (h *ServerHandler) Create(c *gin.Context) {
	var req models.CreateServerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	server := h.dashboard.AddServer(req)

	c.JSON(http.StatusCreated, server)
}

// Delete queues the remove workflow
func (h *ServerHandler) Delete(c *gin.Context) {
	h.workflows.run(c, &queue.WorkflowJob{Kind: queue.WorkflowRemove, ServerID: c.Param("id")})
}

// Connect queues the connect workflow
func (h *ServerHandler) Connect(c *gin.Context) {
	h.workflows.run(c, &queue.WorkflowJob{Kind: queue.WorkflowConnect, ServerID: c.Param("id")})
}

// Disconnect queues the disconnect workflow
func (h *ServerHandler) Disconnect(c *gin.Context) {
	h.workflows.run(c, &queue.WorkflowJob{Kind: queue.WorkflowDisconnect, ServerID: c.Param("id")})
}

// SetActive selects the active server, or clears it for a null id
func (h *ServerHandler) SetActive(c *gin.Context) {
	var req models.SetActiveServerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	state, err := h.dashboard.SetActiveServer(req.Id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"activeServerId": state.ActiveServerId})
}
