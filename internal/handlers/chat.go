package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imyashkale/mcpdashboard/internal/models"
	"github.com/imyashkale/mcpdashboard/internal/queue"
	"github.com/imyashkale/mcpdashboard/internal/services"
	"github.com/imyashkale/mcpdashboard/internal/store"
)

// ChatHandler handles the chat transcript
type ChatHandler struct {
	dashboard *services.DashboardService
	workflows workflowRunner
}

// NewChatHandler creates a new chat handler. jobs may be nil.
func NewChatHandler(dashboard *services.DashboardService, jobs *queue.JobQueue) *ChatHandler {
	return &ChatHandler{
		dashboard: dashboard,
		workflows: workflowRunner{dashboard: dashboard, jobs: jobs},
	}
}

// List returns the transcript as the chat view shows it
func (h *ChatHandler) List(c *gin.Context) {
	state := h.dashboard.Snapshot()

	c.JSON(http.StatusOK, models.MessageListResponse{
		Messages:     store.VisibleMessages(state),
		IsProcessing: state.IsProcessing,
	})
}

// Send queues the send-message workflow
func (h *ChatHandler) Send(c *gin.Context) {
	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	h.workflows.run(c, &queue.WorkflowJob{Kind: queue.WorkflowSendMessage, Text: req.Content})
}

// Clear resets the transcript to the welcome message
func (h *ChatHandler) Clear(c *gin.Context) {
	state := h.dashboard.ClearMessages()

	c.JSON(http.StatusOK, models.MessageListResponse{
		Messages:     store.VisibleMessages(state),
		IsProcessing: state.IsProcessing,
	})
}
