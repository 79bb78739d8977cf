package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imyashkale/mcpdashboard/internal/models"
	"github.com/imyashkale/mcpdashboard/internal/queue"
	"github.com/imyashkale/mcpdashboard/internal/services"
	"github.com/imyashkale/mcpdashboard/internal/store"
)

// workflowRunner validates workflow requests and hands them to the job
// queue. Without a queue the workflow runs inline and the response carries
// the resulting state.
type workflowRunner struct {
	dashboard *services.DashboardService
	jobs      *queue.JobQueue
}

func (w workflowRunner) run(c *gin.Context, job *queue.WorkflowJob) {
	if err := w.dashboard.ValidateWorkflow(job); err != nil {
		respondError(c, err)
		return
	}

	if w.jobs == nil {
		if err := w.dashboard.ExecuteJob(c.Request.Context(), job); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, store.View(w.dashboard.Snapshot()))
		return
	}

	if err := w.jobs.Enqueue(job); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, models.AcceptedResponse{
		Status:   "accepted",
		Workflow: string(job.Kind),
		ServerId: job.ServerID,
	})
}
