package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/rentdesk-api/internal/middleware"
	"github.com/sjperalta/rentdesk-api/internal/services"
)

type JobHandler struct {
	jobService *services.JobService
}

func NewJobHandler(jobSvc *services.JobService) *JobHandler {
	return &JobHandler{
		jobService: jobSvc,
	}
}

// Status returns the current worker status
// @Summary Get background job status
// @Description Worker statistics and the outcome of the last scheduled reminder sweep
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /jobs/status [get]
func (h *JobHandler) Status(c *gin.Context) {
	status := h.jobService.GetStatus()
	c.JSON(http.StatusOK, status)
}

// TriggerSweep queues the daily sweep outside its schedule
// @Summary Trigger reminder sweep
// @Description Queue the dispatching sweep for today on the background worker. Branch-bound accounts sweep only their own branch.
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 202 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /jobs/sweep [post]
func (h *JobHandler) TriggerSweep(c *gin.Context) {
	if err := h.jobService.TriggerSweep(scopeBranch(middleware.GetActor(c), 0)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
