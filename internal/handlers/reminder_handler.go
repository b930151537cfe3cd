package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/rentdesk-api/internal/middleware"
	"github.com/sjperalta/rentdesk-api/internal/services"
)

type ReminderHandler struct {
	reminderService *services.ReminderService
	jobService      *services.JobService
}

func NewReminderHandler(reminderService *services.ReminderService, jobService *services.JobService) *ReminderHandler {
	return &ReminderHandler{reminderService: reminderService, jobService: jobService}
}

// DispatchRequest selects the day and branch of a dispatching sweep
type DispatchRequest struct {
	Today    string `json:"today"`
	BranchID uint   `json:"branch_id"`
}

// @Summary Reminder List
// @Description Classify every non-terminated contract for a day, ordered by next payment date. Nothing is sent or stored: missing dates are derived in memory and expiry is left for the dispatching sweeps to record.
// @Tags Reminders
// @Produce json
// @Param today query string false "Reference date (YYYY-MM-DD)"
// @Param branch_id query int false "Branch filter (top accounts only)"
// @Success 200 {object} services.SweepResult
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /reminders [get]
func (h *ReminderHandler) Index(c *gin.Context) {
	today, err := resolveToday(c.Query("today"), h.jobService)
	if err != nil {
		respondError(c, err)
		return
	}
	branchID, _ := strconv.ParseUint(c.Query("branch_id"), 10, 32)

	result, err := h.reminderService.Sweep(c.Request.Context(), services.SweepOptions{
		Today:    today,
		BranchID: scopeBranch(middleware.GetActor(c), uint(branchID)),
		ReadOnly: true,
		Trigger:  services.TriggerManual,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary Dispatch Reminders
// @Description Run the sweep and send payment and renewal reminders. Each contract is notified at most once per reason and day.
// @Tags Reminders
// @Accept json
// @Produce json
// @Param request body DispatchRequest false "Day and branch"
// @Success 200 {object} services.SweepResult
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Security BearerAuth
// @Router /reminders/dispatch [post]
func (h *ReminderHandler) Dispatch(c *gin.Context) {
	var req DispatchRequest
	if c.Request.ContentLength != 0 {
		if err := BindNestedOrFlat(c, "dispatch", &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	today, err := resolveToday(req.Today, h.jobService)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.reminderService.Sweep(c.Request.Context(), services.SweepOptions{
		Today:    today,
		BranchID: scopeBranch(middleware.GetActor(c), req.BranchID),
		Dispatch: true,
		Trigger:  services.TriggerManual,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
