package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/sjperalta/rentdesk-api/internal/billing"
	"github.com/sjperalta/rentdesk-api/internal/services"
	"github.com/sjperalta/rentdesk-api/pkg/logger"
)

// Handlers holds all handler instances
type Handlers struct {
	Health     *HealthHandler
	Contract   *ContractHandler
	Reminder   *ReminderHandler
	Template   *TemplateHandler
	Permission *PermissionHandler
	Job        *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:     NewHealthHandler(),
		Contract:   NewContractHandler(svcs.Contract, svcs.Audit, svcs.Job),
		Reminder:   NewReminderHandler(svcs.Reminder, svcs.Job),
		Template:   NewTemplateHandler(svcs.Template),
		Permission: NewPermissionHandler(svcs.Permission),
		Job:        NewJobHandler(svcs.Job),
	}
}

// respondError maps service errors to HTTP statuses
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrEmptyTemplate),
		errors.Is(err, billing.ErrInvalidDateInput):
		status = http.StatusBadRequest
	case errors.Is(err, billing.ErrUnknownPlanOrContractType):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrDispatchDisabled),
		errors.Is(err, services.ErrWorkerStopped):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "path", c.FullPath(), "error", err)
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// resolveToday reads an explicit date or falls back to today in the service timezone
func resolveToday(value string, jobs *services.JobService) (time.Time, error) {
	if value == "" {
		return jobs.Today(), nil
	}
	return billing.ParseDate(value)
}
