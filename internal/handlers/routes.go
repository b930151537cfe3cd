package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sjperalta/rentdesk-api/internal/middleware"
	"github.com/sjperalta/rentdesk-api/internal/permission"
)

// RegisterRoutes mounts the public and authenticated API on the /api/v1 group
func (h *Handlers) RegisterRoutes(v1 *gin.RouterGroup, jwtSecret string, evaluator permission.Evaluator) {
	// Health check (public)
	v1.GET("/health", h.Health.Index)

	protected := v1.Group("")
	protected.Use(middleware.Auth(jwtSecret))
	{
		requires := func(name string) gin.HandlerFunc {
			return middleware.RequirePermission(evaluator, name)
		}

		// Contracts
		protected.GET("/contracts", requires(permission.ViewReminders), h.Contract.Index)
		protected.GET("/contracts/:id", requires(permission.ViewReminders), h.Contract.Show)
		protected.GET("/contracts/:id/classification", requires(permission.ViewReminders), h.Contract.Classification)
		protected.GET("/contracts/:id/history", requires(permission.ViewReminders), h.Contract.History)
		protected.POST("/contracts/:id/recalculate", requires(permission.EditContract), h.Contract.Recalculate)
		protected.PATCH("/contracts/:id/schedule", requires(permission.EditContract), h.Contract.UpdateSchedule)
		protected.POST("/contracts/:id/submit", requires(permission.EditContract), h.Contract.Submit)
		protected.POST("/contracts/:id/approve", requires(permission.ApproveContract), h.Contract.Approve)
		protected.POST("/contracts/:id/reject", requires(permission.ApproveContract), h.Contract.Reject)
		protected.POST("/contracts/:id/terminate", requires(permission.TerminateContract), h.Contract.Terminate)
		protected.POST("/contracts/:id/renew", requires(permission.RenewContract), h.Contract.Renew)

		// Reminders
		protected.GET("/reminders", requires(permission.ViewReminders), h.Reminder.Index)
		protected.POST("/reminders/dispatch", requires(permission.SendNotification), h.Reminder.Dispatch)

		// Templates
		branch := protected.Group("/branches/:id", middleware.RequireBranchAccess("id"))
		{
			branch.GET("/templates", requires(permission.EditTemplates), h.Template.Show)
			branch.PUT("/templates", requires(permission.EditTemplates), h.Template.Update)
		}
		protected.POST("/templates/preview", requires(permission.EditTemplates), h.Template.Preview)

		// Permissions
		protected.GET("/permissions", h.Permission.Index)
		protected.GET("/permissions/check", h.Permission.Check)

		// Jobs
		protected.GET("/jobs/status", h.Job.Status)
		protected.POST("/jobs/sweep", requires(permission.SendNotification), h.Job.TriggerSweep)
	}
}
