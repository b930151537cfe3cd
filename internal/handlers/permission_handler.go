package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/rentdesk-api/internal/middleware"
	"github.com/sjperalta/rentdesk-api/internal/permission"
)

type PermissionHandler struct {
	evaluator permission.Evaluator
}

func NewPermissionHandler(evaluator permission.Evaluator) *PermissionHandler {
	return &PermissionHandler{evaluator: evaluator}
}

// @Summary Check Permission
// @Description Whether the caller may perform a named action
// @Tags Permissions
// @Produce json
// @Param name query string true "Permission name"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /permissions/check [get]
func (h *PermissionHandler) Check(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"permission": name,
		"allowed":    h.evaluator.HasPermission(middleware.GetActor(c), name),
	})
}

// @Summary List Permissions
// @Description Every permission the service gates on, with the caller's decision for each
// @Tags Permissions
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /permissions [get]
func (h *PermissionHandler) Index(c *gin.Context) {
	actor := middleware.GetActor(c)
	decisions := make([]gin.H, 0, len(permission.Catalog()))
	for _, name := range permission.Catalog() {
		decisions = append(decisions, gin.H{
			"permission": name,
			"allowed":    h.evaluator.HasPermission(actor, name),
		})
	}
	c.JSON(http.StatusOK, gin.H{"permissions": decisions})
}
