package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/rentdesk-api/internal/middleware"
	"github.com/sjperalta/rentdesk-api/internal/notify"
	"github.com/sjperalta/rentdesk-api/internal/services"
)

type TemplateHandler struct {
	templateService *services.TemplateService
}

func NewTemplateHandler(templateService *services.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// PreviewRequest renders a template either against a stored contract or explicit fields
type PreviewRequest struct {
	Kind       string            `json:"kind" binding:"required"`
	Template   string            `json:"template" binding:"required"`
	ContractID uint              `json:"contract_id"`
	Fields     map[string]string `json:"fields"`
}

// @Summary Get Branch Templates
// @Description Payment and renewal templates of a branch, with the token vocabulary of each
// @Tags Templates
// @Produce json
// @Param id path int true "Branch ID"
// @Success 200 {object} services.BranchTemplates
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /branches/{id}/templates [get]
func (h *TemplateHandler) Show(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	templates, err := h.templateService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

// @Summary Update Branch Templates
// @Description Replace the payment and/or renewal template. Unknown tokens are saved and reported as warnings.
// @Tags Templates
// @Accept json
// @Produce json
// @Param id path int true "Branch ID"
// @Param templates body services.TemplateUpdate true "Templates"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /branches/{id}/templates [put]
func (h *TemplateHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.TemplateUpdate
	if err := BindNestedOrFlat(c, "templates", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	templates, warnings, err := h.templateService.Update(c.Request.Context(), id, middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates, "warnings": warnings})
}

// @Summary Preview Template
// @Description Render a template without sending it
// @Tags Templates
// @Accept json
// @Produce json
// @Param request body PreviewRequest true "Template and values"
// @Success 200 {object} services.Preview
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /templates/preview [post]
func (h *TemplateHandler) Preview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kind, ok := notify.ParseKind(req.Kind)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown template kind " + req.Kind})
		return
	}

	if req.ContractID == 0 {
		c.JSON(http.StatusOK, h.templateService.Preview(kind, req.Template, req.Fields))
		return
	}

	preview, err := h.templateService.PreviewForContract(c.Request.Context(), kind, req.Template, req.ContractID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}
