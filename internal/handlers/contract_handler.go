package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/rentdesk-api/internal/billing"
	"github.com/sjperalta/rentdesk-api/internal/lifecycle"
	"github.com/sjperalta/rentdesk-api/internal/middleware"
	"github.com/sjperalta/rentdesk-api/internal/models"
	"github.com/sjperalta/rentdesk-api/internal/repository"
	"github.com/sjperalta/rentdesk-api/internal/services"
)

type ContractHandler struct {
	contractService *services.ContractService
	auditService    *services.AuditService
	jobService      *services.JobService
}

func NewContractHandler(contractService *services.ContractService, auditService *services.AuditService, jobService *services.JobService) *ContractHandler {
	return &ContractHandler{contractService: contractService, auditService: auditService, jobService: jobService}
}

// ScheduleRequest changes the billing inputs of a contract
type ScheduleRequest struct {
	StartDate         *string `json:"start_date"`
	PaymentDayOfMonth *int    `json:"payment_day_of_month"`
	PaymentPlanID     *uint   `json:"payment_plan_id"`
	ContractTypeID    *uint   `json:"contract_type_id"`
}

// ClassificationResponse is a contract together with its labels for a given day
type ClassificationResponse struct {
	Contract       models.ContractResponse  `json:"contract"`
	Today          string                   `json:"today"`
	Classification lifecycle.Classification `json:"classification"`
}

// @Summary List Contracts
// @Description Get a paginated list of contracts of the caller's branch (or any branch for top accounts)
// @Tags Contracts
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search term"
// @Param branch_id query int false "Branch filter (top accounts only)"
// @Param state query string false "Comma separated lifecycle states"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /contracts [get]
func (h *ContractHandler) Index(c *gin.Context) {
	query := &repository.ContractQuery{ListQuery: repository.NewListQuery()}
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	query.SortBy = c.Query("sort_by")
	query.SortDir = c.Query("sort_dir")
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PerPage < 1 || query.PerPage > 100 {
		query.PerPage = 20
	}

	if raw := c.Query("state"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			state, ok := models.ParseLifecycleState(strings.TrimSpace(name))
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown state " + name})
				return
			}
			query.States = append(query.States, state)
		}
	}

	branchID, _ := strconv.ParseUint(c.Query("branch_id"), 10, 32)
	query.BranchID = scopeBranch(middleware.GetActor(c), uint(branchID))

	contracts, total, err := h.contractService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.ContractResponse, 0, len(contracts))
	for i := range contracts {
		responses = append(responses, contracts[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"contracts": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Contract
// @Description Get a contract by ID
// @Tags Contracts
// @Produce json
// @Param id path int true "Contract ID"
// @Success 200 {object} models.ContractResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{id} [get]
func (h *ContractHandler) Show(c *gin.Context) {
	contract, ok := h.loadContract(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract.ToResponse()})
}

// @Summary Classify Contract
// @Description Lifecycle state, urgency and style hint of a contract for a day (defaults to today)
// @Tags Contracts
// @Produce json
// @Param id path int true "Contract ID"
// @Param today query string false "Reference date (YYYY-MM-DD)"
// @Success 200 {object} ClassificationResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{id}/classification [get]
func (h *ContractHandler) Classification(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	today, err := resolveToday(c.Query("today"), h.jobService)
	if err != nil {
		respondError(c, err)
		return
	}

	contract, classification, err := h.contractService.Classify(c.Request.Context(), id, today)
	if err != nil {
		respondError(c, err)
		return
	}
	if !canAccessBranch(middleware.GetActor(c), contract.BranchID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "branch not accessible"})
		return
	}

	c.JSON(http.StatusOK, ClassificationResponse{
		Contract:       contract.ToResponse(),
		Today:          today.Format(models.DateLayout),
		Classification: classification,
	})
}

// @Summary Recalculate Contract Dates
// @Description Recompute the next payment date and contract end date from the billing inputs
// @Tags Contracts
// @Produce json
// @Param id path int true "Contract ID"
// @Success 200 {object} models.ContractResponse
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{id}/recalculate [post]
func (h *ContractHandler) Recalculate(c *gin.Context) {
	h.mutate(c, h.contractService.RecalculateDates)
}

// @Summary Change Contract Schedule
// @Description Update start date, payment day, payment plan or contract type and refresh stale dates
// @Tags Contracts
// @Accept json
// @Produce json
// @Param id path int true "Contract ID"
// @Param schedule body ScheduleRequest true "Schedule fields"
// @Success 200 {object} models.ContractResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{id}/schedule [patch]
func (h *ContractHandler) UpdateSchedule(c *gin.Context) {
	var req ScheduleRequest
	if err := BindNestedOrFlat(c, "schedule", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	change := services.ScheduleChange{
		PaymentDayOfMonth: req.PaymentDayOfMonth,
		PaymentPlanID:     req.PaymentPlanID,
		ContractTypeID:    req.ContractTypeID,
	}
	if req.StartDate != nil {
		start, err := billing.ParseDate(*req.StartDate)
		if err != nil {
			respondError(c, err)
			return
		}
		change.StartDate = &start
	}

	h.mutate(c, func(ctx context.Context, id, actorID uint) (*models.Contract, error) {
		return h.contractService.ApplyScheduleChange(ctx, id, actorID, change)
	})
}

// @Summary Submit Contract
// @Description Send a draft contract for review
// @Tags Contracts
// @Produce json
// @Param id path int true "Contract ID"
// @Success 200 {object} models.ContractResponse
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{id}/submit [post]
func (h *ContractHandler) Submit(c *gin.Context) {
	h.mutate(c, h.contractService.Submit)
}

// @Summary Approve Contract
// @Description Activate a contract under review
// @Tags Contracts
// @Produce json
// @Param id path int true "Contract ID"
// @Success 200 {object} models.ContractResponse
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{id}/approve [post]
func (h *ContractHandler) Approve(c *gin.Context) {
	h.mutate(c, h.contractService.Approve)
}

// @Summary Reject Contract
// @Description Return a contract under review to draft
// @Tags Contracts
// @Produce json
// @Param id path int true "Contract ID"
// @Success 200 {object} models.ContractResponse
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{id}/reject [post]
func (h *ContractHandler) Reject(c *gin.Context) {
	h.mutate(c, h.contractService.Reject)
}

// @Summary Terminate Contract
// @Description Explicitly end a contract. Terminated contracts never change again.
// @Tags Contracts
// @Produce json
// @Param id path int true "Contract ID"
// @Success 200 {object} models.ContractResponse
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{id}/terminate [post]
func (h *ContractHandler) Terminate(c *gin.Context) {
	h.mutate(c, h.contractService.Terminate)
}

// @Summary Renew Contract
// @Description Start a new term at the previous end date
// @Tags Contracts
// @Produce json
// @Param id path int true "Contract ID"
// @Success 200 {object} models.ContractResponse
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{id}/renew [post]
func (h *ContractHandler) Renew(c *gin.Context) {
	h.mutate(c, h.contractService.Renew)
}

// @Summary Contract History
// @Description Audit entries recorded for a contract, newest first
// @Tags Contracts
// @Produce json
// @Param id path int true "Contract ID"
// @Param limit query int false "Max entries" default(50)
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /contracts/{id}/history [get]
func (h *ContractHandler) History(c *gin.Context) {
	contract, ok := h.loadContract(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	entries, err := h.auditService.History(c.Request.Context(), "Contract", contract.ID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": entries})
}

// loadContract reads the :id contract and enforces branch access
func (h *ContractHandler) loadContract(c *gin.Context) (*models.Contract, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil, false
	}
	contract, err := h.contractService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if !canAccessBranch(middleware.GetActor(c), contract.BranchID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "branch not accessible"})
		return nil, false
	}
	return contract, true
}

func (h *ContractHandler) mutate(c *gin.Context, op func(ctx context.Context, id, actorID uint) (*models.Contract, error)) {
	current, ok := h.loadContract(c)
	if !ok {
		return
	}
	contract, err := op(c.Request.Context(), current.ID, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract.ToResponse()})
}

// scopeBranch pins branch-bound actors to their own branch
func scopeBranch(actor *models.Actor, requested uint) uint {
	if actor == nil || actor.IsTopAccount || actor.BranchID == 0 {
		return requested
	}
	return actor.BranchID
}

func canAccessBranch(actor *models.Actor, branchID uint) bool {
	if actor == nil {
		return false
	}
	return actor.IsTopAccount || actor.BranchID == 0 || actor.BranchID == branchID
}
