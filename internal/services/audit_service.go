package services

import (
	"context"

	"github.com/sjperalta/rentdesk-api/internal/models"
	"github.com/sjperalta/rentdesk-api/internal/repository"
	"github.com/sjperalta/rentdesk-api/pkg/logger"
)

// Audit actions
const (
	AuditSubmit          = "SUBMIT"
	AuditApprove         = "APPROVE"
	AuditReject          = "REJECT"
	AuditExpire          = "EXPIRE"
	AuditRenew           = "RENEW"
	AuditTerminate       = "TERMINATE"
	AuditRecalculate     = "RECALCULATE"
	AuditScheduleChange  = "SCHEDULE_CHANGE"
	AuditUpdateTemplates = "UPDATE_TEMPLATES"
)

// SystemActorID marks entries written by scheduled jobs
const SystemActorID uint = 0

type AuditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Log records an audit entry. Failures are logged, never returned, so an
// audit outage cannot undo a committed change.
func (s *AuditService) Log(ctx context.Context, actorID uint, action, entity string, entityID uint, details string) {
	if s == nil || s.repo == nil {
		return
	}
	entry := &models.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Details:  details,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		logger.Warn("[Audit] Failed to record entry", "action", action, "entity", entity, "entity_id", entityID, "error", err)
	}
}

// History returns the latest entries for an entity
func (s *AuditService) History(ctx context.Context, entity string, entityID uint, limit int) ([]models.AuditLog, error) {
	return s.repo.ListByEntity(ctx, entity, entityID, limit)
}
