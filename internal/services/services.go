package services

import (
	"github.com/sjperalta/rentdesk-api/internal/config"
	"github.com/sjperalta/rentdesk-api/internal/jobs"
	"github.com/sjperalta/rentdesk-api/internal/lifecycle"
	"github.com/sjperalta/rentdesk-api/internal/notify"
	"github.com/sjperalta/rentdesk-api/internal/permission"
	"github.com/sjperalta/rentdesk-api/internal/repository"
)

// Services holds all service instances
type Services struct {
	Contract   *ContractService
	Reminder   *ReminderService
	Template   *TemplateService
	Audit      *AuditService
	Job        *JobService
	Permission permission.Evaluator
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, dispatcher *notify.Dispatcher, cfg *config.Config) *Services {
	classifier := lifecycle.NewClassifier(lifecycle.Thresholds{
		PaymentDueDays:    cfg.PaymentDueDays,
		RenewalWindowDays: cfg.RenewalWindowDays,
	})
	composer := notify.NewComposer(notify.NewFormatter(cfg.DateLocale))
	auditSvc := NewAuditService(repos.Audit)

	contractSvc := NewContractService(repos.Contract, classifier, auditSvc)
	reminderSvc := NewReminderService(repos.Contract, repos.Branch, contractSvc, classifier, composer, dispatcher, cfg.SweepConcurrency)

	return &Services{
		Contract:   contractSvc,
		Reminder:   reminderSvc,
		Template:   NewTemplateService(repos.Branch, repos.Contract, composer, auditSvc),
		Audit:      auditSvc,
		Job:        NewJobService(worker, reminderSvc, cfg.Location()),
		Permission: permission.NewEvaluator(),
	}
}
