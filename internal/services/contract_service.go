package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sjperalta/rentdesk-api/internal/billing"
	"github.com/sjperalta/rentdesk-api/internal/lifecycle"
	"github.com/sjperalta/rentdesk-api/internal/metrics"
	"github.com/sjperalta/rentdesk-api/internal/models"
	"github.com/sjperalta/rentdesk-api/internal/repository"
	"github.com/sjperalta/rentdesk-api/internal/statemachine"
	"github.com/sjperalta/rentdesk-api/pkg/logger"
)

type ContractService struct {
	repo       repository.ContractRepository
	classifier *lifecycle.Classifier
	auditSvc   *AuditService
}

func NewContractService(repo repository.ContractRepository, classifier *lifecycle.Classifier, auditSvc *AuditService) *ContractService {
	return &ContractService{
		repo:       repo,
		classifier: classifier,
		auditSvc:   auditSvc,
	}
}

// ScheduleChange carries the billing fields an edit may touch. Nil means unchanged.
type ScheduleChange struct {
	StartDate         *time.Time `json:"start_date"`
	PaymentDayOfMonth *int       `json:"payment_day_of_month"`
	PaymentPlanID     *uint      `json:"payment_plan_id"`
	ContractTypeID    *uint      `json:"contract_type_id"`
}

// IsEmpty returns true if the change touches nothing
func (c ScheduleChange) IsEmpty() bool {
	return c.StartDate == nil && c.PaymentDayOfMonth == nil && c.PaymentPlanID == nil && c.ContractTypeID == nil
}

// FindByID gets a contract by ID
func (s *ContractService) FindByID(ctx context.Context, id uint) (*models.Contract, error) {
	contract, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return contract, nil
}

func (s *ContractService) List(ctx context.Context, query *repository.ContractQuery) ([]models.Contract, int64, error) {
	return s.repo.List(ctx, query)
}

// Classify returns the contract with its classification on today
func (s *ContractService) Classify(ctx context.Context, id uint, today time.Time) (*models.Contract, lifecycle.Classification, error) {
	if today.IsZero() {
		return nil, lifecycle.Classification{}, fmt.Errorf("%w: today is required", ErrInvalidInput)
	}
	contract, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, lifecycle.Classification{}, err
	}
	return contract, s.classifier.Classify(contract, today), nil
}

// RecalculateDates recomputes and persists both derived dates from the stored inputs
func (s *ContractService) RecalculateDates(ctx context.Context, id, actorID uint) (*models.Contract, error) {
	contract, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	derived, err := billing.Derive(contract)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateDerivedDates(ctx, contract.ID, &derived.NextPaymentDate, &derived.ContractEndDate); err != nil {
		return nil, err
	}
	contract.NextPaymentDate = &derived.NextPaymentDate
	contract.ContractEndDate = &derived.ContractEndDate

	s.auditSvc.Log(ctx, actorID, AuditRecalculate, "Contract", contract.ID,
		fmt.Sprintf("next payment %s, end %s", derived.NextPaymentDate.Format(models.DateLayout), derived.ContractEndDate.Format(models.DateLayout)))

	return contract, nil
}

// ApplyScheduleChange edits billing inputs and refreshes the derived dates they invalidate
func (s *ContractService) ApplyScheduleChange(ctx context.Context, id, actorID uint, change ScheduleChange) (*models.Contract, error) {
	if change.IsEmpty() {
		return nil, fmt.Errorf("%w: no schedule fields given", ErrInvalidInput)
	}
	if change.PaymentDayOfMonth != nil && (*change.PaymentDayOfMonth < 1 || *change.PaymentDayOfMonth > 31) {
		return nil, fmt.Errorf("%w: payment day %d out of range", billing.ErrInvalidDateInput, *change.PaymentDayOfMonth)
	}

	contract, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if contract.IsTerminated() {
		return nil, fmt.Errorf("%w: contract %d is terminated", ErrInvalidState, id)
	}

	before := *contract
	if change.StartDate != nil {
		start := billing.DateOnly(*change.StartDate)
		contract.StartDate = &start
	}
	if change.PaymentDayOfMonth != nil {
		contract.PaymentDayOfMonth = *change.PaymentDayOfMonth
	}
	if change.PaymentPlanID != nil {
		contract.PaymentPlanID = *change.PaymentPlanID
	}
	if change.ContractTypeID != nil {
		contract.ContractTypeID = *change.ContractTypeID
	}

	stale := billing.NeedsRecalculation(&before, contract)
	if stale.Any() {
		derived, err := billing.Derive(contract)
		if err != nil {
			return nil, err
		}
		if stale.NextPaymentDate {
			contract.NextPaymentDate = &derived.NextPaymentDate
		}
		if stale.ContractEndDate {
			contract.ContractEndDate = &derived.ContractEndDate
		}
	}

	changed, err := s.repo.UpdateSchedule(ctx, contract)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, fmt.Errorf("%w: contract %d was terminated concurrently", ErrInvalidState, id)
	}

	s.auditSvc.Log(ctx, actorID, AuditScheduleChange, "Contract", contract.ID,
		fmt.Sprintf("plan %d, type %d, payment day %d", contract.PaymentPlanID, contract.ContractTypeID, contract.PaymentDayOfMonth))

	return contract, nil
}

// Submit sends a draft for review
func (s *ContractService) Submit(ctx context.Context, id, actorID uint) (*models.Contract, error) {
	return s.transition(ctx, id, actorID, statemachine.EventSubmit, AuditSubmit, nil)
}

// Approve activates a contract under review. Missing derived dates are filled
// first; a contract whose dates cannot be derived cannot go live.
func (s *ContractService) Approve(ctx context.Context, id, actorID uint) (*models.Contract, error) {
	return s.transition(ctx, id, actorID, statemachine.EventApprove, AuditApprove, func(c *models.Contract) error {
		if c.NextPaymentDate != nil && c.ContractEndDate != nil {
			return nil
		}
		derived, err := billing.Derive(c)
		if err != nil {
			return err
		}
		if c.NextPaymentDate == nil {
			c.NextPaymentDate = &derived.NextPaymentDate
		}
		if c.ContractEndDate == nil {
			c.ContractEndDate = &derived.ContractEndDate
		}
		return s.repo.UpdateDerivedDates(ctx, c.ID, c.NextPaymentDate, c.ContractEndDate)
	})
}

// Reject returns a contract under review to draft
func (s *ContractService) Reject(ctx context.Context, id, actorID uint) (*models.Contract, error) {
	return s.transition(ctx, id, actorID, statemachine.EventReject, AuditReject, nil)
}

// Terminate ends a contract permanently
func (s *ContractService) Terminate(ctx context.Context, id, actorID uint) (*models.Contract, error) {
	return s.transition(ctx, id, actorID, statemachine.EventTerminate, AuditTerminate, nil)
}

// Renew starts a new term at the old end date and recomputes both derived dates
func (s *ContractService) Renew(ctx context.Context, id, actorID uint) (*models.Contract, error) {
	contract, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldEnd := contract.ContractEndDate
	if oldEnd == nil {
		end, err := billing.ComputeContractEndDate(contract.StartDate, contract.ContractTypeID)
		if err != nil {
			return nil, fmt.Errorf("contract %d end date: %w", contract.ID, err)
		}
		oldEnd = &end
	}

	from := contract.LifecycleState
	fsm := statemachine.NewContractFSM(contract)
	if err := fsm.Renew(ctx); err != nil {
		return nil, mapTransitionError(err)
	}

	start := billing.DateOnly(*oldEnd)
	contract.StartDate = &start
	derived, err := billing.Derive(contract)
	if err != nil {
		return nil, err
	}
	contract.NextPaymentDate = &derived.NextPaymentDate
	contract.ContractEndDate = &derived.ContractEndDate

	changed, err := s.repo.ApplyRenewal(ctx, contract, from)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, fmt.Errorf("%w: contract %d changed concurrently", ErrInvalidState, id)
	}
	metrics.LifecycleTransitions.WithLabelValues(statemachine.EventRenew).Inc()

	s.auditSvc.Log(ctx, actorID, AuditRenew, "Contract", contract.ID,
		fmt.Sprintf("new term %s to %s", start.Format(models.DateLayout), derived.ContractEndDate.Format(models.DateLayout)))

	return contract, nil
}

// CommitExpiry records Active → Expired for a contract whose end date has passed.
// It reports false if another writer already moved the contract.
func (s *ContractService) CommitExpiry(ctx context.Context, contract *models.Contract) (bool, error) {
	fsm := statemachine.NewContractFSM(contract)
	if err := fsm.Expire(ctx); err != nil {
		return false, mapTransitionError(err)
	}

	changed, err := s.repo.UpdateLifecycle(ctx, contract.ID, models.LifecycleActive, models.LifecycleExpired)
	if err != nil {
		contract.LifecycleState = models.LifecycleActive
		return false, err
	}
	if changed {
		metrics.LifecycleTransitions.WithLabelValues(statemachine.EventExpire).Inc()
		s.auditSvc.Log(ctx, SystemActorID, AuditExpire, "Contract", contract.ID, "end date passed")
	}
	return changed, nil
}

func (s *ContractService) transition(ctx context.Context, id, actorID uint, event, action string, prepare func(*models.Contract) error) (*models.Contract, error) {
	contract, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := contract.LifecycleState

	fsm := statemachine.NewContractFSM(contract)
	if !fsm.Can(event) {
		return nil, fmt.Errorf("%w: cannot %s a %s contract", ErrInvalidState, event, from)
	}

	if prepare != nil {
		if err := prepare(contract); err != nil {
			return nil, err
		}
	}

	if err := s.fire(ctx, fsm, event); err != nil {
		return nil, err
	}

	changed, err := s.repo.UpdateLifecycle(ctx, contract.ID, from, contract.LifecycleState)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, fmt.Errorf("%w: contract %d changed concurrently", ErrInvalidState, id)
	}

	metrics.LifecycleTransitions.WithLabelValues(event).Inc()
	logger.Info("[Contract] Lifecycle transition", "contract_id", id, "event", event, "from", from.String(), "to", contract.LifecycleState.String())
	s.auditSvc.Log(ctx, actorID, action, "Contract", contract.ID, fmt.Sprintf("%s → %s", from, contract.LifecycleState))

	return contract, nil
}

func (s *ContractService) fire(ctx context.Context, fsm *statemachine.ContractFSM, event string) error {
	var err error
	switch event {
	case statemachine.EventSubmit:
		err = fsm.Submit(ctx)
	case statemachine.EventApprove:
		err = fsm.Approve(ctx)
	case statemachine.EventReject:
		err = fsm.Reject(ctx)
	case statemachine.EventTerminate:
		err = fsm.Terminate(ctx)
	default:
		err = fmt.Errorf("%w: unsupported event %q", ErrInvalidInput, event)
	}
	return mapTransitionError(err)
}

func mapTransitionError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, statemachine.ErrTransitionNotAllowed) {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	return err
}
