package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sjperalta/rentdesk-api/internal/billing"
	"github.com/sjperalta/rentdesk-api/internal/lifecycle"
	"github.com/sjperalta/rentdesk-api/internal/metrics"
	"github.com/sjperalta/rentdesk-api/internal/models"
	"github.com/sjperalta/rentdesk-api/internal/notify"
	"github.com/sjperalta/rentdesk-api/internal/repository"
	"github.com/sjperalta/rentdesk-api/pkg/logger"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Item failure reasons
const (
	ReasonInvalidDateInput    = "invalid_date_input"
	ReasonUnknownPlan         = "unknown_plan_or_contract_type"
	ReasonMissingChannel      = "missing_channel_identifier"
	ReasonDispatchFailed      = "dispatch_failed"
	ReasonPersistFailed       = "persist_failed"
	ReasonTemplateUnavailable = "template_unavailable"
)

// Sweep triggers
const (
	TriggerManual = "manual"
	TriggerDaily  = "daily"
)

// SweepOptions selects what a sweep covers. Today must be set by the caller.
// A ReadOnly sweep derives missing dates in memory and leaves expiry
// uncommitted, so listing reminders never writes.
type SweepOptions struct {
	Today    time.Time
	BranchID uint
	Dispatch bool
	ReadOnly bool
	Trigger  string
}

// ItemFailure is one contract the sweep could not fully process
type ItemFailure struct {
	ContractID uint   `json:"contract_id"`
	Reason     string `json:"reason"`
	Error      string `json:"error"`
}

// SweepResult is the outcome of one sweep
type SweepResult struct {
	RunID      uuid.UUID            `json:"run_id"`
	Today      string               `json:"today"`
	Items      []lifecycle.Reminder `json:"items"`
	Failures   []ItemFailure        `json:"failures"`
	Expired    int                  `json:"expired"`
	Dispatched int                  `json:"dispatched"`
	Skipped    int                  `json:"skipped"`
}

type ReminderService struct {
	contracts   repository.ContractRepository
	branches    repository.BranchRepository
	contractSvc *ContractService
	classifier  *lifecycle.Classifier
	composer    *notify.Composer
	dispatcher  *notify.Dispatcher
	concurrency int
}

func NewReminderService(
	contracts repository.ContractRepository,
	branches repository.BranchRepository,
	contractSvc *ContractService,
	classifier *lifecycle.Classifier,
	composer *notify.Composer,
	dispatcher *notify.Dispatcher,
	concurrency int,
) *ReminderService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &ReminderService{
		contracts:   contracts,
		branches:    branches,
		contractSvc: contractSvc,
		classifier:  classifier,
		composer:    composer,
		dispatcher:  dispatcher,
		concurrency: concurrency,
	}
}

type sweepItem struct {
	contract *models.Contract
	reminder lifecycle.Reminder
	failures []ItemFailure
	expired  bool
}

// Sweep classifies every non-terminated contract in scope. A broken contract
// becomes an ItemFailure; only a load failure or cancellation aborts the run.
func (s *ReminderService) Sweep(ctx context.Context, opts SweepOptions) (*SweepResult, error) {
	if opts.Today.IsZero() {
		return nil, fmt.Errorf("%w: today is required", ErrInvalidInput)
	}
	if opts.Dispatch && opts.ReadOnly {
		return nil, fmt.Errorf("%w: a read-only sweep cannot dispatch", ErrInvalidInput)
	}
	if opts.Dispatch && s.dispatcher == nil {
		return nil, ErrDispatchDisabled
	}
	if opts.Trigger == "" {
		opts.Trigger = TriggerManual
	}

	start := time.Now()
	today := billing.DateOnly(opts.Today)
	result := &SweepResult{
		RunID:    uuid.New(),
		Today:    today.Format(models.DateLayout),
		Items:    []lifecycle.Reminder{},
		Failures: []ItemFailure{},
	}

	contracts, err := s.contracts.ListForSweep(ctx, opts.BranchID)
	if err != nil {
		return nil, fmt.Errorf("load contracts: %w", err)
	}

	items := make([]sweepItem, len(contracts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range contracts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			items[i] = s.process(gctx, &contracts[i], today, opts.ReadOnly)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[uint]*models.Contract, len(items))
	for _, item := range items {
		result.Failures = append(result.Failures, item.failures...)
		if item.contract == nil {
			continue
		}
		byID[item.contract.ID] = item.contract
		result.Items = append(result.Items, item.reminder)
		if item.expired {
			result.Expired++
		}
	}
	lifecycle.SortByNextPaymentDate(result.Items)

	if opts.Dispatch {
		if err := s.dispatch(ctx, today, result, byID); err != nil {
			return nil, err
		}
	}

	for _, f := range result.Failures {
		metrics.ItemFailures.WithLabelValues(f.Reason).Inc()
	}
	metrics.SweepRuns.WithLabelValues(opts.Trigger).Inc()
	metrics.SweepDuration.Observe(time.Since(start).Seconds())

	logger.Info("[Sweep] Completed",
		"run_id", result.RunID.String(),
		"today", result.Today,
		"branch_id", opts.BranchID,
		"items", len(result.Items),
		"failures", len(result.Failures),
		"expired", result.Expired,
		"dispatched", result.Dispatched,
		"skipped", result.Skipped,
		"elapsed", time.Since(start),
	)

	return result, nil
}

func (s *ReminderService) process(ctx context.Context, contract *models.Contract, today time.Time, readOnly bool) sweepItem {
	item := sweepItem{contract: contract}

	if contract.IsTerminated() {
		item.contract = nil
		return item
	}

	if contract.NextPaymentDate == nil || contract.ContractEndDate == nil {
		if f := s.fillDerivedDates(ctx, contract, readOnly); f != nil {
			item.failures = append(item.failures, *f)
		}
	}

	classification := s.classifier.Classify(contract, today)

	if !readOnly && contract.LifecycleState == models.LifecycleActive && classification.LifecycleState == models.LifecycleExpired {
		changed, err := s.contractSvc.CommitExpiry(ctx, contract)
		if err != nil {
			item.failures = append(item.failures, failure(contract.ID, ReasonPersistFailed, err))
		}
		item.expired = changed
	}

	metrics.Classifications.WithLabelValues(string(classification.Urgency)).Inc()

	item.reminder = lifecycle.Reminder{
		ContractID:      contract.ID,
		BranchID:        contract.BranchID,
		CustomerID:      contract.CustomerID,
		CustomerName:    contract.Customer.Name,
		ContractName:    contract.Name,
		NextPaymentDate: contract.NextPaymentDate,
		ContractEndDate: contract.ContractEndDate,
		Classification:  classification,
	}
	return item
}

// fillDerivedDates computes and stores whichever derived date is missing.
// Drafts under construction may lack a start date; they carry no signal yet.
func (s *ReminderService) fillDerivedDates(ctx context.Context, contract *models.Contract, readOnly bool) *ItemFailure {
	pending := contract.LifecycleState == models.LifecycleDraft || contract.LifecycleState == models.LifecycleChecking
	if pending && contract.StartDate == nil {
		return nil
	}

	derived, err := billing.Derive(contract)
	if err != nil {
		f := failure(contract.ID, reasonFor(err), err)
		return &f
	}

	var next, end *time.Time
	if contract.NextPaymentDate == nil {
		next = &derived.NextPaymentDate
		contract.NextPaymentDate = next
	}
	if contract.ContractEndDate == nil {
		end = &derived.ContractEndDate
		contract.ContractEndDate = end
	}

	if readOnly {
		return nil
	}
	if err := s.contracts.UpdateDerivedDates(ctx, contract.ID, next, end); err != nil {
		f := failure(contract.ID, ReasonPersistFailed, err)
		return &f
	}
	return nil
}

func (s *ReminderService) dispatch(ctx context.Context, today time.Time, result *SweepResult, byID map[uint]*models.Contract) error {
	templates := newTemplateCache(s.branches)

	for _, item := range result.Items {
		if err := ctx.Err(); err != nil {
			return err
		}

		c := item.Classification
		if c.Urgency == lifecycle.UrgencyNone {
			continue
		}

		// Drafts and contracts under review get no customer reminders even
		// when their dates already signal something
		contract := byID[item.ContractID]
		if contract.LifecycleState != models.LifecycleActive && contract.LifecycleState != models.LifecycleExpired {
			continue
		}

		kind := notify.KindPayment
		if c.Urgency.IsContractUrgency() {
			kind = notify.KindRenewal
		}

		template, err := templates.get(ctx, contract.BranchID, kind)
		if err != nil {
			result.Failures = append(result.Failures, failure(contract.ID, ReasonTemplateUnavailable, err))
			result.Skipped++
			continue
		}

		var customer *models.Customer
		if contract.Customer.ID != 0 {
			customer = &contract.Customer
		}
		msg, err := s.composer.Compose(kind, template, customer, contract)
		if err != nil {
			result.Failures = append(result.Failures, failure(contract.ID, reasonFor(err), err))
			result.Skipped++
			metrics.Notifications.WithLabelValues(string(kind), metrics.ResultSkipped).Inc()
			continue
		}

		sent, err := s.dispatcher.Dispatch(ctx, msg, notify.DedupeKey(contract.ID, string(c.Urgency), today))
		switch {
		case err != nil:
			result.Failures = append(result.Failures, failure(contract.ID, ReasonDispatchFailed, err))
		case sent:
			result.Dispatched++
		default:
			result.Skipped++
		}
	}
	return nil
}

func failure(contractID uint, reason string, err error) ItemFailure {
	return ItemFailure{ContractID: contractID, Reason: reason, Error: err.Error()}
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, billing.ErrInvalidDateInput):
		return ReasonInvalidDateInput
	case errors.Is(err, billing.ErrUnknownPlanOrContractType):
		return ReasonUnknownPlan
	case errors.Is(err, notify.ErrMissingChannelIdentifier):
		return ReasonMissingChannel
	case errors.Is(err, notify.ErrDispatchFailed):
		return ReasonDispatchFailed
	default:
		return ReasonPersistFailed
	}
}

// templateCache loads each branch once per sweep
type templateCache struct {
	repo     repository.BranchRepository
	branches map[uint]*models.Branch
}

func newTemplateCache(repo repository.BranchRepository) *templateCache {
	return &templateCache{repo: repo, branches: make(map[uint]*models.Branch)}
}

func (t *templateCache) get(ctx context.Context, branchID uint, kind notify.Kind) (string, error) {
	branch, ok := t.branches[branchID]
	if !ok {
		loaded, err := t.repo.FindByID(ctx, branchID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			loaded = &models.Branch{ID: branchID}
		case err != nil:
			return "", fmt.Errorf("branch %d: %w", branchID, err)
		}
		t.branches[branchID] = loaded
		branch = loaded
	}

	if kind == notify.KindRenewal {
		return branch.RenewalTemplateOrDefault(), nil
	}
	return branch.PaymentTemplateOrDefault(), nil
}
