package services

import (
	"context"
	"sync"
	"time"

	"github.com/sjperalta/rentdesk-api/internal/models"
	"github.com/sjperalta/rentdesk-api/internal/repository"
	"gorm.io/gorm"
)

type mockContractRepo struct {
	repository.ContractRepository
	mu                 sync.Mutex
	contracts          map[uint]*models.Contract
	listErr            error
	updateDatesErr     error
	updateLifecycleErr error
	dateUpdates        []uint
}

func newMockContractRepo(contracts ...models.Contract) *mockContractRepo {
	m := &mockContractRepo{contracts: make(map[uint]*models.Contract)}
	for i := range contracts {
		c := contracts[i]
		m.contracts[c.ID] = &c
	}
	return m
}

func (m *mockContractRepo) get(id uint) *models.Contract {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.contracts[id]
}

func (m *mockContractRepo) FindByID(ctx context.Context, id uint) (*models.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contracts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockContractRepo) FindByIDWithCustomer(ctx context.Context, id uint) (*models.Contract, error) {
	return m.FindByID(ctx, id)
}

func (m *mockContractRepo) ListForSweep(ctx context.Context, branchID uint) ([]models.Contract, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Contract
	for id := uint(1); id <= uint(len(m.contracts))+100; id++ {
		c, ok := m.contracts[id]
		if !ok || c.IsTerminated() {
			continue
		}
		if branchID > 0 && c.BranchID != branchID {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockContractRepo) UpdateSchedule(ctx context.Context, contract *models.Contract) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contracts[contract.ID]
	if !ok || c.IsTerminated() {
		return false, nil
	}
	copySchedule(c, contract)
	return true, nil
}

func (m *mockContractRepo) ApplyRenewal(ctx context.Context, contract *models.Contract, from models.LifecycleState) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contracts[contract.ID]
	if !ok || c.LifecycleState != from {
		return false, nil
	}
	copySchedule(c, contract)
	c.LifecycleState = contract.LifecycleState
	return true, nil
}

func copySchedule(dst, src *models.Contract) {
	dst.StartDate = src.StartDate
	dst.PaymentDayOfMonth = src.PaymentDayOfMonth
	dst.PaymentPlanID = src.PaymentPlanID
	dst.ContractTypeID = src.ContractTypeID
	dst.NextPaymentDate = src.NextPaymentDate
	dst.ContractEndDate = src.ContractEndDate
}

// terminatingRepo terminates the stored contract right after it is loaded,
// as a concurrent terminate request would.
type terminatingRepo struct {
	*mockContractRepo
}

func (r terminatingRepo) FindByID(ctx context.Context, id uint) (*models.Contract, error) {
	contract, err := r.mockContractRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := r.mockContractRepo.UpdateLifecycle(ctx, id, contract.LifecycleState, models.LifecycleTerminated); err != nil {
		return nil, err
	}
	return contract, nil
}

func (m *mockContractRepo) UpdateDerivedDates(ctx context.Context, id uint, next, end *time.Time) error {
	if m.updateDatesErr != nil {
		return m.updateDatesErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.contracts[id]
	if next != nil {
		n := *next
		c.NextPaymentDate = &n
	}
	if end != nil {
		e := *end
		c.ContractEndDate = &e
	}
	m.dateUpdates = append(m.dateUpdates, id)
	return nil
}

func (m *mockContractRepo) UpdateLifecycle(ctx context.Context, id uint, from, to models.LifecycleState) (bool, error) {
	if m.updateLifecycleErr != nil {
		return false, m.updateLifecycleErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contracts[id]
	if !ok || c.LifecycleState != from {
		return false, nil
	}
	c.LifecycleState = to
	return true, nil
}

type mockBranchRepo struct {
	repository.BranchRepository
	branches map[uint]*models.Branch
	findErr  error
}

func (m *mockBranchRepo) FindByID(ctx context.Context, id uint) (*models.Branch, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	b, ok := m.branches[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *mockBranchRepo) UpdateTemplates(ctx context.Context, id uint, payment, renewal *string) error {
	b, ok := m.branches[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if payment != nil {
		b.PaymentTemplate = *payment
	}
	if renewal != nil {
		b.RenewalTemplate = *renewal
	}
	return nil
}

type mockAuditRepo struct {
	repository.AuditRepository
	mu      sync.Mutex
	entries []models.AuditLog
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockAuditRepo) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.entries {
		out = append(out, e.Action)
	}
	return out
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayPtr(y int, m time.Month, d int) *time.Time {
	t := day(y, m, d)
	return &t
}
