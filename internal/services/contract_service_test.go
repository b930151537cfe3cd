package services

import (
	"context"
	"testing"
	"time"

	"github.com/sjperalta/rentdesk-api/internal/billing"
	"github.com/sjperalta/rentdesk-api/internal/lifecycle"
	"github.com/sjperalta/rentdesk-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContractService(repo *mockContractRepo) (*ContractService, *mockAuditRepo) {
	audit := &mockAuditRepo{}
	return NewContractService(repo, lifecycle.DefaultClassifier(), NewAuditService(audit)), audit
}

func monthlyContract(id uint, state models.LifecycleState) models.Contract {
	return models.Contract{
		ID:                id,
		BranchID:          1,
		CustomerID:        id,
		Name:              "Unit",
		StartDate:         dayPtr(2024, time.January, 31),
		PaymentDayOfMonth: 31,
		PaymentPlanID:     models.PaymentPlanMonthly,
		ContractTypeID:    models.ContractTypeOneYear,
		LifecycleState:    state,
	}
}

func TestContractService_RecalculateDates(t *testing.T) {
	repo := newMockContractRepo(monthlyContract(1, models.LifecycleActive))
	svc, audit := newContractService(repo)

	contract, err := svc.RecalculateDates(context.Background(), 1, 9)
	require.NoError(t, err)

	assert.Equal(t, day(2024, time.February, 29), *contract.NextPaymentDate)
	assert.Equal(t, day(2025, time.January, 31), *contract.ContractEndDate)
	assert.Equal(t, day(2024, time.February, 29), *repo.get(1).NextPaymentDate)
	assert.Equal(t, []string{AuditRecalculate}, audit.actions())
}

func TestContractService_RecalculateDates_Errors(t *testing.T) {
	broken := monthlyContract(1, models.LifecycleActive)
	broken.PaymentPlanID = 99
	repo := newMockContractRepo(broken)
	svc, _ := newContractService(repo)

	_, err := svc.RecalculateDates(context.Background(), 1, 9)
	assert.ErrorIs(t, err, billing.ErrUnknownPlanOrContractType)

	_, err = svc.RecalculateDates(context.Background(), 42, 9)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContractService_ApplyScheduleChange(t *testing.T) {
	c := monthlyContract(1, models.LifecycleActive)
	c.NextPaymentDate = dayPtr(2024, time.February, 29)
	c.ContractEndDate = dayPtr(2025, time.January, 31)

	t.Run("Plan change only refreshes next payment date", func(t *testing.T) {
		repo := newMockContractRepo(c)
		svc, _ := newContractService(repo)

		plan := models.PaymentPlanQuarterly
		got, err := svc.ApplyScheduleChange(context.Background(), 1, 9, ScheduleChange{PaymentPlanID: &plan})
		require.NoError(t, err)
		assert.Equal(t, day(2024, time.April, 30), *got.NextPaymentDate)
		assert.Equal(t, day(2025, time.January, 31), *got.ContractEndDate)
	})

	t.Run("Start change refreshes both", func(t *testing.T) {
		repo := newMockContractRepo(c)
		svc, _ := newContractService(repo)

		start := day(2024, time.March, 15)
		dayOfMonth := 10
		got, err := svc.ApplyScheduleChange(context.Background(), 1, 9, ScheduleChange{StartDate: &start, PaymentDayOfMonth: &dayOfMonth})
		require.NoError(t, err)
		assert.Equal(t, day(2024, time.April, 10), *got.NextPaymentDate)
		assert.Equal(t, day(2025, time.March, 15), *got.ContractEndDate)
		assert.Equal(t, day(2024, time.April, 10), *repo.get(1).NextPaymentDate)
	})

	t.Run("Invalid payment day", func(t *testing.T) {
		svc, _ := newContractService(newMockContractRepo(c))
		bad := 32
		_, err := svc.ApplyScheduleChange(context.Background(), 1, 9, ScheduleChange{PaymentDayOfMonth: &bad})
		assert.ErrorIs(t, err, billing.ErrInvalidDateInput)
	})

	t.Run("Empty change", func(t *testing.T) {
		svc, _ := newContractService(newMockContractRepo(c))
		_, err := svc.ApplyScheduleChange(context.Background(), 1, 9, ScheduleChange{})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("Terminated contract", func(t *testing.T) {
		terminated := c
		terminated.LifecycleState = models.LifecycleTerminated
		svc, _ := newContractService(newMockContractRepo(terminated))
		plan := models.PaymentPlanAnnual
		_, err := svc.ApplyScheduleChange(context.Background(), 1, 9, ScheduleChange{PaymentPlanID: &plan})
		assert.ErrorIs(t, err, ErrInvalidState)
	})
}

func TestContractService_Workflow(t *testing.T) {
	ctx := context.Background()
	repo := newMockContractRepo(monthlyContract(1, models.LifecycleDraft))
	svc, audit := newContractService(repo)

	_, err := svc.Approve(ctx, 1, 9)
	assert.ErrorIs(t, err, ErrInvalidState)

	got, err := svc.Submit(ctx, 1, 9)
	require.NoError(t, err)
	assert.Equal(t, models.LifecycleChecking, got.LifecycleState)

	got, err = svc.Approve(ctx, 1, 9)
	require.NoError(t, err)
	assert.Equal(t, models.LifecycleActive, got.LifecycleState)
	stored := repo.get(1)
	assert.Equal(t, models.LifecycleActive, stored.LifecycleState)
	require.NotNil(t, stored.NextPaymentDate, "approval fills derived dates")
	assert.Equal(t, day(2024, time.February, 29), *stored.NextPaymentDate)

	got, err = svc.Terminate(ctx, 1, 9)
	require.NoError(t, err)
	assert.Equal(t, models.LifecycleTerminated, got.LifecycleState)

	_, err = svc.Renew(ctx, 1, 9)
	assert.ErrorIs(t, err, ErrInvalidState)

	assert.Equal(t, []string{AuditSubmit, AuditApprove, AuditTerminate}, audit.actions())
}

func TestContractService_Reject(t *testing.T) {
	repo := newMockContractRepo(monthlyContract(1, models.LifecycleChecking))
	svc, _ := newContractService(repo)

	got, err := svc.Reject(context.Background(), 1, 9)
	require.NoError(t, err)
	assert.Equal(t, models.LifecycleDraft, got.LifecycleState)
}

func TestContractService_Approve_WithoutStartDate(t *testing.T) {
	c := monthlyContract(1, models.LifecycleChecking)
	c.StartDate = nil
	repo := newMockContractRepo(c)
	svc, _ := newContractService(repo)

	_, err := svc.Approve(context.Background(), 1, 9)
	assert.ErrorIs(t, err, billing.ErrInvalidDateInput)
	assert.Equal(t, models.LifecycleChecking, repo.get(1).LifecycleState)
}

func TestContractService_Renew(t *testing.T) {
	c := monthlyContract(1, models.LifecycleExpired)
	c.StartDate = dayPtr(2023, time.June, 15)
	c.PaymentDayOfMonth = 15
	c.NextPaymentDate = dayPtr(2024, time.May, 15)
	c.ContractEndDate = dayPtr(2024, time.June, 15)
	repo := newMockContractRepo(c)
	svc, audit := newContractService(repo)

	got, err := svc.Renew(context.Background(), 1, 9)
	require.NoError(t, err)

	assert.Equal(t, models.LifecycleActive, got.LifecycleState)
	assert.Equal(t, day(2024, time.June, 15), *got.StartDate)
	assert.Equal(t, day(2024, time.July, 15), *got.NextPaymentDate)
	assert.Equal(t, day(2025, time.June, 15), *got.ContractEndDate)
	assert.Equal(t, models.LifecycleActive, repo.get(1).LifecycleState)
	assert.Equal(t, []string{AuditRenew}, audit.actions())
}

func TestContractService_TerminatedWhileUpdating(t *testing.T) {
	expired := monthlyContract(1, models.LifecycleExpired)
	expired.NextPaymentDate = dayPtr(2024, time.December, 31)
	expired.ContractEndDate = dayPtr(2025, time.January, 31)
	plan := models.PaymentPlanAnnual

	tests := []struct {
		name     string
		contract models.Contract
		call     func(svc *ContractService) error
	}{
		{
			name:     "Renew",
			contract: expired,
			call: func(svc *ContractService) error {
				_, err := svc.Renew(context.Background(), 1, 9)
				return err
			},
		},
		{
			name:     "Schedule change",
			contract: monthlyContract(1, models.LifecycleActive),
			call: func(svc *ContractService) error {
				_, err := svc.ApplyScheduleChange(context.Background(), 1, 9, ScheduleChange{PaymentPlanID: &plan})
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockContractRepo(tt.contract)
			audit := &mockAuditRepo{}
			svc := NewContractService(terminatingRepo{repo}, lifecycle.DefaultClassifier(), NewAuditService(audit))

			err := tt.call(svc)
			assert.ErrorIs(t, err, ErrInvalidState)

			stored := repo.get(1)
			assert.Equal(t, models.LifecycleTerminated, stored.LifecycleState)
			assert.Equal(t, tt.contract.PaymentPlanID, stored.PaymentPlanID)
			assert.Equal(t, *tt.contract.StartDate, *stored.StartDate)
			assert.Empty(t, audit.actions())
		})
	}
}

func TestContractService_Classify(t *testing.T) {
	c := monthlyContract(1, models.LifecycleActive)
	c.NextPaymentDate = dayPtr(2024, time.June, 10)
	c.ContractEndDate = dayPtr(2025, time.January, 31)
	svc, _ := newContractService(newMockContractRepo(c))

	_, classification, err := svc.Classify(context.Background(), 1, day(2024, time.June, 6))
	require.NoError(t, err)
	assert.Equal(t, lifecycle.UrgencyPaymentNearDue, classification.Urgency)

	_, _, err = svc.Classify(context.Background(), 1, time.Time{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
