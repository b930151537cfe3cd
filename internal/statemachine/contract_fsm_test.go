package statemachine

import (
	"context"
	"testing"

	"github.com/sjperalta/rentdesk-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContractFSM_Transitions(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		from     models.LifecycleState
		action   func(*ContractFSM) error
		expected models.LifecycleState
		wantErr  bool
	}{
		{"Submit draft", models.LifecycleDraft, func(f *ContractFSM) error { return f.Submit(ctx) }, models.LifecycleChecking, false},
		{"Approve checking", models.LifecycleChecking, func(f *ContractFSM) error { return f.Approve(ctx) }, models.LifecycleActive, false},
		{"Reject checking", models.LifecycleChecking, func(f *ContractFSM) error { return f.Reject(ctx) }, models.LifecycleDraft, false},
		{"Expire active", models.LifecycleActive, func(f *ContractFSM) error { return f.Expire(ctx) }, models.LifecycleExpired, false},
		{"Renew expired", models.LifecycleExpired, func(f *ContractFSM) error { return f.Renew(ctx) }, models.LifecycleActive, false},
		{"Renew active stays active", models.LifecycleActive, func(f *ContractFSM) error { return f.Renew(ctx) }, models.LifecycleActive, false},
		{"Terminate active", models.LifecycleActive, func(f *ContractFSM) error { return f.Terminate(ctx) }, models.LifecycleTerminated, false},
		{"Terminate expired", models.LifecycleExpired, func(f *ContractFSM) error { return f.Terminate(ctx) }, models.LifecycleTerminated, false},
		{"Terminate checking", models.LifecycleChecking, func(f *ContractFSM) error { return f.Terminate(ctx) }, models.LifecycleTerminated, false},

		{"Approve draft", models.LifecycleDraft, func(f *ContractFSM) error { return f.Approve(ctx) }, models.LifecycleDraft, true},
		{"Submit active", models.LifecycleActive, func(f *ContractFSM) error { return f.Submit(ctx) }, models.LifecycleActive, true},
		{"Expire draft", models.LifecycleDraft, func(f *ContractFSM) error { return f.Expire(ctx) }, models.LifecycleDraft, true},
		{"Renew terminated", models.LifecycleTerminated, func(f *ContractFSM) error { return f.Renew(ctx) }, models.LifecycleTerminated, true},
		{"Terminate draft", models.LifecycleDraft, func(f *ContractFSM) error { return f.Terminate(ctx) }, models.LifecycleDraft, true},
		{"Terminate terminated", models.LifecycleTerminated, func(f *ContractFSM) error { return f.Terminate(ctx) }, models.LifecycleTerminated, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contract := &models.Contract{ID: 1, LifecycleState: tt.from}
			f := NewContractFSM(contract)

			err := tt.action(f)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrTransitionNotAllowed)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.expected, contract.LifecycleState)
			assert.Equal(t, tt.expected.String(), f.Current())
		})
	}
}

func TestContractFSM_Can(t *testing.T) {
	f := NewContractFSM(&models.Contract{LifecycleState: models.LifecycleExpired})
	assert.True(t, f.Can(EventRenew))
	assert.True(t, f.Can(EventTerminate))
	assert.False(t, f.Can(EventExpire))
	assert.False(t, f.Can(EventSubmit))
}
