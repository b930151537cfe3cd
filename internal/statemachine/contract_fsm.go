package statemachine

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/sjperalta/rentdesk-api/internal/models"
)

var ErrTransitionNotAllowed = errors.New("lifecycle transition not allowed")

// Lifecycle events
const (
	EventSubmit    = "submit"
	EventApprove   = "approve"
	EventReject    = "reject"
	EventExpire    = "expire"
	EventRenew     = "renew"
	EventTerminate = "terminate"
)

// ContractFSM wraps a contract with its lifecycle state machine
type ContractFSM struct {
	contract *models.Contract
	fsm      *fsm.FSM
}

// NewContractFSM creates a state machine positioned at the contract's stored state
func NewContractFSM(contract *models.Contract) *ContractFSM {
	draft := models.LifecycleDraft.String()
	checking := models.LifecycleChecking.String()
	active := models.LifecycleActive.String()
	expired := models.LifecycleExpired.String()
	terminated := models.LifecycleTerminated.String()

	cfsm := &ContractFSM{contract: contract}
	cfsm.fsm = fsm.NewFSM(
		contract.LifecycleState.String(),
		fsm.Events{
			// draft → checking (sent for review)
			{Name: EventSubmit, Src: []string{draft}, Dst: checking},

			// checking → active
			{Name: EventApprove, Src: []string{checking}, Dst: active},

			// checking → draft (back to the author)
			{Name: EventReject, Src: []string{checking}, Dst: draft},

			// active → expired, committed by the sweep once the end date passes
			{Name: EventExpire, Src: []string{active}, Dst: expired},

			// expired → active for a new term
			{Name: EventRenew, Src: []string{expired}, Dst: active},

			{Name: EventTerminate, Src: []string{checking, active, expired}, Dst: terminated},
		},
		fsm.Callbacks{},
	)

	return cfsm
}

func (c *ContractFSM) fire(ctx context.Context, event string, allowed bool) error {
	if !allowed {
		return fmt.Errorf("%w: cannot %s a %s contract", ErrTransitionNotAllowed, event, c.contract.LifecycleState)
	}

	if err := c.fsm.Event(ctx, event); err != nil {
		return fmt.Errorf("failed to %s contract: %w", event, err)
	}

	state, ok := models.ParseLifecycleState(c.fsm.Current())
	if !ok {
		return fmt.Errorf("failed to %s contract: unknown state %q", event, c.fsm.Current())
	}
	c.contract.LifecycleState = state
	return nil
}

// Submit sends a draft for review
func (c *ContractFSM) Submit(ctx context.Context) error {
	return c.fire(ctx, EventSubmit, c.contract.MaySubmit())
}

// Approve activates a contract under review
func (c *ContractFSM) Approve(ctx context.Context) error {
	return c.fire(ctx, EventApprove, c.contract.MayApprove())
}

// Reject returns a contract under review to draft
func (c *ContractFSM) Reject(ctx context.Context) error {
	return c.fire(ctx, EventReject, c.contract.MayReject())
}

// Expire commits the active → expired transition
func (c *ContractFSM) Expire(ctx context.Context) error {
	return c.fire(ctx, EventExpire, c.contract.MayExpire())
}

// Renew reactivates an expired contract. An active contract stays active.
func (c *ContractFSM) Renew(ctx context.Context) error {
	if c.contract.LifecycleState == models.LifecycleActive {
		return nil
	}
	return c.fire(ctx, EventRenew, c.contract.MayRenew())
}

// Terminate ends a contract permanently
func (c *ContractFSM) Terminate(ctx context.Context) error {
	return c.fire(ctx, EventTerminate, c.contract.MayTerminate())
}

// Current returns the current state
func (c *ContractFSM) Current() string {
	return c.fsm.Current()
}

// Can checks if a transition is possible
func (c *ContractFSM) Can(event string) bool {
	return c.fsm.Can(event)
}
