package lifecycle

import "context"

// StateMachine tracks the current status of one invoice and validates
// transitions against the configured lifecycle.
type StateMachine interface {
	// State returns the current state.
	State() State

	// CanFire returns true if the trigger is permitted in the current state.
	CanFire(trigger Trigger) bool

	// Fire attempts to execute the trigger, transitioning to the new state
	// if allowed.
	Fire(ctx context.Context, trigger Trigger) error

	// PermittedTriggers returns all triggers that can be fired in the
	// current state.
	PermittedTriggers() []Trigger
}

// NewInvoiceMachine builds the statutory invoice lifecycle positioned at
// the given state: Draft submits to Submitted; Submitted resolves to
// Validated or Rejected on the authority acknowledgment; both outcomes
// are terminal.
func NewInvoiceMachine(current State) StateMachine {
	b := NewBuilder()

	b.Configure(StateDraft).
		Permit(TriggerSubmit, StateSubmitted)

	b.Configure(StateSubmitted).
		Permit(TriggerValidate, StateValidated).
		Permit(TriggerReject, StateRejected)

	return b.Build(current)
}
