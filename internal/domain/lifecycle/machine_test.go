package lifecycle

import (
	"context"
	"errors"
	"testing"
)

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateDraft, false},
		{StateSubmitted, false},
		{StateValidated, true},
		{StateRejected, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"draft", StateDraft, true},
		{"rejected", StateRejected, true},
		{"unknown state", State("PROVISIONAL"), false},
		{"empty state", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestInvoiceMachine_Transitions(t *testing.T) {
	tests := []struct {
		name      string
		from      State
		trigger   Trigger
		wantState State
		wantErr   error
	}{
		{"submit draft", StateDraft, TriggerSubmit, StateSubmitted, nil},
		{"validate submitted", StateSubmitted, TriggerValidate, StateValidated, nil},
		{"reject submitted", StateSubmitted, TriggerReject, StateRejected, nil},
		{"validate draft", StateDraft, TriggerValidate, StateDraft, ErrInvalidTransition},
		{"reject draft", StateDraft, TriggerReject, StateDraft, ErrInvalidTransition},
		{"submit submitted", StateSubmitted, TriggerSubmit, StateSubmitted, ErrInvalidTransition},
		{"submit validated", StateValidated, TriggerSubmit, StateValidated, ErrInvalidTransition},
		{"validate rejected", StateRejected, TriggerValidate, StateRejected, ErrInvalidTransition},
		{"resubmit rejected", StateRejected, TriggerSubmit, StateRejected, ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewInvoiceMachine(tt.from)

			err := m.Fire(context.Background(), tt.trigger)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Fire() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("Fire() unexpected error: %v", err)
			}

			if got := m.State(); got != tt.wantState {
				t.Errorf("State() = %v, want %v", got, tt.wantState)
			}
		})
	}
}

func TestInvoiceMachine_TerminalStatesPermitNothing(t *testing.T) {
	for _, state := range []State{StateValidated, StateRejected} {
		t.Run(string(state), func(t *testing.T) {
			m := NewInvoiceMachine(state)
			if got := m.PermittedTriggers(); len(got) != 0 {
				t.Errorf("PermittedTriggers() = %v, want none", got)
			}
		})
	}
}

func TestInvoiceMachine_CanFire(t *testing.T) {
	m := NewInvoiceMachine(StateDraft)

	if !m.CanFire(TriggerSubmit) {
		t.Error("CanFire(TriggerSubmit) = false in draft, want true")
	}
	if m.CanFire(TriggerValidate) {
		t.Error("CanFire(TriggerValidate) = true in draft, want false")
	}
}

func TestBuilder_GuardBlocksTransition(t *testing.T) {
	b := NewBuilder()
	b.Configure(StateDraft).
		PermitIf(TriggerSubmit, StateSubmitted, func(ctx context.Context) bool { return false })
	m := b.Build(StateDraft)

	err := m.Fire(context.Background(), TriggerSubmit)
	if !errors.Is(err, ErrGuardFailed) {
		t.Fatalf("Fire() error = %v, want ErrGuardFailed", err)
	}
	if m.State() != StateDraft {
		t.Errorf("State() = %v, want %v", m.State(), StateDraft)
	}
}

func TestBuilder_MachinesAreIndependent(t *testing.T) {
	b := NewBuilder()
	b.Configure(StateDraft).Permit(TriggerSubmit, StateSubmitted)

	m1 := b.Build(StateDraft)
	m2 := b.Build(StateDraft)

	if err := m1.Fire(context.Background(), TriggerSubmit); err != nil {
		t.Fatalf("Fire() unexpected error: %v", err)
	}
	if m2.State() != StateDraft {
		t.Errorf("sibling machine state = %v, want %v", m2.State(), StateDraft)
	}
}
