package lifecycle

import (
	"context"
	"fmt"
)

// GuardFunc evaluates whether a transition should be allowed.
type GuardFunc func(ctx context.Context) bool

// Builder assembles a state machine from per-state transition tables.
type Builder interface {
	// Configure returns the configuration for the given state.
	Configure(state State) StateConfiguration

	// Build creates a machine instance positioned at the initial state.
	Build(initialState State) StateMachine
}

// StateConfiguration configures transitions out of a specific state.
type StateConfiguration interface {
	// Permit allows a trigger to transition to the target state.
	Permit(trigger Trigger, toState State) StateConfiguration

	// PermitIf allows the transition only when the guard passes.
	PermitIf(trigger Trigger, toState State, guard GuardFunc) StateConfiguration
}

type transition struct {
	toState State
	guard   GuardFunc
}

type stateConfig struct {
	fromState   State
	transitions map[Trigger][]transition
}

type builder struct {
	configurations map[State]*stateConfig
}

type machine struct {
	currentState   State
	configurations map[State]*stateConfig
}

// NewBuilder creates an empty state machine builder.
func NewBuilder() Builder {
	return &builder{configurations: make(map[State]*stateConfig)}
}

func (b *builder) Configure(state State) StateConfiguration {
	if !state.IsValid() {
		panic(fmt.Sprintf("invalid state: %s", state))
	}

	config, ok := b.configurations[state]
	if !ok {
		config = &stateConfig{
			fromState:   state,
			transitions: make(map[Trigger][]transition),
		}
		b.configurations[state] = config
	}
	return config
}

func (b *builder) Build(initialState State) StateMachine {
	if !initialState.IsValid() {
		panic(fmt.Sprintf("invalid initial state: %s", initialState))
	}

	// Copy the tables so machines built from the same builder stay independent.
	configs := make(map[State]*stateConfig, len(b.configurations))
	for state, config := range b.configurations {
		transitions := make(map[Trigger][]transition, len(config.transitions))
		for trigger, ts := range config.transitions {
			transitions[trigger] = append([]transition{}, ts...)
		}
		configs[state] = &stateConfig{fromState: state, transitions: transitions}
	}

	return &machine{currentState: initialState, configurations: configs}
}

func (c *stateConfig) Permit(trigger Trigger, toState State) StateConfiguration {
	return c.PermitIf(trigger, toState, nil)
}

func (c *stateConfig) PermitIf(trigger Trigger, toState State, guard GuardFunc) StateConfiguration {
	if !toState.IsValid() {
		panic(fmt.Sprintf("invalid target state: %s", toState))
	}
	c.transitions[trigger] = append(c.transitions[trigger], transition{toState: toState, guard: guard})
	return c
}

func (m *machine) State() State {
	return m.currentState
}

func (m *machine) CanFire(trigger Trigger) bool {
	config, ok := m.configurations[m.currentState]
	if !ok {
		return false
	}
	return len(config.transitions[trigger]) > 0
}

func (m *machine) Fire(ctx context.Context, trigger Trigger) error {
	config, ok := m.configurations[m.currentState]
	if !ok {
		return fmt.Errorf("%w: cannot fire %s from terminal state %s", ErrInvalidTransition, trigger, m.currentState)
	}

	transitions := config.transitions[trigger]
	if len(transitions) == 0 {
		return fmt.Errorf("%w: cannot fire %s from state %s", ErrInvalidTransition, trigger, m.currentState)
	}

	for _, t := range transitions {
		if t.guard == nil || t.guard(ctx) {
			m.currentState = t.toState
			return nil
		}
	}

	return fmt.Errorf("%w: trigger %s from state %s", ErrGuardFailed, trigger, m.currentState)
}

func (m *machine) PermittedTriggers() []Trigger {
	config, ok := m.configurations[m.currentState]
	if !ok {
		return []Trigger{}
	}

	triggers := make([]Trigger, 0, len(config.transitions))
	for trigger := range config.transitions {
		triggers = append(triggers, trigger)
	}
	return triggers
}
