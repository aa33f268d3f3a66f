package lifecycle

// State is a legal status of an invoice.
type State string

const (
	StateDraft     State = "DRAFT"
	StateSubmitted State = "SUBMITTED"
	StateValidated State = "VALIDATED"
	StateRejected  State = "REJECTED"
)

var validStates = map[State]bool{
	StateDraft:     true,
	StateSubmitted: true,
	StateValidated: true,
	StateRejected:  true,
}

// Validated and Rejected are terminal: a rejected invoice is corrected by
// creating a new draft, never by mutating the rejected one.
var terminalStates = map[State]bool{
	StateValidated: true,
	StateRejected:  true,
}

// IsTerminal returns true if no further transitions are allowed.
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsValid returns true if the state is a recognized invoice status.
func (s State) IsValid() bool {
	return validStates[s]
}

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}
