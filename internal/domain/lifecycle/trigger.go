package lifecycle

// Trigger is an event that can move an invoice between states.
type Trigger string

const (
	// TriggerSubmit hands a draft to the authority gateway.
	TriggerSubmit Trigger = "SUBMIT"

	// TriggerValidate is the positive authority acknowledgment carrying
	// the FBR number.
	TriggerValidate Trigger = "VALIDATE"

	// TriggerReject is the negative authority acknowledgment carrying a
	// rejection reason.
	TriggerReject Trigger = "REJECT"
)

// String returns the string representation of the trigger.
func (t Trigger) String() string {
	return string(t)
}
