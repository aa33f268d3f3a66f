package port

import (
	"context"

	"github.com/abcenterprises/fbr-einvoicing/internal/domain/entity"
)

// AckOutcome is the authority's answer to a submission.
type AckOutcome string

const (
	// AckValidated means the authority accepted the invoice and assigned
	// an FBR number.
	AckValidated AckOutcome = "VALIDATED"

	// AckRejected means the authority refused the invoice; the reason is
	// carried verbatim.
	AckRejected AckOutcome = "REJECTED"

	// AckPending means no final outcome is available yet; the poller asks
	// again later.
	AckPending AckOutcome = "PENDING"
)

// Acknowledgment is the authority gateway's response for one invoice.
type Acknowledgment struct {
	Outcome   AckOutcome `json:"outcome"`
	FBRNumber string     `json:"fbr_number,omitempty"`
	Reason    string     `json:"reason,omitempty"`
}

// AuthorityGateway is the FBR submission collaborator. Submissions are
// idempotent per invoice number: retrying never creates a duplicate
// authority-side record, and a replay returns the original outcome.
type AuthorityGateway interface {
	// Submit hands a submitted invoice to the authority. A transport
	// error leaves the outcome unknown; the invoice stays Submitted and
	// is reconciled via Status.
	Submit(ctx context.Context, invoice *entity.Invoice) (*Acknowledgment, error)

	// Status returns the recorded outcome for a previously submitted
	// invoice, or a pending acknowledgment if none is known yet.
	Status(ctx context.Context, invoiceNumber string) (*Acknowledgment, error)
}
