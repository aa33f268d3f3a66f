package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/abcenterprises/fbr-einvoicing/internal/domain/lifecycle"
)

// LineItem is one row of an invoice. Amounts are never stored: line
// amount and line tax are derived by the tax engine from quantity, rate
// and the effective tax percent.
type LineItem struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	HSCode      string          `json:"hs_code,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        Unit            `json:"unit"`
	Rate        decimal.Decimal `json:"rate"`
	TaxPercent  decimal.Decimal `json:"tax_percent"`
}

// Validate rejects negative quantities/rates and out-of-range tax
// percents outright rather than clamping them.
func (li *LineItem) Validate() error {
	if li.Quantity.IsNegative() || li.Rate.IsNegative() {
		return &ValidationError{
			Err:     ErrNegativeQuantityOrRate,
			Details: "quantity " + li.Quantity.String() + ", rate " + li.Rate.String(),
		}
	}
	if !li.Unit.IsValid() {
		return &ValidationError{Err: ErrUnknownUnit, Details: string(li.Unit)}
	}
	return CheckTaxPercent(li.TaxPercent)
}

// Invoice is a sales-tax invoice moving through the statutory lifecycle.
// All monetary totals are derived views computed by the tax engine; only
// the inputs are persisted.
type Invoice struct {
	ID              int64               `json:"id"`
	InvoiceNumber   string              `json:"invoice_number"`
	FBRNumber       string              `json:"fbr_number,omitempty"`
	Date            time.Time           `json:"date"`
	InvoiceType     InvoiceType         `json:"invoice_type"`
	SaleType        SaleType            `json:"sale_type"`
	PaymentMode     PaymentMode         `json:"payment_mode"`
	OriginProvince  Province            `json:"origin_province"`
	Buyer           BuyerProfile        `json:"buyer"`
	LineItems       []LineItem          `json:"line_items"`
	Status          lifecycle.State     `json:"status"`
	RejectionReason string              `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	SubmittedAt     *time.Time          `json:"submitted_at,omitempty"`
	ValidatedAt     *time.Time          `json:"validated_at,omitempty"`
	RejectedAt      *time.Time          `json:"rejected_at,omitempty"`
}

// IsEditable reports whether field edits are still allowed. Everything
// except status metadata freezes once the invoice leaves Draft.
func (inv *Invoice) IsEditable() bool {
	return inv.Status == lifecycle.StateDraft
}

// ValidateForSubmission checks the mandatory-field rules that gate the
// Draft to Submitted transition.
func (inv *Invoice) ValidateForSubmission() error {
	if err := inv.Buyer.Validate(); err != nil {
		return err
	}
	if !inv.InvoiceType.IsValid() {
		return &ValidationError{Err: ErrIncompleteInvoice, Details: "invoice type is required"}
	}
	if !inv.SaleType.IsValid() {
		return &ValidationError{Err: ErrIncompleteInvoice, Details: "sale type is required"}
	}
	if !inv.OriginProvince.IsValid() {
		return &ValidationError{Err: ErrIncompleteInvoice, Details: "origin province is required"}
	}

	hasQuantity := false
	for i := range inv.LineItems {
		if err := inv.LineItems[i].Validate(); err != nil {
			return err
		}
		if inv.LineItems[i].Quantity.IsPositive() {
			hasQuantity = true
		}
	}
	if !hasQuantity {
		return &ValidationError{Err: ErrIncompleteInvoice, Details: "at least one line item with quantity > 0 is required"}
	}
	return nil
}

// Clone returns a deep copy. The service layer replaces a draft wholesale
// on each edit instead of mutating it in place.
func (inv *Invoice) Clone() *Invoice {
	out := *inv
	out.LineItems = append([]LineItem{}, inv.LineItems...)
	if inv.SubmittedAt != nil {
		t := *inv.SubmittedAt
		out.SubmittedAt = &t
	}
	if inv.ValidatedAt != nil {
		t := *inv.ValidatedAt
		out.ValidatedAt = &t
	}
	if inv.RejectedAt != nil {
		t := *inv.RejectedAt
		out.RejectedAt = &t
	}
	return &out
}

// NewDraftFrom copies a rejected invoice into a fresh draft so the
// original keeps its audit trail. Authority metadata is not carried over.
func NewDraftFrom(rejected *Invoice, now time.Time) *Invoice {
	draft := rejected.Clone()
	draft.ID = 0
	draft.InvoiceNumber = ""
	draft.FBRNumber = ""
	draft.Status = lifecycle.StateDraft
	draft.RejectionReason = ""
	draft.Date = now
	draft.CreatedAt = now
	draft.UpdatedAt = now
	draft.SubmittedAt = nil
	draft.ValidatedAt = nil
	draft.RejectedAt = nil
	return draft
}
