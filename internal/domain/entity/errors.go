package entity

import (
	"errors"
	"fmt"
)

// Validation failures keep the invoice in Draft and are surfaced to the
// caller; state failures are no-ops that never change stored records.
var (
	ErrNegativeQuantityOrRate = errors.New("quantity and rate must not be negative")
	ErrTaxPercentRange        = errors.New("tax percent must be between 0 and 100")
	ErrUnknownUnit            = errors.New("unknown unit of measure")
	ErrIncompleteInvoice      = errors.New("invoice is missing mandatory fields")
	ErrMalformedSTRN          = errors.New("buyer STRN does not match the required format")
	ErrMissingHSCode          = errors.New("product HS code is required")
	ErrMalformedHSCode        = errors.New("product HS code is not a valid tariff code")
	ErrMissingProductName     = errors.New("product name is required")
	ErrDuplicateHSCode        = errors.New("a product with this HS code already exists")

	ErrInvoiceImmutable   = errors.New("invoice can only be edited while in draft")
	ErrNotRejected        = errors.New("only rejected invoices can be copied to a new draft")
	ErrSubmissionInFlight = errors.New("a submission for this invoice is already pending")

	ErrProductNotFound = errors.New("product not found")
	ErrInvoiceNotFound = errors.New("invoice not found")
)

// ValidationError wraps a sentinel with human-readable detail so callers
// can branch on the cause with errors.Is while logs stay descriptive.
type ValidationError struct {
	Err     error
	Details string
}

func (e *ValidationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// StateError reports an operation attempted against an invoice whose
// lifecycle status forbids it. It leaves the stored record untouched.
type StateError struct {
	Err     error
	Details string
}

func (e *StateError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *StateError) Unwrap() error {
	return e.Err
}

// AuthorityError is a rejection returned by the FBR gateway. The reason is
// stored verbatim on the invoice; the submission is never retried.
type AuthorityError struct {
	InvoiceNumber string
	Reason        string
}

func (e *AuthorityError) Error() string {
	return fmt.Sprintf("authority rejected invoice %s: %s", e.InvoiceNumber, e.Reason)
}
