package entity

import "regexp"

// BuyerType distinguishes sales-tax registered buyers from unregistered
// ones, which changes how the STRN field is treated.
type BuyerType string

const (
	BuyerTypeRegistered   BuyerType = "Registered"
	BuyerTypeUnregistered BuyerType = "Unregistered"
)

// IsValid returns true for a recognized buyer type.
func (t BuyerType) IsValid() bool {
	return t == BuyerTypeRegistered || t == BuyerTypeUnregistered
}

// UnregisteredSTRN is the placeholder the authority reserves for buyers
// without a sales-tax registration. It is forced, never user-supplied.
const UnregisteredSTRN = "9999997"

// strnPattern is the authority's registered-buyer STRN layout:
// province code, two digit groups, body number, checksum/suffix groups.
var strnPattern = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}-\d{3}-\d{2}$`)

// ValidSTRN reports whether s matches the NN-NN-NNNN-NNN-NN layout.
func ValidSTRN(s string) bool {
	return strnPattern.MatchString(s)
}

// BuyerProfile identifies the counterparty on an invoice.
type BuyerProfile struct {
	Name                string    `json:"name"`
	NTNOrCNIC           string    `json:"ntn_cnic,omitempty"`
	STRN                string    `json:"strn"`
	Type                BuyerType `json:"type"`
	Address             string    `json:"address,omitempty"`
	DestinationProvince Province  `json:"destination_province"`
}

// Normalize enforces the registration invariant: unregistered buyers
// always carry the sentinel STRN, and switching back to registered clears
// the sentinel so the user must supply a real one.
func (b *BuyerProfile) Normalize() {
	switch b.Type {
	case BuyerTypeUnregistered:
		b.STRN = UnregisteredSTRN
	case BuyerTypeRegistered:
		if b.STRN == UnregisteredSTRN {
			b.STRN = ""
		}
	}
}

// Validate checks the fields required before an invoice can be submitted.
func (b *BuyerProfile) Validate() error {
	if b.Name == "" {
		return &ValidationError{Err: ErrIncompleteInvoice, Details: "buyer name is required"}
	}
	if !b.Type.IsValid() {
		return &ValidationError{Err: ErrIncompleteInvoice, Details: "buyer type is required"}
	}
	if !b.DestinationProvince.IsValid() {
		return &ValidationError{Err: ErrIncompleteInvoice, Details: "destination province is required"}
	}
	if b.Type == BuyerTypeRegistered && !ValidSTRN(b.STRN) {
		return &ValidationError{Err: ErrMalformedSTRN, Details: b.STRN}
	}
	return nil
}
