package entity

import "github.com/shopspring/decimal"

// Unit is a unit of measure accepted by the authority.
type Unit string

const (
	UnitPCS Unit = "PCS"
	UnitKG  Unit = "KG"
	UnitLTR Unit = "LTR"
	UnitMTR Unit = "MTR"
	UnitBOX Unit = "BOX"
)

var validUnits = map[Unit]bool{
	UnitPCS: true,
	UnitKG:  true,
	UnitLTR: true,
	UnitMTR: true,
	UnitBOX: true,
}

// IsValid returns true if the unit is one the authority accepts.
func (u Unit) IsValid() bool {
	return validUnits[u]
}

// InvoiceType distinguishes tax invoices from debit/credit notes.
type InvoiceType string

const (
	InvoiceTypeTaxInvoice InvoiceType = "Tax Invoice"
	InvoiceTypeDebitNote  InvoiceType = "Debit Note"
	InvoiceTypeCreditNote InvoiceType = "Credit Note"
)

// IsValid returns true for a recognized invoice type.
func (t InvoiceType) IsValid() bool {
	switch t {
	case InvoiceTypeTaxInvoice, InvoiceTypeDebitNote, InvoiceTypeCreditNote:
		return true
	}
	return false
}

// SaleType determines the statutory tax treatment of the whole invoice.
// ZeroRated and Exempt force the effective tax percent of every line to
// zero regardless of the catalog value.
type SaleType string

const (
	SaleTypeStandard  SaleType = "Standard"
	SaleTypeZeroRated SaleType = "Zero-Rated"
	SaleTypeExempt    SaleType = "Exempt"
)

// IsValid returns true for a recognized sale type.
func (s SaleType) IsValid() bool {
	switch s {
	case SaleTypeStandard, SaleTypeZeroRated, SaleTypeExempt:
		return true
	}
	return false
}

// TaxFree reports whether the sale type suppresses sales tax entirely.
func (s SaleType) TaxFree() bool {
	return s == SaleTypeZeroRated || s == SaleTypeExempt
}

// PaymentMode is how the buyer settles the invoice.
type PaymentMode string

const (
	PaymentModeCash         PaymentMode = "Cash"
	PaymentModeCredit       PaymentMode = "Credit"
	PaymentModeBankTransfer PaymentMode = "Bank Transfer"
)

// IsValid returns true for a recognized payment mode.
func (m PaymentMode) IsValid() bool {
	switch m {
	case PaymentModeCash, PaymentModeCredit, PaymentModeBankTransfer:
		return true
	}
	return false
}

// Province is a Pakistani province or territory recognized on the return.
type Province string

const (
	ProvinceSindh       Province = "Sindh"
	ProvincePunjab      Province = "Punjab"
	ProvinceKP          Province = "KP"
	ProvinceBalochistan Province = "Balochistan"
	ProvinceICT         Province = "ICT"
)

var validProvinces = map[Province]bool{
	ProvinceSindh:       true,
	ProvincePunjab:      true,
	ProvinceKP:          true,
	ProvinceBalochistan: true,
	ProvinceICT:         true,
}

// IsValid returns true for a recognized province.
func (p Province) IsValid() bool {
	return validProvinces[p]
}

// DefaultTaxPercent applies to line items whose HS code does not resolve
// in the catalog and that carry no explicit override.
var DefaultTaxPercent = decimal.NewFromInt(18)

// CheckTaxPercent validates that a tax percent lies in [0,100].
func CheckTaxPercent(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return &ValidationError{Err: ErrTaxPercentRange, Details: pct.String()}
	}
	return nil
}
