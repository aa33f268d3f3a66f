package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ComplianceRecord is the read-only projection of a validated invoice
// into the columns of the Annex-C statutory return. It is derived on
// demand by the aggregator and never persisted as a writable entity.
type ComplianceRecord struct {
	InvoiceNumber string          `json:"invoice_number"`
	FBRNumber     string          `json:"fbr_number"`
	Date          time.Time       `json:"date"`
	BuyerName     string          `json:"buyer_name"`
	BuyerSTRN     string          `json:"buyer_strn"`
	Province      Province        `json:"province"`
	TaxableAmount decimal.Decimal `json:"taxable_amount"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}
