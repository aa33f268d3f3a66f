package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry keyed by its HS (tariff) code. The invoice
// core only reads it: a line item naming an HS code takes its description
// from the catalog and its unit and rate as defaults.
type Product struct {
	ID          int64           `json:"id"`
	HSCode      string          `json:"hs_code"`
	Name        string          `json:"name"`
	Unit        Unit            `json:"unit"`
	DefaultRate decimal.Decimal `json:"default_rate"`
	TaxPercent  decimal.Decimal `json:"tax_percent"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Validate checks catalog invariants before a product is stored.
func (p *Product) Validate() error {
	if p.HSCode == "" {
		return &ValidationError{Err: ErrMissingHSCode}
	}
	if p.Name == "" {
		return &ValidationError{Err: ErrMissingProductName}
	}
	if !p.Unit.IsValid() {
		return &ValidationError{Err: ErrUnknownUnit, Details: string(p.Unit)}
	}
	if p.DefaultRate.IsNegative() {
		return &ValidationError{Err: ErrNegativeQuantityOrRate, Details: "default_rate " + p.DefaultRate.String()}
	}
	if err := CheckTaxPercent(p.TaxPercent); err != nil {
		return err
	}
	return nil
}
