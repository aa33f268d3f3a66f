// Package tax computes the monetary fields of an invoice. Everything here
// is a pure function of its inputs: totals are derived views recomputed on
// every edit, never independently settable fields.
package tax

import (
	"github.com/shopspring/decimal"

	"github.com/abcenterprises/fbr-einvoicing/internal/domain/entity"
)

// LineTotal holds the derived amounts for a single line item, unrounded.
type LineTotal struct {
	LineAmount decimal.Decimal `json:"line_amount"`
	LineTax    decimal.Decimal `json:"line_tax"`
}

// Computation is the full monetary breakdown of an invoice. All values
// carry the unrounded internal precision; rounding to 2dp happens only at
// the display/report boundary so per-line rounding error never compounds
// into the totals.
type Computation struct {
	PerItem    []LineTotal     `json:"per_item"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	TotalTax   decimal.Decimal `json:"total_tax"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// EffectiveTaxPercent resolves the tax percent actually applied to a line:
// zero-rated and exempt sales force it to zero regardless of the catalog
// or any manual override.
func EffectiveTaxPercent(item *entity.LineItem, saleType entity.SaleType) decimal.Decimal {
	if saleType.TaxFree() {
		return decimal.Zero
	}
	return item.TaxPercent
}

// Compute turns line items and the invoice sale type into per-item and
// aggregate amounts. Negative quantities or rates are rejected, not
// clamped.
func Compute(items []entity.LineItem, saleType entity.SaleType) (*Computation, error) {
	comp := &Computation{
		PerItem:    make([]LineTotal, 0, len(items)),
		Subtotal:   decimal.Zero,
		TotalTax:   decimal.Zero,
		GrandTotal: decimal.Zero,
	}

	for i := range items {
		// Only the numeric inputs matter here; descriptive fields may
		// still be blank on a draft being previewed.
		if items[i].Quantity.IsNegative() || items[i].Rate.IsNegative() {
			return nil, &entity.ValidationError{
				Err:     entity.ErrNegativeQuantityOrRate,
				Details: "quantity " + items[i].Quantity.String() + ", rate " + items[i].Rate.String(),
			}
		}
		if err := entity.CheckTaxPercent(items[i].TaxPercent); err != nil {
			return nil, err
		}

		lineAmount := items[i].Quantity.Mul(items[i].Rate)
		// Shift(-2) divides by 100 exactly, keeping the tax unrounded.
		lineTax := lineAmount.Mul(EffectiveTaxPercent(&items[i], saleType)).Shift(-2)

		comp.PerItem = append(comp.PerItem, LineTotal{LineAmount: lineAmount, LineTax: lineTax})
		comp.Subtotal = comp.Subtotal.Add(lineAmount)
		comp.TotalTax = comp.TotalTax.Add(lineTax)
	}

	comp.GrandTotal = comp.Subtotal.Add(comp.TotalTax)
	return comp, nil
}
