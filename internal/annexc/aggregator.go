// Package annexc builds the Annex-C statutory sales-tax return: the
// monthly listing of authority-validated invoices with their taxable, tax
// and total amounts.
package annexc

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/abcenterprises/fbr-einvoicing/internal/domain/entity"
	"github.com/abcenterprises/fbr-einvoicing/internal/domain/lifecycle"
	"github.com/abcenterprises/fbr-einvoicing/internal/tax"
)

// Totals are the report footer sums, rounded once from the unrounded
// per-invoice amounts.
type Totals struct {
	Taxable decimal.Decimal `json:"taxable"`
	Tax     decimal.Decimal `json:"tax"`
	Total   decimal.Decimal `json:"total"`
}

// Report is the generated Annex-C for one tax period. It is read-only:
// regenerating from the same inputs yields an identical report.
type Report struct {
	Period  string                    `json:"period"`
	Records []entity.ComplianceRecord `json:"records"`
	Totals  Totals                    `json:"totals"`
	Count   int                       `json:"count"`
}

// Generate filters the invoices down to Validated ones dated inside the
// period and projects them into compliance records. Draft, Submitted and
// Rejected invoices are unconditionally excluded: the return may list
// only authority-acknowledged transactions. Inputs are never mutated.
func Generate(invoices []*entity.Invoice, period TaxPeriod) (*Report, error) {
	report := &Report{
		Period:  period.String(),
		Records: make([]entity.ComplianceRecord, 0),
	}

	taxable := decimal.Zero
	taxSum := decimal.Zero
	total := decimal.Zero

	for _, inv := range invoices {
		if inv.Status != lifecycle.StateValidated || !period.Contains(inv.Date) {
			continue
		}

		comp, err := tax.Compute(inv.LineItems, inv.SaleType)
		if err != nil {
			return nil, err
		}

		// Record amounts are presentation values, rounded here; the
		// footer accumulates the unrounded figures.
		report.Records = append(report.Records, entity.ComplianceRecord{
			InvoiceNumber: inv.InvoiceNumber,
			FBRNumber:     inv.FBRNumber,
			Date:          inv.Date,
			BuyerName:     inv.Buyer.Name,
			BuyerSTRN:     inv.Buyer.STRN,
			Province:      inv.Buyer.DestinationProvince,
			TaxableAmount: tax.Round2(comp.Subtotal),
			TaxAmount:     tax.Round2(comp.TotalTax),
			TotalAmount:   tax.Round2(comp.GrandTotal),
		})

		taxable = taxable.Add(comp.Subtotal)
		taxSum = taxSum.Add(comp.TotalTax)
		total = total.Add(comp.GrandTotal)
	}

	sort.SliceStable(report.Records, func(i, j int) bool {
		if !report.Records[i].Date.Equal(report.Records[j].Date) {
			return report.Records[i].Date.Before(report.Records[j].Date)
		}
		return report.Records[i].InvoiceNumber < report.Records[j].InvoiceNumber
	})

	report.Totals = Totals{
		Taxable: tax.Round2(taxable),
		Tax:     tax.Round2(taxSum),
		Total:   tax.Round2(total),
	}
	report.Count = len(report.Records)
	return report, nil
}
