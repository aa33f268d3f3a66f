package annexc

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/abcenterprises/fbr-einvoicing/internal/tax"
)

// ExcelExporter renders a generated report as the Annex-C spreadsheet
// filed with the return.
type ExcelExporter struct {
	sellerName string
	sellerSTRN string
	logger     *zap.Logger
}

// NewExcelExporter creates an exporter stamped with the seller identity.
func NewExcelExporter(sellerName, sellerSTRN string, logger *zap.Logger) *ExcelExporter {
	return &ExcelExporter{
		sellerName: sellerName,
		sellerSTRN: sellerSTRN,
		logger:     logger,
	}
}

const sheetName = "Annex-C"

var columns = []string{
	"Invoice No.", "FBR Invoice No.", "Date", "Buyer Name", "Buyer STRN",
	"Province", "Taxable Amount", "Tax Amount", "Total Amount",
}

// Export builds the workbook for one report. The caller owns the returned
// file and is responsible for closing it.
func (e *ExcelExporter) Export(report *Report, generatedAt time.Time) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		e.logger.Warn("Failed to drop default sheet", zap.Error(err))
	}

	e.setCell(f, "A1", "Annex-C Sales Tax Return")
	e.setCell(f, "A2", fmt.Sprintf("Seller: %s (STRN %s)", e.sellerName, e.sellerSTRN))
	e.setCell(f, "A3", "Tax Period: "+report.Period)

	headerRow := 5
	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return nil, fmt.Errorf("failed to address header cell: %w", err)
		}
		e.setCell(f, cell, col)
	}

	row := headerRow + 1
	for _, rec := range report.Records {
		values := []interface{}{
			rec.InvoiceNumber,
			rec.FBRNumber,
			rec.Date.Format("02 Jan 2006"),
			rec.BuyerName,
			rec.BuyerSTRN,
			string(rec.Province),
			tax.FormatAmount(rec.TaxableAmount),
			tax.FormatAmount(rec.TaxAmount),
			tax.FormatAmount(rec.TotalAmount),
		}
		for i, v := range values {
			cell, err := excelize.CoordinatesToCellName(i+1, row)
			if err != nil {
				return nil, fmt.Errorf("failed to address record cell: %w", err)
			}
			e.setCell(f, cell, v)
		}
		row++
	}

	e.setCell(f, fmt.Sprintf("A%d", row), "TOTAL")
	e.setCell(f, fmt.Sprintf("G%d", row), tax.FormatAmount(report.Totals.Taxable))
	e.setCell(f, fmt.Sprintf("H%d", row), tax.FormatAmount(report.Totals.Tax))
	e.setCell(f, fmt.Sprintf("I%d", row), tax.FormatAmount(report.Totals.Total))

	note := fmt.Sprintf(
		"Includes only FBR-validated invoices for the selected period. Generated on %s.",
		generatedAt.Format("02/01/2006 15:04:05"))
	e.setCell(f, fmt.Sprintf("A%d", row+2), note)

	e.logger.Info("Annex-C workbook built",
		zap.String("period", report.Period),
		zap.Int("records", report.Count))

	return f, nil
}

// setCell sets a cell value, logging rather than failing on a bad write.
func (e *ExcelExporter) setCell(f *excelize.File, cell string, value interface{}) {
	if err := f.SetCellValue(sheetName, cell, value); err != nil {
		e.logger.Warn("Failed to set cell value",
			zap.String("cell", cell),
			zap.Error(err))
	}
}
