package annexc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExcelExporter_Export(t *testing.T) {
	report, err := Generate(februaryInvoices(), mustPeriod(t, "2026-02"))
	require.NoError(t, err)

	exporter := NewExcelExporter("ABC Enterprises (Pvt) Ltd", "32-00-0000-000-00", zap.NewNop())
	f, err := exporter.Export(report, time.Date(2026, time.February, 18, 2, 17, 42, 0, time.UTC))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Annex-C Sales Tax Return", title)

	period, err := f.GetCellValue(sheetName, "A3")
	require.NoError(t, err)
	assert.Equal(t, "Tax Period: 2026-02", period)

	header, err := f.GetCellValue(sheetName, "A5")
	require.NoError(t, err)
	assert.Equal(t, "Invoice No.", header)

	firstInvoice, err := f.GetCellValue(sheetName, "A6")
	require.NoError(t, err)
	assert.Equal(t, "INV-1771102188212", firstInvoice)

	firstTaxable, err := f.GetCellValue(sheetName, "G6")
	require.NoError(t, err)
	assert.Equal(t, "125,400.00", firstTaxable)

	totalLabel, err := f.GetCellValue(sheetName, "A9")
	require.NoError(t, err)
	assert.Equal(t, "TOTAL", totalLabel)

	totalTax, err := f.GetCellValue(sheetName, "H9")
	require.NoError(t, err)
	assert.Equal(t, "82,008.00", totalTax)
}

func TestExcelExporter_EmptyReport(t *testing.T) {
	report, err := Generate(nil, mustPeriod(t, "2026-02"))
	require.NoError(t, err)

	exporter := NewExcelExporter("ABC Enterprises (Pvt) Ltd", "32-00-0000-000-00", zap.NewNop())
	f, err := exporter.Export(report, time.Now())
	require.NoError(t, err)
	defer f.Close()

	totalLabel, err := f.GetCellValue(sheetName, "A6")
	require.NoError(t, err)
	assert.Equal(t, "TOTAL", totalLabel)

	total, err := f.GetCellValue(sheetName, "I6")
	require.NoError(t, err)
	assert.Equal(t, "0.00", total)
}
