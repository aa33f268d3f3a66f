package service

import (
	"bytes"
	"context"
	"time"

	"github.com/abcenterprises/fbr-einvoicing/internal/annexc"
	"github.com/abcenterprises/fbr-einvoicing/internal/application/port"
	"github.com/abcenterprises/fbr-einvoicing/internal/domain/lifecycle"
)

// AnnexCService produces the monthly Annex-C domestic sales summary for
// the sales tax return. Only validated invoices enter the report.
type AnnexCService interface {
	Report(ctx context.Context, period annexc.TaxPeriod) (*annexc.Report, error)
	ExportExcel(ctx context.Context, period annexc.TaxPeriod) ([]byte, string, error)
}

type annexCServiceImpl struct {
	invoiceRepo port.InvoiceRepository
	exporter    *annexc.ExcelExporter
	logger      Logger
}

// NewAnnexCService creates a new AnnexCService
func NewAnnexCService(invoiceRepo port.InvoiceRepository, exporter *annexc.ExcelExporter, logger Logger) AnnexCService {
	return &annexCServiceImpl{
		invoiceRepo: invoiceRepo,
		exporter:    exporter,
		logger:      logger,
	}
}

// Report aggregates the period's validated invoices. Running it twice
// over the same data yields an identical report.
func (s *annexCServiceImpl) Report(ctx context.Context, period annexc.TaxPeriod) (*annexc.Report, error) {
	validated, err := s.invoiceRepo.ListByStatus(ctx, lifecycle.StateValidated, -1)
	if err != nil {
		s.logger.Error("Failed to load validated invoices", "error", err, "period", period.String())
		return nil, err
	}

	report, err := annexc.Generate(validated, period)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Annex-C report generated",
		"period", period.String(),
		"invoices", report.Count,
		"sales_tax", report.Totals.Tax.String())
	return report, nil
}

// ExportExcel renders the period's report as an xlsx workbook and
// returns the file contents with a suggested filename.
func (s *annexCServiceImpl) ExportExcel(ctx context.Context, period annexc.TaxPeriod) ([]byte, string, error) {
	report, err := s.Report(ctx, period)
	if err != nil {
		return nil, "", err
	}

	f, err := s.exporter.Export(report, time.Now())
	if err != nil {
		s.logger.Error("Failed to render Annex-C workbook", "error", err, "period", period.String())
		return nil, "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", err
	}

	filename := "annex-c-" + period.String() + ".xlsx"
	return buf.Bytes(), filename, nil
}
