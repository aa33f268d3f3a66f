package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/abcenterprises/fbr-einvoicing/internal/application/port"
	"github.com/abcenterprises/fbr-einvoicing/internal/domain/entity"
	"github.com/abcenterprises/fbr-einvoicing/internal/domain/lifecycle"
	"github.com/abcenterprises/fbr-einvoicing/internal/tax"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// InvoiceService manages invoices through the statutory lifecycle:
// drafts are freely editable, submission hands the invoice to the tax
// authority, and the authority's acknowledgment settles it as validated
// or rejected.
type InvoiceService interface {
	CreateDraft(ctx context.Context, draft *entity.Invoice) (*entity.Invoice, error)
	GetInvoice(ctx context.Context, id int64) (*entity.Invoice, error)
	GetByNumber(ctx context.Context, invoiceNumber string) (*entity.Invoice, error)
	ListInvoices(ctx context.Context, limit, offset int) ([]*entity.Invoice, error)
	UpdateDraft(ctx context.Context, id int64, replacement *entity.Invoice) (*entity.Invoice, error)
	Submit(ctx context.Context, id int64) (*entity.Invoice, error)
	ApplyAcknowledgment(ctx context.Context, invoice *entity.Invoice, ack *port.Acknowledgment) error
	Redraft(ctx context.Context, id int64) (*entity.Invoice, error)
	Totals(invoice *entity.Invoice) (*tax.Computation, error)
}

type invoiceServiceImpl struct {
	invoiceRepo port.InvoiceRepository
	productRepo port.ProductRepository
	gateway     port.AuthorityGateway
	logger      Logger

	// inFlight guards against concurrent submissions of the same invoice.
	mu       sync.Mutex
	inFlight map[int64]bool
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo port.InvoiceRepository,
	productRepo port.ProductRepository,
	gateway port.AuthorityGateway,
	logger Logger,
) InvoiceService {
	return &invoiceServiceImpl{
		invoiceRepo: invoiceRepo,
		productRepo: productRepo,
		gateway:     gateway,
		logger:      logger,
		inFlight:    make(map[int64]bool),
	}
}

// CreateDraft stores a new draft. Line items carry the caller's values;
// catalog lookups fill whatever the caller left blank.
func (s *invoiceServiceImpl) CreateDraft(ctx context.Context, draft *entity.Invoice) (*entity.Invoice, error) {
	now := time.Now()

	inv := draft.Clone()
	inv.ID = 0
	inv.Status = lifecycle.StateDraft
	inv.FBRNumber = ""
	inv.RejectionReason = ""
	inv.SubmittedAt = nil
	inv.ValidatedAt = nil
	inv.RejectedAt = nil
	inv.CreatedAt = now
	inv.UpdatedAt = now
	if inv.Date.IsZero() {
		inv.Date = now
	}
	if inv.InvoiceNumber == "" {
		inv.InvoiceNumber = nextInvoiceNumber(now)
	}

	if err := s.normalize(ctx, inv); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Create(ctx, inv); err != nil {
		s.logger.Error("Failed to create draft", "error", err, "invoice_number", inv.InvoiceNumber)
		return nil, err
	}

	s.logger.Info("Draft created", "id", inv.ID, "invoice_number", inv.InvoiceNumber)
	return inv, nil
}

// GetInvoice retrieves an invoice by ID
func (s *invoiceServiceImpl) GetInvoice(ctx context.Context, id int64) (*entity.Invoice, error) {
	return s.invoiceRepo.GetByID(ctx, id)
}

// GetByNumber retrieves an invoice by its invoice number
func (s *invoiceServiceImpl) GetByNumber(ctx context.Context, invoiceNumber string) (*entity.Invoice, error) {
	return s.invoiceRepo.GetByNumber(ctx, invoiceNumber)
}

// ListInvoices retrieves a paginated list of invoices, newest first
func (s *invoiceServiceImpl) ListInvoices(ctx context.Context, limit, offset int) ([]*entity.Invoice, error) {
	if limit <= 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}
	return s.invoiceRepo.List(ctx, limit, offset)
}

// UpdateDraft replaces a draft's contents wholesale. Partial edits do not
// exist; the stored draft always mirrors the caller's last full picture.
func (s *invoiceServiceImpl) UpdateDraft(ctx context.Context, id int64, replacement *entity.Invoice) (*entity.Invoice, error) {
	if s.isInFlight(id) {
		return nil, entity.ErrSubmissionInFlight
	}

	existing, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !existing.IsEditable() {
		return nil, &entity.StateError{
			Err:     entity.ErrInvoiceImmutable,
			Details: fmt.Sprintf("invoice %s is %s", existing.InvoiceNumber, existing.Status),
		}
	}

	updated := existing.Clone()
	updated.InvoiceType = replacement.InvoiceType
	updated.SaleType = replacement.SaleType
	updated.PaymentMode = replacement.PaymentMode
	updated.OriginProvince = replacement.OriginProvince
	updated.Buyer = replacement.Buyer
	updated.LineItems = append([]entity.LineItem{}, replacement.LineItems...)
	if !replacement.Date.IsZero() {
		updated.Date = replacement.Date
	}
	updated.UpdatedAt = time.Now()

	if err := s.normalize(ctx, updated); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Update(ctx, updated); err != nil {
		s.logger.Error("Failed to update draft", "error", err, "id", id)
		return nil, err
	}

	s.logger.Info("Draft updated", "id", id, "invoice_number", updated.InvoiceNumber)
	return updated, nil
}

// Submit moves a complete draft to Submitted and hands it to the tax
// authority. Only one submission per invoice may be in flight; a second
// call while the first is running fails fast instead of queueing.
//
// A gateway transport failure does not roll the invoice back: it stays
// Submitted and the status poller reconciles the outcome later.
func (s *invoiceServiceImpl) Submit(ctx context.Context, id int64) (*entity.Invoice, error) {
	if !s.markInFlight(id) {
		return nil, entity.ErrSubmissionInFlight
	}
	defer s.clearInFlight(id)

	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	machine := lifecycle.NewInvoiceMachine(invoice.Status)
	if !machine.CanFire(lifecycle.TriggerSubmit) {
		return nil, &entity.StateError{
			Err:     entity.ErrInvoiceImmutable,
			Details: fmt.Sprintf("invoice %s is %s and cannot be submitted", invoice.InvoiceNumber, invoice.Status),
		}
	}

	if err := invoice.ValidateForSubmission(); err != nil {
		return nil, err
	}

	if err := machine.Fire(ctx, lifecycle.TriggerSubmit); err != nil {
		return nil, err
	}

	now := time.Now()
	invoice.Status = machine.State()
	invoice.SubmittedAt = &now
	invoice.UpdatedAt = now

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		s.logger.Error("Failed to persist submission", "error", err, "id", id)
		return nil, err
	}

	s.logger.Info("Invoice submitted", "id", id, "invoice_number", invoice.InvoiceNumber)

	ack, err := s.gateway.Submit(ctx, invoice)
	if err != nil {
		s.logger.Error("Authority submission failed, awaiting reconciliation",
			"error", err, "invoice_number", invoice.InvoiceNumber)
		return invoice, nil
	}

	if err := s.ApplyAcknowledgment(ctx, invoice, ack); err != nil {
		return nil, err
	}
	return invoice, nil
}

// ApplyAcknowledgment settles a submitted invoice according to the
// authority's answer. A pending acknowledgment changes nothing.
func (s *invoiceServiceImpl) ApplyAcknowledgment(ctx context.Context, invoice *entity.Invoice, ack *port.Acknowledgment) error {
	if ack == nil || ack.Outcome == port.AckPending {
		return nil
	}

	machine := lifecycle.NewInvoiceMachine(invoice.Status)
	now := time.Now()

	switch ack.Outcome {
	case port.AckValidated:
		if err := machine.Fire(ctx, lifecycle.TriggerValidate); err != nil {
			return err
		}
		invoice.Status = machine.State()
		invoice.FBRNumber = ack.FBRNumber
		invoice.ValidatedAt = &now

	case port.AckRejected:
		if err := machine.Fire(ctx, lifecycle.TriggerReject); err != nil {
			return err
		}
		invoice.Status = machine.State()
		invoice.RejectionReason = ack.Reason
		invoice.RejectedAt = &now

	default:
		return fmt.Errorf("unknown acknowledgment outcome %q", ack.Outcome)
	}

	invoice.UpdatedAt = now
	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		s.logger.Error("Failed to persist acknowledgment", "error", err,
			"invoice_number", invoice.InvoiceNumber, "outcome", string(ack.Outcome))
		return err
	}

	s.logger.Info("Acknowledgment applied",
		"invoice_number", invoice.InvoiceNumber,
		"outcome", string(ack.Outcome),
		"fbr_number", ack.FBRNumber)
	return nil
}

// Redraft copies a rejected invoice into a fresh draft under a new
// invoice number. The rejected original keeps its audit trail untouched.
func (s *invoiceServiceImpl) Redraft(ctx context.Context, id int64) (*entity.Invoice, error) {
	original, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if original.Status != lifecycle.StateRejected {
		return nil, &entity.StateError{
			Err:     entity.ErrNotRejected,
			Details: fmt.Sprintf("invoice %s is %s", original.InvoiceNumber, original.Status),
		}
	}

	now := time.Now()
	draft := entity.NewDraftFrom(original, now)
	draft.InvoiceNumber = nextInvoiceNumber(now)

	if err := s.invoiceRepo.Create(ctx, draft); err != nil {
		s.logger.Error("Failed to create redraft", "error", err, "original_id", id)
		return nil, err
	}

	s.logger.Info("Rejected invoice copied to new draft",
		"original", original.InvoiceNumber, "draft", draft.InvoiceNumber)
	return draft, nil
}

// Totals recomputes the invoice's monetary breakdown from its stored
// inputs. Totals are never read from storage.
func (s *invoiceServiceImpl) Totals(invoice *entity.Invoice) (*tax.Computation, error) {
	return tax.Compute(invoice.LineItems, invoice.SaleType)
}

// normalize prepares a draft for storage: the buyer registration
// invariant is enforced, catalog-backed fields the caller left blank are
// filled in, and outright garbage (negative figures, unknown units,
// out-of-range percents) is rejected. Incompleteness is fine here;
// ValidateForSubmission gates the submit.
func (s *invoiceServiceImpl) normalize(ctx context.Context, invoice *entity.Invoice) error {
	invoice.Buyer.Normalize()

	for i := range invoice.LineItems {
		item := &invoice.LineItems[i]
		if item.HSCode != "" {
			product, err := s.productRepo.GetByHSCode(ctx, item.HSCode)
			if err != nil {
				if errors.Is(err, entity.ErrProductNotFound) {
					return &entity.ValidationError{Err: entity.ErrProductNotFound, Details: "HS code " + item.HSCode}
				}
				return err
			}
			item.Description = product.Name
			if item.Unit == "" {
				item.Unit = product.Unit
			}
			if item.Rate.IsZero() {
				item.Rate = product.DefaultRate
			}
		}

		if item.Quantity.IsNegative() || item.Rate.IsNegative() {
			return &entity.ValidationError{
				Err:     entity.ErrNegativeQuantityOrRate,
				Details: "quantity " + item.Quantity.String() + ", rate " + item.Rate.String(),
			}
		}
		if item.Unit != "" && !item.Unit.IsValid() {
			return &entity.ValidationError{Err: entity.ErrUnknownUnit, Details: string(item.Unit)}
		}
		if err := entity.CheckTaxPercent(item.TaxPercent); err != nil {
			return err
		}
	}
	return nil
}

func (s *invoiceServiceImpl) isInFlight(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight[id]
}

func (s *invoiceServiceImpl) markInFlight(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[id] {
		return false
	}
	s.inFlight[id] = true
	return true
}

func (s *invoiceServiceImpl) clearInFlight(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, id)
}

// nextInvoiceNumber issues millisecond-timestamp invoice numbers, the
// same scheme the legacy register used.
func nextInvoiceNumber(now time.Time) string {
	return fmt.Sprintf("INV-%d", now.UnixMilli())
}
