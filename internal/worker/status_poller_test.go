package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abcenterprises/fbr-einvoicing/internal/application/port"
	"github.com/abcenterprises/fbr-einvoicing/internal/domain/entity"
	"github.com/abcenterprises/fbr-einvoicing/internal/domain/lifecycle"
	"github.com/abcenterprises/fbr-einvoicing/internal/tax"
)

// fakeInvoiceRepo returns a fixed set of submitted invoices.
type fakeInvoiceRepo struct {
	mu        sync.Mutex
	submitted []*entity.Invoice
	listErr   error
	updated   []*entity.Invoice
}

func (f *fakeInvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error { return nil }
func (f *fakeInvoiceRepo) GetByID(ctx context.Context, id int64) (*entity.Invoice, error) {
	return nil, entity.ErrInvoiceNotFound
}
func (f *fakeInvoiceRepo) GetByNumber(ctx context.Context, number string) (*entity.Invoice, error) {
	return nil, entity.ErrInvoiceNotFound
}
func (f *fakeInvoiceRepo) List(ctx context.Context, limit, offset int) ([]*entity.Invoice, error) {
	return nil, nil
}
func (f *fakeInvoiceRepo) ListByStatus(ctx context.Context, status lifecycle.State, limit int) ([]*entity.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	if status != lifecycle.StateSubmitted {
		return nil, nil
	}
	return f.submitted, nil
}
func (f *fakeInvoiceRepo) Update(ctx context.Context, invoice *entity.Invoice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, invoice)
	return nil
}

// fakeGateway answers Status from a canned map.
type fakeGateway struct {
	mu       sync.Mutex
	statuses map[string]*port.Acknowledgment
	err      error
	calls    int
}

func (f *fakeGateway) Submit(ctx context.Context, invoice *entity.Invoice) (*port.Acknowledgment, error) {
	return nil, errors.New("not used")
}
func (f *fakeGateway) Status(ctx context.Context, number string) (*port.Acknowledgment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if ack, ok := f.statuses[number]; ok {
		return ack, nil
	}
	return &port.Acknowledgment{Outcome: port.AckPending}, nil
}

// fakeInvoiceService records applied acknowledgments.
type fakeInvoiceService struct {
	mu      sync.Mutex
	applied map[string]*port.Acknowledgment
	err     error
}

func newFakeInvoiceService() *fakeInvoiceService {
	return &fakeInvoiceService{applied: make(map[string]*port.Acknowledgment)}
}

func (f *fakeInvoiceService) CreateDraft(ctx context.Context, draft *entity.Invoice) (*entity.Invoice, error) {
	return nil, errors.New("not used")
}
func (f *fakeInvoiceService) GetInvoice(ctx context.Context, id int64) (*entity.Invoice, error) {
	return nil, errors.New("not used")
}
func (f *fakeInvoiceService) GetByNumber(ctx context.Context, number string) (*entity.Invoice, error) {
	return nil, errors.New("not used")
}
func (f *fakeInvoiceService) ListInvoices(ctx context.Context, limit, offset int) ([]*entity.Invoice, error) {
	return nil, errors.New("not used")
}
func (f *fakeInvoiceService) UpdateDraft(ctx context.Context, id int64, replacement *entity.Invoice) (*entity.Invoice, error) {
	return nil, errors.New("not used")
}
func (f *fakeInvoiceService) Submit(ctx context.Context, id int64) (*entity.Invoice, error) {
	return nil, errors.New("not used")
}
func (f *fakeInvoiceService) ApplyAcknowledgment(ctx context.Context, invoice *entity.Invoice, ack *port.Acknowledgment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.applied[invoice.InvoiceNumber] = ack
	return nil
}
func (f *fakeInvoiceService) Redraft(ctx context.Context, id int64) (*entity.Invoice, error) {
	return nil, errors.New("not used")
}
func (f *fakeInvoiceService) Totals(invoice *entity.Invoice) (*tax.Computation, error) {
	return nil, errors.New("not used")
}

func submittedInvoice(number string) *entity.Invoice {
	now := time.Now()
	return &entity.Invoice{
		ID:            1,
		InvoiceNumber: number,
		Date:          now,
		Status:        lifecycle.StateSubmitted,
		SubmittedAt:   &now,
		LineItems: []entity.LineItem{{
			Quantity:   decimal.NewFromInt(1),
			Unit:       entity.UnitPCS,
			Rate:       decimal.NewFromInt(100),
			TaxPercent: decimal.NewFromInt(18),
		}},
	}
}

func TestStatusPoller_ReconcileSubmitted(t *testing.T) {
	repo := &fakeInvoiceRepo{
		submitted: []*entity.Invoice{
			submittedInvoice("INV-1001"),
			submittedInvoice("INV-1002"),
			submittedInvoice("INV-1003"),
		},
	}
	gateway := &fakeGateway{
		statuses: map[string]*port.Acknowledgment{
			"INV-1001": {Outcome: port.AckValidated, FBRNumber: "FBR-AAAAA"},
			"INV-1002": {Outcome: port.AckRejected, Reason: "Buyer STRN not found in FBR registry"},
			// INV-1003 stays pending.
		},
	}
	svc := newFakeInvoiceService()

	poller := NewStatusPoller(repo, gateway, svc, zap.NewNop())
	poller.ctx = context.Background()
	poller.reconcileSubmitted()

	assert.Len(t, svc.applied, 2)
	assert.Equal(t, port.AckValidated, svc.applied["INV-1001"].Outcome)
	assert.Equal(t, port.AckRejected, svc.applied["INV-1002"].Outcome)
	assert.NotContains(t, svc.applied, "INV-1003")
}

func TestStatusPoller_GatewayErrorSkipsInvoice(t *testing.T) {
	repo := &fakeInvoiceRepo{submitted: []*entity.Invoice{submittedInvoice("INV-2001")}}
	gateway := &fakeGateway{err: errors.New("connection refused")}
	svc := newFakeInvoiceService()

	poller := NewStatusPoller(repo, gateway, svc, zap.NewNop())
	poller.ctx = context.Background()
	poller.reconcileSubmitted()

	assert.Empty(t, svc.applied)
}

func TestStatusPoller_StartStop(t *testing.T) {
	repo := &fakeInvoiceRepo{}
	gateway := &fakeGateway{}
	svc := newFakeInvoiceService()

	poller := NewStatusPoller(repo, gateway, svc, zap.NewNop())
	poller.SetPollInterval(10 * time.Millisecond)

	require.NoError(t, poller.Start(context.Background()))
	assert.Error(t, poller.Start(context.Background()), "second start must fail")

	// Let at least one tick fire so the loop exercises the repo.
	time.Sleep(30 * time.Millisecond)
	poller.Stop()

	// Stop is idempotent.
	poller.Stop()

	gateway.mu.Lock()
	defer gateway.mu.Unlock()
	assert.Equal(t, 0, gateway.calls, "no submitted invoices means no status calls")
}
