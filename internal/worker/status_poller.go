package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abcenterprises/fbr-einvoicing/internal/application/port"
	"github.com/abcenterprises/fbr-einvoicing/internal/application/service"
	"github.com/abcenterprises/fbr-einvoicing/internal/domain/lifecycle"
)

// StatusPoller reconciles submitted invoices with the tax authority.
// Submission is fire-and-forget from the invoice's point of view: if the
// synchronous acknowledgment was lost to a transport failure, the invoice
// sits in Submitted until this poller fetches the authoritative outcome.
type StatusPoller struct {
	invoiceRepo port.InvoiceRepository
	gateway     port.AuthorityGateway
	invoices    service.InvoiceService
	logger      *zap.Logger

	// Configuration
	pollInterval time.Duration // How often to poll (default: 5 seconds)
	batchSize    int           // How many invoices to check per poll (default: 50)

	// State
	mu        sync.RWMutex
	isRunning bool
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// NewStatusPoller creates a new status poller
func NewStatusPoller(
	invoiceRepo port.InvoiceRepository,
	gateway port.AuthorityGateway,
	invoices service.InvoiceService,
	logger *zap.Logger,
) *StatusPoller {
	return &StatusPoller{
		invoiceRepo:  invoiceRepo,
		gateway:      gateway,
		invoices:     invoices,
		logger:       logger,
		pollInterval: 5 * time.Second,
		batchSize:    50,
	}
}

// SetPollInterval overrides the default polling cadence. Must be called
// before Start.
func (p *StatusPoller) SetPollInterval(d time.Duration) {
	if d > 0 {
		p.pollInterval = d
	}
}

// Start starts the status polling worker
func (p *StatusPoller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isRunning {
		return fmt.Errorf("status poller is already running")
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.isRunning = true
	p.startTime = time.Now()

	p.logger.Info("StatusPoller started",
		zap.Duration("poll_interval", p.pollInterval),
		zap.Int("batch_size", p.batchSize))

	go p.pollLoop()

	return nil
}

// Stop stops the status polling worker
func (p *StatusPoller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.isRunning {
		return
	}

	p.isRunning = false
	if p.cancel != nil {
		p.cancel()
	}

	p.logger.Info("StatusPoller stopped")
}

// Name returns the worker name for identification
func (p *StatusPoller) Name() string {
	return "StatusPoller"
}

// pollLoop runs the main polling loop
func (p *StatusPoller) pollLoop() {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	// Poll immediately on start
	p.reconcileSubmitted()

	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug("Poll loop context cancelled")
			return

		case <-ticker.C:
			p.reconcileSubmitted()
		}
	}
}

// reconcileSubmitted asks the authority for the outcome of every invoice
// still in Submitted, oldest submissions first.
func (p *StatusPoller) reconcileSubmitted() {
	ctx, cancel := context.WithTimeout(p.ctx, 30*time.Second)
	defer cancel()

	pending, err := p.invoiceRepo.ListByStatus(ctx, lifecycle.StateSubmitted, p.batchSize)
	if err != nil {
		p.logger.Error("Failed to list submitted invoices for polling", zap.Error(err))
		return
	}

	if len(pending) == 0 {
		return
	}

	p.logger.Debug("Polling authority status",
		zap.Int("count", len(pending)))

	checkedCount := 0
	settledCount := 0

	for _, invoice := range pending {
		ack, err := p.gateway.Status(ctx, invoice.InvoiceNumber)
		if err != nil {
			p.logger.Warn("Failed to fetch status from authority",
				zap.String("invoice_number", invoice.InvoiceNumber),
				zap.Error(err))
			continue
		}

		checkedCount++

		if ack.Outcome == port.AckPending {
			continue
		}

		p.logger.Info("Outcome detected via polling",
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.String("outcome", string(ack.Outcome)))

		if err := p.invoices.ApplyAcknowledgment(ctx, invoice, ack); err != nil {
			p.logger.Error("Failed to apply acknowledgment",
				zap.String("invoice_number", invoice.InvoiceNumber),
				zap.Error(err))
			continue
		}

		settledCount++
	}

	if checkedCount > 0 {
		p.logger.Info("Status polling completed",
			zap.Int("checked", checkedCount),
			zap.Int("settled", settledCount))
	}
}
