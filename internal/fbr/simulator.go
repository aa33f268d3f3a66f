// Package fbr talks to the tax authority's e-invoicing endpoint. The real
// IRIS integration is not wired yet; Simulator stands in behind the same
// gateway interface and mimics the authority's contract, including
// idempotency per invoice number.
package fbr

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abcenterprises/fbr-einvoicing/internal/application/port"
	"github.com/abcenterprises/fbr-einvoicing/internal/domain/entity"
)

// Config tunes the simulated authority.
type Config struct {
	// Latency is artificial processing delay per call.
	Latency time.Duration

	// DeniedSTRNs lists buyer STRNs the simulator treats as unknown to
	// the FBR registry, producing a rejection.
	DeniedSTRNs []string
}

// Simulator is an in-memory authority gateway. Outcomes are recorded per
// invoice number so resubmissions replay the original acknowledgment.
type Simulator struct {
	cfg    Config
	logger *zap.Logger

	mu       sync.Mutex
	outcomes map[string]*port.Acknowledgment
	denied   map[string]bool
}

var _ port.AuthorityGateway = (*Simulator)(nil)

// NewSimulator creates a simulated FBR gateway.
func NewSimulator(cfg Config, logger *zap.Logger) *Simulator {
	denied := make(map[string]bool, len(cfg.DeniedSTRNs))
	for _, strn := range cfg.DeniedSTRNs {
		denied[strn] = true
	}
	return &Simulator{
		cfg:      cfg,
		logger:   logger,
		outcomes: make(map[string]*port.Acknowledgment),
		denied:   denied,
	}
}

// Submit registers the invoice and returns the authority's acknowledgment.
func (s *Simulator) Submit(ctx context.Context, invoice *entity.Invoice) (*port.Acknowledgment, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ack, ok := s.outcomes[invoice.InvoiceNumber]; ok {
		s.logger.Debug("Replaying recorded acknowledgment",
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.String("outcome", string(ack.Outcome)))
		return ack, nil
	}

	ack := s.decide(invoice)
	s.outcomes[invoice.InvoiceNumber] = ack

	s.logger.Info("Invoice processed by simulated authority",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("outcome", string(ack.Outcome)),
		zap.String("fbr_number", ack.FBRNumber))

	return ack, nil
}

// Status returns the recorded outcome, or pending when the invoice has
// not reached the authority yet.
func (s *Simulator) Status(ctx context.Context, invoiceNumber string) (*port.Acknowledgment, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ack, ok := s.outcomes[invoiceNumber]; ok {
		return ack, nil
	}
	return &port.Acknowledgment{Outcome: port.AckPending}, nil
}

func (s *Simulator) decide(invoice *entity.Invoice) *port.Acknowledgment {
	if invoice.Buyer.Type == entity.BuyerTypeRegistered {
		if !entity.ValidSTRN(invoice.Buyer.STRN) {
			return &port.Acknowledgment{
				Outcome: port.AckRejected,
				Reason:  fmt.Sprintf("Buyer STRN %q is not in the required format", invoice.Buyer.STRN),
			}
		}
		if s.denied[invoice.Buyer.STRN] {
			return &port.Acknowledgment{
				Outcome: port.AckRejected,
				Reason:  fmt.Sprintf("Buyer STRN %s not found in FBR registry", invoice.Buyer.STRN),
			}
		}
	}

	return &port.Acknowledgment{
		Outcome:   port.AckValidated,
		FBRNumber: deriveFBRNumber(invoice.InvoiceNumber),
	}
}

func (s *Simulator) wait(ctx context.Context) error {
	if s.cfg.Latency <= 0 {
		return nil
	}
	select {
	case <-time.After(s.cfg.Latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// fbrAlphabet avoids ambiguous characters, matching the authority's short
// alphanumeric identifiers.
const fbrAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// deriveFBRNumber maps an invoice number to a stable FBR identifier so
// replays of the same submission agree.
func deriveFBRNumber(invoiceNumber string) string {
	h := fnv.New32a()
	h.Write([]byte(invoiceNumber))
	v := h.Sum32()

	code := make([]byte, 5)
	for i := range code {
		code[i] = fbrAlphabet[v%uint32(len(fbrAlphabet))]
		v /= uint32(len(fbrAlphabet))
	}
	return "FBR-" + string(code)
}
