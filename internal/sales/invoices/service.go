package invoices

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/timmiekettle/tk2/internal/platform/httpx"
	"github.com/timmiekettle/tk2/internal/shared"
)

// ErrAlreadyInvoiced is raised when a source document already has a submitted invoice.
var ErrAlreadyInvoiced = fmt.Errorf("%w: source document already invoiced", httpx.ErrDuplicate)

// Service submits and queries sales invoices.
type Service struct {
	repo     Repository
	audit    shared.AuditRecorder
	notifier shared.SubmitNotifier
	now      func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository, audit shared.AuditRecorder, notifier shared.SubmitNotifier) *Service {
	if notifier == nil {
		notifier = shared.NopNotifier{}
	}
	return &Service{repo: repo, audit: audit, notifier: notifier, now: time.Now}
}

// WithNow overrides the clock for tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// Submit validates, totals and stores inv as a submitted invoice in one
// transaction, returning the assigned name.
func (s *Service) Submit(ctx context.Context, inv Invoice) (string, error) {
	if err := inv.Validate(); err != nil {
		return "", err
	}
	if err := inv.ComputeTotals(); err != nil {
		return "", err
	}
	inv.DocStatus = DocStatusSubmitted
	inv.CreatedAt = s.now()
	if inv.Owner == "" {
		if actor, ok := shared.ActorFromContext(ctx); ok {
			inv.Owner = actor.Caller()
		}
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		name, err := tx.NextName(ctx, inv.PostingDate)
		if err != nil {
			return err
		}
		inv.Name = name
		return tx.Insert(ctx, inv)
	})
	if err != nil {
		return "", fmt.Errorf("submit sales invoice: %w", err)
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Action:   "sales_invoice.submit",
			Entity:   Doctype,
			EntityID: inv.Name,
			Meta: map[string]any{
				"customer":    inv.Customer,
				"source":      inv.Source,
				"grand_total": inv.GrandTotal.String(),
				"discount":    inv.DiscountAmount.String(),
			},
		})
	}
	s.notifier.Submitted(ctx, Doctype, inv.Name)
	return inv.Name, nil
}

// ListUnpaid returns submitted invoices of agent that still have an
// outstanding amount.
func (s *Service) ListUnpaid(ctx context.Context, agent string) ([]UnpaidInvoice, error) {
	agent = strings.TrimSpace(agent)
	if agent == "" {
		return nil, httpx.Userf(httpx.ErrValidation, "agent is required")
	}
	rows, err := s.repo.ListUnpaid(ctx, agent)
	if err != nil {
		return nil, fmt.Errorf("list unpaid invoices: %w", err)
	}
	return rows, nil
}

// SoldItems sums submitted invoice quantities per item for a warehouse.
func (s *Service) SoldItems(ctx context.Context, from, to time.Time, warehouse string) ([]SoldItem, error) {
	return s.repo.SoldItems(ctx, from, to, warehouse)
}
