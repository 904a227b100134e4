package journals

import (
	"context"
	"fmt"
	"time"

	"github.com/timmiekettle/tk2/internal/shared"
)

// InvoiceDoctype is the reference type whose outstanding amounts are
// reduced by posted credits.
const InvoiceDoctype = "Sales Invoice"

type Service struct {
	repo     Repository
	audit    shared.AuditRecorder
	notifier shared.SubmitNotifier
	now      func() time.Time
}

func NewService(repo Repository, audit shared.AuditRecorder, notifier shared.SubmitNotifier) *Service {
	if notifier == nil {
		notifier = shared.NopNotifier{}
	}
	return &Service{repo: repo, audit: audit, notifier: notifier, now: time.Now}
}

func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Submit validates e, assigns its name and stores it as submitted. Credits
// referencing sales invoices reduce their outstanding amounts in the same
// transaction.
func (s *Service) Submit(ctx context.Context, e Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	e.DocStatus = DocStatusSubmitted
	e.CreatedAt = s.now()
	if e.Owner == "" {
		if actor, ok := shared.ActorFromContext(ctx); ok {
			e.Owner = actor.Caller()
		}
	}
	order, allocations := e.invoiceAllocations(InvoiceDoctype)

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		name, err := tx.NextName(ctx, e.PostingDate)
		if err != nil {
			return err
		}
		e.Name = name
		if err := tx.InsertEntry(ctx, e); err != nil {
			return err
		}
		for _, invoice := range order {
			amount := allocations[invoice]
			if !amount.IsPositive() {
				continue
			}
			if err := tx.AllocateToInvoice(ctx, invoice, amount); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("submit journal entry: %w", err)
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Action:   "journal_entry.submit",
			Entity:   Doctype,
			EntityID: e.Name,
			Meta: map[string]any{
				"company":      e.Company,
				"voucher_type": e.VoucherType,
				"reference_no": e.ReferenceNo,
				"total":        e.TotalDebit.String(),
				"invoices":     order,
			},
		})
	}
	s.notifier.Submitted(ctx, Doctype, e.Name)
	return e.Name, nil
}
