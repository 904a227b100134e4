package agentpayments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/timmiekettle/tk2/internal/accounting/accounts"
	"github.com/timmiekettle/tk2/internal/accounting/journals"
	"github.com/timmiekettle/tk2/internal/platform/httpx"
	"github.com/timmiekettle/tk2/internal/sales/invoices"
)

// Ledger resolves company-level defaults.
type Ledger interface {
	AccountCompany(ctx context.Context, account string) (string, error)
	Company(ctx context.Context, name string) (accounts.Company, error)
	SystemDefault(ctx context.Context, key string) (string, error)
}

// JournalSubmitter posts a journal entry and returns its name.
type JournalSubmitter interface {
	Submit(ctx context.Context, e journals.Entry) (string, error)
}

// UnpaidLister lists an agent's open invoices.
type UnpaidLister interface {
	ListUnpaid(ctx context.Context, agent string) ([]invoices.UnpaidInvoice, error)
}

// Locker serialises work per document.
type Locker interface {
	WithLock(ctx context.Context, doctype, name string, fn func(context.Context) error) error
}

// Config names the deduction accounts.
type Config struct {
	CommissionAccount      string
	DeliveryChargesAccount string
	Location               *time.Location
}

type Service struct {
	ledger   Ledger
	journals JournalSubmitter
	unpaid   UnpaidLister
	locker   Locker
	cfg      Config
	now      func() time.Time
}

func NewService(ledger Ledger, submitter JournalSubmitter, unpaid UnpaidLister, locker Locker, cfg Config) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Service{ledger: ledger, journals: submitter, unpaid: unpaid, locker: locker, cfg: cfg, now: time.Now}
}

func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateJournalEntry books an agent remittance: the bank is debited with
// the net payment, each invoice's receivable is credited with its
// outstanding amount and any deductions are debited to their accounts.
func (s *Service) CreateJournalEntry(ctx context.Context, payment AgentPayment, selected []SelectedInvoice) (string, error) {
	if strings.TrimSpace(payment.Bank) == "" {
		return "", httpx.Userf(httpx.ErrValidation, "Agent Payment has no bank account")
	}
	totals, err := CheckTotals(payment, selected)
	if err != nil {
		return "", err
	}

	var name string
	run := func(ctx context.Context) error {
		entry, err := s.buildEntry(ctx, payment, selected, totals)
		if err != nil {
			return err
		}
		name, err = s.journals.Submit(ctx, entry)
		return err
	}
	if s.locker != nil && payment.Name != "" {
		err = s.locker.WithLock(ctx, Doctype, payment.Name, run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		return "", fmt.Errorf("agent payment %s: %w", payment.Name, err)
	}
	return name, nil
}

func (s *Service) buildEntry(ctx context.Context, payment AgentPayment, selected []SelectedInvoice, totals Totals) (journals.Entry, error) {
	company, err := s.ledger.AccountCompany(ctx, payment.Bank)
	if err != nil {
		return journals.Entry{}, err
	}
	c, err := s.ledger.Company(ctx, company)
	if err != nil {
		return journals.Entry{}, err
	}
	if c.DefaultReceivableAccount == "" {
		return journals.Entry{}, httpx.Userf(httpx.ErrValidation,
			"Company %s has no default receivable account", company)
	}
	costCenter, err := s.ledger.SystemDefault(ctx, accounts.DefaultCostCenterKey)
	if err != nil {
		return journals.Entry{}, err
	}

	date := payment.Date.Time
	if date.IsZero() {
		now := s.now().In(s.cfg.Location)
		date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	refDate := date

	entry := journals.Entry{
		VoucherType:   journals.VoucherJournalEntry,
		Company:       company,
		PostingDate:   date,
		ReferenceNo:   payment.Name,
		ReferenceDate: &refDate,
		Lines: []journals.Line{{
			Account:    payment.Bank,
			Debit:      totals.Net,
			Credit:     decimal.Zero,
			CostCenter: costCenter,
		}},
	}
	for _, inv := range selected {
		amount := inv.OutstandingAmount.Decimal
		if amount.IsZero() {
			continue
		}
		entry.Lines = append(entry.Lines, journals.Line{
			Account:       c.DefaultReceivableAccount,
			Debit:         decimal.Zero,
			Credit:        amount,
			PartyType:     "Customer",
			Party:         inv.Customer,
			CostCenter:    costCenter,
			ReferenceType: journals.InvoiceDoctype,
			ReferenceName: inv.Name,
		})
	}
	if !totals.Commission.IsZero() {
		entry.Lines = append(entry.Lines, journals.Line{
			Account:    s.cfg.CommissionAccount,
			Debit:      totals.Commission,
			Credit:     decimal.Zero,
			CostCenter: costCenter,
		})
	}
	if !totals.Charges.IsZero() {
		entry.Lines = append(entry.Lines, journals.Line{
			Account:    s.cfg.DeliveryChargesAccount,
			Debit:      totals.Charges,
			Credit:     decimal.Zero,
			CostCenter: costCenter,
		})
	}
	return entry, nil
}

// UnpaidInvoices lists submitted invoices of agent with an outstanding amount.
func (s *Service) UnpaidInvoices(ctx context.Context, agent string) ([]invoices.UnpaidInvoice, error) {
	return s.unpaid.ListUnpaid(ctx, agent)
}
