package servicesheets

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/timmiekettle/tk2/internal/sales/invoices"
)

// InvoiceSubmitter stores a submitted sales invoice and returns its name.
type InvoiceSubmitter interface {
	Submit(ctx context.Context, inv invoices.Invoice) (string, error)
}

// Locker serialises work per document.
type Locker interface {
	WithLock(ctx context.Context, doctype, name string, fn func(context.Context) error) error
}

// Defaults are the company-level settings applied to generated invoices.
type Defaults struct {
	Company          string
	ComboItemCode    string
	DefaultWarehouse string
	Location         *time.Location
}

// Service converts sheets into invoices.
type Service struct {
	repo     Repository
	invoices InvoiceSubmitter
	locker   Locker
	defaults Defaults
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs a Service. locker may be nil.
func NewService(repo Repository, submitter InvoiceSubmitter, locker Locker, defaults Defaults, logger *slog.Logger) *Service {
	if defaults.Location == nil {
		defaults.Location = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		invoices: submitter,
		locker:   locker,
		defaults: defaults,
		logger:   logger,
		now:      time.Now,
	}
}

// WithNow overrides the clock for tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateSalesInvoice builds and submits the invoice for a sheet.
func (s *Service) CreateSalesInvoice(ctx context.Context, sheetName string) (string, error) {
	var name string
	run := func(ctx context.Context) error {
		sheet, err := s.repo.Get(ctx, sheetName)
		if err != nil {
			return err
		}
		rec, err := Reconcile(sheet, s.defaults.ComboItemCode)
		if err != nil {
			return err
		}
		inv := s.BuildInvoice(sheet, rec)
		name, err = s.invoices.Submit(ctx, inv)
		if err != nil {
			return err
		}
		s.logger.Info("sales invoice created from sheet",
			slog.String("sheet", sheet.Name),
			slog.String("invoice", name),
			slog.String("discount", rec.Discount.String()))
		return nil
	}

	var err error
	if s.locker != nil {
		err = s.locker.WithLock(ctx, Doctype, sheetName, run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		return "", fmt.Errorf("create sales invoice for %s: %w", sheetName, err)
	}
	return name, nil
}

// BuildInvoice maps a reconciled sheet onto an invoice draft.
func (s *Service) BuildInvoice(sheet Sheet, rec Reconciliation) invoices.Invoice {
	now := s.now().In(s.defaults.Location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.defaults.Location)

	inv := invoices.Invoice{
		Company:            s.defaults.Company,
		Customer:           sheet.ERPCustomer,
		PostingDate:        today,
		SetPostingTime:     true,
		CustomAgent:        sheet.CustomAgent,
		WriteOffAmount:     decimal.Zero,
		BaseWriteOffAmount: decimal.Zero,
		Source:             sheet.Name,
		Items:              make([]invoices.Item, 0, len(sheet.Items)),
	}
	for _, it := range sheet.Items {
		wh := it.Warehouse
		if wh == "" {
			wh = s.defaults.DefaultWarehouse
		}
		inv.Items = append(inv.Items, invoices.Item{
			ItemCode:  it.ItemCode,
			Qty:       it.Qty,
			Rate:      it.Rate,
			Warehouse: wh,
		})
	}
	if rec.Discount.IsPositive() {
		inv.ApplyDiscountOn = invoices.DiscountOnGrandTotal
		inv.DiscountAmount = rec.Discount
		inv.AdditionalDiscountPercentage = decimal.Zero
	}
	return inv
}
