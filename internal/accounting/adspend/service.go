package adspend

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/timmiekettle/tk2/internal/accounting/journals"
)

// JournalSubmitter posts a journal entry and returns its name.
type JournalSubmitter interface {
	Submit(ctx context.Context, e journals.Entry) (string, error)
}

// Locker serialises work per document.
type Locker interface {
	WithLock(ctx context.Context, doctype, name string, fn func(context.Context) error) error
}

// Accounts configures where spend is booked.
type Accounts struct {
	Company     string
	Advertising string
}

type Service struct {
	repo     Repository
	journals JournalSubmitter
	locker   Locker
	accounts Accounts
}

func NewService(repo Repository, submitter JournalSubmitter, locker Locker, accounts Accounts) *Service {
	return &Service{repo: repo, journals: submitter, locker: locker, accounts: accounts}
}

// CreateJournalEntry books the named spend: advertising is debited and the
// source of funds credited with the same amount.
func (s *Service) CreateJournalEntry(ctx context.Context, docname string) (string, error) {
	var name string
	run := func(ctx context.Context) error {
		spend, err := s.repo.Get(ctx, docname)
		if err != nil {
			return err
		}
		name, err = s.journals.Submit(ctx, s.BuildEntry(spend))
		return err
	}
	var err error
	if s.locker != nil {
		err = s.locker.WithLock(ctx, Doctype, docname, run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		return "", fmt.Errorf("create journal entry for %s: %w", docname, err)
	}
	return name, nil
}

// BuildEntry maps a spend onto a two-line journal entry.
func (s *Service) BuildEntry(spend AdSpend) journals.Entry {
	return journals.Entry{
		VoucherType: journals.VoucherJournalEntry,
		Company:     s.accounts.Company,
		PostingDate: spend.Date,
		Remark:      "Advert spend by " + spend.DigitalMarketer,
		Lines: []journals.Line{
			{Account: s.accounts.Advertising, Debit: spend.AmountInNGN, Credit: decimal.Zero},
			{Account: spend.SourceOfFunds, Debit: decimal.Zero, Credit: spend.AmountInNGN},
		},
	}
}
