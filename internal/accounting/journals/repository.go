package journals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/timmiekettle/tk2/internal/accounting/shared"
	"github.com/timmiekettle/tk2/internal/platform/db"
)

// Series names journal entries ACC-JV-YYYY-#####.
var Series = db.Series{Prefix: "ACC-JV", Digits: 5}

// Repository encapsulates DB operations for journals.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes methods available within a transaction.
type TxRepository interface {
	NextName(ctx context.Context, at time.Time) (string, error)
	InsertEntry(ctx context.Context, e Entry) error
	// AllocateToInvoice reduces the outstanding amount of a submitted sales
	// invoice by amount.
	AllocateToInvoice(ctx context.Context, invoice string, amount decimal.Decimal) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) NextName(ctx context.Context, at time.Time) (string, error) {
	return db.NextName(ctx, r.tx, Series, at)
}

func (r *txRepository) InsertEntry(ctx context.Context, e Entry) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO journal_entries (name, voucher_type, company, posting_date, remark,
		                             reference_no, reference_date, total_debit, total_credit,
		                             docstatus, owner, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10, $11, $12)`,
		e.Name, e.VoucherType, e.Company, e.PostingDate, e.Remark,
		e.ReferenceNo, e.ReferenceDate, e.TotalDebit, e.TotalCredit,
		e.DocStatus, e.Owner, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}

	batch := &pgx.Batch{}
	for i, line := range e.Lines {
		batch.Queue(`
			INSERT INTO journal_entry_accounts (parent, idx, account, debit_in_account_currency,
			                                    credit_in_account_currency, party_type, party,
			                                    cost_center, reference_type, reference_name)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''))`,
			e.Name, i+1, line.Account, line.Debit, line.Credit,
			line.PartyType, line.Party, line.CostCenter, line.ReferenceType, line.ReferenceName)
	}
	if err := r.tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert journal lines: %w", err)
	}
	return nil
}

func (r *txRepository) AllocateToInvoice(ctx context.Context, invoice string, amount decimal.Decimal) error {
	var outstanding decimal.Decimal
	err := r.tx.QueryRow(ctx, `
		SELECT outstanding_amount FROM sales_invoices
		WHERE name = $1 AND docstatus = 1
		FOR UPDATE`, invoice).Scan(&outstanding)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: %s", shared.ErrInvoiceNotFound, invoice)
		}
		return err
	}
	if amount.GreaterThan(outstanding) {
		return fmt.Errorf("%w: %s has %s outstanding, %s allocated",
			shared.ErrOverAllocated, invoice, outstanding, amount)
	}
	_, err = r.tx.Exec(ctx, `
		UPDATE sales_invoices SET outstanding_amount = outstanding_amount - $2
		WHERE name = $1`, invoice, amount)
	return err
}
