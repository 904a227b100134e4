package invoices

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/timmiekettle/tk2/internal/platform/db"
)

// Series names submitted invoices ACC-SINV-YYYY-#####.
var Series = db.Series{Prefix: "ACC-SINV", Digits: 5}

// Repository exposes read access and transactional writes.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListUnpaid(ctx context.Context, agent string) ([]UnpaidInvoice, error)
	SoldItems(ctx context.Context, from, to time.Time, warehouse string) ([]SoldItem, error)
}

// TxRepository performs writes inside a transaction.
type TxRepository interface {
	NextName(ctx context.Context, at time.Time) (string, error)
	Insert(ctx context.Context, inv Invoice) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

type txRepository struct {
	tx pgx.Tx
}

// NewRepository constructs a pgx backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

func (r *repository) ListUnpaid(ctx context.Context, agent string) ([]UnpaidInvoice, error) {
	rows, err := r.db.Query(ctx, `
		SELECT to_char(posting_date, 'YYYY-MM-DD'), name, customer,
		       grand_total::float8, outstanding_amount::float8
		FROM sales_invoices
		WHERE custom_agent = $1 AND outstanding_amount > 0 AND docstatus = 1
		ORDER BY posting_date, name`, agent)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]UnpaidInvoice, 0)
	for rows.Next() {
		var inv UnpaidInvoice
		if err := rows.Scan(&inv.PostingDate, &inv.Name, &inv.Customer, &inv.GrandTotal, &inv.OutstandingAmount); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *repository) SoldItems(ctx context.Context, from, to time.Time, warehouse string) ([]SoldItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT sii.item_code, SUM(sii.qty)
		FROM sales_invoice_items sii
		JOIN sales_invoices si ON si.name = sii.parent
		WHERE si.posting_date BETWEEN $1 AND $2
		  AND sii.warehouse = $3
		  AND si.docstatus = 1
		GROUP BY sii.item_code
		ORDER BY sii.item_code`, from, to, warehouse)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SoldItem
	for rows.Next() {
		var it SoldItem
		if err := rows.Scan(&it.ItemCode, &it.Qty); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (t *txRepository) NextName(ctx context.Context, at time.Time) (string, error) {
	return db.NextName(ctx, t.tx, Series, at)
}

func (t *txRepository) Insert(ctx context.Context, inv Invoice) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO sales_invoices (
			name, company, customer, posting_date, set_posting_time, custom_agent,
			write_off_amount, base_write_off_amount, apply_discount_on, discount_amount,
			additional_discount_percentage, total, grand_total, outstanding_amount,
			docstatus, owner, source, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, NULLIF($9, ''), $10, $11, $12, $13, $14, $15, $16, NULLIF($17, ''), $18)`,
		inv.Name, inv.Company, inv.Customer, inv.PostingDate, inv.SetPostingTime, inv.CustomAgent,
		inv.WriteOffAmount, inv.BaseWriteOffAmount, inv.ApplyDiscountOn, inv.DiscountAmount,
		inv.AdditionalDiscountPercentage, inv.Total, inv.GrandTotal, inv.OutstandingAmount,
		inv.DocStatus, inv.Owner, inv.Source, inv.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("sales invoice %s: %w", inv.Name, ErrAlreadyInvoiced)
		}
		return fmt.Errorf("insert sales invoice: %w", err)
	}

	batch := &pgx.Batch{}
	for i, it := range inv.Items {
		batch.Queue(`
			INSERT INTO sales_invoice_items (parent, idx, item_code, qty, rate, amount, warehouse)
			VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))`,
			inv.Name, i+1, it.ItemCode, it.Qty, it.Rate, it.Amount, it.Warehouse)
	}
	br := t.tx.SendBatch(ctx, batch)
	for range inv.Items {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("insert sales invoice items: %w", err)
		}
	}
	return br.Close()
}
