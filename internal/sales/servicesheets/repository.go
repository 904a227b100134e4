package servicesheets

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/timmiekettle/tk2/internal/platform/httpx"
)

// ErrNotFound is returned for unknown sheet names.
var ErrNotFound = fmt.Errorf("customer service sheet: %w", httpx.ErrNotFound)

// Repository loads sheets.
type Repository interface {
	Get(ctx context.Context, name string) (Sheet, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db dbtx
}

// NewRepository constructs a pgx backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) Get(ctx context.Context, name string) (Sheet, error) {
	var s Sheet
	err := r.db.QueryRow(ctx, `
		SELECT name, COALESCE(cs, ''), COALESCE(status, ''), order_date, price,
		       COALESCE(erp_customer, ''), COALESCE(custom_agent, ''),
		       COALESCE(digital_marketer, ''), docstatus
		FROM customer_service_sheets
		WHERE name = $1`, name).Scan(
		&s.Name, &s.CS, &s.Status, &s.OrderDate, &s.Price,
		&s.ERPCustomer, &s.CustomAgent, &s.DigitalMarketer, &s.DocStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Sheet{}, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return Sheet{}, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT item_code, qty, rate, COALESCE(warehouse, '')
		FROM customer_service_sheet_items
		WHERE parent = $1
		ORDER BY idx`, name)
	if err != nil {
		return Sheet{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var it SheetItem
		if err := rows.Scan(&it.ItemCode, &it.Qty, &it.Rate, &it.Warehouse); err != nil {
			return Sheet{}, err
		}
		s.Items = append(s.Items, it)
	}
	return s, rows.Err()
}
