package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SheetFilter narrows a sheet count. Zero fields do not filter.
type SheetFilter struct {
	Status    string
	OrderFrom time.Time
	OrderTo   time.Time
}

// Repository aggregates Customer Service Sheets for one user.
type Repository interface {
	CountSheets(ctx context.Context, user string, f SheetFilter) (int64, error)
	// DeliveryRate returns delivered / non-duplicate * 100 rounded to two
	// places, over sheets created within [from, to] when both are set.
	DeliveryRate(ctx context.Context, user string, from, to time.Time) (float64, error)
	CountByMarketer(ctx context.Context, user string) ([]MarketerCount, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db dbtx
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) CountSheets(ctx context.Context, user string, f SheetFilter) (int64, error) {
	where := []string{"cs = $1"}
	args := []any{user}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if !f.OrderFrom.IsZero() && !f.OrderTo.IsZero() {
		args = append(args, f.OrderFrom, f.OrderTo)
		where = append(where, fmt.Sprintf("order_date BETWEEN $%d AND $%d", len(args)-1, len(args)))
	}
	var count int64
	err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM customer_service_sheets WHERE "+strings.Join(where, " AND "),
		args...).Scan(&count)
	return count, err
}

func (r *repository) DeliveryRate(ctx context.Context, user string, from, to time.Time) (float64, error) {
	query := `
		SELECT COALESCE(ROUND(
		           100.0 * COUNT(*) FILTER (WHERE status = 'Delivered')
		           / NULLIF(COUNT(*) FILTER (WHERE status <> 'Duplicate'), 0), 2), 0)::float8
		FROM customer_service_sheets
		WHERE cs = $1 AND docstatus < 2`
	args := []any{user}
	if !from.IsZero() && !to.IsZero() {
		query += ` AND created_at BETWEEN $2 AND $3`
		args = append(args, from, to)
	}
	var rate float64
	err := r.db.QueryRow(ctx, query, args...).Scan(&rate)
	return rate, err
}

func (r *repository) CountByMarketer(ctx context.Context, user string) ([]MarketerCount, error) {
	rows, err := r.db.Query(ctx, `
		SELECT COALESCE(digital_marketer, '') AS marketer, COUNT(*)
		FROM customer_service_sheets
		WHERE cs = $1
		GROUP BY 1
		ORDER BY 1`, user)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []MarketerCount
	for rows.Next() {
		var mc MarketerCount
		if err := rows.Scan(&mc.Marketer, &mc.Count); err != nil {
			return nil, err
		}
		out = append(out, mc)
	}
	return out, rows.Err()
}
