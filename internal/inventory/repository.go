package inventory

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// stockRow is a WarehouseStock tagged with its item.
type stockRow struct {
	ItemCode string
	WarehouseStock
}

// Repository reads the stock ledger and bins.
type Repository interface {
	StockByWarehouse(ctx context.Context, items []string, state string) ([]stockRow, error)
	OnHand(ctx context.Context, warehouse string) ([]ItemQty, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) StockByWarehouse(ctx context.Context, items []string, state string) ([]stockRow, error) {
	query := `
		SELECT sle.item_code, sle.warehouse, COALESCE(wh.state, ''), SUM(sle.actual_qty)::float8 AS qty
		FROM stock_ledger_entries sle
		JOIN warehouses wh ON wh.name = sle.warehouse
		WHERE sle.item_code = ANY($1)`
	args := []any{items}
	if state != "" {
		query += ` AND wh.state = $2`
		args = append(args, state)
	}
	query += `
		GROUP BY sle.item_code, sle.warehouse, wh.state
		HAVING SUM(sle.actual_qty) > 0
		ORDER BY sle.item_code, sle.warehouse`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []stockRow
	for rows.Next() {
		var row stockRow
		if err := rows.Scan(&row.ItemCode, &row.Warehouse, &row.State, &row.Qty); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repository) OnHand(ctx context.Context, warehouse string) ([]ItemQty, error) {
	rows, err := r.db.Query(ctx, `
		SELECT item_code, actual_qty
		FROM bins
		WHERE warehouse = $1 AND actual_qty > 0
		ORDER BY item_code`, warehouse)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ItemQty
	for rows.Next() {
		var it ItemQty
		if err := rows.Scan(&it.ItemCode, &it.Qty); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
