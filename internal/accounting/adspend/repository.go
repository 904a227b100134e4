package adspend

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/timmiekettle/tk2/internal/platform/httpx"
)

var ErrNotFound = fmt.Errorf("ad spend: %w", httpx.ErrNotFound)

type Repository interface {
	Get(ctx context.Context, name string) (AdSpend, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, name string) (AdSpend, error) {
	var a AdSpend
	err := r.db.QueryRow(ctx, `
		SELECT name, date, COALESCE(digital_marketer, ''), amount_in_ngn, COALESCE(source_of_funds, '')
		FROM ad_spends WHERE name = $1`, name).
		Scan(&a.Name, &a.Date, &a.DigitalMarketer, &a.AmountInNGN, &a.SourceOfFunds)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AdSpend{}, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return AdSpend{}, err
	}
	return a, nil
}
