package fx

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Quote is one stored exchange rate.
type Quote struct {
	From string
	To   string
	Date time.Time
	Rate float64
}

// Repository reads and writes currency_exchanges.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository returns a repository over currency_exchanges.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) LatestRate(ctx context.Context, from, to string, asOf time.Time) (float64, bool, error) {
	var rate float64
	err := r.db.QueryRow(ctx, `
		SELECT exchange_rate::float8
		FROM currency_exchanges
		WHERE from_currency = $1 AND to_currency = $2 AND date <= $3
		ORDER BY date DESC
		LIMIT 1`, from, to, asOf).Scan(&rate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return rate, true, nil
}

// SaveQuotes upserts quotes keyed on pair and date in one batch.
func (r *Repository) SaveQuotes(ctx context.Context, quotes []Quote) error {
	batch := &pgx.Batch{}
	for _, q := range quotes {
		batch.Queue(`
			INSERT INTO currency_exchanges (from_currency, to_currency, date, exchange_rate)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (from_currency, to_currency, date) DO UPDATE SET exchange_rate = EXCLUDED.exchange_rate`,
			normalise(q.From), normalise(q.To), q.Date, q.Rate)
	}
	return r.db.SendBatch(ctx, batch).Close()
}

var _ RateProvider = (*Repository)(nil)
