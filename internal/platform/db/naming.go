package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Querier is the subset of pgx shared by pools and transactions that the
// naming series needs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Series describes a document naming series such as ACC-SINV-.YYYY.-#####.
type Series struct {
	Prefix string
	Digits int
}

// Key returns the counter key for the given posting time.
func (s Series) Key(at time.Time) string {
	return fmt.Sprintf("%s-%04d-", s.Prefix, at.Year())
}

// Format renders the document name for a counter value.
func (s Series) Format(at time.Time, n int64) string {
	digits := s.Digits
	if digits <= 0 {
		digits = 5
	}
	return fmt.Sprintf("%s%0*d", s.Key(at), digits, n)
}

// NextName increments the series counter and returns the next document name.
// Run it inside the transaction that inserts the document so a rollback
// releases nothing but a gap.
func NextName(ctx context.Context, q Querier, s Series, at time.Time) (string, error) {
	var current int64
	err := q.QueryRow(ctx, `
		INSERT INTO naming_series (prefix, current) VALUES ($1, 1)
		ON CONFLICT (prefix) DO UPDATE SET current = naming_series.current + 1
		RETURNING current`, s.Key(at)).Scan(&current)
	if err != nil {
		return "", fmt.Errorf("platform/db: next name for %s: %w", s.Prefix, err)
	}
	return s.Format(at, current), nil
}
