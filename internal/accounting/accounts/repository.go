package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/timmiekettle/tk2/internal/accounting/shared"
)

// Repository looks up ledger master data.
type Repository interface {
	// AccountCompany returns the company owning account.
	AccountCompany(ctx context.Context, account string) (string, error)
	Company(ctx context.Context, name string) (Company, error)
	// SystemDefault returns the value stored under key, or "" when unset.
	SystemDefault(ctx context.Context, key string) (string, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) AccountCompany(ctx context.Context, account string) (string, error) {
	var company string
	err := r.db.QueryRow(ctx, `SELECT company FROM accounts WHERE name = $1`, account).Scan(&company)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: %s", shared.ErrAccountNotFound, account)
		}
		return "", err
	}
	return company, nil
}

func (r *repository) Company(ctx context.Context, name string) (Company, error) {
	var c Company
	err := r.db.QueryRow(ctx, `
		SELECT name, COALESCE(abbr, ''), COALESCE(default_currency, ''),
		       COALESCE(default_receivable_account, '')
		FROM companies WHERE name = $1`, name).
		Scan(&c.Name, &c.Abbr, &c.DefaultCurrency, &c.DefaultReceivableAccount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Company{}, fmt.Errorf("%w: %s", shared.ErrCompanyNotFound, name)
		}
		return Company{}, err
	}
	return c, nil
}

func (r *repository) SystemDefault(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRow(ctx, `SELECT value FROM system_defaults WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}
