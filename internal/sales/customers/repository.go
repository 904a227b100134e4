package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/timmiekettle/tk2/internal/platform/db"
	"github.com/timmiekettle/tk2/internal/platform/httpx"
)

var (
	ErrNotFound      = fmt.Errorf("customer: %w", httpx.ErrNotFound)
	ErrAlreadyExists = fmt.Errorf("customer: %w", httpx.ErrDuplicate)
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	FindByEmail(ctx context.Context, email string) (string, error)
	FindByMobile(ctx context.Context, candidates []string) (string, error)
	Create(ctx context.Context, customer Customer) error
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

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) FindByEmail(ctx context.Context, email string) (string, error) {
	return r.firstName(ctx, `SELECT name FROM customers WHERE email_id = $1 ORDER BY created_at, name LIMIT 1`, email)
}

func (r *repository) FindByMobile(ctx context.Context, candidates []string) (string, error) {
	return r.firstName(ctx, `SELECT name FROM customers WHERE mobile_no = ANY($1) ORDER BY created_at, name LIMIT 1`, candidates)
}

func (r *repository) firstName(ctx context.Context, query string, arg any) (string, error) {
	var name string
	if err := r.db.QueryRow(ctx, query, arg).Scan(&name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return name, nil
}

func (r *repository) Create(ctx context.Context, c Customer) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO customers (name, customer_name, customer_group, territory, country,
		                       default_currency, email_id, mobile_no, owner, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), $9, $10)`,
		c.Name, c.CustomerName, c.CustomerGroup, c.Territory, c.Country,
		c.DefaultCurrency, c.EmailID, c.MobileNo, c.Owner, c.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, c.Name)
		}
		return err
	}
	for i, acc := range c.Accounts {
		if _, err := r.db.Exec(ctx, `
			INSERT INTO customer_accounts (parent, idx, company, account)
			VALUES ($1, $2, $3, $4)`, c.Name, i+1, acc.Company, acc.Account); err != nil {
			return fmt.Errorf("insert party account: %w", err)
		}
	}
	return nil
}
