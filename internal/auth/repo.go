package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/timmiekettle/tk2/internal/platform/httpx"
)

// Repository defines persistence operations for auth module.
type Repository interface {
	FindByName(ctx context.Context, name string) (*User, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByName fetches a user by login name (email), case-insensitively.
func (r *PGRepository) FindByName(ctx context.Context, name string) (*User, error) {
	var u User
	err := r.pool.QueryRow(ctx, `
		SELECT name, COALESCE(full_name, ''), COALESCE(password_hash, ''),
		       COALESCE(role_profile_name, ''), COALESCE(roles, '{}'), enabled
		FROM users
		WHERE lower(name) = lower($1)`, name).
		Scan(&u.Name, &u.FullName, &u.PasswordHash, &u.RoleProfileName, &u.Roles, &u.Enabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// SetPasswordHash stores a new bcrypt hash for the named user.
func (r *PGRepository) SetPasswordHash(ctx context.Context, name, hash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE lower(name) = lower($1)`, name, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
