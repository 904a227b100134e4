package users

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/timmiekettle/tk2/internal/platform/httpx"
	"github.com/timmiekettle/tk2/internal/shared"
)

// RepositoryPort defines data access methods for users. Both operations
// require an administrator actor on ctx.
type RepositoryPort interface {
	ListByRoleProfile(ctx context.Context, profile string) ([]User, error)
	SetRoleProfile(ctx context.Context, user, profile string) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListByRoleProfile returns the users holding profile.
func (r *Repository) ListByRoleProfile(ctx context.Context, profile string) ([]User, error) {
	if _, err := shared.RequireAdministrator(ctx); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT COALESCE(full_name, ''), name, COALESCE(role_profile_name, '')
		FROM users
		WHERE role_profile_name = $1
		ORDER BY name`, profile)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := []User{}
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.FullName, &user.Email, &user.RoleProfileName); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// SetRoleProfile switches user onto profile.
func (r *Repository) SetRoleProfile(ctx context.Context, user, profile string) error {
	if _, err := shared.RequireAdministrator(ctx); err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `UPDATE users SET role_profile_name = $2 WHERE lower(name) = lower($1)`, user, profile)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.Userf(httpx.ErrNotFound, "User %s not found", user)
	}
	return nil
}

var _ RepositoryPort = (*Repository)(nil)
