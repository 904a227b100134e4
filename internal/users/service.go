package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/timmiekettle/tk2/internal/platform/httpx"
	"github.com/timmiekettle/tk2/internal/shared"
)

// Service handles user business logic.
type Service struct {
	repo     RepositoryPort
	audit    shared.AuditRecorder
	profiles Profiles
}

// NewService builds Service instance. Empty profile names fall back to
// DefaultProfiles.
func NewService(repo RepositoryPort, audit shared.AuditRecorder, profiles Profiles) *Service {
	if profiles.Active == "" {
		profiles.Active = DefaultProfiles.Active
	}
	if profiles.Inactive == "" {
		profiles.Inactive = DefaultProfiles.Inactive
	}
	return &Service{repo: repo, audit: audit, profiles: profiles}
}

// CustomerServiceUsers lists users on the active profile. The read runs as
// Administrator on behalf of the caller.
func (s *Service) CustomerServiceUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := shared.Elevate(ctx, func(ctx context.Context) error {
		var err error
		users, err = s.repo.ListByRoleProfile(ctx, s.profiles.Active)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("users: list customer service: %w", err)
	}
	return users, nil
}

// UpdateRole moves user onto the active profile, or the inactive one when
// active is false.
func (s *Service) UpdateRole(ctx context.Context, user string, active bool) error {
	user = strings.TrimSpace(user)
	if user == "" {
		return fmt.Errorf("%w: user is required", httpx.ErrValidation)
	}
	profile := s.profiles.Inactive
	if active {
		profile = s.profiles.Active
	}
	return shared.Elevate(ctx, func(ctx context.Context) error {
		if err := s.repo.SetRoleProfile(ctx, user, profile); err != nil {
			return err
		}
		if s.audit == nil {
			return nil
		}
		return s.audit.Record(ctx, shared.AuditLog{
			Action:   "user.role_update",
			Entity:   "User",
			EntityID: user,
			Meta:     map[string]any{"role_profile_name": profile},
		})
	})
}
