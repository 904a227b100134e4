package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/timmiekettle/tk2/internal/platform/httpx"
	"github.com/timmiekettle/tk2/internal/shared"
)

// ErrInvalidToken is returned for malformed, expired or forged bearer tokens.
var ErrInvalidToken = fmt.Errorf("%w: invalid token", httpx.ErrUnauthorized)

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

// NewService constructs a new Service. secret signs bearer tokens.
func NewService(repo Repository, secret string, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	return &Service{repo: repo, secret: []byte(secret), tokenTTL: tokenTTL, now: time.Now}
}

// WithNow overrides the clock for tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// Authenticate validates login/password credentials.
func (s *Service) Authenticate(ctx context.Context, login, password string) (*User, error) {
	user, err := s.repo.FindByName(ctx, strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.Enabled || user.PasswordHash == "" {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

type actorClaims struct {
	FullName string   `json:"full_name,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 bearer token for actor.
func (s *Service) IssueToken(actor shared.Actor) (string, time.Time, error) {
	if actor.IsZero() {
		return "", time.Time{}, shared.ErrNoActor
	}
	now := s.now()
	expires := now.Add(s.tokenTTL)
	claims := actorClaims{
		FullName: actor.FullName,
		Roles:    actor.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.Caller(),
			Issuer:    "tk2",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, expires, nil
}

// ParseToken validates a bearer token and returns the actor it names.
func (s *Service) ParseToken(raw string) (shared.Actor, error) {
	token, err := jwt.ParseWithClaims(raw, &actorClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithIssuer("tk2"))
	if err != nil || !token.Valid {
		return shared.Actor{}, ErrInvalidToken
	}
	claims, ok := token.Claims.(*actorClaims)
	if !ok || claims.Subject == "" {
		return shared.Actor{}, ErrInvalidToken
	}
	return shared.Actor{User: claims.Subject, FullName: claims.FullName, Roles: claims.Roles}, nil
}
