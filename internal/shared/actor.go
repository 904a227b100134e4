package shared

import (
	"context"
	"fmt"
	"slices"

	"github.com/timmiekettle/tk2/internal/platform/httpx"
)

// Administrator is the built-in superuser identity.
const Administrator = "Administrator"

// ErrNoActor is returned when an operation needs an authenticated caller.
var ErrNoActor = fmt.Errorf("%w: login required", httpx.ErrUnauthorized)

// Actor is the identity an operation runs as.
type Actor struct {
	User       string   `json:"user"`
	FullName   string   `json:"full_name,omitempty"`
	Roles      []string `json:"roles,omitempty"`
	OnBehalfOf string   `json:"on_behalf_of,omitempty"`
}

// IsZero reports whether no identity is set.
func (a Actor) IsZero() bool {
	return a.User == ""
}

// IsAdministrator reports whether the actor holds administrator rights.
func (a Actor) IsAdministrator() bool {
	return a.User == Administrator || a.HasRole(Administrator)
}

// HasRole reports whether role is among the actor's roles.
func (a Actor) HasRole(role string) bool {
	return slices.Contains(a.Roles, role)
}

// Caller returns the human behind the actor, looking through elevation.
func (a Actor) Caller() string {
	if a.OnBehalfOf != "" {
		return a.OnBehalfOf
	}
	return a.User
}

type actorContextKey struct{}

// ContextWithActor stores the actor in context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor from context.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	if !ok || actor.IsZero() {
		return Actor{}, false
	}
	return actor, true
}

// RequireActor returns the actor or ErrNoActor.
func RequireActor(ctx context.Context) (Actor, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return Actor{}, ErrNoActor
	}
	return actor, nil
}

// Elevate runs fn with an Administrator actor derived from the caller.
// The caller's context is left untouched, so the original identity is in
// effect again as soon as fn returns, whether it succeeds, fails or panics.
func Elevate(ctx context.Context, fn func(context.Context) error) error {
	caller, err := RequireActor(ctx)
	if err != nil {
		return err
	}
	elevated := Actor{
		User:       Administrator,
		FullName:   Administrator,
		Roles:      []string{Administrator},
		OnBehalfOf: caller.Caller(),
	}
	return fn(ContextWithActor(ctx, elevated))
}

// RequireAdministrator returns ErrForbidden unless ctx carries an
// administrator actor.
func RequireAdministrator(ctx context.Context) (Actor, error) {
	actor, err := RequireActor(ctx)
	if err != nil {
		return Actor{}, err
	}
	if !actor.IsAdministrator() {
		return Actor{}, fmt.Errorf("%w: administrator rights required", httpx.ErrForbidden)
	}
	return actor, nil
}
