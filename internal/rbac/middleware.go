// Package rbac gates routes on the identity resolved for the request.
package rbac

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/timmiekettle/tk2/internal/platform/httpx"
	"github.com/timmiekettle/tk2/internal/shared"
)

// Middleware wires authorization helpers for HTTP handlers.
type Middleware struct {
	Logger *slog.Logger
}

// RequireActor rejects requests without an authenticated caller.
func (m Middleware) RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := shared.ActorFromContext(r.Context()); !ok {
			httpx.RespondError(w, shared.ErrNoActor)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAny ensures the caller holds at least one of roles. Administrators
// always pass.
func (m Middleware) RequireAny(roles ...string) func(http.Handler) http.Handler {
	normalized := normalizeRoles(roles)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := shared.ActorFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, shared.ErrNoActor)
				return
			}
			if len(normalized) == 0 || actor.IsAdministrator() || hasAnyRole(actor.Roles, normalized) {
				next.ServeHTTP(w, r)
				return
			}
			if m.Logger != nil {
				m.Logger.Warn("rbac denied", slog.String("user", actor.User), slog.String("path", r.URL.Path))
			}
			httpx.RespondError(w, fmt.Errorf("%w: requires one of %s", httpx.ErrForbidden, strings.Join(roles, ", ")))
		})
	}
}

func normalizeRoles(roles []string) map[string]struct{} {
	out := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		role = strings.TrimSpace(strings.ToLower(role))
		if role != "" {
			out[role] = struct{}{}
		}
	}
	return out
}

func hasAnyRole(granted []string, required map[string]struct{}) bool {
	for _, role := range granted {
		if _, ok := required[strings.ToLower(strings.TrimSpace(role))]; ok {
			return true
		}
	}
	return false
}
