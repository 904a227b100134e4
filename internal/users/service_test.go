package users

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timmiekettle/tk2/internal/platform/httpx"
	"github.com/timmiekettle/tk2/internal/platform/rpc"
	"github.com/timmiekettle/tk2/internal/shared"
)

// fakeRepo enforces administrator rights the way the database repository does.
type fakeRepo struct {
	users  map[string]*User
	actors []shared.Actor
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[string]*User{
		"ada@tk.ng":  {FullName: "Ada", Email: "ada@tk.ng", RoleProfileName: "Customer Service"},
		"bayo@tk.ng": {FullName: "Bayo", Email: "bayo@tk.ng", RoleProfileName: "Test"},
	}}
}

func (f *fakeRepo) ListByRoleProfile(ctx context.Context, profile string) ([]User, error) {
	actor, err := shared.RequireAdministrator(ctx)
	if err != nil {
		return nil, err
	}
	f.actors = append(f.actors, actor)
	out := []User{}
	for _, email := range []string{"ada@tk.ng", "bayo@tk.ng"} {
		if u := f.users[email]; u.RoleProfileName == profile {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeRepo) SetRoleProfile(ctx context.Context, user, profile string) error {
	actor, err := shared.RequireAdministrator(ctx)
	if err != nil {
		return err
	}
	f.actors = append(f.actors, actor)
	u, ok := f.users[user]
	if !ok {
		return httpx.ErrNotFound
	}
	u.RoleProfileName = profile
	return nil
}

type recordingAudit struct{ logs []shared.AuditLog }

func (a *recordingAudit) Record(ctx context.Context, log shared.AuditLog) error {
	if actor, ok := shared.ActorFromContext(ctx); ok {
		log.Actor, log.OnBehalfOf = actor.User, actor.OnBehalfOf
	}
	a.logs = append(a.logs, log)
	return nil
}

func csAgent() context.Context {
	return shared.ContextWithActor(context.Background(), shared.Actor{User: "supervisor@tk.ng", Roles: []string{"CS Supervisor"}})
}

func TestCustomerServiceUsersRunsElevated(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, Profiles{})
	ctx := csAgent()

	got, err := svc.CustomerServiceUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []User{{FullName: "Ada", Email: "ada@tk.ng", RoleProfileName: "Customer Service"}}, got)

	require.Len(t, repo.actors, 1)
	assert.Equal(t, shared.Administrator, repo.actors[0].User)
	assert.Equal(t, "supervisor@tk.ng", repo.actors[0].OnBehalfOf)

	actor, _ := shared.ActorFromContext(ctx)
	assert.Equal(t, "supervisor@tk.ng", actor.User)
}

func TestRepositoryRejectsNonAdministrator(t *testing.T) {
	_, err := newFakeRepo().ListByRoleProfile(csAgent(), "Customer Service")
	assert.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestUpdateRole(t *testing.T) {
	repo := newFakeRepo()
	audit := &recordingAudit{}
	svc := NewService(repo, audit, DefaultProfiles)

	require.NoError(t, svc.UpdateRole(csAgent(), "bayo@tk.ng", true))
	assert.Equal(t, "Customer Service", repo.users["bayo@tk.ng"].RoleProfileName)

	require.NoError(t, svc.UpdateRole(csAgent(), "ada@tk.ng", false))
	assert.Equal(t, "Test", repo.users["ada@tk.ng"].RoleProfileName)

	require.Len(t, audit.logs, 2)
	assert.Equal(t, "user.role_update", audit.logs[1].Action)
	assert.Equal(t, shared.Administrator, audit.logs[1].Actor)
	assert.Equal(t, "supervisor@tk.ng", audit.logs[1].OnBehalfOf)
}

func TestUpdateRoleErrors(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, DefaultProfiles)

	assert.ErrorIs(t, svc.UpdateRole(csAgent(), "ghost@tk.ng", true), httpx.ErrNotFound)
	assert.ErrorIs(t, svc.UpdateRole(csAgent(), " ", true), httpx.ErrValidation)
	assert.ErrorIs(t, svc.UpdateRole(context.Background(), "ada@tk.ng", true), httpx.ErrUnauthorized)
}

func TestUpdateRoleHandler(t *testing.T) {
	repo := newFakeRepo()
	reg := rpc.NewRegistry("tk2.api")
	NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), NewService(repo, nil, DefaultProfiles)).Register(reg)
	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(csAgent()))
		})
	})
	reg.MountRoutes(router)

	req := httptest.NewRequest(http.MethodPost, "/api/method/tk2.api.update_user_role",
		strings.NewReader("user=bayo%40tk.ng&active=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":true}`, rec.Body.String())
	assert.Equal(t, "Customer Service", repo.users["bayo@tk.ng"].RoleProfileName)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/method/tk2.api.update_user_role?user=ghost%40tk.ng&active=0", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/method/tk2.api.update_user_role?user=bayo%40tk.ng&active=0", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Customer Service", repo.users["bayo@tk.ng"].RoleProfileName, "GET must not demote")
}
