package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/timmiekettle/tk2/internal/auth"
	"github.com/timmiekettle/tk2/internal/platform/httpx"
	"github.com/timmiekettle/tk2/internal/shared"
)

type stubRepo struct {
	user *auth.User
}

func (s *stubRepo) FindByName(ctx context.Context, name string) (*auth.User, error) {
	if s.user == nil || !strings.EqualFold(s.user.Name, name) {
		return nil, httpx.ErrNotFound
	}
	return s.user, nil
}

func newUser(t *testing.T) *auth.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.MinCost)
	require.NoError(t, err)
	return &auth.User{
		Name:            "cs@tk.ng",
		FullName:        "Ada CS",
		PasswordHash:    string(hashed),
		RoleProfileName: "Customer Service",
		Enabled:         true,
	}
}

func newAuthHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *auth.Service, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })
	sessionManager := shared.NewSessionManager(redisClient, time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	service := auth.NewService(repo, "jwtsecret", time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return auth.NewHandler(logger, service, sessionManager, csrfManager), service, sessionManager
}

func serveWithSession(t *testing.T, h http.Handler, sm *shared.SessionManager, req *http.Request) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	sess, err := sm.Load(req.Context(), req)
	require.NoError(t, err)
	ctx := shared.ContextWithSession(req.Context(), sess)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(ctx))
	require.NoError(t, sm.Commit(ctx, rec, sess))
	return rec, sess
}

func routerFor(h *auth.Handler, svc *auth.Service) http.Handler {
	r := chi.NewRouter()
	r.Use(svc.ResolveActor)
	h.MountRoutes(r)
	return r
}

func TestLoginSuccessBindsActorToSession(t *testing.T) {
	handler, svc, sm := newAuthHandler(t, &stubRepo{user: newUser(t)})

	form := url.Values{"usr": {"CS@tk.ng"}, "pwd": {"correctpass"}}
	req := httptest.NewRequest(http.MethodPost, "/api/method/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec, sess := serveWithSession(t, routerFor(handler, svc), sm, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Logged In", body["message"])
	assert.Equal(t, "Ada CS", body["full_name"])
	assert.NotEmpty(t, body["csrf_token"])

	actor, ok := sess.Actor()
	require.True(t, ok)
	assert.Equal(t, "cs@tk.ng", actor.User)
	assert.True(t, actor.HasRole("Customer Service"))
}

func TestLoginInvalidCredentials(t *testing.T) {
	handler, svc, sm := newAuthHandler(t, &stubRepo{user: newUser(t)})

	body := `{"usr":"cs@tk.ng","pwd":"wrongpass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/method/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec, sess := serveWithSession(t, routerFor(handler, svc), sm, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	_, ok := sess.Actor()
	assert.False(t, ok)
}

func TestLoginDisabledUser(t *testing.T) {
	user := newUser(t)
	user.Enabled = false
	_, svc, _ := newAuthHandler(t, &stubRepo{user: user})

	_, err := svc.Authenticate(context.Background(), "cs@tk.ng", "correctpass")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestIssueTokenAndResolveBearer(t *testing.T) {
	handler, svc, _ := newAuthHandler(t, &stubRepo{user: newUser(t)})
	router := routerFor(handler, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/method/tk2.auth.issue_token", nil)
	req = req.WithContext(shared.ContextWithActor(req.Context(), newUser(t).Actor()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Message struct {
			AccessToken string `json:"access_token"`
			TokenType   string `json:"token_type"`
			ExpiresIn   int64  `json:"expires_in"`
		} `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Bearer", body.Message.TokenType)
	assert.InDelta(t, 3600, body.Message.ExpiresIn, 2)

	var seen shared.Actor
	resolve := svc.ResolveActor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = shared.ActorFromContext(r.Context())
	}))
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+body.Message.AccessToken)
	resolve.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "cs@tk.ng", seen.User)
	assert.True(t, seen.HasRole("Customer Service"))
}

func TestResolveActorRejectsForgedToken(t *testing.T) {
	_, svc, _ := newAuthHandler(t, &stubRepo{})
	other := auth.NewService(&stubRepo{}, "another-secret", time.Hour)
	forged, _, err := other.IssueToken(shared.Actor{User: "Administrator"})
	require.NoError(t, err)

	called := false
	h := svc.ResolveActor(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	_, svc, _ := newAuthHandler(t, &stubRepo{})
	past := time.Now().Add(-2 * time.Hour)
	svc.WithNow(func() time.Time { return past })
	token, _, err := svc.IssueToken(shared.Actor{User: "cs@tk.ng"})
	require.NoError(t, err)

	svc.WithNow(time.Now)
	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestIssueTokenRequiresActor(t *testing.T) {
	handler, svc, _ := newAuthHandler(t, &stubRepo{})
	rec := httptest.NewRecorder()
	routerFor(handler, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/method/tk2.auth.issue_token", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
