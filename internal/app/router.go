package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/timmiekettle/tk2/internal/auth"
	"github.com/timmiekettle/tk2/internal/dashboard"
	"github.com/timmiekettle/tk2/internal/observability"
	"github.com/timmiekettle/tk2/internal/platform/httpx"
	"github.com/timmiekettle/tk2/internal/platform/rpc"
	"github.com/timmiekettle/tk2/internal/rbac"
	"github.com/timmiekettle/tk2/internal/shared"
	"github.com/timmiekettle/tk2/jobs"
	"github.com/timmiekettle/tk2/report"
)

// RPCModule contributes whitelisted methods to the registry.
type RPCModule interface {
	Register(reg *rpc.Registry)
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Metrics        *observability.Metrics
	RBACMiddleware rbac.Middleware
	Idempotency    *shared.IdempotencyStore

	AuthService      *auth.Service
	AuthHandler      *auth.Handler
	Modules          []RPCModule
	DashboardHandler *dashboard.Handler
	ReportHandler    *report.Handler
	JobHandler       *jobs.Handler
}

// NewRouter constructs the chi.Router with tk2 defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	var resolver func(http.Handler) http.Handler
	if params.AuthService != nil {
		resolver = params.AuthService.ResolveActor
	}
	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		ActorResolver:  resolver,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.ReportHandler != nil {
		r.Route("/report", params.ReportHandler.MountRoutes)
	}
	if params.AuthHandler != nil {
		params.AuthHandler.MountRoutes(r)
	}

	registry := rpc.NewRegistry("tk2.api")
	for _, m := range params.Modules {
		m.Register(registry)
	}
	r.Group(func(r chi.Router) {
		r.Use(params.RBACMiddleware.RequireActor)
		r.Use(params.Idempotency.Middleware("rpc", params.Logger))
		registry.MountRoutes(r)
		if params.DashboardHandler != nil {
			params.DashboardHandler.MountRoutes(r)
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.RespondError(w, httpx.ErrNotFound)
	})
	return r
}
