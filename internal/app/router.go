package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tabdeel/pulse/internal/accounts"
	"github.com/tabdeel/pulse/internal/auth"
	"github.com/tabdeel/pulse/internal/dashboard"
	"github.com/tabdeel/pulse/internal/finance"
	"github.com/tabdeel/pulse/internal/messages"
	"github.com/tabdeel/pulse/internal/observability"
	"github.com/tabdeel/pulse/internal/platform/httpx"
	"github.com/tabdeel/pulse/internal/projects"
	"github.com/tabdeel/pulse/internal/rbac"
	"github.com/tabdeel/pulse/internal/servicejobs"
	"github.com/tabdeel/pulse/internal/session"
	"github.com/tabdeel/pulse/internal/shared"
	"github.com/tabdeel/pulse/internal/tasks"
	"github.com/tabdeel/pulse/internal/users"
	"github.com/tabdeel/pulse/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Workspace      *Workspace
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Identities     *session.Manager
	AuthService    *auth.Service
	QueueInspector jobs.QueueInspector
	Metrics        *observability.Metrics
	Idempotency    shared.IdempotencyStore
}

// NewRouter constructs the chi.Router with Pulse defaults. Feature APIs live
// under /api; probes and metrics stay at the root.
func NewRouter(params RouterParams) http.Handler {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ws := params.Workspace
	guard := rbac.Middleware{Logger: logger}
	if params.Metrics != nil {
		guard.Denials = params.Metrics
	}

	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Identities:     params.Identities,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	r.Route("/jobs/queue", jobs.NewHandler(params.QueueInspector, logger).MountRoutes)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", auth.NewHandler(logger, params.AuthService, params.SessionManager, params.CSRFManager, params.Identities).MountRoutes)
		session.NewHandler(logger, params.Identities, guard).MountRoutes(r)
		rbac.NewHandler(logger, ws.Registry, guard).MountRoutes(r)
		users.NewHandler(logger, ws.Directory, ws.Feed, params.AuthService, params.Identities, guard).MountRoutes(r)
		finance.NewHandler(logger, ws.Finance, params.Idempotency, guard).MountRoutes(r)
		servicejobs.NewHandler(logger, ws.Jobs, guard).MountRoutes(r)
		messages.NewHandler(logger, ws.Messages, guard).MountRoutes(r)
		projects.NewHandler(logger, ws.Projects, ws.Feed, guard).MountRoutes(r)
		accounts.NewHandler(logger, ws.Accounts, ws.Feed, guard).MountRoutes(r)
		tasks.NewHandler(logger, ws.Tasks, guard).MountRoutes(r)
		dashboard.NewHandler(ws.Dashboard, guard).MountRoutes(r)
	})

	return r
}
