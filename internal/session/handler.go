package session

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tabdeel/pulse/internal/platform/httpx"
	"github.com/tabdeel/pulse/internal/rbac"
	"github.com/tabdeel/pulse/internal/shared"
	"github.com/tabdeel/pulse/internal/users"
)

// View is the JSON shape of a resolved session.
type View struct {
	Authenticated bool           `json:"authenticated"`
	User          *users.Profile `json:"user,omitempty"`
	OriginalUser  *users.Profile `json:"originalUser,omitempty"`
	Impersonating bool           `json:"impersonating"`
	CSRFToken     string         `json:"csrfToken,omitempty"`
}

// NewView renders st for clients.
func NewView(st State) View {
	if !st.Authenticated() {
		return View{}
	}
	active, original := st.Active, st.Original
	return View{
		Authenticated: true,
		User:          &active,
		OriginalUser:  &original,
		Impersonating: st.Context.Impersonating(),
	}
}

// Handler exposes the switch-view endpoints.
type Handler struct {
	logger  *slog.Logger
	manager *Manager
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, manager *Manager, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, manager: manager, rbac: rbac}
}

// MountRoutes registers session routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAuthenticated)
		r.Get("/session", h.current)
		r.Post("/session/switch/{userID}", h.switchUser)
		r.Post("/session/return", h.returnToOriginal)
	})
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, NewView(StateFromContext(r.Context())))
}

func (h *Handler) switchUser(w http.ResponseWriter, r *http.Request) {
	target, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return
	}
	st := StateFromContext(r.Context())
	// Only the signed-in identity may grant a switch, never the impersonated one.
	if !st.Original.Gate().HasPermission(rbac.PermSystemAdmin) {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "switching users requires system:admin")
		return
	}
	next := h.manager.SwitchUser(shared.SessionFromContext(r.Context()), target)
	httpx.JSON(w, http.StatusOK, NewView(next))
}

func (h *Handler) returnToOriginal(w http.ResponseWriter, r *http.Request) {
	next := h.manager.ReturnToOriginal(shared.SessionFromContext(r.Context()))
	httpx.JSON(w, http.StatusOK, NewView(next))
}
