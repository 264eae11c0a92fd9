package dashboard

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tabdeel/pulse/internal/platform/httpx"
	"github.com/tabdeel/pulse/internal/rbac"
	"github.com/tabdeel/pulse/internal/users"
)

const maxActivityLimit = 50

// Handler serves the dashboard summary.
type Handler struct {
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds a Handler.
func NewHandler(service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{service: service, rbac: rbac}
}

// MountRoutes registers the dashboard route.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireAuthenticated).Get("/dashboard", h.summary)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	limit := DefaultActivityLimit
	if raw := r.URL.Query().Get("activity"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxActivityLimit {
			httpx.RespondValidation(w, httpx.FieldErrors{"activity": "must be between 1 and 50"})
			return
		}
		limit = n
	}
	viewer, _ := users.ProfileFromContext(r.Context())
	httpx.JSON(w, http.StatusOK, h.service.Summary(viewer.ID, limit))
}
