package projects

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tabdeel/pulse/internal/activity"
	"github.com/tabdeel/pulse/internal/platform/httpx"
	"github.com/tabdeel/pulse/internal/rbac"
	"github.com/tabdeel/pulse/internal/users"
)

// Handler serves project endpoints.
type Handler struct {
	logger *slog.Logger
	store  *Store
	feed   *activity.Feed
	rbac   rbac.Middleware
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, store *Store, feed *activity.Feed, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, store: store, feed: feed, rbac: rbac}
}

// MountRoutes registers project routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/projects", func(r chi.Router) {
		r.Use(h.rbac.RequireAuthenticated)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.With(h.rbac.RequireAny(rbac.PermProjectsCreate)).Post("/", h.create)
		r.With(h.rbac.RequireAny(rbac.PermProjectsUpdate)).Put("/{id}", h.update)
		r.With(h.rbac.RequireAny(rbac.PermProjectsDelete)).Delete("/{id}", h.delete)
	})
}

type projectRequest struct {
	Name   string `json:"name" validate:"required"`
	Client string `json:"client" validate:"required"`
	Status string `json:"status" validate:"omitempty,oneof='Active' 'On Hold' 'Completed'"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"projects": h.store.List()})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, ok := h.store.Get(chi.URLParam(r, "id"))
	if !ok {
		h.respondError(w, ErrNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !httpx.Bind(w, r, &req) {
		return
	}
	p, err := h.store.Add(Project{Name: req.Name, Client: req.Client, Status: Status(req.Status)})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.feed.Record(r.Context(), users.ActorFromContext(r.Context()), "created project", p.Name)
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !httpx.Bind(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	current, ok := h.store.Get(id)
	if !ok {
		h.respondError(w, ErrNotFound)
		return
	}
	current.Name = req.Name
	current.Client = req.Client
	if req.Status != "" {
		current.Status = Status(req.Status)
	}
	p, err := h.store.Update(current)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.feed.Record(r.Context(), users.ActorFromContext(r.Context()), "updated project", p.Name)
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Delete(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.feed.Record(r.Context(), users.ActorFromContext(r.Context()), "deleted project", p.Name)
	httpx.NoContent(w)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicateName):
		httpx.RespondValidation(w, httpx.FieldErrors{"name": "is already in use"})
	case errors.Is(err, ErrInvalidStatus):
		httpx.RespondValidation(w, httpx.FieldErrors{"status": "must be one of: Active, On Hold, Completed"})
	case errors.Is(err, ErrInvalidProject):
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		h.logger.Error("projects request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
