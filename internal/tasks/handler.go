package tasks

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tabdeel/pulse/internal/platform/httpx"
	"github.com/tabdeel/pulse/internal/rbac"
)

// Handler serves the task list.
type Handler struct {
	logger *slog.Logger
	store  *Store
	rbac   rbac.Middleware
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, store *Store, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, store: store, rbac: rbac}
}

// MountRoutes registers task routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAuthenticated)
		r.Get("/tasks", h.list)
		r.Post("/tasks", h.create)
		r.Post("/tasks/{id}/toggle", h.toggle)
	})
}

type createRequest struct {
	Description string `json:"description" validate:"required"`
	Deadline    string `json:"deadline" validate:"required,datetime=2006-01-02"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.store.Split())
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !httpx.Bind(w, r, &req) {
		return
	}
	task, err := h.store.Add(req.Description, req.Deadline)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, task)
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request) {
	task, err := h.store.Toggle(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, task)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvalidTask):
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		h.logger.Error("tasks request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
