package servicejobs

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tabdeel/pulse/internal/platform/httpx"
	"github.com/tabdeel/pulse/internal/rbac"
	"github.com/tabdeel/pulse/internal/users"
)

// Handler serves the job board.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers job routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/jobs", func(r chi.Router) {
		r.Use(h.rbac.RequireAuthenticated)
		r.Get("/", h.board)
		r.Get("/{id}", h.get)
		r.Post("/{id}/move", h.move)
		r.Post("/{id}/resolve", h.resolve)
		r.Post("/{id}/escalate", h.escalate)
		r.Get("/{id}/comments", h.comments)
		r.Post("/{id}/comments", h.addComment)

		r.With(h.rbac.RequireAny(rbac.PermJobsAssign)).Post("/", h.create)
	})
}

type createRequest struct {
	Title        string `json:"title" validate:"required"`
	Project      string `json:"project" validate:"required"`
	TechnicianID int64  `json:"technicianId" validate:"required"`
	Priority     string `json:"priority" validate:"omitempty,oneof=Low Medium High"`
}

type moveRequest struct {
	Status string `json:"status" validate:"required,oneof='Assigned' 'In Progress' 'Completed' 'Resolved'"`
}

type resolveRequest struct {
	Remarks string `json:"remarks" validate:"required"`
}

type commentRequest struct {
	Text string `json:"text" validate:"required"`
}

func (h *Handler) board(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"columns": h.service.Board().Board()})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	job, ok := h.service.Board().Get(chi.URLParam(r, "id"))
	if !ok {
		h.respondError(w, ErrNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, job)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !httpx.Bind(w, r, &req) {
		return
	}
	actor, _ := users.ProfileFromContext(r.Context())
	job, err := h.service.Create(r.Context(), actor, NewJob{
		Title:        req.Title,
		Project:      req.Project,
		TechnicianID: req.TechnicianID,
		Priority:     Priority(req.Priority),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, job)
}

func (h *Handler) move(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if !httpx.Bind(w, r, &req) {
		return
	}
	actor, _ := users.ProfileFromContext(r.Context())
	job, err := h.service.Move(r.Context(), actor, chi.URLParam(r, "id"), Status(req.Status))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, job)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if !httpx.Bind(w, r, &req) {
		return
	}
	actor, _ := users.ProfileFromContext(r.Context())
	job, err := h.service.Resolve(r.Context(), actor, chi.URLParam(r, "id"), req.Remarks)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, job)
}

func (h *Handler) escalate(w http.ResponseWriter, r *http.Request) {
	actor, _ := users.ProfileFromContext(r.Context())
	threadID, err := h.service.Escalate(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]string{"threadId": threadID})
}

func (h *Handler) comments(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Board().Comments(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"comments": list})
}

func (h *Handler) addComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if !httpx.Bind(w, r, &req) {
		return
	}
	actor, _ := users.ProfileFromContext(r.Context())
	c, err := h.service.Comment(r.Context(), actor, chi.URLParam(r, "id"), req.Text)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrUnknownTechnician):
		httpx.RespondValidation(w, httpx.FieldErrors{"technicianId": "must be an active user"})
	case errors.Is(err, ErrRemarksRequired):
		httpx.RespondValidation(w, httpx.FieldErrors{"remarks": "is required"})
	case errors.Is(err, ErrEmptyComment):
		httpx.RespondValidation(w, httpx.FieldErrors{"text": "is required"})
	case errors.Is(err, ErrNotCompleted), errors.Is(err, ErrAlreadyResolved):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInvalidJob):
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		h.logger.Error("service jobs request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
