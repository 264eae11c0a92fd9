package messages

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tabdeel/pulse/internal/platform/httpx"
	"github.com/tabdeel/pulse/internal/rbac"
	"github.com/tabdeel/pulse/internal/users"
)

// Handler serves message threads for the signed-in user.
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

// MountRoutes registers message routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/messages", func(r chi.Router) {
		r.Use(h.rbac.RequireAuthenticated)
		r.Get("/threads", h.list)
		r.Post("/threads", h.create)
		r.Get("/threads/{id}", h.get)
		r.Post("/threads/{id}/messages", h.send)
		r.Post("/threads/{id}/read", h.markRead)
		r.Get("/unread", h.unread)
	})
}

type createThreadRequest struct {
	Title          string  `json:"title" validate:"required"`
	Message        string  `json:"message" validate:"required"`
	ParticipantIDs []int64 `json:"participantIds" validate:"required,min=1"`
}

type sendRequest struct {
	Text string `json:"text" validate:"required"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	viewer, _ := users.ProfileFromContext(r.Context())
	httpx.JSON(w, http.StatusOK, map[string]any{"threads": h.service.Store().List(viewer.ID)})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	viewer, _ := users.ProfileFromContext(r.Context())
	thread, err := h.service.Store().Get(viewer.ID, chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, thread)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createThreadRequest
	if !httpx.Bind(w, r, &req) {
		return
	}
	actor, _ := users.ProfileFromContext(r.Context())
	thread, err := h.service.Start(r.Context(), actor, req.Title, req.Message, req.ParticipantIDs)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, thread)
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if !httpx.Bind(w, r, &req) {
		return
	}
	actor, _ := users.ProfileFromContext(r.Context())
	msg, err := h.service.Send(r.Context(), actor, chi.URLParam(r, "id"), req.Text)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, msg)
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	viewer, _ := users.ProfileFromContext(r.Context())
	thread, err := h.service.Store().MarkRead(viewer.ID, chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, thread)
}

func (h *Handler) unread(w http.ResponseWriter, r *http.Request) {
	viewer, _ := users.ProfileFromContext(r.Context())
	httpx.JSON(w, http.StatusOK, map[string]int{"unread": h.service.Store().Unread(viewer.ID)})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrUnknownParticipant):
		httpx.RespondValidation(w, httpx.FieldErrors{"participantIds": "must reference active users"})
	case errors.Is(err, ErrEmptyMessage):
		httpx.RespondValidation(w, httpx.FieldErrors{"text": "is required"})
	case errors.Is(err, ErrInvalidThread):
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		h.logger.Error("messages request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
