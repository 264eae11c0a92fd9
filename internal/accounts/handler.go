package accounts

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

// Handler serves account head endpoints.
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

// MountRoutes registers account head routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/accounts", func(r chi.Router) {
		r.Use(h.rbac.RequireAuthenticated)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.With(h.rbac.RequireAny(rbac.PermAccountsCreate)).Post("/", h.create)
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAny(rbac.PermAccountsUpdate))
			r.Put("/{id}", h.update)
			r.Post("/{id}/approve", h.approve)
		})
		r.With(h.rbac.RequireAny(rbac.PermAccountsDelete)).Delete("/{id}", h.delete)
	})
}

type createRequest struct {
	Name          string `json:"name" validate:"required"`
	BankName      string `json:"bankName" validate:"required"`
	AccountNumber string `json:"accountNumber" validate:"required,min=4"`
}

type updateRequest struct {
	Name          string `json:"name" validate:"required"`
	BankName      string `json:"bankName" validate:"required"`
	AccountNumber string `json:"accountNumber" validate:"omitempty,min=4"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"accountHeads": h.store.List()})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	head, ok := h.store.Get(chi.URLParam(r, "id"))
	if !ok {
		h.respondError(w, ErrNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, head)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !httpx.Bind(w, r, &req) {
		return
	}
	head, err := h.store.Add(req.Name, req.BankName, req.AccountNumber)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.feed.Record(r.Context(), users.ActorFromContext(r.Context()), "added account head", head.Name)
	httpx.JSON(w, http.StatusCreated, head)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if !httpx.Bind(w, r, &req) {
		return
	}
	head, err := h.store.Update(chi.URLParam(r, "id"), req.Name, req.BankName, req.AccountNumber)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, head)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	head, err := h.store.Approve(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.feed.Record(r.Context(), users.ActorFromContext(r.Context()), "approved account head", head.Name)
	httpx.JSON(w, http.StatusOK, head)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	head, err := h.store.Delete(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.feed.Record(r.Context(), users.ActorFromContext(r.Context()), "removed account head", head.Name)
	httpx.NoContent(w)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvalidAccountNumber):
		httpx.RespondValidation(w, httpx.FieldErrors{"accountNumber": "must contain at least 4 digits"})
	case errors.Is(err, ErrAlreadyActive):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrInvalidHead):
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		h.logger.Error("accounts request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
