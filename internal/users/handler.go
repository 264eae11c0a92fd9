package users

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tabdeel/pulse/internal/activity"
	"github.com/tabdeel/pulse/internal/platform/httpx"
	"github.com/tabdeel/pulse/internal/rbac"
)

// PasswordResetter dispatches password reset emails.
type PasswordResetter interface {
	EnqueuePasswordReset(ctx context.Context, userID int64, email, name string) error
}

// IdentityReleaser returns the caller's session to its original identity when
// the given user is being impersonated.
type IdentityReleaser interface {
	ReleaseIdentity(ctx context.Context, userID int64)
}

// Handler manages user management endpoints.
type Handler struct {
	logger    *slog.Logger
	directory *Directory
	feed      *activity.Feed
	resetter  PasswordResetter
	releaser  IdentityReleaser
	rbac      rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, directory *Directory, feed *activity.Feed, resetter PasswordResetter, releaser IdentityReleaser, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, directory: directory, feed: feed, resetter: resetter, releaser: releaser, rbac: rbac}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermUsersRead))
		r.Get("/users", h.listUsers)
		r.Get("/users/{id}", h.getUser)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermUsersCreate))
		r.Post("/users", h.createUser)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermUsersUpdate))
		r.Put("/users/{id}", h.updateUser)
		r.Post("/users/{id}/toggle-status", h.toggleStatus)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermUsersDelete))
		r.Delete("/users/{id}", h.deleteUser)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermUsersResetPassword))
		r.Post("/users/{id}/reset-password", h.resetPassword)
	})
}

type userRequest struct {
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
	Mobile string `json:"mobile"`
	RoleID string `json:"roleId" validate:"required"`
	Status Status `json:"status" validate:"omitempty,oneof=Active Disabled"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	list := h.directory.List()
	profiles := make([]Profile, 0, len(list))
	for _, u := range list {
		profiles = append(profiles, h.directory.Profile(u))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": profiles})
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	profile, found := h.directory.ProfileByID(id)
	if !found {
		h.respondError(w, ErrNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !httpx.Bind(w, r, &req) {
		return
	}
	user, err := h.directory.AddUser(NewUser{
		Name:   req.Name,
		Email:  req.Email,
		Mobile: req.Mobile,
		RoleID: req.RoleID,
		Status: req.Status,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.feed.Record(r.Context(), ActorFromContext(r.Context()), "added a new user", user.Name)
	httpx.JSON(w, http.StatusCreated, h.directory.Profile(user))
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	var req userRequest
	if !httpx.Bind(w, r, &req) {
		return
	}
	current, found := h.directory.Get(id)
	if !found {
		h.respondError(w, ErrNotFound)
		return
	}
	current.Name = req.Name
	current.Email = req.Email
	current.Mobile = req.Mobile
	current.RoleID = req.RoleID
	if req.Status != "" {
		current.Status = req.Status
	}
	updated, err := h.directory.UpdateUser(current)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.directory.Profile(updated))
}

func (h *Handler) toggleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	user, err := h.directory.ToggleStatus(id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.directory.Profile(user))
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	user, found := h.directory.Get(id)
	if !found {
		h.respondError(w, ErrNotFound)
		return
	}
	if h.releaser != nil {
		h.releaser.ReleaseIdentity(r.Context(), id)
	}
	if err := h.directory.DeleteUser(id); err != nil {
		h.respondError(w, err)
		return
	}
	h.feed.Record(r.Context(), ActorFromContext(r.Context()), "removed user", user.Name)
	httpx.NoContent(w)
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	user, found := h.directory.Get(id)
	if !found {
		h.respondError(w, ErrNotFound)
		return
	}
	if err := h.resetter.EnqueuePasswordReset(r.Context(), user.ID, user.Email, user.Name); err != nil {
		h.logger.Error("enqueue password reset", slog.Any("error", err), slog.Int64("user_id", user.ID))
		httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "could not queue reset email")
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"message": "Password reset link sent to " + user.Email})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrUnknownRole):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unknown Role", err.Error())
	case errors.Is(err, ErrDuplicateEmail):
		httpx.RespondValidation(w, httpx.FieldErrors{"email": "is already in use"})
	case errors.Is(err, ErrInvalidStatus):
		httpx.RespondValidation(w, httpx.FieldErrors{"status": "must be one of: Active Disabled"})
	default:
		h.logger.Error("users request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return 0, false
	}
	return id, true
}
