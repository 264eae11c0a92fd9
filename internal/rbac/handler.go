package rbac

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tabdeel/pulse/internal/platform/httpx"
)

// Handler exposes the role registry and permission catalog.
type Handler struct {
	logger   *slog.Logger
	registry *Registry
	rbac     Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, registry *Registry, rbac Middleware) *Handler {
	return &Handler{logger: logger, registry: registry, rbac: rbac}
}

// MountRoutes registers role and permission routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		// The user editor needs the role list to populate its picker.
		r.Use(h.rbac.RequireAny(PermRolesManage, PermUsersRead, PermUsersCreate, PermUsersUpdate))
		r.Get("/roles", h.listRoles)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(PermRolesManage))
		r.Get("/permissions", h.listPermissions)
		r.Post("/roles", h.createRole)
		r.Put("/roles/{id}", h.updateRole)
		r.Put("/roles/{id}/permissions", h.updatePermissions)
	})
}

type createRoleRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

type updateRoleRequest struct {
	Name           string  `json:"name" validate:"required"`
	Description    string  `json:"description"`
	FinancialLimit float64 `json:"financialLimit" validate:"gte=0"`
}

type updatePermissionsRequest struct {
	Permissions []string `json:"permissions" validate:"required"`
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": h.registry.ListRoles()})
}

func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"permissions": Catalog()})
}

func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if !httpx.Bind(w, r, &req) {
		return
	}
	perms, err := ParsePermissions(req.Permissions)
	if err != nil {
		httpx.RespondValidation(w, httpx.FieldErrors{"permissions": err.Error()})
		return
	}
	role, err := h.registry.CreateRole(r.Context(), req.Name, req.Description, perms)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.logger.Info("role created", slog.String("role", role.ID))
	httpx.JSON(w, http.StatusCreated, role)
}

func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	var req updateRoleRequest
	if !httpx.Bind(w, r, &req) {
		return
	}
	role, err := h.registry.UpdateRole(r.Context(), chi.URLParam(r, "id"), req.Name, req.Description, req.FinancialLimit)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}

func (h *Handler) updatePermissions(w http.ResponseWriter, r *http.Request) {
	var req updatePermissionsRequest
	if !httpx.Bind(w, r, &req) {
		return
	}
	perms, err := ParsePermissions(req.Permissions)
	if err != nil {
		httpx.RespondValidation(w, httpx.FieldErrors{"permissions": err.Error()})
		return
	}
	role, err := h.registry.UpdateRolePermissions(r.Context(), chi.URLParam(r, "id"), perms)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.logger.Info("role permissions updated", slog.String("role", role.ID), slog.Int("count", len(role.Permissions)))
	httpx.JSON(w, http.StatusOK, role)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrRoleNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrRoleNameRequired):
		httpx.RespondValidation(w, httpx.FieldErrors{"name": "is required"})
	case errors.Is(err, ErrInvalidLimit):
		httpx.RespondValidation(w, httpx.FieldErrors{"financialLimit": "must be at least 0"})
	case errors.Is(err, ErrUnknownPermission):
		httpx.RespondValidation(w, httpx.FieldErrors{"permissions": err.Error()})
	default:
		h.logger.Error("rbac request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
