package rbac

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type denialCounter struct {
	labels []string
}

func (d *denialCounter) RecordDenial(perms string) {
	d.labels = append(d.labels, perms)
}

func newRoleRouter(t *testing.T, gate *Gate) (http.Handler, *Registry, *denialCounter) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := NewRegistry(NewMemoryStore(), logger, nil)
	denials := &denialCounter{}
	handler := NewHandler(logger, reg, Middleware{Logger: logger, Denials: denials})

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if gate != nil {
				req = req.WithContext(ContextWithGate(req.Context(), *gate))
			}
			next.ServeHTTP(w, req)
		})
	})
	handler.MountRoutes(r)
	return r, reg, denials
}

func adminGate() *Gate {
	g := NewGate([]Permission{PermSystemAdmin})
	return &g
}

func TestHandlerCreateRole(t *testing.T) {
	router, reg, _ := newRoleRouter(t, adminGate())

	body := `{"name":"Field Supervisor","description":"Leads crews","permissions":["jobs:assign","projects:update"]}`
	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/roles", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, res.Code)
	var role Role
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &role))
	assert.Equal(t, "field-supervisor", role.ID)
	assert.True(t, reg.Exists("field-supervisor"))
}

func TestHandlerCreateRoleValidation(t *testing.T) {
	router, reg, _ := newRoleRouter(t, adminGate())

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/roles", strings.NewReader(`{"name":""}`)))
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), `"name":"is required"`)

	res = httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/roles", strings.NewReader(`{"name":"X","permissions":["reports:export"]}`)))
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "permissions")
	assert.Len(t, reg.ListRoles(), 4)
}

func TestHandlerUpdatePermissionsUnknownRole(t *testing.T) {
	router, _, _ := newRoleRouter(t, adminGate())

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodPut, "/roles/ghost/permissions", strings.NewReader(`{"permissions":["users:read"]}`)))
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestHandlerUpdateRoleLimit(t *testing.T) {
	router, reg, _ := newRoleRouter(t, adminGate())

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodPut, "/roles/Finance", strings.NewReader(`{"name":"Finance","financialLimit":40000}`)))
	require.Equal(t, http.StatusOK, res.Code)

	finance, _ := reg.Role("Finance")
	assert.Equal(t, 40000.0, finance.FinancialLimit)
	assert.Equal(t, []Permission{PermFinanceApprove, PermUsersRead}, finance.Permissions)
}

func TestHandlerDeniesWithoutRolesManage(t *testing.T) {
	gate := NewGate([]Permission{PermUsersRead})
	router, _, denials := newRoleRouter(t, &gate)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/roles", nil))
	assert.Equal(t, http.StatusOK, res.Code)

	res = httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/roles", strings.NewReader(`{"name":"X"}`)))
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Equal(t, []string{"roles:manage"}, denials.labels)
}

func TestHandlerRequiresSignIn(t *testing.T) {
	router, _, _ := newRoleRouter(t, nil)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/permissions", nil))
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestHandlerListPermissions(t *testing.T) {
	router, _, _ := newRoleRouter(t, adminGate())

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/permissions", nil).WithContext(context.Background()))
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		Permissions []PermissionInfo `json:"permissions"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	assert.Len(t, payload.Permissions, len(AllPermissions()))
	assert.Equal(t, "Reset User Passwords", payload.Permissions[4].Label)
}
