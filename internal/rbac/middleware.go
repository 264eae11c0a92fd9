package rbac

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/tabdeel/pulse/internal/platform/httpx"
)

// DenialRecorder receives authorization denials, typically a metrics counter.
type DenialRecorder interface {
	RecordDenial(permissions string)
}

// Middleware wires gate checks into HTTP handlers.
type Middleware struct {
	Logger  *slog.Logger
	Denials DenialRecorder
}

// RequireAny ensures the active user holds at least one of perms.
func (m Middleware) RequireAny(perms ...Permission) func(http.Handler) http.Handler {
	return m.require(perms, func(g Gate) bool { return g.HasAny(perms...) })
}

// RequireAll ensures the active user holds every one of perms.
func (m Middleware) RequireAll(perms ...Permission) func(http.Handler) http.Handler {
	return m.require(perms, func(g Gate) bool { return g.HasAll(perms...) })
}

// RequireAuthenticated rejects requests without an active user.
func (m Middleware) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !GateFromContext(r.Context()).Authenticated() {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m Middleware) require(perms []Permission, allowed func(Gate) bool) func(http.Handler) http.Handler {
	label := joinPermissions(perms)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gate := GateFromContext(r.Context())
			if !gate.Authenticated() {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
				return
			}
			if allowed(gate) {
				next.ServeHTTP(w, r)
				return
			}
			if m.Logger != nil {
				m.Logger.Warn("rbac denied", slog.String("path", r.URL.Path), slog.String("required", label))
			}
			if m.Denials != nil {
				m.Denials.RecordDenial(label)
			}
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "missing permission "+label)
		})
	}
}

func joinPermissions(perms []Permission) string {
	parts := make([]string, len(perms))
	for i, p := range perms {
		parts[i] = string(p)
	}
	return strings.Join(parts, ",")
}
