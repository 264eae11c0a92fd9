package session

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/tabdeel/pulse/internal/rbac"
	"github.com/tabdeel/pulse/internal/shared"
	"github.com/tabdeel/pulse/internal/users"
)

// SwitchRecorder counts identity switches, typically a metrics counter.
type SwitchRecorder interface {
	RecordSwitch(impersonating bool)
}

// Manager resolves the stored identity pair against the directory on every
// request and exposes the mutators to handlers.
type Manager struct {
	directory *users.Directory
	logger    *slog.Logger
	switches  SwitchRecorder
}

// NewManager constructs a Manager. switches may be nil.
func NewManager(directory *users.Directory, logger *slog.Logger, switches SwitchRecorder) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{directory: directory, logger: logger, switches: switches}
}

// State is the resolved identity pair of a request.
type State struct {
	Context  Context
	Original users.Profile
	Active   users.Profile
}

// Authenticated reports whether the state has a signed-in user.
func (s State) Authenticated() bool {
	return s.Context.Authenticated()
}

type stateContextKey struct{}

// StateFromContext returns the resolved state of the request.
func StateFromContext(ctx context.Context) State {
	st, _ := ctx.Value(stateContextKey{}).(State)
	return st
}

// Middleware resolves the session identity, builds the request gate and stores
// both in the request context. It expects shared.Session in context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		st := m.Resolve(sess)
		next.ServeHTTP(w, r.WithContext(m.withState(r.Context(), st)))
	})
}

// Resolve loads the identity pair from sess and reconciles it with the
// directory: a missing or disabled original signs the session out, and a
// missing or disabled active identity falls back to the original.
func (m *Manager) Resolve(sess *shared.Session) State {
	if sess == nil {
		return State{}
	}
	c := Restore(sess.Identity())
	if !c.Authenticated() {
		return State{}
	}

	original, ok := m.directory.ProfileByID(c.Original())
	if !ok || original.Status == users.StatusDisabled {
		m.logger.Info("session original identity gone, signing out", slog.Int64("user_id", c.Original()))
		c.Logout()
		m.store(sess, c)
		return State{}
	}

	active, ok := m.directory.ProfileByID(c.Active())
	if !ok || active.Status == users.StatusDisabled {
		m.logger.Info("impersonated user gone, returning to original", slog.Int64("user_id", c.Active()))
		c.ReturnToOriginal()
		active = original
	}
	m.store(sess, c)
	return State{Context: c, Original: original, Active: active}
}

// Login signs userID in on sess.
func (m *Manager) Login(sess *shared.Session, userID int64) {
	m.store(sess, SignedIn(userID))
}

// Logout clears both identities from sess.
func (m *Manager) Logout(sess *shared.Session) {
	if sess == nil {
		return
	}
	c := Restore(sess.Identity())
	c.Logout()
	m.store(sess, c)
}

// SwitchUser switches the active identity of sess to target and returns the
// resolved state. Switching while impersonating, or to an unknown or Disabled
// user, leaves the state unchanged.
func (m *Manager) SwitchUser(sess *shared.Session, target int64) State {
	if sess == nil {
		return State{}
	}
	c := Restore(sess.Identity())
	if c.SwitchUser(target, m.exists) {
		m.store(sess, c)
		if m.switches != nil {
			m.switches.RecordSwitch(true)
		}
		m.logger.Info("session switched user", slog.Int64("original", c.Original()), slog.Int64("active", c.Active()))
	}
	return m.Resolve(sess)
}

// ReturnToOriginal restores the original identity of sess.
func (m *Manager) ReturnToOriginal(sess *shared.Session) State {
	if sess == nil {
		return State{}
	}
	c := Restore(sess.Identity())
	if c.Impersonating() && m.switches != nil {
		m.switches.RecordSwitch(false)
	}
	c.ReturnToOriginal()
	m.store(sess, c)
	return m.Resolve(sess)
}

// ReleaseIdentity returns the caller's session to its original identity when
// userID is the one being impersonated.
func (m *Manager) ReleaseIdentity(ctx context.Context, userID int64) {
	sess := shared.SessionFromContext(ctx)
	if sess == nil {
		return
	}
	c := Restore(sess.Identity())
	if c.Impersonating() && c.Active() == userID {
		c.ReturnToOriginal()
		m.store(sess, c)
	}
}

func (m *Manager) withState(ctx context.Context, st State) context.Context {
	ctx = context.WithValue(ctx, stateContextKey{}, st)
	if !st.Authenticated() {
		return ctx
	}
	ctx = users.ContextWithProfile(ctx, st.Active)
	return rbac.ContextWithGate(ctx, st.Active.Gate())
}

// exists admits switch targets: known users that are not Disabled.
func (m *Manager) exists(id int64) bool {
	u, ok := m.directory.Get(id)
	return ok && u.Status != users.StatusDisabled
}

func (m *Manager) store(sess *shared.Session, c Context) {
	if sess == nil {
		return
	}
	sess.SetIdentity(c.Original(), c.Active())
}
