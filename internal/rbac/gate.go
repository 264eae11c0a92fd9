package rbac

import "context"

// Gate answers permission checks for one active identity. It is advisory: it
// decides which actions are offered to the caller and carries no proof of identity.
type Gate struct {
	active  bool
	granted map[Permission]struct{}
}

// NewGate builds a gate for an active identity holding perms.
func NewGate(perms []Permission) Gate {
	granted := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		granted[p] = struct{}{}
	}
	return Gate{active: true, granted: granted}
}

// HasPermission reports whether the active identity may perform p.
func (g Gate) HasPermission(p Permission) bool {
	if !g.active {
		return false
	}
	if _, ok := g.granted[PermSystemAdmin]; ok {
		return true
	}
	_, ok := g.granted[p]
	return ok
}

// HasAny reports whether any of perms is granted. An empty list is always satisfied.
func (g Gate) HasAny(perms ...Permission) bool {
	if len(perms) == 0 {
		return true
	}
	for _, p := range perms {
		if g.HasPermission(p) {
			return true
		}
	}
	return false
}

// HasAll reports whether every one of perms is granted.
func (g Gate) HasAll(perms ...Permission) bool {
	for _, p := range perms {
		if !g.HasPermission(p) {
			return false
		}
	}
	return true
}

// Authenticated reports whether the gate was built for an identity.
func (g Gate) Authenticated() bool {
	return g.active
}

type gateContextKey struct{}

// ContextWithGate stores the gate in context.
func ContextWithGate(ctx context.Context, g Gate) context.Context {
	return context.WithValue(ctx, gateContextKey{}, g)
}

// GateFromContext returns the request gate; the zero Gate denies everything.
func GateFromContext(ctx context.Context) Gate {
	g, _ := ctx.Value(gateContextKey{}).(Gate)
	return g
}
