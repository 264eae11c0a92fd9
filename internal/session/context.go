// Package session tracks who is signed in and whom they are viewing as.
package session

// Context is the identity pair of one signed-in session. Original is the
// identity that authenticated; Active is the identity the caller acts as.
// Outside of impersonation the two are equal. The zero value is signed out.
type Context struct {
	original int64
	active   int64
}

// Restore rebuilds a Context from stored ids. A pair without an original, or
// with only one half set, is treated as signed out or not impersonating.
func Restore(original, active int64) Context {
	if original == 0 {
		return Context{}
	}
	if active == 0 {
		active = original
	}
	return Context{original: original, active: active}
}

// SignedIn returns a Context for a fresh login.
func SignedIn(userID int64) Context {
	return Context{original: userID, active: userID}
}

// Authenticated reports whether an identity is signed in.
func (c Context) Authenticated() bool {
	return c.original != 0
}

// Original returns the authenticated user id, zero when signed out.
func (c Context) Original() int64 {
	return c.original
}

// Active returns the id the caller currently acts as, zero when signed out.
func (c Context) Active() int64 {
	return c.active
}

// Impersonating reports whether the active identity differs from the original.
func (c Context) Impersonating() bool {
	return c.Authenticated() && c.active != c.original
}

// SwitchUser makes target the active identity. It is a no-op while already
// impersonating, when signed out, or when exists reports the target missing.
// It returns whether the switch happened.
func (c *Context) SwitchUser(target int64, exists func(int64) bool) bool {
	if !c.Authenticated() || c.Impersonating() {
		return false
	}
	if target == c.active || exists == nil || !exists(target) {
		return false
	}
	c.active = target
	return true
}

// ReturnToOriginal makes the original identity active again.
func (c *Context) ReturnToOriginal() {
	c.active = c.original
}

// Logout clears both identities.
func (c *Context) Logout() {
	c.original = 0
	c.active = 0
}
