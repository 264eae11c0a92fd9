package rbac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	// ErrRoleNotFound indicates that no role has the requested id.
	ErrRoleNotFound = errors.New("rbac: role not found")
	// ErrRoleNameRequired is returned when creating or renaming a role without a name.
	ErrRoleNameRequired = errors.New("rbac: role name required")
	// ErrInvalidLimit is returned for a negative financial limit.
	ErrInvalidLimit = errors.New("rbac: financial limit must not be negative")
)

const saveTimeout = 3 * time.Second

var whitespace = regexp.MustCompile(`\s+`)

// Registry owns the set of roles and writes through to a Store on every mutation.
type Registry struct {
	mu       sync.RWMutex
	roles    []Role
	index    map[string]int
	defaults []Role
	store    Store
	logger   *slog.Logger

	version   uint64
	saveMu    sync.Mutex
	savedUpTo uint64
}

// NewRegistry constructs a registry holding defaults. Load swaps in the persisted
// snapshot when one exists. A nil defaults slice selects DefaultRoles.
func NewRegistry(store Store, logger *slog.Logger, defaults []Role) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if defaults == nil {
		defaults = DefaultRoles()
	}
	r := &Registry{store: store, logger: logger, defaults: defaults}
	r.replace(defaults)
	return r
}

// Load reads the persisted snapshot once. A missing or corrupt snapshot leaves the
// built-in defaults in place.
func (r *Registry) Load(ctx context.Context) {
	if r.store == nil {
		return
	}
	data, err := r.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoSnapshot) {
			r.logger.Warn("rbac load roles", slog.Any("error", err))
		}
		r.replaceLocked(r.defaults)
		return
	}
	roles, err := Unmarshal(data)
	if err != nil {
		r.logger.Warn("rbac parse roles, using defaults", slog.Any("error", err))
		r.replaceLocked(r.defaults)
		return
	}
	r.replaceLocked(roles)
}

// ListRoles returns every role in insertion order.
func (r *Registry) ListRoles() []Role {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Role, len(r.roles))
	for i, role := range r.roles {
		out[i] = role.clone()
	}
	return out
}

// Role looks up a role by id.
func (r *Registry) Role(id string) (Role, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.index[id]
	if !ok {
		return Role{}, false
	}
	return r.roles[idx].clone(), true
}

// Exists reports whether id names a role.
func (r *Registry) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.index[id]
	return ok
}

// CreateRole appends a new role with an id derived from its name.
func (r *Registry) CreateRole(ctx context.Context, name, description string, perms []Permission) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, ErrRoleNameRequired
	}
	for _, p := range perms {
		if !p.Valid() {
			return Role{}, fmt.Errorf("%w: %q", ErrUnknownPermission, string(p))
		}
	}

	r.mu.Lock()
	role := Role{
		ID:          r.uniqueIDLocked(slugify(name)),
		Name:        name,
		Description: strings.TrimSpace(description),
		Permissions: Normalize(perms),
	}
	r.roles = append(r.roles, role)
	r.index[role.ID] = len(r.roles) - 1
	snapshot, version := r.snapshotLocked()
	r.mu.Unlock()

	r.persist(ctx, snapshot, version)
	return role.clone(), nil
}

// UpdateRolePermissions replaces the full permission set of a role.
func (r *Registry) UpdateRolePermissions(ctx context.Context, roleID string, perms []Permission) (Role, error) {
	for _, p := range perms {
		if !p.Valid() {
			return Role{}, fmt.Errorf("%w: %q", ErrUnknownPermission, string(p))
		}
	}

	r.mu.Lock()
	idx, ok := r.index[roleID]
	if !ok {
		r.mu.Unlock()
		return Role{}, ErrRoleNotFound
	}
	r.roles[idx].Permissions = Normalize(perms)
	updated := r.roles[idx].clone()
	snapshot, version := r.snapshotLocked()
	r.mu.Unlock()

	r.persist(ctx, snapshot, version)
	return updated, nil
}

// UpdateRole edits the descriptive fields and the financial limit of a role.
func (r *Registry) UpdateRole(ctx context.Context, roleID, name, description string, financialLimit float64) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, ErrRoleNameRequired
	}
	if financialLimit < 0 {
		return Role{}, ErrInvalidLimit
	}

	r.mu.Lock()
	idx, ok := r.index[roleID]
	if !ok {
		r.mu.Unlock()
		return Role{}, ErrRoleNotFound
	}
	r.roles[idx].Name = name
	r.roles[idx].Description = strings.TrimSpace(description)
	r.roles[idx].FinancialLimit = financialLimit
	updated := r.roles[idx].clone()
	snapshot, version := r.snapshotLocked()
	r.mu.Unlock()

	r.persist(ctx, snapshot, version)
	return updated, nil
}

// Snapshot serialises the current registry.
func (r *Registry) Snapshot() ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Marshal(r.roles)
}

// persist writes snapshots in mutation order; a snapshot older than the last
// saved one is dropped.
func (r *Registry) persist(ctx context.Context, snapshot []Role, version uint64) {
	if r.store == nil {
		return
	}
	r.saveMu.Lock()
	defer r.saveMu.Unlock()
	if version <= r.savedUpTo {
		return
	}
	data, err := Marshal(snapshot)
	if err != nil {
		r.logger.Error("rbac marshal roles", slog.Any("error", err))
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()
	if err := r.store.Save(ctx, data); err != nil {
		r.logger.Error("rbac save roles", slog.Any("error", err))
		return
	}
	r.savedUpTo = version
}

func (r *Registry) snapshotLocked() ([]Role, uint64) {
	r.version++
	out := make([]Role, len(r.roles))
	for i, role := range r.roles {
		out[i] = role.clone()
	}
	return out, r.version
}

func (r *Registry) replaceLocked(roles []Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replace(roles)
}

func (r *Registry) replace(roles []Role) {
	r.roles = make([]Role, 0, len(roles))
	r.index = make(map[string]int, len(roles))
	for _, role := range roles {
		if _, dup := r.index[role.ID]; dup || role.ID == "" {
			continue
		}
		r.roles = append(r.roles, role.clone())
		r.index[role.ID] = len(r.roles) - 1
	}
}

func (r *Registry) uniqueIDLocked(base string) string {
	if base == "" {
		base = "role"
	}
	id := base
	for n := 2; ; n++ {
		if _, taken := r.index[id]; !taken {
			return id
		}
		id = base + "-" + strconv.Itoa(n)
	}
}

func slugify(name string) string {
	return strings.ToLower(whitespace.ReplaceAllString(strings.TrimSpace(name), "-"))
}
