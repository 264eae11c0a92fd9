package users

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/tabdeel/pulse/internal/rbac"
)

// RoleLookup resolves role ids; *rbac.Registry satisfies it.
type RoleLookup interface {
	Role(id string) (rbac.Role, bool)
}

// Directory holds every user in insertion order.
type Directory struct {
	mu     sync.RWMutex
	users  []User
	nextID int64
	roles  RoleLookup
}

// NewDirectory builds a directory seeded with users. Seed records are taken as-is.
func NewDirectory(roles RoleLookup, seed []User) *Directory {
	d := &Directory{roles: roles, users: make([]User, 0, len(seed))}
	for _, u := range seed {
		d.users = append(d.users, u)
		if u.ID > d.nextID {
			d.nextID = u.ID
		}
	}
	return d
}

// AvatarURL returns the placeholder avatar for seed.
func AvatarURL(seed string) string {
	return "https://picsum.photos/seed/" + url.PathEscape(seed) + "/40/40"
}

// List returns every user in insertion order.
func (d *Directory) List() []User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]User(nil), d.users...)
}

// Get looks up a user by id.
func (d *Directory) Get(id int64) (User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	idx := d.indexLocked(id)
	if idx < 0 {
		return User{}, false
	}
	return d.users[idx], true
}

// FindByEmail looks up a user by case-insensitive email.
func (d *Directory) FindByEmail(email string) (User, bool) {
	email = strings.TrimSpace(email)
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, u := range d.users {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return User{}, false
}

// AddUser creates a user with a fresh id and default avatar.
func (d *Directory) AddUser(in NewUser) (User, error) {
	if _, ok := d.roles.Role(in.RoleID); !ok {
		return User{}, fmt.Errorf("%w: %q", ErrUnknownRole, in.RoleID)
	}
	if in.Status == "" {
		in.Status = StatusActive
	}
	if !in.Status.Valid() {
		return User{}, ErrInvalidStatus
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.emailTakenLocked(in.Email, 0) {
		return User{}, ErrDuplicateEmail
	}
	d.nextID++
	user := User{
		ID:        d.nextID,
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Mobile:    strings.TrimSpace(in.Mobile),
		AvatarURL: AvatarURL(fmt.Sprintf("user%d", d.nextID)),
		RoleID:    in.RoleID,
		Status:    in.Status,
	}
	d.users = append(d.users, user)
	return user, nil
}

// UpdateUser replaces the record sharing user.ID. An empty avatar or password
// hash keeps the stored value.
func (d *Directory) UpdateUser(user User) (User, error) {
	if _, ok := d.roles.Role(user.RoleID); !ok {
		return User{}, fmt.Errorf("%w: %q", ErrUnknownRole, user.RoleID)
	}
	if !user.Status.Valid() {
		return User{}, ErrInvalidStatus
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	idx := d.indexLocked(user.ID)
	if idx < 0 {
		return User{}, ErrNotFound
	}
	if d.emailTakenLocked(user.Email, user.ID) {
		return User{}, ErrDuplicateEmail
	}
	current := d.users[idx]
	if user.AvatarURL == "" {
		user.AvatarURL = current.AvatarURL
	}
	if user.PasswordHash == "" {
		user.PasswordHash = current.PasswordHash
	}
	d.users[idx] = user
	return user, nil
}

// DeleteUser removes a user.
func (d *Directory) DeleteUser(id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	idx := d.indexLocked(id)
	if idx < 0 {
		return ErrNotFound
	}
	d.users = append(d.users[:idx], d.users[idx+1:]...)
	return nil
}

// ToggleStatus flips a user between Active and Disabled.
func (d *Directory) ToggleStatus(id int64) (User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	idx := d.indexLocked(id)
	if idx < 0 {
		return User{}, ErrNotFound
	}
	if d.users[idx].Status == StatusActive {
		d.users[idx].Status = StatusDisabled
	} else {
		d.users[idx].Status = StatusActive
	}
	return d.users[idx], nil
}

// SetPassword stores a new password hash for the user.
func (d *Directory) SetPassword(id int64, hash string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	idx := d.indexLocked(id)
	if idx < 0 {
		return ErrNotFound
	}
	d.users[idx].PasswordHash = hash
	return nil
}

// Profile joins user with its role as it is right now. A user whose role no
// longer exists gets no permissions and a zero limit.
func (d *Directory) Profile(user User) Profile {
	role, ok := d.roles.Role(user.RoleID)
	if !ok {
		return Profile{User: user, Permissions: []rbac.Permission{}, Orphaned: true}
	}
	return Profile{
		User:           user,
		RoleName:       role.Name,
		Permissions:    role.Permissions,
		FinancialLimit: role.FinancialLimit,
	}
}

// ProfileByID resolves a user id into a Profile.
func (d *Directory) ProfileByID(id int64) (Profile, bool) {
	user, ok := d.Get(id)
	if !ok {
		return Profile{}, false
	}
	return d.Profile(user), true
}

func (d *Directory) indexLocked(id int64) int {
	for i, u := range d.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func (d *Directory) emailTakenLocked(email string, except int64) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	for _, u := range d.users {
		if u.ID != except && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}
