package users

import (
	"errors"

	"github.com/tabdeel/pulse/internal/rbac"
)

var (
	// ErrNotFound indicates that no user has the requested id.
	ErrNotFound = errors.New("users: not found")
	// ErrUnknownRole is returned when a user references a role missing from the registry.
	ErrUnknownRole = errors.New("users: unknown role")
	// ErrDuplicateEmail is returned when another user already owns the email.
	ErrDuplicateEmail = errors.New("users: email already in use")
	// ErrInvalidStatus is returned for a status outside Active/Disabled.
	ErrInvalidStatus = errors.New("users: invalid status")
)

// Status is the account state of a user.
type Status string

const (
	StatusActive   Status = "Active"
	StatusDisabled Status = "Disabled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusDisabled
}

// User is a directory record. Permissions are never stored on the user; they
// come from the referenced role at read time.
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Mobile       string `json:"mobile,omitempty"`
	AvatarURL    string `json:"avatarUrl"`
	RoleID       string `json:"roleId"`
	Status       Status `json:"status"`
	PasswordHash string `json:"-"`
}

// NewUser carries the fields accepted by AddUser.
type NewUser struct {
	Name   string
	Email  string
	Mobile string
	RoleID string
	Status Status
}

// Profile is a user joined with its current role.
type Profile struct {
	User
	RoleName       string            `json:"roleName,omitempty"`
	Permissions    []rbac.Permission `json:"permissions"`
	FinancialLimit float64           `json:"financialLimit"`
	Orphaned       bool              `json:"orphaned,omitempty"`
}

// Gate builds an authorization gate from the profile's effective permissions.
func (p Profile) Gate() rbac.Gate {
	return rbac.NewGate(p.Permissions)
}
