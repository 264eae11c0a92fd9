package rbac

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownPermission is returned when a tag is outside the permission vocabulary.
var ErrUnknownPermission = errors.New("rbac: unknown permission")

// Permission is an atomic capability tag.
type Permission string

const (
	PermUsersCreate        Permission = "users:create"
	PermUsersRead          Permission = "users:read"
	PermUsersUpdate        Permission = "users:update"
	PermUsersDelete        Permission = "users:delete"
	PermUsersResetPassword Permission = "users:reset_password"
	PermFinanceApprove     Permission = "finance:approve"
	PermJobsAssign         Permission = "jobs:assign"
	PermRolesManage        Permission = "roles:manage"
	PermProjectsCreate     Permission = "projects:create"
	PermProjectsUpdate     Permission = "projects:update"
	PermProjectsDelete     Permission = "projects:delete"
	PermAccountsCreate     Permission = "accounts:create"
	PermAccountsUpdate     Permission = "accounts:update"
	PermAccountsDelete     Permission = "accounts:delete"

	// PermSystemAdmin satisfies every permission check.
	PermSystemAdmin Permission = "system:admin"
)

// PermissionInfo describes a permission for the role editor.
type PermissionInfo struct {
	ID          Permission `json:"id"`
	Label       string     `json:"label"`
	Description string     `json:"description"`
}

var catalog = []PermissionInfo{
	{ID: PermUsersCreate, Label: "Create Users", Description: "Can add new users to the system."},
	{ID: PermUsersRead, Label: "Read Users", Description: "Can view user lists and profiles."},
	{ID: PermUsersUpdate, Label: "Update Users", Description: "Can edit user details and roles."},
	{ID: PermUsersDelete, Label: "Delete Users", Description: "Can remove users from the system."},
	{ID: PermUsersResetPassword, Label: "Reset User Passwords", Description: "Can send password reset links to users."},
	{ID: PermFinanceApprove, Label: "Approve Finance", Description: "Can approve or reject financial transactions."},
	{ID: PermJobsAssign, Label: "Assign Jobs", Description: "Can assign service jobs to technicians."},
	{ID: PermRolesManage, Label: "Manage Roles", Description: "Can create roles and edit role permissions."},
	{ID: PermProjectsCreate, Label: "Create Projects", Description: "Can create new projects."},
	{ID: PermProjectsUpdate, Label: "Update Projects", Description: "Can edit existing project details."},
	{ID: PermProjectsDelete, Label: "Delete Projects", Description: "Can delete projects."},
	{ID: PermAccountsCreate, Label: "Create Account Heads", Description: "Can add new account heads."},
	{ID: PermAccountsUpdate, Label: "Update Account Heads", Description: "Can edit existing account heads."},
	{ID: PermAccountsDelete, Label: "Delete Account Heads", Description: "Can delete account heads."},
	{ID: PermSystemAdmin, Label: "System Admin", Description: "Full access to all system settings."},
}

var known = func() map[Permission]struct{} {
	m := make(map[Permission]struct{}, len(catalog))
	for _, info := range catalog {
		m[info.ID] = struct{}{}
	}
	return m
}()

// Catalog lists every permission in display order.
func Catalog() []PermissionInfo {
	out := make([]PermissionInfo, len(catalog))
	copy(out, catalog)
	return out
}

// AllPermissions returns every permission tag in display order.
func AllPermissions() []Permission {
	out := make([]Permission, 0, len(catalog))
	for _, info := range catalog {
		out = append(out, info.ID)
	}
	return out
}

// Valid reports whether p belongs to the vocabulary.
func (p Permission) Valid() bool {
	_, ok := known[p]
	return ok
}

func (p Permission) String() string {
	return string(p)
}

// ParsePermission converts a raw tag into a Permission.
func ParsePermission(raw string) (Permission, error) {
	p := Permission(raw)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPermission, raw)
	}
	return p, nil
}

// UnmarshalJSON rejects tags outside the vocabulary.
func (p *Permission) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParsePermission(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Normalize drops duplicates while keeping first-seen order.
func Normalize(perms []Permission) []Permission {
	seen := make(map[Permission]struct{}, len(perms))
	out := make([]Permission, 0, len(perms))
	for _, p := range perms {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// ParsePermissions converts raw tags, failing on the first unknown one.
func ParsePermissions(raw []string) ([]Permission, error) {
	out := make([]Permission, 0, len(raw))
	for _, tag := range raw {
		p, err := ParsePermission(tag)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
