package rbac

// Role is a named, reusable bundle of permissions.
type Role struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Description    string       `json:"description"`
	Permissions    []Permission `json:"permissions"`
	FinancialLimit float64      `json:"financialLimit"`
}

// Has reports whether the role lists p explicitly.
func (r Role) Has(p Permission) bool {
	for _, granted := range r.Permissions {
		if granted == p {
			return true
		}
	}
	return false
}

func (r Role) clone() Role {
	r.Permissions = append([]Permission(nil), r.Permissions...)
	return r
}

// DefaultRoles returns the built-in role set used when nothing is persisted.
func DefaultRoles() []Role {
	return []Role{
		{
			ID:             "Administrator",
			Name:           "Administrator",
			Description:    "Has full access to all system features and settings.",
			Permissions:    AllPermissions(),
			FinancialLimit: 100000,
		},
		{
			ID:          "Manager",
			Name:        "Manager",
			Description: "Can manage projects, assign jobs, and oversee team members.",
			Permissions: []Permission{
				PermUsersRead, PermUsersUpdate, PermJobsAssign, PermProjectsUpdate,
			},
			FinancialLimit: 50000,
		},
		{
			ID:          "Technician",
			Name:        "Technician",
			Description: "Field executive responsible for completing service jobs.",
			Permissions: []Permission{PermJobsAssign},
		},
		{
			ID:             "Finance",
			Name:           "Finance",
			Description:    "Manages financial transactions, approvals, and reporting.",
			Permissions:    []Permission{PermFinanceApprove, PermUsersRead},
			FinancialLimit: 25000,
		},
	}
}
