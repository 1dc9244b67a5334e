package models

// Admin roles
const (
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// AdminStatusActive is the only status that may authenticate.
const AdminStatusActive = "active"

// Admin is an administrator account. The whole collection is stored as a
// single array under SYSTEM_ADMINS. Passwords are stored and compared in
// plain text; the admin surface assumes a trusted single-tenant deployment.
type Admin struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	Password  string  `json:"password,omitempty"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"createdAt"`
	LastLogin *string `json:"lastLogin"`
}

// Safe returns a copy with the password cleared, for API responses.
func (a Admin) Safe() Admin {
	a.Password = ""
	return a
}

// AdminPatch carries a partial admin update. Nil fields are left untouched.
type AdminPatch struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	Email    *string `json:"email"`
	Role     *string `json:"role"`
	Status   *string `json:"status"`
}

// MergeAdmin applies the supplied patch fields onto a copy of the existing
// admin, preserving the identifier.
func MergeAdmin(existing *Admin, patch *AdminPatch) *Admin {
	merged := *existing
	if patch.Username != nil {
		merged.Username = *patch.Username
	}
	if patch.Password != nil {
		merged.Password = *patch.Password
	}
	if patch.Email != nil {
		merged.Email = *patch.Email
	}
	if patch.Role != nil {
		merged.Role = *patch.Role
	}
	if patch.Status != nil {
		merged.Status = *patch.Status
	}
	merged.ID = existing.ID
	return &merged
}
