package model

// Role is the access-level tag of a staff account.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleHR    Role = "hr"
)

// Valid reports whether r is a known staff role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleHR
}

// SessionContext identifies the signed-in staff member for dashboard handlers.
type SessionContext struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
