package auth

// Roles conocidos del sistema.
const (
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"
	RolePatient = "patient"
)

// Claims representa la identidad extraída del token.
type Claims struct {
	UserID string
	Name   string
	Email  string
	Role   string
}

// IsAdmin indica si la identidad tiene rol de administrador.
func (c Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}
