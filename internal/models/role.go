package models

// Role is the closed set of principals known to the service. Authorization
// decisions branch on these constants at the API boundary only, never on raw
// strings inside core logic.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleVoter Role = "voter"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleVoter
}

// Identity is the authenticated principal extracted from a verified token.
// Credential checks happen outside this service; handlers only ever see an
// Identity that already passed verification.
type Identity struct {
	UserID uint
	Role   Role
}
