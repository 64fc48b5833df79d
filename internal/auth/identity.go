// Package auth holds the caller-identity model, the role set, and the
// authorization decisions shared by middleware and handlers.
package auth

// Role is one of a closed enumeration of caller roles.
type Role string

const (
	RoleUser    Role = "user"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// Identity is the request-scoped projection of verified token claims.
// It is attached once per request by the authentication middleware and
// read-only thereafter; it is never persisted.
type Identity struct {
	ID       string
	Username string
	Email    string
	Role     Role
}
