package domain

import "errors"

// Role is the role claim carried inside access tokens. The core only
// distinguishes club administrators from end users.
type Role string

const (
	RoleAdmin Role = "ROLE_ADMIN"
	RoleUser  Role = "ROLE_USER"
)

// ErrUnknownRole reports a role claim value outside the known set.
var ErrUnknownRole = errors.New("domain: unknown role")

// ParseRole validates s as a role claim value.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleUser:
		return Role(s), nil
	default:
		return "", ErrUnknownRole
	}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// String returns the claim value form.
func (r Role) String() string { return string(r) }

// Principal is the authenticated identity a token represents. The id is
// opaque to the token core: admins use their username, users their
// email. The core never inspects it.
type Principal struct {
	ID   string
	Role Role
}
