package model

import "errors"

// ErrInvalidRole is returned for roles outside the closed set.
var ErrInvalidRole = errors.New("invalid role")

// Role is the coarse role carried by an authenticated principal.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole maps a claim value onto the closed set of roles.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleUser, RoleAdmin:
		return r, nil
	}
	return "", ErrInvalidRole
}

// Principal is the authenticated caller of an operation.
type Principal struct {
	UserID UserID `json:"user_id"`
	Role   Role   `json:"role"`
}

// Elevated reports whether the principal holds the administrative role.
func (p Principal) Elevated() bool {
	return p.Role == RoleAdmin
}
