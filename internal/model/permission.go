package model

import (
	"errors"
	"time"
)

// ErrInvalidPermission is returned for permission levels outside the closed set.
var ErrInvalidPermission = errors.New("invalid permission level")

// PermissionLevel is one of a flat set of grant levels. Levels do not imply
// each other; see service.AccessResolver for how they are evaluated.
type PermissionLevel string

const (
	PermissionRead   PermissionLevel = "read"
	PermissionWrite  PermissionLevel = "write"
	PermissionDelete PermissionLevel = "delete"
	PermissionAdmin  PermissionLevel = "admin"
)

// ParsePermissionLevel maps user input onto the closed set of levels.
func ParsePermissionLevel(s string) (PermissionLevel, error) {
	switch l := PermissionLevel(s); l {
	case PermissionRead, PermissionWrite, PermissionDelete, PermissionAdmin:
		return l, nil
	}
	return "", ErrInvalidPermission
}

// PermissionGrant gives a user access to a document independently of ownership.
// There is at most one grant per (DocumentID, UserID) pair.
type PermissionGrant struct {
	ID         string          `json:"id"`
	DocumentID DocumentID      `json:"document_id"`
	UserID     UserID          `json:"user_id"`
	Level      PermissionLevel `json:"permission"`
	GrantedBy  UserID          `json:"granted_by"`
	GrantedAt  time.Time       `json:"granted_at"`
}
