package models

import (
	"slices"
	"time"
)

// Identity is the decoded content of an accepted bearer token.
type Identity struct {
	UserID    int64
	Subject   string
	Roles     []Role
	ExpiresAt time.Time
}

// HasRole reports false for a nil identity.
func (i *Identity) HasRole(role Role) bool {
	if i == nil {
		return false
	}
	return slices.Contains(i.Roles, role)
}
