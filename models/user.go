package models

import "slices"

type Role string

const (
	RoleClient Role = "ROLE_CLIENT"
	RoleAdmin  Role = "ROLE_ADMIN"
)

// User is owned by the external identity store and is read-only here.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Roles []Role `json:"roles"`
}

func (u User) HasRole(role Role) bool {
	return slices.Contains(u.Roles, role)
}
