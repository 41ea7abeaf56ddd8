package domain

import (
	"strings"
	"time"
)

const (
	RoleAdmin    = "admin"
	RoleReporter = "reporter"
)

// User models an authenticated actor in the system.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether any of the user's roles is the admin role,
// compared case-insensitively.
func (u *User) IsAdmin() bool {
	if u == nil {
		return false
	}
	return HasAdminRole(u.Roles)
}

// HasAdminRole reports whether roles contains "admin" in any letter case.
func HasAdminRole(roles []string) bool {
	for _, r := range roles {
		if strings.EqualFold(strings.TrimSpace(r), RoleAdmin) {
			return true
		}
	}
	return false
}
