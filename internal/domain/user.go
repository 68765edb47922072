package domain

import (
	"strings"
	"time"
)

// Role determines what a user is allowed to do on the board.
type Role string

const (
	RoleJobseeker Role = "jobseeker"
	RoleEmployer  Role = "employer"
)

// ParseRole normalizes raw input into a known role.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleJobseeker:
		return RoleJobseeker, true
	case RoleEmployer:
		return RoleEmployer, true
	}
	return "", false
}

// User represents a registered account.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	Role         Role
	Company      string
	CreatedAt    time.Time
}

// IsEmployer reports whether the user may post jobs.
func (u User) IsEmployer() bool {
	return u.Role == RoleEmployer
}

// Identity is the authenticated caller extracted from a bearer token.
type Identity struct {
	UserID int64
	Role   Role
}

// IsEmployer reports whether the caller holds the employer role.
func (i Identity) IsEmployer() bool {
	return i.Role == RoleEmployer
}
