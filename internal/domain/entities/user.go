package entities

import (
	"strings"
	"time"
)

// Role gates which dashboards and admin operations a user may reach
type Role string

const (
	RolePatient Role = "patient"
	RoleAdmin   Role = "admin"
	RoleOwner   Role = "owner"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleAdmin, RoleOwner:
		return true
	}
	return false
}

// IsStaff reports whether the role may use admin endpoints
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleOwner
}

// User is a registered account; phone is the login key
type User struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email,omitempty"`
	Role         Role      `json:"role"`
	ProfileImage string    `json:"profile_image,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FullName joins first and last name
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
