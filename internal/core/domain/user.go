package domain

import (
	"errors"
	"time"
)

const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"

	// RoleAll is not a user role; it is the broadcast audience selector
	// accepted by the notification addressing layer.
	RoleAll = "all"
)

const (
	StatusActive   = "active"
	StatusPending  = "pending"
	StatusRejected = "rejected"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserInactive = errors.New("user account is not active")
var ErrForbidden = errors.New("access forbidden")

// ValidUserRole reports whether r names an actual user role.
func ValidUserRole(r string) bool {
	return r == RolePatient || r == RoleDoctor || r == RoleAdmin
}

// User models an authenticated actor in the portal.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Role         string `json:"role"`
	// Status gates login and room joins. Doctor accounts start as
	// "pending" until an admin approves them.
	Status         string    `json:"status"`
	Specialization string    `json:"specialization,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsActive reports whether the account may log in and receive notifications.
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}
