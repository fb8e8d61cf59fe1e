package domain

import (
	"errors"
	"time"
)

// NotificationType classifies how the client should render a notification.
type NotificationType string

const (
	TypeInfo    NotificationType = "info"
	TypeWarning NotificationType = "warning"
	TypeSuccess NotificationType = "success"
	TypeError   NotificationType = "error"
)

// AddressMode describes who a notification is for.
type AddressMode string

const (
	AddressUser AddressMode = "user" // a single recipient id
	AddressRole AddressMode = "role" // every active user with a given role
	AddressAll  AddressMode = "all"  // every active user
)

var ErrInvalidRecipientRole = errors.New("invalid recipient role")
var ErrDuplicateNotification = errors.New("duplicate notification send")

// ValidNotificationType reports whether t is a known notification type.
func ValidNotificationType(t string) bool {
	switch NotificationType(t) {
	case TypeInfo, TypeWarning, TypeSuccess, TypeError:
		return true
	}
	return false
}

// Notification is an immutable, durably stored message addressed to a user,
// a role cohort, or everyone. Read state is client-local; the store never
// tracks per-user read flags.
type Notification struct {
	ID      string           `json:"id"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Type    NotificationType `json:"type"`
	// RecipientID is set when the notification targets a single user.
	RecipientID string `json:"recipient_id,omitempty"`
	// RecipientRole is one of patient, doctor, admin, or all. Empty when
	// RecipientID is set.
	RecipientRole string    `json:"recipient_role"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

// Mode derives the addressing mode from the recipient fields.
func (n *Notification) Mode() AddressMode {
	if n.RecipientID != "" {
		return AddressUser
	}
	if n.RecipientRole == RoleAll {
		return AddressAll
	}
	return AddressRole
}
