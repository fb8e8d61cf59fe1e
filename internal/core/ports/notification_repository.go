package ports

import (
	"context"
	"time"

	"github.com/careconnect/healthcare-portal/internal/core/domain"
)

// RecentNotificationsFilter selects the notifications a user may have missed
// while disconnected: those addressed to the user directly, to the user's
// role cohort, or to everyone, created at or after Since.
type RecentNotificationsFilter struct {
	UserID string
	Role   string
	Since  time.Time
}

// NotificationRepository defines persistence for the durable notification log.
type NotificationRepository interface {
	// Insert persists a notification and returns its assigned id.
	Insert(ctx context.Context, n *domain.Notification) (string, error)
	// QueryRecent returns up to limit notifications matching filter,
	// newest first.
	QueryRecent(ctx context.Context, filter RecentNotificationsFilter, limit int) ([]*domain.Notification, error)
}
