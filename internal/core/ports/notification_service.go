package ports

import "context"

// SendNotificationInput carries an admin's request to create and deliver a
// notification. RecipientID takes precedence over RecipientRole; when both
// are empty the notification is broadcast to everyone.
type SendNotificationInput struct {
	Title         string
	Message       string
	Type          string
	RecipientID   string
	RecipientRole string
	CreatedBy     string
}

// SendResult reports delivery observability counts back to the sender.
// TotalDeliveredLive counts audience members that had at least one live
// connection at emission time; it is informational, not a retry signal.
type SendResult struct {
	NotificationID     string
	TotalTargeted      int
	TotalDeliveredLive int
}

// NotificationService persists a notification and routes it to exactly the
// resolved audience's live connections.
type NotificationService interface {
	Send(ctx context.Context, input SendNotificationInput) (*SendResult, error)
}
