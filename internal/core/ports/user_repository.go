package ports

import (
	"context"

	"github.com/careconnect/healthcare-portal/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts. It doubles
// as the authoritative live-population query surface used by the notification
// delivery router and the websocket join handler.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByIDs returns the users matching ids. Unknown ids are silently
	// omitted from the result.
	FindByIDs(ctx context.Context, ids []string) ([]*domain.User, error)
	// FindActiveUsersByRole returns every active user with the given role.
	FindActiveUsersByRole(ctx context.Context, role string) ([]*domain.User, error)
	// FindActiveUsers returns every active user regardless of role.
	FindActiveUsers(ctx context.Context) ([]*domain.User, error)
	// FindPendingDoctors returns doctor accounts awaiting admin approval.
	FindPendingDoctors(ctx context.Context) ([]*domain.User, error)
	UpdateStatus(ctx context.Context, id, status string) error
}
