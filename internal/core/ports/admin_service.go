package ports

import (
	"context"

	"github.com/careconnect/healthcare-portal/internal/core/domain"
)

// AdminService defines admin-only account management operations.
type AdminService interface {
	PendingDoctors(ctx context.Context) ([]*domain.User, error)
	// SetDoctorStatus approves or rejects a pending doctor account and
	// notifies the doctor of the decision.
	SetDoctorStatus(ctx context.Context, doctorID, status, adminID string) (*domain.User, error)
}
