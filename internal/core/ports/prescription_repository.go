package ports

import (
	"context"

	"github.com/careconnect/healthcare-portal/internal/core/domain"
)

// PrescriptionRepository defines persistence operations for prescriptions.
type PrescriptionRepository interface {
	Create(ctx context.Context, p *domain.Prescription) (*domain.Prescription, error)
	ListByPatient(ctx context.Context, patientID string) ([]*domain.Prescription, error)
}
