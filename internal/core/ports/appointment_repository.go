package ports

import (
	"context"

	"github.com/careconnect/healthcare-portal/internal/core/domain"
)

// AppointmentRepository defines persistence operations for appointments.
type AppointmentRepository interface {
	Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error)
	FindByID(ctx context.Context, id string) (*domain.Appointment, error)
	// UpdateStatus sets the appointment's status and doctor notes.
	UpdateStatus(ctx context.Context, id string, status domain.AppointmentStatus, notes string) error
	ListByPatient(ctx context.Context, patientID string) ([]*domain.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]*domain.Appointment, error)
}
