package ports

import (
	"context"
	"time"

	"github.com/careconnect/healthcare-portal/internal/core/domain"
)

// BookAppointmentInput carries a patient's booking request.
type BookAppointmentInput struct {
	PatientID string
	DoctorID  string
	Date      time.Time
	TimeSlot  string
	Reason    string
}

// UpdateAppointmentInput carries a doctor's status change for an appointment.
type UpdateAppointmentInput struct {
	AppointmentID string
	DoctorID      string
	Status        string
	Notes         string
}

// CancelAppointmentInput carries a patient's cancellation request.
type CancelAppointmentInput struct {
	AppointmentID string
	PatientID     string
}

// AppointmentService defines use-case operations for appointments.
type AppointmentService interface {
	Book(ctx context.Context, input BookAppointmentInput) (*domain.Appointment, error)
	UpdateStatus(ctx context.Context, input UpdateAppointmentInput) (*domain.Appointment, error)
	Cancel(ctx context.Context, input CancelAppointmentInput) (*domain.Appointment, error)
	// ListForUser returns the appointments visible to the given user:
	// their own bookings for patients, their schedule for doctors.
	ListForUser(ctx context.Context, role, userID string) ([]*domain.Appointment, error)
}
