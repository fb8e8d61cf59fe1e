package ports

import (
	"context"

	"github.com/careconnect/healthcare-portal/internal/core/domain"
)

// MedicationInput is a single prescribed medication line.
type MedicationInput struct {
	Name      string
	Dosage    string
	Frequency string
	Duration  string
}

// CreatePrescriptionInput carries a doctor's prescription for a completed
// appointment.
type CreatePrescriptionInput struct {
	AppointmentID string
	DoctorID      string
	Medications   []MedicationInput
	Notes         string
}

// PrescriptionService defines use-case operations for prescriptions.
type PrescriptionService interface {
	Create(ctx context.Context, input CreatePrescriptionInput) (*domain.Prescription, error)
	ListForPatient(ctx context.Context, patientID string) ([]*domain.Prescription, error)
}
