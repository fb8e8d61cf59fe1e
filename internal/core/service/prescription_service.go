package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/careconnect/healthcare-portal/internal/core/domain"
	"github.com/careconnect/healthcare-portal/internal/core/ports"
	"github.com/careconnect/healthcare-portal/internal/realtime"
)

type prescriptionService struct {
	prescriptions ports.PrescriptionRepository
	appointments  ports.AppointmentRepository
	publisher     ports.Publisher
	log           zerolog.Logger
}

func NewPrescriptionService(
	prescriptions ports.PrescriptionRepository,
	appointments ports.AppointmentRepository,
	publisher ports.Publisher,
	log zerolog.Logger,
) ports.PrescriptionService {
	return &prescriptionService{
		prescriptions: prescriptions,
		appointments:  appointments,
		publisher:     publisher,
		log:           log,
	}
}

type prescriptionEventData struct {
	PrescriptionID string `json:"prescriptionId"`
	AppointmentID  string `json:"appointmentId"`
	DoctorID       string `json:"doctorId"`
	Message        string `json:"message"`
}

// Create issues a prescription against a completed appointment owned by the
// requesting doctor and notifies the patient's room.
func (s *prescriptionService) Create(ctx context.Context, in ports.CreatePrescriptionInput) (*domain.Prescription, error) {
	appointment, err := s.appointments.FindByID(ctx, in.AppointmentID)
	if err != nil {
		return nil, err
	}
	if appointment.DoctorID != in.DoctorID {
		return nil, domain.ErrForbidden
	}
	if appointment.Status != domain.AppointmentCompleted {
		return nil, domain.ErrAppointmentNotCompleted
	}

	medications := make([]domain.Medication, 0, len(in.Medications))
	for _, m := range in.Medications {
		medications = append(medications, domain.Medication{
			Name:      m.Name,
			Dosage:    m.Dosage,
			Frequency: m.Frequency,
			Duration:  m.Duration,
		})
	}

	prescription := &domain.Prescription{
		AppointmentID: appointment.ID,
		PatientID:     appointment.PatientID,
		DoctorID:      appointment.DoctorID,
		Medications:   medications,
		Notes:         in.Notes,
		CreatedAt:     time.Now().UTC(),
	}

	created, err := s.prescriptions.Create(ctx, prescription)
	if err != nil {
		return nil, fmt.Errorf("create prescription: %w", err)
	}

	s.publisher.Publish(realtime.UserRoom(created.PatientID), realtime.EventPrescriptionCreated, prescriptionEventData{
		PrescriptionID: created.ID,
		AppointmentID:  created.AppointmentID,
		DoctorID:       created.DoctorID,
		Message:        "A new prescription has been issued for you",
	})

	s.log.Info().Str("prescription_id", created.ID).Str("patient_id", created.PatientID).Msg("prescription created")
	return created, nil
}

func (s *prescriptionService) ListForPatient(ctx context.Context, patientID string) ([]*domain.Prescription, error) {
	return s.prescriptions.ListByPatient(ctx, patientID)
}
