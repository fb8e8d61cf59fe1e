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

type appointmentService struct {
	appointments ports.AppointmentRepository
	users        ports.UserRepository
	publisher    ports.Publisher
	log          zerolog.Logger
}

// NewAppointmentService returns the appointment use cases. Every state
// change pushes a targeted realtime event to the affected counterparty's
// room; delivery is best effort, persistence is the guarantee.
func NewAppointmentService(
	appointments ports.AppointmentRepository,
	users ports.UserRepository,
	publisher ports.Publisher,
	log zerolog.Logger,
) ports.AppointmentService {
	return &appointmentService{
		appointments: appointments,
		users:        users,
		publisher:    publisher,
		log:          log,
	}
}

// appointmentEventData is the payload for appointment lifecycle events.
type appointmentEventData struct {
	AppointmentID string `json:"appointmentId"`
	PatientID     string `json:"patientId,omitempty"`
	DoctorID      string `json:"doctorId,omitempty"`
	Status        string `json:"status"`
	Date          string `json:"date"`
	TimeSlot      string `json:"timeSlot"`
	Message       string `json:"message"`
}

func (s *appointmentService) Book(ctx context.Context, in ports.BookAppointmentInput) (*domain.Appointment, error) {
	doctor, err := s.users.FindByID(ctx, in.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("book appointment: %w", err)
	}
	if doctor.Role != domain.RoleDoctor || !doctor.IsActive() {
		return nil, domain.ErrUserNotFound
	}

	now := time.Now().UTC()
	appointment := &domain.Appointment{
		PatientID: in.PatientID,
		DoctorID:  in.DoctorID,
		Date:      in.Date,
		TimeSlot:  in.TimeSlot,
		Reason:    in.Reason,
		Status:    domain.AppointmentPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.appointments.Create(ctx, appointment)
	if err != nil {
		return nil, fmt.Errorf("book appointment: %w", err)
	}

	s.publisher.Publish(realtime.UserRoom(in.DoctorID), realtime.EventNewAppointment, appointmentEventData{
		AppointmentID: created.ID,
		PatientID:     created.PatientID,
		Status:        string(created.Status),
		Date:          created.Date.UTC().Format(time.RFC3339),
		TimeSlot:      created.TimeSlot,
		Message:       "You have a new appointment request",
	})

	s.log.Info().Str("appointment_id", created.ID).Str("doctor_id", in.DoctorID).Msg("appointment booked")
	return created, nil
}

func (s *appointmentService) UpdateStatus(ctx context.Context, in ports.UpdateAppointmentInput) (*domain.Appointment, error) {
	appointment, err := s.appointments.FindByID(ctx, in.AppointmentID)
	if err != nil {
		return nil, err
	}
	if appointment.DoctorID != in.DoctorID {
		return nil, domain.ErrForbidden
	}

	next := domain.AppointmentStatus(in.Status)
	if !appointment.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, appointment.Status, next)
	}

	if err := s.appointments.UpdateStatus(ctx, appointment.ID, next, in.Notes); err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	appointment.Status = next
	appointment.Notes = in.Notes

	s.publisher.Publish(realtime.UserRoom(appointment.PatientID), realtime.EventAppointmentUpdated, appointmentEventData{
		AppointmentID: appointment.ID,
		DoctorID:      appointment.DoctorID,
		Status:        string(next),
		Date:          appointment.Date.UTC().Format(time.RFC3339),
		TimeSlot:      appointment.TimeSlot,
		Message:       fmt.Sprintf("Your appointment was %s", next),
	})

	s.log.Info().Str("appointment_id", appointment.ID).Str("status", string(next)).Msg("appointment status updated")
	return appointment, nil
}

func (s *appointmentService) Cancel(ctx context.Context, in ports.CancelAppointmentInput) (*domain.Appointment, error) {
	appointment, err := s.appointments.FindByID(ctx, in.AppointmentID)
	if err != nil {
		return nil, err
	}
	if appointment.PatientID != in.PatientID {
		return nil, domain.ErrForbidden
	}

	if !appointment.Status.CanTransitionTo(domain.AppointmentCancelled) {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, appointment.Status, domain.AppointmentCancelled)
	}

	if err := s.appointments.UpdateStatus(ctx, appointment.ID, domain.AppointmentCancelled, appointment.Notes); err != nil {
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}
	appointment.Status = domain.AppointmentCancelled

	s.publisher.Publish(realtime.UserRoom(appointment.DoctorID), realtime.EventAppointmentCancelled, appointmentEventData{
		AppointmentID: appointment.ID,
		PatientID:     appointment.PatientID,
		Status:        string(domain.AppointmentCancelled),
		Date:          appointment.Date.UTC().Format(time.RFC3339),
		TimeSlot:      appointment.TimeSlot,
		Message:       "An appointment was cancelled by the patient",
	})

	s.log.Info().Str("appointment_id", appointment.ID).Msg("appointment cancelled")
	return appointment, nil
}

func (s *appointmentService) ListForUser(ctx context.Context, role, userID string) ([]*domain.Appointment, error) {
	switch role {
	case domain.RoleDoctor:
		return s.appointments.ListByDoctor(ctx, userID)
	default:
		return s.appointments.ListByPatient(ctx, userID)
	}
}
