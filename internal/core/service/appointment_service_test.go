package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/careconnect/healthcare-portal/internal/core/domain"
	"github.com/careconnect/healthcare-portal/internal/core/ports"
	"github.com/careconnect/healthcare-portal/internal/realtime"
)

type stubAppointmentRepo struct {
	appointments map[string]*domain.Appointment
	createErr    error
}

func newStubAppointmentRepo(appointments ...*domain.Appointment) *stubAppointmentRepo {
	byID := make(map[string]*domain.Appointment, len(appointments))
	for _, a := range appointments {
		byID[a.ID] = a
	}
	return &stubAppointmentRepo{appointments: byID}
}

func (r *stubAppointmentRepo) Create(_ context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	a.ID = fmt.Sprintf("appt-%d", len(r.appointments)+1)
	r.appointments[a.ID] = a
	return a, nil
}

func (r *stubAppointmentRepo) FindByID(_ context.Context, id string) (*domain.Appointment, error) {
	a, ok := r.appointments[id]
	if !ok {
		return nil, domain.ErrAppointmentNotFound
	}
	return a, nil
}

func (r *stubAppointmentRepo) UpdateStatus(_ context.Context, id string, status domain.AppointmentStatus, notes string) error {
	a, ok := r.appointments[id]
	if !ok {
		return domain.ErrAppointmentNotFound
	}
	a.Status = status
	a.Notes = notes
	return nil
}

func (r *stubAppointmentRepo) ListByPatient(_ context.Context, patientID string) ([]*domain.Appointment, error) {
	var out []*domain.Appointment
	for _, a := range r.appointments {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *stubAppointmentRepo) ListByDoctor(_ context.Context, doctorID string) ([]*domain.Appointment, error) {
	var out []*domain.Appointment
	for _, a := range r.appointments {
		if a.DoctorID == doctorID {
			out = append(out, a)
		}
	}
	return out, nil
}

func pendingAppointment(id, patientID, doctorID string) *domain.Appointment {
	return &domain.Appointment{
		ID:        id,
		PatientID: patientID,
		DoctorID:  doctorID,
		Date:      time.Now().UTC().Add(48 * time.Hour),
		TimeSlot:  "09:00-09:30",
		Status:    domain.AppointmentPending,
	}
}

func TestBook_NotifiesDoctorRoom(t *testing.T) {
	users := newStubUserRepo(activeUser("d1", domain.RoleDoctor))
	repo := newStubAppointmentRepo()
	pub := &stubPublisher{liveConns: map[string]int{}}
	svc := NewAppointmentService(repo, users, pub, zerolog.Nop())

	created, err := svc.Book(context.Background(), ports.BookAppointmentInput{
		PatientID: "p1",
		DoctorID:  "d1",
		Date:      time.Now().UTC().Add(48 * time.Hour),
		TimeSlot:  "09:00-09:30",
		Reason:    "checkup",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Status != domain.AppointmentPending {
		t.Fatalf("expected new appointment pending, got %q", created.Status)
	}

	if len(pub.published) != 1 {
		t.Fatalf("expected exactly one realtime event, got %d", len(pub.published))
	}
	e := pub.published[0]
	if e.room != realtime.UserRoom("d1") || e.event != realtime.EventNewAppointment {
		t.Fatalf("expected new-appointment into the doctor's room, got %+v", e)
	}
}

func TestBook_RejectsNonDoctor(t *testing.T) {
	users := newStubUserRepo(activeUser("p2", domain.RolePatient))
	svc := NewAppointmentService(newStubAppointmentRepo(), users, &stubPublisher{}, zerolog.Nop())

	if _, err := svc.Book(context.Background(), ports.BookAppointmentInput{
		PatientID: "p1",
		DoctorID:  "p2",
	}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("booking with a non-doctor must fail, got: %v", err)
	}
}

func TestBook_RejectsPendingDoctor(t *testing.T) {
	users := newStubUserRepo(&domain.User{ID: "d1", Role: domain.RoleDoctor, Status: domain.StatusPending})
	svc := NewAppointmentService(newStubAppointmentRepo(), users, &stubPublisher{}, zerolog.Nop())

	if _, err := svc.Book(context.Background(), ports.BookAppointmentInput{
		PatientID: "p1",
		DoctorID:  "d1",
	}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("booking with an unapproved doctor must fail, got: %v", err)
	}
}

func TestUpdateStatus_NotifiesPatientRoom(t *testing.T) {
	repo := newStubAppointmentRepo(pendingAppointment("appt-1", "p1", "d1"))
	pub := &stubPublisher{liveConns: map[string]int{}}
	svc := NewAppointmentService(repo, newStubUserRepo(), pub, zerolog.Nop())

	updated, err := svc.UpdateStatus(context.Background(), ports.UpdateAppointmentInput{
		AppointmentID: "appt-1",
		DoctorID:      "d1",
		Status:        "confirmed",
		Notes:         "bring previous labs",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != domain.AppointmentConfirmed {
		t.Fatalf("expected confirmed, got %q", updated.Status)
	}

	if len(pub.published) != 1 {
		t.Fatalf("expected one realtime event, got %d", len(pub.published))
	}
	e := pub.published[0]
	if e.room != realtime.UserRoom("p1") || e.event != realtime.EventAppointmentUpdated {
		t.Fatalf("expected appointment-updated into the patient's room, got %+v", e)
	}
}

func TestUpdateStatus_ForeignDoctorForbidden(t *testing.T) {
	repo := newStubAppointmentRepo(pendingAppointment("appt-1", "p1", "d1"))
	svc := NewAppointmentService(repo, newStubUserRepo(), &stubPublisher{}, zerolog.Nop())

	if _, err := svc.UpdateStatus(context.Background(), ports.UpdateAppointmentInput{
		AppointmentID: "appt-1",
		DoctorID:      "d2",
		Status:        "confirmed",
	}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("another doctor must not modify the appointment, got: %v", err)
	}
}

func TestUpdateStatus_InvalidTransition(t *testing.T) {
	appt := pendingAppointment("appt-1", "p1", "d1")
	appt.Status = domain.AppointmentCancelled
	svc := NewAppointmentService(newStubAppointmentRepo(appt), newStubUserRepo(), &stubPublisher{}, zerolog.Nop())

	if _, err := svc.UpdateStatus(context.Background(), ports.UpdateAppointmentInput{
		AppointmentID: "appt-1",
		DoctorID:      "d1",
		Status:        "completed",
	}); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got: %v", err)
	}
}

func TestCancel_NotifiesDoctorRoom(t *testing.T) {
	repo := newStubAppointmentRepo(pendingAppointment("appt-1", "p1", "d1"))
	pub := &stubPublisher{liveConns: map[string]int{}}
	svc := NewAppointmentService(repo, newStubUserRepo(), pub, zerolog.Nop())

	cancelled, err := svc.Cancel(context.Background(), ports.CancelAppointmentInput{
		AppointmentID: "appt-1",
		PatientID:     "p1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.Status != domain.AppointmentCancelled {
		t.Fatalf("expected cancelled, got %q", cancelled.Status)
	}

	e := pub.published[0]
	if e.room != realtime.UserRoom("d1") || e.event != realtime.EventAppointmentCancelled {
		t.Fatalf("expected appointment-cancelled into the doctor's room, got %+v", e)
	}
}

func TestCancel_ForeignPatientForbidden(t *testing.T) {
	repo := newStubAppointmentRepo(pendingAppointment("appt-1", "p1", "d1"))
	svc := NewAppointmentService(repo, newStubUserRepo(), &stubPublisher{}, zerolog.Nop())

	if _, err := svc.Cancel(context.Background(), ports.CancelAppointmentInput{
		AppointmentID: "appt-1",
		PatientID:     "p2",
	}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("only the booking patient may cancel, got: %v", err)
	}
}

func TestCancel_CompletedAppointmentRefused(t *testing.T) {
	appt := pendingAppointment("appt-1", "p1", "d1")
	appt.Status = domain.AppointmentCompleted
	svc := NewAppointmentService(newStubAppointmentRepo(appt), newStubUserRepo(), &stubPublisher{}, zerolog.Nop())

	if _, err := svc.Cancel(context.Background(), ports.CancelAppointmentInput{
		AppointmentID: "appt-1",
		PatientID:     "p1",
	}); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got: %v", err)
	}
}

func TestListForUser_ScopesByRole(t *testing.T) {
	repo := newStubAppointmentRepo(
		pendingAppointment("appt-1", "p1", "d1"),
		pendingAppointment("appt-2", "p2", "d1"),
		pendingAppointment("appt-3", "p1", "d2"),
	)
	svc := NewAppointmentService(repo, newStubUserRepo(), &stubPublisher{}, zerolog.Nop())

	forDoctor, err := svc.ListForUser(context.Background(), domain.RoleDoctor, "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(forDoctor) != 2 {
		t.Fatalf("expected 2 appointments on d1's schedule, got %d", len(forDoctor))
	}

	forPatient, err := svc.ListForUser(context.Background(), domain.RolePatient, "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(forPatient) != 2 {
		t.Fatalf("expected 2 appointments for p1, got %d", len(forPatient))
	}
}
