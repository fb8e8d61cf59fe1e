package domain

import (
	"errors"
	"time"
)

var ErrPrescriptionNotFound = errors.New("prescription not found")
var ErrAppointmentNotCompleted = errors.New("appointment is not completed")

// Medication is a single line item on a prescription.
type Medication struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	Duration  string `json:"duration"`
}

// Prescription is issued by a doctor against a completed appointment.
type Prescription struct {
	ID            string       `json:"id"`
	AppointmentID string       `json:"appointment_id"`
	PatientID     string       `json:"patient_id"`
	DoctorID      string       `json:"doctor_id"`
	Medications   []Medication `json:"medications"`
	Notes         string       `json:"notes,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}
