package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/careconnect/healthcare-portal/internal/core/domain"
	"github.com/careconnect/healthcare-portal/internal/core/ports"
)

type PrescriptionHandler struct {
	service ports.PrescriptionService
}

func NewPrescriptionHandler(service ports.PrescriptionService) *PrescriptionHandler {
	return &PrescriptionHandler{service: service}
}

type medicationRequest struct {
	Name      string `json:"name" validate:"required"`
	Dosage    string `json:"dosage" validate:"required"`
	Frequency string `json:"frequency" validate:"required"`
	Duration  string `json:"duration" validate:"required"`
}

type createPrescriptionRequest struct {
	AppointmentID string              `json:"appointment_id" validate:"required"`
	Medications   []medicationRequest `json:"medications" validate:"required,min=1,dive"`
	Notes         string              `json:"notes,omitempty"`
}

// Create handles POST /api/prescriptions: a doctor issues a prescription
// for a completed appointment.
//
// @Summary      Issue a prescription
// @Tags         prescriptions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createPrescriptionRequest  true  "Prescription"
// @Success      201   {object}  domain.Prescription
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /api/prescriptions [post]
func (h *PrescriptionHandler) Create(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createPrescriptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	medications := make([]ports.MedicationInput, 0, len(req.Medications))
	for _, m := range req.Medications {
		medications = append(medications, ports.MedicationInput{
			Name:      m.Name,
			Dosage:    m.Dosage,
			Frequency: m.Frequency,
			Duration:  m.Duration,
		})
	}

	prescription, err := h.service.Create(c.Request().Context(), ports.CreatePrescriptionInput{
		AppointmentID: req.AppointmentID,
		DoctorID:      userID,
		Medications:   medications,
		Notes:         req.Notes,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, prescription)
}

// List handles GET /api/prescriptions: a patient's own prescriptions.
//
// @Summary      List the caller's prescriptions
// @Tags         prescriptions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Prescription
// @Failure      401  {object}  map[string]string
// @Router       /api/prescriptions [get]
func (h *PrescriptionHandler) List(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	prescriptions, err := h.service.ListForPatient(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	if prescriptions == nil {
		prescriptions = []*domain.Prescription{}
	}
	return c.JSON(http.StatusOK, prescriptions)
}
