package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/careconnect/healthcare-portal/internal/core/domain"
	"github.com/careconnect/healthcare-portal/internal/core/ports"
)

type AppointmentHandler struct {
	service ports.AppointmentService
}

func NewAppointmentHandler(service ports.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{service: service}
}

type bookAppointmentRequest struct {
	DoctorID string    `json:"doctor_id" validate:"required"`
	Date     time.Time `json:"date" validate:"required"`
	TimeSlot string    `json:"time_slot" validate:"required"`
	Reason   string    `json:"reason" validate:"required"`
}

type updateAppointmentRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed completed cancelled"`
	Notes  string `json:"notes,omitempty"`
}

// Book handles POST /api/appointments: a patient books a visit.
//
// @Summary      Book an appointment with a doctor
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      bookAppointmentRequest  true  "Booking details"
// @Success      201   {object}  domain.Appointment
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/appointments [post]
func (h *AppointmentHandler) Book(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req bookAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	appointment, err := h.service.Book(c.Request().Context(), ports.BookAppointmentInput{
		PatientID: userID,
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		TimeSlot:  req.TimeSlot,
		Reason:    req.Reason,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, appointment)
}

// List handles GET /api/appointments: appointments visible to the caller.
//
// @Summary      List the caller's appointments
// @Tags         appointments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Appointment
// @Failure      401  {object}  map[string]string
// @Router       /api/appointments [get]
func (h *AppointmentHandler) List(c echo.Context) error {
	userID, role, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	appointments, err := h.service.ListForUser(c.Request().Context(), role, userID)
	if err != nil {
		return err
	}
	if appointments == nil {
		appointments = []*domain.Appointment{}
	}
	return c.JSON(http.StatusOK, appointments)
}

// UpdateStatus handles PUT /api/appointments/:id/status: a doctor confirms
// or completes a visit.
//
// @Summary      Update an appointment's status
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                    true  "Appointment id"
// @Param        body  body      updateAppointmentRequest  true  "New status"
// @Success      200   {object}  domain.Appointment
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /api/appointments/{id}/status [put]
func (h *AppointmentHandler) UpdateStatus(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	appointment, err := h.service.UpdateStatus(c.Request().Context(), ports.UpdateAppointmentInput{
		AppointmentID: c.Param("id"),
		DoctorID:      userID,
		Status:        req.Status,
		Notes:         req.Notes,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, appointment)
}

// Cancel handles DELETE /api/appointments/:id: a patient cancels their
// booking.
//
// @Summary      Cancel an appointment
// @Tags         appointments
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Appointment id"
// @Success      200  {object}  domain.Appointment
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/appointments/{id} [delete]
func (h *AppointmentHandler) Cancel(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	appointment, err := h.service.Cancel(c.Request().Context(), ports.CancelAppointmentInput{
		AppointmentID: c.Param("id"),
		PatientID:     userID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, appointment)
}
