package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/careconnect/healthcare-portal/internal/core/domain"
	"github.com/careconnect/healthcare-portal/internal/core/ports"
)

type AdminHandler struct {
	service ports.AdminService
}

func NewAdminHandler(service ports.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

type setDoctorStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active rejected"`
}

// PendingDoctors handles GET /api/admin/doctors/pending.
//
// @Summary      List doctor accounts awaiting approval
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.User
// @Failure      403  {object}  map[string]string
// @Router       /api/admin/doctors/pending [get]
func (h *AdminHandler) PendingDoctors(c echo.Context) error {
	doctors, err := h.service.PendingDoctors(c.Request().Context())
	if err != nil {
		return err
	}
	if doctors == nil {
		doctors = []*domain.User{}
	}
	return c.JSON(http.StatusOK, doctors)
}

// SetDoctorStatus handles PUT /api/admin/doctors/:id/status: approve or
// reject a pending doctor account.
//
// @Summary      Approve or reject a doctor account
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                  true  "Doctor id"
// @Param        body  body      setDoctorStatusRequest  true  "New status"
// @Success      200   {object}  domain.User
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/admin/doctors/{id}/status [put]
func (h *AdminHandler) SetDoctorStatus(c echo.Context) error {
	adminID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req setDoctorStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	doctor, err := h.service.SetDoctorStatus(c.Request().Context(), c.Param("id"), req.Status, adminID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, doctor)
}
