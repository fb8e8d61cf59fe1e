package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/careconnect/healthcare-portal/internal/core/ports"
)

type NotificationHandler struct {
	service ports.NotificationService
}

func NewNotificationHandler(service ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

type sendNotificationRequest struct {
	Title   string `json:"title" validate:"required"`
	Message string `json:"message" validate:"required"`
	Type    string `json:"type,omitempty" validate:"omitempty,oneof=info warning success error"`
	// Exactly one addressing dimension applies: a specific recipient id
	// wins over a role; both empty means broadcast.
	RecipientID   string `json:"recipient_id,omitempty"`
	RecipientRole string `json:"recipient_role,omitempty" validate:"omitempty,oneof=patient doctor admin all"`
}

type sendNotificationResponse struct {
	Message      string           `json:"message"`
	Notification notificationSent `json:"notification"`
}

type notificationSent struct {
	ID                  string `json:"id"`
	Title               string `json:"title"`
	TotalRecipients     int    `json:"total_recipients"`
	ConnectedRecipients int    `json:"connected_recipients"`
}

// Send handles POST /api/admin/notifications/send: persists a notification
// and routes it to the resolved audience's live connections.
//
// @Summary      Send a notification to a user, a role cohort, or everyone
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      sendNotificationRequest  true  "Notification"
// @Success      200   {object}  sendNotificationResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/admin/notifications/send [post]
func (h *NotificationHandler) Send(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req sendNotificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	result, err := h.service.Send(c.Request().Context(), ports.SendNotificationInput{
		Title:         req.Title,
		Message:       req.Message,
		Type:          req.Type,
		RecipientID:   req.RecipientID,
		RecipientRole: req.RecipientRole,
		CreatedBy:     userID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, sendNotificationResponse{
		Message: "Notification sent successfully",
		Notification: notificationSent{
			ID:                  result.NotificationID,
			Title:               req.Title,
			TotalRecipients:     result.TotalTargeted,
			ConnectedRecipients: result.TotalDeliveredLive,
		},
	})
}
