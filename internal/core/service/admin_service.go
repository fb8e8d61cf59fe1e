package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/careconnect/healthcare-portal/internal/core/domain"
	"github.com/careconnect/healthcare-portal/internal/core/ports"
)

type adminService struct {
	users         ports.UserRepository
	notifications ports.NotificationService
	log           zerolog.Logger
}

func NewAdminService(users ports.UserRepository, notifications ports.NotificationService, log zerolog.Logger) ports.AdminService {
	return &adminService{users: users, notifications: notifications, log: log}
}

func (s *adminService) PendingDoctors(ctx context.Context) ([]*domain.User, error) {
	return s.users.FindPendingDoctors(ctx)
}

// SetDoctorStatus approves or rejects a pending doctor account. The status
// change is the durable outcome; the follow-up notification to the doctor is
// best effort.
func (s *adminService) SetDoctorStatus(ctx context.Context, doctorID, status, adminID string) (*domain.User, error) {
	if status != domain.StatusActive && status != domain.StatusRejected {
		return nil, fmt.Errorf("invalid doctor status %q", status)
	}

	doctor, err := s.users.FindByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if doctor.Role != domain.RoleDoctor {
		return nil, domain.ErrUserNotFound
	}

	if err := s.users.UpdateStatus(ctx, doctorID, status); err != nil {
		return nil, fmt.Errorf("update doctor status: %w", err)
	}
	doctor.Status = status

	title, message, typ := "Account approved", "Your doctor account has been approved. You can now log in.", string(domain.TypeSuccess)
	if status == domain.StatusRejected {
		title, message, typ = "Account rejected", "Your doctor account application was rejected.", string(domain.TypeWarning)
	}

	if _, err := s.notifications.Send(ctx, ports.SendNotificationInput{
		Title:       title,
		Message:     message,
		Type:        typ,
		RecipientID: doctorID,
		CreatedBy:   adminID,
	}); err != nil {
		s.log.Warn().Err(err).Str("doctor_id", doctorID).Msg("failed to notify doctor of status change")
	}

	return doctor, nil
}
