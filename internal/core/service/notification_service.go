package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/careconnect/healthcare-portal/internal/api/metrics"
	"github.com/careconnect/healthcare-portal/internal/core/domain"
	"github.com/careconnect/healthcare-portal/internal/core/ports"
	"github.com/careconnect/healthcare-portal/internal/realtime"
)

// SendDedup abstracts the duplicate-send guard (Redis). A short TTL key on
// the notification's content and addressing suppresses accidental repeat
// submissions from the admin UI.
type SendDedup interface {
	IsDuplicate(ctx context.Context, createdBy, title, message, recipient string) (bool, error)
	Mark(ctx context.Context, createdBy, title, message, recipient string) error
}

type notificationService struct {
	store       ports.NotificationRepository
	users       ports.UserRepository
	publisher   ports.Publisher
	dedup       SendDedup
	sendTimeout time.Duration
	log         zerolog.Logger
}

// NewNotificationService returns the delivery router: it persists a
// notification, resolves its audience from the live user population, and
// emits the payload into exactly the audience's rooms.
func NewNotificationService(
	store ports.NotificationRepository,
	users ports.UserRepository,
	publisher ports.Publisher,
	dedup SendDedup,
	sendTimeout time.Duration,
	log zerolog.Logger,
) ports.NotificationService {
	if sendTimeout <= 0 {
		sendTimeout = 5 * time.Second
	}
	return &notificationService{
		store:       store,
		users:       users,
		publisher:   publisher,
		dedup:       dedup,
		sendTimeout: sendTimeout,
		log:         log,
	}
}

// Send validates addressing, persists the notification, resolves the target
// audience, and pushes the payload to every live connection in the audience's
// rooms. Audience resolution failures abort the whole send; an offline
// recipient is not a failure.
func (s *notificationService) Send(ctx context.Context, in ports.SendNotificationInput) (*ports.SendResult, error) {
	role, err := normalizeRecipientRole(in.RecipientRole, in.RecipientID)
	if err != nil {
		metrics.NotificationSendErrorsTotal.WithLabelValues("invalid_role").Inc()
		return nil, err
	}

	typ := strings.TrimSpace(strings.ToLower(in.Type))
	if typ == "" {
		typ = string(domain.TypeInfo)
	}
	if !domain.ValidNotificationType(typ) {
		metrics.NotificationSendErrorsTotal.WithLabelValues("invalid_type").Inc()
		return nil, fmt.Errorf("send notification: unknown type %q", in.Type)
	}

	ctx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	// Double-click protection. A dedup store error is non-fatal: delivery
	// correctness does not depend on it.
	recipient := in.RecipientID
	if recipient == "" {
		recipient = role
	}
	if isDup, err := s.dedup.IsDuplicate(ctx, in.CreatedBy, in.Title, in.Message, recipient); err != nil {
		s.log.Warn().Err(err).Msg("send dedup check failed, proceeding")
	} else if isDup {
		metrics.NotificationSendErrorsTotal.WithLabelValues("duplicate").Inc()
		return nil, domain.ErrDuplicateNotification
	}
	if err := s.dedup.Mark(ctx, in.CreatedBy, in.Title, in.Message, recipient); err != nil {
		s.log.Warn().Err(err).Msg("failed to set send dedup key")
	}

	notification := &domain.Notification{
		Title:         in.Title,
		Message:       in.Message,
		Type:          domain.NotificationType(typ),
		RecipientID:   in.RecipientID,
		RecipientRole: role,
		CreatedBy:     in.CreatedBy,
		CreatedAt:     time.Now().UTC(),
	}

	id, err := s.store.Insert(ctx, notification)
	if err != nil {
		metrics.NotificationSendErrorsTotal.WithLabelValues("store_error").Inc()
		return nil, fmt.Errorf("persist notification: %w", err)
	}
	notification.ID = id

	audience, err := s.resolveAudience(ctx, notification)
	if err != nil {
		metrics.NotificationSendErrorsTotal.WithLabelValues("audience_error").Inc()
		return nil, fmt.Errorf("resolve audience: %w", err)
	}

	payload := realtime.NewNotificationData(notification.ID, notification.Title, notification.Message, typ, notification.CreatedAt)

	deliveredLive := 0
	for _, userID := range audience {
		if n := s.publisher.Publish(realtime.UserRoom(userID), realtime.EventNotification, payload); n > 0 {
			deliveredLive++
		}
	}

	mode := notification.Mode()
	metrics.NotificationsSentTotal.WithLabelValues(string(mode)).Inc()
	metrics.NotificationsDeliveredLiveTotal.Add(float64(deliveredLive))

	s.log.Info().
		Str("notification_id", notification.ID).
		Str("mode", string(mode)).
		Int("targeted", len(audience)).
		Int("delivered_live", deliveredLive).
		Msg("notification sent")

	return &ports.SendResult{
		NotificationID:     notification.ID,
		TotalTargeted:      len(audience),
		TotalDeliveredLive: deliveredLive,
	}, nil
}

// resolveAudience computes the target user ids from the addressing mode
// against the current user population. Role-scoped audiences are re-checked
// against the store immediately before emission: any id whose role no longer
// matches is dropped and logged, never delivered to.
func (s *notificationService) resolveAudience(ctx context.Context, n *domain.Notification) ([]string, error) {
	switch n.Mode() {
	case domain.AddressUser:
		// The single recipient is targeted whether or not they are
		// connected; offline delivery happens via backfill.
		return []string{n.RecipientID}, nil

	case domain.AddressAll:
		users, err := s.users.FindActiveUsers(ctx)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(users))
		for _, u := range users {
			ids = append(ids, u.ID)
		}
		return ids, nil

	case domain.AddressRole:
		users, err := s.users.FindActiveUsersByRole(ctx, n.RecipientRole)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(users))
		for _, u := range users {
			ids = append(ids, u.ID)
		}
		return s.recheckRoles(ctx, ids, n.RecipientRole)
	}

	return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRecipientRole, n.RecipientRole)
}

// recheckRoles guards against the population changing between audience
// resolution and emission.
func (s *notificationService) recheckRoles(ctx context.Context, ids []string, role string) ([]string, error) {
	if len(ids) == 0 {
		return ids, nil
	}

	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]string, len(users))
	for _, u := range users {
		byID[u.ID] = u.Role
	}

	kept := ids[:0]
	for _, id := range ids {
		if byID[id] == role {
			kept = append(kept, id)
			continue
		}
		metrics.AudienceAnomaliesTotal.Inc()
		s.log.Warn().Str("user_id", id).Str("expected_role", role).Str("actual_role", byID[id]).
			Msg("recipient dropped: role changed after audience resolution")
	}
	return kept, nil
}

// normalizeRecipientRole trims and lowercases the requested role. An empty
// role means broadcast when no specific recipient is named. Anything outside
// patient|doctor|admin|all is a configuration error: the send fails closed
// rather than widening to a broadcast.
func normalizeRecipientRole(role, recipientID string) (string, error) {
	if recipientID != "" {
		// Specific recipient wins; the role is discarded so the stored
		// notification never matches a role cohort on backfill.
		return "", nil
	}
	normalized := strings.TrimSpace(strings.ToLower(role))
	if normalized == "" {
		return domain.RoleAll, nil
	}
	if normalized != domain.RoleAll && !domain.ValidUserRole(normalized) {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidRecipientRole, role)
	}
	return normalized, nil
}
