package realtime

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/careconnect/healthcare-portal/internal/api/metrics"
	"github.com/careconnect/healthcare-portal/internal/core/domain"
	"github.com/careconnect/healthcare-portal/internal/core/ports"
)

const (
	defaultRetentionWindow = 7 * 24 * time.Hour
	defaultBackfillLimit   = 50
)

// Backfill replays recently created notifications to a single connection
// right after it joins its room. Notifications are always presented as
// unread; read state lives on the client.
type Backfill struct {
	store  ports.NotificationRepository
	window time.Duration
	limit  int
	log    zerolog.Logger
}

func NewBackfill(store ports.NotificationRepository, window time.Duration, limit int, log zerolog.Logger) *Backfill {
	if window <= 0 {
		window = defaultRetentionWindow
	}
	if limit <= 0 {
		limit = defaultBackfillLimit
	}
	return &Backfill{store: store, window: window, limit: limit, log: log}
}

// Replay queries the notifications addressed to the user, the user's role,
// or everyone within the retention window and pushes them, newest first,
// through send. It returns how many were pushed.
func (b *Backfill) Replay(ctx context.Context, user *domain.User, send func([]byte) bool) (int, error) {
	filter := ports.RecentNotificationsFilter{
		UserID: user.ID,
		Role:   user.Role,
		Since:  time.Now().UTC().Add(-b.window),
	}

	notifications, err := b.store.QueryRecent(ctx, filter, b.limit)
	if err != nil {
		return 0, fmt.Errorf("backfill query: %w", err)
	}

	sent := 0
	for _, n := range notifications {
		frame, err := Encode(EventNotification, NewNotificationData(n.ID, n.Title, n.Message, string(n.Type), n.CreatedAt))
		if err != nil {
			b.log.Error().Err(err).Str("notification_id", n.ID).Msg("encode backfill notification")
			continue
		}
		if send(frame) {
			sent++
		}
	}

	metrics.BackfillReplayedTotal.Add(float64(sent))
	return sent, nil
}
