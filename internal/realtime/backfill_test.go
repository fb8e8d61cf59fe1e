package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/careconnect/healthcare-portal/internal/core/domain"
	"github.com/careconnect/healthcare-portal/internal/core/ports"
)

type stubNotificationStore struct {
	notifications []*domain.Notification
	lastFilter    ports.RecentNotificationsFilter
	lastLimit     int
	queryErr      error
}

func (s *stubNotificationStore) Insert(_ context.Context, n *domain.Notification) (string, error) {
	s.notifications = append(s.notifications, n)
	return fmt.Sprintf("id-%d", len(s.notifications)), nil
}

func (s *stubNotificationStore) QueryRecent(_ context.Context, filter ports.RecentNotificationsFilter, limit int) ([]*domain.Notification, error) {
	s.lastFilter = filter
	s.lastLimit = limit
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	// Newest first, honoring Since and limit, as the real store does.
	out := make([]*domain.Notification, 0, len(s.notifications))
	for i := len(s.notifications) - 1; i >= 0; i-- {
		n := s.notifications[i]
		if n.CreatedAt.Before(filter.Since) {
			continue
		}
		out = append(out, n)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func notificationAt(id string, age time.Duration) *domain.Notification {
	return &domain.Notification{
		ID:            id,
		Title:         "t-" + id,
		Message:       "m-" + id,
		Type:          domain.TypeInfo,
		RecipientRole: domain.RoleAll,
		CreatedAt:     time.Now().UTC().Add(-age),
	}
}

func TestBackfill_ReplaysWithinWindowNewestFirst(t *testing.T) {
	store := &stubNotificationStore{notifications: []*domain.Notification{
		notificationAt("stale", 8*24*time.Hour),
		notificationAt("old", 6*24*time.Hour),
		notificationAt("fresh", time.Hour),
	}}
	b := NewBackfill(store, 7*24*time.Hour, 50, zerolog.Nop())

	var frames [][]byte
	sent, err := b.Replay(context.Background(), &domain.User{ID: "u1", Role: domain.RolePatient}, func(frame []byte) bool {
		frames = append(frames, frame)
		return true
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sent != 2 {
		t.Fatalf("expected 2 replayed notifications, got %d", sent)
	}

	var first Envelope
	if err := json.Unmarshal(frames[0], &first); err != nil {
		t.Fatalf("decoding frame: %v", err)
	}
	if first.Event != EventNotification {
		t.Fatalf("expected %q event, got %q", EventNotification, first.Event)
	}
	var data NotificationData
	if err := json.Unmarshal(first.Data, &data); err != nil {
		t.Fatalf("decoding payload: %v", err)
	}
	if data.ID != "fresh" {
		t.Fatalf("expected newest notification first, got %q", data.ID)
	}
	if data.Read {
		t.Fatalf("backfilled notifications must be presented unread")
	}

	if store.lastFilter.UserID != "u1" || store.lastFilter.Role != domain.RolePatient {
		t.Fatalf("unexpected filter: %+v", store.lastFilter)
	}
}

func TestBackfill_CapsReplayCount(t *testing.T) {
	store := &stubNotificationStore{}
	for i := 0; i < 60; i++ {
		store.notifications = append(store.notifications, notificationAt(fmt.Sprintf("n-%d", i), time.Duration(i)*time.Minute))
	}
	b := NewBackfill(store, 7*24*time.Hour, 50, zerolog.Nop())

	sent, err := b.Replay(context.Background(), &domain.User{ID: "u1", Role: domain.RoleDoctor}, func([]byte) bool { return true })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sent != 50 {
		t.Fatalf("expected replay capped at 50, got %d", sent)
	}
	if store.lastLimit != 50 {
		t.Fatalf("expected limit 50 passed to the store, got %d", store.lastLimit)
	}
}

func TestBackfill_DefaultsWindowAndLimit(t *testing.T) {
	store := &stubNotificationStore{}
	b := NewBackfill(store, 0, 0, zerolog.Nop())

	if _, err := b.Replay(context.Background(), &domain.User{ID: "u1", Role: domain.RolePatient}, func([]byte) bool { return true }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.lastLimit != 50 {
		t.Fatalf("expected default limit 50, got %d", store.lastLimit)
	}
	wantSince := time.Now().UTC().Add(-7 * 24 * time.Hour)
	if diff := store.lastFilter.Since.Sub(wantSince); diff < -time.Minute || diff > time.Minute {
		t.Fatalf("expected default 7 day window, got since=%v", store.lastFilter.Since)
	}
}

func TestBackfill_QueryErrorPropagates(t *testing.T) {
	store := &stubNotificationStore{queryErr: errors.New("mongo down")}
	b := NewBackfill(store, 0, 0, zerolog.Nop())

	if _, err := b.Replay(context.Background(), &domain.User{ID: "u1", Role: domain.RolePatient}, func([]byte) bool { return true }); err == nil {
		t.Fatalf("expected error when the store fails")
	}
}

func TestBackfill_CountsOnlyAcceptedFrames(t *testing.T) {
	store := &stubNotificationStore{notifications: []*domain.Notification{
		notificationAt("a", time.Minute),
		notificationAt("b", 2*time.Minute),
	}}
	b := NewBackfill(store, 0, 0, zerolog.Nop())

	calls := 0
	sent, err := b.Replay(context.Background(), &domain.User{ID: "u1", Role: domain.RolePatient}, func([]byte) bool {
		calls++
		return calls == 1 // second frame hits a full buffer
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sent != 1 {
		t.Fatalf("expected 1 accepted frame counted, got %d", sent)
	}
}
