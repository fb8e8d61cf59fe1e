package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/careconnect/healthcare-portal/internal/core/domain"
	"github.com/careconnect/healthcare-portal/internal/core/ports"
)

type stubUserStore struct {
	users map[string]*domain.User
}

func (s *stubUserStore) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	return user, nil
}

func (s *stubUserStore) FindByEmail(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (s *stubUserStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (s *stubUserStore) FindByIDs(context.Context, []string) ([]*domain.User, error) {
	return nil, nil
}

func (s *stubUserStore) FindActiveUsersByRole(context.Context, string) ([]*domain.User, error) {
	return nil, nil
}

func (s *stubUserStore) FindActiveUsers(context.Context) ([]*domain.User, error) {
	return nil, nil
}

func (s *stubUserStore) FindPendingDoctors(context.Context) ([]*domain.User, error) {
	return nil, nil
}

func (s *stubUserStore) UpdateStatus(context.Context, string, string) error {
	return nil
}

func newTestHub(users *stubUserStore, store ports.NotificationRepository) *Hub {
	if store == nil {
		store = &stubNotificationStore{}
	}
	backfill := NewBackfill(store, 0, 0, zerolog.Nop())
	return NewHub(NewRegistry(), users, backfill, 0, zerolog.Nop())
}

// addTestClient registers a client the way Attach does, without websocket
// pumps. Frames land in the send channel for inspection.
func addTestClient(h *Hub, id string) *Client {
	c := &Client{id: id, hub: h, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[id] = c
	h.mu.Unlock()
	return c
}

func drainFrames(c *Client) [][]byte {
	var frames [][]byte
	for {
		select {
		case frame := <-c.send:
			frames = append(frames, frame)
		default:
			return frames
		}
	}
}

func decodeFrame(t *testing.T, frame []byte) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		t.Fatalf("invalid frame: %v", err)
	}
	return env
}

func TestHub_JoinUnknownUserRefused(t *testing.T) {
	h := newTestHub(&stubUserStore{users: map[string]*domain.User{}}, nil)
	c := addTestClient(h, "conn-1")

	h.handleJoin(c, "ghost")

	if _, ok := h.registry.RoomOf(c.id); ok {
		t.Fatalf("connection must stay unjoined when the identity does not resolve")
	}
	if frames := drainFrames(c); len(frames) != 0 {
		t.Fatalf("expected no frames on a refused join, got %d", len(frames))
	}
}

func TestHub_JoinInactiveUserRefusedThenRetryable(t *testing.T) {
	doctor := &domain.User{ID: "d1", Role: domain.RoleDoctor, Status: domain.StatusPending}
	h := newTestHub(&stubUserStore{users: map[string]*domain.User{"d1": doctor}}, nil)
	c := addTestClient(h, "conn-1")

	h.handleJoin(c, "d1")

	if _, ok := h.registry.RoomOf(c.id); ok {
		t.Fatalf("pending account must not join its room")
	}
	if frames := drainFrames(c); len(frames) != 0 {
		t.Fatalf("expected no frames on a refused join, got %d", len(frames))
	}

	// The connection survives the refusal; a retry after approval succeeds.
	doctor.Status = domain.StatusActive
	h.handleJoin(c, "d1")

	room, ok := h.registry.RoomOf(c.id)
	if !ok || room != UserRoom("d1") {
		t.Fatalf("expected membership in %q after retry, got %q %v", UserRoom("d1"), room, ok)
	}
}

func TestHub_JoinActiveUserBackfillsAndAcks(t *testing.T) {
	store := &stubNotificationStore{notifications: []*domain.Notification{
		notificationAt("n-old", 2*time.Hour),
		notificationAt("n-new", time.Hour),
	}}
	user := &domain.User{ID: "p1", Role: domain.RolePatient, Status: domain.StatusActive}
	h := newTestHub(&stubUserStore{users: map[string]*domain.User{"p1": user}}, store)

	joining := addTestClient(h, "conn-1")
	bystander := addTestClient(h, "conn-2")
	h.registry.Join(bystander.id, UserRoom("p2"))

	h.handleJoin(joining, "p1")

	if members := h.registry.MembersOf(UserRoom("p1")); len(members) != 1 || members[0] != joining.id {
		t.Fatalf("expected the joining connection in the user's room, got: %v", members)
	}

	frames := drainFrames(joining)
	if len(frames) != 3 {
		t.Fatalf("expected 2 backfilled frames plus the ack, got %d", len(frames))
	}
	for _, frame := range frames[:2] {
		if env := decodeFrame(t, frame); env.Event != EventNotification {
			t.Fatalf("expected %q before the ack, got %q", EventNotification, env.Event)
		}
	}

	env := decodeFrame(t, frames[2])
	if env.Event != EventRoomJoined {
		t.Fatalf("expected %q last, got %q", EventRoomJoined, env.Event)
	}
	var ack RoomJoinedData
	if err := json.Unmarshal(env.Data, &ack); err != nil {
		t.Fatalf("invalid ack payload: %v", err)
	}
	if ack.RoomName != UserRoom("p1") || ack.UserID != "p1" {
		t.Fatalf("unexpected ack binding: %+v", ack)
	}

	if frames := drainFrames(bystander); len(frames) != 0 {
		t.Fatalf("ack and backfill must reach the joining connection only, bystander got %d frames", len(frames))
	}
}

func TestHub_PublishReachesRoomMembersOnly(t *testing.T) {
	h := newTestHub(&stubUserStore{}, nil)

	member := addTestClient(h, "conn-1")
	other := addTestClient(h, "conn-2")
	h.registry.Join(member.id, UserRoom("p1"))
	h.registry.Join(other.id, UserRoom("p2"))

	if n := h.Publish(UserRoom("p1"), EventNotification, NewNotificationData("n1", "t", "m", "info", time.Now())); n != 1 {
		t.Fatalf("expected 1 connection reached, got %d", n)
	}
	if frames := drainFrames(member); len(frames) != 1 {
		t.Fatalf("expected the member to receive the frame, got %d", len(frames))
	}
	if frames := drainFrames(other); len(frames) != 0 {
		t.Fatalf("frame leaked outside the room")
	}

	if n := h.Publish(UserRoom("empty"), EventNotification, NewNotificationData("n2", "t", "m", "info", time.Now())); n != 0 {
		t.Fatalf("expected 0 for an empty room, got %d", n)
	}
}

func TestHub_DisconnectIdempotent(t *testing.T) {
	h := newTestHub(&stubUserStore{}, nil)
	c := addTestClient(h, "conn-1")
	h.registry.Join(c.id, UserRoom("p1"))

	h.disconnect(c)
	h.disconnect(c) // second call must be a no-op

	if h.registry.RoomExists(UserRoom("p1")) {
		t.Fatalf("room must be empty after disconnect")
	}
	if n := h.Publish(UserRoom("p1"), EventNotification, NewNotificationData("n1", "t", "m", "info", time.Now())); n != 0 {
		t.Fatalf("expected no deliveries after disconnect, got %d", n)
	}
}

func TestHub_ConcurrentPublishAndDisconnect(t *testing.T) {
	h := newTestHub(&stubUserStore{}, nil)
	payload := NewNotificationData("n1", "t", "m", "info", time.Now())

	// A publish racing a disconnect must never send on the closed channel;
	// the frame is either delivered or dropped with the client.
	for i := 0; i < 200; i++ {
		c := addTestClient(h, fmt.Sprintf("conn-%d", i))
		room := UserRoom(fmt.Sprintf("user-%d", i))
		h.registry.Join(c.id, room)

		var wg sync.WaitGroup
		for p := 0; p < 4; p++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 10; j++ {
					h.Publish(room, EventNotification, payload)
				}
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.disconnect(c)
		}()
		wg.Wait()

		if _, ok := h.registry.RoomOf(c.id); ok {
			t.Fatalf("connection %d still registered after disconnect", i)
		}
	}
}
