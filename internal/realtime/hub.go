package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/careconnect/healthcare-portal/internal/api/metrics"
	"github.com/careconnect/healthcare-portal/internal/core/ports"
)

const defaultJoinTimeout = 5 * time.Second

// Hub owns every live websocket connection and drives the per-connection
// lifecycle: connected (unjoined) until a valid join-room request, joined
// until disconnect. A reconnect is a brand-new connection that re-joins.
type Hub struct {
	registry    *Registry
	users       ports.UserRepository
	backfill    *Backfill
	joinTimeout time.Duration
	log         zerolog.Logger

	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub(registry *Registry, users ports.UserRepository, backfill *Backfill, joinTimeout time.Duration, log zerolog.Logger) *Hub {
	if joinTimeout <= 0 {
		joinTimeout = defaultJoinTimeout
	}
	return &Hub{
		registry:    registry,
		users:       users,
		backfill:    backfill,
		joinTimeout: joinTimeout,
		log:         log,
		clients:     make(map[string]*Client),
	}
}

// Attach wraps an upgraded websocket connection in a Client and starts its
// read and write pumps. The connection is addressable for connectivity only
// until it sends a valid join-room request.
func (h *Hub) Attach(conn *websocket.Conn) *Client {
	c := &Client{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	metrics.WSConnectionsActive.Inc()
	h.log.Debug().Str("conn_id", c.id).Msg("client connected")

	go c.writePump()
	go c.readPump()
	return c
}

// disconnect tears a connection down: leave the room, drop the client, and
// close the send channel so the write pump exits. The close happens inside
// the clients critical section; Publish enqueues under the read lock, so a
// client is either visible with an open channel or not visible at all.
func (h *Hub) disconnect(c *Client) {
	h.mu.Lock()
	_, known := h.clients[c.id]
	if known {
		delete(h.clients, c.id)
		close(c.send)
	}
	h.mu.Unlock()

	if !known {
		return
	}

	h.registry.Leave(c.id)
	metrics.WSConnectionsActive.Dec()
	h.log.Debug().Str("conn_id", c.id).Msg("client disconnected")
}

func (h *Hub) handleEvent(c *Client, env Envelope) {
	switch env.Event {
	case EventJoinRoom:
		var data JoinRoomData
		if err := json.Unmarshal(env.Data, &data); err != nil || data.UserID == "" {
			h.log.Warn().Str("conn_id", c.id).Msg("join-room with invalid payload")
			return
		}
		h.handleJoin(c, data.UserID)
	default:
		h.log.Debug().Str("conn_id", c.id).Str("event", env.Event).Msg("unknown client event")
	}
}

// handleJoin validates the claimed identity against the user store, joins
// the connection to the user's room, replays recent notifications to this
// connection only, and acks the binding. A failed validation leaves the
// connection unjoined; the client may retry.
func (h *Hub) handleJoin(c *Client, userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), h.joinTimeout)
	defer cancel()

	user, err := h.users.FindByID(ctx, userID)
	if err != nil {
		h.log.Warn().Err(err).Str("conn_id", c.id).Str("user_id", userID).Msg("join refused: unresolvable identity")
		return
	}
	if !user.IsActive() {
		h.log.Warn().Str("conn_id", c.id).Str("user_id", userID).Msg("join refused: inactive user")
		return
	}

	room := UserRoom(user.ID)
	h.registry.Join(c.id, room)
	h.log.Info().Str("conn_id", c.id).Str("room", room).Msg("connection joined room")

	// Backfill goes to this connection only. Repeated joins on the same
	// connection re-trigger it; clients deduplicate by notification id.
	if n, err := h.backfill.Replay(ctx, user, c.enqueue); err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("backfill failed")
	} else if n > 0 {
		h.log.Info().Int("count", n).Str("user_id", user.ID).Msg("backfilled notifications")
	}

	ack, err := Encode(EventRoomJoined, RoomJoinedData{RoomName: room, UserID: user.ID})
	if err != nil {
		h.log.Error().Err(err).Msg("encode room-joined ack")
		return
	}
	c.enqueue(ack)
}

// Publish fans an event out to every live connection in roomKey and returns
// the number of connections reached. Zero members means the user is offline;
// the notification stays retrievable through the store.
func (h *Hub) Publish(roomKey, event string, payload any) int {
	frame, err := Encode(event, payload)
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("encode event")
		return 0
	}

	// The read lock is held across the enqueue so a concurrent disconnect
	// cannot close the channel between the lookup and the send. enqueue
	// never blocks, so the hold is bounded.
	delivered := 0
	h.mu.RLock()
	for _, connID := range h.registry.MembersOf(roomKey) {
		c, ok := h.clients[connID]
		if !ok {
			// Disconnected between snapshot and lookup.
			continue
		}
		if c.enqueue(frame) {
			delivered++
		} else {
			h.log.Warn().Str("conn_id", connID).Str("room", roomKey).Msg("send buffer full, frame dropped")
		}
	}
	h.mu.RUnlock()
	return delivered
}

// Shutdown closes every live connection. Pump teardown handles the rest.
func (h *Hub) Shutdown() {
	h.mu.RLock()
	conns := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		c.conn.Close()
	}
}
