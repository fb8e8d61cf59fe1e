// Package realtime implements the live notification delivery layer: a room
// registry mapping user-derived room keys to websocket connections, the
// per-connection lifecycle (join, backfill, disconnect), and event fan-out
// into rooms.
package realtime

import "sync"

// UserRoom derives the room key for a user id. Every connection belonging to
// the same user joins the same room.
func UserRoom(userID string) string {
	return "user-" + userID
}

// Registry is an in-memory multimap from room key to the set of live
// connection ids, with a reverse index for O(1) cleanup on disconnect.
// It is the only mutable shared state of the delivery layer; all access
// goes through its methods, which serialize under a single lock.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]struct{}
	conns map[string]string // connection id -> room key
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]map[string]struct{}),
		conns: make(map[string]string),
	}
}

// Join places the connection in roomKey. Idempotent: joining the current
// room again is a no-op, and joining a different room atomically moves the
// connection out of its previous room. A connection belongs to at most one
// room at a time.
func (r *Registry) Join(connID, roomKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.conns[connID]; ok {
		if prev == roomKey {
			return
		}
		r.removeLocked(connID, prev)
	}

	members, ok := r.rooms[roomKey]
	if !ok {
		members = make(map[string]struct{})
		r.rooms[roomKey] = members
	}
	members[connID] = struct{}{}
	r.conns[connID] = roomKey
}

// Leave removes the connection from whatever room it is in. No-op when the
// connection never joined.
func (r *Registry) Leave(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.conns[connID]
	if !ok {
		return
	}
	r.removeLocked(connID, room)
}

func (r *Registry) removeLocked(connID, roomKey string) {
	delete(r.conns, connID)
	if members, ok := r.rooms[roomKey]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(r.rooms, roomKey)
		}
	}
}

// MembersOf returns a snapshot of the connection ids currently in roomKey.
// Connections may disconnect concurrently with iteration over the snapshot.
func (r *Registry) MembersOf(roomKey string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[roomKey]
	if len(members) == 0 {
		return nil
	}
	out := make([]string, 0, len(members))
	for id := range members {
		out = append(out, id)
	}
	return out
}

// RoomExists reports whether at least one live connection is in roomKey.
func (r *Registry) RoomExists(roomKey string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomKey]) > 0
}

// RoomOf returns the room the connection is joined to, if any.
func (r *Registry) RoomOf(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.conns[connID]
	return room, ok
}
