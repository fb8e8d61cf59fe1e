package realtime

import (
	"encoding/json"
	"time"
)

// Event names exchanged over the websocket channel.
const (
	EventJoinRoom             = "join-room"
	EventRoomJoined           = "room-joined"
	EventNotification         = "notification"
	EventNewAppointment       = "new-appointment"
	EventAppointmentUpdated   = "appointment-updated"
	EventAppointmentCancelled = "appointment-cancelled"
	EventPrescriptionCreated  = "prescription-created"
)

// Envelope is the wire format for every message in either direction.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// JoinRoomData is the client's request to bind its connection to the user's
// room.
type JoinRoomData struct {
	UserID string `json:"userId"`
}

// RoomJoinedData acknowledges a successful join to the joining connection
// only, echoing the binding so the client can verify it.
type RoomJoinedData struct {
	RoomName string `json:"roomName"`
	UserID   string `json:"userId"`
}

// NotificationData is the notification payload pushed to clients. The shape
// is identical on the live path and the backfill path.
type NotificationData struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Read      bool   `json:"read"`
}

// NewNotificationData builds the wire payload for a notification.
func NewNotificationData(id, title, message, typ string, createdAt time.Time) NotificationData {
	return NotificationData{
		ID:        id,
		Title:     title,
		Message:   message,
		Type:      typ,
		Timestamp: createdAt.UTC().Format(time.RFC3339),
		Read:      false,
	}
}

// Encode marshals an event and its payload into the wire envelope.
func Encode(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
