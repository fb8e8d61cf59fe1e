package realtime

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEncode_Envelope(t *testing.T) {
	frame, err := Encode(EventRoomJoined, RoomJoinedData{RoomName: "user-u1", UserID: "u1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		t.Fatalf("invalid frame: %v", err)
	}
	if env.Event != EventRoomJoined {
		t.Fatalf("expected %q, got %q", EventRoomJoined, env.Event)
	}

	var data RoomJoinedData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("invalid payload: %v", err)
	}
	if data.RoomName != "user-u1" || data.UserID != "u1" {
		t.Fatalf("unexpected payload: %+v", data)
	}
}

func TestNewNotificationData_Timestamp(t *testing.T) {
	createdAt := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	data := NewNotificationData("n1", "t", "m", "info", createdAt)

	if data.Timestamp != "2026-03-14T15:09:26Z" {
		t.Fatalf("expected RFC3339 UTC timestamp, got %q", data.Timestamp)
	}
	if data.Read {
		t.Fatalf("notifications are always pushed unread")
	}
}

func TestUserRoom_Key(t *testing.T) {
	if got := UserRoom("abc123"); got != "user-abc123" {
		t.Fatalf("unexpected room key: %q", got)
	}
}
