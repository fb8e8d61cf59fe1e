package ports

// Publisher pushes an event to every live connection currently joined to a
// room. It returns the number of connections the payload was handed to; zero
// means the room has no members (the user is offline), which is never an
// error on this path.
type Publisher interface {
	Publish(roomKey, event string, payload any) int
}
