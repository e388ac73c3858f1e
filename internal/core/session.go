package core

// Session is one live, authenticated realtime connection. The transport layer
// pushes decoded commands into Commands and drains Events back to the wire.
// Room membership is tracked by the hub's membership tracker, keyed by ID.
type Session struct {
	ID       string
	UserID   int64
	Username string
	Commands chan *Command
	Events   chan *Event
}

// NewSession constructs a session with initialized channels.
func NewSession(id string, userID int64, username string) *Session {
	return &Session{
		ID:       id,
		UserID:   userID,
		Username: username,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 16),
	}
}

// send delivers an event without blocking; slow consumers drop.
func (s *Session) send(ev *Event) {
	select {
	case s.Events <- ev:
	default:
	}
}
