package core

// EventKind is a notification the core emits to sessions.
type EventKind int

const (
	// EventJoinedRoom acknowledges a join to the requester only.
	EventJoinedRoom EventKind = iota
	// EventLeftRoom acknowledges a leave to the requester only.
	EventLeftRoom
	// EventUsersOnline carries the full presence roster; sent to every
	// connected session on any presence change.
	EventUsersOnline
	// EventNewMessage delivers a persisted message to a room, sender included.
	EventNewMessage
	// EventUserTyping notifies a room that a user started typing.
	EventUserTyping
	// EventUserStopTyping notifies a room that a user stopped typing.
	EventUserStopTyping
	// EventMessageEdited delivers the updated message to a room.
	EventMessageEdited
	// EventMessageDeleted notifies a room that a message was removed.
	EventMessageDeleted
	// EventError reports an operation-scoped error to the requester only.
	EventError
)

// Event is sent to sessions to describe what happened in the system.
type Event struct {
	Kind      EventKind
	Room      string
	Online    []OnlineUser
	Message   *Message
	MessageID int64
	UserID    int64
	Username  string
	Error     *CoreError
}
