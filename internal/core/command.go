package core

import "github.com/whisperspace/server/internal/store"

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoinRoom subscribes the session to a room's multicast group.
	CommandJoinRoom CommandKind = iota
	// CommandLeaveRoom unsubscribes the session from a room.
	CommandLeaveRoom
	// CommandSendMessage persists and fans out a chat message.
	CommandSendMessage
	// CommandTypingStart marks the sender as typing in a room.
	CommandTypingStart
	// CommandTypingStop clears the sender's typing state in a room.
	CommandTypingStop
	// CommandEditMessage edits a previously sent message.
	CommandEditMessage
	// CommandDeleteMessage deletes a previously sent message.
	CommandDeleteMessage
)

// Command represents an action requested by a session.
type Command struct {
	Kind        CommandKind
	Room        string
	Content     string
	MessageType store.MessageType
	MessageID   int64
}
