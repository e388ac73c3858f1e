package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoinRoom      = "join_room"
	InboundTypeLeaveRoom     = "leave_room"
	InboundTypeSendMessage   = "send_message"
	InboundTypeTypingStart   = "typing_start"
	InboundTypeTypingStop    = "typing_stop"
	InboundTypeEditMessage   = "edit_message"
	InboundTypeDeleteMessage = "delete_message"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventJoinedRoom     = "joined_room"
	EventLeftRoom       = "left_room"
	EventUsersOnline    = "users_online"
	EventNewMessage     = "new_message"
	EventUserTyping     = "user_typing"
	EventUserStopTyping = "user_stop_typing"
	EventMessageEdited  = "message_edited"
	EventMessageDeleted = "message_deleted"
)

// RoomData carries a room code for join/leave/typing requests.
type RoomData struct {
	Room string `json:"room"`
}

// SendMessageData is a chat message from the client.
type SendMessageData struct {
	Room        string `json:"room"`
	Content     string `json:"content"`
	MessageType string `json:"messageType,omitempty"`
}

// EditMessageData requests an edit of an existing message.
type EditMessageData struct {
	MessageID int64  `json:"messageId"`
	Content   string `json:"content"`
	Room      string `json:"room"`
}

// DeleteMessageData requests deletion of an existing message.
type DeleteMessageData struct {
	MessageID int64  `json:"messageId"`
	Room      string `json:"room"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// RoomAck acknowledges a join or leave to the requester only.
type RoomAck struct {
	Room string `json:"room"`
}

// OnlineUser is one entry of the presence roster.
type OnlineUser struct {
	SessionID string `json:"sessionId"`
	UserID    int64  `json:"userId"`
	Username  string `json:"username"`
}

// MessagePayload is the full message object carried by new_message and
// message_edited broadcasts.
type MessagePayload struct {
	ID          int64  `json:"id"`
	Room        string `json:"room"`
	SenderID    int64  `json:"senderId"`
	Sender      string `json:"sender"`
	Content     string `json:"content"`
	MessageType string `json:"messageType"`
	IsEdited    bool   `json:"isEdited"`
	EditedAt    *int64 `json:"editedAt,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
}

// TypingPayload identifies the typing user in user_typing/user_stop_typing.
type TypingPayload struct {
	Room     string `json:"room"`
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

// MessageDeletedPayload carries only the id of the deleted message.
type MessageDeletedPayload struct {
	MessageID int64 `json:"messageId"`
}

// Error describes an operation-scoped error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
