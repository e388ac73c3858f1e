package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// User represents a registered or guest user.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	IsGuest      bool
	CreatedAt    time.Time
}

// Room represents a persistent chat room. Code is the canonical identifier:
// fixed-length uppercase alphanumeric. EmptyAt is set when the member set
// becomes empty and cleared when someone joins; the reaper keys on it.
type Room struct {
	ID        int64
	Code      string
	Name      string
	PINHash   string
	CreatorID int64
	IsActive  bool
	EmptyAt   *time.Time
	CreatedAt time.Time
}

// MessageType enumerates supported message payloads.
type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeEmoji MessageType = "emoji"
	MessageTypeImage MessageType = "image"
)

// Message represents a persisted chat message, scoped to a room code.
type Message struct {
	ID        int64
	Room      string
	SenderID  int64
	Content   string
	Type      MessageType
	IsEdited  bool
	EditedAt  *time.Time
	CreatedAt time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)

	// CreateGuestUser creates a temporary guest user.
	CreateGuestUser(ctx context.Context, username string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)
}

// RoomStore handles room persistence, the persistent member set and the
// empty-room bookkeeping the reaper depends on.
type RoomStore interface {
	// CreateRoom creates a room and adds the creator as its first member.
	// The ID field of the passed room is filled on success.
	CreateRoom(ctx context.Context, room *Room) error

	// GetRoomByCode retrieves a room by its canonical uppercase code.
	GetRoomByCode(ctx context.Context, code string) (*Room, error)

	// AddMember adds a user to the room's member set, clears empty_at and
	// re-activates the room.
	AddMember(ctx context.Context, code string, userID int64) error

	// RemoveMember removes a user from the member set and returns the number
	// of remaining members. When the set becomes empty the room is marked
	// inactive with empty_at set to now.
	RemoveMember(ctx context.Context, code string, userID int64) (int, error)

	// IsMember reports whether the user belongs to the room's member set.
	IsMember(ctx context.Context, code string, userID int64) (bool, error)

	// FindRoomsEmptySince returns inactive rooms whose empty_at is set and
	// strictly older than cutoff.
	FindRoomsEmptySince(ctx context.Context, cutoff time.Time) ([]*Room, error)

	// DeleteRoom removes the room record and its member set.
	DeleteRoom(ctx context.Context, code string) error
}

// MessageStore handles message persistence.
type MessageStore interface {
	// CreateMessage persists a message. The ID field is filled on success.
	CreateMessage(ctx context.Context, msg *Message) error

	// GetMessageByID retrieves a message by ID.
	GetMessageByID(ctx context.Context, id int64) (*Message, error)

	// UpdateMessage persists edited content and edit flags.
	UpdateMessage(ctx context.Context, msg *Message) error

	// DeleteMessage removes a single message.
	DeleteMessage(ctx context.Context, id int64) error

	// DeleteMessagesByRoom removes every message scoped to the room code and
	// returns the number of rows removed.
	DeleteMessagesByRoom(ctx context.Context, code string) (int64, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	RoomStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
