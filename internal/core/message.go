package core

import (
	"time"

	"github.com/whisperspace/server/internal/store"
)

// Message is the domain model for a chat message, enriched with the sender's
// display name for broadcast.
type Message struct {
	ID        int64
	Room      string
	SenderID  int64
	Sender    string
	Content   string
	Type      store.MessageType
	IsEdited  bool
	EditedAt  *time.Time
	CreatedAt time.Time
}

func messageFromRecord(rec *store.Message, sender string) *Message {
	return &Message{
		ID:        rec.ID,
		Room:      rec.Room,
		SenderID:  rec.SenderID,
		Sender:    sender,
		Content:   rec.Content,
		Type:      rec.Type,
		IsEdited:  rec.IsEdited,
		EditedAt:  rec.EditedAt,
		CreatedAt: rec.CreatedAt,
	}
}
