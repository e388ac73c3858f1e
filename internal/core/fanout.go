package core

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/whisperspace/server/internal/store"
)

// EditWindow is how long after creation a message remains editable.
// Delete has no such window: owners may delete at any age.
const EditWindow = 15 * time.Minute

// broadcastFunc delivers an event to every session currently in the room.
// An optional session id can be excluded (typing events skip the sender).
type broadcastFunc func(room string, ev *Event, exclude string)

// Fanout persists inbound messages and rebroadcasts them to the room's
// multicast group. Persistence failures are never followed by a broadcast.
type Fanout struct {
	store     store.MessageStore
	members   *MembershipTracker
	broadcast broadcastFunc
	log       *zerolog.Logger
	now       func() time.Time
}

// NewFanout constructs a fan-out engine over the given message store.
func NewFanout(st store.MessageStore, members *MembershipTracker, broadcast broadcastFunc, logger *zerolog.Logger) *Fanout {
	return &Fanout{
		store:     st,
		members:   members,
		broadcast: broadcast,
		log:       logger,
		now:       time.Now,
	}
}

// Send validates, persists and fans out a new message. The sender receives
// the broadcast too; clients reconcile by message id, not by echo suppression.
func (f *Fanout) Send(ctx context.Context, s *Session, room, content string, mtype store.MessageType) *CoreError {
	content = strings.TrimSpace(content)
	if content == "" {
		return coreError(ErrCodeValidation, "message content is empty")
	}

	switch mtype {
	case "":
		mtype = store.MessageTypeText
	case store.MessageTypeText, store.MessageTypeEmoji, store.MessageTypeImage:
	default:
		return coreError(ErrCodeValidation, "unknown message type")
	}

	if !f.members.IsMember(s.ID, room) {
		return coreError(ErrCodeForbidden, "join the room before sending")
	}

	rec := &store.Message{
		Room:      room,
		SenderID:  s.UserID,
		Content:   content,
		Type:      mtype,
		CreatedAt: f.now().UTC(),
	}
	if err := f.store.CreateMessage(ctx, rec); err != nil {
		f.log.Error().Err(err).Str("room", room).Int64("sender", s.UserID).Msg("persist message")
		return coreError(ErrCodeInternal, "failed to store message")
	}

	f.broadcast(room, &Event{
		Kind:    EventNewMessage,
		Room:    room,
		Message: messageFromRecord(rec, s.Username),
	}, "")
	return nil
}

// Edit updates a message's content. Only the original sender may edit, and
// only within EditWindow of creation.
func (f *Fanout) Edit(ctx context.Context, s *Session, messageID int64, content string) *CoreError {
	content = strings.TrimSpace(content)
	if content == "" {
		return coreError(ErrCodeValidation, "message content is empty")
	}

	rec, err := f.store.GetMessageByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return coreError(ErrCodeNotFound, "message not found")
		}
		f.log.Error().Err(err).Int64("message_id", messageID).Msg("load message")
		return coreError(ErrCodeInternal, "failed to load message")
	}

	if rec.SenderID != s.UserID {
		return coreError(ErrCodeForbidden, "only the sender can edit a message")
	}
	if f.now().Sub(rec.CreatedAt) > EditWindow {
		return coreError(ErrCodeExpired, "message is no longer editable")
	}

	editedAt := f.now().UTC()
	rec.Content = content
	rec.IsEdited = true
	rec.EditedAt = &editedAt
	if err := f.store.UpdateMessage(ctx, rec); err != nil {
		f.log.Error().Err(err).Int64("message_id", messageID).Msg("update message")
		return coreError(ErrCodeInternal, "failed to update message")
	}

	f.broadcast(rec.Room, &Event{
		Kind:    EventMessageEdited,
		Room:    rec.Room,
		Message: messageFromRecord(rec, s.Username),
	}, "")
	return nil
}

// Delete removes a message. Only the original sender may delete; unlike edit
// there is no age limit.
func (f *Fanout) Delete(ctx context.Context, s *Session, messageID int64) *CoreError {
	rec, err := f.store.GetMessageByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return coreError(ErrCodeNotFound, "message not found")
		}
		f.log.Error().Err(err).Int64("message_id", messageID).Msg("load message")
		return coreError(ErrCodeInternal, "failed to load message")
	}

	if rec.SenderID != s.UserID {
		return coreError(ErrCodeForbidden, "only the sender can delete a message")
	}

	if err := f.store.DeleteMessage(ctx, messageID); err != nil {
		f.log.Error().Err(err).Int64("message_id", messageID).Msg("delete message")
		return coreError(ErrCodeInternal, "failed to delete message")
	}

	f.broadcast(rec.Room, &Event{
		Kind:      EventMessageDeleted,
		Room:      rec.Room,
		MessageID: messageID,
	}, "")
	return nil
}
