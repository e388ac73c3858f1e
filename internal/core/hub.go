package core

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/whisperspace/server/internal/store"
)

// Storage is the slice of persistence the realtime core needs.
type Storage interface {
	store.RoomStore
	store.MessageStore
}

var roomCodePattern = regexp.MustCompile(`^[A-Z0-9]{8}$`)

// sessionCommand tags a decoded command with its originating session so a
// single loop can interleave sessions while preserving per-session order.
type sessionCommand struct {
	session *Session
	cmd     *Command
}

// Hub is the session lifecycle controller. One goroutine owns all state
// transitions: registration, room membership, typing state and teardown all
// happen on the Run loop, so no handler ever touches shared maps directly.
type Hub struct {
	store    Storage
	presence *PresenceRegistry
	members  *MembershipTracker
	typing   *TypingTracker
	fanout   *Fanout
	log      *zerolog.Logger

	register   chan *Session
	unregister chan *Session
	commands   chan sessionCommand
	sessions   map[string]*Session
	done       chan struct{}
}

// NewHub constructs a hub over the given storage.
func NewHub(st Storage, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	h := &Hub{
		store:      st,
		presence:   NewPresenceRegistry(),
		members:    NewMembershipTracker(),
		typing:     NewTypingTracker(),
		log:        logger,
		register:   make(chan *Session),
		unregister: make(chan *Session),
		commands:   make(chan sessionCommand, 64),
		sessions:   make(map[string]*Session),
		done:       make(chan struct{}),
	}
	h.fanout = NewFanout(st, h.members, h.broadcastToRoom, logger)
	return h
}

// Presence exposes the registry for observability surfaces.
func (h *Hub) Presence() *PresenceRegistry { return h.presence }

// Run processes session lifecycle and command traffic until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case s := <-h.register:
			h.handleRegister(ctx, s)
		case s := <-h.unregister:
			h.handleUnregister(s)
		case sc := <-h.commands:
			h.handleCommand(ctx, sc.session, sc.cmd)
		case <-ctx.Done():
			return
		}
	}
}

// RegisterSession admits an authenticated session into presence. The caller
// must have verified the credential already; the hub never sees tokens.
func (h *Hub) RegisterSession(s *Session) {
	select {
	case h.register <- s:
	case <-h.done:
	}
}

// UnregisterSession tears the session down. Safe to call more than once;
// teardown runs exactly once.
func (h *Hub) UnregisterSession(s *Session) {
	select {
	case h.unregister <- s:
	case <-h.done:
	}
}

func (h *Hub) handleRegister(ctx context.Context, s *Session) {
	h.sessions[s.ID] = s
	h.presence.Register(s.ID, s.UserID, s.Username)
	h.broadcastPresence()
	h.log.Debug().Str("session", s.ID).Str("user", s.Username).Msg("session registered")

	// Forward the session's commands into the single hub stream. Arrival
	// order per session is preserved by the channel.
	go func() {
		for {
			select {
			case cmd, ok := <-s.Commands:
				if !ok {
					return
				}
				select {
				case h.commands <- sessionCommand{session: s, cmd: cmd}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (h *Hub) handleUnregister(s *Session) {
	if _, ok := h.sessions[s.ID]; !ok {
		return
	}
	delete(h.sessions, s.ID)

	rooms := h.members.RemoveSession(s.ID)
	for _, entry := range h.typing.StopAll(s.UserID, rooms) {
		h.broadcastToRoom(entry.Room, &Event{
			Kind:     EventUserStopTyping,
			Room:     entry.Room,
			UserID:   entry.UserID,
			Username: entry.Username,
		}, s.ID)
	}

	h.presence.Unregister(s.ID)
	h.broadcastPresence()
	h.log.Debug().Str("session", s.ID).Str("user", s.Username).Msg("session torn down")
}

func (h *Hub) handleCommand(ctx context.Context, s *Session, cmd *Command) {
	if _, ok := h.sessions[s.ID]; !ok {
		// Command raced with teardown; the session is gone.
		return
	}

	var cerr *CoreError
	switch cmd.Kind {
	case CommandJoinRoom:
		cerr = h.joinRoom(ctx, s, cmd.Room)
	case CommandLeaveRoom:
		cerr = h.leaveRoom(s, cmd.Room)
	case CommandSendMessage:
		if code, vErr := normalizeRoomCode(cmd.Room); vErr != nil {
			cerr = vErr
		} else {
			cerr = h.fanout.Send(ctx, s, code, cmd.Content, cmd.MessageType)
		}
	case CommandTypingStart:
		cerr = h.typingStart(s, cmd.Room)
	case CommandTypingStop:
		cerr = h.typingStop(s, cmd.Room)
	case CommandEditMessage:
		cerr = h.fanout.Edit(ctx, s, cmd.MessageID, cmd.Content)
	case CommandDeleteMessage:
		cerr = h.fanout.Delete(ctx, s, cmd.MessageID)
	default:
		cerr = coreError(ErrCodeValidation, "unknown command")
	}

	if cerr != nil {
		s.send(&Event{Kind: EventError, Room: cmd.Room, Error: cerr})
	}
}

// joinRoom subscribes the session to the room's multicast group. Joining a
// room the session is already in re-sends the ack and nothing else.
func (h *Hub) joinRoom(ctx context.Context, s *Session, room string) *CoreError {
	code, cerr := normalizeRoomCode(room)
	if cerr != nil {
		return cerr
	}

	if _, err := h.store.GetRoomByCode(ctx, code); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return coreError(ErrCodeNotFound, "room not found")
		}
		h.log.Error().Err(err).Str("room", code).Msg("lookup room")
		return coreError(ErrCodeInternal, "failed to look up room")
	}

	h.members.Join(s.ID, code)
	s.send(&Event{Kind: EventJoinedRoom, Room: code})
	return nil
}

// leaveRoom unsubscribes the session; leaving a room it is not in is a no-op.
func (h *Hub) leaveRoom(s *Session, room string) *CoreError {
	code, cerr := normalizeRoomCode(room)
	if cerr != nil {
		return cerr
	}

	h.members.Leave(s.ID, code)
	if h.typing.Stop(code, s.UserID) {
		h.broadcastToRoom(code, &Event{
			Kind:     EventUserStopTyping,
			Room:     code,
			UserID:   s.UserID,
			Username: s.Username,
		}, s.ID)
	}
	s.send(&Event{Kind: EventLeftRoom, Room: code})
	return nil
}

func (h *Hub) typingStart(s *Session, room string) *CoreError {
	code, cerr := normalizeRoomCode(room)
	if cerr != nil {
		return cerr
	}
	if !h.members.IsMember(s.ID, code) {
		return nil
	}
	if h.typing.Start(code, s.UserID, s.Username) {
		h.broadcastToRoom(code, &Event{
			Kind:     EventUserTyping,
			Room:     code,
			UserID:   s.UserID,
			Username: s.Username,
		}, s.ID)
	}
	return nil
}

func (h *Hub) typingStop(s *Session, room string) *CoreError {
	code, cerr := normalizeRoomCode(room)
	if cerr != nil {
		return cerr
	}
	if h.typing.Stop(code, s.UserID) {
		h.broadcastToRoom(code, &Event{
			Kind:     EventUserStopTyping,
			Room:     code,
			UserID:   s.UserID,
			Username: s.Username,
		}, s.ID)
	}
	return nil
}

// broadcastToRoom delivers to exactly the sessions subscribed at this moment.
// Delivery is fire-and-forget per recipient; a full buffer drops, it never blocks.
func (h *Hub) broadcastToRoom(room string, ev *Event, exclude string) {
	for _, id := range h.members.MembersOf(room) {
		if id == exclude {
			continue
		}
		if sess, ok := h.sessions[id]; ok {
			sess.send(ev)
		}
	}
}

// broadcastPresence sends the full roster to every connected session.
func (h *Hub) broadcastPresence() {
	online := h.presence.Snapshot()
	for _, sess := range h.sessions {
		sess.send(&Event{Kind: EventUsersOnline, Online: online})
	}
}

// normalizeRoomCode upper-cases and validates a client-supplied room code.
// The persistent identifier is canonically uppercase, so normalization happens
// before any lookup or broadcast.
func normalizeRoomCode(room string) (string, *CoreError) {
	code := strings.ToUpper(strings.TrimSpace(room))
	if !roomCodePattern.MatchString(code) {
		return "", coreError(ErrCodeValidation, "malformed room code")
	}
	return code, nil
}
