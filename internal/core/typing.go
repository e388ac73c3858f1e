package core

import "sync"

// TypingEntry is one user currently typing in a room.
type TypingEntry struct {
	Room     string
	UserID   int64
	Username string
}

// TypingTracker holds the per-room set of typing users. The tracker runs no
// timers of its own: expiry on inactivity is a client contract, but every
// room-leave or disconnect is treated as an implicit stop so entries cannot
// outlive the session that created them.
type TypingTracker struct {
	mu    sync.Mutex
	rooms map[string]map[int64]TypingEntry // room code -> user id -> entry
}

// NewTypingTracker constructs an empty tracker.
func NewTypingTracker() *TypingTracker {
	return &TypingTracker{rooms: make(map[string]map[int64]TypingEntry)}
}

// Start upserts a typing entry. Returns true if the user was not already
// typing in the room; repeated starts collapse.
func (t *TypingTracker) Start(room string, userID int64, username string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.rooms[room] == nil {
		t.rooms[room] = make(map[int64]TypingEntry)
	}
	_, existed := t.rooms[room][userID]
	t.rooms[room][userID] = TypingEntry{Room: room, UserID: userID, Username: username}
	return !existed
}

// Stop removes a typing entry. Returns false if the user was not typing.
func (t *TypingTracker) Stop(room string, userID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopLocked(room, userID)
}

func (t *TypingTracker) stopLocked(room string, userID int64) bool {
	if _, ok := t.rooms[room][userID]; !ok {
		return false
	}
	delete(t.rooms[room], userID)
	if len(t.rooms[room]) == 0 {
		delete(t.rooms, room)
	}
	return true
}

// StopAll clears the user's typing state in each given room and returns the
// entries that were actually removed.
func (t *TypingTracker) StopAll(userID int64, rooms []string) []TypingEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	var removed []TypingEntry
	for _, room := range rooms {
		if entry, ok := t.rooms[room][userID]; ok {
			t.stopLocked(room, userID)
			removed = append(removed, entry)
		}
	}
	return removed
}

// TypingIn returns the users currently typing in a room.
func (t *TypingTracker) TypingIn(room string) []TypingEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TypingEntry, 0, len(t.rooms[room]))
	for _, entry := range t.rooms[room] {
		out = append(out, entry)
	}
	return out
}
