package core

import "sync"

// MembershipTracker maps room codes to the sessions subscribed to them.
// Both directions of the mapping are updated under one lock so they can
// never diverge.
type MembershipTracker struct {
	mu       sync.RWMutex
	rooms    map[string]map[string]struct{} // room code -> session ids
	sessions map[string]map[string]struct{} // session id -> room codes
}

// NewMembershipTracker constructs an empty tracker.
func NewMembershipTracker() *MembershipTracker {
	return &MembershipTracker{
		rooms:    make(map[string]map[string]struct{}),
		sessions: make(map[string]map[string]struct{}),
	}
}

// Join subscribes a session to a room. Returns false if it was already subscribed.
func (m *MembershipTracker) Join(sessionID, room string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rooms[room][sessionID]; ok {
		return false
	}
	if m.rooms[room] == nil {
		m.rooms[room] = make(map[string]struct{})
	}
	if m.sessions[sessionID] == nil {
		m.sessions[sessionID] = make(map[string]struct{})
	}
	m.rooms[room][sessionID] = struct{}{}
	m.sessions[sessionID][room] = struct{}{}
	return true
}

// Leave unsubscribes a session from a room. Returns false if it was not subscribed.
func (m *MembershipTracker) Leave(sessionID, room string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leaveLocked(sessionID, room)
}

func (m *MembershipTracker) leaveLocked(sessionID, room string) bool {
	if _, ok := m.rooms[room][sessionID]; !ok {
		return false
	}
	delete(m.rooms[room], sessionID)
	if len(m.rooms[room]) == 0 {
		delete(m.rooms, room)
	}
	delete(m.sessions[sessionID], room)
	if len(m.sessions[sessionID]) == 0 {
		delete(m.sessions, sessionID)
	}
	return true
}

// MembersOf returns the session ids subscribed to a room at this instant.
func (m *MembershipTracker) MembersOf(room string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.rooms[room]))
	for id := range m.rooms[room] {
		out = append(out, id)
	}
	return out
}

// RoomsOf returns the room codes a session is subscribed to.
func (m *MembershipTracker) RoomsOf(sessionID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.sessions[sessionID]))
	for room := range m.sessions[sessionID] {
		out = append(out, room)
	}
	return out
}

// IsMember reports whether the session is subscribed to the room.
func (m *MembershipTracker) IsMember(sessionID, room string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.rooms[room][sessionID]
	return ok
}

// RemoveSession unsubscribes a session from every room it belonged to and
// returns those rooms.
func (m *MembershipTracker) RemoveSession(sessionID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	rooms := make([]string, 0, len(m.sessions[sessionID]))
	for room := range m.sessions[sessionID] {
		rooms = append(rooms, room)
	}
	for _, room := range rooms {
		m.leaveLocked(sessionID, room)
	}
	return rooms
}
