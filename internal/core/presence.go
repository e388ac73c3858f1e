package core

import "sync"

// OnlineUser is the presence projection of one live session. A user connected
// from several devices appears once per connection.
type OnlineUser struct {
	SessionID string
	UserID    int64
	Username  string
}

// PresenceRegistry is the process-wide mapping from session id to its online
// user projection. At most one entry per session id.
type PresenceRegistry struct {
	mu       sync.RWMutex
	sessions map[string]OnlineUser
}

// NewPresenceRegistry constructs an empty registry.
func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{sessions: make(map[string]OnlineUser)}
}

// Register records a live session. Re-registering a session id overwrites its entry.
func (p *PresenceRegistry) Register(sessionID string, userID int64, username string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions[sessionID] = OnlineUser{SessionID: sessionID, UserID: userID, Username: username}
}

// Unregister drops a session. Unknown ids are a no-op.
func (p *PresenceRegistry) Unregister(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.sessions, sessionID)
}

// Snapshot returns an atomic copy of the roster, order unspecified.
func (p *PresenceRegistry) Snapshot() []OnlineUser {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]OnlineUser, 0, len(p.sessions))
	for _, u := range p.sessions {
		out = append(out, u)
	}
	return out
}

// Len returns the number of registered sessions.
func (p *PresenceRegistry) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.sessions)
}
