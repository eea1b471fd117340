// Package presence tracks which users currently hold a live connection.
package presence

import "sync"

// Conn is the live connection handle recorded for an online user. The relay's
// websocket client satisfies it; tests use in-memory fakes.
type Conn interface {
	// ConnID uniquely identifies the underlying transport connection.
	ConnID() string
	// Deliver hands an encoded event to the connection without blocking.
	// It reports false when the connection can no longer accept writes.
	Deliver(payload []byte) bool
}

// Registry maps a user id to their active connection. It is owned by the
// relay hub for the lifetime of the process; entries are not persisted and
// clients re-identify after a restart.
type Registry struct {
	mu     sync.RWMutex
	online map[int]Conn
}

func NewRegistry() *Registry {
	return &Registry{online: make(map[int]Conn)}
}

// Register records conn as userID's live connection. If the user already has
// an entry it is left untouched and false is returned: the first registration
// wins, matching the behavior clients have relied on so far. A stale entry is
// only cleared by the old connection's own close (see Unregister), so callers
// should log ignored registrations.
func (r *Registry) Register(userID int, conn Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.online[userID]; ok {
		return false
	}
	r.online[userID] = conn
	return true
}

// Unregister removes the entry holding conn, matched by connection id
// regardless of user. A connection that lost the registration race therefore
// cannot evict the recorded one on its way out. No-op if conn is not recorded.
func (r *Registry) Unregister(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for userID, c := range r.online {
		if c.ConnID() == conn.ConnID() {
			delete(r.online, userID)
			return
		}
	}
}

// Lookup returns userID's live connection, if any.
func (r *Registry) Lookup(userID int) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.online[userID]
	return conn, ok
}

// Len reports how many users are currently online.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.online)
}
