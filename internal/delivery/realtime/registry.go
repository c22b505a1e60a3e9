package realtime

import "sync"

// Registry maps a user id to that user's single live connection.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*Conn)}
}

// Register stores c as the user's connection and returns the connection it
// replaced, if any.
func (r *Registry) Register(c *Conn) *Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := r.conns[c.userID]
	r.conns[c.userID] = c
	if old == c {
		return nil
	}
	return old
}

// Unregister removes c only if it is still the user's current connection,
// so a late close of an evicted connection cannot drop its replacement.
func (r *Registry) Unregister(c *Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conns[c.userID] != c {
		return false
	}
	delete(r.conns, c.userID)
	return true
}

func (r *Registry) Get(userID string) (*Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[userID]
	return c, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Each calls fn for a snapshot of the registered connections. fn runs
// without the registry lock held.
func (r *Registry) Each(fn func(*Conn)) {
	r.mu.RLock()
	snapshot := make([]*Conn, 0, len(r.conns))
	for _, c := range r.conns {
		snapshot = append(snapshot, c)
	}
	r.mu.RUnlock()

	for _, c := range snapshot {
		fn(c)
	}
}
