package session

import (
	"sync"

	"github.com/kalev/gymdesk/internal/backend"
)

// Holder is the process-wide current-session cell. Screens read it after
// the login flow writes it; sign-out clears it.
type Holder struct {
	mu      sync.RWMutex
	session *backend.Session
}

func NewHolder() *Holder {
	return &Holder{}
}

// Set replaces the current session.
func (h *Holder) Set(s backend.Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.session = &s
}

// Get returns a copy of the current session, ok=false when signed out.
func (h *Holder) Get() (backend.Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.session == nil {
		return backend.Session{}, false
	}
	return *h.session, true
}

// Clear drops the current session.
func (h *Holder) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.session = nil
}
