package session

import (
	"sync"

	"ctxweave/internal/logging"
)

// Manager enforces the one-active-session rule. Activating a session for a
// new surface tears down the previous one first, ending its registry scope.
type Manager struct {
	mu     sync.Mutex
	active *Session
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{}
}

// Activate closes any running session and starts a fresh one for the given
// configuration.
func (m *Manager) Activate(cfg Config) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil {
		logging.Get(logging.CategorySession).Debugf("tearing down previous session before activation")
		m.active.Close()
	}
	m.active = New(cfg)
	return m.active
}

// Active returns the running session, if any.
func (m *Manager) Active() (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active, m.active != nil
}

// Shutdown closes the running session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil {
		m.active.Close()
		m.active = nil
	}
}
