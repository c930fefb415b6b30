// Package session owns the single authenticated session of the client.
package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Session is the state created on login and destroyed on logout.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Listener is notified of every session change. A nil session means
// logged out.
type Listener func(*Session)

// Manager holds at most one session and persists it to a file.
type Manager struct {
	mu        sync.Mutex
	path      string
	current   *Session
	listeners map[int]Listener
	nextID    int
}

// NewManager creates a Manager backed by path and restores a saved
// session if one exists.
func NewManager(path string) (*Manager, error) {
	m := &Manager{path: path, listeners: make(map[int]Listener)}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return m, nil
		}
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Token != "" {
		m.current = &s
	}
	return m, nil
}

// Current returns a copy of the active session, if any.
func (m *Manager) Current() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Session{}, false
	}
	return *m.current, true
}

// Login replaces any existing session and persists the new one.
func (m *Manager) Login(s Session) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}

	m.mu.Lock()
	if err := m.save(&s); err != nil {
		m.mu.Unlock()
		return err
	}
	m.current = &s
	listeners := m.snapshotListeners()
	m.mu.Unlock()

	for _, l := range listeners {
		copied := s
		l(&copied)
	}
	return nil
}

// Logout tears down the session and removes the persisted token.
func (m *Manager) Logout() error {
	m.mu.Lock()
	if err := os.Remove(m.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		m.mu.Unlock()
		return err
	}
	m.current = nil
	listeners := m.snapshotListeners()
	m.mu.Unlock()

	for _, l := range listeners {
		l(nil)
	}
	return nil
}

// Subscribe registers fn for session changes and returns a function
// that removes it.
func (m *Manager) Subscribe(fn Listener) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

func (m *Manager) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(m.listeners))
	for i := 0; i < m.nextID; i++ {
		if l, ok := m.listeners[i]; ok {
			out = append(out, l)
		}
	}
	return out
}

// save writes the session file with owner-only permissions.
func (m *Manager) save(s *Session) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, data, 0600)
}

// DefaultPath returns the default session path: ~/.config/lk/session.json
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "lk", "session.json"), nil
}
