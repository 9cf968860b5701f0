package dialog

import "sync"

// memoryState is the in-memory StateStore. Conversation state is ephemeral;
// an abandoned flow simply sits here until overwritten or cancelled.
type memoryState struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

// NewMemoryState constructs an empty in-memory state store.
func NewMemoryState() StateStore {
	return &memoryState{sessions: make(map[int64]Session)}
}

func (m *memoryState) Get(userID int64) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	if !ok {
		return Session{}, false
	}
	s.Fields = s.Fields.Clone()
	return s, true
}

func (m *memoryState) Put(userID int64, s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.Fields = s.Fields.Clone()
	m.sessions[userID] = s
}

func (m *memoryState) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}
