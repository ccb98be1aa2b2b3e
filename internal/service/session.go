package service

import (
	"sync"
	"time"
)

type SessionMessage struct {
	Role      string
	Content   string
	Timestamp time.Time
}

// SessionStore is a cosmetic per-owner conversation log. It lives only in
// process memory and is lost on restart; nothing authoritative depends on it.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string][]SessionMessage
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string][]SessionMessage),
	}
}

func (s *SessionStore) Append(ownerID, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[ownerID] = append(s.sessions[ownerID], SessionMessage{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
}

// History returns a copy of the owner's conversation log in order.
func (s *SessionStore) History(ownerID string) []SessionMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := s.sessions[ownerID]
	out := make([]SessionMessage, len(history))
	copy(out, history)
	return out
}
