// ============================================================================
// internal/auth/session.go
// In-memory session store mapping bearer tokens to identities
// ============================================================================

package auth

import (
	"sync"
	"time"
)

// Session is one live login, resolved from an opaque bearer token
type Session struct {
	Token     string
	UserID    string
	Username  string
	Role      string
	CreatedAt time.Time
}

// SessionStore is a concurrency-safe token → identity map with a lifecycle
// tied to the service process. Sessions have no expiry beyond process
// lifetime; token validity is bounded by the JWT expiry instead.
type SessionStore struct {
	mu      sync.RWMutex
	byToken map[string]Session
}

// NewSessionStore creates an empty session store
func NewSessionStore() *SessionStore {
	return &SessionStore{byToken: make(map[string]Session)}
}

// Put registers a session under its token
func (s *SessionStore) Put(session Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byToken[session.Token] = session
}

// Get resolves a token to its session
func (s *SessionStore) Get(token string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.byToken[token]
	return session, ok
}

// Delete revokes one session
func (s *SessionStore) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byToken, token)
}

// DeleteByUser revokes every session of one user, e.g. after a password change
func (s *SessionStore) DeleteByUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, session := range s.byToken {
		if session.UserID == userID {
			delete(s.byToken, token)
		}
	}
}
