package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MagetoJ/AviTrack/internal/domain/models"
)

// Session is the identity attached to a request.
type Session struct {
	Token    string      `json:"token"`
	UserID   string      `json:"user_id"`
	Name     string      `json:"name"`
	Role     models.Role `json:"role"`
	IssuedAt time.Time   `json:"issued_at"`
}

// Manager keeps issued sessions in memory.
type Manager struct {
	sessions map[string]Session
	ttl      time.Duration
	mu       sync.RWMutex
	now      func() time.Time
}

// NewManager creates a session manager. A zero ttl keeps sessions until revoked.
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Issue creates a session for the user and drops sessions that have expired.
func (m *Manager) Issue(userID, name string, role models.Role) Session {
	now := m.now()
	s := Session{
		Token:    uuid.NewString(),
		UserID:   userID,
		Name:     name,
		Role:     role,
		IssuedAt: now,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked(now)
	m.sessions[s.Token] = s
	return s
}

// Len returns the number of stored sessions, expired ones included.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Lookup resolves a token. Expired sessions are dropped.
func (m *Manager) Lookup(token string) (Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok {
		return Session{}, false
	}

	if m.ttl > 0 && m.now().Sub(s.IssuedAt) > m.ttl {
		m.Revoke(token)
		return Session{}, false
	}
	return s, true
}

func (m *Manager) sweepLocked(now time.Time) {
	if m.ttl <= 0 {
		return
	}
	for token, s := range m.sessions {
		if now.Sub(s.IssuedAt) > m.ttl {
			delete(m.sessions, token)
		}
	}
}

// Revoke removes a session.
func (m *Manager) Revoke(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

type ctxKey struct{}

// WithSession attaches s to ctx.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session attached to ctx, if any.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}

// HasRole reports whether the session holds one of roles.
func (s Session) HasRole(roles ...models.Role) bool {
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}
