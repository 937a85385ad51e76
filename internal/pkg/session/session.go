package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// PersistentTTL is how long a "local" persistence session lives.
	PersistentTTL = 30 * 24 * time.Hour
	// BrowserTTL bounds a "session" persistence session; the cookie itself dies with the browser.
	BrowserTTL = 24 * time.Hour
)

// ErrTokenNotFound is returned when a one-time token is missing or used.
var ErrTokenNotFound = errors.New("token not found or expired")

// Session is a signed-in office identity bound to one browser.
type Session struct {
	ID         string    `json:"id"`
	UserID     string    `json:"uid"`
	Email      string    `json:"email"`
	Persistent bool      `json:"persistent"`
	CreatedAt  time.Time `json:"createdAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// TTL returns the lifetime matching the session's persistence mode.
func (s *Session) TTL() time.Duration {
	if s.Persistent {
		return PersistentTTL
	}
	return BrowserTTL
}

// Store keeps revocable sessions and one-time tokens.
type Store interface {
	Create(ctx context.Context, s *Session) error
	// Get returns nil without error when the session is unknown, revoked or expired.
	Get(ctx context.Context, id string) (*Session, error)
	Revoke(ctx context.Context, id string) error
	PutToken(ctx context.Context, token, value string, ttl time.Duration) error
	TakeToken(ctx context.Context, token string) (string, error)
}

// New builds a Session with a fresh id for the given identity.
func New(userID, email string, persistent bool) *Session {
	now := time.Now()
	s := &Session{
		ID:         uuid.NewString(),
		UserID:     userID,
		Email:      email,
		Persistent: persistent,
		CreatedAt:  now,
	}
	s.ExpiresAt = now.Add(s.TTL())
	return s
}

// MemoryStore is an in-process Store for development and tests.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	tokens   map[string]memoryToken
	now      func() time.Time
}

type memoryToken struct {
	value     string
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		tokens:   make(map[string]memoryToken),
		now:      time.Now,
	}
}

func (m *MemoryStore) Create(_ context.Context, s *Session) error {
	if s == nil || s.ID == "" {
		return errors.New("session id is required")
	}
	m.mu.Lock()
	m.sessions[s.ID] = *s
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	if !m.now().Before(s.ExpiresAt) {
		delete(m.sessions, id)
		return nil, nil
	}
	return &s, nil
}

func (m *MemoryStore) Revoke(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) PutToken(_ context.Context, token, value string, ttl time.Duration) error {
	m.mu.Lock()
	m.tokens[token] = memoryToken{value: value, expiresAt: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) TakeToken(_ context.Context, token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[token]
	delete(m.tokens, token)
	if !ok || !m.now().Before(t.expiresAt) {
		return "", ErrTokenNotFound
	}
	return t.value, nil
}
