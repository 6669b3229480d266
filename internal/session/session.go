package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/wuwenbin0122/debate-hub/internal/screens"
	"github.com/wuwenbin0122/debate-hub/internal/utils"
)

var (
	ErrSecretRequired = errors.New("session: secret required")
	ErrInvalidToken   = errors.New("session: invalid token")
)

// Session owns the screens of one browser. Showing a screen discards the
// previous one.
type Session struct {
	ID string

	mu       sync.Mutex
	list     *screens.ConversationList
	detail   *screens.ConversationDetail
	lastSeen time.Time
}

func (s *Session) ShowList(list *screens.ConversationList) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = list
	s.detail = nil
}

func (s *Session) ShowDetail(detail *screens.ConversationDetail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detail = detail
	s.list = nil
}

func (s *Session) List() *screens.ConversationList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list
}

func (s *Session) Detail() *screens.ConversationDetail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detail
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Manager issues signed session tokens and keeps the live sessions in memory.
// The token only names a session; it carries no user identity.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(cfg utils.SessionConfig) (*Manager, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, ErrSecretRequired
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}

	return &Manager{
		secret:   []byte(secret),
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
		sessions: make(map[string]*Session),
	}, nil
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue starts a new session and returns it with its signed token.
func (m *Manager) Issue() (*Session, string, error) {
	id := uuid.NewString()
	token, err := m.sign(id)
	if err != nil {
		return nil, "", err
	}
	return m.lookupOrCreate(id), token, nil
}

// Resolve returns the session named by token. A valid token whose session
// was evicted gets a fresh, empty session under the same id.
func (m *Manager) Resolve(token string) (*Session, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	return m.lookupOrCreate(claims.ID), nil
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep drops sessions idle for longer than the ttl and reports how many
// were removed.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps on every tick until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func (m *Manager) lookupOrCreate(id string) *Session {
	now := m.now()

	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		s = &Session{ID: id}
		m.sessions[id] = s
	}
	m.mu.Unlock()

	s.touch(now)
	return s
}

func (m *Manager) sign(id string) (string, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		ID:        id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}
