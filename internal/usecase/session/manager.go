package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/estatedash/internal/domain"
)

const (
	// DefaultMaxSessions bounds concurrently live sessions.
	DefaultMaxSessions = 1000
	// DefaultTTL is the lifetime of a session.
	DefaultTTL = 12 * time.Hour
)

// Manager is a bounded registry of live sessions. Sessions expire after the
// TTL; the oldest unused session goes first when the registry is full.
type Manager struct {
	sessions      *expirable.LRU[string, *Session]
	imageCapacity int
	decodeTotal   *prometheus.CounterVec
	decoder       Decoder
	now           func() time.Time
	newID         func() string
	logger        *zap.Logger
}

// NewManager creates a session registry.
func NewManager(maxSessions int, ttl time.Duration) *Manager {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Manager{
		imageCapacity: DefaultImageCapacity,
		now:           time.Now,
		newID:         uuid.NewString,
		logger:        zap.NewNop(),
	}
	m.sessions = expirable.NewLRU[string, *Session](maxSessions, m.onEvict, ttl)
	return m
}

// WithImageCapacity sets the per-session image cache capacity.
func (m *Manager) WithImageCapacity(n int) *Manager {
	if n > 0 {
		m.imageCapacity = n
	}
	return m
}

// WithImageDecoder overrides the decoder of new sessions' image caches.
func (m *Manager) WithImageDecoder(d Decoder) *Manager {
	m.decoder = d
	return m
}

// WithMetrics counts image decode outcomes of every session.
func (m *Manager) WithMetrics(decodeTotal *prometheus.CounterVec) *Manager {
	m.decodeTotal = decodeTotal
	return m
}

// WithLogger sets the logger.
func (m *Manager) WithLogger(l *zap.Logger) *Manager {
	m.logger = l
	return m
}

// WithIDGenerator overrides session id generation.
func (m *Manager) WithIDGenerator(fn func() string) *Manager {
	m.newID = fn
	return m
}

// Create opens a session for a logged-in user.
func (m *Manager) Create(userID, firstName string) *Session {
	images := NewImageCache(m.imageCapacity).
		WithLogger(m.logger).
		WithMetrics(m.decodeTotal)
	if m.decoder != nil {
		images.WithDecoder(m.decoder)
	}

	s := &Session{
		ID:        m.newID(),
		UserID:    userID,
		FirstName: firstName,
		Images:    images,
		CreatedAt: m.now(),
	}
	m.sessions.Add(s.ID, s)
	m.logger.Info("session created", zap.String("session_id", s.ID), zap.String("user_id", userID))
	return s
}

// Get returns a live session.
func (m *Manager) Get(id string) (*Session, error) {
	if id == "" {
		return nil, fmt.Errorf("empty session id: %w", domain.ErrSessionNotFound)
	}
	s, ok := m.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}
	return s, nil
}

// Delete ends a session and releases its caches. Unknown ids are ignored.
func (m *Manager) Delete(id string) {
	m.sessions.Remove(id)
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	return m.sessions.Len()
}

func (m *Manager) onEvict(id string, s *Session) {
	s.Clear()
	m.logger.Debug("session closed", zap.String("session_id", id))
}
