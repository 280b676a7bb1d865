package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"twopane/internal/game"
	"twopane/internal/lookup"
	"twopane/internal/models"
)

// Store keeps the sessions of all connected browsers.
type Store struct {
	sessions map[string]*Session
	mu       sync.RWMutex

	fetcher lookup.Fetcher
	pub     Publisher
	ttl     time.Duration
	log     *slog.Logger
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty store. Sessions idle for longer than ttl are
// removed by Sweep.
func NewStore(fetcher lookup.Fetcher, pub Publisher, ttl time.Duration, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string]*Session),
		fetcher:  fetcher,
		pub:      pub,
		ttl:      ttl,
		log:      logger.With("component", "sessions"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create creates a new session on the game tab
func (s *Store) Create() *Session {
	sess := &Session{
		ID:       uuid.New().String(),
		tab:      models.TabGame,
		game:     game.New(),
		lastSeen: s.now(),
		pub:      s.pub,
		now:      s.now,
	}
	sess.lookup = lookup.NewWidget(s.fetcher, s.log.With("session_id", sess.ID), sess.publish)

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.log.Debug("session created", slog.String("session_id", sess.ID))
	return sess
}

// Get retrieves a session by ID and marks it used
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, exists := s.sessions[id]
	s.mu.RUnlock()

	if !exists {
		return nil, ErrSessionNotFound
	}
	sess.Touch()
	return sess, nil
}

// Delete removes a session and cancels its lookups.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	sess, exists := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !exists {
		return ErrSessionNotFound
	}
	sess.close()
	return nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes sessions idle since before now-ttl and returns how many.
func (s *Store) Sweep() int {
	cutoff := s.now().Add(-s.ttl)

	var expired []*Session
	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.idleSince().Before(cutoff) {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.close()
	}
	if len(expired) > 0 {
		s.log.Info("sessions expired", slog.Int("count", len(expired)), slog.Int("remaining", s.Len()))
	}
	return len(expired)
}

// Close drops every session, cancelling their lookups.
func (s *Store) Close() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, sess := range all {
		sess.close()
	}
}
