package session

import (
	"errors"
	"sync"
	"time"

	"honeypot-lab/internal/domain/models"
	"honeypot-lab/pkg/logger"
)

// ErrNotFound is returned when a session id is unknown or expired
var ErrNotFound = errors.New("session not found")

// Store owns all mutable per-session state. Sessions expire lazily: every
// lookup checks the record's age against the configured timeout and evicts
// it before proceeding. No background sweeper is required; SweepExpired
// exists for callers that want to reclaim memory eagerly.
//
// Mutation of a session handle (Append, MergeIntelligence) must happen
// while holding the per-id lock obtained from Lock, which is what gives
// concurrent requests on the same id mutual exclusion across a whole
// orchestration turn.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
	locks    map[string]*sync.Mutex
	timeout  time.Duration
	now      func() time.Time
	logger   *logger.Logger
}

// New creates a session store with the given expiry timeout
func New(timeout time.Duration, log *logger.Logger) *Store {
	return &Store{
		sessions: make(map[string]*models.Session),
		locks:    make(map[string]*sync.Mutex),
		timeout:  timeout,
		now:      time.Now,
		logger:   log.WithComponent("session-store"),
	}
}

// SetClock overrides the time source. Tests use this to drive expiry.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Lock acquires the per-id mutex and returns the unlock function. The
// caller holds exclusive access to the session id until unlock is called.
func (s *Store) Lock(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// expired reports whether the session has outlived the timeout.
// Caller must hold s.mu.
func (s *Store) expired(sess *models.Session) bool {
	return s.now().Sub(sess.CreatedAt) > s.timeout
}

// Get returns the session for id, or ErrNotFound if it is unknown or has
// expired. An expired session is evicted before the lookup resolves.
func (s *Store) Get(id string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.expired(sess) {
		delete(s.sessions, id)
		s.logger.Warn().Str("session_id", id).Msg("session expired, evicted")
		return nil, ErrNotFound
	}
	return sess, nil
}

// GetOrCreate returns the live session for id, creating a fresh one if the
// id is unseen or its previous session has expired.
func (s *Store) GetOrCreate(id string) *models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok && !s.expired(sess) {
		return sess
	}

	sess := models.NewSession(id, s.now())
	s.sessions[id] = sess
	s.logger.Info().Str("session_id", id).Msg("created new session")
	return sess
}

// Append adds a message to the session history and bumps the message
// count. Caller must hold the per-id lock.
func (s *Store) Append(sess *models.Session, msg models.Message) {
	sess.History = append(sess.History, msg)
	sess.MessageCount++
}

// MergeIntelligence folds a delta into the session's accumulated
// intelligence by set union. Caller must hold the per-id lock.
func (s *Store) MergeIntelligence(sess *models.Session, delta models.Intelligence) {
	sess.Intelligence = models.Merge(sess.Intelligence, delta)
}

// Delete removes a session. Deleting an unknown id is a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; ok {
		delete(s.sessions, id)
		s.logger.Info().Str("session_id", id).Msg("deleted session")
	}
}

// Count returns the number of stored, non-expired sessions
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, sess := range s.sessions {
		if !s.expired(sess) {
			n++
		}
	}
	return n
}

// SweepExpired evicts every expired session and returns how many were removed
func (s *Store) SweepExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info().Int("count", removed).Msg("swept expired sessions")
	}
	return removed
}
