package session

import (
	"sync"

	"github.com/rs/zerolog"

	apperrors "github.com/ledgrio/ledgrio-go/internal/errors"
)

// Store is the single source of truth for the current session. Reads are
// cheap and safe from any goroutine; mutation goes through Set and Clear,
// both atomic with respect to readers.
type Store struct {
	lock    sync.RWMutex
	current *Session
	repo    Repo
	log     zerolog.Logger
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithLogger sets the logger used for storage warnings.
func WithLogger(log zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.log = log
	}
}

// NewStore creates a session store backed by repo. A nil repo keeps the
// session in memory only.
func NewStore(repo Repo, options ...StoreOption) *Store {
	store := &Store{
		repo: repo,
		log:  zerolog.Nop(),
	}
	for _, opt := range options {
		opt(store)
	}
	return store
}

// Token returns the current access token, preferring in-memory state over
// the durable storage fallback. Returns "" when unauthenticated.
func (s *Store) Token() string {
	if sess := s.Current(); sess != nil {
		return sess.AccessToken
	}
	return ""
}

// RefreshToken returns the current refresh token, or "" when unauthenticated.
func (s *Store) RefreshToken() string {
	if sess := s.Current(); sess != nil {
		return sess.RefreshToken
	}
	return ""
}

// User returns the authenticated user, or nil when unauthenticated.
func (s *Store) User() *UserSummary {
	if sess := s.Current(); sess != nil {
		user := sess.User
		return &user
	}
	return nil
}

// Current returns a copy of the current session, falling back to durable
// storage when memory is empty. Returns nil when unauthenticated.
func (s *Store) Current() *Session {
	s.lock.RLock()
	if s.current != nil {
		sess := *s.current
		s.lock.RUnlock()
		return &sess
	}
	s.lock.RUnlock()

	// Memory is empty; a previous process may still have a persisted session.
	s.Hydrate()

	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.current == nil {
		return nil
	}
	sess := *s.current
	return &sess
}

// Set replaces the session atomically. A partial credential pair is rejected
// so no reader ever observes a half-authenticated state.
func (s *Store) Set(sess Session) error {
	if !sess.Valid() {
		return apperrors.ErrPartialSession
	}
	if sess.ExpiresAt.IsZero() {
		sess.ExpiresAt = TokenExpiry(sess.AccessToken)
	}

	s.lock.Lock()
	s.current = &sess
	s.lock.Unlock()

	if s.repo != nil {
		if err := s.repo.Save(&sess); err != nil {
			// Persistence is best-effort; the in-memory session stays authoritative.
			s.log.Warn().Err(err).Msg("session store: failed to persist session")
		}
	}
	return nil
}

// Clear removes the session from memory and durable storage. Idempotent.
func (s *Store) Clear() {
	s.lock.Lock()
	s.current = nil
	s.lock.Unlock()

	if s.repo != nil {
		if err := s.repo.Clear(); err != nil {
			s.log.Warn().Err(err).Msg("session store: failed to clear persisted session")
		}
	}
}

// Hydrate loads a previously persisted session into memory. Absent or
// malformed persisted data leaves the store empty; Hydrate never fails.
func (s *Store) Hydrate() {
	if s.repo == nil {
		return
	}
	sess, err := s.repo.Load()
	if err != nil {
		s.log.Warn().Err(err).Msg("session store: discarding malformed persisted session")
		return
	}
	if !sess.Valid() {
		return
	}
	if sess.ExpiresAt.IsZero() {
		sess.ExpiresAt = TokenExpiry(sess.AccessToken)
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	if s.current == nil {
		s.current = sess
	}
}
