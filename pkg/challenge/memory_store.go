package challenge

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store with an in-process map. Suitable for a
// single instance; challenge sessions are short-lived and never need to
// survive a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	now      func() time.Time
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithMemoryClock injects the time source, used by tests to drive expiry.
func WithMemoryClock(now func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryStore creates an in-memory challenge session store.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[uuid.UUID]*Session),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new challenge session.
func (s *MemoryStore) Create(ctx context.Context, sess *Session) error {
	if sess == nil || sess.ID == uuid.Nil {
		return ErrInvalidSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = copySession(sess)
	return nil
}

// Get retrieves a session by id. Every read re-checks expiry itself so
// correctness never depends on a sweep having run recently.
func (s *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	s.mu.RLock()
	sess, exists := s.sessions[id]
	s.mu.RUnlock()

	if !exists {
		return nil, ErrSessionNotFound
	}

	if s.now().After(sess.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, ErrSessionExpired
	}

	return copySession(sess), nil
}

// AddLoaded records a beacon-reported resource path under the lock, so
// concurrent beacons never lose each other's updates.
func (s *MemoryStore) AddLoaded(ctx context.Context, id uuid.UUID, kind ResourceKind, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, exists := s.sessions[id]
	if !exists {
		return ErrSessionNotFound
	}
	if s.now().After(sess.ExpiresAt) {
		delete(s.sessions, id)
		return ErrSessionExpired
	}

	switch kind {
	case ResourceJS:
		sess.LoadedJS[path] = struct{}{}
	case ResourceCSS:
		sess.LoadedCSS[path] = struct{}{}
	default:
		return ErrInvalidSession
	}
	return nil
}

// MarkVerified sets the verified flag. There is no way back to false.
func (s *MemoryStore) MarkVerified(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, exists := s.sessions[id]
	if !exists {
		return ErrSessionNotFound
	}
	if s.now().After(sess.ExpiresAt) {
		delete(s.sessions, id)
		return ErrSessionExpired
	}

	sess.Verified = true
	return nil
}

// Delete removes a session by id.
func (s *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// DeleteExpired removes all expired sessions in one pass.
func (s *MemoryStore) DeleteExpired(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, id)
		}
	}
	return nil
}

// Len reports the number of stored sessions, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func copySession(sess *Session) *Session {
	cp := *sess
	cp.LoadedJS = make(map[string]struct{}, len(sess.LoadedJS))
	maps.Copy(cp.LoadedJS, sess.LoadedJS)
	cp.LoadedCSS = make(map[string]struct{}, len(sess.LoadedCSS))
	maps.Copy(cp.LoadedCSS, sess.LoadedCSS)
	return &cp
}
