package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store with in-process maps. Suitable for tests
// and single-instance deployments; production uses RedisStore.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session // by token
	owners   map[string]string   // owner index: kind+key -> active token
	counters map[string]*counter // by token
	now      func() time.Time
}

type counter struct {
	count     int64
	expiresAt time.Time
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

// NewMemoryStore creates an in-memory session store.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]*Session),
		owners:   make(map[string]string),
		counters: make(map[string]*counter),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func ownerIndexKey(kind OwnerKind, key string) string {
	return string(kind) + ":" + key
}

// Create stores a new session. Active sessions claim their owner index
// entry; a live claim by another session yields ErrOwnerConflict.
func (s *MemoryStore) Create(ctx context.Context, sess *Session) error {
	if sess == nil || sess.Token == "" || sess.OwnerKey == "" {
		return ErrInvalidSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.IsActive {
		idx := ownerIndexKey(sess.OwnerKind, sess.OwnerKey)
		if existingToken, claimed := s.owners[idx]; claimed {
			if existing, ok := s.sessions[existingToken]; ok && existing.IsActive && s.now().Before(existing.ExpiresAt) {
				return ErrOwnerConflict
			}
		}
		s.owners[idx] = sess.Token
	}

	cp := *sess
	s.sessions[sess.Token] = &cp
	return nil
}

// GetByToken retrieves a session by token, populating RequestCount from
// the live counter. Expired records are removed on read. The snapshot is
// taken under the read lock so concurrent writers never race the copy.
func (s *MemoryStore) GetByToken(ctx context.Context, token string) (*Session, error) {
	s.mu.RLock()
	sess, exists := s.sessions[token]
	var cp Session
	if exists {
		cp = *sess
	}
	s.mu.RUnlock()

	if !exists {
		return nil, ErrSessionNotFound
	}

	if s.now().After(cp.ExpiresAt) {
		s.mu.Lock()
		s.dropLocked(token)
		s.mu.Unlock()
		return nil, ErrSessionExpired
	}

	cp.RequestCount = s.currentCount(token)
	return &cp, nil
}

// GetByOwner retrieves the active session for an owner key.
func (s *MemoryStore) GetByOwner(ctx context.Context, kind OwnerKind, key string) (*Session, error) {
	s.mu.RLock()
	token, exists := s.owners[ownerIndexKey(kind, key)]
	s.mu.RUnlock()

	if !exists {
		return nil, ErrSessionNotFound
	}

	sess, err := s.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !sess.IsActive {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// UpdateIf applies the record only when the stored version matches, then
// bumps the version. Owner index entries follow re-keying and
// deactivation.
func (s *MemoryStore) UpdateIf(ctx context.Context, sess *Session, expectedVersion int64) error {
	if sess == nil || sess.Token == "" {
		return ErrInvalidSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.sessions[sess.Token]
	if !exists {
		return ErrSessionNotFound
	}
	if existing.Version != expectedVersion {
		return ErrVersionConflict
	}

	oldIdx := ownerIndexKey(existing.OwnerKind, existing.OwnerKey)
	newIdx := ownerIndexKey(sess.OwnerKind, sess.OwnerKey)

	if existing.IsActive && (oldIdx != newIdx || !sess.IsActive) {
		if s.owners[oldIdx] == sess.Token {
			delete(s.owners, oldIdx)
		}
	}
	if sess.IsActive {
		if claimedToken, claimed := s.owners[newIdx]; claimed && claimedToken != sess.Token {
			if claimedSess, ok := s.sessions[claimedToken]; ok && claimedSess.IsActive && s.now().Before(claimedSess.ExpiresAt) {
				return ErrOwnerConflict
			}
		}
		s.owners[newIdx] = sess.Token
	}

	cp := *sess
	cp.Version = expectedVersion + 1
	s.sessions[sess.Token] = &cp
	return nil
}

// Deactivate soft-disables a session and frees its owner index entry.
func (s *MemoryStore) Deactivate(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, exists := s.sessions[token]
	if !exists {
		return ErrSessionNotFound
	}

	if sess.IsActive {
		idx := ownerIndexKey(sess.OwnerKind, sess.OwnerKey)
		if s.owners[idx] == token {
			delete(s.owners, idx)
		}
	}

	// Copy on write: readers snapshot map entries under the read lock,
	// so records are replaced rather than mutated in place.
	cp := *sess
	cp.IsActive = false
	cp.Version++
	s.sessions[token] = &cp
	return nil
}

// Delete removes a session, its owner index entry, and its counter.
func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropLocked(token)
	return nil
}

// DeleteExpired removes all expired sessions and stale counters.
func (s *MemoryStore) DeleteExpired(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for token, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			s.dropLocked(token)
		}
	}
	for token, c := range s.counters {
		if now.After(c.expiresAt) {
			delete(s.counters, token)
		}
	}
	return nil
}

// IncrementCount atomically bumps the counter under the store lock.
// The first increment of a window arms the counter's expiry.
func (s *MemoryStore) IncrementCount(ctx context.Context, token string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c, exists := s.counters[token]
	if !exists || now.After(c.expiresAt) {
		c = &counter{count: 1, expiresAt: now.Add(window)}
		s.counters[token] = c
		return c.count, nil
	}

	c.count++
	return c.count, nil
}

// Stats reports live record counts for observability.
func (s *MemoryStore) Stats() (sessions, active int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions = len(s.sessions)
	for _, sess := range s.sessions {
		if sess.IsActive {
			active++
		}
	}
	return
}

// dropLocked removes a session and everything keyed off it. Caller
// holds the write lock.
func (s *MemoryStore) dropLocked(token string) {
	if sess, ok := s.sessions[token]; ok {
		idx := ownerIndexKey(sess.OwnerKind, sess.OwnerKey)
		if s.owners[idx] == token {
			delete(s.owners, idx)
		}
	}
	delete(s.sessions, token)
	delete(s.counters, token)
}

// currentCount reads the live counter value for a token.
func (s *MemoryStore) currentCount(token string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.counters[token]
	if !exists || s.now().After(c.expiresAt) {
		return 0
	}
	return c.count
}
