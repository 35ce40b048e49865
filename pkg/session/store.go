package session

import (
	"context"
	"time"
)

// Store defines the durable persistence contract for sessions.
//
// Implementations back two record families: identity records (the
// Session itself, addressable by token and by owner key) and request
// counters (addressable by token, mutated only through the atomic
// IncrementCount). The store is the single source of truth; callers
// layering caches must treat cached state as advisory.
type Store interface {
	// Create stores a new session and registers its owner index entry.
	// Returns ErrOwnerConflict if another active session already holds
	// the owner key, so the caller can re-read and reuse it.
	Create(ctx context.Context, sess *Session) error

	// GetByToken retrieves a session by its opaque token, with
	// RequestCount populated from the counter record. Expired sessions
	// are reported as ErrSessionExpired even before a sweep runs.
	GetByToken(ctx context.Context, token string) (*Session, error)

	// GetByOwner retrieves the active session for an owner key.
	// Deactivated sessions never match.
	GetByOwner(ctx context.Context, kind OwnerKind, key string) (*Session, error)

	// UpdateIf applies the session record only when the stored version
	// still equals expectedVersion, then increments the version.
	// Returns ErrVersionConflict when the record moved underneath.
	UpdateIf(ctx context.Context, sess *Session, expectedVersion int64) error

	// Deactivate soft-disables a session and releases its owner index
	// entry. The record remains until expiry sweep.
	Deactivate(ctx context.Context, token string) error

	// Delete removes a session, its owner index entry, and its counter.
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes all expired session records.
	DeleteExpired(ctx context.Context) error

	// IncrementCount atomically increments the request counter for a
	// token and returns the new value. The first increment arms the
	// counter's expiry with the given window.
	IncrementCount(ctx context.Context, token string, window time.Duration) (int64, error)
}
