package challenge

import (
	"context"

	"github.com/google/uuid"
)

// Store defines persistence for challenge sessions.
//
// AddLoaded and MarkVerified are store-level atomics: concurrent beacons
// for the same session must not lose updates, so set mutation happens
// inside the store rather than via read-modify-write in callers.
type Store interface {
	// Create stores a new challenge session.
	Create(ctx context.Context, sess *Session) error

	// Get retrieves a session by id. Expired sessions are reported as
	// ErrSessionExpired regardless of whether a sweep has removed them.
	Get(ctx context.Context, id uuid.UUID) (*Session, error)

	// AddLoaded records a beacon-reported resource path. Idempotent:
	// duplicate beacons are harmless.
	AddLoaded(ctx context.Context, id uuid.UUID, kind ResourceKind, path string) error

	// MarkVerified sets the verified flag. One-way transition.
	MarkVerified(ctx context.Context, id uuid.UUID) error

	// Delete removes a session by id.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteExpired removes all expired sessions.
	DeleteExpired(ctx context.Context) error
}
