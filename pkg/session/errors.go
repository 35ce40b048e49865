package session

import "errors"

var (
	// ErrSessionNotFound indicates no session exists for the token or owner.
	ErrSessionNotFound = errors.New("session.not_found")

	// ErrSessionExpired indicates the session has expired.
	ErrSessionExpired = errors.New("session.expired")

	// ErrInvalidSession indicates a malformed session record.
	ErrInvalidSession = errors.New("session.invalid")

	// ErrTokenGeneration indicates token generation failed.
	ErrTokenGeneration = errors.New("session.token_generation_failed")

	// ErrVersionConflict indicates a conditional update lost a race and
	// the caller should re-read before retrying.
	ErrVersionConflict = errors.New("session.version_conflict")

	// ErrOwnerConflict indicates another active session already holds
	// the owner key.
	ErrOwnerConflict = errors.New("session.owner_conflict")

	// ErrStoreUnavailable indicates the durable store could not be
	// reached; the registry's fail-open/fail-closed policy applies.
	ErrStoreUnavailable = errors.New("session.store_unavailable")

	// ErrStoreRequired indicates a registry was built without a store.
	ErrStoreRequired = errors.New("session.store_required")
)
