package challenge

import "errors"

var (
	// ErrSessionNotFound indicates no challenge session exists for the id.
	ErrSessionNotFound = errors.New("challenge.session_not_found")

	// ErrSessionExpired indicates the challenge session's TTL has passed.
	ErrSessionExpired = errors.New("challenge.session_expired")

	// ErrInvalidSession indicates a malformed session record.
	ErrInvalidSession = errors.New("challenge.invalid_session")

	// ErrStoreRequired indicates a dispatcher or tracker was built
	// without a backing store.
	ErrStoreRequired = errors.New("challenge.store_required")
)
