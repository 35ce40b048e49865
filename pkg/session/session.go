package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"
)

// OwnerKind classifies how a session's identity was established.
type OwnerKind string

const (
	// OwnerAnonymous sessions are keyed by a salted hash of the client's
	// network address.
	OwnerAnonymous OwnerKind = "anonymous"

	// OwnerAuthenticated sessions are keyed by an account id and carry
	// a higher request quota.
	OwnerAuthenticated OwnerKind = "authenticated"
)

// Session is a quota-tracked client identity.
type Session struct {
	ID    uuid.UUID `json:"id"`
	Token string    `json:"token"`

	OwnerKind OwnerKind `json:"owner_kind"`
	OwnerKey  string    `json:"owner_key"`

	// RequestCount is the counter value observed at read time. The
	// authoritative counter lives in the store; this field is a
	// snapshot, mutated only through Store.IncrementCount.
	RequestCount int64 `json:"request_count"`

	// RequestLimit is the quota ceiling for the current window.
	RequestLimit int64 `json:"request_limit"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	// IsActive distinguishes live sessions from soft-deactivated ones
	// (e.g. superseded during account linking). Deactivated sessions
	// remain stored until swept but never satisfy owner lookups.
	IsActive bool `json:"is_active"`

	// Version guards conditional updates. Incremented by the store on
	// every successful UpdateIf.
	Version int64 `json:"version"`
}

// IsAuthenticated reports whether the session is account-bound.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.OwnerKind == OwnerAuthenticated
}

// IsExpired reports whether the session's expiry instant has passed.
func (s *Session) IsExpired() bool {
	return s != nil && time.Now().After(s.ExpiresAt)
}

// QuotaResult reports one quota check.
type QuotaResult struct {
	// Allowed is false when the increment pushed the count past the
	// session's limit, or when the token is unknown and policy denies.
	Allowed bool

	// CurrentCount is the counter value including this request.
	CurrentCount int64

	// Limit is the session's quota ceiling.
	Limit int64

	// ResetAt is when the current window ends.
	ResetAt time.Time
}

// generateToken creates an opaque 256-bit token.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
