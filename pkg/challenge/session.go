package challenge

import (
	"time"

	"github.com/google/uuid"
)

// Session is one in-flight verification attempt. Short-lived, kept only
// until it is verified or expires; never persisted past its TTL.
type Session struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	// RiskScore is the fingerprint score recorded at dispatch time.
	RiskScore int `json:"risk_score"`

	// IsChallenged reports whether a payload was issued. Sessions are
	// recorded for unchallenged requests too, for uniform bookkeeping.
	IsChallenged bool `json:"is_challenged"`

	// RequiredJS and RequiredCSS are the single-use paths the client
	// must fetch. Empty when IsChallenged is false.
	RequiredJS  string `json:"required_js,omitempty"`
	RequiredCSS string `json:"required_css,omitempty"`

	// LoadedJS and LoadedCSS collect beacon-reported paths per kind.
	LoadedJS  map[string]struct{} `json:"-"`
	LoadedCSS map[string]struct{} `json:"-"`

	// Verified flips to true exactly once, after explicit confirmation.
	Verified bool `json:"verified"`
}

// IsExpired reports whether the session's TTL has passed.
func (s *Session) IsExpired() bool {
	return s != nil && time.Now().After(s.ExpiresAt)
}

// Loaded reports whether a specific path was beacon-reported for a kind.
func (s *Session) Loaded(kind ResourceKind, path string) bool {
	if s == nil {
		return false
	}
	switch kind {
	case ResourceJS:
		_, ok := s.LoadedJS[path]
		return ok
	case ResourceCSS:
		_, ok := s.LoadedCSS[path]
		return ok
	default:
		return false
	}
}
