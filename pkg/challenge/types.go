package challenge

import "github.com/google/uuid"

// Severity classifies how strongly a verdict suggests automation.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Decision is the engine's verdict for one request.
type Decision struct {
	ShouldChallenge bool
	Severity        Severity

	// Reason is server-side observability only.
	Reason string
}

// Thresholds are the risk-score cutoffs for the tiered decision.
// At or above Hard the challenge is certain; below Soft it never fires;
// between them the probability rises linearly.
type Thresholds struct {
	Soft int
	Hard int
}

// DefaultThresholds returns the production cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{Soft: 40, Hard: 60}
}

// ResourceKind distinguishes the two issued resource types.
type ResourceKind string

const (
	ResourceJS  ResourceKind = "js"
	ResourceCSS ResourceKind = "css"
)

// Payload carries the pieces embedded into the client-facing page: the
// session id to correlate beacons, and the two paths to fetch. The paths
// are single-use identifiers, not real files.
type Payload struct {
	SessionID uuid.UUID `json:"id"`
	JSPath    string    `json:"js"`
	CSSPath   string    `json:"css"`
}

// Result is the dispatcher's answer for one request.
type Result struct {
	SessionID       uuid.UUID
	ShouldChallenge bool
	Severity        Severity
	Reason          string

	// Payload is set only when a challenge is required.
	Payload *Payload
}

// VerifyResult reports a verification attempt.
type VerifyResult struct {
	Passed    bool
	JSLoaded  bool
	CSSLoaded bool
	Reason    string
}
