package challenge

import (
	"fmt"
	"math/rand"

	"github.com/dmitrymomot/botwall/pkg/fingerprint"
)

// Engine applies tiered threshold logic to fingerprint risk scores.
type Engine struct {
	thresholds Thresholds
	rand       func() float64
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithThresholds overrides the default cutoffs. Invalid pairs
// (hard not above soft) fall back to the defaults.
func WithThresholds(t Thresholds) EngineOption {
	return func(e *Engine) {
		if t.Hard > t.Soft {
			e.thresholds = t
		}
	}
}

// WithRand injects the randomness source for the probabilistic band.
// Must return values in [0,1). Tests use a fixed or seeded source.
func WithRand(fn func() float64) EngineOption {
	return func(e *Engine) {
		if fn != nil {
			e.rand = fn
		}
	}
}

// NewEngine creates a decision engine with default thresholds and a
// non-deterministic randomness source.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		thresholds: DefaultThresholds(),
		rand:       rand.Float64,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Decide produces a challenge verdict for an analyzed fingerprint.
//
// Declared bots and scores at or above the hard threshold are challenged
// deterministically. In the band between soft and hard the probability
// rises linearly with the score, so there is no discoverable score that
// reliably slips through just under a cutoff. Below soft is always clean.
func (e *Engine) Decide(fp fingerprint.Fingerprint) Decision {
	if fp.KnownBot {
		return Decision{
			ShouldChallenge: true,
			Severity:        SeverityHigh,
			Reason:          "known automation pattern",
		}
	}

	t := e.thresholds
	switch {
	case fp.RiskScore >= t.Hard:
		return Decision{
			ShouldChallenge: true,
			Severity:        SeverityHigh,
			Reason:          fmt.Sprintf("risk score %d at or above hard threshold %d", fp.RiskScore, t.Hard),
		}
	case fp.RiskScore >= t.Soft:
		variance := float64(fp.RiskScore-t.Soft) / float64(t.Hard-t.Soft)
		if e.rand() < variance {
			return Decision{
				ShouldChallenge: true,
				Severity:        SeverityMedium,
				Reason:          fmt.Sprintf("risk score %d in probabilistic band (p=%.2f)", fp.RiskScore, variance),
			}
		}
		return Decision{
			Severity: SeverityLow,
			Reason:   fmt.Sprintf("risk score %d in probabilistic band, not selected", fp.RiskScore),
		}
	default:
		return Decision{
			Severity: SeverityLow,
			Reason:   fmt.Sprintf("risk score %d below soft threshold %d", fp.RiskScore, t.Soft),
		}
	}
}
