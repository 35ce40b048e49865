package fingerprint

import (
	"fmt"
	"net/http"
	"strings"
)

// Score weights. Additive; the total is clamped to [MinScore, MaxScore].
const (
	ScoreKnownAutomation = 70
	ScoreInconsistency   = 15
	ScoreMissingHeaders  = 20
	ScoreExcessProxies   = 25

	// BotThreshold is the risk score at which a request is considered
	// likely automated even without a declared automation marker.
	BotThreshold = 40

	MinScore = 0
	MaxScore = 100

	// MaxSignatureLength is the longest client signature seen from real
	// browsers with a comfortable margin; longer values are fabricated.
	MaxSignatureLength = 512

	maxProxyHeaders = 2
)

// Fingerprint is the derived risk signal for a single request.
// It is ephemeral: computed per request, never persisted.
type Fingerprint struct {
	// ClientSignature is the declared client identity, verbatim.
	ClientSignature string

	// Headers is the normalized (lower-cased keys) header set the
	// score was computed from.
	Headers map[string]string

	// SuspiciousPatterns lists matched heuristics in evaluation order.
	// Server-side observability only, never exposed to clients.
	SuspiciousPatterns []string

	// RiskScore is the clamped additive score in [0,100].
	RiskScore int

	// KnownBot is set when the signature matches a declared automation
	// marker, independent of the score.
	KnownBot bool

	// IsLikelyBot is the derived verdict: a known bot or a score at or
	// above BotThreshold.
	IsLikelyBot bool

	// TrustedEdge lists recognized CDN/edge headers present on the
	// request. Informational, contributes nothing to the score.
	TrustedEdge []string
}

// Analyze scores a request's declared client signature and header set.
// Pure and deterministic: identical input always yields an identical
// Fingerprint, with no I/O and no hidden state.
func Analyze(clientSignature string, headers map[string]string) Fingerprint {
	fp := Fingerprint{
		ClientSignature: clientSignature,
		Headers:         normalizeHeaders(headers),
	}

	signature := strings.ToLower(clientSignature)

	for _, marker := range automationMarkers {
		if strings.Contains(signature, marker) {
			fp.KnownBot = true
			fp.SuspiciousPatterns = append(fp.SuspiciousPatterns, "known automation marker: "+marker)
			fp.RiskScore += ScoreKnownAutomation
			break
		}
	}

	for _, edge := range trustedEdgeHeaders {
		if _, ok := fp.Headers[edge]; ok {
			fp.TrustedEdge = append(fp.TrustedEdge, edge)
		}
	}

	proxyCount := 0
	for _, h := range proxyHeaders {
		if _, ok := fp.Headers[h]; ok {
			proxyCount++
		}
	}

	for _, check := range consistencyChecks {
		if reason, ok := check(signature, fp.Headers, proxyCount, len(fp.TrustedEdge)); ok {
			fp.SuspiciousPatterns = append(fp.SuspiciousPatterns, reason)
			fp.RiskScore += ScoreInconsistency
		}
	}

	missing := 0
	for _, h := range requiredHeaders {
		if _, ok := fp.Headers[h]; !ok {
			missing++
		}
	}
	if missing > 1 {
		fp.SuspiciousPatterns = append(fp.SuspiciousPatterns,
			fmt.Sprintf("missing %d of %d baseline browser headers", missing, len(requiredHeaders)))
		fp.RiskScore += ScoreMissingHeaders
	}

	if proxyCount > maxProxyHeaders {
		fp.SuspiciousPatterns = append(fp.SuspiciousPatterns,
			fmt.Sprintf("excessive forwarding headers (%d)", proxyCount))
		fp.RiskScore += ScoreExcessProxies
	}

	fp.RiskScore = min(max(fp.RiskScore, MinScore), MaxScore)
	fp.IsLikelyBot = fp.KnownBot || fp.RiskScore >= BotThreshold

	return fp
}

// consistencyCheck inspects the signature/header pair for an internal
// contradiction. Returns the reason string and whether it matched.
type consistencyCheck func(signature string, headers map[string]string, proxyCount, edgeCount int) (string, bool)

// Ordered: SuspiciousPatterns preserves this sequence, which keeps
// Analyze output stable across runs for logging and tests.
var consistencyChecks = []consistencyCheck{
	func(sig string, _ map[string]string, _, _ int) (string, bool) {
		return "empty client signature", sig == ""
	},
	func(sig string, _ map[string]string, _, _ int) (string, bool) {
		return "implausibly long client signature", len(sig) > MaxSignatureLength
	},
	func(sig string, headers map[string]string, _, _ int) (string, bool) {
		// Chromium-family browsers send client hints alongside the UA.
		if !strings.Contains(sig, "chrome/") {
			return "", false
		}
		_, ok := headers["sec-ch-ua"]
		return "claims chromium engine without client hint headers", !ok
	},
	func(sig string, _ map[string]string, _, _ int) (string, bool) {
		exclusive := (strings.Contains(sig, "firefox/") && strings.Contains(sig, "chrome/")) ||
			(strings.Contains(sig, "msie") && strings.Contains(sig, "applewebkit"))
		return "claims mutually exclusive rendering engines", exclusive
	},
	func(_ string, _ map[string]string, proxyCount, edgeCount int) (string, bool) {
		return "forwarding headers without a recognized edge provider", proxyCount > 0 && edgeCount == 0
	},
}

// normalizeHeaders lower-cases header keys into a fresh map so the
// caller's map is never mutated and lookups are case-stable.
func normalizeHeaders(headers map[string]string) map[string]string {
	normalized := make(map[string]string, len(headers))
	for k, v := range headers {
		normalized[strings.ToLower(k)] = v
	}
	return normalized
}

// FlattenHeaders converts an http.Header into the map form Analyze
// expects, keeping the first value of each header.
func FlattenHeaders(h http.Header) map[string]string {
	flat := make(map[string]string, len(h))
	for k, vs := range h {
		if len(vs) > 0 {
			flat[k] = vs[0]
		}
	}
	return flat
}
