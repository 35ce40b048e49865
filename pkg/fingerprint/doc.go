// Package fingerprint scores incoming requests for automation likelihood
// and derives stable device hashes for session binding.
//
// The package has two independent entry points:
//
//   - Analyze – pure heuristic scoring of a declared client signature
//     (typically the User-Agent value) together with the request headers.
//     It returns a Fingerprint with an additive risk score clamped to
//     [0,100], the ordered list of matched heuristics, and a derived
//     bot verdict. Analyze performs no I/O, keeps no state, and is
//     deterministic for identical input, so it is safe on every request.
//
//   - Hash – a compact device/browser hash built from stable request
//     attributes (signature, Accept* headers, client IP, header shape),
//     suitable for persisting next to a session to recognize the device
//     on later requests.
//
// Scoring is intentionally rule-based rather than statistical: a fixed
// marker list catches declared automation clients outright, while a small
// set of consistency heuristics catches signatures that claim one thing
// and send headers saying another. Trusted edge/CDN markers are recorded
// for observability but never penalized.
//
// Usage:
//
//	fp := fingerprint.Analyze(r.UserAgent(), fingerprint.FlattenHeaders(r.Header))
//	if fp.IsLikelyBot {
//	    // route through the challenge flow
//	}
//
// The Middleware variant runs Analyze once per request and stores the
// result in the request context for downstream handlers.
package fingerprint
