// Package challenge decides whether a request must prove it runs in a
// real execution environment, issues the proof material, and verifies
// the result.
//
// Three cooperating pieces share one Store of short-lived challenge
// sessions:
//
//   - Engine – tiered threshold logic over a fingerprint's risk score.
//     Scores at or above the hard threshold (and declared bots) are
//     always challenged; scores below the soft threshold never are. In
//     between, the challenge probability scales linearly from 0 to 1, so
//     there is no fixed cutoff a probing client can sit just below.
//
//   - Dispatcher – runs the analyzer and the engine for a request and
//     records a challenge session either way, so downstream bookkeeping
//     is uniform. When a challenge is required it issues a payload with
//     two single-use resource paths (one script, one stylesheet) the
//     client must fetch.
//
//   - Tracker – accepts resource-load beacons and verifies that exactly
//     the issued paths were fetched. Fetching any script or stylesheet is
//     not enough; only the specific issued pair passes, which filters
//     generic pre-fetch bots.
//
// A challenge session moves from created, through partial resource
// loads, to verified — or it simply expires. There is no failed state:
// the caller decides whether an expired or incomplete session means
// re-challenge or denial.
//
// Randomness in the probabilistic band is injected (WithRand), so tests
// seed it and production uses math/rand/v2. Reason strings are for
// server-side logging only and must never reach clients.
package challenge
