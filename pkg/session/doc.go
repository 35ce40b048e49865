// Package session issues coarse per-client identities and enforces
// request quotas against them.
//
// A session groups requests by owner: anonymous owners are keyed by a
// salted hash of the client's network address, authenticated owners by
// their account id. At most one active session exists per owner key —
// creation reuses an existing active session instead of minting a
// duplicate, extending its expiry without resetting quota consumption.
//
// The Registry exposes three operations:
//
//   - GetOrCreate – resolve or mint the session for an owner key.
//   - IncrementAndCheck – atomically count a request against the
//     session's quota. Concurrent increments on one token never
//     under-count; the counter lives in the durable store and the N-th
//     increment observes a value of at least N.
//   - LinkToOwner – attach an anonymous session to an account. If the
//     account already owns an active session, the anonymous one is
//     deactivated and the account's session wins, keeping counters
//     intact; otherwise the session is re-keyed with the higher
//     authenticated quota going forward.
//
// Storage is two-tiered: a durable Store (Redis in production, memory in
// tests and single-instance deployments) is the source of truth, with a
// small in-process read cache in front of it. The cache is bounded by a
// sub-minute TTL and is never authoritative for denying a request — any
// ambiguous cached state falls through to the store.
//
// When the durable store is unreachable the registry fails closed and
// denies, unless Config.FailOpen is set for development environments, in
// which case it allows the request and logs a warning. The switch is an
// explicit policy, not a fallback.
//
// Quota consumption is deliberately not cancellable: an increment keeps
// counting even when the client disconnects mid-request, otherwise fast
// aborts would bypass the quota.
package session
