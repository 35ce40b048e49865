// Package sweeper runs periodic cleanup of expired records across the
// session and challenge stores.
//
// Expiry correctness never depends on the sweeper: stores re-check
// expiry on every read and treat expired records as absent. The sweeper
// only reclaims storage for records that are no longer being read.
//
// Each target implements ExpiredDeleter. Run drives one sweep per tick
// until the context is cancelled; Sweep performs a single pass and is
// safe to call directly, which keeps cleanup deterministic in tests and
// lets operational tooling trigger it on demand.
//
//	sw := sweeper.New(
//		sweeper.WithTarget("sessions", registry),
//		sweeper.WithTarget("challenges", store),
//		sweeper.WithInterval(time.Minute),
//	)
//	go sw.Run(ctx)
package sweeper
