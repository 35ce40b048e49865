package challenge

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Tracker records resource-load beacons and verifies that the exact
// issued resources were fetched.
type Tracker struct {
	store Store
}

// NewTracker creates a tracker over the same store the dispatcher uses.
func NewTracker(store Store) (*Tracker, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	return &Tracker{store: store}, nil
}

// RecordLoad registers that the client fetched a resource path. Returns
// true when the session exists and is current; duplicate beacons are
// harmless. Unknown or expired sessions return false, never an error —
// a stale beacon is a normal negative, not a fault.
func (t *Tracker) RecordLoad(ctx context.Context, id uuid.UUID, path string, kind ResourceKind) bool {
	if path == "" {
		return false
	}
	err := t.store.AddLoaded(ctx, id, kind, path)
	return err == nil
}

// Verify checks that both exact expected paths were beacon-reported for
// the session. A partial load fails with a reason naming the missing
// resource. Loading unrelated scripts or stylesheets never passes: that
// pattern indicates a generic pre-fetch bot, not a real render.
func (t *Tracker) Verify(ctx context.Context, id uuid.UUID, expectedJS, expectedCSS string) VerifyResult {
	sess, err := t.store.Get(ctx, id)
	if err != nil {
		reason := "challenge session not found"
		if errors.Is(err, ErrSessionExpired) {
			reason = "challenge session expired"
		}
		return VerifyResult{Reason: reason}
	}

	result := VerifyResult{
		JSLoaded:  sess.Loaded(ResourceJS, expectedJS),
		CSSLoaded: sess.Loaded(ResourceCSS, expectedCSS),
	}

	switch {
	case result.JSLoaded && result.CSSLoaded:
		result.Passed = true
		result.Reason = "all required resources loaded"
	case result.JSLoaded:
		result.Reason = "challenge stylesheet was not loaded"
	case result.CSSLoaded:
		result.Reason = "challenge script was not loaded"
	default:
		result.Reason = "no required resources loaded"
	}

	return result
}

// MarkVerified records successful verification on the session. One-way:
// there is no un-verify operation.
func (t *Tracker) MarkVerified(ctx context.Context, id uuid.UUID) error {
	return t.store.MarkVerified(ctx, id)
}
