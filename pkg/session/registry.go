package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/botwall/pkg/logger"
)

// Registry issues session identities and enforces request quotas over a
// durable store with a local read cache in front.
type Registry struct {
	store  Store
	cache  *readCache
	config Config
	log    *slog.Logger
	now    func() time.Time
}

// New creates a registry over the given store.
func New(store Store, opts ...Option) (*Registry, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	r := &Registry{
		store:  store,
		config: DefaultConfig(),
		log:    slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.cache = newReadCache(r.config.CacheSize, r.config.CacheTTL, r.now)
	return r, nil
}

// NewFromConfig creates a registry from env-driven settings.
func NewFromConfig(cfg Config, store Store, opts ...Option) (*Registry, error) {
	return New(store, append([]Option{WithConfig(cfg)}, opts...)...)
}

// GetOrCreate resolves the active session for an owner key, minting one
// when none exists. Reuse extends expiry up to one window from now
// without touching the counter, so quota consumption survives the
// lookup. At most one active session per owner key.
func (r *Registry) GetOrCreate(ctx context.Context, kind OwnerKind, key string) (*Session, error) {
	if key == "" {
		return nil, ErrInvalidSession
	}

	sess, err := r.store.GetByOwner(ctx, kind, key)
	switch {
	case err == nil:
		return r.extendExpiry(ctx, sess)
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrSessionExpired):
		return r.create(ctx, kind, key)
	default:
		return nil, r.storeFailure(ctx, "get_or_create", err)
	}
}

// IncrementAndCheck counts one request against the token's quota and
// reports whether it is still within limits. Concurrent calls never
// under-count: the increment is a store-level atomic. The operation is
// deliberately not cancellable — a client abort mid-request must still
// consume quota.
func (r *Registry) IncrementAndCheck(ctx context.Context, token string) (QuotaResult, error) {
	ctx = context.WithoutCancel(ctx)

	sess, err := r.lookup(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrSessionExpired) {
			return QuotaResult{}, err
		}
		return r.quotaFailure(ctx, err)
	}

	count, err := r.store.IncrementCount(ctx, token, sess.ExpiresAt.Sub(r.now()))
	if err != nil {
		return r.quotaFailure(ctx, err)
	}

	return QuotaResult{
		Allowed:      count <= sess.RequestLimit,
		CurrentCount: count,
		Limit:        sess.RequestLimit,
		ResetAt:      sess.ExpiresAt,
	}, nil
}

// LinkToOwner attaches a session to an account identity mid-session.
// When the account already owns a different active session, the current
// one is deactivated and the pre-existing session wins with its counters
// intact. Otherwise the session is re-keyed in place and the
// authenticated quota applies going forward.
func (r *Registry) LinkToOwner(ctx context.Context, token string, kind OwnerKind, key string) (*Session, error) {
	if key == "" {
		return nil, ErrInvalidSession
	}

	sess, err := r.store.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrSessionExpired) {
			return nil, err
		}
		return nil, r.storeFailure(ctx, "link_to_owner", err)
	}

	if sess.OwnerKind == kind && sess.OwnerKey == key {
		return sess, nil
	}

	existing, err := r.store.GetByOwner(ctx, kind, key)
	if err == nil && existing.Token != token {
		return r.supersede(ctx, token, kind, key)
	}
	if err != nil && !errors.Is(err, ErrSessionNotFound) && !errors.Is(err, ErrSessionExpired) {
		return nil, r.storeFailure(ctx, "link_to_owner", err)
	}

	relink := func(current *Session) *Session {
		next := *current
		next.OwnerKind = kind
		next.OwnerKey = key
		next.RequestLimit = r.config.LimitFor(kind)
		return &next
	}

	next := relink(sess)
	if err := r.updateWithRetry(ctx, next, sess.Version, func(ctx context.Context) (*Session, error) {
		return r.store.GetByToken(ctx, token)
	}, relink); err != nil {
		if errors.Is(err, ErrOwnerConflict) {
			// The account claimed a session between the check above and
			// the update; that session wins, same as the pre-existing
			// case.
			return r.supersede(ctx, token, kind, key)
		}
		return nil, err
	}

	r.cache.invalidate(token)
	return r.store.GetByToken(ctx, token)
}

// supersede deactivates the current session in favor of the owner's
// established one.
func (r *Registry) supersede(ctx context.Context, token string, kind OwnerKind, key string) (*Session, error) {
	winner, err := r.store.GetByOwner(ctx, kind, key)
	if err != nil {
		return nil, r.storeFailure(ctx, "link_to_owner", err)
	}
	if err := r.store.Deactivate(ctx, token); err != nil {
		return nil, r.storeFailure(ctx, "link_to_owner", err)
	}
	r.cache.invalidate(token)
	r.log.InfoContext(ctx, "session superseded by existing owner session",
		logger.Component("session"),
		logger.OwnerKind(string(kind)),
	)
	return winner, nil
}

// Revoke deletes a session outright.
func (r *Registry) Revoke(ctx context.Context, token string) error {
	r.cache.invalidate(token)
	if err := r.store.Delete(ctx, token); err != nil {
		return r.storeFailure(ctx, "revoke", err)
	}
	return nil
}

// DeleteExpired removes expired records from the durable store. Exposed
// so an external sweeper can trigger cleanup deterministically.
func (r *Registry) DeleteExpired(ctx context.Context) error {
	return r.store.DeleteExpired(ctx)
}

// lookup resolves a token to a live session, serving fresh cache hits
// and falling through to the store otherwise. Only positive results are
// cached.
func (r *Registry) lookup(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	if sess, ok := r.cache.get(token); ok {
		return sess, nil
	}

	sess, err := r.store.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !sess.IsActive {
		return nil, ErrSessionNotFound
	}

	r.cache.put(sess)
	return sess, nil
}

// create mints a session for an owner key. A creation race surfaces as
// ErrOwnerConflict, in which case the winner's session is re-read and
// reused — the one permitted retry for this path.
func (r *Registry) create(ctx context.Context, kind OwnerKind, key string) (*Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	now := r.now()
	sess := &Session{
		ID:           uuid.New(),
		Token:        token,
		OwnerKind:    kind,
		OwnerKey:     key,
		RequestLimit: r.config.LimitFor(kind),
		CreatedAt:    now,
		ExpiresAt:    now.Add(r.config.Window),
		IsActive:     true,
	}

	err = r.store.Create(ctx, sess)
	switch {
	case err == nil:
		r.cache.put(sess)
		return sess, nil
	case errors.Is(err, ErrOwnerConflict):
		winner, err := r.store.GetByOwner(ctx, kind, key)
		if err != nil {
			return nil, r.storeFailure(ctx, "get_or_create", err)
		}
		return winner, nil
	default:
		return nil, r.storeFailure(ctx, "get_or_create", err)
	}
}

// extendExpiry pushes the session's expiry up to one window from now.
// A lost update race is re-read and retried exactly once.
func (r *Registry) extendExpiry(ctx context.Context, sess *Session) (*Session, error) {
	newExpiry := r.now().Add(r.config.Window)
	if !newExpiry.After(sess.ExpiresAt) {
		return sess, nil
	}

	extend := func(current *Session) *Session {
		next := *current
		if newExpiry.After(next.ExpiresAt) {
			next.ExpiresAt = newExpiry
		}
		return &next
	}

	next := extend(sess)
	if err := r.updateWithRetry(ctx, next, sess.Version, func(ctx context.Context) (*Session, error) {
		return r.store.GetByOwner(ctx, sess.OwnerKind, sess.OwnerKey)
	}, extend); err != nil {
		return nil, err
	}

	r.cache.invalidate(sess.Token)
	return r.store.GetByToken(ctx, sess.Token)
}

// updateWithRetry performs a conditional update, and on a version
// conflict re-reads and retries exactly once before giving up. An owner
// conflict is a semantic outcome, not store trouble: it passes through
// unwrapped so callers can resolve the claim.
func (r *Registry) updateWithRetry(ctx context.Context, next *Session, expectedVersion int64, reread func(context.Context) (*Session, error), apply func(*Session) *Session) error {
	err := r.store.UpdateIf(ctx, next, expectedVersion)
	if err == nil || errors.Is(err, ErrOwnerConflict) {
		return err
	}
	if !errors.Is(err, ErrVersionConflict) {
		return r.storeFailure(ctx, "update", err)
	}

	current, err := reread(ctx)
	if err != nil {
		return r.storeFailure(ctx, "update", err)
	}
	err = r.store.UpdateIf(ctx, apply(current), current.Version)
	if err != nil && !errors.Is(err, ErrOwnerConflict) {
		return r.storeFailure(ctx, "update", err)
	}
	return err
}

// storeFailure applies the fail-open/fail-closed policy to a durable
// store error on non-quota paths.
func (r *Registry) storeFailure(ctx context.Context, op string, err error) error {
	r.log.WarnContext(ctx, "session store failure",
		logger.Component("session"),
		slog.String("op", op),
		logger.Error(err),
	)
	return errors.Join(ErrStoreUnavailable, err)
}

// quotaFailure resolves a store error during a quota check: fail closed
// (deny) in production, fail open (allow with a warning) when the
// development policy switch is set.
func (r *Registry) quotaFailure(ctx context.Context, err error) (QuotaResult, error) {
	if r.config.FailOpen {
		r.log.WarnContext(ctx, "session store unreachable, failing open",
			logger.Component("session"),
			logger.Error(err),
		)
		return QuotaResult{Allowed: true}, nil
	}

	r.log.WarnContext(ctx, "session store unreachable, failing closed",
		logger.Component("session"),
		logger.Error(err),
	)
	return QuotaResult{}, errors.Join(ErrStoreUnavailable, err)
}
