package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on Redis: the durable source of truth
// shared across processes.
//
// Record layout:
//
//	{prefix}:t:{token}      JSON session record, TTL = expiry
//	{prefix}:o:{kind}:{key} owner index -> token, TTL = expiry
//	{prefix}:c:{token}      request counter, TTL = window
//
// Counters use INCR, which is atomic by construction. Conditional
// record updates use WATCH with a version check, surfacing lost races
// as ErrVersionConflict for the registry's single-retry path.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix overrides the default key namespace.
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: "botwall:session",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) tokenKey(token string) string {
	return s.prefix + ":t:" + token
}

func (s *RedisStore) ownerKey(kind OwnerKind, key string) string {
	return s.prefix + ":o:" + string(kind) + ":" + key
}

func (s *RedisStore) counterKey(token string) string {
	return s.prefix + ":c:" + token
}

// Create stores a new session. The owner index entry is claimed with
// SETNX; a live claim by another session yields ErrOwnerConflict.
func (s *RedisStore) Create(ctx context.Context, sess *Session) error {
	if sess == nil || sess.Token == "" || sess.OwnerKey == "" {
		return ErrInvalidSession
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return ErrSessionExpired
	}

	if sess.IsActive {
		idx := s.ownerKey(sess.OwnerKind, sess.OwnerKey)
		claimed, err := s.client.SetNX(ctx, idx, sess.Token, ttl).Result()
		if err != nil {
			return errors.Join(ErrStoreUnavailable, err)
		}
		if !claimed {
			// The index may point at a session that has since expired
			// or deactivated; only a live one blocks creation.
			if existing, err := s.resolveOwner(ctx, idx); err == nil && existing.IsActive {
				return ErrOwnerConflict
			}
			if err := s.client.Set(ctx, idx, sess.Token, ttl).Err(); err != nil {
				return errors.Join(ErrStoreUnavailable, err)
			}
		}
	}

	return s.writeRecord(ctx, sess, ttl)
}

// GetByToken retrieves a session, populating RequestCount from the
// counter record. Expiry is re-checked against the embedded instant so
// correctness never depends on Redis TTL precision or a recent sweep.
func (s *RedisStore) GetByToken(ctx context.Context, token string) (*Session, error) {
	raw, err := s.client.Get(ctx, s.tokenKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, errors.Join(ErrInvalidSession, err)
	}

	if time.Now().After(sess.ExpiresAt) {
		_ = s.Delete(ctx, token)
		return nil, ErrSessionExpired
	}

	count, err := s.client.Get(ctx, s.counterKey(token)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	sess.RequestCount = count

	return &sess, nil
}

// GetByOwner retrieves the active session for an owner key.
func (s *RedisStore) GetByOwner(ctx context.Context, kind OwnerKind, key string) (*Session, error) {
	sess, err := s.resolveOwner(ctx, s.ownerKey(kind, key))
	if err != nil {
		return nil, err
	}
	if !sess.IsActive {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// UpdateIf applies the record under WATCH only when the stored version
// still matches, bumping the version and moving owner index entries as
// needed. A concurrent write aborts the transaction and surfaces as
// ErrVersionConflict.
func (s *RedisStore) UpdateIf(ctx context.Context, sess *Session, expectedVersion int64) error {
	if sess == nil || sess.Token == "" {
		return ErrInvalidSession
	}

	key := s.tokenKey(sess.Token)
	newIdx := s.ownerKey(sess.OwnerKind, sess.OwnerKey)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}

		var current Session
		if err := json.Unmarshal(raw, &current); err != nil {
			return errors.Join(ErrInvalidSession, err)
		}
		if current.Version != expectedVersion {
			return ErrVersionConflict
		}

		next := *sess
		next.Version = expectedVersion + 1
		payload, err := json.Marshal(&next)
		if err != nil {
			return errors.Join(ErrInvalidSession, err)
		}

		ttl := time.Until(next.ExpiresAt)
		if ttl <= 0 {
			return ErrSessionExpired
		}

		oldIdx := s.ownerKey(current.OwnerKind, current.OwnerKey)

		// Re-keying must not steal an owner index claimed by another
		// live session in the check-then-update window. The index key
		// is under WATCH, so a claim landing after this read aborts
		// the transaction instead of being overwritten.
		if next.IsActive && newIdx != oldIdx {
			claimedToken, err := tx.Get(ctx, newIdx).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if err == nil && claimedToken != next.Token {
				if claimed, err := s.readRecord(ctx, tx, claimedToken); err == nil &&
					claimed.IsActive && time.Now().Before(claimed.ExpiresAt) {
					return ErrOwnerConflict
				}
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, ttl)
			if current.IsActive && (oldIdx != newIdx || !next.IsActive) {
				pipe.Del(ctx, oldIdx)
			}
			if next.IsActive {
				pipe.Set(ctx, newIdx, next.Token, ttl)
			}
			return nil
		})
		return err
	}, key, newIdx)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.TxFailedErr):
		return ErrVersionConflict
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrSessionExpired),
		errors.Is(err, ErrVersionConflict),
		errors.Is(err, ErrOwnerConflict),
		errors.Is(err, ErrInvalidSession):
		return err
	default:
		return errors.Join(ErrStoreUnavailable, err)
	}
}

// Deactivate soft-disables a session and releases its owner index entry.
func (s *RedisStore) Deactivate(ctx context.Context, token string) error {
	sess, err := s.GetByToken(ctx, token)
	if err != nil {
		return err
	}
	if !sess.IsActive {
		return nil
	}

	next := *sess
	next.IsActive = false
	return s.UpdateIf(ctx, &next, sess.Version)
}

// Delete removes the session record, its owner index entry, and its
// counter.
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	keys := []string{s.tokenKey(token), s.counterKey(token)}

	if raw, err := s.client.Get(ctx, s.tokenKey(token)).Bytes(); err == nil {
		var sess Session
		if json.Unmarshal(raw, &sess) == nil {
			keys = append(keys, s.ownerKey(sess.OwnerKind, sess.OwnerKey))
		}
	}

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// DeleteExpired scans for records whose embedded expiry passed before
// their Redis TTL fired. Advisory: reads re-check expiry themselves.
func (s *RedisStore) DeleteExpired(ctx context.Context) error {
	now := time.Now()
	iter := s.client.Scan(ctx, 0, s.prefix+":t:*", 100).Iterator()
	for iter.Next(ctx) {
		raw, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			continue
		}
		var sess Session
		if json.Unmarshal(raw, &sess) != nil {
			continue
		}
		if now.After(sess.ExpiresAt) {
			_ = s.Delete(ctx, sess.Token)
		}
	}
	if err := iter.Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// IncrementCount bumps the counter with INCR; the first increment of a
// window arms the key's expiry.
func (s *RedisStore) IncrementCount(ctx context.Context, token string, window time.Duration) (int64, error) {
	key := s.counterKey(token)

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, errors.Join(ErrStoreUnavailable, err)
	}
	if count == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return count, errors.Join(ErrStoreUnavailable, err)
		}
	}
	return count, nil
}

// readRecord fetches and unmarshals a session record through the given
// command runner, without the counter or expiry side effects of
// GetByToken.
func (s *RedisStore) readRecord(ctx context.Context, c redis.Cmdable, token string) (*Session, error) {
	raw, err := c.Get(ctx, s.tokenKey(token)).Bytes()
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// resolveOwner follows an owner index entry to its session record.
func (s *RedisStore) resolveOwner(ctx context.Context, idx string) (*Session, error) {
	token, err := s.client.Get(ctx, idx).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return s.GetByToken(ctx, token)
}

// writeRecord marshals and stores the session record with its TTL.
func (s *RedisStore) writeRecord(ctx context.Context, sess *Session, ttl time.Duration) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return errors.Join(ErrInvalidSession, err)
	}
	if err := s.client.Set(ctx, s.tokenKey(sess.Token), payload, ttl).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
