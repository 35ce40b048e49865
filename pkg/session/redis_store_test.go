package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/botwall/pkg/session"
)

func newRedisStore(t *testing.T) (*session.RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return session.NewRedisStore(client), mr
}

func TestRedisStore_CreateAndGet(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		store, _ := newRedisStore(t)
		ctx := context.Background()

		sess := newTestSession("tok-1", "owner-1")
		require.NoError(t, store.Create(ctx, sess))

		got, err := store.GetByToken(ctx, "tok-1")
		require.NoError(t, err)
		assert.Equal(t, sess.ID, got.ID)
		assert.Equal(t, sess.OwnerKey, got.OwnerKey)
		assert.True(t, got.IsActive)
		assert.EqualValues(t, 0, got.RequestCount)
	})

	t.Run("owner index resolves", func(t *testing.T) {
		t.Parallel()

		store, _ := newRedisStore(t)
		ctx := context.Background()

		require.NoError(t, store.Create(ctx, newTestSession("tok-2", "owner-2")))

		got, err := store.GetByOwner(ctx, session.OwnerAnonymous, "owner-2")
		require.NoError(t, err)
		assert.Equal(t, "tok-2", got.Token)
	})

	t.Run("live owner claim conflicts", func(t *testing.T) {
		t.Parallel()

		store, _ := newRedisStore(t)
		ctx := context.Background()

		require.NoError(t, store.Create(ctx, newTestSession("tok-a", "shared")))
		err := store.Create(ctx, newTestSession("tok-b", "shared"))
		assert.ErrorIs(t, err, session.ErrOwnerConflict)
	})

	t.Run("already expired session is rejected", func(t *testing.T) {
		t.Parallel()

		store, _ := newRedisStore(t)
		ctx := context.Background()

		sess := newTestSession("tok-3", "owner-3")
		sess.ExpiresAt = time.Now().Add(-time.Minute)
		assert.ErrorIs(t, store.Create(ctx, sess), session.ErrSessionExpired)
	})

	t.Run("unknown token", func(t *testing.T) {
		t.Parallel()

		store, _ := newRedisStore(t)
		_, err := store.GetByToken(context.Background(), "missing")
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})
}

func TestRedisStore_Expiry(t *testing.T) {
	t.Parallel()

	t.Run("redis TTL drops the record", func(t *testing.T) {
		t.Parallel()

		store, mr := newRedisStore(t)
		ctx := context.Background()

		sess := newTestSession("tok-ttl", "owner-ttl")
		sess.ExpiresAt = time.Now().Add(time.Minute)
		require.NoError(t, store.Create(ctx, sess))

		mr.FastForward(2 * time.Minute)

		_, err := store.GetByToken(ctx, "tok-ttl")
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("embedded expiry beats a lingering key", func(t *testing.T) {
		t.Parallel()

		store, _ := newRedisStore(t)
		ctx := context.Background()

		// Write a record whose embedded expiry is already borderline.
		sess := newTestSession("tok-edge", "owner-edge")
		sess.ExpiresAt = time.Now().Add(50 * time.Millisecond)
		require.NoError(t, store.Create(ctx, sess))

		time.Sleep(100 * time.Millisecond)

		_, err := store.GetByToken(ctx, "tok-edge")
		assert.ErrorIs(t, err, session.ErrSessionExpired)

		// The expiring read cleaned up the record.
		_, err = store.GetByToken(ctx, "tok-edge")
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("delete expired sweeps lingering records", func(t *testing.T) {
		t.Parallel()

		store, _ := newRedisStore(t)
		ctx := context.Background()

		old := newTestSession("tok-old", "owner-old")
		old.ExpiresAt = time.Now().Add(50 * time.Millisecond)
		require.NoError(t, store.Create(ctx, old))

		fresh := newTestSession("tok-fresh", "owner-fresh")
		require.NoError(t, store.Create(ctx, fresh))

		time.Sleep(100 * time.Millisecond)
		require.NoError(t, store.DeleteExpired(ctx))

		_, err := store.GetByToken(ctx, "tok-old")
		assert.ErrorIs(t, err, session.ErrSessionNotFound)

		_, err = store.GetByToken(ctx, "tok-fresh")
		require.NoError(t, err)
	})
}

func TestRedisStore_UpdateIf(t *testing.T) {
	t.Parallel()

	t.Run("matching version applies and bumps", func(t *testing.T) {
		t.Parallel()

		store, _ := newRedisStore(t)
		ctx := context.Background()

		sess := newTestSession("tok-v", "owner-v")
		require.NoError(t, store.Create(ctx, sess))

		next := *sess
		next.ExpiresAt = next.ExpiresAt.Add(time.Hour)
		require.NoError(t, store.UpdateIf(ctx, &next, 0))

		got, err := store.GetByToken(ctx, "tok-v")
		require.NoError(t, err)
		assert.EqualValues(t, 1, got.Version)
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		t.Parallel()

		store, _ := newRedisStore(t)
		ctx := context.Background()

		sess := newTestSession("tok-v2", "owner-v2")
		require.NoError(t, store.Create(ctx, sess))

		next := *sess
		require.NoError(t, store.UpdateIf(ctx, &next, 0))

		stale := *sess
		assert.ErrorIs(t, store.UpdateIf(ctx, &stale, 0), session.ErrVersionConflict)
	})

	t.Run("re-keying moves the owner index", func(t *testing.T) {
		t.Parallel()

		store, _ := newRedisStore(t)
		ctx := context.Background()

		sess := newTestSession("tok-link", "anon-key")
		require.NoError(t, store.Create(ctx, sess))

		next := *sess
		next.OwnerKind = session.OwnerAuthenticated
		next.OwnerKey = "user-42"
		require.NoError(t, store.UpdateIf(ctx, &next, 0))

		_, err := store.GetByOwner(ctx, session.OwnerAnonymous, "anon-key")
		assert.ErrorIs(t, err, session.ErrSessionNotFound)

		got, err := store.GetByOwner(ctx, session.OwnerAuthenticated, "user-42")
		require.NoError(t, err)
		assert.Equal(t, "tok-link", got.Token)
	})

	t.Run("re-keying onto a live claim conflicts", func(t *testing.T) {
		t.Parallel()

		store, _ := newRedisStore(t)
		ctx := context.Background()

		claimant := newTestSession("tok-claimed", "user-1")
		claimant.OwnerKind = session.OwnerAuthenticated
		require.NoError(t, store.Create(ctx, claimant))

		other := newTestSession("tok-other", "visitor")
		require.NoError(t, store.Create(ctx, other))

		next := *other
		next.OwnerKind = session.OwnerAuthenticated
		next.OwnerKey = "user-1"
		assert.ErrorIs(t, store.UpdateIf(ctx, &next, 0), session.ErrOwnerConflict)

		// The claimant's index entry is untouched.
		got, err := store.GetByOwner(ctx, session.OwnerAuthenticated, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "tok-claimed", got.Token)
	})

	t.Run("unknown token", func(t *testing.T) {
		t.Parallel()

		store, _ := newRedisStore(t)
		sess := newTestSession("missing", "owner")
		assert.ErrorIs(t, store.UpdateIf(context.Background(), sess, 0), session.ErrSessionNotFound)
	})
}

func TestRedisStore_Deactivate(t *testing.T) {
	t.Parallel()

	store, _ := newRedisStore(t)
	ctx := context.Background()

	sess := newTestSession("tok-off", "owner-off")
	require.NoError(t, store.Create(ctx, sess))
	require.NoError(t, store.Deactivate(ctx, "tok-off"))

	got, err := store.GetByToken(ctx, "tok-off")
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	_, err = store.GetByOwner(ctx, session.OwnerAnonymous, "owner-off")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	// A deactivated claim no longer blocks creation.
	require.NoError(t, store.Create(ctx, newTestSession("tok-new", "owner-off")))
}

func TestRedisStore_Counters(t *testing.T) {
	t.Parallel()

	t.Run("increments accumulate and surface on read", func(t *testing.T) {
		t.Parallel()

		store, _ := newRedisStore(t)
		ctx := context.Background()

		sess := newTestSession("tok-c", "owner-c")
		require.NoError(t, store.Create(ctx, sess))

		for i := 1; i <= 5; i++ {
			count, err := store.IncrementCount(ctx, "tok-c", time.Hour)
			require.NoError(t, err)
			assert.EqualValues(t, i, count)
		}

		got, err := store.GetByToken(ctx, "tok-c")
		require.NoError(t, err)
		assert.EqualValues(t, 5, got.RequestCount)
	})

	t.Run("window expiry resets the counter", func(t *testing.T) {
		t.Parallel()

		store, mr := newRedisStore(t)
		ctx := context.Background()

		count, err := store.IncrementCount(ctx, "tok-w", time.Minute)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)

		mr.FastForward(2 * time.Minute)

		count, err = store.IncrementCount(ctx, "tok-w", time.Minute)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
	})
}

func TestRedisStore_Delete(t *testing.T) {
	t.Parallel()

	store, _ := newRedisStore(t)
	ctx := context.Background()

	sess := newTestSession("tok-del", "owner-del")
	require.NoError(t, store.Create(ctx, sess))
	_, err := store.IncrementCount(ctx, "tok-del", time.Hour)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "tok-del"))

	_, err = store.GetByToken(ctx, "tok-del")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
	_, err = store.GetByOwner(ctx, session.OwnerAnonymous, "owner-del")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	// Counter is gone: a fresh session starts from zero.
	require.NoError(t, store.Create(ctx, newTestSession("tok-del", "owner-del")))
	count, err := store.IncrementCount(ctx, "tok-del", time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestRedisStore_RegistryIntegration(t *testing.T) {
	t.Parallel()

	store, _ := newRedisStore(t)
	registry, err := session.New(store,
		session.WithLogger(quietLogger()),
		session.WithLimits(3, 6),
	)
	require.NoError(t, err)
	ctx := context.Background()

	sess, err := registry.GetOrCreate(ctx, session.OwnerAnonymous, "visitor")
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		result, err := registry.IncrementAndCheck(ctx, sess.Token)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	}

	result, err := registry.IncrementAndCheck(ctx, sess.Token)
	require.NoError(t, err)
	assert.False(t, result.Allowed)

	linked, err := registry.LinkToOwner(ctx, sess.Token, session.OwnerAuthenticated, "user-1")
	require.NoError(t, err)
	assert.EqualValues(t, 6, linked.RequestLimit)
	assert.EqualValues(t, 4, linked.RequestCount)

	result, err = registry.IncrementAndCheck(ctx, linked.Token)
	require.NoError(t, err)
	assert.True(t, result.Allowed, "headroom restored under the authenticated quota")
}
