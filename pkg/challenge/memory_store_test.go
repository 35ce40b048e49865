package challenge_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/botwall/pkg/challenge"
)

func newTestSession(ttl time.Duration) *challenge.Session {
	now := time.Now()
	return &challenge.Session{
		ID:           uuid.New(),
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
		RiskScore:    70,
		IsChallenged: true,
		RequiredJS:   "/challenge/r/a.js",
		RequiredCSS:  "/challenge/r/b.css",
		LoadedJS:     make(map[string]struct{}),
		LoadedCSS:    make(map[string]struct{}),
	}
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("create and get returns a copy", func(t *testing.T) {
		t.Parallel()

		store := challenge.NewMemoryStore()
		sess := newTestSession(time.Minute)
		require.NoError(t, store.Create(ctx, sess))

		got, err := store.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, sess.ID, got.ID)

		// Mutating the returned copy must not leak into the store.
		got.LoadedJS["/sneaky.js"] = struct{}{}
		again, err := store.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.Empty(t, again.LoadedJS)
	})

	t.Run("rejects nil and zero-id sessions", func(t *testing.T) {
		t.Parallel()

		store := challenge.NewMemoryStore()
		assert.ErrorIs(t, store.Create(ctx, nil), challenge.ErrInvalidSession)
		assert.ErrorIs(t, store.Create(ctx, &challenge.Session{}), challenge.ErrInvalidSession)
	})

	t.Run("get unknown id", func(t *testing.T) {
		t.Parallel()

		store := challenge.NewMemoryStore()
		_, err := store.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, challenge.ErrSessionNotFound)
	})

	t.Run("expired session reported and removed on read", func(t *testing.T) {
		t.Parallel()

		now := time.Now()
		store := challenge.NewMemoryStore(challenge.WithMemoryClock(func() time.Time { return now }))
		sess := newTestSession(time.Minute)
		require.NoError(t, store.Create(ctx, sess))

		now = now.Add(2 * time.Minute)
		_, err := store.Get(ctx, sess.ID)
		assert.ErrorIs(t, err, challenge.ErrSessionExpired)
		assert.Zero(t, store.Len())
	})

	t.Run("add loaded rejects expired sessions", func(t *testing.T) {
		t.Parallel()

		now := time.Now()
		store := challenge.NewMemoryStore(challenge.WithMemoryClock(func() time.Time { return now }))
		sess := newTestSession(time.Minute)
		require.NoError(t, store.Create(ctx, sess))

		now = now.Add(2 * time.Minute)
		err := store.AddLoaded(ctx, sess.ID, challenge.ResourceJS, sess.RequiredJS)
		assert.ErrorIs(t, err, challenge.ErrSessionExpired)
	})

	t.Run("add loaded validates kind", func(t *testing.T) {
		t.Parallel()

		store := challenge.NewMemoryStore()
		sess := newTestSession(time.Minute)
		require.NoError(t, store.Create(ctx, sess))
		assert.ErrorIs(t, store.AddLoaded(ctx, sess.ID, "font", "/x.woff2"), challenge.ErrInvalidSession)
	})

	t.Run("delete expired sweeps only expired", func(t *testing.T) {
		t.Parallel()

		now := time.Now()
		store := challenge.NewMemoryStore(challenge.WithMemoryClock(func() time.Time { return now }))

		stale := newTestSession(time.Minute)
		fresh := newTestSession(time.Hour)
		require.NoError(t, store.Create(ctx, stale))
		require.NoError(t, store.Create(ctx, fresh))

		now = now.Add(30 * time.Minute)
		require.NoError(t, store.DeleteExpired(ctx))

		assert.Equal(t, 1, store.Len())
		_, err := store.Get(ctx, fresh.ID)
		assert.NoError(t, err)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		t.Parallel()

		store := challenge.NewMemoryStore()
		assert.NoError(t, store.Delete(ctx, uuid.New()))
	})
}
