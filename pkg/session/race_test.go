package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/botwall/pkg/session"
)

func TestRegistry_ConcurrentIncrements(t *testing.T) {
	t.Parallel()

	t.Run("no increment is lost under concurrency", func(t *testing.T) {
		t.Parallel()

		const workers = 100

		registry, err := session.New(session.NewMemoryStore(),
			session.WithLogger(quietLogger()),
			session.WithLimits(1000, 2000),
		)
		require.NoError(t, err)
		ctx := context.Background()

		sess, err := registry.GetOrCreate(ctx, session.OwnerAnonymous, "visitor")
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := registry.IncrementAndCheck(ctx, sess.Token)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		result, err := registry.IncrementAndCheck(ctx, sess.Token)
		require.NoError(t, err)
		assert.EqualValues(t, workers+1, result.CurrentCount)
	})

	t.Run("denials match the overage exactly", func(t *testing.T) {
		t.Parallel()

		const (
			workers = 50
			limit   = 30
		)

		registry, err := session.New(session.NewMemoryStore(),
			session.WithLogger(quietLogger()),
			session.WithLimits(limit, limit),
		)
		require.NoError(t, err)
		ctx := context.Background()

		sess, err := registry.GetOrCreate(ctx, session.OwnerAnonymous, "visitor")
		require.NoError(t, err)

		var (
			wg     sync.WaitGroup
			mu     sync.Mutex
			denied int
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				result, err := registry.IncrementAndCheck(ctx, sess.Token)
				if !assert.NoError(t, err) {
					return
				}
				if !result.Allowed {
					mu.Lock()
					denied++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, workers-limit, denied)
	})

	t.Run("concurrent get-or-create yields one session per owner", func(t *testing.T) {
		t.Parallel()

		const workers = 20

		// A pinned clock keeps reuse from extending expiry, so the only
		// contended write is session creation itself.
		now := time.Now()
		store := session.NewMemoryStore()
		registry, err := session.New(store,
			session.WithLogger(quietLogger()),
			session.WithClock(func() time.Time { return now }),
		)
		require.NoError(t, err)
		ctx := context.Background()

		tokens := make([]string, workers)
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				sess, err := registry.GetOrCreate(ctx, session.OwnerAnonymous, "same-owner")
				if assert.NoError(t, err) {
					tokens[i] = sess.Token
				}
			}()
		}
		wg.Wait()

		for _, token := range tokens[1:] {
			assert.Equal(t, tokens[0], token, "every caller sees the same session")
		}
		_, active := store.Stats()
		assert.Equal(t, 1, active)
	})
}
