package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cachedSession(token string, expiresAt time.Time) *Session {
	return &Session{
		ID:        uuid.New(),
		Token:     token,
		OwnerKind: OwnerAnonymous,
		OwnerKey:  "owner-" + token,
		ExpiresAt: expiresAt,
		IsActive:  true,
	}
}

func TestReadCache_FreshHit(t *testing.T) {
	t.Parallel()

	now := time.Now()
	cache := newReadCache(10, 30*time.Second, func() time.Time { return now })

	sess := cachedSession("tok", now.Add(time.Hour))
	cache.put(sess)

	got, ok := cache.get("tok")
	require.True(t, ok)
	assert.Equal(t, sess.ID, got.ID)

	// Served value is a copy.
	got.OwnerKey = "mutated"
	again, ok := cache.get("tok")
	require.True(t, ok)
	assert.Equal(t, "owner-tok", again.OwnerKey)
}

func TestReadCache_TTL(t *testing.T) {
	t.Parallel()

	current := time.Now()
	cache := newReadCache(10, 30*time.Second, func() time.Time { return current })

	cache.put(cachedSession("tok", current.Add(time.Hour)))

	current = current.Add(31 * time.Second)
	_, ok := cache.get("tok")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.len())
}

func TestReadCache_ExpiredSessionIsMiss(t *testing.T) {
	t.Parallel()

	current := time.Now()
	cache := newReadCache(10, time.Minute, func() time.Time { return current })

	cache.put(cachedSession("tok", current.Add(10*time.Second)))

	current = current.Add(20 * time.Second)
	_, ok := cache.get("tok")
	assert.False(t, ok)
}

func TestReadCache_NegativeResultsNotCached(t *testing.T) {
	t.Parallel()

	now := time.Now()
	cache := newReadCache(10, time.Minute, func() time.Time { return now })

	cache.put(nil)

	inactive := cachedSession("tok", now.Add(time.Hour))
	inactive.IsActive = false
	cache.put(inactive)

	assert.Equal(t, 0, cache.len())
}

func TestReadCache_LRUEviction(t *testing.T) {
	t.Parallel()

	now := time.Now()
	cache := newReadCache(2, time.Minute, func() time.Time { return now })

	cache.put(cachedSession("a", now.Add(time.Hour)))
	cache.put(cachedSession("b", now.Add(time.Hour)))

	// Touch "a" so "b" is the eviction candidate.
	_, ok := cache.get("a")
	require.True(t, ok)

	cache.put(cachedSession("c", now.Add(time.Hour)))

	_, ok = cache.get("a")
	assert.True(t, ok)
	_, ok = cache.get("b")
	assert.False(t, ok)
	_, ok = cache.get("c")
	assert.True(t, ok)
}

func TestReadCache_Invalidate(t *testing.T) {
	t.Parallel()

	now := time.Now()
	cache := newReadCache(10, time.Minute, func() time.Time { return now })

	cache.put(cachedSession("tok", now.Add(time.Hour)))
	cache.invalidate("tok")

	_, ok := cache.get("tok")
	assert.False(t, ok)

	// Invalidating an absent token is a no-op.
	cache.invalidate("missing")
}
