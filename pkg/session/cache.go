package session

import (
	"container/list"
	"sync"
	"time"
)

// readCache is a bounded LRU of recent session records with a short TTL.
// It accelerates token lookups in front of the durable store and is
// never authoritative: only positive, fresh entries are served, and any
// miss or doubt falls through to the store.
type readCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[string]*list.Element
	eviction *list.List
	now      func() time.Time
}

type cacheEntry struct {
	token    string
	sess     Session
	storedAt time.Time
}

func newReadCache(capacity int, ttl time.Duration, now func() time.Time) *readCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &readCache{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*list.Element, capacity),
		eviction: list.New(),
		now:      now,
	}
}

// get returns a copy of a cached session when the entry is fresh and
// the session itself is still live. Anything else is a miss.
func (c *readCache) get(token string) (*Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[token]
	if !ok {
		return nil, false
	}

	entry := elem.Value.(*cacheEntry)
	now := c.now()
	if now.Sub(entry.storedAt) > c.ttl || !entry.sess.IsActive || now.After(entry.sess.ExpiresAt) {
		c.removeLocked(elem)
		return nil, false
	}

	c.eviction.MoveToFront(elem)
	cp := entry.sess
	return &cp, true
}

// put caches a positive lookup. Negative results are never cached: a
// stale "invalid" verdict must not deny a request the store would allow.
func (c *readCache) put(sess *Session) {
	if sess == nil || !sess.IsActive {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[sess.Token]; ok {
		entry := elem.Value.(*cacheEntry)
		entry.sess = *sess
		entry.storedAt = c.now()
		c.eviction.MoveToFront(elem)
		return
	}

	elem := c.eviction.PushFront(&cacheEntry{token: sess.Token, sess: *sess, storedAt: c.now()})
	c.items[sess.Token] = elem

	if c.eviction.Len() > c.capacity {
		if oldest := c.eviction.Back(); oldest != nil {
			c.removeLocked(oldest)
		}
	}
}

// invalidate drops a token's entry, used after linking, revocation, or
// deactivation so the next lookup sees the store's truth.
func (c *readCache) invalidate(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[token]; ok {
		c.removeLocked(elem)
	}
}

func (c *readCache) removeLocked(elem *list.Element) {
	entry := elem.Value.(*cacheEntry)
	c.eviction.Remove(elem)
	delete(c.items, entry.token)
}

func (c *readCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eviction.Len()
}
