// Package dedupe remembers recently ingested article links so the worker does
// not re-index the same story when it is published to the topic again.
package dedupe

import (
	"sync"
	"time"
)

type mark struct {
	key string
	at  time.Time
}

// Cache is a bounded, TTL-limited set of keys. It is safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	marks    map[string]time.Time
	queue    []mark
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// NewCache creates a cache holding at most capacity keys for ttl each.
func NewCache(capacity int, ttl time.Duration) *Cache {
	return NewCacheWithClock(capacity, ttl, time.Now)
}

// NewCacheWithClock is NewCache with an explicit clock.
func NewCacheWithClock(capacity int, ttl time.Duration, now func() time.Time) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{
		marks:    make(map[string]time.Time, capacity),
		queue:    make([]mark, 0, capacity),
		capacity: capacity,
		ttl:      ttl,
		now:      now,
	}
}

// Seen reports whether key was marked within the ttl window. It does not mark.
func (c *Cache) Seen(key string) bool {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	at, ok := c.marks[key]
	return ok && now.Sub(at) <= c.ttl
}

// Mark records key as ingested now.
func (c *Cache) Mark(key string) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.marks[key] = now
	c.queue = append(c.queue, mark{key: key, at: now})
	c.evict(now)
}

// Len returns the number of keys currently tracked.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.marks)
}

// evict drops expired marks and the oldest ones beyond capacity. A queue entry
// only removes its key when it is still the latest mark for that key.
func (c *Cache) evict(now time.Time) {
	cutoff := now.Add(-c.ttl)

	for len(c.queue) > 0 && (len(c.marks) > c.capacity || c.queue[0].at.Before(cutoff)) {
		oldest := c.queue[0]
		c.queue = c.queue[1:]

		if at, ok := c.marks[oldest.key]; ok && at.Equal(oldest.at) {
			delete(c.marks, oldest.key)
		}
	}
}
