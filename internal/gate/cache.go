package gate

import (
	"sync"
	"time"
)

const sweepEvery = 1024

// Cache maps a user id to the timestamp of their last allowed request.
// Entries older than the TTL are useless for the cooldown comparison
// and get dropped, so the map stays bounded by the number of distinct
// users seen within one window. State lives only in this process and
// is gone after a restart.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[int64]time.Time
	puts    int
}

func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 1800 * time.Second
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[int64]time.Time),
	}
}

// Get returns the recorded timestamp for the user. Expired entries are
// treated as absent and removed on the spot.
func (c *Cache) Get(userID int64, now time.Time) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	last, ok := c.entries[userID]
	if !ok {
		return time.Time{}, false
	}
	if now.Sub(last) > c.ttl {
		delete(c.entries, userID)
		return time.Time{}, false
	}
	return last, true
}

// Put records the timestamp, moving only forward in time: a stale
// write can never rewind an entry.
func (c *Cache) Put(userID int64, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[userID]; ok && existing.After(now) {
		return
	}
	c.entries[userID] = now

	c.puts++
	if c.puts%sweepEvery == 0 {
		c.sweepLocked(now)
	}
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) sweepLocked(now time.Time) {
	for id, last := range c.entries {
		if now.Sub(last) > c.ttl {
			delete(c.entries, id)
		}
	}
}
