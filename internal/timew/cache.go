// Package timew answers whether a task is being tracked by Timewarrior.
package timew

import "time"

// DefaultTTL is how long a set of tracked task ids is trusted.
const DefaultTTL = 5 * time.Second

// Cache holds the task ids seen in the active Timewarrior interval. A new
// Cache is already expired.
type Cache struct {
	tracked     map[string]struct{}
	refreshedAt time.Time
	ttl         time.Duration
}

func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{tracked: map[string]struct{}{}, ttl: ttl}
}

func (c *Cache) Expired(now time.Time) bool {
	return c.refreshedAt.IsZero() || now.Sub(c.refreshedAt) > c.ttl
}

func (c *Cache) Replace(ids []string, now time.Time) {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	c.tracked = set
	c.refreshedAt = now
}

func (c *Cache) Contains(id string) bool {
	_, ok := c.tracked[id]
	return ok
}

// IDs returns a copy of the tracked set.
func (c *Cache) IDs() map[string]bool {
	out := make(map[string]bool, len(c.tracked))
	for id := range c.tracked {
		out[id] = true
	}
	return out
}
