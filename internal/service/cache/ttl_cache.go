package cache

import (
	"sync"
	"time"
)

type entry struct {
	b   []byte
	exp time.Time
}

// TTLCache holds at most maxEntries byte slices. When full, expired entries
// are purged first and then the entry closest to expiry is dropped.
type TTLCache struct {
	maxEntries int
	now        func() time.Time

	mu sync.Mutex
	m  map[string]entry
}

func NewTTLCache(maxEntries int) *TTLCache {
	if maxEntries <= 0 {
		maxEntries = 64
	}
	return &TTLCache{maxEntries: maxEntries, now: time.Now, m: make(map[string]entry)}
}

func (c *TTLCache) GetBytes(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.m[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.exp) {
		delete(c.m, key)
		return nil, false
	}
	return e.b, true
}

func (c *TTLCache) SetBytes(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if _, ok := c.m[key]; !ok && len(c.m) >= c.maxEntries {
		c.evict(now)
	}
	c.m[key] = entry{b: value, exp: now.Add(ttl)}
}

func (c *TTLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

func (c *TTLCache) evict(now time.Time) {
	var victim string
	var soonest time.Time
	for k, e := range c.m {
		if now.After(e.exp) {
			delete(c.m, k)
			continue
		}
		if victim == "" || e.exp.Before(soonest) {
			victim, soonest = k, e.exp
		}
	}
	if len(c.m) >= c.maxEntries && victim != "" {
		delete(c.m, victim)
	}
}
