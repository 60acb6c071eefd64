package cache

import (
	"sync"
	"time"

	"presaleScope/internal/model"
)

// PayloadCache memoizes the last assembled payload for a short window,
// absorbing request bursts without repeating the full pipeline. Single
// slot, last-write-wins.
type PayloadCache struct {
	mu    sync.Mutex
	clock func() time.Time
	ttl   time.Duration

	at   time.Time
	data *model.Payload
}

// New builds an empty cache. A nil clock uses time.Now.
func New(ttl time.Duration, clock func() time.Time) *PayloadCache {
	if clock == nil {
		clock = time.Now
	}
	return &PayloadCache{clock: clock, ttl: ttl}
}

// Get returns the cached payload while the entry is fresh.
func (c *PayloadCache) Get() (*model.Payload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.data == nil || c.clock().Sub(c.at) >= c.ttl {
		return nil, false
	}
	return c.data, true
}

// Set replaces the slot and its timestamp unconditionally.
func (c *PayloadCache) Set(payload *model.Payload) {
	c.mu.Lock()
	c.data = payload
	c.at = c.clock()
	c.mu.Unlock()
}
