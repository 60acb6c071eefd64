package cache

import (
	"testing"
	"time"

	"presaleScope/internal/model"
)

func TestCacheHitWithinTTL(t *testing.T) {
	now := time.Unix(1000, 0)
	c := New(25*time.Second, func() time.Time { return now })

	payload := &model.Payload{UpdatedAt: "first"}
	c.Set(payload)

	now = now.Add(24 * time.Second)
	got, ok := c.Get()
	if !ok {
		t.Fatalf("expected a cache hit")
	}
	if got != payload {
		t.Fatalf("cache must return the identical payload, updated_at included")
	}
}

func TestCacheMissAfterTTL(t *testing.T) {
	now := time.Unix(1000, 0)
	c := New(25*time.Second, func() time.Time { return now })

	c.Set(&model.Payload{})
	now = now.Add(25 * time.Second)

	if _, ok := c.Get(); ok {
		t.Fatalf("expected a miss at exactly the TTL boundary")
	}
}

func TestCacheEmpty(t *testing.T) {
	c := New(25*time.Second, nil)
	if _, ok := c.Get(); ok {
		t.Fatalf("expected a miss on an empty cache")
	}
}

func TestCacheLastWriteWins(t *testing.T) {
	now := time.Unix(1000, 0)
	c := New(25*time.Second, func() time.Time { return now })

	first := &model.Payload{UpdatedAt: "first"}
	second := &model.Payload{UpdatedAt: "second"}
	c.Set(first)
	c.Set(second)

	got, ok := c.Get()
	if !ok || got != second {
		t.Fatalf("expected the most recent payload, got %+v", got)
	}
}
