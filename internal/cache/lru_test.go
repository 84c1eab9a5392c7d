package cache

import (
	"testing"
	"time"
)

func TestLRUEviction(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	// Touch "a" so "b" is the eviction candidate.
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("expected a to be present")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatalf("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("expected a to survive")
	}
	if c.Size() != 2 {
		t.Fatalf("expected size 2, got %d", c.Size())
	}
}

func TestLRUExpiry(t *testing.T) {
	c := NewLRUCache[string](10, 10*time.Millisecond)
	c.Set("k", "v")
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected entry to expire")
	}
	c.Set("k2", "v2")
	time.Sleep(20 * time.Millisecond)
	if got := c.CleanExpired(); got != 1 {
		t.Fatalf("expected 1 cleaned, got %d", got)
	}
}

func TestLRUPurge(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Purge()

	if c.Size() != 0 {
		t.Fatalf("expected empty cache after purge, got %d", c.Size())
	}
	if _, ok := c.Get("a"); ok {
		t.Fatalf("purged entry still readable")
	}
	// Cache stays usable after a purge.
	c.Set("c", 3)
	if _, ok := c.Get("c"); !ok {
		t.Fatalf("cache unusable after purge")
	}
}
