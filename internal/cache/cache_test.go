package cache

import (
	"testing"
	"time"
)

func TestLRUCacheGetSet(t *testing.T) {
	c := NewLRUCache[string](10, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache returned a value")
	}

	c.Set("k1", "v1")
	got, ok := c.Get("k1")
	if !ok || got != "v1" {
		t.Errorf("Get(k1) = %q, %v, want v1, true", got, ok)
	}

	c.Set("k1", "v2")
	if got, _ := c.Get("k1"); got != "v2" {
		t.Errorf("Get(k1) after overwrite = %q, want v2", got)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
}

func TestLRUCacheEviction(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	// Touch "a" so "b" becomes the eviction candidate.
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("least recently used entry was not evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("recently used entry was evicted")
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestLRUCacheTTL(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)

	c.Set("a", 1)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("expired entry still returned")
	}
}

func TestLRUCacheDelete(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)

	c.Set("a", 1)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("deleted entry still returned")
	}
	// Deleting a missing key is a no-op.
	c.Delete("missing")
}

func TestCleanExpired(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)

	c.Set("a", 1)
	c.Set("b", 2)
	time.Sleep(20 * time.Millisecond)
	c.Set("c", 3)

	if removed := c.CleanExpired(); removed != 2 {
		t.Errorf("CleanExpired() = %d, want 2", removed)
	}
	if c.Size() != 1 {
		t.Errorf("Size() after cleanup = %d, want 1", c.Size())
	}
}

func TestManagerCleanup(t *testing.T) {
	c := NewLRUCache[int](10, 5*time.Millisecond)
	c.Set("a", 1)

	m := NewManager()
	m.Register(c)
	m.StartCleanup(10 * time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	m.Stop()

	if c.Size() != 0 {
		t.Errorf("Size() after manager cleanup = %d, want 0", c.Size())
	}
}
