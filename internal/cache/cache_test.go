package cache

import (
	"testing"
	"time"
)

func newTestCache(size int, ttl time.Duration) (*LRUCache[string], *time.Time) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](size, ttl)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestLRUCacheEviction(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)
	c.Set("SM1", "a")
	c.Set("SM2", "b")
	c.Get("SM1") // SM2 becomes least recently used
	c.Set("SM3", "c")

	if _, ok := c.Get("SM2"); ok {
		t.Error("SM2 should have been evicted")
	}
	if v, ok := c.Get("SM1"); !ok || v != "a" {
		t.Errorf("SM1 = %q, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestLRUCacheTTL(t *testing.T) {
	c, now := newTestCache(10, time.Minute)
	c.Set("SM1", "a")
	c.Set("SM2", "b")

	*now = now.Add(30 * time.Second)
	c.Set("SM2", "b2") // refreshes the ttl
	*now = now.Add(45 * time.Second)

	if _, ok := c.Get("SM1"); ok {
		t.Error("SM1 should have expired")
	}
	if v, ok := c.Get("SM2"); !ok || v != "b2" {
		t.Errorf("SM2 = %q, %v", v, ok)
	}
}

func TestManagerCleanNow(t *testing.T) {
	c, now := newTestCache(10, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	*now = now.Add(2 * time.Minute)
	c.Set("c", "3")

	m := NewManager()
	m.Register(c)
	if n := m.CleanNow(); n != 2 {
		t.Fatalf("CleanNow() = %d, want 2", n)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}

	c.Delete("c")
	if c.Size() != 0 {
		t.Errorf("Size() after delete = %d", c.Size())
	}
}

func TestManagerStop(t *testing.T) {
	m := NewManager()
	m.StartCleanup(time.Millisecond)
	m.StartCleanup(time.Millisecond)
	m.Stop()
	m.Stop()

	idle := NewManager()
	idle.Stop()
}
