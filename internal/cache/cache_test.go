package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newTestCache(size int, ttl time.Duration) (*LRUCache[string], *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](size, ttl)
	c.now = clock.now
	return c, clock
}

func TestLRUCache_GetSet(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Fatal("empty cache should miss")
	}
	c.Set("a", "1")
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Fatalf("got %q %v", v, ok)
	}
	c.Set("a", "2")
	if v, _ := c.Get("a"); v != "2" || c.Size() != 1 {
		t.Fatalf("overwrite failed: %q size=%d", v, c.Size())
	}

	st := c.Stats()
	if st.Hits != 2 || st.Misses != 1 || st.Size != 1 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a")
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a was recently used and should remain")
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatal("c should be present")
	}
}

func TestLRUCache_TTL(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")

	clock.t = clock.t.Add(30 * time.Second)
	c.Set("c", "3")

	clock.t = clock.t.Add(45 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Fatal("a should have expired")
	}
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("CleanExpired removed %d, want 1", n)
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatal("c should still be fresh")
	}
}

func TestLRUCache_DeleteAndPurge(t *testing.T) {
	c, _ := newTestCache(10, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Delete("a")
	if c.Size() != 1 {
		t.Fatalf("size = %d", c.Size())
	}
	c.Purge()
	if c.Size() != 0 {
		t.Fatalf("size after purge = %d", c.Size())
	}
	c.Set("x", "y")
	if _, ok := c.Get("x"); !ok {
		t.Fatal("cache should be usable after purge")
	}
}

func TestNewLRUCache_MinimumSize(t *testing.T) {
	c := NewLRUCache[int](0, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	if c.Size() != 1 {
		t.Fatalf("size = %d, want 1", c.Size())
	}
}

func TestManager_CleanAllAndStop(t *testing.T) {
	c, clock := newTestCache(10, time.Second)
	c.Set("a", "1")
	clock.t = clock.t.Add(2 * time.Second)

	m := NewManager()
	m.Register(c)
	if n := m.CleanAll(); n != 1 {
		t.Fatalf("CleanAll = %d", n)
	}

	m.StartCleanup(10 * time.Millisecond)
	m.StartCleanup(10 * time.Millisecond)
	m.Stop()
	m.Stop()
}

func TestManager_StopWithoutStart(t *testing.T) {
	done := make(chan struct{})
	go func() {
		NewManager().Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked without StartCleanup")
	}
}
