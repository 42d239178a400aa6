package fieldcache

import "testing"

func TestPutEvictsLeastRecentlyUsed(t *testing.T) {
	cache := New[int, string](3)
	cache.Put(1, "a")
	cache.Put(2, "b")
	cache.Put(3, "c")
	cache.Put(4, "d")

	if cache.Contains(1) {
		t.Fatal("expected oldest key 1 to be evicted")
	}
	if !cache.Contains(4) {
		t.Fatal("expected newest key 4 to be present")
	}
	if got := cache.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}
}

func TestGetTouchesRecency(t *testing.T) {
	cache := New[int, string](2)
	cache.Put(1, "a")
	cache.Put(2, "b")

	if _, ok := cache.Get(1); !ok {
		t.Fatal("expected key 1 present")
	}
	cache.Put(3, "c")

	if cache.Contains(2) {
		t.Fatal("expected key 2 evicted after key 1 was touched")
	}
	if !cache.Contains(1) {
		t.Fatal("expected touched key 1 to survive")
	}
}

func TestContainsDoesNotTouchRecency(t *testing.T) {
	cache := New[int, string](2)
	cache.Put(1, "a")
	cache.Put(2, "b")

	if !cache.Contains(1) {
		t.Fatal("expected key 1 present")
	}
	cache.Put(3, "c")

	if cache.Contains(1) {
		t.Fatal("Contains must not promote key 1")
	}
}

func TestPutUpdatesExistingKey(t *testing.T) {
	cache := New[int, string](2)
	cache.Put(1, "a")
	cache.Put(2, "b")
	cache.Put(1, "a2")

	if got, _ := cache.Get(1); got != "a2" {
		t.Fatalf("Get(1) = %q, want %q", got, "a2")
	}
	if got := cache.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}

	// The update promoted key 1, so key 2 is now the eviction victim.
	cache.Put(3, "c")
	if cache.Contains(2) {
		t.Fatal("expected key 2 evicted after key 1 was updated")
	}
}

func TestClear(t *testing.T) {
	cache := New[int, int](4)
	for i := 0; i < 4; i++ {
		cache.Put(i, i)
	}
	cache.Clear()

	if got := cache.Len(); got != 0 {
		t.Fatalf("Len() after Clear = %d, want 0", got)
	}
	if cache.Contains(0) {
		t.Fatal("expected no keys after Clear")
	}
	if got := cache.Capacity(); got != 4 {
		t.Fatalf("Capacity() = %d, want 4", got)
	}
}

func TestCapacityClampedToOne(t *testing.T) {
	cache := New[int, int](0)
	cache.Put(1, 1)
	cache.Put(2, 2)

	if cache.Contains(1) {
		t.Fatal("capacity-one cache should hold only the newest key")
	}
	if !cache.Contains(2) {
		t.Fatal("expected newest key present")
	}
}
