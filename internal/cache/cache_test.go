package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := New(10, time.Hour)

	if got := c.Get("query"); got != nil {
		t.Errorf("Get on empty cache = %v, want nil", got)
	}

	c.Set("query", []float32{0.1, 0.2})

	got := c.Get("query")
	if got == nil || got[0] != 0.1 {
		t.Errorf("Get = %v, want [0.1 0.2]", got)
	}
	if c.Size() != 1 {
		t.Errorf("Size = %d, want 1", c.Size())
	}
}

func TestExactMatchKeying(t *testing.T) {
	c := New(10, time.Hour)
	c.Set("hello", []float32{1})

	// No normalization: whitespace and case variants are distinct keys.
	if c.Get("hello ") != nil {
		t.Error("trailing whitespace should be a distinct key")
	}
	if c.Get("Hello") != nil {
		t.Error("case variant should be a distinct key")
	}
}

func TestTTLExpiry(t *testing.T) {
	c := New(10, time.Minute)
	current := time.Unix(1000, 0)
	c.now = func() time.Time { return current }

	c.Set("q", []float32{1})

	current = current.Add(59 * time.Second)
	if c.Get("q") == nil {
		t.Error("entry expired before TTL")
	}

	current = current.Add(2 * time.Second)
	if c.Get("q") != nil {
		t.Error("entry survived past TTL")
	}
	if c.Size() != 0 {
		t.Errorf("expired entry not dropped, Size = %d", c.Size())
	}
}

func TestEvictionOnOverflow(t *testing.T) {
	c := New(3, time.Hour)

	c.Set("a", []float32{1})
	c.Set("b", []float32{2})
	c.Set("c", []float32{3})
	c.Set("d", []float32{4})

	if c.Size() != 3 {
		t.Fatalf("Size = %d, want 3", c.Size())
	}
	// Oldest-inserted entry goes first.
	if c.Get("a") != nil {
		t.Error("oldest entry should have been evicted")
	}
	if c.Get("b") == nil || c.Get("c") == nil || c.Get("d") == nil {
		t.Error("newer entries should survive eviction")
	}
}

func TestSetExistingKeyDoesNotEvict(t *testing.T) {
	c := New(2, time.Hour)

	c.Set("a", []float32{1})
	c.Set("b", []float32{2})
	c.Set("b", []float32{22})

	if c.Size() != 2 {
		t.Errorf("Size = %d, want 2", c.Size())
	}
	if c.Get("a") == nil {
		t.Error("re-setting an existing key must not evict others")
	}
	if got := c.Get("b"); got == nil || got[0] != 22 {
		t.Errorf("b = %v, want updated value", got)
	}
}

func TestClear(t *testing.T) {
	c := New(10, time.Hour)
	c.Set("a", []float32{1})
	c.Set("b", []float32{2})

	c.Clear()

	if c.Size() != 0 {
		t.Errorf("Size after Clear = %d", c.Size())
	}
	if c.Get("a") != nil {
		t.Error("entry survived Clear")
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New(50, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := fmt.Sprintf("q-%d", j%75)
				c.Set(key, []float32{float32(worker)})
				c.Get(key)
				if j%50 == 0 {
					c.Size()
				}
			}
		}(i)
	}
	wg.Wait()

	if size := c.Size(); size > 50 {
		t.Errorf("Size = %d exceeds capacity 50", size)
	}
}
