// Unit tests for the response cache.
package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestCache_SetGet_ReturnsStoredValue(t *testing.T) {
	c := New[string](10, time.Hour)
	c.Set("k1", "hello")

	got, ok := c.Get("k1")
	if !ok {
		t.Fatal("expected hit for k1")
	}
	if got != "hello" {
		t.Errorf("expected 'hello', got %q", got)
	}
}

func TestCache_Get_MissOnUnknownKey(t *testing.T) {
	c := New[string](10, time.Hour)

	if _, ok := c.Get("absent"); ok {
		t.Error("expected miss for absent key")
	}
}

func TestCache_Capacity_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int](3, time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	// Touch "a" so "b" becomes the eviction candidate.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected hit for a")
	}

	c.Set("d", 4)

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to have been evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("expected %s to survive eviction", k)
		}
	}
}

func TestCache_TTL_ExpiresEntries(t *testing.T) {
	c := New[string](10, 20*time.Millisecond)
	c.Set("short", "lived")

	if _, ok := c.Get("short"); !ok {
		t.Fatal("expected hit before expiry")
	}

	time.Sleep(50 * time.Millisecond)

	if _, ok := c.Get("short"); ok {
		t.Error("expected entry to expire after TTL")
	}
}

func TestCache_Stats_CountsHitsAndMisses(t *testing.T) {
	c := New[string](10, time.Hour)
	c.Set("k", "v")

	c.Get("k")
	c.Get("k")
	c.Get("nope")

	hits, misses := c.Stats()
	if hits != 2 {
		t.Errorf("expected 2 hits, got %d", hits)
	}
	if misses != 1 {
		t.Errorf("expected 1 miss, got %d", misses)
	}
}

func TestCache_DefaultsOnInvalidConfig(t *testing.T) {
	c := New[string](0, 0)
	for i := 0; i < 150; i++ {
		c.Set(fmt.Sprintf("k%d", i), "v")
	}
	if c.Len() != 100 {
		t.Errorf("expected default capacity 100, got %d entries", c.Len())
	}
}

func TestKey_SensitiveToQueryAndContext(t *testing.T) {
	base := Key("what is a crown", nil)

	if Key("what is a crown", nil) != base {
		t.Error("identical inputs must produce identical keys")
	}
	if Key("what is a bridge", nil) == base {
		t.Error("different queries must produce different keys")
	}
	if Key("what is a crown", []string{"hi"}) == base {
		t.Error("conversation context must change the key")
	}
	if Key("what is a crown", []string{"a", "b"}) == Key("what is a crown", []string{"ab"}) {
		t.Error("turn boundaries must be preserved in the key")
	}
}
