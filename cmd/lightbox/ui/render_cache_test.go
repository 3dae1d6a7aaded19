package ui

import (
	"testing"
)

func TestComputeKey(t *testing.T) {
	if ComputeKey("slide", "a", 3) != ComputeKey("slide", "a", 3) {
		t.Error("expected same key for same inputs")
	}
	if ComputeKey("slide", "a", 3) == ComputeKey("thumb", "a", 3) {
		t.Error("expected prefix to separate slide and thumbnail keys")
	}
	if ComputeKey("prefix", 1.0) == ComputeKey("prefix", 2.0) {
		t.Error("expected floats to change the key")
	}
	if ComputeKey("slide", true) == ComputeKey("slide", false) {
		t.Error("expected bools to change the key")
	}
	// Strings are delimited, so shifting bytes between them changes the key.
	if ComputeKey("ab", "c") == ComputeKey("a", "bc") {
		t.Error("expected string boundaries to matter")
	}
}

func TestRenderCache_GetSet(t *testing.T) {
	rc := NewRenderCache(4)
	if _, ok := rc.Get(1); ok {
		t.Fatal("expected miss on empty cache")
	}
	rc.Set(1, "one")
	if got, ok := rc.Get(1); !ok || got != "one" {
		t.Errorf("expected hit with %q, got %q (%v)", "one", got, ok)
	}
	rc.Clear()
	if rc.Len() != 0 {
		t.Errorf("expected empty cache after Clear, got %d", rc.Len())
	}
}

func TestRenderCache_EvictsLeastHit(t *testing.T) {
	rc := NewRenderCache(2)
	rc.Set(1, "hot")
	rc.Get(1)
	rc.Get(1)
	rc.Set(2, "cold")

	rc.Set(3, "new")

	if _, ok := rc.Get(2); ok {
		t.Error("expected the cold entry to be evicted")
	}
	if _, ok := rc.Get(1); !ok {
		t.Error("expected the hot entry to survive")
	}
	if _, ok := rc.Get(3); !ok {
		t.Error("expected the new entry to be stored")
	}
}

func TestRenderCache_GetOrCompute(t *testing.T) {
	rc := NewRenderCache(8)
	calls := 0
	compute := func() string {
		calls++
		return "rendered"
	}

	for i := 0; i < 3; i++ {
		if got := rc.GetOrCompute(42, compute); got != "rendered" {
			t.Errorf("expected rendered, got %q", got)
		}
	}
	if calls != 1 {
		t.Errorf("expected a single compute, got %d", calls)
	}
}
