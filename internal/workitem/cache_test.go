package workitem

import (
	"errors"
	"testing"
	"time"

	"azb/internal/azure"
)

func TestCacheBeginIsIdempotentWhilePending(t *testing.T) {
	c := NewCache()

	gen1, started := c.Begin(42)
	if !started {
		t.Fatal("first Begin should start a fetch")
	}
	gen2, started := c.Begin(42)
	if started {
		t.Error("second Begin while pending must not start another fetch")
	}
	if gen1 != gen2 {
		t.Errorf("Begin while pending returned gen %d, want existing %d", gen2, gen1)
	}
}

func TestCacheCompleteTransitions(t *testing.T) {
	c := NewCache()
	wi := &azure.WorkItem{ID: 42, Title: "x"}

	gen, _ := c.Begin(42)
	if !c.Complete(42, gen, wi, nil) {
		t.Fatal("Complete with current gen must land")
	}

	e := c.Get(42)
	if e.Status != StatusReady || e.Details != wi {
		t.Errorf("entry = %+v, want Ready with details", e)
	}
	if e.FetchedAt.IsZero() {
		t.Error("FetchedAt should be set")
	}

	// A Failed entry can be re-begun.
	gen2 := c.Refresh(42)
	c.Complete(42, gen2, nil, errors.New("boom"))
	if got := c.Get(42); got.Status != StatusFailed || got.Err == nil {
		t.Errorf("entry = %+v, want Failed", got)
	}
	if _, started := c.Begin(42); !started {
		t.Error("Begin after Failed should start a fetch")
	}
}

func TestCacheStaleCompleteIsIgnored(t *testing.T) {
	c := NewCache()
	old := &azure.WorkItem{ID: 7, Title: "old"}
	fresh := &azure.WorkItem{ID: 7, Title: "new"}

	oldGen, _ := c.Begin(7)
	newGen := c.Refresh(7)

	// The superseded fetch finishes after the refresh was issued.
	if c.Complete(7, oldGen, old, nil) {
		t.Error("stale Complete must be a no-op")
	}
	if e := c.Get(7); e.Status != StatusPending {
		t.Errorf("entry after stale complete = %+v, want still Pending", e)
	}

	if !c.Complete(7, newGen, fresh, nil) {
		t.Fatal("current Complete must land")
	}
	if e := c.Get(7); e.Details == nil || e.Details.Title != "new" {
		t.Errorf("entry = %+v, want the second fetch's result", e)
	}
}

func TestCacheStaleCompleteAfterResult(t *testing.T) {
	c := NewCache()

	gen, _ := c.Begin(7)
	c.Complete(7, gen, &azure.WorkItem{ID: 7, Title: "kept"}, nil)

	// A duplicate completion for an entry that already settled is ignored.
	if c.Complete(7, gen, &azure.WorkItem{ID: 7, Title: "dupe"}, nil) {
		t.Error("Complete on a settled entry must be a no-op")
	}
	if e := c.Get(7); e.Details.Title != "kept" {
		t.Errorf("Details.Title = %q, want kept", e.Details.Title)
	}
}

func TestCacheUnknownIDIsNotRequested(t *testing.T) {
	c := NewCache()
	if e := c.Get(999); e.Status != StatusNotRequested {
		t.Errorf("status = %v, want NotRequested", e.Status)
	}
}

func TestCacheSeed(t *testing.T) {
	c := NewCache()
	wi := &azure.WorkItem{ID: 5, Title: "from disk"}
	fetched := time.Now().Add(-time.Hour)

	c.Seed(5, wi, fetched)
	e := c.Get(5)
	if e.Status != StatusReady || e.Details != wi || !e.FetchedAt.Equal(fetched) {
		t.Errorf("entry = %+v, want seeded Ready", e)
	}

	// Seeding never clobbers live state.
	gen := c.Refresh(5)
	c.Seed(5, &azure.WorkItem{ID: 5, Title: "stale disk"}, time.Now())
	if e := c.Get(5); e.Status != StatusPending || e.Gen != gen {
		t.Errorf("entry = %+v, want untouched Pending", e)
	}
}

func TestCacheReadySnapshot(t *testing.T) {
	c := NewCache()
	gen, _ := c.Begin(1)
	c.Complete(1, gen, &azure.WorkItem{ID: 1}, nil)
	gen, _ = c.Begin(2)
	c.Complete(2, gen, nil, errors.New("nope"))
	c.Begin(3)

	ready := c.Ready()
	if len(ready) != 1 {
		t.Fatalf("Ready() has %d entries, want 1", len(ready))
	}
	if _, exists := ready[1]; !exists {
		t.Error("Ready() should contain id 1")
	}
}
