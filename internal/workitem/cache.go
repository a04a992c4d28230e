package workitem

import (
	"sync"
	"time"

	"azb/internal/azure"
)

// Status describes the fetch lifecycle of one work item id.
type Status int

const (
	StatusNotRequested Status = iota
	StatusPending
	StatusReady
	StatusFailed
)

// Entry is a snapshot of the cache state for one id. Consumers get copies;
// only the coordinator mutates the underlying state.
type Entry struct {
	Status    Status
	Gen       uint64
	Details   *azure.WorkItem // set when Ready
	Err       error           // set when Failed
	FetchedAt time.Time       // completion time for Ready/Failed
}

// Cache maps work item ids to fetch entries. It is written by the fetch
// coordinator and read by the UI, so all access is mutex-guarded.
//
// Each id carries a generation: Begin hands it out, and Complete only lands
// when called with the generation currently in flight. A Refresh while a
// fetch is pending bumps the generation so the superseded fetch's eventual
// result is discarded instead of clobbering the newer one.
type Cache struct {
	mu      sync.Mutex
	entries map[uint64]Entry
	nextGen uint64
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[uint64]Entry)}
}

// Get returns the entry for id. Unknown ids report StatusNotRequested.
func (c *Cache) Get(id uint64) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[id]
}

// Begin transitions id to Pending and returns the fetch generation.
// If a fetch is already pending, the existing generation is returned and
// started is false: the caller must not issue a second fetch.
func (c *Cache) Begin(id uint64) (gen uint64, started bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e := c.entries[id]; e.Status == StatusPending {
		return e.Gen, false
	}

	c.nextGen++
	c.entries[id] = Entry{Status: StatusPending, Gen: c.nextGen}
	return c.nextGen, true
}

// Refresh transitions id to Pending unconditionally, superseding any fetch
// already in flight, and returns the new generation.
func (c *Cache) Refresh(id uint64) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextGen++
	c.entries[id] = Entry{Status: StatusPending, Gen: c.nextGen}
	return c.nextGen
}

// Complete records a fetch result. The call is ignored unless id is Pending
// with exactly this generation; a stale completion racing a newer Begin or
// Refresh leaves the entry untouched. Reports whether the result landed.
func (c *Cache) Complete(id, gen uint64, details *azure.WorkItem, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entries[id]
	if e.Status != StatusPending || e.Gen != gen {
		return false
	}

	if err != nil {
		c.entries[id] = Entry{Status: StatusFailed, Gen: gen, Err: err, FetchedAt: time.Now()}
	} else {
		c.entries[id] = Entry{Status: StatusReady, Gen: gen, Details: details, FetchedAt: time.Now()}
	}
	return true
}

// Seed installs a Ready entry without a fetch, used to pre-populate the
// cache from disk. Ids that already have an entry are left alone.
func (c *Cache) Seed(id uint64, details *azure.WorkItem, fetchedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e := c.entries[id]; e.Status != StatusNotRequested {
		return
	}
	c.nextGen++
	c.entries[id] = Entry{Status: StatusReady, Gen: c.nextGen, Details: details, FetchedAt: fetchedAt}
}

// Ready returns a snapshot of all Ready entries, for persistence.
func (c *Cache) Ready() map[uint64]Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[uint64]Entry)
	for id, e := range c.entries {
		if e.Status == StatusReady {
			out[id] = e
		}
	}
	return out
}
