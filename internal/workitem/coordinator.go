package workitem

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"azb/internal/azure"
)

// Provider fetches work item details. *azure.Client satisfies this; tests
// substitute fakes.
type Provider interface {
	FetchWorkItem(ctx context.Context, id uint64) (*azure.WorkItem, error)
}

// FetchedMsg is delivered to the bubbletea loop when a fetch finishes.
// Gen identifies the fetch attempt so stale completions can be discarded.
type FetchedMsg struct {
	ID      uint64
	Gen     uint64
	Details *azure.WorkItem
	Err     error
}

const fetchTimeout = 30 * time.Second

// Coordinator issues work item fetches against a Provider and records the
// results in the Cache. It never runs more than one fetch per id: a Fetch
// for an id already in flight is a no-op.
//
// There is no mid-flight cancellation. A fetch superseded by ForceRefresh
// simply completes into a stale generation and is discarded by the cache.
type Coordinator struct {
	cache    *Cache
	provider Provider
}

// NewCoordinator creates a coordinator writing into cache.
func NewCoordinator(cache *Cache, provider Provider) *Coordinator {
	return &Coordinator{cache: cache, provider: provider}
}

// Cache returns the underlying cache for read access.
func (c *Coordinator) Cache() *Cache {
	return c.cache
}

// Fetch starts a fetch for id unless one is pending or a result is already
// cached. Returns the tea.Cmd running the fetch, or nil if nothing to do.
func (c *Coordinator) Fetch(id uint64) tea.Cmd {
	if c.cache.Get(id).Status != StatusNotRequested {
		return nil
	}
	gen, started := c.cache.Begin(id)
	if !started {
		return nil
	}
	return c.fetchCmd(id, gen)
}

// ForceRefresh starts a new fetch for id regardless of cache state,
// superseding any fetch already in flight.
func (c *Coordinator) ForceRefresh(id uint64) tea.Cmd {
	gen := c.cache.Refresh(id)
	return c.fetchCmd(id, gen)
}

// Complete lands a fetch result in the cache. Reports whether the result
// was current (false for superseded fetches).
func (c *Coordinator) Complete(msg FetchedMsg) bool {
	return c.cache.Complete(msg.ID, msg.Gen, msg.Details, msg.Err)
}

func (c *Coordinator) fetchCmd(id, gen uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		details, err := c.provider.FetchWorkItem(ctx, id)
		return FetchedMsg{ID: id, Gen: gen, Details: details, Err: err}
	}
}
