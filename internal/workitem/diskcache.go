package workitem

import (
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gofrs/flock"

	"azb/internal/azure"
)

// DiskCache persists fetched work items between sessions so a restart shows
// details immediately. Entries never expire on their own; the user's refresh
// key is the only way to replace one.
type DiskCache struct {
	RepoRoot  string          `json:"repo_root"`
	Items     []PersistedItem `json:"items"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// PersistedItem is one cached work item with its fetch time.
type PersistedItem struct {
	FetchedAt time.Time      `json:"fetched_at"`
	Details   azure.WorkItem `json:"details"`
}

// diskCachePath returns the cache file for a repository root.
func diskCachePath(repoRoot string) string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	return filepath.Join(cacheDir, "azb", filepath.Base(repoRoot)+".json")
}

// LoadDiskCache seeds cache with the persisted work items for repoRoot.
// Missing or unreadable cache files are ignored; the session just starts
// cold.
func LoadDiskCache(repoRoot string, cache *Cache) {
	path := diskCachePath(repoRoot)

	// Shared lock: another azb instance may be writing.
	fileLock := flock.New(path + ".lock")
	if err := fileLock.RLock(); err != nil {
		return
	}
	defer fileLock.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var dc DiskCache
	if err := json.Unmarshal(data, &dc); err != nil {
		return
	}
	if dc.RepoRoot != repoRoot {
		return
	}

	for _, item := range dc.Items {
		details := item.Details
		cache.Seed(details.ID, &details, item.FetchedAt)
	}
}

// SaveDiskCache writes the cache's Ready entries for repoRoot. Errors are
// swallowed; losing the cache only costs a refetch next session.
func SaveDiskCache(repoRoot string, cache *Cache) {
	path := diskCachePath(repoRoot)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return
	}

	dc := DiskCache{RepoRoot: repoRoot, UpdatedAt: time.Now()}
	for _, e := range cache.Ready() {
		dc.Items = append(dc.Items, PersistedItem{
			FetchedAt: e.FetchedAt,
			Details:   *e.Details,
		})
	}

	data, err := json.Marshal(dc)
	if err != nil {
		return
	}

	fileLock := flock.New(path + ".lock")
	if err := fileLock.Lock(); err != nil {
		return
	}
	defer fileLock.Unlock()

	_ = os.WriteFile(path, data, 0644)
}
