package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// indexVersion is bumped whenever indexEntry changes shape.
const indexVersion = 2

// indexEntry is what List needs from a note without re-reading it.
type indexEntry struct {
	ID           string    `json:"id,omitempty"`
	Title        string    `json:"title"`
	LastModified time.Time `json:"lastModified"`
}

type index struct {
	Version int                    `json:"version"`
	Entries map[string]*indexEntry `json:"entries"` // keyed by vault-relative slash path
}

// cache is the persistent note index stored under the system directory.
type cache struct {
	path  string
	mu    sync.RWMutex
	index index
	dirty bool
}

func newCache(vaultPath, systemDir string) *cache {
	return &cache{
		path:  filepath.Join(vaultPath, systemDir, "index.json"),
		index: index{Version: indexVersion, Entries: make(map[string]*indexEntry)},
	}
}

// Load reads the index from disk. A missing, corrupt or outdated index starts empty.
func (c *cache) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read index: %w", err)
	}

	var loaded index
	if err := json.Unmarshal(data, &loaded); err != nil || loaded.Version != indexVersion || loaded.Entries == nil {
		c.index = index{Version: indexVersion, Entries: make(map[string]*indexEntry)}
		c.dirty = true
		return nil
	}
	c.index = loaded
	c.dirty = false
	return nil
}

// Save persists the index if it changed since the last Load or Save.
func (c *cache) Save() error {
	c.mu.RLock()
	if !c.dirty {
		c.mu.RUnlock()
		return nil
	}
	data, err := json.MarshalIndent(c.index, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := writeFileAtomic(c.path, data, 0644); err != nil {
		return err
	}

	c.mu.Lock()
	c.dirty = false
	c.mu.Unlock()
	return nil
}

// Get returns the entry for relPath when it was recorded for mtime.
func (c *cache) Get(relPath string, mtime time.Time) (*indexEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.index.Entries[relPath]
	if !ok || !entry.LastModified.Equal(mtime) {
		return nil, false
	}
	return entry, true
}

// Lookup returns the entry for relPath regardless of freshness.
func (c *cache) Lookup(relPath string) (*indexEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.index.Entries[relPath]
	return entry, ok
}

func (c *cache) Set(relPath string, entry *indexEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index.Entries[relPath] = entry
	c.dirty = true
}

// Prune drops entries that are not in keep.
func (c *cache) Prune(keep map[string]bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for p := range c.index.Entries {
		if !keep[p] {
			delete(c.index.Entries, p)
			c.dirty = true
		}
	}
}

func (c *cache) Delete(relPath string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.index.Entries[relPath]; ok {
		delete(c.index.Entries, relPath)
		c.dirty = true
	}
}

// Len returns the number of indexed notes.
func (c *cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.index.Entries)
}
