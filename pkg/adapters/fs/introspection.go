package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Path          string     `json:"path"`
	SystemDir     string     `json:"system_dir"`
	DBFolder      string     `json:"db_folder"`
	Include       []string   `json:"include"`
	Exclude       []string   `json:"exclude,omitempty"`
	IndexSize     int        `json:"index_size"`
	WatcherActive bool       `json:"watcher_active"`
	LastReconcile *time.Time `json:"last_reconcile,omitempty"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return RepositoryState{
		Path:          r.Path,
		SystemDir:     r.config.SystemDir,
		DBFolder:      r.config.DBFolder,
		Include:       r.config.Include,
		Exclude:       r.config.Exclude,
		IndexSize:     r.cache.Len(),
		WatcherActive: r.watcherActive,
		LastReconcile: r.lastReconcile,
	}
}

// RecordStoreState exposes the sidecar store configuration.
type RecordStoreState struct {
	Dir        string `json:"dir"`
	Versioning bool   `json:"versioning"`
}

// State implements introspection.Introspectable.
func (s *RecordStore) State() any {
	return RecordStoreState{Dir: s.dir, Versioning: s.git != nil}
}

var (
	_ introspection.Introspectable = (*Repository)(nil)
	_ introspection.Component      = (*Repository)(nil)
	_ introspection.Introspectable = (*RecordStore)(nil)
	_ introspection.Component      = (*RecordStore)(nil)
)

func (r *Repository) setWatcherActive(active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watcherActive = active
}

func (r *Repository) recordReconcile() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.lastReconcile = &now
}
