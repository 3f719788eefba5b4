package fs

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/lifecycle/pkg/core/supervisor"
	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/learn/pkg/core"
)

// Watch reports note changes matching pattern (a doublestar glob over
// vault-relative paths; empty matches every note) until ctx is done.
// The watcher runs under a supervisor and is restarted if it fails.
// The returned channel is closed after the watcher stops.
func (r *Repository) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern %q", pattern)
	}

	events := make(chan core.Event, 16)
	spec := supervisor.Spec{
		Name: "fs-watcher",
		Type: string(worker.TypeGoroutine),
		Factory: func() (worker.Worker, error) {
			return newWatchWorker(r, pattern, events), nil
		},
		Backoff: supervisor.Backoff{
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     5 * time.Second,
			Multiplier:      2,
			ResetDuration:   time.Minute,
			MaxRestarts:     5,
			MaxDuration:     5 * time.Minute,
		},
		RestartPolicy: supervisor.RestartOnFailure,
	}

	sup := supervisor.New("fs-watch", supervisor.StrategyOneForOne, spec)
	if err := sup.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start watcher: %w", err)
	}

	lifecycle.Go(context.WithoutCancel(ctx), func(context.Context) error {
		<-ctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := sup.Stop(stopCtx)
		close(events)
		return err
	}, lifecycle.WithErrorHandler(r.reportError))

	return events, nil
}

// Reconcile rescans the vault and returns the changes since the last scan.
func (r *Repository) Reconcile(ctx context.Context) ([]core.Event, error) {
	if err := r.cache.Load(); err != nil {
		return nil, err
	}
	before := make(map[string]time.Time, r.cache.Len())
	r.cache.mu.RLock()
	for p, e := range r.cache.index.Entries {
		before[p] = e.LastModified
	}
	r.cache.mu.RUnlock()

	notes, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	var events []core.Event
	for _, n := range notes {
		prev, known := before[n.Path]
		switch {
		case !known:
			events = append(events, core.Event{Type: core.EventCreate, Path: n.Path, Timestamp: now})
		case !prev.Equal(n.ModTime):
			events = append(events, core.Event{Type: core.EventModify, Path: n.Path, Timestamp: now})
		}
		delete(before, n.Path)
	}
	for p := range before {
		events = append(events, core.Event{Type: core.EventDelete, Path: p, Timestamp: now})
	}

	r.recordReconcile()
	return events, nil
}
