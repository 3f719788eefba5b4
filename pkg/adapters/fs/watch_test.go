package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/learn/pkg/core"
)

func TestRepository_Watch(t *testing.T) {
	repo := newTestRepo(t, map[string]string{"existing.md": "# Existing"})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := repo.Watch(ctx, "**/*.md")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return repo.State().(RepositoryState).WatcherActive }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(repo.Path, "new.md"), []byte("# New"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(repo.Path, "ignored.txt"), []byte("x"), 0644))

	select {
	case e := <-events:
		assert.Equal(t, "new.md", e.Path)
		assert.Contains(t, []core.EventType{core.EventCreate, core.EventModify}, e.Type)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}

	cancel()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("event channel not closed after cancel")
		}
	}
}

func TestRepository_WatchRejectsBadPattern(t *testing.T) {
	repo := newTestRepo(t, nil)
	_, err := repo.Watch(context.Background(), "[")
	assert.Error(t, err)
}

func TestRepository_Reconcile(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, map[string]string{
		"keep.md":   "# Keep",
		"change.md": "# Change",
		"gone.md":   "# Gone",
	})

	first, err := repo.Reconcile(ctx)
	require.NoError(t, err)
	assert.Len(t, first, 3)

	require.NoError(t, os.Remove(filepath.Join(repo.Path, "gone.md")))
	require.NoError(t, os.WriteFile(filepath.Join(repo.Path, "added.md"), []byte("# Added"), 0644))
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(repo.Path, "change.md"), later, later))

	events, err := repo.Reconcile(ctx)
	require.NoError(t, err)

	got := map[string]core.EventType{}
	for _, e := range events {
		got[e.Path] = e.Type
	}
	assert.Equal(t, map[string]core.EventType{
		"added.md":  core.EventCreate,
		"change.md": core.EventModify,
		"gone.md":   core.EventDelete,
	}, got)
	assert.NotNil(t, repo.State().(RepositoryState).LastReconcile)
}
