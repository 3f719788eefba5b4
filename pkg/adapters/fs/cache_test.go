package fs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache(t *testing.T) {
	mtime := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("MissingFileStartsEmpty", func(t *testing.T) {
		c := newCache(t.TempDir(), ".learn")
		require.NoError(t, c.Load())
		assert.Zero(t, c.Len())
	})

	t.Run("SaveAndReload", func(t *testing.T) {
		dir := t.TempDir()
		c := newCache(dir, ".learn")
		c.Set("notes/go.md", &indexEntry{ID: "abc", Title: "Go", LastModified: mtime})
		require.NoError(t, c.Save())

		reloaded := newCache(dir, ".learn")
		require.NoError(t, reloaded.Load())
		entry, ok := reloaded.Get("notes/go.md", mtime)
		require.True(t, ok)
		assert.Equal(t, "Go", entry.Title)
		assert.Equal(t, "abc", entry.ID)

		_, ok = reloaded.Get("notes/go.md", mtime.Add(time.Second))
		assert.False(t, ok, "stale mtime must miss")
		_, ok = reloaded.Lookup("notes/go.md")
		assert.True(t, ok)
	})

	t.Run("CorruptOrOldIndexResets", func(t *testing.T) {
		for name, content := range map[string]string{
			"corrupt": "{not json",
			"old":     `{"version":1,"entries":{"a.md":{"id":"a"}}}`,
		} {
			t.Run(name, func(t *testing.T) {
				dir := t.TempDir()
				require.NoError(t, os.MkdirAll(filepath.Join(dir, ".learn"), 0755))
				require.NoError(t, os.WriteFile(filepath.Join(dir, ".learn", "index.json"), []byte(content), 0644))

				c := newCache(dir, ".learn")
				require.NoError(t, c.Load())
				assert.Zero(t, c.Len())
			})
		}
	})

	t.Run("PruneAndDelete", func(t *testing.T) {
		c := newCache(t.TempDir(), ".learn")
		c.Set("a.md", &indexEntry{LastModified: mtime})
		c.Set("b.md", &indexEntry{LastModified: mtime})
		c.Set("c.md", &indexEntry{LastModified: mtime})

		c.Prune(map[string]bool{"a.md": true, "b.md": true})
		assert.Equal(t, 2, c.Len())
		c.Delete("a.md")
		assert.Equal(t, 1, c.Len())
	})

	t.Run("SaveSkipsCleanIndex", func(t *testing.T) {
		dir := t.TempDir()
		c := newCache(dir, ".learn")
		require.NoError(t, c.Save())
		_, err := os.Stat(filepath.Join(dir, ".learn", "index.json"))
		assert.True(t, os.IsNotExist(err))
	})
}
