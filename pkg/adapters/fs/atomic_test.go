package fs

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Run("CreatesParents", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "learn-db", "nested", "x.json")
		require.NoError(t, writeFileAtomic(filename, []byte("{}"), 0))

		got, err := os.ReadFile(filename)
		require.NoError(t, err)
		assert.Equal(t, "{}", string(got))
	})

	t.Run("Overwrites", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "note.md")
		require.NoError(t, os.WriteFile(filename, []byte("old"), 0644))
		require.NoError(t, writeFileAtomic(filename, []byte("new"), 0))

		got, err := os.ReadFile(filename)
		require.NoError(t, err)
		assert.Equal(t, "new", string(got))
	})

	t.Run("KeepsExistingMode", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("file modes are not preserved on windows")
		}
		filename := filepath.Join(t.TempDir(), "private.md")
		require.NoError(t, os.WriteFile(filename, []byte("x"), 0600))
		require.NoError(t, writeFileAtomic(filename, []byte("y"), 0))

		info, err := os.Stat(filename)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("LeavesNoTempFiles", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, writeFileAtomic(filepath.Join(dir, "a.json"), []byte("1"), 0644))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.False(t, strings.HasPrefix(e.Name(), TempFilePrefix), e.Name())
		}
	})
}
