package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Lock(t *testing.T) {
	dir := t.TempDir()
	client := NewClient(dir, "", nil)

	unlock, err := client.Lock(context.Background())
	require.NoError(t, err)

	lockPath := filepath.Join(dir, DefaultLockName)
	_, err = os.Stat(lockPath)
	require.NoError(t, err, "lock file not created")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.Lock(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	_, err = os.Stat(lockPath)
	assert.True(t, os.IsNotExist(err), "lock file not removed after unlock")
}

func TestClient_CommitFlow(t *testing.T) {
	if !IsInstalled() {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	client := NewClient(dir, "", nil)
	require.NoError(t, client.Init())
	assert.True(t, client.IsRepo())

	_, err := client.Run("config", "user.email", "test@example.com")
	require.NoError(t, err)
	_, err = client.Run("config", "user.name", "test")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte("{}"), 0644))
	changed, err := client.Changed("a.json")
	require.NoError(t, err)
	assert.True(t, changed)

	require.NoError(t, client.Add("a.json"))
	require.NoError(t, client.Commit("add a", "a.json"))

	changed, err = client.Changed("a.json")
	require.NoError(t, err)
	assert.False(t, changed)

	status, err := client.Status()
	require.NoError(t, err)
	assert.Empty(t, status)
}
