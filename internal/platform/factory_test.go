package platform

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/learn/pkg/adapters/fs"
	"github.com/aretw0/learn/pkg/core"
)

const (
	distillReply = "```json\n{\"facts\":[\"Go compiles fast\"],\"definitions\":[],\"quotes\":[],\"keyPoints\":[\"Speed\"]}\n```"
	quizReply    = `Here you go: [{"type":"flashcard","id":1,"question":"Is Go fast?","answer":"Yes"},` +
		`{"type":"cloze","id":2,"text":"Go compiles <CLOZE>.","answer":"fast"},` +
		`{"type":"multiple_choice","id":3,"question":"Speed?","options":["slow","fast"],"correct_index":1}]`
)

// scriptedCompleter answers distill prompts and quiz prompts with canned replies.
type scriptedCompleter struct {
	mu      sync.Mutex
	prompts []string
}

func (c *scriptedCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	c.prompts = append(c.prompts, prompt)
	c.mu.Unlock()
	if strings.Contains(prompt, "NOTE CONTENT:") {
		return distillReply, nil
	}
	return quizReply, nil
}

type noticeLog struct {
	mu   sync.Mutex
	msgs []string
}

func (n *noticeLog) Notify(level core.NoticeLevel, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew(t *testing.T) {
	t.Run("RequiresCompleter", func(t *testing.T) {
		_, err := New(t.TempDir())
		assert.ErrorIs(t, err, ErrNoCompleter)
	})

	t.Run("MustExist", func(t *testing.T) {
		_, err := New(filepath.Join(t.TempDir(), "missing"),
			WithCompleter(&scriptedCompleter{}),
			WithMustExist(true),
			WithLogger(discardLogger()))
		assert.Error(t, err)
	})

	t.Run("CreatesFolders", func(t *testing.T) {
		dir := t.TempDir()
		vault, err := New(dir,
			WithCompleter(&scriptedCompleter{}),
			WithDBFolder("sidecars"),
			WithVersioning(false),
			WithLogger(discardLogger()))
		require.NoError(t, err)

		assert.DirExists(t, filepath.Join(dir, "sidecars"))
		assert.DirExists(t, filepath.Join(dir, fs.DefaultSystemDir))
		assert.Equal(t, filepath.Join(dir, "sidecars"), vault.Records.Dir())
		assert.False(t, vault.Records.State().(fs.RecordStoreState).Versioning)

		parts := vault.Components()
		assert.Contains(t, parts, "service")
		assert.Contains(t, parts, "fs-notes")
		assert.Contains(t, parts, "fs-records")
	})
}

func TestVault_PrepareQuiz(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	notePath := filepath.Join(dir, "go.md")
	require.NoError(t, os.WriteFile(notePath, []byte("---\ntags: [lang]\n---\n# Go\nGo compiles fast.\n"), 0644))

	completer := &scriptedCompleter{}
	notices := &noticeLog{}
	vault, err := New(dir,
		WithCompleter(completer),
		WithNotifier(notices),
		WithVersioning(false),
		WithLogger(discardLogger()))
	require.NoError(t, err)

	result, err := vault.Service.PrepareQuiz(ctx, "go.md", core.PrepareOptions{})
	require.NoError(t, err)
	require.Len(t, result.Questions, 3)
	assert.Equal(t, []string{"Go compiles fast"}, result.Record.Distilled.Facts)
	assert.Len(t, completer.prompts, 2)

	t.Run("IdentifierInjected", func(t *testing.T) {
		data, err := os.ReadFile(notePath)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "---\nuuid: "+result.Record.ID+"\ntags: [lang]\n---\n"))
	})

	t.Run("SidecarWritten", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(dir, fs.DefaultDBFolder, result.Record.ID+".json"))
		require.NoError(t, err)

		var wire map[string]any
		require.NoError(t, json.Unmarshal(data, &wire))
		assert.Equal(t, "go.md", wire["notePath"])
		assert.Len(t, wire["quizData"], 3)
	})

	t.Run("FreshContentReused", func(t *testing.T) {
		past := time.Now().Add(-time.Hour)
		require.NoError(t, os.Chtimes(notePath, past, past))

		_, err := vault.Service.PrepareQuiz(ctx, "go.md", core.PrepareOptions{})
		require.NoError(t, err)
		assert.Len(t, completer.prompts, 3, "only the quiz prompt is sent again")
		assert.Contains(t, notices.msgs, "Using existing distilled content for go")
	})
}
