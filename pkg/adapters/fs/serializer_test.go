package fs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testID = "3f2b8c1e-9a4d-4e6f-8b7a-1c2d3e4f5a6b"

func TestMarkdownSerializer_Parse(t *testing.T) {
	var s MarkdownSerializer

	t.Run("WithFrontmatter", func(t *testing.T) {
		note, err := s.Parse([]byte("---\ntitle: Go\ntags: [lang]\n---\n\n# Go\nbody"))
		require.NoError(t, err)
		assert.Equal(t, "Go", note.Metadata["title"])
		assert.Equal(t, "# Go\nbody", note.Content)
	})

	t.Run("WithoutFrontmatter", func(t *testing.T) {
		note, err := s.Parse([]byte("just text"))
		require.NoError(t, err)
		assert.Empty(t, note.Metadata)
		assert.Equal(t, "just text", note.Content)
	})

	t.Run("DashesInsideYAML", func(t *testing.T) {
		note, err := s.Parse([]byte("---\nrange: a---b\n---\nbody"))
		require.NoError(t, err)
		assert.Equal(t, "a---b", note.Metadata["range"])
		assert.Equal(t, "body", note.Content)
	})

	t.Run("CRLF", func(t *testing.T) {
		note, err := s.Parse([]byte("---\r\nuuid: " + testID + "\r\n---\r\nbody"))
		require.NoError(t, err)
		id, ok := identifierOf(note.Metadata)
		assert.True(t, ok)
		assert.Equal(t, testID, id)
	})

	t.Run("UnclosedIsBody", func(t *testing.T) {
		note, err := s.Parse([]byte("---\ntitle: x\nbody"))
		require.NoError(t, err)
		assert.Empty(t, note.Metadata)
		assert.Equal(t, "---\ntitle: x\nbody", note.Content)
	})
}

func TestMarkdownSerializer_Serialize(t *testing.T) {
	var s MarkdownSerializer
	note, err := s.Parse([]byte("---\ntitle: Go\n---\nbody\n"))
	require.NoError(t, err)

	data, err := s.Serialize(note)
	require.NoError(t, err)
	assert.Equal(t, "---\ntitle: Go\n---\nbody\n", string(data))
}

func TestInjectIdentifier(t *testing.T) {
	t.Run("CreatesHeader", func(t *testing.T) {
		out, err := injectIdentifier([]byte("# Title\n\nbody"), testID)
		require.NoError(t, err)
		assert.Equal(t, "---\nuuid: "+testID+"\n---\n\n# Title\n\nbody", string(out))
	})

	t.Run("PreservesExistingHeader", func(t *testing.T) {
		in := "---\ntitle: Go   # keep comment\ntags:\n  - a\n---\nbody"
		out, err := injectIdentifier([]byte(in), testID)
		require.NoError(t, err)
		assert.Equal(t, "---\nuuid: "+testID+"\ntitle: Go   # keep comment\ntags:\n  - a\n---\nbody", string(out))
	})

	t.Run("ReplacesInvalidID", func(t *testing.T) {
		out, err := injectIdentifier([]byte("---\ntitle: x\nuuid: not-a-uuid\n---\nbody"), testID)
		require.NoError(t, err)
		assert.Equal(t, "---\ntitle: x\nuuid: "+testID+"\n---\nbody", string(out))
	})

	t.Run("UnclosedRuleGetsNewHeader", func(t *testing.T) {
		out, err := injectIdentifier([]byte("---\ntext"), testID)
		require.NoError(t, err)
		assert.Equal(t, "---\nuuid: "+testID+"\n---\n\n---\ntext", string(out))
	})

	t.Run("EmptyHeader", func(t *testing.T) {
		out, err := injectIdentifier([]byte("---\n---\nbody"), testID)
		require.NoError(t, err)
		assert.Equal(t, "---\nuuid: "+testID+"\n---\nbody", string(out))
	})
}

func TestValidID(t *testing.T) {
	assert.True(t, ValidID(testID))
	assert.False(t, ValidID("3f2b8c1e9a4d4e6f8b7a1c2d3e4f5a6b"))
	assert.False(t, ValidID("{"+testID+"}"))
	assert.False(t, ValidID("zzzzzzzz-9a4d-4e6f-8b7a-1c2d3e4f5a6b"))
}
