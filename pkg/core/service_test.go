package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockNotes is an in-memory NoteRepository.
type mockNotes struct {
	mu      sync.Mutex
	notes   map[string]Note
	ids     map[string]string
	listErr error
}

func newMockNotes() *mockNotes {
	return &mockNotes{notes: map[string]Note{}, ids: map[string]string{}}
}

func (m *mockNotes) add(path, content string, mod time.Time) {
	m.notes[path] = Note{Path: path, Content: content, ModTime: mod}
}

func (m *mockNotes) Read(ctx context.Context, path string) (Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[path]
	if !ok {
		return Note{}, ErrNotFound
	}
	return n, nil
}

func (m *mockNotes) List(ctx context.Context) ([]NoteInfo, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []NoteInfo
	for p, n := range m.notes {
		out = append(out, NoteInfo{Path: p, Title: p, ModTime: n.ModTime})
	}
	return out, nil
}

func (m *mockNotes) ModTime(ctx context.Context, path string) (time.Time, error) {
	n, err := m.Read(ctx, path)
	return n.ModTime, err
}

func (m *mockNotes) EnsureIdentifier(ctx context.Context, path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notes[path]; !ok {
		return "", ErrNotFound
	}
	if id, ok := m.ids[path]; ok {
		return id, nil
	}
	id := "id-" + path
	m.ids[path] = id
	return id, nil
}

func (m *mockNotes) LookupIdentifier(ctx context.Context, path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.ids[path]
	if !ok {
		return "", ErrNotFound
	}
	return id, nil
}

// mockRecords is an in-memory RecordStore.
type mockRecords struct {
	mu      sync.Mutex
	records map[string]NoteRecord
	now     time.Time
}

func newMockRecords(now time.Time) *mockRecords {
	return &mockRecords{records: map[string]NoteRecord{}, now: now}
}

func (m *mockRecords) Load(ctx context.Context, id string) (NoteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return NoteRecord{}, ErrNotFound
	}
	return r, nil
}

func (m *mockRecords) LoadOrCreate(ctx context.Context, id, sourcePath string) (NoteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.records[id]; ok {
		return r, nil
	}
	r := NewRecord(id, sourcePath, m.now)
	m.records[id] = r
	return r, nil
}

func (m *mockRecords) Persist(ctx context.Context, r NoteRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[r.ID] = r
	return nil
}

// mockDistiller records calls and fills key points.
type mockDistiller struct {
	mu      sync.Mutex
	calls   int
	err     error
	records *mockRecords
	now     time.Time
	block   chan struct{}
}

func (m *mockDistiller) Distill(ctx context.Context, content string, r NoteRecord) (NoteRecord, error) {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return r, &DistillationError{Err: m.err}
	}
	r.Distilled = DistilledContent{KeyPoints: []string{"kp: " + content}}.Normalize()
	r.Touch(m.now)
	return r, m.records.Persist(ctx, r)
}

type mockGenerator struct {
	questions []Question
	err       error
	seen      NoteRecord
}

func (m *mockGenerator) Generate(ctx context.Context, r NoteRecord) (NoteRecord, []Question, error) {
	m.seen = r
	if m.err != nil {
		return r, nil, &QuizGenerationError{Err: m.err}
	}
	r.Quiz = m.questions
	return r, m.questions, nil
}

type captureNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (c *captureNotifier) Notify(level NoticeLevel, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
}

type fixture struct {
	svc       *Service
	notes     *mockNotes
	records   *mockRecords
	distiller *mockDistiller
	generator *mockGenerator
	notices   *captureNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	created := time.UnixMilli(1_700_000_000_000)
	f := &fixture{
		notes:   newMockNotes(),
		records: newMockRecords(created),
		notices: &captureNotifier{},
		generator: &mockGenerator{questions: []Question{
			&Flashcard{ID: 1, Question: "q", Answer: "a"},
		}},
	}
	f.distiller = &mockDistiller{records: f.records, now: created.Add(time.Hour)}
	f.svc = NewService(ServiceConfig{
		Notes:     f.notes,
		Records:   f.records,
		Distiller: f.distiller,
		Generator: f.generator,
		Notifier:  f.notices,
	})
	return f
}

func TestService_PrepareQuiz(t *testing.T) {
	ctx := context.Background()
	mod := time.UnixMilli(1_700_000_000_000).Add(time.Minute)

	t.Run("FirstRunDistillsAndGenerates", func(t *testing.T) {
		f := newFixture(t)
		f.notes.add("go.md", "Go body", mod)

		res, err := f.svc.PrepareQuiz(ctx, "go.md", PrepareOptions{})
		require.NoError(t, err)
		assert.Len(t, res.Questions, 1)
		assert.Equal(t, 1, f.distiller.calls)
		assert.Equal(t, []string{"kp: Go body"}, f.generator.seen.Distilled.KeyPoints)
		assert.Contains(t, f.notices.msgs, "Distilling content for go (no existing content)...")
		assert.Contains(t, f.notices.msgs, "Quiz with 1 questions created for go")
	})

	t.Run("FreshContentIsReused", func(t *testing.T) {
		f := newFixture(t)
		f.notes.add("go.md", "Go body", mod)

		_, err := f.svc.PrepareQuiz(ctx, "go.md", PrepareOptions{})
		require.NoError(t, err)
		_, err = f.svc.PrepareQuiz(ctx, "go.md", PrepareOptions{})
		require.NoError(t, err)
		assert.Equal(t, 1, f.distiller.calls)
		assert.Contains(t, f.notices.msgs, "Using existing distilled content for go")

		_, err = f.svc.Redistill(ctx, "go.md")
		require.NoError(t, err)
		assert.Equal(t, 2, f.distiller.calls)
	})

	t.Run("DistillFailureWithoutContentAborts", func(t *testing.T) {
		f := newFixture(t)
		f.notes.add("go.md", "Go body", mod)
		f.distiller.err = errors.New("boom")

		_, err := f.svc.PrepareQuiz(ctx, "go.md", PrepareOptions{})
		var de *DistillationError
		require.ErrorAs(t, err, &de)
		assert.Contains(t, f.notices.msgs, "Failed to distill note content: go")
	})

	t.Run("DistillFailureWithContentContinues", func(t *testing.T) {
		f := newFixture(t)
		f.notes.add("go.md", "Go body", mod)
		_, err := f.svc.PrepareQuiz(ctx, "go.md", PrepareOptions{})
		require.NoError(t, err)

		f.distiller.err = errors.New("offline")
		res, err := f.svc.PrepareQuiz(ctx, "go.md", PrepareOptions{Force: true})
		require.NoError(t, err)
		assert.Equal(t, []string{"kp: Go body"}, res.Record.Distilled.KeyPoints)
	})

	t.Run("GenerationFailureAborts", func(t *testing.T) {
		f := newFixture(t)
		f.notes.add("go.md", "Go body", mod)
		f.generator.err = errors.New("bad json")

		res, err := f.svc.PrepareQuiz(ctx, "go.md", PrepareOptions{})
		var qe *QuizGenerationError
		require.ErrorAs(t, err, &qe)
		assert.Empty(t, res.Questions)
	})

	t.Run("EmptyQuestionSetAborts", func(t *testing.T) {
		f := newFixture(t)
		f.notes.add("go.md", "Go body", mod)
		f.generator.questions = nil

		_, err := f.svc.PrepareQuiz(ctx, "go.md", PrepareOptions{})
		assert.ErrorIs(t, err, ErrNoQuestions)
	})

	t.Run("ConcurrentRunIsRejected", func(t *testing.T) {
		f := newFixture(t)
		f.notes.add("go.md", "Go body", mod)
		f.distiller.block = make(chan struct{})

		done := make(chan error, 1)
		go func() {
			_, err := f.svc.PrepareQuiz(ctx, "go.md", PrepareOptions{})
			done <- err
		}()

		require.Eventually(t, func() bool {
			return len(f.svc.State().(ServiceState).ActiveRuns) == 1
		}, time.Second, 5*time.Millisecond)

		_, err := f.svc.PrepareQuiz(ctx, "go.md", PrepareOptions{})
		assert.ErrorIs(t, err, ErrBusy)

		close(f.distiller.block)
		require.NoError(t, <-done)
		assert.Empty(t, f.svc.State().(ServiceState).ActiveRuns)
	})

	t.Run("MissingNote", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.PrepareQuiz(ctx, "nope.md", PrepareOptions{})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_Summarize(t *testing.T) {
	ctx := context.Background()
	mod := time.UnixMilli(1_700_000_000_000).Add(time.Minute)

	f := newFixture(t)
	f.notes.add("a.md", "alpha", mod)
	f.notes.add("b.md", "   \n", mod)

	summaries, err := f.svc.Summarize(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byPath := map[string]NoteSummary{}
	for _, s := range summaries {
		byPath[s.Path] = s
	}
	assert.Equal(t, []string{"kp: alpha"}, byPath["a.md"].KeyPoints)
	assert.NoError(t, byPath["a.md"].Err)
	assert.True(t, byPath["b.md"].Skipped)

	t.Run("ListFailure", func(t *testing.T) {
		f := newFixture(t)
		f.notes.listErr = errors.New("disk")
		_, err := f.svc.Summarize(ctx)
		assert.Error(t, err)
	})
}

func TestService_CheckAndRecord(t *testing.T) {
	ctx := context.Background()
	mod := time.UnixMilli(1_700_000_000_000).Add(time.Minute)

	f := newFixture(t)
	f.notes.add("a.md", "alpha", mod)

	reason, err := f.svc.Check(ctx, "a.md")
	require.NoError(t, err)
	assert.Equal(t, ReasonNoContent, reason)

	_, err = f.svc.Record(ctx, "a.md")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.PrepareQuiz(ctx, "a.md", PrepareOptions{})
	require.NoError(t, err)

	reason, err = f.svc.Check(ctx, "a.md")
	require.NoError(t, err)
	assert.Empty(t, reason)

	rec, err := f.svc.Record(ctx, "a.md")
	require.NoError(t, err)
	assert.Equal(t, "id-a.md", rec.ID)

	f.notes.add("a.md", "alpha 2", f.distiller.now.Add(time.Minute))
	reason, err = f.svc.Check(ctx, "a.md")
	require.NoError(t, err)
	assert.Equal(t, ReasonNoteChanged, reason)
}
