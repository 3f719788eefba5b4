package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/learn/pkg/core"
	"github.com/aretw0/learn/pkg/quiz"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m tea.Model, keys ...string) tea.Cmd {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(key(k))
	}
	return cmd
}

func sampleQuestions() []core.Question {
	return []core.Question{
		&core.MultipleChoice{ID: 1, Question: "Pick b", Options: []string{"a", "b"}, CorrectIndex: 1},
		&core.Cloze{ID: 2, Text: "Go has <CLOZE>.", Answer: "goroutines"},
	}
}

func newQuiz(t *testing.T, redistill RedistillFunc) *QuizModel {
	t.Helper()
	s, err := quiz.New(sampleQuestions())
	require.NoError(t, err)
	return NewQuizModel(context.Background(), "Go", s, redistill)
}

func TestQuizModel_Flow(t *testing.T) {
	m := newQuiz(t, nil)

	send(t, m, "enter")
	assert.Contains(t, m.View(), quiz.WarnSelectAnswer)
	assert.Equal(t, quiz.Answering, m.Session().State())

	send(t, m, "down")
	assert.NotContains(t, m.View(), quiz.WarnSelectAnswer, "warning clears on the next key")

	send(t, m, "enter")
	assert.Equal(t, quiz.Revealed, m.Session().State())
	assert.Contains(t, m.View(), "Correct!")

	send(t, m, "enter")
	assert.Equal(t, quiz.Answering, m.Session().State())
	assert.Contains(t, m.View(), "Question 2/2")

	// q is typed into the answer, not treated as quit.
	send(t, m, "q", "enter")
	a, ok := m.Session().Answer(2)
	require.True(t, ok)
	assert.Equal(t, "q", a.Text)
	assert.Contains(t, m.View(), "goroutines")

	send(t, m, "g")
	require.Equal(t, quiz.Finished, m.Session().State())

	results, ok := m.Results()
	require.True(t, ok)
	assert.Equal(t, 1, results.MultipleChoice.Correct)
	view := m.View()
	assert.Contains(t, view, "1/1 correct (100%)")
	assert.Contains(t, view, "GOOD: 1 (100%)")

	send(t, m, "r")
	assert.Equal(t, quiz.Answering, m.Session().State())
	_, answered := m.Session().Answer(1)
	assert.False(t, answered)

	cmd := send(t, m, "q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestQuizModel_DigitSelectsOption(t *testing.T) {
	m := newQuiz(t, nil)
	send(t, m, "1", "enter")
	assert.Contains(t, m.View(), "Incorrect. Answer: b")
}

func TestQuizModel_Redistill(t *testing.T) {
	fresh := []core.Question{&core.Flashcard{ID: 1, Question: "New?", Answer: "Yes"}}

	t.Run("LoadsNewQuestions", func(t *testing.T) {
		m := newQuiz(t, func(context.Context) ([]core.Question, error) { return fresh, nil })
		cmd := send(t, m, "R")
		require.NotNil(t, cmd)
		assert.Contains(t, m.View(), "Redistilling...")

		m.Update(cmd())
		assert.Equal(t, fresh, m.Session().Questions())
		assert.Contains(t, m.View(), "New?")
	})

	t.Run("KeepsSessionOnFailure", func(t *testing.T) {
		m := newQuiz(t, func(context.Context) ([]core.Question, error) { return nil, errors.New("offline") })
		cmd := send(t, m, "R")
		m.Update(cmd())
		assert.Len(t, m.Session().Questions(), 2)
		assert.Contains(t, m.View(), "Redistill failed: offline")
	})

	t.Run("Unavailable", func(t *testing.T) {
		m := newQuiz(t, nil)
		assert.Nil(t, send(t, m, "R"))
	})
}

func TestSummaryModel(t *testing.T) {
	summaries := []core.NoteSummary{
		{Path: "a.md", Title: "Alpha", KeyPoints: []string{"first", "second"}},
		{Path: "b.md", Title: "Beta", Skipped: true},
		{Path: "c.md", Title: "Gamma", Err: errors.New("boom")},
		{Path: "d.md", Title: "Delta", KeyPoints: []string{"x"}},
	}

	m := NewSummaryModel(summaries, "- ")
	view := m.View()
	assert.Contains(t, view, "- first")
	assert.Contains(t, view, "(empty note)")
	assert.Contains(t, view, "Error: boom")

	send(t, m, "j", "enter")
	assert.Empty(t, m.Selected(), "skipped notes cannot be quizzed")

	send(t, m, "j", "j", "enter")
	assert.Equal(t, "d.md", m.Selected())

	plain := RenderSummaries(summaries, "")
	assert.Contains(t, plain, DefaultKeyPointPrefix+"second")
}
