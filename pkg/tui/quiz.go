// Package tui renders quiz sessions and note summaries in the terminal.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aretw0/learn/pkg/core"
	"github.com/aretw0/learn/pkg/quiz"
)

// RedistillFunc regenerates the question set from freshly distilled content.
type RedistillFunc func(ctx context.Context) ([]core.Question, error)

// redistilledMsg carries the outcome of a RedistillFunc.
type redistilledMsg struct {
	questions []core.Question
	err       error
}

// QuizModel plays a quiz.Session. It keeps no quiz state of its own besides
// the text being typed and the multiple choice cursor.
type QuizModel struct {
	session   *quiz.Session
	title     string
	input     textinput.Model
	cursor    int
	warning   string
	status    string
	busy      bool
	redistill RedistillFunc
	ctx       context.Context
	width     int
	quitting  bool
}

// NewQuizModel creates a model over an already loaded session. redistill may be nil.
func NewQuizModel(ctx context.Context, title string, session *quiz.Session, redistill RedistillFunc) *QuizModel {
	ti := textinput.New()
	ti.Placeholder = "type your answer"
	ti.CharLimit = 500
	ti.Width = 60

	m := &QuizModel{
		session:   session,
		title:     title,
		input:     ti,
		redistill: redistill,
		ctx:       ctx,
	}
	m.syncInput()
	return m
}

// Session returns the underlying session.
func (m *QuizModel) Session() *quiz.Session { return m.session }

// Init implements tea.Model
func (m *QuizModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m *QuizModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case redistilledMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Redistill failed: " + msg.err.Error()
			return m, nil
		}
		if err := m.session.Load(msg.questions); err != nil {
			m.status = "Redistill failed: " + err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("Quiz with %d questions created", len(msg.questions))
		m.cursor = 0
		m.syncInput()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *QuizModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.warning = ""
	key := msg.String()

	if key == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}

	view := m.session.Snapshot()
	if m.session.State() == quiz.Answering && m.input.Focused() {
		return m.handleTyping(msg, view)
	}

	switch key {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit
	case "R":
		return m, m.startRedistill()
	}

	switch m.session.State() {
	case quiz.Answering:
		m.handleChoice(key, view)
	case quiz.Revealed:
		m.handleRevealed(key, view)
	case quiz.Finished:
		if key == "r" {
			if err := m.session.Restart(); err == nil {
				m.status = ""
				m.cursor = 0
				m.syncInput()
			}
		}
	}
	return m, nil
}

// handleTyping edits the free-text answer of a flashcard or cloze question.
func (m *QuizModel) handleTyping(msg tea.KeyMsg, view quiz.View) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.quitting = true
		return m, tea.Quit
	case "enter":
		id := view.Question.QuestionID()
		_ = m.session.RecordAnswer(id, quiz.TextAnswer(strings.TrimSpace(m.input.Value())))
		m.reveal()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleChoice moves the cursor over multiple choice options.
func (m *QuizModel) handleChoice(key string, view quiz.View) {
	mc, ok := view.Question.(*core.MultipleChoice)
	if !ok {
		return
	}
	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		m.choose(mc, m.cursor)
	case "down", "j":
		if m.cursor < len(mc.Options)-1 {
			m.cursor++
		}
		m.choose(mc, m.cursor)
	case "enter", " ":
		m.reveal()
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if i := int(key[0] - '1'); i < len(mc.Options) {
				m.cursor = i
				m.choose(mc, i)
			}
		}
	}
}

func (m *QuizModel) choose(mc *core.MultipleChoice, i int) {
	_ = m.session.RecordAnswer(mc.ID, quiz.ChoiceAnswer(i))
}

func (m *QuizModel) reveal() {
	outcome, err := m.session.Reveal()
	if err != nil {
		return
	}
	if outcome == quiz.OutcomeNeedsAnswer {
		m.warning = m.session.Snapshot().Warning
	}
	m.input.Blur()
}

// handleRevealed rates a self-rated question or moves to the next one.
func (m *QuizModel) handleRevealed(key string, view quiz.View) {
	if key == "enter" || key == " " || key == "n" {
		m.advance(m.session.Advance())
		return
	}
	if !core.SelfRated(view.Question) {
		return
	}
	if r, err := core.ParseRating(key); err == nil {
		m.advance(m.session.Rate(view.Question.QuestionID(), r))
	}
}

func (m *QuizModel) advance(err error) {
	if err != nil {
		return
	}
	m.cursor = 0
	m.syncInput()
}

// syncInput focuses and clears the text input when the current question
// takes a typed answer.
func (m *QuizModel) syncInput() {
	m.input.Reset()
	if m.session.State() != quiz.Answering {
		m.input.Blur()
		return
	}
	if core.SelfRated(m.session.Current()) {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func (m *QuizModel) startRedistill() tea.Cmd {
	if m.redistill == nil {
		return nil
	}
	m.busy = true
	m.status = "Redistilling..."
	ctx, fn := m.ctx, m.redistill
	return func() tea.Msg {
		qs, err := fn(ctx)
		return redistilledMsg{questions: qs, err: err}
	}
}

// View implements tea.Model
func (m *QuizModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.title))
	b.WriteString("\n\n")

	if m.session.State() == quiz.Finished {
		b.WriteString(m.resultsView())
	} else {
		b.WriteString(m.questionView())
	}

	if m.warning != "" {
		b.WriteString("\n")
		b.WriteString(WarningStyle.Render(m.warning))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(StatusBarStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render(m.helpText()))
	return b.String()
}

func (m *QuizModel) questionView() string {
	view := m.session.Snapshot()
	var b strings.Builder
	b.WriteString(ProgressStyle.Render(fmt.Sprintf("Question %d/%d", view.Index+1, view.Total)))
	b.WriteString("\n\n")

	revealed := view.State == quiz.Revealed
	switch q := view.Question.(type) {
	case *core.Flashcard:
		b.WriteString(QuestionStyle.Render(q.Question))
		b.WriteString("\n\n")
		b.WriteString(m.typedAnswer(view, revealed))
		if revealed {
			b.WriteString("\n" + AnswerStyle.Render("Answer: "+q.Answer))
		}
	case *core.Cloze:
		before, after := q.Parts()
		blank := "_____"
		if revealed {
			blank = q.Answer
		}
		b.WriteString(QuestionStyle.Render(before) + BlankStyle.Render(blank) + QuestionStyle.Render(after))
		b.WriteString("\n\n")
		b.WriteString(m.typedAnswer(view, revealed))
	case *core.MultipleChoice:
		b.WriteString(QuestionStyle.Render(q.Question))
		b.WriteString("\n\n")
		for i, opt := range q.Options {
			b.WriteString(m.optionLine(q, i, opt, view, revealed))
			b.WriteString("\n")
		}
		if revealed {
			if view.Answer.Choice == q.CorrectIndex {
				b.WriteString("\n" + AnswerStyle.Render("Correct!"))
			} else {
				b.WriteString("\n" + WrongStyle.Render("Incorrect. Answer: "+q.Options[q.CorrectIndex]))
			}
		}
	}
	b.WriteString("\n")
	return b.String()
}

func (m *QuizModel) typedAnswer(view quiz.View, revealed bool) string {
	if !revealed {
		return m.input.View()
	}
	text := view.Answer.Text
	if text == "" {
		text = "(no answer)"
	}
	return "Your answer: " + text
}

func (m *QuizModel) optionLine(q *core.MultipleChoice, i int, opt string, view quiz.View, revealed bool) string {
	marker := "  "
	if !revealed && i == m.cursor && view.Answered {
		marker = CursorStyle.Render("> ")
	}
	line := fmt.Sprintf("%s%d. %s", marker, i+1, opt)
	if !revealed {
		return line
	}
	switch {
	case i == q.CorrectIndex:
		return AnswerStyle.Render(line)
	case view.Answered && i == view.Answer.Choice:
		return WrongStyle.Render(line)
	}
	return line
}

func (m *QuizModel) resultsView() string {
	results, err := m.session.Results()
	if err != nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(QuestionStyle.Render("Quiz complete"))
	b.WriteString("\n\n")
	for _, line := range results.Lines() {
		b.WriteString(line)
		b.WriteString("\n")
	}
	return BoxStyle.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}

func (m *QuizModel) helpText() string {
	redistill := ""
	if m.redistill != nil {
		redistill = " • R: redistill"
	}
	switch m.session.State() {
	case quiz.Answering:
		if core.SelfRated(m.session.Current()) {
			return "enter: check • esc: quit"
		}
		return "1-9/↑↓: select • enter: check • q: quit" + redistill
	case quiz.Revealed:
		if core.SelfRated(m.session.Current()) {
			return "1/a: again • 2/h: hard • 3/g: good • 4/e: easy • enter: skip • q: quit" + redistill
		}
		return "enter: next • q: quit" + redistill
	default:
		return "r: restart • q: quit" + redistill
	}
}

// Results returns the session results once the quiz is finished.
func (m *QuizModel) Results() (quiz.Results, bool) {
	r, err := m.session.Results()
	return r, err == nil
}
