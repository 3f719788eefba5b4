package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aretw0/learn/pkg/core"
)

// DefaultKeyPointPrefix starts every key point line.
const DefaultKeyPointPrefix = "• "

// SummaryModel lists the key points of every note. Enter picks a note to quiz.
type SummaryModel struct {
	summaries []core.NoteSummary
	prefix    string
	cursor    int
	offset    int
	height    int
	selected  string
	quitting  bool
}

// NewSummaryModel creates a summary list. An empty prefix uses DefaultKeyPointPrefix.
func NewSummaryModel(summaries []core.NoteSummary, prefix string) *SummaryModel {
	if prefix == "" {
		prefix = DefaultKeyPointPrefix
	}
	return &SummaryModel{summaries: summaries, prefix: prefix}
}

// Selected returns the path chosen with enter, or "".
func (m *SummaryModel) Selected() string { return m.selected }

// Init implements tea.Model
func (m *SummaryModel) Init() tea.Cmd { return nil }

// Update implements tea.Model
func (m *SummaryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.summaries)-1 {
				m.cursor++
			}
		case "enter":
			if len(m.summaries) > 0 && m.summaries[m.cursor].Err == nil && !m.summaries[m.cursor].Skipped {
				m.selected = m.summaries[m.cursor].Path
				m.quitting = true
				return m, tea.Quit
			}
		}
		m.scroll()
	}
	return m, nil
}

// scroll keeps the cursor within the visible window.
func (m *SummaryModel) scroll() {
	visible := m.visibleEntries()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
}

func (m *SummaryModel) visibleEntries() int {
	if m.height <= 0 {
		return len(m.summaries)
	}
	// Roughly four lines per entry plus header and help.
	n := (m.height - 4) / 4
	if n < 1 {
		n = 1
	}
	return n
}

// View implements tea.Model
func (m *SummaryModel) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("Summaries (%d notes)", len(m.summaries))))
	b.WriteString("\n\n")

	end := min(m.offset+m.visibleEntries(), len(m.summaries))
	for i := m.offset; i < end; i++ {
		b.WriteString(renderSummary(m.summaries[i], m.prefix, i == m.cursor))
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render("↑↓/jk: move • enter: quiz • q: quit"))
	return b.String()
}

// RenderSummaries renders every summary without interaction.
func RenderSummaries(summaries []core.NoteSummary, prefix string) string {
	if prefix == "" {
		prefix = DefaultKeyPointPrefix
	}
	var b strings.Builder
	for _, s := range summaries {
		b.WriteString(renderSummary(s, prefix, false))
		b.WriteString("\n")
	}
	return b.String()
}

func renderSummary(s core.NoteSummary, prefix string, active bool) string {
	var b strings.Builder
	heading := s.Title
	if heading == "" {
		heading = s.Path
	}
	if active {
		b.WriteString(CursorStyle.Render("> " + heading))
	} else {
		b.WriteString(QuestionStyle.Render("  " + heading))
	}
	b.WriteString("\n")

	switch {
	case s.Err != nil:
		b.WriteString("    " + WrongStyle.Render("Error: "+s.Err.Error()) + "\n")
	case s.Skipped:
		b.WriteString("    " + HelpStyle.Render("(empty note)") + "\n")
	case len(s.KeyPoints) == 0:
		b.WriteString("    " + HelpStyle.Render("(no key points)") + "\n")
	default:
		for _, kp := range s.KeyPoints {
			b.WriteString("    " + prefix + kp + "\n")
		}
	}
	return b.String()
}
