package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorPrimary   = lipgloss.Color("4")
	ColorSecondary = lipgloss.Color("6")
	ColorSuccess   = lipgloss.Color("2")
	ColorWarning   = lipgloss.Color("3")
	ColorDanger    = lipgloss.Color("1")
	ColorMuted     = lipgloss.Color("8")

	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	ProgressStyle = lipgloss.NewStyle().Foreground(ColorSecondary)
	QuestionStyle = lipgloss.NewStyle().Bold(true)
	BlankStyle    = lipgloss.NewStyle().Underline(true).Foreground(ColorSecondary)
	AnswerStyle   = lipgloss.NewStyle().Foreground(ColorSuccess)
	WrongStyle    = lipgloss.NewStyle().Foreground(ColorDanger)
	WarningStyle  = lipgloss.NewStyle().Foreground(ColorWarning)
	CursorStyle   = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)

	HelpStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(ColorMuted)

	BoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1)
)
