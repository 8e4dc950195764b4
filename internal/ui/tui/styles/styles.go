package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// DefaultAccent is the highlight colour used when the config does not
// override it
const DefaultAccent = "#FF0000"

// Theme holds every style the shell renders with.  It is built once
// from config and handed to each model at construction; nothing
// mutates it afterwards.
type Theme struct {
	accent lipgloss.Color

	// Text styles
	Title  lipgloss.Style
	Info   lipgloss.Style
	Subtle lipgloss.Style
	Url    lipgloss.Style
	Good   lipgloss.Style
	Bad    lipgloss.Style
}

// NewTheme builds the style set around the given accent colour.  An
// empty accent falls back to DefaultAccent.
func NewTheme(accentColor string) Theme {
	if accentColor == "" {
		accentColor = DefaultAccent
	}
	accent := lipgloss.Color(accentColor)

	return Theme{
		accent: accent,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(accent).
			Padding(0, 1),

		Info: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#DEDEDE")),

		Subtle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC")).
			Padding(0, 2),

		Url: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#43BF6D")).
			Underline(true),

		Good: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#43BF6D")).
			Bold(true),

		Bad: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E84855")).
			Bold(true),
	}
}

// Accent returns the theme's accent colour for models that build their
// own styles
func (t Theme) Accent() lipgloss.Color {
	return t.accent
}

// Layout helpers
func (t Theme) Header(width int, title string) string {
	return t.Title.
		Width(width).
		Align(lipgloss.Center).
		Render(title)
}

func (t Theme) ContentBox(width int, content string, padding int) string {
	return lipgloss.NewStyle().
		Width(width).
		Padding(padding).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#555555")).
		Render(content)
}

func (t Theme) CenteredView(width int, height int, content string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func (t Theme) CenteredText(width int, text string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render(text)
}
