package models

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yukirin-dev/douga/internal/log"
	"github.com/yukirin-dev/douga/internal/resolve"
	"github.com/yukirin-dev/douga/internal/ui/tui/components"
	kb "github.com/yukirin-dev/douga/internal/ui/tui/keybindings"
	"github.com/yukirin-dev/douga/internal/ui/tui/styles"
)

// HomeModel is the entry view: a single input that accepts a video
// URL, a video ID, a playlist URL or free text to search for
type HomeModel struct {
	width, height int
	theme         styles.Theme
	input         textinput.Model
}

// NewHomeModel creates the home view model
func NewHomeModel(theme styles.Theme) *HomeModel {
	input := textinput.New()
	input.Placeholder = "Paste a URL or type to search..."
	input.Width = 60
	input.Focus()

	return &HomeModel{
		theme: theme,
		input: input,
	}
}

func (m *HomeModel) ViewType() View {
	return ViewHome
}

// Init initializes the model
func (m *HomeModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m *HomeModel) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch kb.GetActionByKey(msg, kb.ContextHome) {
		case kb.ActionSubmitInput:
			return m, m.submit()
		case kb.ActionNowPlaying:
			return m, func() tea.Msg { return ShowWatchMsg{} }
		}

		// Everything else belongs to the text input
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

// submit hands the entered text to DispatchInput
func (m *HomeModel) submit() tea.Cmd {
	cmd := DispatchInput(m.input.Value())
	if cmd == nil {
		return Handled("home:empty_input")
	}
	return cmd
}

// DispatchInput decides what a piece of user input means: a playlist,
// a single video or a search query.  Returns nil for empty input.
func DispatchInput(raw string) tea.Cmd {
	query := strings.TrimSpace(raw)
	if query == "" {
		return nil
	}

	if _, ok := resolve.PlaylistID(query); ok {
		log.Debug("Input recognised as playlist", "input", query)
		return func() tea.Msg {
			return PlaylistRequestMsg{Locator: query}
		}
	}

	if id, err := resolve.ParseLocator(query); err == nil {
		log.Debug("Input recognised as video locator", "input", query, "video_id", id)
		return func() tea.Msg {
			return PlayRequestMsg{Locator: id}
		}
	}

	log.Debug("Input treated as search query", "query", query)
	return func() tea.Msg {
		return SearchRequestMsg{Query: query}
	}
}

// Reset clears the input, ready for the next query
func (m *HomeModel) Reset() {
	m.input.SetValue("")
	m.input.Focus()
}

// View renders the home view
func (m *HomeModel) View() string {
	contentWidth := min(m.width, 120)

	header := m.theme.Header(contentWidth, "Douga")

	var content string
	content += m.theme.CenteredText(contentWidth-2,
		m.theme.Info.Render("Watch YouTube from your terminal.")) + "\n\n"

	inputRow := m.theme.Title.Render("Play") + " " + m.input.View()
	content += m.theme.CenteredText(contentWidth-2, inputRow) + "\n\n"

	content += m.theme.CenteredText(contentWidth-2,
		m.theme.Info.Render("Paste a video or playlist URL to play it directly,")) + "\n"
	content += m.theme.CenteredText(contentWidth-2,
		m.theme.Info.Render("or type anything else to search.")) + "\n"

	mainContent := m.theme.ContentBox(contentWidth, content, 1)

	keyBindings := []components.KeyBinding{
		{Key: "Enter", Desc: "Play / Search"},
		{Key: "Tab", Desc: "Now playing"},
		{Key: "Ctrl+h", Desc: "Help"},
		{Key: "Ctrl+c", Desc: "Quit"},
	}
	footer := components.KeyBindingsBar(m.theme, contentWidth, keyBindings)

	combinedContent := lipgloss.JoinVertical(lipgloss.Center, header, mainContent, "", footer)

	return m.theme.CenteredView(m.width, m.height, combinedContent)
}

// Resize updates the dimensions of the home model
func (m *HomeModel) Resize(width, height int) {
	m.width = width
	m.height = height
}
