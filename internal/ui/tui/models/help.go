package models

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	kb "github.com/yukirin-dev/douga/internal/ui/tui/keybindings"
	"github.com/yukirin-dev/douga/internal/ui/tui/styles"
)

// HelpModel displays contextual help with scrolling
type HelpModel struct {
	width, height int
	theme         styles.Theme
	context       View
	viewport      viewport.Model
}

// NewHelpModel creates a new help model for the given context
func NewHelpModel(theme styles.Theme, context View) *HelpModel {
	return &HelpModel{
		theme:    theme,
		context:  context,
		viewport: viewport.New(0, 0),
	}
}

func (m *HelpModel) ViewType() View {
	return ViewHelp
}

// Init initializes the model
func (m *HelpModel) Init() tea.Cmd {
	// Set initial content if dimensions are available
	if m.width > 0 && m.height > 0 {
		m.updateContent()
	}
	return nil
}

// Update handles messages
func (m *HelpModel) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		switch kb.GetActionByKey(msg, kb.ContextHelp) {
		case kb.ActionMoveUp, kb.ActionMoveDown, kb.ActionPageUp, kb.ActionPageDown:
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		case kb.ActionMoveTop:
			m.viewport.GotoTop()
			return m, cmd
		case kb.ActionMoveBottom:
			m.viewport.GotoBottom()
			return m, cmd
		}

	}
	return m, cmd
}

// Resize updates the dimensions
func (m *HelpModel) Resize(width, height int) {
	m.width = width
	m.height = height

	// Update viewport dimensions
	contentWidth := width - 4    // Account for borders
	contentHeight := height - 10 // Account for header, footer, spacing

	// Ensure we don't set negative dimensions
	if contentWidth < 1 {
		contentWidth = 1
	}
	if contentHeight < 1 {
		contentHeight = 1
	}

	m.viewport.Width = contentWidth
	m.viewport.Height = contentHeight

	// Update content for new dimensions
	m.updateContent()
}

// SetContext switches the help content to another view's context
func (m *HelpModel) SetContext(context View) {
	if m.context == context {
		return
	}
	m.context = context
	m.updateContent()
}

// updateContent generates help content and updates the viewport
func (m *HelpModel) updateContent() {
	content := m.generateHelpContent()
	m.viewport.SetContent(content)
	// Reset to top when content changes
	m.viewport.GotoTop()
}

// View renders the help screen
func (m *HelpModel) View() string {
	title := m.getContextTitle()

	// Create header
	header := m.theme.Header(m.width, "Help: "+title)

	// Main content area with viewport
	contentView := m.viewport.View()

	// Footer with navigation help
	scrollText := "↑/↓: Scroll • PgUp/PgDn: Page scroll • Home/End: Goto top/bottom • ESC: Return"
	footer := m.theme.CenteredText(m.width, m.theme.Info.Render(scrollText))

	// Combine elements
	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		"", // Spacing
		m.theme.ContentBox(m.width-2, contentView, 1),
		"", // Spacing
		footer,
	)
}

// getContextTitle returns a user-friendly title for the context
func (m *HelpModel) getContextTitle() string {
	switch m.context {
	case ViewHome:
		return "Home"
	case ViewSearch:
		return "Search Results"
	case ViewWatch:
		return "Now Playing"
	default:
		return "General"
	}
}

// formatKeybindingSection formats a section of keybindings with aligned colons
func (m *HelpModel) formatKeybindingSection(title string, bindings []kb.Binding, skipActions map[kb.Action]bool) string {
	if len(bindings) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(title))
	b.WriteString("\n\n")

	// First pass: determine the maximum key width for alignment
	maxKeyWidth := 0
	for _, binding := range bindings {
		if skipActions != nil && skipActions[binding.Action] {
			continue
		}

		keyText := kb.DisplayKey(binding.KeyMap.Primary)
		if binding.KeyMap.Secondary != "" {
			keyText += " or " + kb.DisplayKey(binding.KeyMap.Secondary)
		}

		if width := utf8.RuneCountInString(keyText); width > maxKeyWidth {
			maxKeyWidth = width
		}
	}

	// Second pass: format each binding with aligned colons
	for _, binding := range bindings {
		if skipActions != nil && skipActions[binding.Action] {
			continue
		}

		keyText := kb.DisplayKey(binding.KeyMap.Primary)
		if binding.KeyMap.Secondary != "" {
			keyText += " or " + kb.DisplayKey(binding.KeyMap.Secondary)
		}

		// Create padding for alignment
		padding := strings.Repeat(" ", maxKeyWidth-utf8.RuneCountInString(keyText))

		b.WriteString(fmt.Sprintf("• %s%s : %s\n",
			lipgloss.NewStyle().Bold(true).Render(keyText),
			padding,
			binding.KeyMap.Help))
	}

	return b.String()
}

// generateHelpContent builds the complete help content
func (m *HelpModel) generateHelpContent() string {
	var b strings.Builder

	// Title style for sections
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(m.theme.Accent())

	// Add context description section
	b.WriteString(titleStyle.Render(m.getContextTitle()))
	b.WriteString("\n\n")
	b.WriteString(m.getContextDescription())
	b.WriteString("\n\n")

	// Add keybindings section
	b.WriteString(titleStyle.Render("Keybindings"))
	b.WriteString("\n\n")

	// Global keybindings
	globalBindings := m.formatKeybindingSection("Global commands:", kb.ContextBindings[kb.ContextGlobal], nil)
	b.WriteString(globalBindings)

	// Build a map of global actions to avoid duplicating them in context-specific bindings
	globalActions := make(map[kb.Action]bool)
	for _, binding := range kb.ContextBindings[kb.ContextGlobal] {
		globalActions[binding.Action] = true
	}

	// Context-specific keybindings
	var contextName kb.ContextName

	switch m.context {
	case ViewHome:
		contextName = kb.ContextHome
	case ViewSearch:
		contextName = kb.ContextSearch
	case ViewWatch:
		contextName = kb.ContextWatch
	}

	if contextName != "" {
		// Add spacing between sections
		if globalBindings != "" {
			b.WriteString("\n")
		}

		sectionTitle := fmt.Sprintf("%s commands:", m.getContextTitle())
		contextBindings := m.formatKeybindingSection(sectionTitle, kb.ContextBindings[contextName], globalActions)
		b.WriteString(contextBindings)

		// Add playback details for the watch view
		if contextName == kb.ContextWatch {
			b.WriteString("\n")
			b.WriteString(m.getPlaybackDetails())
		}
	}

	// Search mode keybindings if applicable
	if m.context == ViewSearch {
		b.WriteString("\n")
		searchBindings := m.formatKeybindingSection("When in filter mode:", kb.ContextBindings[kb.ContextSearchMode], nil)
		b.WriteString(searchBindings)
	}

	return b.String()
}

// getPlaybackDetails returns a detailed explanation of playback behaviour
func (m *HelpModel) getPlaybackDetails() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(m.theme.Accent())
	b.WriteString(titleStyle.Render("Playback"))
	b.WriteString("\n\n")

	b.WriteString("Speed control:\n\n")
	b.WriteString("• The speed keys cycle through 0.5x, 1x, 1.5x and 2x.\n")
	b.WriteString("• The configured default rate is applied every time a new video loads.\n\n")

	b.WriteString("Up next queue:\n\n")
	b.WriteString("• Loading a playlist fills the queue with its videos.\n")
	b.WriteString("• 'a' on a search result appends it to the queue.\n")
	b.WriteString("• When a video finishes, the next queued video plays automatically.\n")
	b.WriteString("• Stopping playback deliberately also stops the queue.\n")

	return b.String()
}

// getContextDescription returns help text for the current context
func (m *HelpModel) getContextDescription() string {
	switch m.context {
	case ViewHome:
		return "The home screen is where you tell Douga what to play.\n\n" +
			"Paste a YouTube video URL, a bare video ID or a playlist URL and press Enter " +
			"to start playback immediately. Any other text is treated as a search query."

	case ViewSearch:
		return "The search results screen lists the videos matching your query.\n\n" +
			"Move the cursor to a video and press Enter to play it, or 'a' to append it " +
			"to the up next queue. The filter narrows the visible results as you type."

	case ViewWatch:
		return "The now playing screen shows the current playback session.\n\n" +
			"Video renders in the mpv window while this view tracks status, position and " +
			"speed. Playback keeps running when you switch back to the home view."

	default:
		return "Douga plays YouTube videos through mpv, driven entirely from your terminal."
	}
}
