package models

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/yukirin-dev/douga/internal/log"
	"github.com/yukirin-dev/douga/internal/media"
	"github.com/yukirin-dev/douga/internal/ui/tui/components"
	kb "github.com/yukirin-dev/douga/internal/ui/tui/keybindings"
	"github.com/yukirin-dev/douga/internal/ui/tui/styles"
	"github.com/yukirin-dev/douga/internal/ui/tui/util"
)

// SearchModel shows the results of a search query and lets the user
// pick a video to play or queue
type SearchModel struct {
	width, height  int
	theme          styles.Theme
	query          string
	results        []media.SearchResult
	filtered       []media.SearchResult
	cursor         int
	searchInput    textinput.Model
	searchMode     bool
	viewportOffset int // For scrolling
}

// NewSearchModel creates an empty search results model
func NewSearchModel(theme styles.Theme) *SearchModel {
	input := textinput.New()
	input.Placeholder = "Filter results..."
	input.Width = 30
	input.SetValue("")

	return &SearchModel{
		theme:       theme,
		searchInput: input,
	}
}

func (m *SearchModel) ViewType() View {
	return ViewSearch
}

// SetResults replaces the result set, resetting cursor and filter
func (m *SearchModel) SetResults(results []media.SearchResult, query string) {
	m.results = results
	m.filtered = results
	m.query = query
	m.cursor = 0
	m.viewportOffset = 0
	m.searchMode = false
	m.searchInput.SetValue("")
}

// GetSelectedResult returns the currently selected result
func (m *SearchModel) GetSelectedResult() *media.SearchResult {
	if m.cursor < 0 || m.cursor >= len(m.filtered) {
		return nil
	}
	return &m.filtered[m.cursor]
}

// Init initializes the model
func (m *SearchModel) Init() tea.Cmd {
	return nil
}

// Update updates the model based on messages
func (m *SearchModel) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// If in search mode, handle input differently
		if cmd := m.handleSearchModeKeyMsg(msg); cmd != nil {
			return m, cmd
		}

		if cmd := m.handleKeyMsg(msg); cmd != nil {
			return m, cmd
		}
	}

	return m, nil
}

func (m *SearchModel) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch kb.GetActionByKey(msg, kb.ContextSearch) {
	case kb.ActionPlayResult:
		selected := m.GetSelectedResult()
		if selected == nil {
			return Handled("search:no_selection")
		}
		return func() tea.Msg {
			return PlayRequestMsg{
				Locator: selected.ID,
				Title:   selected.Title,
			}
		}
	case kb.ActionQueueResult:
		selected := m.GetSelectedResult()
		if selected == nil {
			return Handled("search:no_selection")
		}
		log.Debug("Queueing search result", "video_id", selected.ID, "title", selected.Title)
		return func() tea.Msg {
			return QueueAddMsg{
				Entry: media.Entry{
					ID:     selected.ID,
					Title:  selected.Title,
					Author: selected.Channel,
				},
			}
		}
	case kb.ActionNowPlaying:
		return func() tea.Msg { return ShowWatchMsg{} }
	case kb.ActionEnableSearch:
		m.searchMode = true
		m.searchInput.Focus()
		return Handled("search:enable")
	case kb.ActionMoveDown:
		if len(m.filtered) > 0 && m.cursor < len(m.filtered)-1 {
			m.cursor++
			m.ensureCursorVisible()
		}
		return Handled("cursor_move:down")
	case kb.ActionMoveUp:
		if m.cursor > 0 {
			m.cursor--
			m.ensureCursorVisible()
		}
		return Handled("cursor_move:up")
	case kb.ActionPageDown:
		pageSize := m.height - 11
		m.cursor += pageSize
		if m.cursor >= len(m.filtered) {
			m.cursor = len(m.filtered) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		m.ensureCursorVisible()
		return Handled("cursor_move:pgdown")
	case kb.ActionPageUp:
		pageSize := m.height - 11
		m.cursor -= pageSize
		if m.cursor < 0 {
			m.cursor = 0
		}
		m.ensureCursorVisible()
		return Handled("cursor_move:pgup")
	case kb.ActionMoveTop:
		m.cursor = 0
		m.ensureCursorVisible()
		return Handled("cursor_move:top")
	case kb.ActionMoveBottom:
		if len(m.filtered) > 0 {
			m.cursor = len(m.filtered) - 1
		}
		m.ensureCursorVisible()
		return Handled("cursor_move:bottom")
	}

	return nil
}

func (m *SearchModel) handleSearchModeKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if !m.searchMode {
		return nil
	}
	switch kb.GetActionByKey(msg, kb.ContextSearchMode) {
	case kb.ActionBack:
		// Cancels search, clearing the filter
		m.searchMode = false
		m.searchInput.SetValue("")
		m.applyFilter()
		return Handled("search:exit")
	case kb.ActionSearchComplete:
		m.searchMode = false
		m.applyFilter()
		return Handled("search:apply")
	}

	// Let the text input model handle other keys
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	// Apply filters as we type
	m.applyFilter()

	return cmd
}

// applyFilter filters results based on search input
func (m *SearchModel) applyFilter() {
	query := m.searchInput.Value()
	if query == "" {
		m.filtered = m.results
		return
	}

	var filtered []media.SearchResult
	for _, result := range m.results {
		if fuzzy.MatchFold(query, result.Title) ||
			fuzzy.MatchFold(query, result.Channel) {
			filtered = append(filtered, result)
		}
	}

	m.filtered = filtered

	// Reset cursor if needed
	if len(m.filtered) == 0 {
		m.cursor = 0
	} else if m.cursor >= len(m.filtered) {
		m.cursor = len(m.filtered) - 1
	}
	m.ensureCursorVisible()
}

// ensureCursorVisible adjusts the viewport offset to keep the cursor visible
func (m *SearchModel) ensureCursorVisible() {
	// If no filtered results, reset cursor and offset
	if len(m.filtered) == 0 {
		m.cursor = 0
		m.viewportOffset = 0
		return
	}

	// Ensure cursor is within filtered results range
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.filtered) {
		m.cursor = len(m.filtered) - 1
	}

	// Calculate available height for the list
	availableHeight := m.height - 10 // Subtract space for header, footer, and margins
	if availableHeight < 1 {
		availableHeight = 1
	}

	// Adjust viewport to show as many entries as possible from the start
	// while keeping the cursor visible
	visibleCount := min(len(m.filtered), availableHeight-1)

	// If total filtered entries fit in viewport, reset offset
	if len(m.filtered) <= visibleCount {
		m.viewportOffset = 0
		return
	}

	// Ensure cursor is within current viewport
	if m.cursor < m.viewportOffset {
		// Cursor is above viewport, adjust offset
		m.viewportOffset = m.cursor
	}

	// Ensure cursor is within visible range from the bottom
	if m.cursor >= m.viewportOffset+visibleCount {
		// Cursor is below viewport, adjust offset to show last entries
		m.viewportOffset = max(0, m.cursor-visibleCount+1)
	}

	// Additional check to ensure we can fill the viewport if possible
	maxPossibleOffset := max(0, len(m.filtered)-visibleCount)
	if m.viewportOffset > maxPossibleOffset {
		m.viewportOffset = maxPossibleOffset
	}
}

// View renders the search results view
func (m *SearchModel) View() string {
	header := m.theme.Header(m.width, "Search Results - "+m.query)
	content := m.renderResultList()

	if m.searchMode {
		// Show search input at the top of the content
		searchPrompt := m.theme.Title.Render("Filter: ") + m.searchInput.View()
		content = lipgloss.JoinVertical(lipgloss.Left, searchPrompt, content)
	}

	keyBindings := []components.KeyBinding{
		{Key: "↑/↓", Desc: "Navigate"},
		{Key: "Enter", Desc: "Play"},
		{Key: "a", Desc: "Queue"},
		{Key: "/", Desc: "Filter"},
		{Key: "Esc", Desc: "Back"},
	}
	footer := components.KeyBindingsBar(m.theme, m.width, keyBindings)

	// Layout the components
	return fmt.Sprintf("%s\n\n%s\n\n%s", header, content, footer)
}

// Resize updates the dimensions of the search model
func (m *SearchModel) Resize(width, height int) {
	m.width = width
	m.height = height
}

// renderResultList renders the list of search results
func (m *SearchModel) renderResultList() string {
	if len(m.filtered) == 0 {
		if m.searchInput.Value() != "" {
			return m.theme.CenteredText(m.width, "No results match your filter")
		}
		return m.theme.CenteredText(m.width, "No results found")
	}

	// Calculate available height for the list
	availableHeight := m.height - 10 // Subtract space for header, footer, and margins
	if availableHeight < 1 {
		availableHeight = 1
	}

	// Determine visible range
	visibleCount := min(len(m.filtered), availableHeight-1) // Reserve space for header row

	// Calculate the range of results to display
	startIdx := m.viewportOffset
	endIdx := startIdx + visibleCount
	if endIdx > len(m.filtered) {
		endIdx = len(m.filtered)
	}

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Width(m.width-4).
		Padding(0, 1)

	selectedStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(m.theme.Accent()).
		Width(m.width-4).
		Padding(0, 1)

	normalStyle := lipgloss.NewStyle().
		Width(m.width-4).
		Padding(0, 1)

	// Build the list with header
	var listContent string

	titleWidth := m.titleColumnWidth()
	headerText := fmt.Sprintf("%s %-20s %8s %10s %-14s",
		util.PadToWidth("Title", titleWidth), "Channel", "Length", "Views", "Published")
	listContent += headerStyle.Render(headerText) + "\n"

	// Add a separator line
	separatorLine := strings.Repeat("─", max(1, m.width-6))
	listContent += separatorLine + "\n"

	// Add result items
	for i := startIdx; i < endIdx; i++ {
		result := m.filtered[i]
		itemText := m.formatResultListItem(result)

		if i == m.cursor {
			listContent += selectedStyle.Render(itemText) + "\n"
		} else {
			listContent += normalStyle.Render(itemText) + "\n"
		}
	}

	// Add pagination indicator if needed
	if len(m.filtered) > visibleCount {
		pagination := fmt.Sprintf("Showing %d-%d of %d", startIdx+1, endIdx, len(m.filtered))
		listContent += m.theme.CenteredText(m.width-4, pagination)
	}

	return m.theme.ContentBox(m.width-2, listContent, 1)
}

// titleColumnWidth sizes the title column to whatever is left after
// the fixed columns
func (m *SearchModel) titleColumnWidth() int {
	width := m.width - 4 - 2 // List width minus item padding
	width -= 20 + 8 + 10 + 14 + 4
	if width < 20 {
		width = 20
	}
	return width
}

// formatResultListItem formats a single search result list item
func (m *SearchModel) formatResultListItem(result media.SearchResult) string {
	title := util.PadToWidth(result.Title, m.titleColumnWidth())
	channel := util.PadToWidth(result.Channel, 20)

	return fmt.Sprintf("%s %s %8s %10s %-14s",
		title,
		channel,
		result.Length,
		result.Views,
		result.Published)
}
