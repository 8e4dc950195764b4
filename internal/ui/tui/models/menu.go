package models

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yukirin-dev/douga/internal/log"
	"github.com/yukirin-dev/douga/internal/ui/tui/components"
	kb "github.com/yukirin-dev/douga/internal/ui/tui/keybindings"
	"github.com/yukirin-dev/douga/internal/ui/tui/styles"
)

// MenuItem represents a single item shown in the menu
type MenuItem struct {
	// Display text shown to the user
	Text string
	// Command executed when an item is selected
	Command tea.Cmd
}

type MenuModel struct {
	Title         string
	Items         []MenuItem
	Cursor        int
	width, height int
	theme         styles.Theme
}

func (m *MenuModel) ViewType() View {
	return ViewMenu
}

func NewMenuModel(theme styles.Theme, title string, items []MenuItem) *MenuModel {
	return &MenuModel{
		Title:  title,
		Items:  items,
		Cursor: 0,
		theme:  theme,
	}
}

func (m *MenuModel) Init() tea.Cmd {
	return nil
}

func (m *MenuModel) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch kb.GetActionByKey(msg, kb.ContextMenu) {
		case kb.ActionMoveUp:
			if m.Cursor > 0 {
				m.Cursor--
			}
			return m, nil

		case kb.ActionMoveDown:
			if m.Cursor < len(m.Items)-1 {
				m.Cursor++
			}
			return m, nil

		case kb.ActionSelectMenuItem:
			// Safety fallback, if no items just return nil cmd
			if len(m.Items) == 0 {
				return m, nil
			}

			selected := m.Items[m.Cursor]
			log.Info("Menu item selected", "title", m.Title, "item", selected.Text)
			return m, selected.Command
		}
	}

	return m, nil
}

func (m *MenuModel) View() string {
	if len(m.Items) == 0 {
		return m.theme.CenteredText(m.width, "Nothing queued")
	}

	header := m.theme.Header(m.width, m.Title)

	cursorStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(m.theme.Accent()).
		Width(m.width-8). // Account for padding and cursor indicator
		Padding(0, 1)

	itemStyle := lipgloss.NewStyle().
		Width(m.width-8).
		Padding(0, 1)

	var menuContent string
	for i, item := range m.Items {
		var renderedItem string
		if i == m.Cursor {
			renderedItem = "> " + cursorStyle.Render(item.Text)
		} else {
			renderedItem = "  " + itemStyle.Render(item.Text)
		}
		menuContent += renderedItem + "\n"
	}

	content := m.theme.ContentBox(m.width-4, menuContent, 1)

	keyBindings := []components.KeyBinding{
		{Key: "↑/↓", Desc: "Navigate"},
		{Key: "Enter", Desc: "Select"},
		{Key: "Esc", Desc: "Cancel"},
	}
	footer := components.KeyBindingsBar(m.theme, m.width, keyBindings)

	// Combine all elements
	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		"", // Add an empty line for spacing
		content,
		"", // Add an empty line for spacing
		footer,
	)
}

func (m *MenuModel) Resize(width, height int) {
	m.width = width
	m.height = height
}
