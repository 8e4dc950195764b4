package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yukirin-dev/douga/internal/ui/tui/styles"
)

// KeyBinding represents a single key and its description for the keybinding bar
type KeyBinding struct {
	Key  string
	Desc string
}

// KeyBindingsBar creates a styled footer showing a set of keybindings
// theme: The theme to render with
// width: The width of the screen to center the bar
// bindings: The list of keybindings to display
func KeyBindingsBar(theme styles.Theme, width int, bindings []KeyBinding) string {
	keyStyle := lipgloss.NewStyle().
		Foreground(theme.Accent()).
		Bold(true)

	var parts []string
	for _, b := range bindings {
		parts = append(parts, fmt.Sprintf("%s: %s",
			keyStyle.Render(b.Key),
			b.Desc))
	}

	keyBar := theme.Info.Render(strings.Join(parts, " • "))
	return theme.CenteredText(width, keyBar)
}
