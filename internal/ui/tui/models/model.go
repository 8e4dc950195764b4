package models

import tea "github.com/charmbracelet/bubbletea"

// Model is the contract every douga view model satisfies.  It mirrors
// tea.Model but returns the concrete Model interface so the app model
// can delegate without type assertions at every call site, and adds
// explicit resize handling so window dimensions reach inactive views.
type Model interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Model, tea.Cmd)
	View() string
	ViewType() View
	Resize(width, height int)
}
