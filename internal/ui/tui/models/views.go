package models

// View represents a specific UI view in the application
type View string

// Available views in the application
const (
	ViewHome    View = "home"
	ViewSearch  View = "search"
	ViewWatch   View = "watch"
	ViewLoading View = "loading"
	ViewMenu    View = "menu"
	ViewHelp    View = "help"
)

// Modal represents a UI intended to be temporarily shown to the user before returning to the original view
type Modal string

// Available modals in the application
const (
	ModalNone    Modal = "none"
	ModalHelp    Modal = "help"
	ModalLoading Modal = "loading"
	ModalQueue   Modal = "queue"
)
