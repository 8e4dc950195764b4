package keybindings

import tea "github.com/charmbracelet/bubbletea"

// Action represents a specific action that can be triggered by a key
type Action string

// Define all possible actions
const (
	// Global actions
	ActionQuit       Action = "quit"
	ActionToggleHelp Action = "toggle_help"
	ActionBack       Action = "back" // General purpose "go back" or "cancel"

	// Navigation actions
	ActionMoveUp     Action = "move_up"
	ActionMoveDown   Action = "move_down"
	ActionPageUp     Action = "page_up"
	ActionPageDown   Action = "page_down"
	ActionMoveTop    Action = "move_top"
	ActionMoveBottom Action = "move_bottom"

	// Home view actions
	ActionSubmitInput Action = "submit_input"
	ActionNowPlaying  Action = "now_playing"

	// Search result actions
	ActionPlayResult  Action = "play_result"
	ActionQueueResult Action = "queue_result"

	// Watch view actions
	ActionTogglePause Action = "toggle_pause"
	ActionStop        Action = "stop"
	ActionFullscreen  Action = "fullscreen"
	ActionRateUp      Action = "rate_up"
	ActionRateDown    Action = "rate_down"
	ActionNextInQueue Action = "next_in_queue"
	ActionOpenQueue   Action = "open_queue"

	// Menu actions
	ActionSelectMenuItem Action = "select_menu_item"

	// Search mode actions
	ActionEnableSearch   Action = "enable_search"
	ActionSearchComplete Action = "search_complete"
)

// ContextName represents a specific UI context in the application that has its own keybinds
type ContextName string

const (
	ContextGlobal     ContextName = "global"
	ContextHome       ContextName = "home"
	ContextSearch     ContextName = "search"
	ContextWatch      ContextName = "watch"
	ContextMenu       ContextName = "menu"
	ContextSearchMode ContextName = "search_mode"
	ContextHelp       ContextName = "help"
)

var ContextBindings = map[ContextName][]Binding{
	ContextGlobal:     globalBindings,
	ContextHome:       homeBindings,
	ContextSearch:     searchBindings,
	ContextWatch:      watchBindings,
	ContextMenu:       menuBindings,
	ContextSearchMode: searchModeBindings,
	ContextHelp:       helpBindings,
}

// KeyMap stores the mappings from actions to key sequences for each context
type KeyMap struct {
	Primary   string
	Secondary string // Optional alternative key
	Help      string // Description for help screen
}

// Binding maps an action to its keys and help text
type Binding struct {
	Action Action
	KeyMap KeyMap
}

// navigationBindings contains general navigation bindings for consistent navigation across the app
var navigationBindings = []Binding{
	{
		Action: ActionMoveUp,
		KeyMap: KeyMap{
			Primary:   "up",
			Secondary: "k",
			Help:      "Move cursor up",
		},
	},
	{
		Action: ActionMoveDown,
		KeyMap: KeyMap{
			Primary:   "down",
			Secondary: "j",
			Help:      "Move cursor down",
		},
	},
	{
		Action: ActionPageUp,
		KeyMap: KeyMap{
			Primary: "pgup",
			Help:    "Move up one page",
		},
	},
	{
		Action: ActionPageDown,
		KeyMap: KeyMap{
			Primary: "pgdown",
			Help:    "Move down one page",
		},
	},
	{
		Action: ActionMoveTop,
		KeyMap: KeyMap{
			Primary: "home",
			Help:    "Move top of view",
		},
	},
	{
		Action: ActionMoveBottom,
		KeyMap: KeyMap{
			Primary: "end",
			Help:    "Move bottom of view",
		},
	},
}

// globalBindings contains key bindings that work across all views
var globalBindings = []Binding{
	{
		Action: ActionQuit,
		KeyMap: KeyMap{
			Primary: "ctrl+c",
			Help:    "Quit application",
		},
	},
	{
		Action: ActionToggleHelp,
		KeyMap: KeyMap{
			Primary: "ctrl+h",
			Help:    "Toggle help screen",
		},
	},
	{
		Action: ActionBack,
		KeyMap: KeyMap{
			Primary: "esc",
			Help:    "Go back/cancel current action",
		},
	},
}

// homeBindings contains key bindings specific to the home view
var homeBindings = []Binding{
	{
		Action: ActionSubmitInput,
		KeyMap: KeyMap{
			Primary: "enter",
			Help:    "Play the URL, or search for the entered text",
		},
	},
	{
		Action: ActionNowPlaying,
		KeyMap: KeyMap{
			Primary: "tab",
			Help:    "Jump to the now playing view",
		},
	},
}

// searchBindings contains key bindings specific to the search results view
var searchBindings = withNavigation([]Binding{
	{
		Action: ActionPlayResult,
		KeyMap: KeyMap{
			Primary: "enter",
			Help:    "Play selected video",
		},
	},
	{
		Action: ActionQueueResult,
		KeyMap: KeyMap{
			Primary: "a",
			Help:    "Add selected video to up next",
		},
	},
	{
		Action: ActionEnableSearch,
		KeyMap: KeyMap{
			Primary:   "/",
			Secondary: "ctrl+f",
			Help:      "Filter results",
		},
	},
	{
		Action: ActionNowPlaying,
		KeyMap: KeyMap{
			Primary: "tab",
			Help:    "Jump to the now playing view",
		},
	},
})

// watchBindings contains key bindings specific to the now playing view
var watchBindings = []Binding{
	{
		Action: ActionTogglePause,
		KeyMap: KeyMap{
			Primary:   "p",
			Secondary: " ",
			Help:      "Toggle pause",
		},
	},
	{
		Action: ActionStop,
		KeyMap: KeyMap{
			Primary: "s",
			Help:    "Stop playback",
		},
	},
	{
		Action: ActionFullscreen,
		KeyMap: KeyMap{
			Primary: "f",
			Help:    "Toggle player fullscreen",
		},
	},
	{
		Action: ActionRateUp,
		KeyMap: KeyMap{
			Primary:   "+",
			Secondary: "]",
			Help:      "Increase playback speed",
		},
	},
	{
		Action: ActionRateDown,
		KeyMap: KeyMap{
			Primary:   "-",
			Secondary: "[",
			Help:      "Decrease playback speed",
		},
	},
	{
		Action: ActionNextInQueue,
		KeyMap: KeyMap{
			Primary: "n",
			Help:    "Play next video in up next",
		},
	},
	{
		Action: ActionOpenQueue,
		KeyMap: KeyMap{
			Primary: "u",
			Help:    "Show the up next queue",
		},
	},
	{
		Action: ActionNowPlaying,
		KeyMap: KeyMap{
			Primary: "tab",
			Help:    "Jump back to the home view",
		},
	},
}

// menuBindings contains key bindings for menu style modals
var menuBindings = withNavigation([]Binding{
	{
		Action: ActionSelectMenuItem,
		KeyMap: KeyMap{
			Primary: "enter",
			Help:    "Select item",
		},
	},
})

// searchModeBindings contains key bindings specific for when search mode is active
var searchModeBindings = []Binding{
	{
		Action: ActionBack,
		KeyMap: KeyMap{
			Primary:   "esc",
			Secondary: "ctrl+f",
			Help:      "Exit search mode and remove the filter",
		},
	},
	{
		Action: ActionSearchComplete,
		KeyMap: KeyMap{
			Primary: "enter",
			Help:    "Apply the search filter and return control to the original view",
		},
	},
}

// helpBindings contains key bindings specific to the help view
var helpBindings = withNavigation([]Binding{})

// GetActionKey returns the primary key for an action
func GetActionKey(action Action, bindings []Binding) string {
	for _, binding := range bindings {
		if binding.Action == action {
			return binding.KeyMap.Primary
		}
	}
	return ""
}

// GetActionSecondaryKey returns the secondary key for an action if it exists
func GetActionSecondaryKey(action Action, bindings []Binding) string {
	for _, binding := range bindings {
		if binding.Action == action {
			return binding.KeyMap.Secondary
		}
	}
	return ""
}

// GetBindingByKey returns the action and help text for a given key
func GetBindingByKey(key string, bindings []Binding) (Action, string) {
	for _, binding := range bindings {
		if binding.KeyMap.Primary == key || binding.KeyMap.Secondary == key {
			return binding.Action, binding.KeyMap.Help
		}
	}
	return "", ""
}

// GetActionByKey returns just the action for a given key, or an empty Action if not found
func GetActionByKey(keyMsg tea.KeyMsg, name ContextName) Action {
	if bindings, exists := ContextBindings[name]; exists {
		key := keyMsg.String()
		for _, binding := range bindings {
			if binding.KeyMap.Primary == key || binding.KeyMap.Secondary == key {
				return binding.Action
			}
		}
	}
	return ""
}

// DisplayKey converts a raw key string into its help screen spelling
func DisplayKey(key string) string {
	if key == " " {
		return "space"
	}
	return key
}

// FormatKeyHelp formats a key binding for display in help text
func FormatKeyHelp(binding Binding) string {
	if binding.KeyMap.Secondary != "" {
		return DisplayKey(binding.KeyMap.Primary) + "/" + DisplayKey(binding.KeyMap.Secondary) + ": " + binding.KeyMap.Help
	}
	return DisplayKey(binding.KeyMap.Primary) + ": " + binding.KeyMap.Help
}

// GetHelpText generates formatted help text for a set of bindings
func GetHelpText(title string, bindings []Binding) string {
	helpText := "## " + title + "\n\n"
	for _, binding := range bindings {
		helpText += "* " + FormatKeyHelp(binding) + "\n"
	}
	return helpText
}

// withNavigation is a helper function to include navigation bindings in other binding sets
func withNavigation(bindings []Binding) []Binding {
	return append(append([]Binding{}, navigationBindings...), bindings...)
}
