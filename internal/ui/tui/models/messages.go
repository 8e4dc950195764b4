package models

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yukirin-dev/douga/internal/media"
)

// HandledMsg signals that an input was consumed with no further work
// for the app model to do.  The action label exists for trace logging.
type HandledMsg struct {
	Action string
}

// Handled wraps an action label in a command emitting HandledMsg
func Handled(action string) tea.Cmd {
	return func() tea.Msg {
		return HandledMsg{Action: action}
	}
}

// PlayRequestMsg asks the app to start playback of a locator
type PlayRequestMsg struct {
	Locator string
	Title   string
}

// SearchRequestMsg asks the app to run a search query
type SearchRequestMsg struct {
	Query string
}

// PlaylistRequestMsg asks the app to load a playlist into the up next
// queue
type PlaylistRequestMsg struct {
	Locator string
}

// ShowWatchMsg asks the app to switch to the now playing view
type ShowWatchMsg struct{}

// ShowHomeMsg asks the app to switch back to the home view
type ShowHomeMsg struct{}

// ShowQueueMsg asks the app to open the up next queue modal
type ShowQueueMsg struct{}

// StopRequestMsg asks the app to stop playback.  Routed through the
// app so a deliberate stop also clears queue auto-advance.
type StopRequestMsg struct{}

// QueueAddMsg asks the app to append an entry to the up next queue
type QueueAddMsg struct {
	Entry media.Entry
}

// QueueAdvanceMsg asks the app to play the next queued entry
type QueueAdvanceMsg struct{}

// QueueJumpMsg asks the app to jump to a specific queued entry,
// dropping everything before it
type QueueJumpMsg struct {
	Index int
}

// SearchEventType discriminates SearchMsg payloads
type SearchEventType string

const (
	SearchEventResults SearchEventType = "results"
	SearchEventError   SearchEventType = "error"
)

// SearchMsg carries the outcome of a search query
type SearchMsg struct {
	Type    SearchEventType
	Query   string
	Results []media.SearchResult
	Error   error
}

// PlaylistEventType discriminates PlaylistMsg payloads
type PlaylistEventType string

const (
	PlaylistEventLoaded PlaylistEventType = "loaded"
	PlaylistEventError  PlaylistEventType = "error"
)

// PlaylistMsg carries the outcome of loading a playlist
type PlaylistMsg struct {
	Type    PlaylistEventType
	Locator string
	Title   string
	Entries []media.Entry
	Error   error
}

// PlaybackEventType discriminates PlaybackMsg payloads
type PlaybackEventType string

const (
	PlaybackEventStatus   PlaybackEventType = "status"
	PlaybackEventProgress PlaybackEventType = "progress"
	PlaybackEventReady    PlaybackEventType = "ready"
	PlaybackEventError    PlaybackEventType = "error"
)

// PlaybackMsg carries a playback session update into the UI loop
type PlaybackMsg struct {
	Type     PlaybackEventType
	Status   media.Status
	Position time.Duration
	Duration time.Duration
	Error    error
}

// LoadingEventType discriminates LoadingMsg payloads
type LoadingEventType string

const (
	LoadingStart LoadingEventType = "start"
	LoadingStop  LoadingEventType = "stop"
)

// LoadingMsg controls the loading overlay.  Operation, when set, is
// dispatched alongside showing the overlay.
type LoadingMsg struct {
	Type      LoadingEventType
	Message   string
	Title     string
	Operation tea.Cmd
}
