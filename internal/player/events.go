package player

import "time"

// EventKind represents the type of engine event
type EventKind string

const (
	// EventLoaded indicates the engine finished loading the current media
	EventLoaded EventKind = "loaded"
	// EventPlaying indicates playback is advancing
	EventPlaying EventKind = "playing"
	// EventPaused indicates playback is halted but media stays loaded
	EventPaused EventKind = "paused"
	// EventCompleted indicates playback reached the end or was stopped
	EventCompleted EventKind = "completed"
	// EventPosition indicates a playback position update
	EventPosition EventKind = "position"
	// EventError indicates an engine failure
	EventError EventKind = "error"
)

// Event represents a state change reported by the engine
type Event struct {
	Kind EventKind
	// Position and Duration accompany EventPosition
	Position time.Duration
	Duration time.Duration
	// Err is set when Kind is EventError
	Err error
}
