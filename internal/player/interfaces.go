package player

import (
	"context"
	"errors"
	"time"
)

// ErrEngineExited means the engine process went away while media was
// expected to be loaded
var ErrEngineExited = errors.New("player engine exited")

// Engine defines the interface for media player implementations.  The
// engine owns the playback surface (its own window); callers drive it
// through commands and watch the event stream for state changes.
type Engine interface {
	// Start launches the engine process and establishes control over it.
	// It must be called exactly once before any other command.
	Start(ctx context.Context) error

	// Open loads a new video stream, replacing whatever is playing.
	// When play is false the media is loaded paused.
	Open(url string, play bool) error

	// SetAudioTrack attaches an external audio stream to the loaded media
	SetAudioTrack(url string) error

	// Play resumes playback of the loaded media
	Play() error

	// Pause halts playback without unloading the media
	Pause() error

	// Stop ends playback and unloads the media
	Stop() error

	// SetRate changes the playback speed, 1.0 being normal
	SetRate(rate float64) error

	// SetFullscreen toggles the engine window's fullscreen state
	SetFullscreen(on bool) error

	// Position reports the last observed playback position
	Position() time.Duration

	// Duration reports the last observed media duration
	Duration() time.Duration

	// Loaded reports whether media is currently loaded
	Loaded() bool

	// Events returns the engine event stream.  The channel closes when
	// the engine shuts down.
	Events() <-chan Event

	// Close tears down the engine process and releases its resources.
	// It is safe to call more than once.
	Close() error
}
