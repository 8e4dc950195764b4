package media

import "time"

// Status is the coarse lifecycle state of a playback session
type Status string

const (
	// StatusInitial means no media has been requested yet
	StatusInitial Status = "initial"
	// StatusLoading means resolution or player setup is in flight
	StatusLoading Status = "loading"
	// StatusPlaying means media is loaded and advancing
	StatusPlaying Status = "playing"
	// StatusPaused means media is loaded and halted
	StatusPaused Status = "paused"
	// StatusStopped means playback ran to completion or was stopped
	StatusStopped Status = "stopped"
	// StatusError means the last initialize or playback attempt failed
	StatusError Status = "error"
)

// Descriptor is the resolved metadata for a single video
type Descriptor struct {
	ID        string
	Title     string
	Author    string
	Duration  time.Duration
	Thumbnail string
}

// Stream is one playable elementary stream from a video's manifest
type Stream struct {
	URL      string
	MimeType string
	// Bitrate in bits per second, as reported by the manifest
	Bitrate int
	Quality string
	Itag    int
}

// Manifest holds the selectable streams for a video, split by track kind.
// Muxed formats are intentionally absent: playback always pairs one
// video-only stream with one audio-only stream.
type Manifest struct {
	VideoOnly []Stream
	AudioOnly []Stream
}

// Entry is one video reference inside a resolved playlist
type Entry struct {
	ID       string
	Title    string
	Author   string
	Duration time.Duration
}

// SearchResult is one video row returned by a search query
type SearchResult struct {
	ID        string
	Title     string
	Channel   string
	Length    string
	Views     string
	Published string
}
