package player

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/yukirin-dev/douga/internal/config"
	"github.com/yukirin-dev/douga/internal/log"
)

// MPV implements the Engine interface by driving an external mpv
// process over its JSON IPC socket.  mpv owns the video window; this
// side only issues commands and translates mpv events into the engine
// event stream.
type MPV struct {
	cfg        config.PlayerConfig
	ipc        *IPCClient
	cmd        *exec.Cmd
	socketPath string
	events     chan Event

	mu       sync.Mutex
	position time.Duration
	duration time.Duration
	loaded   bool
	closed   bool
}

// Compile-time check: *MPV must implement Engine
var _ Engine = (*MPV)(nil)

// NewMPV creates an engine for the configured mpv binary.  Nothing is
// launched until Start is called.
func NewMPV(cfg config.PlayerConfig) *MPV {
	socketPath := DefaultSocketPath()
	return &MPV{
		cfg:        cfg,
		socketPath: socketPath,
		ipc:        NewIPCClient(socketPath),
		events:     make(chan Event, 32),
	}
}

// Start launches mpv idle, connects to its IPC socket and begins
// translating events.  mpv shows no window until media is loaded.
func (m *MPV) Start(ctx context.Context) error {
	mpvPath := m.cfg.Path
	if mpvPath == "" {
		mpvPath = "mpv"
	}

	args := []string{
		"--idle=yes",    // Keep running between videos
		"--no-terminal", // The TUI owns the terminal
		"--input-ipc-server=" + m.socketPath,
	}
	if m.cfg.Fullscreen {
		args = append(args, "--fullscreen")
	}
	if m.cfg.Args != "" {
		args = append(args, ParseArgs(m.cfg.Args)...)
	}

	log.Info("Starting mpv", "path", mpvPath, "socket", m.socketPath)
	cmd := exec.Command(mpvPath, args...)
	setupPlayerProcess(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start mpv: %w", err)
	}
	m.cmd = cmd

	// Reap the process when it exits so it never lingers as a zombie
	go func() {
		err := cmd.Wait()
		log.Debug("mpv process exited", "error", err)
	}()

	// Allow time for mpv to create the socket before polling for it
	time.Sleep(300 * time.Millisecond)

	connCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := m.ipc.WaitForConnection(connCtx, 20, 500*time.Millisecond); err != nil {
		_ = m.Close()
		return fmt.Errorf("failed to connect to mpv: %w", err)
	}

	for id, name := range map[int]string{1: "pause", 2: "time-pos", 3: "duration"} {
		if err := m.ipc.ObserveProperty(id, name); err != nil {
			_ = m.Close()
			return fmt.Errorf("failed to observe %s: %w", name, err)
		}
	}

	go m.pump()
	return nil
}

// pump translates mpv IPC events into engine events until the IPC
// connection goes away
func (m *MPV) pump() {
	for event := range m.ipc.Events() {
		m.translate(event)
	}

	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if !closed {
		// mpv went away without being asked to
		m.emit(Event{Kind: EventError, Err: ErrEngineExited})
	}
	close(m.events)
}

func (m *MPV) translate(event IPCEvent) {
	switch event.Event {
	case "file-loaded":
		m.mu.Lock()
		m.loaded = true
		m.mu.Unlock()
		log.Debug("mpv finished loading media")
		m.emit(Event{Kind: EventLoaded})

	case "end-file":
		m.mu.Lock()
		m.loaded = false
		m.position = 0
		m.mu.Unlock()

		if event.Reason == "error" {
			log.Warn("mpv playback failed", "file_error", event.FileError)
			m.emit(Event{Kind: EventError, Err: fmt.Errorf("playback failed: %s", event.FileError)})
			return
		}
		log.Debug("mpv playback ended", "reason", event.Reason)
		m.emit(Event{Kind: EventCompleted})

	case "property-change":
		m.translateProperty(event)
	}
}

func (m *MPV) translateProperty(event IPCEvent) {
	switch event.Name {
	case "pause":
		paused, err := propBool(event.Data)
		if err != nil {
			return
		}
		m.mu.Lock()
		loaded := m.loaded
		m.mu.Unlock()
		// The pause property also flips while idle; only loaded media
		// has a meaningful playing state
		if !loaded {
			return
		}
		if paused {
			m.emit(Event{Kind: EventPaused})
		} else {
			m.emit(Event{Kind: EventPlaying})
		}

	case "time-pos":
		seconds, err := propFloat(event.Data)
		if err != nil {
			return
		}
		m.mu.Lock()
		m.position = time.Duration(seconds * float64(time.Second))
		position, duration := m.position, m.duration
		m.mu.Unlock()
		m.emit(Event{Kind: EventPosition, Position: position, Duration: duration})

	case "duration":
		seconds, err := propFloat(event.Data)
		if err != nil {
			return
		}
		m.mu.Lock()
		m.duration = time.Duration(seconds * float64(time.Second))
		m.mu.Unlock()
	}
}

// emit forwards an event to the consumer.  Position updates are dropped
// when the consumer lags; everything else blocks until delivered.
func (m *MPV) emit(e Event) {
	if e.Kind == EventPosition {
		select {
		case m.events <- e:
		default:
			log.Trace("Dropping position event, consumer is behind")
		}
		return
	}
	m.events <- e
}

// Open loads a new video stream, paused unless play is set.  The pause
// state is set before loading so there is no audible blip.
func (m *MPV) Open(url string, play bool) error {
	m.mu.Lock()
	m.loaded = false
	m.position = 0
	m.duration = 0
	m.mu.Unlock()

	if err := m.ipc.SetProperty("pause", !play); err != nil {
		return err
	}
	return m.ipc.SendCommand([]interface{}{"loadfile", url, "replace"})
}

// SetAudioTrack attaches an external audio stream to the loaded media
func (m *MPV) SetAudioTrack(url string) error {
	return m.ipc.SendCommand([]interface{}{"audio-add", url, "select"})
}

// Play resumes playback
func (m *MPV) Play() error {
	return m.ipc.SetProperty("pause", false)
}

// Pause halts playback
func (m *MPV) Pause() error {
	return m.ipc.SetProperty("pause", true)
}

// Stop unloads the current media, returning mpv to idle
func (m *MPV) Stop() error {
	return m.ipc.SendCommand([]interface{}{"stop"})
}

// SetRate changes playback speed
func (m *MPV) SetRate(rate float64) error {
	return m.ipc.SetProperty("speed", rate)
}

// SetFullscreen toggles the mpv window's fullscreen state
func (m *MPV) SetFullscreen(on bool) error {
	return m.ipc.SetProperty("fullscreen", on)
}

// Position reports the last observed playback position
func (m *MPV) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

// Duration reports the last observed media duration
func (m *MPV) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

// Loaded reports whether media is currently loaded
func (m *MPV) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}

// Events returns the engine event stream
func (m *MPV) Events() <-chan Event {
	return m.events
}

// Close shuts mpv down.  Safe to call more than once.
func (m *MPV) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	log.Info("Shutting down mpv")
	// Ask politely first so mpv can clean up its window, then make sure
	_ = m.ipc.SendCommand([]interface{}{"quit"})
	_ = m.ipc.Close()
	if m.cmd != nil && m.cmd.Process != nil {
		_ = m.cmd.Process.Kill()
	}

	// Remove the socket file (unix only)
	if runtime.GOOS != "windows" {
		if _, err := os.Stat(m.socketPath); err == nil {
			if err := os.Remove(m.socketPath); err != nil {
				log.Warn("Failed to remove mpv socket file", "path", m.socketPath, "error", err)
			}
		}
	}
	return nil
}

func propBool(data json.RawMessage) (bool, error) {
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		return false, err
	}
	return v, nil
}

// propFloat parses a numeric property value.  mpv reports null for
// properties that have no value yet, which surfaces here as an error.
func propFloat(data json.RawMessage) (float64, error) {
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return 0, err
	}
	return v, nil
}
