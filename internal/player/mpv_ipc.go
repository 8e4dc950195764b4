package player

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/yukirin-dev/douga/internal/log"
)

// IPCClient provides communication with a running mpv instance over its
// JSON IPC protocol: newline-delimited JSON both ways.
type IPCClient struct {
	socketPath string
	conn       net.Conn
	events     chan IPCEvent

	// writeMu serialises command writes; commands arrive from both the
	// UI goroutine and the session event pump
	writeMu sync.Mutex
}

// IPCEvent represents a single message from mpv.  Property change
// notifications carry the property in Name and its value in Data.
type IPCEvent struct {
	Event     string          `json:"event"`
	Name      string          `json:"name,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	FileError string          `json:"file_error,omitempty"`
	RequestID int             `json:"request_id,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// NewIPCClient creates an IPC client for the given socket path
func NewIPCClient(socketPath string) *IPCClient {
	return &IPCClient{
		socketPath: socketPath,
		events:     make(chan IPCEvent, 100),
	}
}

// DefaultSocketPath returns the socket path used for mpv IPC.  The path
// includes the process ID so concurrent instances do not collide.
func DefaultSocketPath() string {
	// Use environment variable if set
	if path := os.Getenv("DOUGA_MPV_SOCKET"); path != "" {
		return path
	}

	name := fmt.Sprintf("douga-mpv-%d", os.Getpid())

	switch runtime.GOOS {
	case "windows":
		// Windows uses named pipes instead of unix sockets
		return `\\.\pipe\` + name
	default:
		if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
			return filepath.Join(runtimeDir, name)
		}
		return filepath.Join(os.TempDir(), name)
	}
}

// WaitForConnection attempts to connect to mpv with retries, giving the
// freshly started process time to create its socket
func (c *IPCClient) WaitForConnection(ctx context.Context, maxAttempts int, retryDelay time.Duration) error {
	log.Debug("Waiting for mpv to create socket", "socket_path", c.socketPath, "max_attempts", maxAttempts)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		// Check if the socket file exists yet for unix sockets
		if runtime.GOOS != "windows" {
			if _, err := os.Stat(c.socketPath); os.IsNotExist(err) {
				log.Trace("mpv socket does not exist yet", "attempt", attempt, "path", c.socketPath)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(retryDelay):
					continue
				}
			}
		}

		err := c.Connect(ctx)
		if err == nil {
			log.Info("Connected to mpv", "attempt", attempt)
			return nil
		}

		log.Debug("Failed to connect to mpv", "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
			// Continue and retry
		}
	}

	return fmt.Errorf("failed to connect to mpv after %d attempts", maxAttempts)
}

// Close closes the connection to mpv
func (c *IPCClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// readEvents continuously reads messages from mpv until the connection
// closes, then closes the event channel
func (c *IPCClient) readEvents() {
	scanner := bufio.NewScanner(c.conn)
	for scanner.Scan() {
		line := scanner.Text()

		log.Trace("Raw mpv message", "data", line)

		var event IPCEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			log.Error("Failed to unmarshal mpv message", "error", err)
			continue
		}

		// Command replies carry no event name and are only useful for
		// surfacing command failures
		if event.Event == "" {
			if event.Error != "" && event.Error != "success" {
				log.Warn("mpv command failed", "error", event.Error, "request_id", event.RequestID)
			}
			continue
		}

		c.events <- event
	}

	if err := scanner.Err(); err != nil {
		log.Error("Error reading from mpv socket", "error", err)
	}

	log.Debug("mpv event reader stopped")
	close(c.events)
}

// Events returns the channel for mpv events
func (c *IPCClient) Events() <-chan IPCEvent {
	return c.events
}

// SendCommand sends a command to mpv
func (c *IPCClient) SendCommand(cmd []interface{}) error {
	if c.conn == nil {
		return fmt.Errorf("not connected to mpv")
	}

	data, err := json.Marshal(map[string]interface{}{
		"command": cmd,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal command: %w", err)
	}
	data = append(data, '\n')

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.conn.Write(data); err != nil {
		return fmt.Errorf("failed to send command: %w", err)
	}
	return nil
}

// SetProperty sets an mpv property to the given value
func (c *IPCClient) SetProperty(name string, value interface{}) error {
	return c.SendCommand([]interface{}{"set_property", name, value})
}

// ObserveProperty subscribes to change notifications for an mpv property
func (c *IPCClient) ObserveProperty(id int, name string) error {
	return c.SendCommand([]interface{}{"observe_property", id, name})
}
