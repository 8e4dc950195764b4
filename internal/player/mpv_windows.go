//go:build windows

package player

import (
	"context"
	"fmt"

	"gopkg.in/natefinch/npipe.v2"

	"github.com/yukirin-dev/douga/internal/log"
)

// Connect establishes a connection with mpv over a named pipe
func (c *IPCClient) Connect(ctx context.Context) error {
	log.Debug("Connecting to named pipe", "path", c.socketPath)

	conn, err := npipe.Dial(c.socketPath)
	if err != nil {
		return fmt.Errorf("failed to connect to mpv pipe: %w", err)
	}

	c.conn = conn
	go c.readEvents()
	return nil
}
