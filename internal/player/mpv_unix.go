//go:build !windows

package player

import (
	"context"
	"fmt"
	"net"

	"github.com/yukirin-dev/douga/internal/log"
)

// Connect establishes a connection with mpv over a unix domain socket
func (c *IPCClient) Connect(ctx context.Context) error {
	log.Debug("Connecting to unix socket", "path", c.socketPath)
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("failed to connect to mpv socket: %w", err)
	}

	c.conn = conn
	go c.readEvents()
	return nil
}
