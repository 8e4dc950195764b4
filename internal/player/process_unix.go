//go:build !windows

package player

import (
	"os/exec"
	"syscall"
)

// setupPlayerProcess puts mpv in its own process group so terminal
// signals aimed at the TUI do not reach it.  The process stays a child
// so Close can still kill it.
func setupPlayerProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}
