//go:build windows

package player

import (
	"os/exec"
	"syscall"
)

// setupPlayerProcess detaches mpv from the console so it does not fight
// the TUI for input.  The process stays a child so Close can still kill it.
func setupPlayerProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}
