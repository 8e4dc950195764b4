package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yukirin-dev/douga/internal/resolve"
	"github.com/yukirin-dev/douga/internal/ui/tui"
)

var playCmd = &cobra.Command{
	Use:   "play <url|video id>",
	Short: "Play a video straight away",
	Args:  cobra.ExactArgs(1),
	RunE:  playRun,
}

// playRun validates the locator before starting the TUI, so a typo
// fails fast instead of turning into a search
func playRun(cmd *cobra.Command, args []string) error {
	if err := ensureTTY(); err != nil {
		return err
	}

	locator := args[0]
	if _, ok := resolve.PlaylistID(locator); !ok {
		if _, err := resolve.ParseLocator(locator); err != nil {
			return fmt.Errorf("not a recognised video or playlist locator: %q", locator)
		}
	}

	return tui.Run(cfg, tui.WithStartupInput(locator))
}
