package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yukirin-dev/douga/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.GetVersionInfo())
	},
}
