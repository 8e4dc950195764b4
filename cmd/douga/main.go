package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yukirin-dev/douga/internal/config"
	"github.com/yukirin-dev/douga/internal/log"
	"github.com/yukirin-dev/douga/internal/ui/tui"
	"github.com/yukirin-dev/douga/internal/version"
)

// Flags overriding config file values
var (
	flagPlayer     string
	flagFullscreen bool
	flagNoAutoplay bool
	flagRate       float64
	flagLogLevel   string
)

// cfg and logger are populated by setup before any command runs
var (
	cfg    *config.Config
	logger *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "douga [url|video id|search terms]",
	Short: "Watch YouTube from the terminal",
	Long: `Douga plays YouTube videos through mpv, driven from a terminal UI.
Pass a video or playlist URL to play it straight away, or anything else
to search for it.`,
	Args:              cobra.ArbitraryArgs,
	PersistentPreRunE: setup,
	RunE:              rootRun,
}

func main() {
	err := rootCmd.Execute()
	if logger != nil {
		log.Info("Douga shutting down.  Goodbye!")
		logger.Close()
	}
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagPlayer, "player", "", "Path to the mpv binary")
	rootCmd.PersistentFlags().BoolVarP(&flagFullscreen, "fullscreen", "f", false, "Start the player in fullscreen")
	rootCmd.PersistentFlags().BoolVar(&flagNoAutoplay, "no-autoplay", false, "Load media paused instead of playing immediately")
	rootCmd.PersistentFlags().Float64VarP(&flagRate, "rate", "r", 0, "Initial playback rate")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: trace | debug | info | warn | error")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads the config, applies flag overrides and initialises the
// logger.  Runs before every command.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// CLI flags override config file values
	if flagPlayer != "" {
		cfg.Player.Path = flagPlayer
	}
	if flagFullscreen {
		cfg.Player.Fullscreen = true
	}
	if flagNoAutoplay {
		autoPlay := false
		cfg.Playback.AutoPlay = &autoPlay
	}
	if flagRate > 0 {
		cfg.Playback.Rate = flagRate
	}
	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}

	logger, err = log.New(log.Config{
		Level:    cfg.Logging.Level,
		FilePath: cfg.Logging.FilePath,
	})
	if err != nil {
		return fmt.Errorf("failed to initialise logger: %w", err)
	}
	log.SetDefaultLogger(logger)

	log.Info("Starting up Douga", "version", version.GetVersion(), "build_time", version.GetBuildTime())
	return nil
}

// rootRun launches the TUI, seeding any arguments as initial input
func rootRun(cmd *cobra.Command, args []string) error {
	if err := ensureTTY(); err != nil {
		return err
	}

	var opts []tui.Option
	if input := strings.TrimSpace(strings.Join(args, " ")); input != "" {
		opts = append(opts, tui.WithStartupInput(input))
	}

	if err := tui.Run(cfg, opts...); err != nil {
		log.Error("Unhandled error while running TUI", "error", err)
		return err
	}
	return nil
}

// ensureTTY refuses to start the TUI without an interactive terminal
func ensureTTY() error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("douga needs an interactive terminal to run")
	}
	return nil
}
