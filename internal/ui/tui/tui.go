package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yukirin-dev/douga/internal/config"
	"github.com/yukirin-dev/douga/internal/log"
	"github.com/yukirin-dev/douga/internal/player"
	"github.com/yukirin-dev/douga/internal/resolve"
	"github.com/yukirin-dev/douga/internal/session"
	"github.com/yukirin-dev/douga/internal/ui/tui/models"
	"github.com/yukirin-dev/douga/internal/ui/tui/styles"
)

// Option adjusts how the TUI starts
type Option func(*options)

type options struct {
	startupInput      string
	onFullscreenEnter func() error
	onFullscreenExit  func() error
}

// WithStartupInput feeds the given input into the app on startup, as
// if the user had typed it on the home view
func WithStartupInput(raw string) Option {
	return func(o *options) {
		o.startupInput = raw
	}
}

// WithFullscreenHooks overrides what the fullscreen key does.  By
// default it toggles the player window; a host embedding the TUI can
// hook either transition instead.  A nil hook keeps the default for
// that direction.
func WithFullscreenHooks(enter, exit func() error) Option {
	return func(o *options) {
		o.onFullscreenEnter = enter
		o.onFullscreenExit = exit
	}
}

// Run wires the resolver, player and playback session together and
// starts the TUI event loop.  It blocks until the user quits.
func Run(cfg *config.Config, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	theme := styles.NewTheme(cfg.UI.AccentColor)

	resolver := resolve.NewYTDL(cfg.Resolver)
	search := resolve.NewSearchClient()

	engine := player.NewMPV(cfg.Player)
	if err := engine.Start(context.Background()); err != nil {
		return fmt.Errorf("start player: %w", err)
	}

	controller := session.New(resolver, engine,
		session.WithAutoPlay(cfg.Playback.AutoPlayEnabled()),
		session.WithRate(cfg.Playback.Rate),
		session.WithSettleDelay(time.Duration(cfg.Playback.SettleDelayMS)*time.Millisecond),
		session.WithResolveTimeout(time.Duration(cfg.Resolver.TimeoutSeconds)*time.Second),
	)
	defer func() {
		if err := controller.Dispose(); err != nil && !errors.Is(err, session.ErrSessionClosed) {
			log.Warn("Error disposing playback session", "error", err)
		}
	}()

	app := models.NewAppModel(cfg, theme, controller, resolver, search)
	if o.startupInput != "" {
		app = app.WithStartupInput(o.startupInput)
	}
	if o.onFullscreenEnter != nil || o.onFullscreenExit != nil {
		app = app.WithFullscreenHooks(o.onFullscreenEnter, o.onFullscreenExit)
	}

	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
