package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yukirin-dev/douga/internal/log"
	"github.com/yukirin-dev/douga/internal/media"
	"github.com/yukirin-dev/douga/internal/session"
	"github.com/yukirin-dev/douga/internal/ui/tui/components"
	kb "github.com/yukirin-dev/douga/internal/ui/tui/keybindings"
	"github.com/yukirin-dev/douga/internal/ui/tui/styles"
	"github.com/yukirin-dev/douga/internal/ui/tui/util"
)

// rateStops are the playback speeds the rate keys cycle through
var rateStops = []float64{0.5, 1.0, 1.5, 2.0}

// WatchModel is the now playing view.  It renders whatever the
// playback session reports and never drives status itself: key
// presses issue controls, the resulting state arrives back as
// PlaybackMsg updates.
type WatchModel struct {
	width, height int
	theme         styles.Theme
	controller    *session.Controller

	status       media.Status
	position     time.Duration
	duration     time.Duration
	lastErr      error
	pendingTitle string
	fullscreen   bool
	upNext       []media.Entry

	// What the fullscreen key does.  Defaults drive the player window;
	// a host embedding the TUI can override either direction.
	onFullscreenEnter func() error
	onFullscreenExit  func() error

	spinner  spinner.Model
	progress progress.Model
}

// NewWatchModel creates the now playing view around a playback session
func NewWatchModel(theme styles.Theme, controller *session.Controller) *WatchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.Accent())

	p := progress.New(progress.WithSolidFill(string(theme.Accent())))
	p.ShowPercentage = false

	return &WatchModel{
		theme:      theme,
		controller: controller,
		status:     media.StatusInitial,
		onFullscreenEnter: func() error {
			return controller.SetFullscreen(true)
		},
		onFullscreenExit: func() error {
			return controller.SetFullscreen(false)
		},
		spinner:  s,
		progress: p,
	}
}

// SetFullscreenHooks replaces the fullscreen key's default behaviour.
// A nil hook keeps the default for that direction.
func (m *WatchModel) SetFullscreenHooks(enter, exit func() error) {
	if enter != nil {
		m.onFullscreenEnter = enter
	}
	if exit != nil {
		m.onFullscreenExit = exit
	}
}

func (m *WatchModel) ViewType() View {
	return ViewWatch
}

// SetPendingTitle records the title to show while the media loads,
// before its metadata has resolved
func (m *WatchModel) SetPendingTitle(title string) {
	m.pendingTitle = title
}

// SetUpNext gives the view the queue entries to preview
func (m *WatchModel) SetUpNext(entries []media.Entry) {
	m.upNext = entries
}

// Init initializes the model
func (m *WatchModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages
func (m *WatchModel) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case PlaybackMsg:
		return m, m.applyPlayback(msg)

	case spinner.TickMsg:
		// Only animate while there is something to animate
		if m.status != media.StatusLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)
	}

	return m, nil
}

// applyPlayback folds a playback update into the view state
func (m *WatchModel) applyPlayback(msg PlaybackMsg) tea.Cmd {
	switch msg.Type {
	case PlaybackEventStatus:
		previous := m.status
		m.status = msg.Status
		if m.status != media.StatusError {
			m.lastErr = nil
		}
		// Restart the spinner when a new load begins
		if m.status == media.StatusLoading && previous != media.StatusLoading {
			return m.spinner.Tick
		}
	case PlaybackEventProgress:
		m.position = msg.Position
		m.duration = msg.Duration
	case PlaybackEventError:
		m.lastErr = msg.Error
	}
	return nil
}

func (m *WatchModel) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch kb.GetActionByKey(msg, kb.ContextWatch) {
	case kb.ActionTogglePause:
		if m.status == media.StatusPlaying {
			return m.control("pause", m.controller.Pause)
		}
		return m.control("play", m.controller.Play)

	case kb.ActionStop:
		return func() tea.Msg { return StopRequestMsg{} }

	case kb.ActionFullscreen:
		target := !m.fullscreen
		m.fullscreen = target
		hook := m.onFullscreenEnter
		if !target {
			hook = m.onFullscreenExit
		}
		return m.control("fullscreen", hook)

	case kb.ActionRateUp:
		return m.setRate(nextRate(m.controller.Rate(), true))

	case kb.ActionRateDown:
		return m.setRate(nextRate(m.controller.Rate(), false))

	case kb.ActionNextInQueue:
		return func() tea.Msg { return QueueAdvanceMsg{} }

	case kb.ActionOpenQueue:
		return func() tea.Msg { return ShowQueueMsg{} }

	case kb.ActionNowPlaying:
		return func() tea.Msg { return ShowHomeMsg{} }
	}

	return nil
}

// control runs a session control in a command so IPC hiccups never
// stall the UI loop.  Failures are logged; real playback errors come
// back through the session's own event stream.
func (m *WatchModel) control(name string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			log.Warn("Playback control failed", "control", name, "error", err)
		}
		return HandledMsg{Action: "watch:" + name}
	}
}

func (m *WatchModel) setRate(rate float64) tea.Cmd {
	return m.control("set_rate", func() error {
		return m.controller.SetRate(rate)
	})
}

// nextRate returns the adjacent rate stop in the given direction,
// staying put at either end
func nextRate(current float64, up bool) float64 {
	// Snap to the nearest stop first so odd configured rates still cycle
	nearest := 0
	for i, stop := range rateStops {
		if diff(stop, current) < diff(rateStops[nearest], current) {
			nearest = i
		}
	}
	if up && nearest < len(rateStops)-1 {
		return rateStops[nearest+1]
	}
	if !up && nearest > 0 {
		return rateStops[nearest-1]
	}
	return rateStops[nearest]
}

func diff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

// View renders the now playing view
func (m *WatchModel) View() string {
	contentWidth := min(m.width, 120)

	header := m.theme.Header(contentWidth, "Now Playing")

	var content string
	switch m.status {
	case media.StatusInitial:
		content = m.renderIdle(contentWidth)
	case media.StatusLoading:
		content = m.renderLoading(contentWidth)
	case media.StatusError:
		content = m.renderError(contentWidth)
	default:
		content = m.renderPlayback(contentWidth)
	}

	keyBindings := []components.KeyBinding{
		{Key: "p/space", Desc: "Pause"},
		{Key: "s", Desc: "Stop"},
		{Key: "+/-", Desc: "Speed"},
		{Key: "f", Desc: "Fullscreen"},
		{Key: "n", Desc: "Next"},
		{Key: "u", Desc: "Up next"},
		{Key: "Tab", Desc: "Home"},
	}
	footer := components.KeyBindingsBar(m.theme, contentWidth, keyBindings)

	combined := lipgloss.JoinVertical(lipgloss.Center, header, content, "", footer)
	return m.theme.CenteredView(m.width, m.height, combined)
}

func (m *WatchModel) renderIdle(contentWidth int) string {
	var content string
	content += m.theme.CenteredText(contentWidth-2,
		m.theme.Info.Render("Nothing is playing.")) + "\n\n"
	content += m.theme.CenteredText(contentWidth-2,
		m.theme.Info.Render("Go back to the home view and play something."))
	return m.theme.ContentBox(contentWidth, content, 1)
}

func (m *WatchModel) renderLoading(contentWidth int) string {
	title := m.pendingTitle
	if title == "" {
		title = "media"
	}
	loadingRow := m.spinner.View() + " " + m.theme.Info.Render("Loading "+util.TruncateString(title, contentWidth-20)+"...")
	content := m.theme.CenteredText(contentWidth-2, loadingRow)
	return m.theme.ContentBox(contentWidth, content, 1)
}

func (m *WatchModel) renderError(contentWidth int) string {
	var content string
	content += m.theme.CenteredText(contentWidth-2, m.theme.Bad.Render("Playback failed")) + "\n\n"
	if m.lastErr != nil {
		content += m.theme.CenteredText(contentWidth-2,
			m.theme.Info.Render(util.TruncateString(m.lastErr.Error(), contentWidth-6))) + "\n\n"
	}
	content += m.theme.CenteredText(contentWidth-2,
		m.theme.Info.Render("Press Tab to go back and try something else."))
	return m.theme.ContentBox(contentWidth, content, 1)
}

// renderPlayback shows the active media: a surface box shaped to the
// session's aspect ratio, the progress bar and the transport state
func (m *WatchModel) renderPlayback(contentWidth int) string {
	descriptor := m.controller.Descriptor()

	title := m.pendingTitle
	author := ""
	if descriptor != nil {
		title = descriptor.Title
		author = descriptor.Author
	}

	// Shape the surface to the session aspect ratio.  Terminal cells
	// are roughly twice as tall as wide, hence the extra divisor.
	surfaceWidth := contentWidth - 8
	aspect := m.controller.AspectRatio()
	if aspect <= 0 {
		aspect = session.DefaultAspectRatio
	}
	surfaceHeight := int(float64(surfaceWidth) / aspect / 2.1)
	maxHeight := m.height - 16
	if surfaceHeight > maxHeight && maxHeight > 0 {
		surfaceHeight = maxHeight
	}
	if surfaceHeight < 3 {
		surfaceHeight = 3
	}

	titleLines := []string{lipgloss.NewStyle().Bold(true).Render(util.TruncateString(title, surfaceWidth-4))}
	if author != "" {
		titleLines = append(titleLines, m.theme.Info.Render(author))
	}
	if descriptor != nil {
		titleLines = append(titleLines, m.theme.Url.Render("youtu.be/"+descriptor.ID))
	}
	surfaceContent := strings.Join(titleLines, "\n") + "\n\n" + m.statusBadge()

	surface := lipgloss.NewStyle().
		Width(surfaceWidth).
		Height(surfaceHeight).
		Align(lipgloss.Center, lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Accent()).
		Render(surfaceContent)

	// Progress bar with times on either side
	barWidth := surfaceWidth - 18
	if barWidth < 10 {
		barWidth = 10
	}
	m.progress.Width = barWidth
	var frac float64
	if m.duration > 0 {
		frac = float64(m.position) / float64(m.duration)
		if frac > 1 {
			frac = 1
		}
	}
	progressLine := fmt.Sprintf("%7s %s %7s",
		util.FormatDuration(m.position),
		m.progress.ViewAs(frac),
		util.FormatDuration(m.duration))

	stateLine := m.transportLine()

	lines := []string{
		surface,
		"",
		m.theme.CenteredText(contentWidth-4, progressLine),
		m.theme.CenteredText(contentWidth-4, stateLine),
	}

	if next := m.renderUpNext(contentWidth); next != "" {
		lines = append(lines, "", next)
	}

	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m *WatchModel) statusBadge() string {
	switch m.status {
	case media.StatusPlaying:
		return m.theme.Good.Render("▶ Playing")
	case media.StatusPaused:
		return m.theme.Info.Render("⏸ Paused")
	case media.StatusStopped:
		return m.theme.Info.Render("⏹ Stopped")
	default:
		return m.theme.Info.Render(string(m.status))
	}
}

func (m *WatchModel) transportLine() string {
	rate := fmt.Sprintf("%gx", m.controller.Rate())
	parts := rate
	if m.fullscreen {
		parts += " • fullscreen"
	}
	return m.theme.Subtle.Render(parts)
}

func (m *WatchModel) renderUpNext(contentWidth int) string {
	if len(m.upNext) == 0 {
		return ""
	}
	next := m.upNext[0]
	line := fmt.Sprintf("Up next (%d queued): %s", len(m.upNext), next.Title)
	return m.theme.CenteredText(contentWidth-4, m.theme.Subtle.Render(util.TruncateString(line, contentWidth-6)))
}

// Resize updates the dimensions of the watch model
func (m *WatchModel) Resize(width, height int) {
	m.width = width
	m.height = height
}
