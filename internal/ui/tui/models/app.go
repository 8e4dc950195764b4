package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yukirin-dev/douga/internal/config"
	"github.com/yukirin-dev/douga/internal/log"
	"github.com/yukirin-dev/douga/internal/media"
	"github.com/yukirin-dev/douga/internal/resolve"
	"github.com/yukirin-dev/douga/internal/session"
	"github.com/yukirin-dev/douga/internal/ui/tui/styles"
)

// AppModel is the main application model that coordinates all child models.  It is the high level wrapper.
type AppModel struct {
	config        *config.Config
	theme         styles.Theme
	controller    *session.Controller
	resolver      *resolve.YTDL
	search        *resolve.SearchClient
	activeView    View  // Track the current active 'main view'
	activeModal   Modal // Track the current active 'modal overlay' if any
	width, height int

	// Models used for various views
	homeModel    *HomeModel
	searchModel  *SearchModel
	watchModel   *WatchModel
	helpModel    *HelpModel
	loadingModel *LoadingModel
	queueModel   *MenuModel

	// Up next queue, consumed front to back
	queue []media.Entry
	// manualStop suppresses queue auto-advance for a deliberate stop
	manualStop bool

	// playbackEvents carries session observer callbacks into the
	// bubbletea loop
	playbackEvents chan PlaybackMsg

	// startup is dispatched once on Init, seeded from CLI arguments
	startup tea.Cmd
}

// NewAppModel creates a new instance of the main application model
func NewAppModel(cfg *config.Config, theme styles.Theme, controller *session.Controller, resolver *resolve.YTDL, search *resolve.SearchClient) AppModel {
	events := make(chan PlaybackMsg, 64)

	// Bridge session observers onto the message loop.  Progress updates
	// are dropped when the UI falls behind; everything else must arrive.
	controller.OnStatus(func(status media.Status) {
		events <- PlaybackMsg{Type: PlaybackEventStatus, Status: status}
	})
	controller.OnProgress(func(position, duration time.Duration) {
		select {
		case events <- PlaybackMsg{Type: PlaybackEventProgress, Position: position, Duration: duration}:
		default:
		}
	})
	controller.OnReady(func(*session.Controller) {
		events <- PlaybackMsg{Type: PlaybackEventReady}
	})
	controller.OnError(func(err error) {
		events <- PlaybackMsg{Type: PlaybackEventError, Error: err}
	})

	return AppModel{
		config:         cfg,
		theme:          theme,
		controller:     controller,
		resolver:       resolver,
		search:         search,
		activeView:     ViewHome,
		activeModal:    ModalNone,
		homeModel:      NewHomeModel(theme),
		searchModel:    NewSearchModel(theme),
		watchModel:     NewWatchModel(theme, controller),
		helpModel:      NewHelpModel(theme, ViewHome),
		playbackEvents: events,
	}
}

// WithStartupInput dispatches the given input as if the user had
// entered it on the home view, as soon as the TUI starts
func (m AppModel) WithStartupInput(raw string) AppModel {
	m.startup = DispatchInput(raw)
	return m
}

// WithFullscreenHooks replaces what the fullscreen key does.  A nil
// hook keeps the default for that direction, which toggles the player
// window.
func (m AppModel) WithFullscreenHooks(enter, exit func() error) AppModel {
	m.watchModel.SetFullscreenHooks(enter, exit)
	return m
}

func (m AppModel) Init() tea.Cmd {
	log.Info("Initialising Douga TUI")

	cmds := []tea.Cmd{
		m.homeModel.Init(),
		m.listenForPlaybackEvents(),
	}
	if m.startup != nil {
		cmds = append(cmds, m.startup)
	}

	return tea.Batch(cmds...)
}

// listenForPlaybackEvents waits for the next session update.  It is
// re-armed every time a PlaybackMsg is processed.
func (m AppModel) listenForPlaybackEvents() tea.Cmd {
	events := m.playbackEvents
	return func() tea.Msg {
		return <-events
	}
}

// Update handles messages and updates the models as appropriate
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			log.Info("Quit command received.  Shutting down...")
			if err := m.controller.Dispose(); err != nil && !errors.Is(err, session.ErrSessionClosed) {
				log.Warn("Error disposing playback session", "error", err)
			}
			return m, tea.Quit
		case "ctrl+h":
			log.Debug("Help requested", "active_view", m.activeView)
			// Disable/toggle modal if one already active
			if m.activeModal != ModalNone {
				m.activeModal = ModalNone
			} else {
				m.helpModel.SetContext(m.activeView)
				m.activeModal = ModalHelp
			}
			return m, nil

		// Handle closing modal when esc is pressed if any is active
		case "esc":
			if m.activeModal != ModalNone {
				m.activeModal = ModalNone
				return m, nil
			}
			// Without a modal, esc walks back to the home view
			if m.activeView != ViewHome {
				m.activeView = ViewHome
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		log.Debug("Window size changed", "old_width", m.width, "new_width", msg.Width, "old_height", m.height, "new_height", msg.Height)
		m.width = msg.Width
		m.height = msg.Height

		// Propagate new window size to all views so they are aware and can render correctly
		m.homeModel.Resize(msg.Width, msg.Height)
		m.searchModel.Resize(msg.Width, msg.Height)
		m.watchModel.Resize(msg.Width, msg.Height)
		m.helpModel.Resize(msg.Width, msg.Height)
		if m.loadingModel != nil {
			m.loadingModel.Resize(msg.Width, msg.Height)
		}
		if m.queueModel != nil {
			m.queueModel.Resize(msg.Width, msg.Height)
		}

	case HandledMsg:
		log.Trace("Input handled", "action", msg.Action)
		return m, nil

	case PlayRequestMsg:
		return m.startPlayback(msg.Locator, msg.Title)

	case SearchRequestMsg:
		log.Info("Search requested", "query", msg.Query)
		return m, func() tea.Msg {
			return LoadingMsg{
				Type:      LoadingStart,
				Message:   fmt.Sprintf("Searching for %q ...", msg.Query),
				Operation: m.runSearch(msg.Query),
			}
		}

	case PlaylistRequestMsg:
		log.Info("Playlist load requested", "locator", msg.Locator)
		return m, func() tea.Msg {
			return LoadingMsg{
				Type:      LoadingStart,
				Message:   "Loading playlist ...",
				Operation: m.loadPlaylist(msg.Locator),
			}
		}

	case SearchMsg:
		m.activeModal = ModalNone
		if msg.Type == SearchEventError {
			log.Error("Search failed", "query", msg.Query, "error", msg.Error)
			return m, nil
		}
		log.Info("Search results loaded", "query", msg.Query, "count", len(msg.Results))
		m.searchModel.SetResults(msg.Results, msg.Query)
		m.activeView = ViewSearch
		return m, nil

	case PlaylistMsg:
		m.activeModal = ModalNone
		if msg.Type == PlaylistEventError {
			log.Error("Failed to load playlist", "locator", msg.Locator, "error", msg.Error)
			return m, nil
		}
		if len(msg.Entries) == 0 {
			log.Warn("Playlist contained no playable entries", "locator", msg.Locator)
			return m, nil
		}
		log.Info("Playlist loaded", "title", msg.Title, "count", len(msg.Entries))
		m.queue = msg.Entries
		return m.advanceQueue()

	case QueueAddMsg:
		m.queue = append(m.queue, msg.Entry)
		m.watchModel.SetUpNext(m.queue)
		log.Info("Added to up next", "video_id", msg.Entry.ID, "title", msg.Entry.Title, "queued", len(m.queue))
		return m, nil

	case QueueAdvanceMsg:
		return m.advanceQueue()

	case QueueJumpMsg:
		m.activeModal = ModalNone
		if msg.Index < 0 || msg.Index >= len(m.queue) {
			return m, nil
		}
		entry := m.queue[msg.Index]
		m.queue = m.queue[msg.Index+1:]
		m.watchModel.SetUpNext(m.queue)
		return m.startPlayback(entry.ID, entry.Title)

	case ShowQueueMsg:
		return m.openQueueModal()

	case ShowWatchMsg:
		m.activeView = ViewWatch
		return m, nil

	case ShowHomeMsg:
		m.activeView = ViewHome
		return m, nil

	case StopRequestMsg:
		m.manualStop = true
		controller := m.controller
		return m, func() tea.Msg {
			if err := controller.Stop(); err != nil {
				log.Warn("Stop failed", "error", err)
			}
			return HandledMsg{Action: "playback:stop"}
		}

	case PlaybackMsg:
		return m.handlePlaybackMsg(msg)

	case LoadingMsg:
		switch msg.Type {
		case LoadingStart:
			m.loadingModel = NewLoadingModel(m.theme, msg.Message)
			if msg.Title != "" {
				m.loadingModel.WithTitle(msg.Title)
			}
			m.loadingModel.Resize(m.width, m.height)
			m.activeModal = ModalLoading
			return m, tea.Batch(m.loadingModel.Init(), msg.Operation)
		case LoadingStop:
			m.activeModal = ModalNone
			return m, nil
		}
	}

	// Prioritise delegating messages to a modal if one is active
	switch m.activeModal {
	case ModalHelp:
		return m.updateHelpModal(msg)
	case ModalLoading:
		return m.updateLoadingModal(msg)
	case ModalQueue:
		return m.updateQueueModal(msg)
	}

	// Delegate message processing to the active view
	switch m.activeView {
	case ViewHome:
		return m.updateHomeView(msg)
	case ViewSearch:
		return m.updateSearchView(msg)
	case ViewWatch:
		return m.updateWatchView(msg)
	}

	return m, nil
}

// handlePlaybackMsg reacts to a session update and forwards it to the
// watch view, re-arming the listener either way
func (m AppModel) handlePlaybackMsg(msg PlaybackMsg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.listenForPlaybackEvents()}

	switch msg.Type {
	case PlaybackEventReady:
		if descriptor := m.controller.Descriptor(); descriptor != nil {
			log.Info("Playback session ready", "title", descriptor.Title, "author", descriptor.Author)
		}

	case PlaybackEventError:
		log.Error("Playback error", "error", msg.Error)

	case PlaybackEventStatus:
		log.Debug("Playback status update", "status", msg.Status)
		if msg.Status == media.StatusStopped {
			if m.manualStop {
				m.manualStop = false
			} else if len(m.queue) > 0 {
				// Fold the watch update in before advancing
				model, cmd := m.watchModel.Update(msg)
				m.watchModel = model.(*WatchModel)
				cmds = append(cmds, cmd)

				next, advanceCmd := m.advanceQueue()
				return next, tea.Batch(append(cmds, advanceCmd)...)
			}
		}
	}

	model, cmd := m.watchModel.Update(msg)
	m.watchModel = model.(*WatchModel)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// startPlayback switches to the watch view and kicks off session
// initialization in the background
func (m AppModel) startPlayback(locator, title string) (tea.Model, tea.Cmd) {
	log.Info("Playback requested", "locator", locator, "title", title)

	m.activeView = ViewWatch
	m.activeModal = ModalNone
	m.watchModel.SetPendingTitle(title)
	m.watchModel.SetUpNext(m.queue)

	controller := m.controller
	opts := session.InitOptions{AspectRatio: m.config.UI.AspectRatio}
	return m, tea.Batch(
		m.watchModel.Init(),
		func() tea.Msg {
			controller.Initialize(context.Background(), locator, opts)
			return HandledMsg{Action: "playback:initialize"}
		},
	)
}

// runSearch queries for videos matching the query
func (m AppModel) runSearch(query string) tea.Cmd {
	search := m.search
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		results, err := search.Search(ctx, query)
		if err != nil {
			return SearchMsg{Type: SearchEventError, Query: query, Error: err}
		}
		return SearchMsg{Type: SearchEventResults, Query: query, Results: results}
	}
}

// loadPlaylist resolves a playlist locator into queue entries
func (m AppModel) loadPlaylist(locator string) tea.Cmd {
	resolver := m.resolver
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		title, entries, err := resolver.ResolvePlaylist(ctx, locator)
		if err != nil {
			return PlaylistMsg{Type: PlaylistEventError, Locator: locator, Error: err}
		}
		return PlaylistMsg{Type: PlaylistEventLoaded, Locator: locator, Title: title, Entries: entries}
	}
}

// advanceQueue plays the next queued entry, if any
func (m AppModel) advanceQueue() (tea.Model, tea.Cmd) {
	if len(m.queue) == 0 {
		log.Debug("Queue advance requested with empty queue")
		return m, nil
	}
	next := m.queue[0]
	m.queue = m.queue[1:]
	m.watchModel.SetUpNext(m.queue)
	return m.startPlayback(next.ID, next.Title)
}

// openQueueModal shows the pending queue as a selectable menu
func (m AppModel) openQueueModal() (tea.Model, tea.Cmd) {
	items := make([]MenuItem, 0, len(m.queue))
	for i, entry := range m.queue {
		index := i
		label := fmt.Sprintf("%d. %s", i+1, entry.Title)
		if entry.Author != "" {
			label += " (" + entry.Author + ")"
		}
		items = append(items, MenuItem{
			Text: label,
			Command: func() tea.Msg {
				return QueueJumpMsg{Index: index}
			},
		})
	}

	m.queueModel = NewMenuModel(m.theme, "Up Next", items)
	m.queueModel.Resize(m.width, m.height)
	m.activeModal = ModalQueue
	return m, nil
}

func (m AppModel) View() string {
	// If there is an active modal it takes precedence
	switch m.activeModal {
	case ModalHelp:
		return m.helpModel.View()
	case ModalLoading:
		if m.loadingModel != nil {
			return m.loadingModel.View()
		}
	case ModalQueue:
		if m.queueModel != nil {
			return m.queueModel.View()
		}
	}

	// Else display the actual view
	switch m.activeView {
	case ViewHome:
		return m.homeModel.View()
	case ViewSearch:
		return m.searchModel.View()
	case ViewWatch:
		return m.watchModel.View()
	default:
		return "Unknown view\nPress ctrl+c to quit."
	}
}

// updateHomeView delegates message processing to the home model
func (m AppModel) updateHomeView(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := m.homeModel.Update(msg)
	m.homeModel = model.(*HomeModel)

	return m, cmd
}

// updateSearchView delegates message processing to the search model
func (m AppModel) updateSearchView(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := m.searchModel.Update(msg)
	m.searchModel = model.(*SearchModel)

	return m, cmd
}

// updateWatchView delegates message processing to the watch model
func (m AppModel) updateWatchView(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := m.watchModel.Update(msg)
	m.watchModel = model.(*WatchModel)

	return m, cmd
}

func (m AppModel) updateHelpModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := m.helpModel.Update(msg)
	m.helpModel = model.(*HelpModel)

	return m, cmd
}

func (m AppModel) updateLoadingModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.loadingModel == nil {
		return m, nil
	}
	model, cmd := m.loadingModel.Update(msg)
	m.loadingModel = model.(*LoadingModel)

	return m, cmd
}

func (m AppModel) updateQueueModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.queueModel == nil {
		return m, nil
	}
	model, cmd := m.queueModel.Update(msg)
	m.queueModel = model.(*MenuModel)

	return m, cmd
}
