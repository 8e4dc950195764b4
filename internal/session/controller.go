package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yukirin-dev/douga/internal/log"
	"github.com/yukirin-dev/douga/internal/media"
	"github.com/yukirin-dev/douga/internal/player"
	"github.com/yukirin-dev/douga/internal/resolve"
)

// ErrSessionClosed is returned by operations on a disposed controller
var ErrSessionClosed = errors.New("playback session is closed")

// DefaultAspectRatio is the surface ratio used when Initialize does not
// specify one
const DefaultAspectRatio = 16.0 / 9.0

// InitOptions are per-call options for Initialize
type InitOptions struct {
	// AutoPlay overrides the controller's default autoplay behaviour
	// when set
	AutoPlay *bool
	// AspectRatio is the width:height ratio the presentation surface
	// should use for this media.  Zero means keep the default.
	AspectRatio float64
}

// Controller owns one playback session: it resolves locators to
// streams, drives the player engine and tracks the session status.
//
// Status is single-writer: every transition happens inside the
// controller's critical section, fed either by an Initialize call or by
// the engine event pump.  Observers are invoked outside the lock and
// must not block for long.
type Controller struct {
	resolver resolve.Resolver
	engine   player.Engine
	opts     options

	mu         sync.Mutex
	status     media.Status
	locator    string
	descriptor *media.Descriptor
	aspect     float64
	rate       float64
	lastErr    error
	generation uint64
	loadedCh   chan struct{}
	closed     bool
	readySent  bool

	statusObservers   []func(media.Status)
	progressObservers []func(position, duration time.Duration)
	readyObserver     func(*Controller)
	errorObserver     func(error)
}

// New creates a controller around a resolver and a started engine.  The
// controller takes ownership of both and releases them at Dispose.
func New(resolver resolve.Resolver, engine player.Engine, opts ...Option) *Controller {
	c := &Controller{
		resolver: resolver,
		engine:   engine,
		opts:     defaultOptions(),
		status:   media.StatusInitial,
		aspect:   DefaultAspectRatio,
	}
	for _, opt := range opts {
		opt(&c.opts)
	}
	c.rate = c.opts.rate

	go c.pump()
	return c
}

// OnStatus registers an observer for status transitions.  Observers are
// called in registration order; duplicate statuses are suppressed.
func (c *Controller) OnStatus(fn func(media.Status)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statusObservers = append(c.statusObservers, fn)
}

// OnProgress registers an observer for playback position updates.
// Updates are forwarded exactly as the engine reports them.
func (c *Controller) OnProgress(fn func(position, duration time.Duration)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.progressObservers = append(c.progressObservers, fn)
}

// OnReady registers the hook invoked once, after the first successful
// Initialize
func (c *Controller) OnReady(fn func(*Controller)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readyObserver = fn
}

// OnError registers the diagnostic hook.  It receives the underlying
// cause whenever the session transitions to the error status.
func (c *Controller) OnError(fn func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errorObserver = fn
}

// Initialize resolves the locator and loads its streams into the
// engine.  It never returns an error: failures surface as an error
// status plus the diagnostic hook.  Re-initialising with the locator
// already loaded is a no-op.  A newer Initialize supersedes an older
// in-flight one; the older call's results are discarded when it reaches
// its next checkpoint.
func (c *Controller) Initialize(ctx context.Context, locator string, opts InitOptions) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		log.Warn("Initialize called on closed session", "locator", locator)
		return
	}
	if locator != "" && c.locator == locator && c.engine.Loaded() {
		c.mu.Unlock()
		log.Debug("Media already loaded, skipping initialize", "locator", locator)
		return
	}
	c.generation++
	gen := c.generation
	c.lastErr = nil
	loadedCh := make(chan struct{})
	c.loadedCh = loadedCh
	c.mu.Unlock()

	c.setStatus(media.StatusLoading)

	resolveCtx, cancel := context.WithTimeout(ctx, c.opts.resolveTimeout)
	defer cancel()

	descriptor, manifest, err := c.resolver.Resolve(resolveCtx, locator)
	if err != nil {
		c.fail(gen, err)
		return
	}
	if c.stale(gen) {
		return
	}

	video, audio, err := media.SelectStreams(*manifest)
	if err != nil {
		c.fail(gen, err)
		return
	}
	if c.stale(gen) {
		return
	}
	log.Info("Streams selected",
		"locator", locator,
		"video_itag", video.Itag,
		"video_bitrate", video.Bitrate,
		"audio_itag", audio.Itag,
		"audio_bitrate", audio.Bitrate)

	// Unload whatever is playing before loading the new media
	if err := c.engine.Stop(); err != nil {
		c.fail(gen, err)
		return
	}
	// Load paused; playback starts only after the audio track is
	// attached and the engine has settled
	if err := c.engine.Open(video.URL, false); err != nil {
		c.fail(gen, err)
		return
	}
	if err := c.engine.SetAudioTrack(audio.URL); err != nil {
		c.fail(gen, err)
		return
	}
	if c.rateLocked() != 1.0 {
		if err := c.engine.SetRate(c.rateLocked()); err != nil {
			c.fail(gen, err)
			return
		}
	}

	// Give the engine time to settle.  A load acknowledgment from the
	// engine ends the wait early; the delay is only the upper bound.
	select {
	case <-loadedCh:
	case <-time.After(c.opts.settleDelay):
	case <-ctx.Done():
		c.fail(gen, ctx.Err())
		return
	}
	if c.stale(gen) {
		return
	}

	autoPlay := c.opts.autoPlay
	if opts.AutoPlay != nil {
		autoPlay = *opts.AutoPlay
	}
	if autoPlay {
		if err := c.engine.Play(); err != nil {
			c.fail(gen, err)
			return
		}
	}

	c.mu.Lock()
	if c.closed || gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.locator = locator
	c.descriptor = descriptor
	if opts.AspectRatio > 0 {
		c.aspect = opts.AspectRatio
	}
	fireReady := !c.readySent && c.readyObserver != nil
	c.readySent = true
	readyFn := c.readyObserver
	c.mu.Unlock()

	if autoPlay {
		c.setStatus(media.StatusPlaying)
	} else {
		c.setStatus(media.StatusPaused)
	}

	if fireReady {
		readyFn(c)
	}
}

// Play resumes playback of the loaded media
func (c *Controller) Play() error {
	if err := c.ensureOpen(); err != nil {
		return err
	}
	return c.engine.Play()
}

// Pause halts playback without unloading the media
func (c *Controller) Pause() error {
	if err := c.ensureOpen(); err != nil {
		return err
	}
	return c.engine.Pause()
}

// Stop ends playback and unloads the media
func (c *Controller) Stop() error {
	if err := c.ensureOpen(); err != nil {
		return err
	}
	return c.engine.Stop()
}

// SetRate changes the playback speed.  Rates are clamped to the range
// the engine supports.
func (c *Controller) SetRate(rate float64) error {
	if err := c.ensureOpen(); err != nil {
		return err
	}
	rate = clampRate(rate)
	if err := c.engine.SetRate(rate); err != nil {
		return err
	}
	c.mu.Lock()
	c.rate = rate
	c.mu.Unlock()
	return nil
}

// SetFullscreen toggles the engine window's fullscreen state
func (c *Controller) SetFullscreen(on bool) error {
	if err := c.ensureOpen(); err != nil {
		return err
	}
	return c.engine.SetFullscreen(on)
}

// Status reports the current session status
func (c *Controller) Status() media.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Locator reports the locator of the loaded media, empty before the
// first successful Initialize
func (c *Controller) Locator() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locator
}

// Descriptor reports the metadata of the loaded media, nil before the
// first successful Initialize
func (c *Controller) Descriptor() *media.Descriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.descriptor
}

// AspectRatio reports the surface ratio for the loaded media
func (c *Controller) AspectRatio() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

// Rate reports the playback rate
func (c *Controller) Rate() float64 {
	return c.rateLocked()
}

// Err reports the cause of the most recent error status, nil otherwise
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Position reports the engine's last observed playback position.  The
// engine is the source of truth; the controller never caches this.
func (c *Controller) Position() time.Duration {
	return c.engine.Position()
}

// Duration reports the engine's last observed media duration
func (c *Controller) Duration() time.Duration {
	return c.engine.Duration()
}

// Dispose releases the engine and the resolver, exactly once.  All
// later operations, including a second Dispose, return ErrSessionClosed.
// Observers registered on the session stop firing once Dispose has
// marked it closed.
func (c *Controller) Dispose() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrSessionClosed
	}
	c.closed = true
	c.mu.Unlock()

	log.Debug("Disposing playback session")
	return errors.Join(c.engine.Close(), c.resolver.Close())
}

// pump is the single consumer of the engine event stream.  It runs from
// construction until the engine shuts down and keeps draining after
// Dispose so the engine can never block on a full channel.
func (c *Controller) pump() {
	for event := range c.engine.Events() {
		c.handleEngineEvent(event)
	}
	log.Debug("Engine event stream ended")
}

func (c *Controller) handleEngineEvent(event player.Event) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return
	}

	switch event.Kind {
	case player.EventLoaded:
		c.mu.Lock()
		if c.loadedCh != nil {
			close(c.loadedCh)
			c.loadedCh = nil
		}
		c.mu.Unlock()

	case player.EventPlaying:
		c.setStatus(media.StatusPlaying)

	case player.EventPaused:
		c.setStatus(media.StatusPaused)

	case player.EventCompleted:
		// The stop issued while re-initialising also ends the old file;
		// that must not surface while the new media is loading
		if c.Status() == media.StatusLoading {
			return
		}
		c.setStatus(media.StatusStopped)

	case player.EventPosition:
		c.mu.Lock()
		observers := append([]func(time.Duration, time.Duration)(nil), c.progressObservers...)
		c.mu.Unlock()
		for _, fn := range observers {
			fn(event.Position, event.Duration)
		}

	case player.EventError:
		c.mu.Lock()
		c.lastErr = event.Err
		errFn := c.errorObserver
		c.mu.Unlock()
		if errFn != nil {
			errFn(event.Err)
		}
		c.setStatus(media.StatusError)
	}
}

// setStatus applies a status transition, suppressing duplicates, and
// notifies observers outside the lock
func (c *Controller) setStatus(status media.Status) {
	c.mu.Lock()
	if c.closed || c.status == status {
		c.mu.Unlock()
		return
	}
	log.Debug("Session status changed", "from", c.status, "to", status)
	c.status = status
	observers := append([]func(media.Status)(nil), c.statusObservers...)
	c.mu.Unlock()

	for _, fn := range observers {
		fn(status)
	}
}

// fail records an initialization failure for the given generation.  A
// superseded generation's failure is discarded silently.
func (c *Controller) fail(gen uint64, err error) {
	c.mu.Lock()
	if c.closed || gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.lastErr = err
	errFn := c.errorObserver
	c.mu.Unlock()

	log.Warn("Playback initialization failed", "error", err)
	if errFn != nil {
		errFn(err)
	}
	c.setStatus(media.StatusError)
}

// stale reports whether the generation has been superseded or the
// session closed
func (c *Controller) stale(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed || gen != c.generation
}

func (c *Controller) ensureOpen() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrSessionClosed
	}
	return nil
}

func (c *Controller) rateLocked() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rate
}

// clampRate keeps the rate inside the range mpv accepts
func clampRate(rate float64) float64 {
	switch {
	case rate < 0.25:
		return 0.25
	case rate > 4.0:
		return 4.0
	default:
		return rate
	}
}
