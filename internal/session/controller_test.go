package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yukirin-dev/douga/internal/media"
	"github.com/yukirin-dev/douga/internal/player"
)

type openCall struct {
	url  string
	play bool
}

// fakeEngine records every command and lets tests script the event
// stream the way a real player would produce it
type fakeEngine struct {
	mu         sync.Mutex
	events     chan player.Event
	closeOnce  sync.Once
	openCalls  []openCall
	audioCalls []string
	playCalls  int
	pauseCalls int
	stopCalls  int
	closeCalls int
	rates      []float64
	fullscreen []bool
	loaded     bool
	position   time.Duration
	duration   time.Duration

	openErr error
	// openEmitsLoaded makes Open acknowledge the load immediately
	openEmitsLoaded bool
	// stopEmitsCompleted makes Stop end the current file like mpv does
	stopEmitsCompleted bool
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{events: make(chan player.Event, 64)}
}

func (e *fakeEngine) Start(ctx context.Context) error { return nil }

func (e *fakeEngine) Open(url string, play bool) error {
	e.mu.Lock()
	e.openCalls = append(e.openCalls, openCall{url: url, play: play})
	err := e.openErr
	if err == nil {
		e.loaded = true
	}
	emitLoaded := e.openEmitsLoaded && err == nil
	e.mu.Unlock()

	if emitLoaded {
		e.events <- player.Event{Kind: player.EventLoaded}
	}
	return err
}

func (e *fakeEngine) SetAudioTrack(url string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.audioCalls = append(e.audioCalls, url)
	return nil
}

func (e *fakeEngine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playCalls++
	return nil
}

func (e *fakeEngine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pauseCalls++
	return nil
}

func (e *fakeEngine) Stop() error {
	e.mu.Lock()
	e.stopCalls++
	wasLoaded := e.loaded
	e.loaded = false
	emit := e.stopEmitsCompleted && wasLoaded
	e.mu.Unlock()

	if emit {
		e.events <- player.Event{Kind: player.EventCompleted}
	}
	return nil
}

func (e *fakeEngine) SetRate(rate float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rates = append(e.rates, rate)
	return nil
}

func (e *fakeEngine) SetFullscreen(on bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fullscreen = append(e.fullscreen, on)
	return nil
}

func (e *fakeEngine) Position() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

func (e *fakeEngine) Duration() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.duration
}

func (e *fakeEngine) Loaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded
}

func (e *fakeEngine) Events() <-chan player.Event { return e.events }

func (e *fakeEngine) Close() error {
	e.mu.Lock()
	e.closeCalls++
	e.mu.Unlock()
	e.closeOnce.Do(func() { close(e.events) })
	return nil
}

func (e *fakeEngine) snapshot() (opens []openCall, audio []string, plays, stops int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]openCall(nil), e.openCalls...), append([]string(nil), e.audioCalls...), e.playCalls, e.stopCalls
}

// fakeResolver serves a fixed descriptor/manifest and counts calls
type fakeResolver struct {
	mu           sync.Mutex
	resolveCalls int
	closeCalls   int
	descriptor   *media.Descriptor
	manifest     *media.Manifest
	err          error
	// blockFirst, when set, stalls the first Resolve call until the
	// channel is closed
	blockFirst chan struct{}
}

func (r *fakeResolver) Resolve(ctx context.Context, locator string) (*media.Descriptor, *media.Manifest, error) {
	r.mu.Lock()
	r.resolveCalls++
	calls := r.resolveCalls
	block := r.blockFirst
	r.mu.Unlock()

	if calls == 1 && block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
	}

	if r.err != nil {
		return nil, nil, r.err
	}
	return r.descriptor, r.manifest, nil
}

func (r *fakeResolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeCalls++
	return nil
}

func (r *fakeResolver) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolveCalls
}

// statusRecorder collects status notifications in order
type statusRecorder struct {
	mu       sync.Mutex
	statuses []media.Status
}

func (s *statusRecorder) record(status media.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, status)
}

func (s *statusRecorder) all() []media.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]media.Status(nil), s.statuses...)
}

func testManifest() *media.Manifest {
	return &media.Manifest{
		VideoOnly: []media.Stream{
			{URL: "https://cdn/video-360", Bitrate: 500},
			{URL: "https://cdn/video-720", Bitrate: 1200},
			{URL: "https://cdn/video-480", Bitrate: 800},
		},
		AudioOnly: []media.Stream{
			{URL: "https://cdn/audio-96", Bitrate: 128},
			{URL: "https://cdn/audio-160", Bitrate: 256},
		},
	}
}

func testResolver() *fakeResolver {
	return &fakeResolver{
		descriptor: &media.Descriptor{ID: "video123", Title: "A video", Author: "Someone", Duration: 3 * time.Minute},
		manifest:   testManifest(),
	}
}

func newTestController(t *testing.T, r *fakeResolver, e *fakeEngine, opts ...Option) (*Controller, *statusRecorder) {
	t.Helper()

	opts = append([]Option{WithSettleDelay(5 * time.Millisecond)}, opts...)
	c := New(r, e, opts...)
	recorder := &statusRecorder{}
	c.OnStatus(recorder.record)

	t.Cleanup(func() {
		_ = c.Dispose()
	})
	return c, recorder
}

func boolPtr(b bool) *bool { return &b }

func TestInitializeWithAutoPlay(t *testing.T) {
	resolver := testResolver()
	engine := newFakeEngine()
	c, recorder := newTestController(t, resolver, engine)

	c.Initialize(context.Background(), "video123", InitOptions{})

	opens, audio, plays, _ := engine.snapshot()
	assert.Equal(t, 1, resolver.calls())
	assert.Equal(t, []openCall{{url: "https://cdn/video-720", play: false}}, opens)
	assert.Equal(t, []string{"https://cdn/audio-160"}, audio)
	assert.Equal(t, 1, plays)
	assert.Equal(t, []media.Status{media.StatusLoading, media.StatusPlaying}, recorder.all())
	assert.Equal(t, media.StatusPlaying, c.Status())
	assert.Equal(t, "video123", c.Locator())
	assert.Equal(t, "A video", c.Descriptor().Title)
	assert.NoError(t, c.Err())
}

func TestInitializeWithoutAutoPlay(t *testing.T) {
	resolver := testResolver()
	engine := newFakeEngine()
	c, recorder := newTestController(t, resolver, engine)

	c.Initialize(context.Background(), "video123", InitOptions{AutoPlay: boolPtr(false)})

	_, _, plays, _ := engine.snapshot()
	assert.Equal(t, 0, plays)
	assert.Equal(t, []media.Status{media.StatusLoading, media.StatusPaused}, recorder.all())
	assert.Equal(t, media.StatusPaused, c.Status())
}

func TestInitializeIdempotent(t *testing.T) {
	resolver := testResolver()
	engine := newFakeEngine()
	c, recorder := newTestController(t, resolver, engine)

	c.Initialize(context.Background(), "video123", InitOptions{})
	c.Initialize(context.Background(), "video123", InitOptions{})

	opens, _, plays, _ := engine.snapshot()
	assert.Equal(t, 1, resolver.calls(), "second initialize must not resolve again")
	assert.Len(t, opens, 1, "second initialize must not reload")
	assert.Equal(t, 1, plays)
	assert.Equal(t, []media.Status{media.StatusLoading, media.StatusPlaying}, recorder.all())
}

func TestInitializeAgainAfterDifferentLocator(t *testing.T) {
	resolver := testResolver()
	engine := newFakeEngine()
	c, _ := newTestController(t, resolver, engine)

	c.Initialize(context.Background(), "video123", InitOptions{})
	c.Initialize(context.Background(), "video456", InitOptions{})

	opens, _, _, stops := engine.snapshot()
	assert.Equal(t, 2, resolver.calls())
	assert.Len(t, opens, 2)
	assert.Equal(t, 2, stops, "previous media must be stopped before each load")
	assert.Equal(t, "video456", c.Locator())
}

func TestInitializeResolveFailure(t *testing.T) {
	cause := errors.New("video is unavailable")
	resolver := &fakeResolver{err: cause}
	engine := newFakeEngine()
	c, recorder := newTestController(t, resolver, engine)

	var hookErr error
	c.OnError(func(err error) { hookErr = err })

	c.Initialize(context.Background(), "video123", InitOptions{})

	opens, _, _, _ := engine.snapshot()
	assert.Empty(t, opens, "engine must not be touched when resolution fails")
	assert.Equal(t, []media.Status{media.StatusLoading, media.StatusError}, recorder.all())
	assert.ErrorIs(t, hookErr, cause)
	assert.ErrorIs(t, c.Err(), cause)
	assert.Empty(t, c.Locator(), "failed initialize must not record the locator")
}

func TestInitializeNoUsableStreams(t *testing.T) {
	resolver := testResolver()
	resolver.manifest = &media.Manifest{
		AudioOnly: []media.Stream{{URL: "https://cdn/audio", Bitrate: 128}},
	}
	engine := newFakeEngine()
	c, recorder := newTestController(t, resolver, engine)

	var hookErr error
	c.OnError(func(err error) { hookErr = err })

	c.Initialize(context.Background(), "video123", InitOptions{})

	opens, _, _, _ := engine.snapshot()
	assert.Empty(t, opens)
	assert.ErrorIs(t, hookErr, media.ErrNoVideoStream)
	assert.Equal(t, media.StatusError, c.Status())
	assert.Equal(t, []media.Status{media.StatusLoading, media.StatusError}, recorder.all())
}

func TestStatusFollowsEngineEvents(t *testing.T) {
	resolver := testResolver()
	engine := newFakeEngine()
	c, recorder := newTestController(t, resolver, engine)

	c.Initialize(context.Background(), "video123", InitOptions{})

	engine.events <- player.Event{Kind: player.EventPaused}
	assert.Eventually(t, func() bool { return c.Status() == media.StatusPaused }, 2*time.Second, 5*time.Millisecond)

	engine.events <- player.Event{Kind: player.EventPlaying}
	assert.Eventually(t, func() bool { return c.Status() == media.StatusPlaying }, 2*time.Second, 5*time.Millisecond)

	engine.events <- player.Event{Kind: player.EventCompleted}
	assert.Eventually(t, func() bool { return c.Status() == media.StatusStopped }, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, []media.Status{
		media.StatusLoading,
		media.StatusPlaying,
		media.StatusPaused,
		media.StatusPlaying,
		media.StatusStopped,
	}, recorder.all())
}

func TestDuplicateStatusSuppressed(t *testing.T) {
	resolver := testResolver()
	engine := newFakeEngine()
	c, recorder := newTestController(t, resolver, engine)

	c.Initialize(context.Background(), "video123", InitOptions{})

	// The engine already reported playing through the initialize path;
	// repeating it must not notify again
	engine.events <- player.Event{Kind: player.EventPlaying}
	engine.events <- player.Event{Kind: player.EventPlaying}
	engine.events <- player.Event{Kind: player.EventPaused}
	assert.Eventually(t, func() bool { return c.Status() == media.StatusPaused }, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, []media.Status{
		media.StatusLoading,
		media.StatusPlaying,
		media.StatusPaused,
	}, recorder.all())
}

func TestProgressForwardedVerbatim(t *testing.T) {
	resolver := testResolver()
	engine := newFakeEngine()
	c, _ := newTestController(t, resolver, engine)

	var mu sync.Mutex
	var positions []time.Duration
	var durations []time.Duration
	c.OnProgress(func(position, duration time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		positions = append(positions, position)
		durations = append(durations, duration)
	})

	c.Initialize(context.Background(), "video123", InitOptions{})

	engine.events <- player.Event{Kind: player.EventPosition, Position: 10 * time.Second, Duration: 3 * time.Minute}
	engine.events <- player.Event{Kind: player.EventPosition, Position: 11 * time.Second, Duration: 3 * time.Minute}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(positions) == 2
	}, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []time.Duration{10 * time.Second, 11 * time.Second}, positions)
	assert.Equal(t, []time.Duration{3 * time.Minute, 3 * time.Minute}, durations)
}

func TestReadyFiresOnce(t *testing.T) {
	resolver := testResolver()
	engine := newFakeEngine()
	c, _ := newTestController(t, resolver, engine)

	readyCount := 0
	var readyController *Controller
	c.OnReady(func(rc *Controller) {
		readyCount++
		readyController = rc
	})

	c.Initialize(context.Background(), "video123", InitOptions{})
	c.Initialize(context.Background(), "video456", InitOptions{})

	assert.Equal(t, 1, readyCount)
	assert.Same(t, c, readyController)
}

func TestEngineErrorBecomesErrorStatus(t *testing.T) {
	resolver := testResolver()
	engine := newFakeEngine()
	c, _ := newTestController(t, resolver, engine)

	var hookErr error
	var mu sync.Mutex
	c.OnError(func(err error) {
		mu.Lock()
		defer mu.Unlock()
		hookErr = err
	})

	c.Initialize(context.Background(), "video123", InitOptions{})

	cause := errors.New("decode failure")
	engine.events <- player.Event{Kind: player.EventError, Err: cause}

	assert.Eventually(t, func() bool { return c.Status() == media.StatusError }, 2*time.Second, 5*time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.ErrorIs(t, hookErr, cause)
	assert.ErrorIs(t, c.Err(), cause)
}

func TestPassthroughsDoNotChangeStatus(t *testing.T) {
	resolver := testResolver()
	engine := newFakeEngine()
	c, _ := newTestController(t, resolver, engine)

	c.Initialize(context.Background(), "video123", InitOptions{AutoPlay: boolPtr(false)})
	assert.Equal(t, media.StatusPaused, c.Status())

	// Command calls alone must not move the status; only engine events do
	assert.NoError(t, c.Play())
	assert.Equal(t, media.StatusPaused, c.Status())

	engine.events <- player.Event{Kind: player.EventPlaying}
	assert.Eventually(t, func() bool { return c.Status() == media.StatusPlaying }, 2*time.Second, 5*time.Millisecond)

	assert.NoError(t, c.Pause())
	assert.NoError(t, c.Stop())

	_, _, plays, stops := engine.snapshot()
	assert.Equal(t, 1, plays)
	// One stop from initialize housekeeping plus the explicit one
	assert.Equal(t, 2, stops)
}

func TestSetRateClamping(t *testing.T) {
	resolver := testResolver()
	engine := newFakeEngine()
	c, _ := newTestController(t, resolver, engine)

	c.Initialize(context.Background(), "video123", InitOptions{})

	assert.NoError(t, c.SetRate(10))
	assert.Equal(t, 4.0, c.Rate())
	assert.NoError(t, c.SetRate(0.01))
	assert.Equal(t, 0.25, c.Rate())
	assert.NoError(t, c.SetRate(1.5))
	assert.Equal(t, 1.5, c.Rate())

	engine.mu.Lock()
	defer engine.mu.Unlock()
	assert.Equal(t, []float64{4.0, 0.25, 1.5}, engine.rates)
}

func TestInitialRateApplied(t *testing.T) {
	resolver := testResolver()
	engine := newFakeEngine()
	c, _ := newTestController(t, resolver, engine, WithRate(1.5))

	c.Initialize(context.Background(), "video123", InitOptions{})

	engine.mu.Lock()
	defer engine.mu.Unlock()
	assert.Equal(t, []float64{1.5}, engine.rates)
}

func TestAspectRatioOption(t *testing.T) {
	resolver := testResolver()
	engine := newFakeEngine()
	c, _ := newTestController(t, resolver, engine)

	assert.InDelta(t, DefaultAspectRatio, c.AspectRatio(), 0.001)

	c.Initialize(context.Background(), "video123", InitOptions{AspectRatio: 2.35})
	assert.InDelta(t, 2.35, c.AspectRatio(), 0.001)
}

func TestSettleDelayShortCircuitOnLoadAck(t *testing.T) {
	resolver := testResolver()
	engine := newFakeEngine()
	engine.openEmitsLoaded = true
	// A settle delay far beyond the test timeout proves the load
	// acknowledgment ends the wait, not the timer
	c, recorder := newTestController(t, resolver, engine, WithSettleDelay(30*time.Second))

	start := time.Now()
	c.Initialize(context.Background(), "video123", InitOptions{})

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, []media.Status{media.StatusLoading, media.StatusPlaying}, recorder.all())
}

func TestCompletedSuppressedWhileLoading(t *testing.T) {
	resolver := testResolver()
	engine := newFakeEngine()
	engine.stopEmitsCompleted = true
	c, recorder := newTestController(t, resolver, engine, WithSettleDelay(200*time.Millisecond))

	c.Initialize(context.Background(), "video123", InitOptions{})
	// Re-initialising stops the old file; the resulting completed event
	// must not surface as a stopped status mid-load
	c.Initialize(context.Background(), "video456", InitOptions{})

	assert.NotContains(t, recorder.all(), media.StatusStopped)
	assert.Equal(t, media.StatusPlaying, c.Status())
}

func TestNewerInitializeSupersedesOlder(t *testing.T) {
	resolver := testResolver()
	resolver.blockFirst = make(chan struct{})
	engine := newFakeEngine()
	c, recorder := newTestController(t, resolver, engine)

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Initialize(context.Background(), "video123", InitOptions{})
	}()

	// Wait until the first call is stalled inside Resolve
	assert.Eventually(t, func() bool { return resolver.calls() == 1 }, 2*time.Second, 5*time.Millisecond)

	c.Initialize(context.Background(), "video456", InitOptions{})
	assert.Equal(t, "video456", c.Locator())

	// Release the stalled call; its results must be discarded
	close(resolver.blockFirst)
	<-done

	opens, _, plays, _ := engine.snapshot()
	assert.Len(t, opens, 1, "superseded initialize must not load media")
	assert.Equal(t, 1, plays)
	assert.Equal(t, "video456", c.Locator())
	assert.Equal(t, []media.Status{media.StatusLoading, media.StatusPlaying}, recorder.all())
}

func TestDisposeReleasesExactlyOnce(t *testing.T) {
	resolver := testResolver()
	engine := newFakeEngine()
	c, _ := newTestController(t, resolver, engine)

	c.Initialize(context.Background(), "video123", InitOptions{})

	assert.NoError(t, c.Dispose())
	assert.Equal(t, 1, engine.closeCalls)
	assert.Equal(t, 1, resolver.closeCalls)

	// A second dispose must not release anything again
	assert.ErrorIs(t, c.Dispose(), ErrSessionClosed)
	assert.Equal(t, 1, engine.closeCalls)
	assert.Equal(t, 1, resolver.closeCalls)
}

func TestOperationsAfterDispose(t *testing.T) {
	resolver := testResolver()
	engine := newFakeEngine()
	c, _ := newTestController(t, resolver, engine)

	c.Initialize(context.Background(), "video123", InitOptions{})
	assert.NoError(t, c.Dispose())

	assert.ErrorIs(t, c.Play(), ErrSessionClosed)
	assert.ErrorIs(t, c.Pause(), ErrSessionClosed)
	assert.ErrorIs(t, c.Stop(), ErrSessionClosed)
	assert.ErrorIs(t, c.SetRate(1.5), ErrSessionClosed)
	assert.ErrorIs(t, c.SetFullscreen(true), ErrSessionClosed)

	// Initialize after dispose must not reach the resolver
	before := resolver.calls()
	c.Initialize(context.Background(), "video456", InitOptions{})
	assert.Equal(t, before, resolver.calls())
}

func TestObserversSilentAfterDispose(t *testing.T) {
	resolver := testResolver()
	// Keep the event channel open across Dispose so late events can
	// still be pumped
	engine := newFakeEngine()
	engine.closeOnce.Do(func() {})
	c, recorder := newTestController(t, resolver, engine)

	c.Initialize(context.Background(), "video123", InitOptions{})
	assert.NoError(t, c.Dispose())

	seen := len(recorder.all())
	engine.events <- player.Event{Kind: player.EventPaused}
	engine.events <- player.Event{Kind: player.EventCompleted}

	// Give the pump a moment to drain the events
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, seen, len(recorder.all()))
	close(engine.events)
}
