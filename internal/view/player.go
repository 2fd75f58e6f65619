// Package view composes the playback store and the panel controller into the
// floating player the front-end renders.
package view

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"

	"ministry-site/internal/frame"
	"ministry-site/internal/media"
	"ministry-site/internal/panel"
	"ministry-site/internal/playback"
)

// Events is the source of media element events for the current output.
type Events interface {
	Listen(fn func(media.Event)) (release func())
}

// Config holds the player's tunables.
type Config struct {
	Limits          panel.Limits
	Viewport        panel.Viewport
	EndedCloseDelay time.Duration
	ErrorCloseDelay time.Duration
	FrameInterval   time.Duration
	Logger          *slog.Logger
}

// DefaultConfig returns the production defaults for a 1280x800 window.
func DefaultConfig() Config {
	return Config{
		Limits:          panel.DefaultLimits(),
		Viewport:        panel.Viewport{Width: 1280, Height: 800},
		EndedCloseDelay: time.Second,
		ErrorCloseDelay: 2 * time.Second,
		FrameInterval:   frame.DefaultInterval,
	}
}

// Player is the floating player. Store mutators are never called while p.mu is
// held: the store notifies subscribers synchronously and this player is one.
type Player struct {
	cfg   Config
	store *playback.Store
	out   playback.Output
	log   *slog.Logger

	mu       sync.Mutex
	state    playback.State
	loaded   string
	duration float64
	elapsed  float64
	ending   bool
	volume   float64
	muted    bool
	viewport panel.Viewport

	ctrl   *panel.Controller
	window *panel.InputBus

	gen   uint64
	timer *time.Timer
	seq   uint64

	subs    map[int]func(Model)
	nextSub int
	closed  bool

	unsubscribe func()
	unlisten    func()
}

// New attaches a player to store. Media events for store.Output() arrive through events.
func New(store *playback.Store, events Events, cfg Config) *Player {
	def := DefaultConfig()
	if cfg.Limits == (panel.Limits{}) {
		cfg.Limits = def.Limits
	}
	if cfg.Viewport.Width <= 0 || cfg.Viewport.Height <= 0 {
		cfg.Viewport = def.Viewport
	}
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = def.FrameInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	p := &Player{
		cfg:      cfg,
		store:    store,
		out:      store.Output(),
		log:      cfg.Logger.With("component", "player"),
		volume:   1,
		viewport: cfg.Viewport,
		window:   panel.NewInputBus(),
		subs:     make(map[int]func(Model)),
	}
	p.unlisten = events.Listen(p.HandleMedia)
	p.unsubscribe = store.Subscribe(func(playback.State) { p.sync() })
	p.sync()
	return p
}

// Store returns the playback store the player renders.
func (p *Player) Store() *playback.Store {
	return p.store
}

// sync applies the store's current snapshot, not the one that was published,
// so a late notification cannot roll the view back.
func (p *Player) sync() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	st := p.store.Snapshot()
	p.state = st

	switch {
	case st.Track == nil:
		p.unloadLocked()
	case st.Track.ID != p.loaded:
		p.loadLocked(*st.Track)
	case st.Playing && p.timer != nil:
		// resumed inside the grace period
		p.cancelCloseLocked()
	}

	if st.Visible && p.ctrl == nil {
		p.ctrl = panel.NewController(p.cfg.Limits, p.viewport, p.window)
	} else if !st.Visible && p.ctrl != nil {
		p.ctrl.Teardown()
		p.ctrl = nil
	}
	p.publishLocked()
}

func (p *Player) loadLocked(t playback.Track) {
	p.cancelCloseLocked()
	p.loaded = t.ID
	p.duration = 0
	p.elapsed = 0
	p.ending = false
	p.out.SetSource(t.URL)
	p.out.SetVolume(effectiveVolume(p.volume, p.muted))
	p.log.Info("track loaded", "id", t.ID, "title", t.Title)
}

func (p *Player) unloadLocked() {
	p.cancelCloseLocked()
	p.loaded = ""
	p.duration = 0
	p.elapsed = 0
	p.ending = false
}

// HandleMedia reacts to an event from the media element.
func (p *Player) HandleMedia(ev media.Event) {
	p.mu.Lock()
	if p.closed || p.loaded == "" || (ev.Source != "" && ev.Source != p.out.Source()) {
		// reported for a source this player no longer plays
		p.mu.Unlock()
		return
	}

	switch ev.Type {
	case media.EventMetadata:
		p.duration = ev.Duration
		if p.state.Playing {
			p.out.Play()
		}
		p.publishLocked()

	case media.EventProgress:
		duration := p.duration
		if duration <= 0 {
			duration = p.out.Duration()
		}
		p.ending = endingSoon(ev.Time, duration)
		p.elapsed = ev.Time
		p.publishLocked()

	case media.EventEnded:
		p.elapsed = 0
		p.ending = false
		p.out.SetCurrentTime(0)
		p.scheduleCloseLocked(p.cfg.EndedCloseDelay)
		p.publishLocked()
		p.store.Pause()

	case media.EventError:
		p.log.Warn("media error", "id", p.loaded, "source", p.out.Source(), "error", ev.Message)
		p.scheduleCloseLocked(p.cfg.ErrorCloseDelay)
		p.mu.Unlock()

	default:
		p.mu.Unlock()
	}
}

// scheduleCloseLocked closes the panel after d unless the track changes or
// playback resumes first.
func (p *Player) scheduleCloseLocked(d time.Duration) {
	p.cancelCloseLocked()
	gen := p.gen
	p.timer = time.AfterFunc(d, func() {
		p.mu.Lock()
		if p.closed || p.gen != gen {
			p.mu.Unlock()
			return
		}
		p.timer = nil
		p.mu.Unlock()
		p.store.Close()
	})
}

func (p *Player) cancelCloseLocked() {
	p.gen++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// Seek moves playback to seconds, clamped to the track.
func (p *Player) Seek(seconds float64) {
	p.mu.Lock()
	if p.loaded == "" {
		p.mu.Unlock()
		return
	}
	seconds = max(seconds, 0)
	if p.duration > 0 {
		seconds = min(seconds, p.duration)
	}
	p.out.SetCurrentTime(seconds)
	p.ending = endingSoon(seconds, p.duration)
	p.elapsed = seconds
	p.publishLocked()
}

// SetVolume sets the volume in [0, 1]. A muted player stays silent.
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	p.volume = min(max(v, 0), 1)
	p.out.SetVolume(effectiveVolume(p.volume, p.muted))
	p.publishLocked()
}

// SetMuted mutes or unmutes without losing the volume setting.
func (p *Player) SetMuted(muted bool) {
	p.mu.Lock()
	p.muted = muted
	p.out.SetVolume(effectiveVolume(p.volume, p.muted))
	p.publishLocked()
}

// ToggleMute flips the mute state.
func (p *Player) ToggleMute() {
	p.mu.Lock()
	muted := !p.muted
	p.mu.Unlock()
	p.SetMuted(muted)
}

// SetMinimized collapses the panel to its header row or restores it.
func (p *Player) SetMinimized(minimized bool) {
	p.mu.Lock()
	if p.ctrl == nil {
		p.mu.Unlock()
		return
	}
	p.ctrl.SetMinimized(minimized)
	p.publishLocked()
}

// ToggleMinimized flips between minimized and expanded.
func (p *Player) ToggleMinimized() {
	p.mu.Lock()
	if p.ctrl == nil {
		p.mu.Unlock()
		return
	}
	p.ctrl.SetMinimized(!p.ctrl.Geometry().Minimized)
	p.publishLocked()
}

// Pointer feeds a pointer event to the panel. Presses go to target; every other
// phase is a window-level event. It reports whether the event was consumed.
func (p *Player) Pointer(target panel.Target, ev panel.PointerEvent) bool {
	p.mu.Lock()
	if p.ctrl == nil {
		p.mu.Unlock()
		return false
	}

	before := p.ctrl.Geometry()
	mode := p.ctrl.Mode()
	var handled bool
	if ev.Kind == panel.PointerDown {
		handled = p.ctrl.PointerDown(target, ev)
	} else {
		handled = p.window.Dispatch(ev) > 0
	}

	if p.ctrl.Mode() != mode || p.ctrl.Geometry() != before {
		p.publishLocked()
	} else {
		p.mu.Unlock()
	}
	return handled
}

// SetViewport re-clamps the panel after the browser window resized.
func (p *Player) SetViewport(vp panel.Viewport) {
	p.mu.Lock()
	p.viewport = vp
	if p.ctrl != nil {
		p.ctrl.SetViewport(vp)
	}
	p.publishLocked()
}

// Frame applies the geometry update batched during the current frame.
func (p *Player) Frame() bool {
	p.mu.Lock()
	if p.ctrl == nil || !p.ctrl.Flush() {
		p.mu.Unlock()
		return false
	}
	p.publishLocked()
	return true
}

// Run flushes batched geometry once per frame until ctx is cancelled.
func (p *Player) Run(ctx context.Context) {
	frame.Run(ctx, p.cfg.FrameInterval, func() { p.Frame() })
}

// Download returns the file save descriptor for the current track.
func (p *Player) Download() (Download, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.Track == nil {
		return Download{}, false
	}
	return downloadFor(*p.state.Track), true
}

// Render returns the current model.
func (p *Player) Render() Model {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.modelLocked()
}

// Listening returns the number of window listeners the panel holds.
func (p *Player) Listening() int {
	return p.window.Len()
}

// Subscribe registers fn for every model change. Callbacks run outside the lock.
func (p *Player) Subscribe(fn func(Model)) (cancel func()) {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, id)
			p.mu.Unlock()
		})
	}
}

// Close detaches the player from the store and the media element and releases
// every listener it holds.
func (p *Player) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.cancelCloseLocked()
	if p.ctrl != nil {
		p.ctrl.Teardown()
		p.ctrl = nil
	}
	p.subs = make(map[int]func(Model))
	p.mu.Unlock()

	p.unsubscribe()
	p.unlisten()
}

func (p *Player) modelLocked() Model {
	m := Model{
		Seq:             p.seq,
		Visible:         p.state.Visible,
		Playing:         p.state.Playing,
		Mode:            panel.Idle.String(),
		Elapsed:         p.elapsed,
		Duration:        p.duration,
		ElapsedLabel:    FormatTime(p.elapsed),
		DurationLabel:   FormatTime(p.duration),
		EndingSoon:      p.ending,
		Volume:          p.volume,
		Muted:           p.muted,
		EffectiveVolume: effectiveVolume(p.volume, p.muted),
	}
	if p.state.Track != nil {
		t := *p.state.Track
		m.Track = &t
	}
	if p.ctrl != nil {
		g := p.ctrl.Geometry()
		m.Geometry = &g
		m.Mode = p.ctrl.Mode().String()
		m.Direction = p.ctrl.Direction().String()
		m.Controls = panel.Visibility(g.Size, g.Minimized)
	}
	return m
}

// publishLocked releases p.mu before notifying subscribers.
func (p *Player) publishLocked() {
	p.seq++
	m := p.modelLocked()
	ids := lo.Keys(p.subs)
	slices.Sort(ids)
	fns := lo.Map(ids, func(id int, _ int) func(Model) { return p.subs[id] })
	p.mu.Unlock()

	for _, fn := range fns {
		fn(m)
	}
}
