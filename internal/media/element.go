// Package media provides the headless audio element the player store owns.
// The browser plays the actual audio and reports its media events back; the
// element mirrors that state on the server.
package media

import (
	"slices"
	"sync"

	"github.com/samber/lo"
)

// EventType identifies a media element event.
type EventType string

const (
	EventMetadata EventType = "metadata"
	EventProgress EventType = "progress"
	EventEnded    EventType = "ended"
	EventError    EventType = "error"
)

// Event is a media element event. Duration is set for metadata, Time for
// progress, Message for error. Source is the URL the event was reported for;
// when empty it is taken to be the element's current source.
type Event struct {
	Type     EventType `json:"type" binding:"required,oneof=metadata progress ended error"`
	Source   string    `json:"source,omitempty"`
	Duration float64   `json:"duration,omitempty"`
	Time     float64   `json:"time,omitempty"`
	Message  string    `json:"message,omitempty"`
}

// Element is a thread-safe stand-in for an HTML audio element.
type Element struct {
	mu          sync.Mutex
	source      string
	currentTime float64
	duration    float64
	volume      float64
	paused      bool
	loads       int

	listeners map[int]func(Event)
	next      int
}

// NewElement creates a paused element at full volume.
func NewElement() *Element {
	return &Element{
		volume:    1,
		paused:    true,
		listeners: make(map[int]func(Event)),
	}
}

// SetSource replaces the media source. Like a browser element, the position and
// duration reset and playback stops until Play is called.
func (e *Element) SetSource(url string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.source = url
	e.currentTime = 0
	e.duration = 0
	e.paused = true
	e.loads++
}

func (e *Element) Source() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.source
}

func (e *Element) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentTime
}

func (e *Element) SetCurrentTime(seconds float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if seconds < 0 {
		seconds = 0
	}
	if e.duration > 0 && seconds > e.duration {
		seconds = e.duration
	}
	e.currentTime = seconds
}

func (e *Element) Duration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.duration
}

func (e *Element) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

func (e *Element) SetVolume(volume float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volume = min(max(volume, 0), 1)
}

func (e *Element) Play() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.source != "" {
		e.paused = false
	}
}

func (e *Element) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused = true
}

// Paused reports whether playback is stopped.
func (e *Element) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// Loads counts how many times a source was assigned.
func (e *Element) Loads() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loads
}

// Listen attaches fn to every emitted event until release is called.
func (e *Element) Listen(fn func(Event)) (release func()) {
	e.mu.Lock()
	id := e.next
	e.next++
	e.listeners[id] = fn
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.listeners, id)
			e.mu.Unlock()
		})
	}
}

// Listeners returns the number of attached listeners.
func (e *Element) Listeners() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners)
}

// Emit records ev on the element and then notifies listeners outside the lock.
// Events reported for another source arrived after a source change and are
// dropped.
func (e *Element) Emit(ev Event) {
	e.mu.Lock()
	if ev.Source == "" {
		ev.Source = e.source
	}
	if ev.Source != e.source {
		e.mu.Unlock()
		return
	}
	switch ev.Type {
	case EventMetadata:
		e.duration = ev.Duration
	case EventProgress:
		e.currentTime = ev.Time
	case EventEnded:
		e.paused = true
		e.currentTime = e.duration
	case EventError:
		e.paused = true
	}
	ids := lo.Keys(e.listeners)
	slices.Sort(ids)
	fns := lo.Map(ids, func(id int, _ int) func(Event) { return e.listeners[id] })
	e.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
