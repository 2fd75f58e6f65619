package panel

import (
	"slices"
	"sync"

	"github.com/samber/lo"
)

// EventKind is the phase of a pointer or touch event.
type EventKind string

const (
	PointerDown   EventKind = "down"
	PointerMove   EventKind = "move"
	PointerUp     EventKind = "up"
	PointerCancel EventKind = "cancel"
	PointerLeave  EventKind = "leave"
)

// PointerEvent carries absolute client coordinates. Touches is the number of
// simultaneous touch points; mouse and pen events report 0 or 1.
type PointerEvent struct {
	Kind    EventKind `json:"kind" binding:"required,oneof=down move up cancel leave"`
	X       float64   `json:"x"`
	Y       float64   `json:"y"`
	Touches int       `json:"touches"`
}

// Point returns the event's coordinates.
func (e PointerEvent) Point() Point {
	return Point{X: e.X, Y: e.Y}
}

// MultiTouch reports whether more than one touch point is down.
func (e PointerEvent) MultiTouch() bool {
	return e.Touches > 1
}

// Ends reports whether the event finishes a gesture.
func (e PointerEvent) Ends() bool {
	return e.Kind == PointerUp || e.Kind == PointerCancel || e.Kind == PointerLeave
}

// InputBus delivers window-level pointer events to whoever is listening.
// Listeners are only attached while a gesture is in progress.
type InputBus struct {
	mu        sync.Mutex
	listeners map[int]func(PointerEvent)
	next      int
}

// NewInputBus creates an empty bus.
func NewInputBus() *InputBus {
	return &InputBus{listeners: make(map[int]func(PointerEvent))}
}

// Listen attaches fn until the returned release func is called. Release is idempotent.
func (b *InputBus) Listen(fn func(PointerEvent)) (release func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.listeners[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

// Dispatch delivers ev to every attached listener. Listeners may release
// themselves from inside the callback.
func (b *InputBus) Dispatch(ev PointerEvent) int {
	b.mu.Lock()
	ids := lo.Keys(b.listeners)
	slices.Sort(ids)
	fns := lo.Map(ids, func(id int, _ int) func(PointerEvent) { return b.listeners[id] })
	b.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
	return len(fns)
}

// Len returns the number of attached listeners.
func (b *InputBus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}
