package panel

import (
	"ministry-site/internal/frame"
)

// Mode is the gesture state of the controller.
type Mode int

const (
	Idle Mode = iota
	Dragging
	Resizing
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	default:
		return "unknown"
	}
}

// TargetKind identifies the part of the panel that received a pointer-down.
type TargetKind string

const (
	TargetHeader  TargetKind = "header"
	TargetControl TargetKind = "control"
	TargetBody    TargetKind = "body"
	TargetResize  TargetKind = "resize"
)

// Target is where a pointer-down landed. Direction is only set for resize handles.
type Target struct {
	Kind      TargetKind
	Direction Direction
}

// Controller turns pointer input into panel geometry. It is not safe for
// concurrent use; the owning view serializes calls.
type Controller struct {
	limits   Limits
	viewport Viewport
	geom     Geometry
	expanded float64

	mode   Mode
	dir    Direction
	offset Point
	origin Point
	start  Geometry

	window  *InputBus
	release func()
	batch   *frame.Batcher[Geometry]
}

// NewController places a default panel inside vp. Moves and ends of gestures are
// received through window.
func NewController(l Limits, vp Viewport, window *InputBus) *Controller {
	c := &Controller{
		limits:   l,
		viewport: vp,
		geom:     l.Initial(vp),
		window:   window,
	}
	c.expanded = c.geom.Size.Height
	c.batch = frame.New(c.commit)
	return c
}

// Geometry returns the last applied geometry.
func (c *Controller) Geometry() Geometry { return c.geom }

// Mode returns the current gesture state.
func (c *Controller) Mode() Mode { return c.mode }

// Direction returns the active resize direction, or 0.
func (c *Controller) Direction() Direction {
	if c.mode != Resizing {
		return 0
	}
	return c.dir
}

// Viewport returns the viewport the geometry is clamped to.
func (c *Controller) Viewport() Viewport { return c.viewport }

// Limits returns the sizing constants.
func (c *Controller) Limits() Limits { return c.limits }

// Batcher exposes the frame batcher for stats.
func (c *Controller) Batcher() *frame.Batcher[Geometry] { return c.batch }

// PointerDown starts a drag or resize. It returns false when the event does not
// start a gesture: multi-touch, a press on a control, or a gesture already running.
func (c *Controller) PointerDown(t Target, ev PointerEvent) bool {
	if ev.Kind != PointerDown || ev.MultiTouch() || c.mode != Idle {
		return false
	}

	switch t.Kind {
	case TargetHeader:
		c.mode = Dragging
		c.offset = ev.Point().Sub(c.geom.Position)
	case TargetResize:
		if !t.Direction.Valid() {
			return false
		}
		c.mode = Resizing
		c.dir = t.Direction
		c.origin = ev.Point()
		c.start = c.geom
	default:
		return false
	}

	c.release = c.window.Listen(c.onWindow)
	return true
}

func (c *Controller) onWindow(ev PointerEvent) {
	if c.mode == Idle {
		return
	}
	if ev.Ends() {
		c.end()
		return
	}
	if ev.Kind != PointerMove || ev.MultiTouch() {
		return
	}

	switch c.mode {
	case Dragging:
		c.batch.Schedule(Drag(c.geom, ev.Point(), c.offset, c.viewport, c.limits))
	case Resizing:
		c.batch.Schedule(Resize(c.start, c.dir, c.origin, ev.Point(), c.viewport, c.limits))
	}
}

// end applies the last pending frame and returns to Idle.
func (c *Controller) end() {
	c.batch.Flush()
	c.mode = Idle
	c.dir = 0
	c.offset = Point{}
	c.origin = Point{}
	c.start = Geometry{}
	c.releaseListeners()
}

// Cancel aborts any running gesture, keeping what was already applied.
func (c *Controller) Cancel() {
	if c.mode != Idle {
		c.end()
	}
}

// Flush applies the update scheduled during the current frame.
func (c *Controller) Flush() bool {
	return c.batch.Flush()
}

// commit re-clamps because the viewport may have changed since g was scheduled.
func (c *Controller) commit(g Geometry) {
	c.geom = c.limits.Clamp(g, c.viewport)
	if !c.geom.Minimized {
		c.expanded = c.geom.Size.Height
	}
}

// SetViewport re-clamps the panel into a resized window.
func (c *Controller) SetViewport(vp Viewport) {
	c.viewport = vp
	c.geom = Reclamp(c.geom, vp, c.limits)
	if c.mode == Resizing {
		c.start = Reclamp(c.start, vp, c.limits)
	}
}

// SetMinimized collapses or restores the panel.
func (c *Controller) SetMinimized(minimized bool) {
	c.Cancel()
	c.geom = SetMinimized(c.geom, minimized, c.expanded, c.viewport, c.limits)
}

// Teardown releases every listener and drops pending updates.
func (c *Controller) Teardown() {
	c.batch.Discard()
	c.mode = Idle
	c.releaseListeners()
}

func (c *Controller) releaseListeners() {
	if c.release != nil {
		c.release()
		c.release = nil
	}
}
