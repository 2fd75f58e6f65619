package panel

import (
	"math/rand/v2"
	"testing"
)

func newTestController() (*Controller, *InputBus) {
	bus := NewInputBus()
	return NewController(DefaultLimits(), desktop, bus), bus
}

func down(x, y float64) PointerEvent { return PointerEvent{Kind: PointerDown, X: x, Y: y, Touches: 1} }
func move(x, y float64) PointerEvent { return PointerEvent{Kind: PointerMove, X: x, Y: y, Touches: 1} }
func up() PointerEvent { return PointerEvent{Kind: PointerUp} }

func TestController_DragLifecycle(t *testing.T) {
	c, bus := newTestController()
	start := c.Geometry()

	if !c.PointerDown(Target{Kind: TargetHeader}, down(start.Position.X+15, start.Position.Y+10)) {
		t.Fatal("expected header press to start a drag")
	}
	if c.Mode() != Dragging {
		t.Fatalf("expected Dragging, got %s", c.Mode())
	}
	if bus.Len() != 1 {
		t.Fatalf("expected one window listener during drag, got %d", bus.Len())
	}

	bus.Dispatch(move(515, 310))
	if c.Geometry() != start {
		t.Error("move should not apply before the next frame")
	}
	c.Flush()

	want := Point{X: 500, Y: 300}
	if c.Geometry().Position != want {
		t.Errorf("expected position %+v, got %+v", want, c.Geometry().Position)
	}

	bus.Dispatch(up())
	if c.Mode() != Idle {
		t.Errorf("expected Idle after pointer up, got %s", c.Mode())
	}
	if bus.Len() != 0 {
		t.Errorf("expected listeners released after gesture, got %d", bus.Len())
	}

	// Moves after the gesture ended go nowhere
	if n := bus.Dispatch(move(0, 0)); n != 0 {
		t.Errorf("expected no listeners for stray move, got %d", n)
	}
	if c.Geometry().Position != want {
		t.Error("stray move changed the panel")
	}
}

func TestController_MovesCoalescePerFrame(t *testing.T) {
	c, bus := newTestController()
	g := c.Geometry()
	c.PointerDown(Target{Kind: TargetHeader}, down(g.Position.X, g.Position.Y))

	bus.Dispatch(move(100, 100))
	bus.Dispatch(move(200, 150))
	bus.Dispatch(move(300, 250))
	c.Flush()

	if c.Geometry().Position != (Point{X: 300, Y: 250}) {
		t.Errorf("expected last move to win, got %+v", c.Geometry().Position)
	}
	if st := c.Batcher().Stats(); st.Applied != 1 || st.Coalesced != 2 {
		t.Errorf("unexpected frame stats %+v", st)
	}
}

func TestController_PointerUpAppliesPendingFrame(t *testing.T) {
	c, bus := newTestController()
	g := c.Geometry()
	c.PointerDown(Target{Kind: TargetHeader}, down(g.Position.X, g.Position.Y))

	bus.Dispatch(move(400, 300))
	bus.Dispatch(up())

	if c.Geometry().Position != (Point{X: 400, Y: 300}) {
		t.Errorf("expected pending move applied on release, got %+v", c.Geometry().Position)
	}
}

func TestController_ResizeBottomRight(t *testing.T) {
	c, bus := newTestController()
	g := c.Geometry()
	corner := Point{X: g.Right(), Y: g.Bottom()}

	c.PointerDown(Target{Kind: TargetResize, Direction: BottomRight}, down(corner.X, corner.Y))
	if c.Mode() != Resizing || c.Direction() != BottomRight {
		t.Fatalf("expected Resizing(bottom-right), got %s/%s", c.Mode(), c.Direction())
	}

	bus.Dispatch(move(corner.X-100, corner.Y-50))
	c.Flush()

	got := c.Geometry()
	if got.Size.Width != g.Size.Width-100 || got.Size.Height != g.Size.Height-50 {
		t.Errorf("unexpected size %+v", got.Size)
	}
	if got.Position != g.Position {
		t.Errorf("bottom-right resize moved panel: %+v", got.Position)
	}

	bus.Dispatch(PointerEvent{Kind: PointerCancel})
	if c.Mode() != Idle || bus.Len() != 0 {
		t.Error("cancel should end the resize and release listeners")
	}
}

func TestController_MultiTouchIgnored(t *testing.T) {
	c, bus := newTestController()
	g := c.Geometry()

	targets := []Target{
		{Kind: TargetHeader},
		{Kind: TargetResize, Direction: Right},
		{Kind: TargetResize, Direction: BottomRight},
	}
	for _, tgt := range targets {
		ev := PointerEvent{Kind: PointerDown, X: g.Position.X + 5, Y: g.Position.Y + 5, Touches: 2}
		if c.PointerDown(tgt, ev) {
			t.Errorf("multi-touch on %s started a gesture", tgt.Kind)
		}
		if c.Mode() != Idle {
			t.Errorf("multi-touch on %s left Idle", tgt.Kind)
		}
	}
	if bus.Len() != 0 {
		t.Errorf("multi-touch attached %d listeners", bus.Len())
	}
}

func TestController_MultiTouchMoveIgnoredMidGesture(t *testing.T) {
	c, bus := newTestController()
	g := c.Geometry()
	c.PointerDown(Target{Kind: TargetHeader}, down(g.Position.X, g.Position.Y))

	bus.Dispatch(PointerEvent{Kind: PointerMove, X: 10, Y: 10, Touches: 3})
	c.Flush()

	if c.Geometry() != g {
		t.Error("multi-touch move should not change geometry")
	}
}

func TestController_ControlsAndBodyDoNotStartGestures(t *testing.T) {
	c, bus := newTestController()

	for _, kind := range []TargetKind{TargetControl, TargetBody} {
		if c.PointerDown(Target{Kind: kind}, down(1000, 700)) {
			t.Errorf("%s press started a gesture", kind)
		}
	}
	if c.PointerDown(Target{Kind: TargetResize, Direction: Left | Right}, down(1000, 700)) {
		t.Error("invalid resize direction started a gesture")
	}
	if bus.Len() != 0 {
		t.Error("listeners attached without a gesture")
	}
}

func TestController_SecondPressIgnoredDuringGesture(t *testing.T) {
	c, bus := newTestController()
	c.PointerDown(Target{Kind: TargetHeader}, down(1000, 650))

	if c.PointerDown(Target{Kind: TargetResize, Direction: Right}, down(1200, 700)) {
		t.Error("second press should not start another gesture")
	}
	if c.Mode() != Dragging || bus.Len() != 1 {
		t.Errorf("expected single drag to continue, mode=%s listeners=%d", c.Mode(), bus.Len())
	}
}

func TestController_TeardownReleasesListeners(t *testing.T) {
	c, bus := newTestController()
	c.PointerDown(Target{Kind: TargetHeader}, down(1000, 650))
	bus.Dispatch(move(10, 10))

	before := c.Geometry()
	c.Teardown()

	if bus.Len() != 0 {
		t.Errorf("expected no listeners after teardown, got %d", bus.Len())
	}
	if c.Flush() {
		t.Error("teardown should drop the pending frame")
	}
	if c.Geometry() != before {
		t.Error("teardown should not apply pending geometry")
	}
}

func TestController_ViewportResizeReclamps(t *testing.T) {
	c, _ := newTestController()
	size := c.Geometry().Size

	vp := Viewport{Width: 700, Height: 500}
	c.SetViewport(vp)

	g := c.Geometry()
	if g.Size != size {
		t.Errorf("viewport change altered a fitting size: %+v", g.Size)
	}
	if !c.Limits().InBounds(g, vp) {
		t.Errorf("out of bounds after viewport change: %+v", g)
	}
}

func TestController_Minimize(t *testing.T) {
	c, _ := newTestController()
	expanded := c.Geometry().Size.Height

	c.SetMinimized(true)
	if !c.Geometry().Minimized || c.Geometry().Size.Height != c.Limits().MinimizedHeight {
		t.Fatalf("expected minimized geometry, got %+v", c.Geometry())
	}
	c.SetMinimized(false)
	if c.Geometry().Size.Height != expanded {
		t.Errorf("expected restored height %v, got %v", expanded, c.Geometry().Size.Height)
	}
}

// Random gesture sequences with large deltas and viewport changes never leave
// the panel out of bounds.
func TestController_RandomSequencesStayInBounds(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 42))
	dirs := []Direction{Right, Left, Bottom, Top, BottomRight, BottomLeft, TopRight, TopLeft}

	for run := 0; run < 200; run++ {
		bus := NewInputBus()
		vp := Viewport{Width: 240 + r.Float64()*2000, Height: 160 + r.Float64()*1200}
		c := NewController(DefaultLimits(), vp, bus)

		for step := 0; step < 60; step++ {
			g := c.Geometry()
			switch r.IntN(6) {
			case 0:
				c.PointerDown(Target{Kind: TargetHeader}, down(g.Position.X+r.Float64()*g.Size.Width, g.Position.Y+5))
			case 1:
				c.PointerDown(Target{Kind: TargetResize, Direction: dirs[r.IntN(len(dirs))]}, down(g.Right(), g.Bottom()))
			case 2, 3:
				bus.Dispatch(move((r.Float64()-0.5)*20000, (r.Float64()-0.5)*20000))
				if r.IntN(2) == 0 {
					c.Flush()
				}
			case 4:
				vp = Viewport{Width: 240 + r.Float64()*2000, Height: 160 + r.Float64()*1200}
				c.SetViewport(vp)
			case 5:
				if r.IntN(3) == 0 {
					c.SetMinimized(!g.Minimized)
				} else {
					bus.Dispatch(up())
				}
			}

			if got := c.Geometry(); !c.Limits().InBounds(got, vp) {
				t.Fatalf("run %d step %d: out of bounds %+v in %+v", run, step, got, vp)
			}
		}
		c.Teardown()
		if bus.Len() != 0 {
			t.Fatalf("run %d: leaked %d listeners", run, bus.Len())
		}
	}
}
