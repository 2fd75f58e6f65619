package media

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestElement_SetSourceResets(t *testing.T) {
	e := NewElement()
	e.SetSource("a.mp3")
	e.Emit(Event{Type: EventMetadata, Duration: 120})
	e.Play()
	e.SetCurrentTime(30)

	e.SetSource("b.mp3")

	if e.Source() != "b.mp3" {
		t.Errorf("expected source b.mp3, got %s", e.Source())
	}
	if e.CurrentTime() != 0 || e.Duration() != 0 {
		t.Errorf("expected time and duration reset, got %v/%v", e.CurrentTime(), e.Duration())
	}
	if !e.Paused() {
		t.Error("expected new source to start paused")
	}
	if e.Loads() != 2 {
		t.Errorf("expected 2 loads, got %d", e.Loads())
	}
}

func TestElement_PlayWithoutSource(t *testing.T) {
	e := NewElement()
	e.Play()
	if !e.Paused() {
		t.Error("element without source should stay paused")
	}
}

func TestElement_ClampsTimeAndVolume(t *testing.T) {
	e := NewElement()
	e.SetSource("a.mp3")
	e.Emit(Event{Type: EventMetadata, Duration: 10})

	e.SetCurrentTime(99)
	if e.CurrentTime() != 10 {
		t.Errorf("expected time clamped to duration, got %v", e.CurrentTime())
	}
	e.SetCurrentTime(-5)
	if e.CurrentTime() != 0 {
		t.Errorf("expected time clamped to 0, got %v", e.CurrentTime())
	}

	e.SetVolume(1.5)
	if e.Volume() != 1 {
		t.Errorf("expected volume clamped to 1, got %v", e.Volume())
	}
	e.SetVolume(-1)
	if e.Volume() != 0 {
		t.Errorf("expected volume clamped to 0, got %v", e.Volume())
	}
}

func TestElement_EmitNotifiesListeners(t *testing.T) {
	e := NewElement()
	var got []EventType
	release := e.Listen(func(ev Event) { got = append(got, ev.Type) })

	e.Emit(Event{Type: EventMetadata, Duration: 5})
	e.Emit(Event{Type: EventProgress, Time: 2})
	release()
	e.Emit(Event{Type: EventEnded})

	if len(got) != 2 {
		t.Fatalf("expected 2 events before release, got %v", got)
	}
	if e.Listeners() != 0 {
		t.Errorf("expected no listeners, got %d", e.Listeners())
	}
	if e.CurrentTime() != 5 || !e.Paused() {
		t.Errorf("ended should park at the end, got time=%v paused=%v", e.CurrentTime(), e.Paused())
	}
}

func TestElement_DropsEventsForOldSource(t *testing.T) {
	e := NewElement()
	e.SetSource("a.mp3")
	e.SetSource("b.mp3")
	var got []Event
	e.Listen(func(ev Event) { got = append(got, ev) })

	e.Emit(Event{Type: EventError, Source: "a.mp3", Message: "a.mp3 404"})
	e.Emit(Event{Type: EventMetadata, Source: "a.mp3", Duration: 99})
	if len(got) != 0 {
		t.Fatalf("expected old source events dropped, got %+v", got)
	}
	if e.Duration() != 0 {
		t.Errorf("expected duration untouched, got %v", e.Duration())
	}

	e.Emit(Event{Type: EventMetadata, Duration: 7})
	if len(got) != 1 || got[0].Source != "b.mp3" {
		t.Errorf("expected unlabeled event stamped with the current source, got %+v", got)
	}
}

func TestElement_ListenerMayCallBack(t *testing.T) {
	e := NewElement()
	e.SetSource("a.mp3")
	e.Listen(func(ev Event) {
		if ev.Type == EventMetadata {
			e.Play()
		}
	})

	e.Emit(Event{Type: EventMetadata, Duration: 3})

	if e.Paused() {
		t.Error("listener should be able to call back into the element")
	}
}

func TestDuration_RejectsGarbage(t *testing.T) {
	_, err := ProbeMP3(io.NopCloser(strings.NewReader("definitely not an mp3")))
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}

	_, err = Probe("application/pdf", io.NopCloser(strings.NewReader("%PDF")))
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported for pdf, got %v", err)
	}
}
