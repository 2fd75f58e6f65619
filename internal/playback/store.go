package playback

import (
	"slices"
	"sync"

	"github.com/samber/lo"
)

// Store is the single source of truth for the current track.
// Only one track can be current; selecting another one replaces it on the same Output.
type Store struct {
	out Output

	mu      sync.Mutex
	track   *Track
	playing bool
	visible bool

	subs    map[int]func(State)
	nextSub int
}

// NewStore creates a store that owns out.
func NewStore(out Output) *Store {
	return &Store{
		out:  out,
		subs: make(map[int]func(State)),
	}
}

// Output returns the shared output handle.
func (s *Store) Output() Output {
	return s.out
}

// SelectAndPlay toggles play/pause when t is already current, otherwise makes t
// current and marks it playing. Loading the media is left to whoever renders it.
func (s *Store) SelectAndPlay(t Track) {
	s.mu.Lock()
	if s.track != nil && s.track.ID == t.ID {
		if s.playing {
			s.out.Pause()
			s.playing = false
		} else {
			s.out.Play()
			s.playing = true
		}
	} else {
		track := t
		s.track = &track
		s.visible = true
		s.playing = true
	}
	s.publishLocked()
}

// Pause pauses the output. No-op when already paused.
func (s *Store) Pause() {
	s.mu.Lock()
	if !s.playing {
		s.mu.Unlock()
		return
	}
	s.out.Pause()
	s.playing = false
	s.publishLocked()
}

// Resume plays the output. No-op without a current track.
func (s *Store) Resume() {
	s.mu.Lock()
	if s.track == nil || s.playing {
		s.mu.Unlock()
		return
	}
	s.out.Play()
	s.playing = true
	s.publishLocked()
}

// Close pauses, hides the panel and clears the current track.
func (s *Store) Close() {
	s.mu.Lock()
	if s.track == nil && !s.visible && !s.playing {
		s.mu.Unlock()
		return
	}
	s.out.Pause()
	s.playing = false
	s.visible = false
	s.track = nil
	s.publishLocked()
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to be called after every state change.
// Callbacks run outside the store lock, in registration order.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) snapshotLocked() State {
	st := State{Playing: s.playing, Visible: s.visible}
	if s.track != nil {
		t := *s.track
		st.Track = &t
	}
	return st
}

// publishLocked releases s.mu before notifying subscribers.
func (s *Store) publishLocked() {
	st := s.snapshotLocked()
	ids := lo.Keys(s.subs)
	slices.Sort(ids)
	fns := make([]func(State), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}
