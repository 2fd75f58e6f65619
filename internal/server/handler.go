package server

import (
	"fmt"
	"log/slog"

	"ministry-site/internal/media"
	"ministry-site/internal/panel"
	"ministry-site/internal/source"
	"ministry-site/internal/view"
)

// Emitter delivers media element events reported by the browser.
type Emitter interface {
	Emit(ev media.Event)
}

// Handler applies player commands. HTTP and WebSocket clients share it.
type Handler struct {
	player  *view.Player
	media   Emitter
	sources *source.Registry
	log     *slog.Logger
}

// NewHandler creates a command handler for player.
func NewHandler(player *view.Player, media Emitter, sources *source.Registry, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		player:  player,
		media:   media,
		sources: sources,
		log:     log.With("component", "handler"),
	}
}

// Handle applies cmd and returns the resulting model.
func (h *Handler) Handle(cmd Command) (view.Model, error) {
	h.log.Debug("command received", "type", cmd.Type)

	store := h.player.Store()
	switch cmd.Type {
	case CommandPlay:
		if cmd.Track == nil || cmd.Track.ID == "" || cmd.Track.URL == "" {
			return view.Model{}, fmt.Errorf("%w: play needs a track with id and url", ErrBadCommand)
		}
		if _, err := h.sources.Resolve(cmd.Track.URL); err != nil {
			return view.Model{}, err
		}
		store.SelectAndPlay(*cmd.Track)

	case CommandPause:
		store.Pause()

	case CommandResume:
		store.Resume()

	case CommandClose:
		store.Close()

	case CommandSeek:
		if cmd.Seconds == nil {
			return view.Model{}, fmt.Errorf("%w: seek needs seconds", ErrBadCommand)
		}
		h.player.Seek(*cmd.Seconds)

	case CommandVolume:
		if cmd.Volume == nil {
			return view.Model{}, fmt.Errorf("%w: volume needs a level", ErrBadCommand)
		}
		h.player.SetVolume(*cmd.Volume)

	case CommandMute:
		if cmd.Muted == nil {
			h.player.ToggleMute()
		} else {
			h.player.SetMuted(*cmd.Muted)
		}

	case CommandMinimize:
		if cmd.Minimized == nil {
			h.player.ToggleMinimized()
		} else {
			h.player.SetMinimized(*cmd.Minimized)
		}

	case CommandMedia:
		if cmd.Media == nil {
			return view.Model{}, fmt.Errorf("%w: media needs an event", ErrBadCommand)
		}
		h.media.Emit(*cmd.Media)

	case CommandPointer:
		if cmd.Pointer == nil {
			return view.Model{}, fmt.Errorf("%w: pointer needs an event", ErrBadCommand)
		}
		target, err := parseTarget(cmd.Target, cmd.Direction)
		if err != nil && cmd.Pointer.Kind == panel.PointerDown {
			return view.Model{}, err
		}
		h.player.Pointer(target, *cmd.Pointer)

	case CommandViewport:
		if cmd.Viewport == nil || cmd.Viewport.Width <= 0 || cmd.Viewport.Height <= 0 {
			return view.Model{}, fmt.Errorf("%w: viewport needs a positive size", ErrBadCommand)
		}
		h.player.SetViewport(*cmd.Viewport)

	default:
		return view.Model{}, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
	}

	return h.player.Render(), nil
}

// parseTarget reads the pressed panel part. Only resize handles carry a direction.
func parseTarget(kind, direction string) (panel.Target, error) {
	t := panel.Target{Kind: panel.TargetKind(kind)}
	switch t.Kind {
	case panel.TargetHeader, panel.TargetControl, panel.TargetBody:
		return t, nil
	case panel.TargetResize:
		dir, ok := panel.ParseDirection(direction)
		if !ok {
			return panel.Target{}, fmt.Errorf("%w: unknown resize direction %q", ErrBadCommand, direction)
		}
		t.Direction = dir
		return t, nil
	default:
		return panel.Target{}, fmt.Errorf("%w: unknown pointer target %q", ErrBadCommand, kind)
	}
}
