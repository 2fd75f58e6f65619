// Package server exposes the site, the admin panel and the floating player
// over HTTP and WebSocket.
package server

import (
	"ministry-site/internal/media"
	"ministry-site/internal/panel"
	"ministry-site/internal/playback"
	"ministry-site/internal/view"
)

// CommandType identifies a player command from the browser.
type CommandType string

const (
	CommandPlay     CommandType = "play"
	CommandPause    CommandType = "pause"
	CommandResume   CommandType = "resume"
	CommandClose    CommandType = "close"
	CommandSeek     CommandType = "seek"
	CommandVolume   CommandType = "volume"
	CommandMute     CommandType = "mute"
	CommandMinimize CommandType = "minimize"
	CommandMedia    CommandType = "media"
	CommandPointer  CommandType = "pointer"
	CommandViewport CommandType = "viewport"
)

// Command is a player command. Only the fields its type needs are set.
type Command struct {
	Type CommandType `json:"type"`

	Track     *playback.Track     `json:"track,omitempty"`
	Seconds   *float64            `json:"seconds,omitempty"`
	Volume    *float64            `json:"volume,omitempty"`
	Muted     *bool               `json:"muted,omitempty"`
	Minimized *bool               `json:"minimized,omitempty"`
	Media     *media.Event        `json:"media,omitempty"`
	Target    string              `json:"target,omitempty"`    // header, control, body or resize
	Direction string              `json:"direction,omitempty"` // resize handle, e.g. "bottom-right"
	Pointer   *panel.PointerEvent `json:"pointer,omitempty"`
	Viewport  *panel.Viewport     `json:"viewport,omitempty"`
}

// EventType identifies an event pushed to the browser.
type EventType string

const (
	EventSnapshot EventType = "snapshot"
	EventError    EventType = "error"
)

// Event is pushed over the player socket.
type Event struct {
	Type    EventType   `json:"type"`
	Model   *view.Model `json:"model,omitempty"`
	Message string      `json:"message,omitempty"`
}

// NewSnapshotEvent creates a snapshot event.
func NewSnapshotEvent(m view.Model) Event {
	return Event{
		Type:  EventSnapshot,
		Model: &m,
	}
}

// NewErrorEvent creates an error event.
func NewErrorEvent(message string) Event {
	return Event{
		Type:    EventError,
		Message: message,
	}
}

// Response is the body of every non-list reply that carries no entity.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ListResponse wraps collection replies.
type ListResponse[T any] struct {
	Count int `json:"count"`
	Items []T `json:"items"`
}
