// Package playback holds the process-wide "what is playing" state shared by every
// play trigger on the site.
package playback

// Track identifies one playable audio item.
type Track struct {
	ID          string `json:"id" binding:"required"`
	URL         string `json:"url" binding:"required"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
}

// State is a point-in-time copy of the store.
type State struct {
	Track   *Track `json:"track,omitempty"`
	Playing bool   `json:"playing"`
	Visible bool   `json:"visible"`
}

// Output is the single low-level media element owned by the store.
// Implementations must be safe for use from multiple goroutines.
type Output interface {
	SetSource(url string)
	Source() string
	CurrentTime() float64
	SetCurrentTime(seconds float64)
	Duration() float64
	SetVolume(volume float64)
	Play()
	Pause()
}
