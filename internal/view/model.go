package view

import (
	"fmt"
	"math"
	"net/url"
	"path"

	"ministry-site/internal/content"
	"ministry-site/internal/panel"
	"ministry-site/internal/playback"
)

// EndingSoonThreshold is the remaining time, in seconds, under which the panel
// signals the end of the track.
const EndingSoonThreshold = 3.0

// Model is everything the front-end needs to draw the panel.
type Model struct {
	// Seq increases with every published change. Clients drop models older
	// than the last one they applied.
	Seq uint64 `json:"seq"`

	Visible   bool            `json:"visible"`
	Playing   bool            `json:"playing"`
	Track     *playback.Track `json:"track,omitempty"`
	Geometry  *panel.Geometry `json:"geometry,omitempty"`
	Mode      string          `json:"mode"`
	Direction string          `json:"direction,omitempty"`
	Controls  panel.Controls  `json:"controls"`

	Elapsed       float64 `json:"elapsed"`
	Duration      float64 `json:"duration"`
	ElapsedLabel  string  `json:"elapsed_label"`
	DurationLabel string  `json:"duration_label"`
	EndingSoon    bool    `json:"ending_soon"`

	Volume          float64 `json:"volume"`
	Muted           bool    `json:"muted"`
	EffectiveVolume float64 `json:"effective_volume"`
}

// Download describes a browser-side file save of the current track.
type Download struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// endingSoon reports whether cur is inside the last EndingSoonThreshold
// seconds of the track. It depends only on the position, so a seek back that
// stays near the end keeps the flag and one that leaves the window clears it.
func endingSoon(cur, duration float64) bool {
	if duration <= 0 || math.IsNaN(cur) {
		return false
	}
	return duration-cur < EndingSoonThreshold
}

// FormatTime renders seconds as m:ss.
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	s := int(seconds)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

func effectiveVolume(volume float64, muted bool) float64 {
	if muted {
		return 0
	}
	return volume
}

// downloadFor names the saved file after the track title, keeping the
// extension of the source URL.
func downloadFor(t playback.Track) Download {
	ext := ".mp3"
	if u, err := url.Parse(t.URL); err == nil {
		if e := path.Ext(u.Path); e != "" && len(e) <= 5 {
			ext = e
		}
	}
	name := content.Slugify(t.Title)
	if name == "" {
		name = "track"
	}
	return Download{URL: t.URL, Filename: name + ext}
}
