package panel

// Breakpoints at which optional controls appear.
const (
	ThumbnailMinWidth    = 300
	ThumbnailMinHeight   = 140
	SkipMinWidth         = 280
	DragHandleMinWidth   = 240
	VolumeMinWidth       = 340
	DownloadMinWidth     = 320
	DescriptionMinWidth  = 300
	DescriptionMinHeight = 170
)

// Controls lists which optional sub-controls fit in the panel.
type Controls struct {
	Thumbnail   bool `json:"thumbnail"`
	Skip        bool `json:"skip"`
	DragHandle  bool `json:"drag_handle"`
	Volume      bool `json:"volume"`
	Download    bool `json:"download"`
	Description bool `json:"description"`
}

// Visibility derives the control set for a panel of size s.
// A minimized panel only keeps the header row.
func Visibility(s Size, minimized bool) Controls {
	expanded := !minimized
	return Controls{
		Thumbnail:   expanded && s.Width >= ThumbnailMinWidth && s.Height >= ThumbnailMinHeight,
		Skip:        s.Width >= SkipMinWidth,
		DragHandle:  s.Width >= DragHandleMinWidth,
		Volume:      expanded && s.Width >= VolumeMinWidth,
		Download:    expanded && s.Width >= DownloadMinWidth,
		Description: expanded && s.Width >= DescriptionMinWidth && s.Height >= DescriptionMinHeight,
	}
}
