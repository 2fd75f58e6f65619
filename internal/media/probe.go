package media

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gopxl/beep/v2/mp3"
)

// ErrUnsupported is returned for content the prober cannot decode.
var ErrUnsupported = errors.New("unsupported audio format")

// ProbeMP3 decodes the stream header and frame index of an MP3 and returns its
// playing time. r is closed.
func ProbeMP3(r io.ReadCloser) (time.Duration, error) {
	streamer, format, err := mp3.Decode(r)
	if err != nil {
		r.Close()
		return 0, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	defer streamer.Close()

	n := streamer.Len()
	if n <= 0 || format.SampleRate <= 0 {
		return 0, fmt.Errorf("%w: empty stream", ErrUnsupported)
	}
	return format.SampleRate.D(n), nil
}

// Probe returns the duration of an audio payload with the given content type.
func Probe(contentType string, r io.ReadCloser) (time.Duration, error) {
	switch contentType {
	case "audio/mpeg", "audio/mp3", "audio/x-mpeg":
		return ProbeMP3(r)
	default:
		r.Close()
		return 0, fmt.Errorf("%w: %s", ErrUnsupported, contentType)
	}
}
