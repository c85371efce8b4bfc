package ports

import (
	"image"
)

// FrameSink persists sampled frames.
type FrameSink interface {
	// Enabled returns true if frames are persisted.
	Enabled() bool

	// SaveFrame writes the frame numbered number by the decoder's running
	// frame counter. Predictions may be nil when inference failed.
	// It returns the location written.
	SaveFrame(number int, img image.Image, predictions []Prediction) (string, error)
}
