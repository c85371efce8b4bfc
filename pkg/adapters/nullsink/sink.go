// Package nullsink provides a frame sink that persists nothing.
package nullsink

import (
	"image"

	"github.com/user/framesampler/pkg/ports"
)

// Sink is a no-op implementation of ports.FrameSink.
type Sink struct{}

// New creates a new NullSink.
func New() *Sink {
	return &Sink{}
}

// Enabled returns false as this sink discards all frames.
func (s *Sink) Enabled() bool {
	return false
}

// SaveFrame does nothing.
func (s *Sink) SaveFrame(number int, img image.Image, predictions []ports.Prediction) (string, error) {
	return "", nil
}

var _ ports.FrameSink = (*Sink)(nil)
