package pipeline

import (
	"time"

	"github.com/user/framesampler/pkg/ports"
	"github.com/user/framesampler/pkg/registry"
)

// =============================================================================
// Stream Selection
// =============================================================================

// Selection is the outcome of stream selection.
type Selection struct {
	// Video is the first video stream in container order.
	Video ports.StreamDescriptor

	// Factory creates sessions for Video's codec.
	Factory registry.Factory

	// Unsupported lists every stream whose codec has no decoder.
	Unsupported []ports.StreamDescriptor
}

// =============================================================================
// Classification
// =============================================================================

// ClassifyInput is one sampled frame.
type ClassifyInput struct {
	FrameNumber int
	PTS         int64
	Image       *ports.RGBImage
}

// ClassifyResult holds the predictions for one sampled frame.
type ClassifyResult struct {
	Predictions []ports.Prediction
	Duration    time.Duration
}

// =============================================================================
// Run
// =============================================================================

// RunInput identifies one container to sample.
type RunInput struct {
	Path  string
	RunID string
}

// Sample records what happened to one sampled frame.
type Sample struct {
	FrameNumber int
	PTS         int64
	Predictions []ports.Prediction
	SavedPath   string
	Err         error // non-fatal inference or persistence failure
}

// RunResult summarizes one run of the driver loop.
type RunResult struct {
	RunID string
	Path  string

	Container ports.ContainerInfo
	Stream    ports.StreamDescriptor

	PacketsRead        int // every packet returned by the container
	VideoPackets       int // packets of the selected stream, counted against the budget
	SkippedPackets     int // packets of other streams
	FramesDecoded      int
	FramesConverted    int
	ConversionFailures int

	Samples     []Sample
	Termination ports.Termination
	Elapsed     time.Duration
}

// InferredFrames returns the frame numbers that reached the inference stage.
func (r *RunResult) InferredFrames() []int {
	out := make([]int, 0, len(r.Samples))
	for _, s := range r.Samples {
		out = append(out, s.FrameNumber)
	}
	return out
}
