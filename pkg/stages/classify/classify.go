// Package classify implements the inference stage for sampled frames.
package classify

import (
	"context"
	"fmt"
	"time"

	"github.com/user/framesampler/pkg/pipeline"
	"github.com/user/framesampler/pkg/ports"
)

// Stage runs the inferencer on one sampled frame and logs the top results.
type Stage struct {
	inferencer ports.Inferencer
	observer   ports.RunObserver
	logger     ports.Logger
	top        int
}

// New creates a new classify stage. top limits how many predictions are
// logged per frame; zero logs only the best one.
func New(inferencer ports.Inferencer, observer ports.RunObserver, logger ports.Logger, top int) *Stage {
	if observer == nil {
		observer = ports.NopObserver{}
	}
	return &Stage{
		inferencer: inferencer,
		observer:   observer,
		logger:     logger,
		top:        top,
	}
}

// Execute classifies input.Image.
// Errors wrap ports.ErrInference and keep the ports.ErrUnrecoverable mark.
func (s *Stage) Execute(ctx context.Context, input pipeline.ClassifyInput) (pipeline.ClassifyResult, error) {
	start := time.Now()
	preds, err := s.inferencer.Infer(ctx, input.Image)
	elapsed := time.Since(start)
	s.observer.InferenceDone(elapsed, err)

	if err != nil {
		return pipeline.ClassifyResult{Duration: elapsed}, fmt.Errorf("%w: frame %d: %w", ports.ErrInference, input.FrameNumber, err)
	}

	if len(preds) == 0 {
		s.logger.Info("Frame %d: no predictions", input.FrameNumber)
	} else {
		best := preds[0]
		s.logger.Info("Frame %d: %s (%d): %.4f", input.FrameNumber, best.Label, best.ClassID, best.Score)
		for i := 1; i < len(preds) && i < s.top; i++ {
			p := preds[i]
			s.logger.Debug("  %s (%d): %.4f", p.Label, p.ClassID, p.Score)
		}
	}

	return pipeline.ClassifyResult{Predictions: preds, Duration: elapsed}, nil
}

var _ pipeline.Stage[pipeline.ClassifyInput, pipeline.ClassifyResult] = (*Stage)(nil)
