package summarizer

import (
	"errors"
	"testing"
	"time"

	"github.com/user/framesampler/pkg/pipeline"
	"github.com/user/framesampler/pkg/ports"
)

func sampleResult() *pipeline.RunResult {
	return &pipeline.RunResult{
		RunID:          "run-1",
		Path:           "clip.mp4",
		Container:      ports.ContainerInfo{FormatName: "mp4 (fragmented)"},
		Stream:         ports.StreamDescriptor{MediaType: ports.MediaTypeVideo, Codec: ports.CodecH264, Width: 320, Height: 240},
		PacketsRead:    12,
		VideoPackets:   8,
		SkippedPackets: 4,
		FramesDecoded:  8,
		Samples: []pipeline.Sample{
			{FrameNumber: 3, Predictions: []ports.Prediction{{ClassID: 1, Label: "cat", Score: 0.9}}, SavedPath: "out/frame3.jpg"},
			{FrameNumber: 6, Err: errors.New("inference failure")},
		},
		Termination: ports.TerminationBudgetExhausted,
		Elapsed:     1500 * time.Millisecond,
	}
}

func TestFromResult(t *testing.T) {
	s := FromResult(sampleResult(), nil)

	if s.RunID != "run-1" || s.Path != "clip.mp4" || s.Format != "mp4 (fragmented)" {
		t.Errorf("unexpected identity: %+v", s)
	}
	if s.Codec != "h264" || s.Width != 320 || s.Height != 240 {
		t.Errorf("unexpected stream: %s %dx%d", s.Codec, s.Width, s.Height)
	}
	if s.Termination != "budget_exhausted" {
		t.Errorf("expected budget_exhausted, got %s", s.Termination)
	}
	if s.ElapsedMs != 1500 {
		t.Errorf("expected 1500 ms, got %d", s.ElapsedMs)
	}
	if len(s.Samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(s.Samples))
	}
	if s.Samples[0].Label != "cat" || s.Samples[0].ClassID != 1 || s.Samples[0].SavedPath != "out/frame3.jpg" {
		t.Errorf("unexpected first sample: %+v", s.Samples[0])
	}
	if s.Samples[1].Error != "inference failure" || s.Samples[1].Label != "" {
		t.Errorf("unexpected second sample: %+v", s.Samples[1])
	}
}

func TestFromResult_NoVideoStream(t *testing.T) {
	r := &pipeline.RunResult{Path: "audio.m4a", Termination: ports.TerminationError}
	s := FromResult(r, ports.ErrNoVideoStream)

	if s.Codec != "" || s.Width != 0 {
		t.Errorf("expected no stream details, got %+v", s)
	}
	if s.Error != ports.ErrNoVideoStream.Error() {
		t.Errorf("expected error text, got %q", s.Error)
	}
	if s.Samples == nil {
		t.Error("expected empty, non-nil samples")
	}
}

func TestBuilder(t *testing.T) {
	before := time.Now()
	summary := NewBuilder().
		WithSettings(Settings{Model: "model.onnx", MaxPackets: 8, SampleInterval: 3}).
		AddRun(sampleResult(), nil).
		AddRun(nil, errors.New("ignored")).
		Build()

	if summary.GeneratedAt.Before(before) {
		t.Error("expected GeneratedAt to be set")
	}
	if summary.Settings.Model != "model.onnx" {
		t.Errorf("unexpected settings: %+v", summary.Settings)
	}
	if len(summary.Runs) != 1 {
		t.Errorf("expected nil result to be skipped, got %d runs", len(summary.Runs))
	}
}
