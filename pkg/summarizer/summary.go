// Package summarizer builds and writes reports of finished sampling runs.
package summarizer

import (
	"time"

	"github.com/user/framesampler/pkg/pipeline"
)

// Summary contains every run of one invocation.
type Summary struct {
	GeneratedAt time.Time    `yaml:"generated_at"`
	Settings    Settings     `yaml:"settings"`
	Runs        []RunSummary `yaml:"runs"`
}

// Settings is the sampling configuration the runs shared.
type Settings struct {
	Model          string `yaml:"model"`
	MaxPackets     int    `yaml:"max_packets"`
	SampleInterval int    `yaml:"sample_interval"`
	Backend        string `yaml:"backend"`
	Converter      string `yaml:"converter"`
}

// RunSummary describes one container.
type RunSummary struct {
	RunID       string `yaml:"run_id"`
	Path        string `yaml:"path"`
	Format      string `yaml:"format,omitempty"`
	Codec       string `yaml:"codec,omitempty"`
	Width       int    `yaml:"width,omitempty"`
	Height      int    `yaml:"height,omitempty"`
	Termination string `yaml:"termination"`
	Error       string `yaml:"error,omitempty"`
	ElapsedMs   int64  `yaml:"elapsed_ms"`

	PacketsRead        int `yaml:"packets_read"`
	VideoPackets       int `yaml:"video_packets"`
	SkippedPackets     int `yaml:"skipped_packets"`
	FramesDecoded      int `yaml:"frames_decoded"`
	FramesConverted    int `yaml:"frames_converted"`
	ConversionFailures int `yaml:"conversion_failures"`

	Samples []SampleSummary `yaml:"samples"`
}

// SampleSummary is one sampled frame and its best prediction.
type SampleSummary struct {
	Frame     int     `yaml:"frame"`
	Label     string  `yaml:"label,omitempty"`
	ClassID   int     `yaml:"class_id"`
	Score     float32 `yaml:"score"`
	SavedPath string  `yaml:"saved_path,omitempty"`
	Error     string  `yaml:"error,omitempty"`
}

// FromResult converts a run result. err is the error Run returned, if any.
func FromResult(r *pipeline.RunResult, err error) RunSummary {
	s := RunSummary{
		RunID:              r.RunID,
		Path:               r.Path,
		Format:             r.Container.FormatName,
		Termination:        string(r.Termination),
		ElapsedMs:          r.Elapsed.Milliseconds(),
		PacketsRead:        r.PacketsRead,
		VideoPackets:       r.VideoPackets,
		SkippedPackets:     r.SkippedPackets,
		FramesDecoded:      r.FramesDecoded,
		FramesConverted:    r.FramesConverted,
		ConversionFailures: r.ConversionFailures,
		Samples:            make([]SampleSummary, 0, len(r.Samples)),
	}
	if r.Stream.IsVideo() {
		s.Codec = r.Stream.Codec.String()
		s.Width = r.Stream.Width
		s.Height = r.Stream.Height
	}
	if err != nil {
		s.Error = err.Error()
	}
	for _, sample := range r.Samples {
		ss := SampleSummary{Frame: sample.FrameNumber, SavedPath: sample.SavedPath}
		if len(sample.Predictions) > 0 {
			top := sample.Predictions[0]
			ss.Label = top.Label
			ss.ClassID = top.ClassID
			ss.Score = top.Score
		}
		if sample.Err != nil {
			ss.Error = sample.Err.Error()
		}
		s.Samples = append(s.Samples, ss)
	}
	return s
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder stamped with the current time.
func NewBuilder() *Builder {
	return &Builder{
		summary: &Summary{GeneratedAt: time.Now()},
	}
}

// WithSettings sets the shared configuration.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// AddRun appends one run. Nil results are ignored.
func (b *Builder) AddRun(r *pipeline.RunResult, err error) *Builder {
	if r != nil {
		b.summary.Runs = append(b.summary.Runs, FromResult(r, err))
	}
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
