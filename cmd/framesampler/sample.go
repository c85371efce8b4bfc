package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/user/framesampler/pkg/adapters/ffmpeg"
	"github.com/user/framesampler/pkg/adapters/filesink"
	"github.com/user/framesampler/pkg/adapters/ggrenderer"
	"github.com/user/framesampler/pkg/adapters/mp4container"
	"github.com/user/framesampler/pkg/adapters/nullsink"
	"github.com/user/framesampler/pkg/adapters/osfilesystem"
	"github.com/user/framesampler/pkg/adapters/pixconv"
	"github.com/user/framesampler/pkg/config"
	"github.com/user/framesampler/pkg/orchestrator"
	"github.com/user/framesampler/pkg/pipeline"
	"github.com/user/framesampler/pkg/ports"
	"github.com/user/framesampler/pkg/registry"
	"github.com/user/framesampler/pkg/stages/classify"
	"github.com/user/framesampler/pkg/stages/selectstream"
	"github.com/user/framesampler/pkg/summarizer"
)

// mp4Extensions are demuxed by the pure-Go reader in auto mode.
var mp4Extensions = map[string]bool{
	".mp4":  true,
	".m4v":  true,
	".mov":  true,
	".cmfv": true,
}

// newOpener returns the container opener for backend.
func newOpener(backend string, log ports.Logger) ports.ContainerOpener {
	mp4 := mp4container.New(log)
	av := ffmpeg.NewOpener(log)
	switch backend {
	case config.BackendMP4:
		return mp4
	case config.BackendFFmpeg:
		return av
	}
	return ports.ContainerOpenerFunc(func(ctx context.Context, path string) (ports.ContainerReader, error) {
		if mp4Extensions[strings.ToLower(filepath.Ext(path))] {
			return mp4.Open(ctx, path)
		}
		return av.Open(ctx, path)
	})
}

// newConverterFactory returns a constructor of per-run pixel converters.
func newConverterFactory(name string, log ports.Logger) func() ports.PixelConverter {
	if name == config.ConverterSwscale {
		return func() ports.PixelConverter { return ffmpeg.NewConverter(log) }
	}
	return func() ports.PixelConverter { return pixconv.New(log) }
}

// newSink returns the frame sink for one input. With several inputs each
// one writes into its own subdirectory named after the file.
func newSink(cfg config.Config, path string, multi bool) (ports.FrameSink, error) {
	if !cfg.SaveFrames {
		return nullsink.New(), nil
	}

	style := ggrenderer.DefaultStyle()
	if cfg.AnnotateColor != "" {
		c, err := config.ParseColor(cfg.AnnotateColor)
		if err != nil {
			return nil, err
		}
		style.TextColor = c
	}

	dir := cfg.OutputDir
	if multi {
		base := filepath.Base(path)
		dir = filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base)))
	}
	opts := filesink.DefaultOptions()
	opts.Quality = cfg.JPEGQuality
	opts.Annotate = cfg.Annotate
	if cfg.TopK > 0 {
		opts.TopN = cfg.TopK
	}
	return filesink.New(dir, osfilesystem.New(), ggrenderer.NewWithStyle(style), opts), nil
}

// sampleVideos runs every input through its own orchestrator, at most
// cfg.Jobs at a time. Runs are independent; one failing run does not
// stop the others.
func sampleVideos(ctx context.Context, cfg config.Config, paths []string, model ports.Inferencer, observer ports.RunObserver, log ports.Logger) error {
	if err := registry.Init(ffmpeg.Provider(log)); err != nil {
		return fmt.Errorf("register decoders: %w", err)
	}
	decoders := registry.Default()
	log.Debug("Registered decoders: %v", decoders.Codecs())

	opener := newOpener(cfg.Backend, log)
	converters := newConverterFactory(cfg.Converter, log)
	selectStage := selectstream.New(decoders, log)
	classifyStage := classify.New(model, observer, log.WithComponent("classify"), cfg.TopK)

	results := make([]*pipeline.RunResult, len(paths))
	errs := make([]error, len(paths))

	var g errgroup.Group
	g.SetLimit(cfg.Jobs)
	for i, path := range paths {
		g.Go(func() error {
			sink, err := newSink(cfg, path, len(paths) > 1)
			if err != nil {
				errs[i] = err
				return nil
			}
			orch := orchestrator.New(cfg.ToOrchestratorConfig(), opener, selectStage, classifyStage, converters, model, sink, observer, log)
			results[i], errs[i] = orch.Run(ctx, pipeline.RunInput{Path: path, RunID: uuid.NewString()})
			return nil
		})
	}
	g.Wait()

	var failed []error
	for i, path := range paths {
		if r := results[i]; r != nil {
			summarize(r, log)
		}
		if errs[i] != nil {
			failed = append(failed, fmt.Errorf("%s: %w", path, errs[i]))
		}
	}
	if cfg.Report != "" {
		if err := writeReport(cfg, results, errs, osfilesystem.New()); err != nil {
			failed = append(failed, err)
		} else {
			log.Info("Report written to %s", cfg.Report)
		}
	}
	return errors.Join(failed...)
}

// writeReport writes the summary of every run to cfg.Report.
func writeReport(cfg config.Config, results []*pipeline.RunResult, errs []error, fs ports.FileSystem) error {
	formatter, err := summarizer.ForPath(cfg.Report)
	if err != nil {
		return err
	}
	b := summarizer.NewBuilder().WithSettings(summarizer.Settings{
		Model:          cfg.Model,
		MaxPackets:     cfg.MaxPackets,
		SampleInterval: cfg.SampleInterval,
		Backend:        cfg.Backend,
		Converter:      cfg.Converter,
	})
	for i, r := range results {
		b.AddRun(r, errs[i])
	}
	if err := summarizer.NewWriter(fs, formatter).Write(cfg.Report, b.Build()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func summarize(r *pipeline.RunResult, log ports.Logger) {
	log.Info("%s [%s]: %d video packets (%d skipped), %d frames decoded, %d converted, %d conversion failures, terminated by %s",
		r.Path, r.RunID, r.VideoPackets, r.SkippedPackets, r.FramesDecoded, r.FramesConverted, r.ConversionFailures, r.Termination)
	for _, s := range r.Samples {
		switch {
		case s.Err != nil:
			log.Warn("  frame %d: %s", s.FrameNumber, s.Err)
		case len(s.Predictions) > 0:
			p := s.Predictions[0]
			log.Info("  frame %d: %s (%d): %.4f", s.FrameNumber, p.Label, p.ClassID, p.Score)
		}
	}
}
