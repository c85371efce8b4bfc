// Package orchestrator drives one container through demux, decode,
// conversion and sampled inference.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/user/framesampler/pkg/pipeline"
	"github.com/user/framesampler/pkg/ports"
)

// Config contains the loop parameters.
type Config struct {
	// MaxPackets is the number of video packets processed before stopping.
	MaxPackets int
	// SampleInterval selects frames whose number is a multiple of it.
	SampleInterval int
	// TargetFormat is the converted image format handed to inference.
	TargetFormat ports.PixelFormat
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		MaxPackets:     8,
		SampleInterval: 3,
		TargetFormat:   ports.PixelFormatRGB24,
	}
}

// Orchestrator runs the sampling loop. One Orchestrator may serve
// concurrent runs; every run acquires its own container, decoder and
// converter.
type Orchestrator struct {
	config        Config
	opener        ports.ContainerOpener
	selectStage   pipeline.Stage[[]ports.StreamDescriptor, pipeline.Selection]
	classifyStage pipeline.Stage[pipeline.ClassifyInput, pipeline.ClassifyResult]
	newConverter  func() ports.PixelConverter
	model         ports.Inferencer
	sink          ports.FrameSink
	observer      ports.RunObserver
	logger        ports.Logger
}

// New creates a new Orchestrator. Zero config fields take their defaults.
// model is only consulted for readiness; inference goes through classifyStage.
func New(
	config Config,
	opener ports.ContainerOpener,
	selectStage pipeline.Stage[[]ports.StreamDescriptor, pipeline.Selection],
	classifyStage pipeline.Stage[pipeline.ClassifyInput, pipeline.ClassifyResult],
	newConverter func() ports.PixelConverter,
	model ports.Inferencer,
	sink ports.FrameSink,
	observer ports.RunObserver,
	logger ports.Logger,
) *Orchestrator {
	def := DefaultConfig()
	if config.MaxPackets <= 0 {
		config.MaxPackets = def.MaxPackets
	}
	if config.SampleInterval <= 0 {
		config.SampleInterval = def.SampleInterval
	}
	if config.TargetFormat == "" {
		config.TargetFormat = def.TargetFormat
	}
	if observer == nil {
		observer = ports.NopObserver{}
	}
	return &Orchestrator{
		config:        config,
		opener:        opener,
		selectStage:   selectStage,
		classifyStage: classifyStage,
		newConverter:  newConverter,
		model:         model,
		sink:          sink,
		observer:      observer,
		logger:        logger,
	}
}

// Config returns the effective configuration.
func (o *Orchestrator) Config() Config {
	return o.config
}

// run is the per-invocation state of the loop.
type run struct {
	*Orchestrator
	session   ports.DecoderSession
	converter ports.PixelConverter
	result    *pipeline.RunResult
	logger    ports.Logger
}

// Run samples the container at input.Path.
// The returned result is non-nil even on failure and reflects the work done
// before the error. Every acquired resource is released exactly once, in
// reverse acquisition order, before Run returns.
func (o *Orchestrator) Run(ctx context.Context, input pipeline.RunInput) (*pipeline.RunResult, error) {
	start := time.Now()
	result := &pipeline.RunResult{
		RunID:       input.RunID,
		Path:        input.Path,
		Termination: ports.TerminationError,
	}
	logger := o.logger
	if input.RunID != "" {
		logger = logger.WithComponent(shortID(input.RunID))
	}

	if !o.model.Ready() {
		logger.Error("Model is not ready")
		o.observer.RunFinished(result.Termination)
		return result, ports.ErrModelNotReady
	}

	var stack releaseStack
	defer func() {
		if err := stack.unwind(); err != nil {
			logger.Warn("Failed to release resources: %s", err)
		}
		result.Elapsed = time.Since(start)
		o.observer.RunFinished(result.Termination)
		logger.Info("Run finished (%s): %d packets read, %d frames decoded, %d sampled in %s",
			result.Termination, result.PacketsRead, result.FramesDecoded, len(result.Samples), result.Elapsed.Round(time.Millisecond))
	}()

	logger.Info("Sampling %s", input.Path)

	reader, err := o.opener.Open(ctx, input.Path)
	if err != nil {
		return result, fmt.Errorf("open container: %w", err)
	}
	stack.push("container", reader.Close)

	info := reader.Info()
	result.Container = info
	logger.Debug("Container %s: %d streams", info.FormatName, len(info.Streams))

	sel, err := o.selectStage.Execute(ctx, info.Streams)
	if err != nil {
		return result, fmt.Errorf("select stream: %w", err)
	}
	result.Stream = sel.Video

	session := sel.Factory.NewSession()
	if session == nil {
		return result, fmt.Errorf("%w: decoder session for %s", ports.ErrResourceAllocation, sel.Video.Codec)
	}
	stack.push("decoder", session.Close)

	if err := session.Configure(sel.Video); err != nil {
		return result, fmt.Errorf("configure decoder: %w", err)
	}
	if err := session.Open(); err != nil {
		return result, fmt.Errorf("open decoder: %w", err)
	}

	converter := o.newConverter()
	if converter == nil {
		return result, fmt.Errorf("%w: pixel converter", ports.ErrResourceAllocation)
	}
	stack.push("converter", converter.Close)

	r := &run{
		Orchestrator: o,
		session:      session,
		converter:    converter,
		result:       result,
		logger:       logger,
	}

	logger.Info("Decoding stream %d (%s %dx%d), budget %d packets, sampling every %d frames",
		sel.Video.Index, sel.Video.Codec, sel.Video.Width, sel.Video.Height, o.config.MaxPackets, o.config.SampleInterval)

	return result, r.loop(ctx, reader, sel.Video.Index)
}

// loop pulls packets until the budget is spent or the container ends.
func (r *run) loop(ctx context.Context, reader ports.ContainerReader, videoIndex int) error {
	budget := r.config.MaxPackets

	for budget > 0 {
		if err := ctx.Err(); err != nil {
			r.result.Termination = ports.TerminationCanceled
			return err
		}

		pkt, err := reader.NextPacket()
		if errors.Is(err, io.EOF) {
			if err := r.session.Flush(); err != nil {
				return fmt.Errorf("flush decoder: %w", err)
			}
			if err := r.drain(ctx); err != nil {
				return err
			}
			r.result.Termination = ports.TerminationEndOfStream
			r.logger.Debug("End of stream after %d video packets", r.result.VideoPackets)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read packet: %w", err)
		}

		r.result.PacketsRead++
		video := pkt.StreamIndex == videoIndex
		r.observer.PacketRead(video)
		if !video {
			r.result.SkippedPackets++
			pkt.Release()
			continue
		}

		r.result.VideoPackets++
		err = r.session.Submit(pkt)
		pkt.Release()
		if err != nil {
			return fmt.Errorf("submit packet %d: %w", r.result.VideoPackets, err)
		}
		if err := r.drain(ctx); err != nil {
			return err
		}
		budget--
	}

	r.result.Termination = ports.TerminationBudgetExhausted
	r.logger.Debug("Packet budget of %d exhausted", r.config.MaxPackets)
	return nil
}

// drain receives frames until the decoder needs input or is exhausted.
func (r *run) drain(ctx context.Context) error {
	for {
		res, err := r.session.Receive()
		if err != nil {
			return fmt.Errorf("receive frame: %w", err)
		}
		if res.Status != ports.StatusFrameReady {
			return nil
		}
		err = r.handleFrame(ctx, res.Frame)
		res.Frame.Release()
		if err != nil {
			return err
		}
	}
}

// handleFrame converts one decoded frame and, when sampled, classifies
// and persists it. Only unrecoverable inference errors are returned.
func (r *run) handleFrame(ctx context.Context, frame *ports.Frame) error {
	r.result.FramesDecoded++
	r.observer.FrameDecoded()

	img, err := r.converter.Convert(frame, r.config.TargetFormat)
	if err != nil {
		r.result.ConversionFailures++
		r.observer.ConversionFailed()
		r.logger.Warn("Skipping frame %d: %s", frame.Number, err)
		return nil
	}
	r.result.FramesConverted++

	if frame.Number%r.config.SampleInterval != 0 {
		return nil
	}

	sample := pipeline.Sample{FrameNumber: frame.Number, PTS: frame.PTS}
	out, inferErr := r.classifyStage.Execute(ctx, pipeline.ClassifyInput{
		FrameNumber: frame.Number,
		PTS:         frame.PTS,
		Image:       img,
	})
	sample.Predictions = out.Predictions

	if r.sink != nil && r.sink.Enabled() {
		path, err := r.sink.SaveFrame(frame.Number, img, out.Predictions)
		if err != nil {
			r.logger.Warn("Failed to save frame %d: %s", frame.Number, err)
			sample.Err = err
		} else {
			sample.SavedPath = path
		}
	}

	if inferErr != nil {
		sample.Err = inferErr
		r.result.Samples = append(r.result.Samples, sample)
		if ports.IsUnrecoverable(inferErr) {
			r.logger.Error("Inference failed on frame %d: %s", frame.Number, inferErr)
			return inferErr
		}
		r.logger.Warn("Inference failed on frame %d: %s", frame.Number, inferErr)
		return nil
	}

	r.result.Samples = append(r.result.Samples, sample)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
