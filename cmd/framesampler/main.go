// Package main provides the CLI entry point for framesampler.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/ideamans/go-l10n"

	"github.com/user/framesampler/pkg/adapters/logger"
	"github.com/user/framesampler/pkg/adapters/onnxmodel"
	"github.com/user/framesampler/pkg/adapters/prommetrics"
	"github.com/user/framesampler/pkg/config"
	"github.com/user/framesampler/pkg/ports"
)

// Exit codes.
const (
	exitOK        = 0
	exitFailure   = 1
	exitUsage     = 2
	exitModelLoad = 3
)

var version = "dev"

// CLI defines the command-line flags. Unset flags (nil pointers, empty
// strings) leave the configuration file and environment values in place.
type CLI struct {
	// Inputs
	Model     string   `name:"model" help:"ONNX model file (required)."`
	VideoFile []string `name:"video_file" sep:"none" help:"Video file to sample. Repeat for several files."`
	Image     string   `name:"image" help:"Classify a single JPEG image instead of a video."`
	Labels    string   `name:"labels" help:"Label file with one label per line."`
	Config    string   `name:"config" short:"c" help:"YAML configuration file."`

	// Sampling
	MaxPackets     *int   `name:"max_packets" help:"Video packets to process per file (default: 8)."`
	SampleInterval *int   `name:"sample_interval" help:"Classify every Nth decoded frame (default: 3)."`
	Backend        string `name:"backend" help:"Container backend (auto, mp4, ffmpeg)."`
	Converter      string `name:"converter" help:"Pixel converter (native, swscale)."`
	Jobs           *int   `name:"jobs" short:"j" help:"Video files processed concurrently (default: 1)."`

	// Model
	OnnxLib    string `name:"onnx_lib" help:"Path to the onnxruntime shared library."`
	InputName  string `name:"input_name" help:"Model input name (default: discovered)."`
	OutputName string `name:"output_name" help:"Model output name (default: discovered)."`
	TopK       *int   `name:"top_k" help:"Predictions reported per frame (0 = all)."`

	// Output
	SaveFrames *bool  `name:"save_frames" help:"Save sampled frames as frame<N>.jpg."`
	OutputDir  string `name:"output_dir" short:"o" help:"Directory for saved frames."`
	Annotate   *bool  `name:"annotate" help:"Draw the top predictions onto saved frames."`
	Report     string `name:"report" help:"Write a summary of every run (.md or .yaml)."`

	// Logging
	LogLevel    string `name:"log_level" short:"l" help:"Log level (debug, info, warn, error, quiet)."`
	LogFormat   string `name:"log_format" help:"Log format (console, json)."`
	MetricsAddr string `name:"metrics_addr" help:"Serve Prometheus metrics on this address (e.g., :9090)."`

	Version kong.VersionFlag `name:"version" help:"Show version information."`
}

// usageError marks errors caused by invalid command-line input.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...interface{}) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	var cli CLI
	exitCode := -1
	parser, err := newParser(&cli, stdout, stderr, func(code int) { exitCode = code })
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
	kctx, err := parser.Parse(args)
	if exitCode >= 0 {
		// --help or --version
		return exitCode
	}
	if err != nil {
		fmt.Fprintln(stderr, l10n.F("Error: %s", err))
		var pe *kong.ParseError
		if errors.As(err, &pe) && pe.Context != nil {
			pe.Context.PrintUsage(true)
		}
		return exitUsage
	}

	cfg, err := cli.resolve()
	if err != nil {
		fmt.Fprintln(stderr, l10n.F("Error: %s", err))
		var ue *usageError
		if errors.As(err, &ue) || errors.Is(err, config.ErrInvalid) {
			kctx.PrintUsage(true)
			return exitUsage
		}
		return exitFailure
	}

	log, syncLog, err := newLogger(cfg, stdout, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
	defer syncLog()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	observer := prommetrics.New()
	if cfg.MetricsAddr != "" {
		srv, err := prommetrics.Listen(cfg.MetricsAddr, observer.Handler(), log)
		if err != nil {
			log.Error("Failed to start metrics server: %s", err)
			return exitFailure
		}
		log.Info("Serving metrics on %s", srv.Addr())
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	model, err := onnxmodel.Load(modelConfig(cfg), log)
	if err != nil {
		log.Error("Failed to load model: %s", err)
		return exitModelLoad
	}
	defer model.Close()

	if cli.Image != "" {
		if err := classifyImage(ctx, cli.Image, model, stdout, log); err != nil {
			log.Error("%s", err)
			return exitFailure
		}
		return exitOK
	}

	if err := sampleVideos(ctx, cfg, cli.VideoFile, model, observer, log); err != nil {
		log.Error("%s", err)
		return exitFailure
	}
	return exitOK
}

func newParser(cli *CLI, stdout, stderr io.Writer, exit func(int)) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("framesampler"),
		kong.Description(l10n.T("Sample frames from video files and classify them with an ONNX model.")),
		kong.Vars{"version": version},
		kong.Writers(stdout, stderr),
		kong.Exit(exit),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)
}

// resolve merges defaults, the config file, the environment and the
// flags, then validates the result.
func (c *CLI) resolve() (config.Config, error) {
	if len(c.VideoFile) == 0 && c.Image == "" {
		return config.Config{}, usagef("%s", l10n.T("either --video_file or --image is required"))
	}
	if len(c.VideoFile) > 0 && c.Image != "" {
		return config.Config{}, usagef("%s", l10n.T("--video_file and --image cannot be used together"))
	}
	if c.Image != "" && !isJPEG(c.Image) {
		return config.Config{}, usagef("%s", l10n.F("--image must be a .jpg or .jpeg file: %s", c.Image))
	}

	cfg, err := config.Load(c.Config)
	if err != nil {
		return cfg, fmt.Errorf("load configuration: %w", err)
	}
	c.apply(&cfg)

	if cfg.Model == "" {
		return cfg, usagef("%s", l10n.T("--model is required"))
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// apply copies every flag that was given onto cfg.
func (c *CLI) apply(cfg *config.Config) {
	setString(&cfg.Model, c.Model)
	setString(&cfg.Labels, c.Labels)
	setInt(&cfg.MaxPackets, c.MaxPackets)
	setInt(&cfg.SampleInterval, c.SampleInterval)
	setInt(&cfg.Jobs, c.Jobs)
	setInt(&cfg.TopK, c.TopK)
	setString(&cfg.Backend, c.Backend)
	setString(&cfg.Converter, c.Converter)
	setString(&cfg.OnnxLibrary, c.OnnxLib)
	setString(&cfg.InputName, c.InputName)
	setString(&cfg.OutputName, c.OutputName)
	setString(&cfg.OutputDir, c.OutputDir)
	setString(&cfg.Report, c.Report)
	setString(&cfg.LogLevel, c.LogLevel)
	setString(&cfg.LogFormat, c.LogFormat)
	setString(&cfg.MetricsAddr, c.MetricsAddr)
	if c.SaveFrames != nil {
		cfg.SaveFrames = *c.SaveFrames
	}
	if c.Annotate != nil {
		cfg.Annotate = *c.Annotate
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func isJPEG(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return true
	}
	return false
}

// newLogger builds the configured logger and a function flushing it.
func newLogger(cfg config.Config, stdout, stderr io.Writer) (ports.Logger, func(), error) {
	level := ports.ParseLogLevel(cfg.LogLevel)
	if level == ports.LevelQuiet {
		return logger.NewNoop(), func() {}, nil
	}
	if cfg.LogFormat == config.LogFormatJSON {
		z, err := logger.NewZap(level)
		if err != nil {
			return nil, nil, fmt.Errorf("create logger: %w", err)
		}
		return z, func() { z.Sync() }, nil
	}
	return logger.NewConsoleWriter(level, stdout, stderr), func() {}, nil
}

func modelConfig(cfg config.Config) onnxmodel.Config {
	return onnxmodel.Config{
		ModelPath:   cfg.Model,
		LabelsPath:  cfg.Labels,
		LibraryPath: cfg.OnnxLibrary,
		InputName:   cfg.InputName,
		OutputName:  cfg.OutputName,
		Width:       cfg.InputWidth,
		Height:      cfg.InputHeight,
		TopK:        cfg.TopK,
	}
}
