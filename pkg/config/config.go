// Package config provides configuration loading and management.
//
// Values are resolved in order: Defaults, then the YAML file, then
// FRAMESAMPLER_* environment variables. Command-line flags are applied
// by the caller on top.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/user/framesampler/pkg/orchestrator"
	"github.com/user/framesampler/pkg/ports"
	"github.com/user/framesampler/pkg/summarizer"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "FRAMESAMPLER_"

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("config: invalid")

// Backends and converters accepted by Validate.
const (
	BackendAuto   = "auto"
	BackendMP4    = "mp4"
	BackendFFmpeg = "ffmpeg"

	ConverterNative  = "native"
	ConverterSwscale = "swscale"

	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Config represents the full configuration for framesampler.
type Config struct {
	// Model
	Model       string `yaml:"model" env:"MODEL"`
	Labels      string `yaml:"labels" env:"LABELS"`
	OnnxLibrary string `yaml:"onnx_library" env:"ONNX_LIBRARY"`
	InputName   string `yaml:"input_name" env:"INPUT_NAME"`
	OutputName  string `yaml:"output_name" env:"OUTPUT_NAME"`
	InputWidth  int    `yaml:"input_width" env:"INPUT_WIDTH"`
	InputHeight int    `yaml:"input_height" env:"INPUT_HEIGHT"`
	TopK        int    `yaml:"top_k" env:"TOP_K"`

	// Sampling
	MaxPackets     int    `yaml:"max_packets" env:"MAX_PACKETS"`
	SampleInterval int    `yaml:"sample_interval" env:"SAMPLE_INTERVAL"`
	Backend        string `yaml:"backend" env:"BACKEND"`
	Converter      string `yaml:"converter" env:"CONVERTER"`
	Jobs           int    `yaml:"jobs" env:"JOBS"`

	// Output
	SaveFrames    bool   `yaml:"save_frames" env:"SAVE_FRAMES"`
	OutputDir     string `yaml:"output_dir" env:"OUTPUT_DIR"`
	Annotate      bool   `yaml:"annotate" env:"ANNOTATE"`
	AnnotateColor string `yaml:"annotate_color" env:"ANNOTATE_COLOR"`
	JPEGQuality   int    `yaml:"jpeg_quality" env:"JPEG_QUALITY"`
	Report        string `yaml:"report" env:"REPORT"` // .md or .yaml summary of every run

	// Observability
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat   string `yaml:"log_format" env:"LOG_FORMAT"`
	MetricsAddr string `yaml:"metrics_addr" env:"METRICS_ADDR"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	def := orchestrator.DefaultConfig()
	return Config{
		InputWidth:  96,
		InputHeight: 96,

		MaxPackets:     def.MaxPackets,
		SampleInterval: def.SampleInterval,
		Backend:        BackendAuto,
		Converter:      ConverterNative,
		Jobs:           1,

		OutputDir:     ".",
		AnnotateColor: "#ffffff",
		JPEGQuality:   90,

		LogLevel:  "info",
		LogFormat: LogFormatConsole,
	}
}

// LoadFromFile loads configuration from a YAML file over Defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// ApplyEnv overrides cfg from FRAMESAMPLER_* variables of the process
// environment. Unset variables leave fields untouched.
func ApplyEnv(cfg *Config) error {
	return ApplyEnvFrom(cfg, nil)
}

// ApplyEnvFrom is ApplyEnv over an explicit environment.
// A nil environ reads the process environment.
func ApplyEnvFrom(cfg *Config, environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	return nil
}

// Load resolves Defaults, the optional file at path and the environment.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return cfg, err
		}
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalid}, args...)...))
		}
	}

	check(c.MaxPackets > 0, "max_packets must be positive, got %d", c.MaxPackets)
	check(c.SampleInterval > 0, "sample_interval must be positive, got %d", c.SampleInterval)
	check(c.Jobs > 0, "jobs must be positive, got %d", c.Jobs)
	check(c.TopK >= 0, "top_k must not be negative, got %d", c.TopK)
	check(c.InputWidth > 0 && c.InputHeight > 0, "model input must be positive, got %dx%d", c.InputWidth, c.InputHeight)
	check(c.JPEGQuality >= 1 && c.JPEGQuality <= 100, "jpeg_quality must be 1-100, got %d", c.JPEGQuality)
	check(oneOf(c.Backend, BackendAuto, BackendMP4, BackendFFmpeg), "unknown backend %q", c.Backend)
	check(oneOf(c.Converter, ConverterNative, ConverterSwscale), "unknown converter %q", c.Converter)
	check(oneOf(c.LogFormat, LogFormatConsole, LogFormatJSON), "unknown log format %q", c.LogFormat)
	if _, err := ports.LookupLogLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalid, err))
	}
	if c.Report != "" {
		_, err := summarizer.ForPath(c.Report)
		check(err == nil, "report %q must end in .md or .yaml", c.Report)
	}
	if c.AnnotateColor != "" {
		_, err := ParseColor(c.AnnotateColor)
		check(err == nil, "annotate_color %q is not #rrggbb", c.AnnotateColor)
	}

	return errors.Join(errs...)
}

func oneOf(v string, options ...string) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}

// ParseColor parses a #rrggbb string.
func ParseColor(hex string) (color.RGBA, error) {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("color %q: want 6 hex digits", hex)
	}

	var rgb [3]uint8
	for i := range rgb {
		hi, ok1 := hexValue(hex[2*i])
		lo, ok2 := hexValue(hex[2*i+1])
		if !ok1 || !ok2 {
			return color.RGBA{}, fmt.Errorf("color %q: invalid digit", hex)
		}
		rgb[i] = hi<<4 | lo
	}
	return color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}, nil
}

func hexValue(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// ToOrchestratorConfig converts Config to orchestrator.Config.
func (c Config) ToOrchestratorConfig() orchestrator.Config {
	return orchestrator.Config{
		MaxPackets:     c.MaxPackets,
		SampleInterval: c.SampleInterval,
		TargetFormat:   ports.PixelFormatRGB24,
	}
}
