//go:build cgo

package onnxmodel

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/user/framesampler/pkg/ports"
)

var (
	envOnce sync.Once
	envErr  error
)

// initEnvironment loads the runtime library once per process.
func initEnvironment(libraryPath string) error {
	envOnce.Do(func() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		envErr = ort.InitializeEnvironment()
	})
	return envErr
}

// Model implements ports.Inferencer. Infer calls are serialized, so one
// Model may be shared by concurrent runs.
type Model struct {
	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]

	labels     []string
	width      int
	height     int
	topK       int
	inputName  string
	outputName string
	logger     ports.Logger
}

// Load reads the labels and model and prepares a session.
func Load(cfg Config, logger ports.Logger) (*Model, error) {
	logger = logger.WithComponent("onnx")

	var labels []string
	if cfg.LabelsPath != "" {
		var err error
		if labels, err = LoadLabels(cfg.LabelsPath); err != nil {
			return nil, err
		}
		logger.Debug("Loaded %d labels from %s", len(labels), cfg.LabelsPath)
	}

	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("model %s: %w", cfg.ModelPath, err)
	}
	if err := initEnvironment(cfg.LibraryPath); err != nil {
		return nil, fmt.Errorf("initialize onnxruntime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("inspect model %s: %w", cfg.ModelPath, err)
	}
	in, err := pick(inputs, cfg.InputName, "input")
	if err != nil {
		return nil, err
	}
	out, err := pick(outputs, cfg.OutputName, "output")
	if err != nil {
		return nil, err
	}

	width, height, err := inputSize(in.Dimensions, cfg.Width, cfg.Height)
	if err != nil {
		return nil, err
	}
	classes := outputSize(out.Dimensions)
	if classes <= 0 {
		classes = int64(len(labels))
	}
	if classes <= 0 {
		return nil, fmt.Errorf("output %s has no static size and no labels were given", out.Name)
	}
	if len(labels) > 0 && int64(len(labels)) != classes {
		logger.Warn("Model outputs %d scores but %d labels were loaded", classes, len(labels))
	}

	m := &Model{
		labels:     labels,
		width:      width,
		height:     height,
		topK:       cfg.TopK,
		inputName:  in.Name,
		outputName: out.Name,
		logger:     logger,
	}

	m.input, err = ort.NewEmptyTensor[float32](ort.NewShape(1, int64(height), int64(width), 3))
	if err != nil {
		return nil, fmt.Errorf("%w: input tensor: %w", ports.ErrResourceAllocation, err)
	}
	m.output, err = ort.NewEmptyTensor[float32](ort.NewShape(1, classes))
	if err != nil {
		m.input.Destroy()
		return nil, fmt.Errorf("%w: output tensor: %w", ports.ErrResourceAllocation, err)
	}
	m.session, err = ort.NewAdvancedSession(cfg.ModelPath,
		[]string{in.Name}, []string{out.Name},
		[]ort.Value{m.input}, []ort.Value{m.output}, nil)
	if err != nil {
		m.output.Destroy()
		m.input.Destroy()
		return nil, fmt.Errorf("create session: %w", err)
	}

	logger.Info("Model %s loaded: input %s %dx%d, output %s with %d classes",
		cfg.ModelPath, in.Name, width, height, out.Name, classes)
	return m, nil
}

func pick(infos []ort.InputOutputInfo, name, kind string) (ort.InputOutputInfo, error) {
	if len(infos) == 0 {
		return ort.InputOutputInfo{}, fmt.Errorf("model has no %s", kind)
	}
	if name == "" {
		return infos[0], nil
	}
	for _, info := range infos {
		if info.Name == name {
			return info, nil
		}
	}
	return ort.InputOutputInfo{}, fmt.Errorf("model has no %s named %q", kind, name)
}

// inputSize reads H and W from an NHWC input shape, falling back to the
// configured size for dynamic dimensions.
func inputSize(dims ort.Shape, width, height int) (int, int, error) {
	if len(dims) != 4 {
		return 0, 0, fmt.Errorf("model input has %d dimensions, want NHWC", len(dims))
	}
	if dims[3] != 3 && dims[3] > 0 {
		return 0, 0, fmt.Errorf("model input shape %v is not NHWC with 3 channels", []int64(dims))
	}
	if dims[1] > 0 {
		height = int(dims[1])
	}
	if dims[2] > 0 {
		width = int(dims[2])
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("model input size unknown")
	}
	return width, height, nil
}

// outputSize returns the product of the static output dimensions, or -1.
func outputSize(dims ort.Shape) int64 {
	n := int64(1)
	for i, d := range dims {
		if d <= 0 {
			if i == 0 {
				continue
			}
			return -1
		}
		n *= d
	}
	return n
}

// Ready reports whether the session is usable.
func (m *Model) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil
}

// Infer classifies img.
func (m *Model) Infer(ctx context.Context, img *ports.RGBImage) ([]ports.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, ports.Unrecoverable(ports.ErrModelNotReady)
	}

	if err := Preprocess(img, m.width, m.height, m.input.GetData()); err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}
	if err := m.session.Run(); err != nil {
		return nil, fmt.Errorf("run session: %w", err)
	}

	scores := m.output.GetData()
	return TopK(scores, m.labels, m.topK), nil
}

// Close destroys the session and its tensors.
func (m *Model) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	err := errors.Join(m.session.Destroy(), m.input.Destroy(), m.output.Destroy())
	m.session = nil
	return err
}

var _ ports.Inferencer = (*Model)(nil)
