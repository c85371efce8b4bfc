// Package onnxmodel classifies frames with an ONNX image classification
// model run through ONNX Runtime.
//
// The model takes one NHWC float32 picture with raw 0..255 channel values
// and produces one score per label.
package onnxmodel

import (
	"errors"
)

// ErrUnavailable is returned by Load when the binary was built without cgo.
var ErrUnavailable = errors.New("onnxmodel: ONNX Runtime support not compiled in")

// Config describes the model to load.
type Config struct {
	ModelPath   string
	LabelsPath  string // optional; scores are reported as "class N" without it
	LibraryPath string // onnxruntime shared library; empty uses the platform default

	// InputName and OutputName override the names discovered from the model.
	InputName  string
	OutputName string

	// Width and Height are used when the model input shape is dynamic.
	Width  int
	Height int

	// TopK limits the predictions returned per frame; zero returns all.
	TopK int
}

// DefaultConfig returns a Config for a 96x96 model.
func DefaultConfig() Config {
	return Config{Width: 96, Height: 96}
}
