//go:build !cgo

package onnxmodel

import (
	"context"

	"github.com/user/framesampler/pkg/ports"
)

// Model is unavailable without cgo.
type Model struct{}

// Load always fails with ErrUnavailable.
func Load(cfg Config, logger ports.Logger) (*Model, error) {
	return nil, ErrUnavailable
}

func (m *Model) Ready() bool {
	return false
}

func (m *Model) Infer(ctx context.Context, img *ports.RGBImage) ([]ports.Prediction, error) {
	return nil, ports.Unrecoverable(ErrUnavailable)
}

func (m *Model) Close() error {
	return nil
}

var _ ports.Inferencer = (*Model)(nil)
