package mocks

import (
	"context"
	"errors"

	"github.com/user/framesampler/pkg/ports"
)

// Inferencer is a mock implementation of ports.Inferencer.
type Inferencer struct {
	NotReady bool

	// FailCalls lists 1-based Infer calls that return an error.
	FailCalls map[int]bool
	// FailUnrecoverable marks injected failures as unrecoverable.
	FailUnrecoverable bool

	InferFunc func(ctx context.Context, img *ports.RGBImage) ([]ports.Prediction, error)

	// Recorded calls for verification
	InferCalls int
	CloseCalls int
}

func (m *Inferencer) Ready() bool {
	return !m.NotReady
}

func (m *Inferencer) Infer(ctx context.Context, img *ports.RGBImage) ([]ports.Prediction, error) {
	m.InferCalls++
	if m.FailCalls[m.InferCalls] {
		err := errors.New("mock inference failure")
		if m.FailUnrecoverable {
			err = ports.Unrecoverable(err)
		}
		return nil, err
	}
	if m.InferFunc != nil {
		return m.InferFunc(ctx, img)
	}
	return []ports.Prediction{
		{ClassID: 1, Label: "cat", Score: 0.9},
		{ClassID: 0, Label: "dog", Score: 0.1},
	}, nil
}

func (m *Inferencer) Close() error {
	m.CloseCalls++
	return nil
}

var _ ports.Inferencer = (*Inferencer)(nil)
