package ports

import (
	"context"
	"errors"
)

// Prediction is one scored class.
type Prediction struct {
	ClassID int
	Label   string
	Score   float32
}

// Inferencer classifies converted frames.
type Inferencer interface {
	// Ready reports whether the model and labels are loaded.
	Ready() bool

	// Infer returns predictions sorted by descending score.
	// Errors wrapped with Unrecoverable abort the caller's loop.
	Infer(ctx context.Context, img *RGBImage) ([]Prediction, error)

	// Close releases the model.
	Close() error
}

type unrecoverableError struct {
	err error
}

func (e *unrecoverableError) Error() string { return e.err.Error() }

func (e *unrecoverableError) Unwrap() []error { return []error{ErrUnrecoverable, e.err} }

// Unrecoverable marks err so that errors.Is(err, ErrUnrecoverable) holds.
func Unrecoverable(err error) error {
	if err == nil {
		return nil
	}
	return &unrecoverableError{err: err}
}

// IsUnrecoverable reports whether err was marked with Unrecoverable.
func IsUnrecoverable(err error) bool {
	return errors.Is(err, ErrUnrecoverable)
}
