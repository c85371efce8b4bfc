//go:build !cgo

package ffmpeg

import (
	"context"

	"github.com/user/framesampler/pkg/ports"
	"github.com/user/framesampler/pkg/registry"
)

// Provider registers nothing when built without cgo.
func Provider(logger ports.Logger) registry.Provider {
	return func(r *registry.Registry) error {
		logger.WithComponent("ffmpeg").Debug("FFmpeg backend unavailable in this build")
		return nil
	}
}

// Opener is unavailable without cgo.
type Opener struct{}

// NewOpener creates an Opener whose Open always fails.
func NewOpener(logger ports.Logger) *Opener {
	return &Opener{}
}

// Open returns ErrUnavailable.
func (o *Opener) Open(ctx context.Context, path string) (ports.ContainerReader, error) {
	return nil, ErrUnavailable
}

// NewSession returns a session whose Configure fails with ErrUnavailable.
func NewSession(logger ports.Logger) ports.DecoderSession {
	return &stubSession{}
}

type stubSession struct {
	closed bool
}

func (s *stubSession) Configure(ports.StreamDescriptor) error { return ErrUnavailable }
func (s *stubSession) Open() error                            { return ErrUnavailable }
func (s *stubSession) Submit(*ports.Packet) error             { return ErrUnavailable }
func (s *stubSession) Flush() error                           { return ErrUnavailable }
func (s *stubSession) Receive() (ports.ReceiveResult, error) {
	return ports.ReceiveResult{}, ErrUnavailable
}
func (s *stubSession) FrameCount() int { return 0 }
func (s *stubSession) State() ports.SessionState {
	if s.closed {
		return ports.SessionClosed
	}
	return ports.SessionUnopened
}
func (s *stubSession) Close() error {
	s.closed = true
	return nil
}

// NewConverter returns a converter whose Convert fails with ErrUnavailable.
func NewConverter(logger ports.Logger) ports.PixelConverter {
	return stubConverter{}
}

type stubConverter struct{}

func (stubConverter) Convert(*ports.Frame, ports.PixelFormat) (*ports.RGBImage, error) {
	return nil, ErrUnavailable
}
func (stubConverter) Close() error { return nil }
