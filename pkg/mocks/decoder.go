package mocks

import (
	"fmt"

	"github.com/user/framesampler/pkg/ports"
)

// DecoderSession is a scripted ports.DecoderSession. Each submitted packet
// yields FramesFor(n) frames, where n is the 1-based submit count; Flush
// yields FlushFrames more. The lifecycle is enforced like a real session.
type DecoderSession struct {
	Width  int
	Height int
	Format ports.PixelFormat

	FramesFor   func(submit int) int // nil means one frame per packet
	FlushFrames int

	ConfigureErr error
	OpenErr      error
	SubmitErrAt  int // 1-based submit call that fails with SubmitErr
	SubmitErr    error
	ReceiveErr   error

	// Recorded calls for verification
	Configured     *ports.StreamDescriptor
	SubmitCalls    int
	FlushCalls     int
	CloseCalls     int
	FramesReleased int

	state   ports.SessionState
	pending int
	flushed bool
	count   int
}

// NewDecoderSession creates a session emitting 4x4 yuv420p frames.
func NewDecoderSession() *DecoderSession {
	return &DecoderSession{Width: 4, Height: 4, Format: ports.PixelFormatYUV420P}
}

func (m *DecoderSession) Configure(stream ports.StreamDescriptor) error {
	if m.state != ports.SessionUnopened {
		return fmt.Errorf("%w: configure in state %s", ports.ErrInvalidState, m.state)
	}
	if m.ConfigureErr != nil {
		return m.ConfigureErr
	}
	m.Configured = &stream
	m.state = ports.SessionConfigured
	return nil
}

func (m *DecoderSession) Open() error {
	if m.state != ports.SessionConfigured {
		return fmt.Errorf("%w: open in state %s", ports.ErrInvalidState, m.state)
	}
	if m.OpenErr != nil {
		return m.OpenErr
	}
	m.state = ports.SessionOpened
	return nil
}

func (m *DecoderSession) Submit(pkt *ports.Packet) error {
	if m.state != ports.SessionOpened || m.flushed {
		return fmt.Errorf("%w: submit in state %s", ports.ErrInvalidState, m.state)
	}
	m.SubmitCalls++
	if m.SubmitErrAt > 0 && m.SubmitCalls == m.SubmitErrAt {
		return m.SubmitErr
	}
	if m.FramesFor != nil {
		m.pending += m.FramesFor(m.SubmitCalls)
	} else {
		m.pending++
	}
	return nil
}

func (m *DecoderSession) Flush() error {
	if m.state != ports.SessionOpened {
		return fmt.Errorf("%w: flush in state %s", ports.ErrInvalidState, m.state)
	}
	m.FlushCalls++
	if !m.flushed {
		m.flushed = true
		m.pending += m.FlushFrames
	}
	return nil
}

func (m *DecoderSession) Receive() (ports.ReceiveResult, error) {
	if m.state != ports.SessionOpened {
		return ports.ReceiveResult{}, fmt.Errorf("%w: receive in state %s", ports.ErrInvalidState, m.state)
	}
	if m.ReceiveErr != nil {
		return ports.ReceiveResult{}, m.ReceiveErr
	}
	if m.pending == 0 {
		if m.flushed {
			return ports.EndOfStream(), nil
		}
		return ports.NeedMoreInput(), nil
	}
	m.pending--
	m.count++

	layout, _ := ports.PlaneLayout(m.Format, m.Width, m.Height)
	data := make([]byte, layout.Size())
	for i := range data {
		data[i] = byte(m.count)
	}
	f := ports.NewFrame(m.Width, m.Height, m.Format, data, func() { m.FramesReleased++ })
	f.Number = m.count
	f.PTS = int64(m.count - 1)
	return ports.FrameReady(f), nil
}

func (m *DecoderSession) FrameCount() int {
	return m.count
}

func (m *DecoderSession) State() ports.SessionState {
	return m.state
}

func (m *DecoderSession) Close() error {
	m.CloseCalls++
	m.state = ports.SessionClosed
	return nil
}

var _ ports.DecoderSession = (*DecoderSession)(nil)
