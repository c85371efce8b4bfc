//go:build cgo

package ffmpeg

import (
	"errors"
	"fmt"
	"sync"

	"github.com/asticode/go-astiav"
	"github.com/user/framesampler/pkg/ports"
)

// Session implements ports.DecoderSession on an AVCodecContext.
type Session struct {
	logger ports.Logger
	state  ports.SessionState

	stream ports.StreamDescriptor
	codec  *astiav.Codec
	cc     *astiav.CodecContext
	pkt    *astiav.Packet
	frame  *astiav.Frame

	frames int
	bufs   sync.Pool
}

// NewSession creates an unopened session.
func NewSession(logger ports.Logger) ports.DecoderSession {
	return &Session{logger: logger.WithComponent("decoder")}
}

// Configure allocates the codec context and copies the stream parameters.
func (s *Session) Configure(stream ports.StreamDescriptor) error {
	if s.state != ports.SessionUnopened {
		return fmt.Errorf("%w: configure in state %s", ports.ErrInvalidState, s.state)
	}
	if !stream.IsVideo() {
		return fmt.Errorf("%w: stream %d is %s", ports.ErrParameterMismatch, stream.Index, stream.MediaType)
	}
	id, ok := toAstiavCodec(stream.Codec)
	if !ok {
		return fmt.Errorf("%w: %w: %s", ports.ErrParameterMismatch, ports.ErrUnsupportedCodec, stream.Codec)
	}
	codec := astiav.FindDecoder(id)
	if codec == nil {
		return fmt.Errorf("%w: %w: no decoder for %s", ports.ErrParameterMismatch, ports.ErrUnsupportedCodec, stream.Codec)
	}

	cc := astiav.AllocCodecContext(codec)
	if cc == nil {
		return fmt.Errorf("%w: codec context: %w", ports.ErrResourceAllocation, errAlloc)
	}
	if cp, ok := stream.Params.(*astiav.CodecParameters); ok && cp != nil {
		if err := cp.ToCodecContext(cc); err != nil {
			cc.Free()
			return fmt.Errorf("%w: copy codec parameters: %v", ports.ErrParameterMismatch, err)
		}
	} else {
		cc.SetWidth(stream.Width)
		cc.SetHeight(stream.Height)
		if len(stream.Extradata) > 0 {
			if err := cc.SetExtraData(stream.Extradata); err != nil {
				cc.Free()
				return fmt.Errorf("%w: extradata: %v", ports.ErrParameterMismatch, err)
			}
		}
	}

	s.stream = stream
	s.codec = codec
	s.cc = cc
	s.state = ports.SessionConfigured
	s.logger.Debug("Configured %s decoder for stream %d (%dx%d)", codec.Name(), stream.Index, stream.Width, stream.Height)
	return nil
}

// Open opens the codec and allocates the reusable packet and frame.
func (s *Session) Open() error {
	if s.state != ports.SessionConfigured {
		return fmt.Errorf("%w: open in state %s", ports.ErrInvalidState, s.state)
	}
	if err := s.cc.Open(s.codec, nil); err != nil {
		return fmt.Errorf("%w: %s: %v", ports.ErrCodecInit, s.codec.Name(), err)
	}
	if s.pkt = astiav.AllocPacket(); s.pkt == nil {
		return fmt.Errorf("%w: packet: %w", ports.ErrResourceAllocation, errAlloc)
	}
	if s.frame = astiav.AllocFrame(); s.frame == nil {
		return fmt.Errorf("%w: frame: %w", ports.ErrResourceAllocation, errAlloc)
	}
	s.state = ports.SessionOpened
	return nil
}

// Submit sends one packet to the decoder.
func (s *Session) Submit(p *ports.Packet) error {
	if s.state != ports.SessionOpened {
		return fmt.Errorf("%w: submit in state %s", ports.ErrInvalidState, s.state)
	}
	if p == nil || len(p.Data) == 0 {
		return nil
	}
	if err := s.pkt.FromData(p.Data); err != nil {
		return fmt.Errorf("%w: packet buffer: %v", ports.ErrResourceAllocation, err)
	}
	defer s.pkt.Unref()
	s.pkt.SetPts(p.PTS)
	s.pkt.SetStreamIndex(p.StreamIndex)

	if err := s.cc.SendPacket(s.pkt); err != nil {
		return fmt.Errorf("%w: send packet: %v", ports.ErrDecode, err)
	}
	return nil
}

// Flush enters draining mode.
func (s *Session) Flush() error {
	if s.state != ports.SessionOpened {
		return fmt.Errorf("%w: flush in state %s", ports.ErrInvalidState, s.state)
	}
	if err := s.cc.SendPacket(nil); err != nil && !errors.Is(err, astiav.ErrEof) {
		return fmt.Errorf("%w: flush: %v", ports.ErrDecode, err)
	}
	return nil
}

// Receive returns the next frame copied into a pooled Go buffer.
func (s *Session) Receive() (ports.ReceiveResult, error) {
	if s.state != ports.SessionOpened {
		return ports.ReceiveResult{}, fmt.Errorf("%w: receive in state %s", ports.ErrInvalidState, s.state)
	}
	if err := s.cc.ReceiveFrame(s.frame); err != nil {
		switch {
		case errors.Is(err, astiav.ErrEagain):
			return ports.NeedMoreInput(), nil
		case errors.Is(err, astiav.ErrEof):
			return ports.EndOfStream(), nil
		}
		return ports.ReceiveResult{}, fmt.Errorf("%w: receive frame: %v", ports.ErrDecode, err)
	}
	defer s.frame.Unref()

	size, err := s.frame.ImageBufferSize(1)
	if err != nil {
		return ports.ReceiveResult{}, fmt.Errorf("%w: image buffer size: %v", ports.ErrDecode, err)
	}
	bufp := s.buffer(size)
	if _, err := s.frame.ImageCopyToBuffer(*bufp, 1); err != nil {
		s.bufs.Put(bufp)
		return ports.ReceiveResult{}, fmt.Errorf("%w: copy frame: %v", ports.ErrDecode, err)
	}

	s.frames++
	f := ports.NewFrame(
		s.frame.Width(),
		s.frame.Height(),
		ports.PixelFormat(s.frame.PixelFormat().String()),
		*bufp,
		func() { s.bufs.Put(bufp) },
	)
	f.Number = s.frames
	f.PTS = s.frame.Pts()
	f.KeyFrame = s.frame.Flags().Has(astiav.FrameFlagKey)
	return ports.FrameReady(f), nil
}

// buffer returns a pooled buffer of exactly size bytes.
func (s *Session) buffer(size int) *[]byte {
	if v := s.bufs.Get(); v != nil {
		bufp := v.(*[]byte)
		if cap(*bufp) >= size {
			*bufp = (*bufp)[:size]
			return bufp
		}
	}
	b := make([]byte, size)
	return &b
}

// FrameCount returns the number of frames decoded so far.
func (s *Session) FrameCount() int {
	return s.frames
}

// State returns the lifecycle state.
func (s *Session) State() ports.SessionState {
	return s.state
}

// Close frees the frame, the packet and the codec context.
func (s *Session) Close() error {
	if s.state == ports.SessionClosed {
		return nil
	}
	if s.frame != nil {
		s.frame.Free()
		s.frame = nil
	}
	if s.pkt != nil {
		s.pkt.Free()
		s.pkt = nil
	}
	if s.cc != nil {
		s.cc.Free()
		s.cc = nil
	}
	s.state = ports.SessionClosed
	s.logger.Debug("Closed decoder after %d frames", s.frames)
	return nil
}

var _ ports.DecoderSession = (*Session)(nil)
