//go:build cgo

package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/asticode/go-astiav"
	"github.com/user/framesampler/pkg/ports"
)

// Opener opens any container libavformat can probe.
type Opener struct {
	logger ports.Logger
}

// NewOpener creates an Opener.
func NewOpener(logger ports.Logger) *Opener {
	return &Opener{logger: logger.WithComponent("ffmpeg")}
}

// Open opens path, reads the header and probes stream info.
func (o *Opener) Open(ctx context.Context, path string) (ports.ContainerReader, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w: %s", ports.ErrContainerOpen, ports.ErrContainerNotFound, path)
		}
		return nil, fmt.Errorf("%w: %w: %v", ports.ErrContainerOpen, ports.ErrContainerUnreadable, err)
	}

	fc := astiav.AllocFormatContext()
	if fc == nil {
		return nil, fmt.Errorf("%w: format context: %w", ports.ErrResourceAllocation, errAlloc)
	}
	if err := fc.OpenInput(path, nil, nil); err != nil {
		fc.Free()
		return nil, fmt.Errorf("%w: %w: %v", ports.ErrContainerOpen, ports.ErrContainerUnreadable, err)
	}
	if err := fc.FindStreamInfo(nil); err != nil {
		fc.CloseInput()
		fc.Free()
		return nil, fmt.Errorf("%w: %w: %v", ports.ErrContainerOpen, ports.ErrCorruptHeader, err)
	}

	pkt := astiav.AllocPacket()
	if pkt == nil {
		fc.CloseInput()
		fc.Free()
		return nil, fmt.Errorf("%w: packet: %w", ports.ErrResourceAllocation, errAlloc)
	}

	r := &Reader{fc: fc, pkt: pkt}
	r.info = describe(fc)
	o.logger.Debug("Opened %s: %d streams (%s)", path, len(r.info.Streams), r.info.FormatName)
	return r, nil
}

var _ ports.ContainerOpener = (*Opener)(nil)

func describe(fc *astiav.FormatContext) ports.ContainerInfo {
	info := ports.ContainerInfo{}
	if f := fc.InputFormat(); f != nil {
		info.FormatName = f.Name()
	}
	if d := fc.Duration(); d > 0 {
		info.Duration = time.Duration(d) * time.Microsecond
	}
	for _, s := range fc.Streams() {
		cp := s.CodecParameters()
		tb := s.TimeBase()
		info.Streams = append(info.Streams, ports.StreamDescriptor{
			Index:     s.Index(),
			MediaType: fromAstiavMediaType(cp.MediaType()),
			Codec:     fromAstiavCodec(cp.CodecID()),
			Width:     cp.Width(),
			Height:    cp.Height(),
			BitRate:   cp.BitRate(),
			TimeBase:  ports.Rational{Num: tb.Num(), Den: tb.Den()},
			Params:    cp,
		})
	}
	return info
}

// Reader implements ports.ContainerReader on an AVFormatContext.
type Reader struct {
	fc     *astiav.FormatContext
	pkt    *astiav.Packet
	info   ports.ContainerInfo
	closed bool
}

// Info returns the container metadata.
func (r *Reader) Info() ports.ContainerInfo {
	return r.info
}

// NextPacket reads the next packet. The payload is copied out and the
// AVPacket unreferenced before returning.
func (r *Reader) NextPacket() (*ports.Packet, error) {
	if r.closed {
		return nil, errors.New("ffmpeg: reader closed")
	}
	if err := r.fc.ReadFrame(r.pkt); err != nil {
		if errors.Is(err, astiav.ErrEof) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: read frame: %v", ports.ErrContainerUnreadable, err)
	}
	defer r.pkt.Unref()

	return ports.NewPacket(
		r.pkt.StreamIndex(),
		r.pkt.Data(),
		r.pkt.Pts(),
		r.pkt.Flags().Has(astiav.PacketFlagKey),
		nil,
	), nil
}

// Close frees the packet and the format context. Calling it twice is a no-op.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.pkt.Free()
	r.fc.CloseInput()
	r.fc.Free()
	return nil
}

var _ ports.ContainerReader = (*Reader)(nil)
