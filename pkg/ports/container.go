package ports

import (
	"context"
	"time"
)

// MediaType classifies an elementary stream.
type MediaType int

const (
	MediaTypeUnknown MediaType = iota
	MediaTypeVideo
	MediaTypeAudio
	MediaTypeSubtitle
	MediaTypeData
)

// String returns the string representation of the media type.
func (m MediaType) String() string {
	switch m {
	case MediaTypeVideo:
		return "video"
	case MediaTypeAudio:
		return "audio"
	case MediaTypeSubtitle:
		return "subtitle"
	case MediaTypeData:
		return "data"
	default:
		return "unknown"
	}
}

// CodecID identifies the compression format of a stream.
// Values follow the libavcodec short names.
type CodecID string

const (
	CodecUnknown    CodecID = ""
	CodecH264       CodecID = "h264"
	CodecHEVC       CodecID = "hevc"
	CodecAV1        CodecID = "av1"
	CodecVP8        CodecID = "vp8"
	CodecVP9        CodecID = "vp9"
	CodecMPEG4      CodecID = "mpeg4"
	CodecMPEG2Video CodecID = "mpeg2video"
	CodecMJPEG      CodecID = "mjpeg"
	CodecAAC        CodecID = "aac"
	CodecMP3        CodecID = "mp3"
	CodecOpus       CodecID = "opus"
)

// String returns the codec name, or "unknown".
func (c CodecID) String() string {
	if c == CodecUnknown {
		return "unknown"
	}
	return string(c)
}

// Rational is a fraction used for time bases.
type Rational struct {
	Num int
	Den int
}

// StreamDescriptor describes one elementary stream of an open container.
// Descriptors are immutable once the container header has been parsed.
type StreamDescriptor struct {
	Index     int // Container order, stable for the life of the handle
	MediaType MediaType
	Codec     CodecID
	CodecTag  string // Sample entry 4CC when the container exposes one
	Width     int
	Height    int
	BitRate   int64
	TimeBase  Rational
	Extradata []byte

	// Params is the backend's native codec parameters, owned by the
	// container. Decoders from the same backend configure from it.
	Params any
}

// IsVideo reports whether the stream carries pictures.
func (s StreamDescriptor) IsVideo() bool {
	return s.MediaType == MediaTypeVideo
}

// ContainerInfo is the metadata of an open container.
type ContainerInfo struct {
	FormatName string
	Duration   time.Duration
	Streams    []StreamDescriptor
}

// Packet is one compressed access unit.
// Packets must not be retained after Release.
type Packet struct {
	StreamIndex int
	Data        []byte
	PTS         int64
	KeyFrame    bool

	release func()
}

// NewPacket creates a packet whose Release calls release once.
func NewPacket(streamIndex int, data []byte, pts int64, key bool, release func()) *Packet {
	return &Packet{
		StreamIndex: streamIndex,
		Data:        data,
		PTS:         pts,
		KeyFrame:    key,
		release:     release,
	}
}

// Release hands the payload back to its owner. Calling it twice is a no-op.
func (p *Packet) Release() {
	if p == nil {
		return
	}
	if p.release != nil {
		p.release()
		p.release = nil
	}
	p.Data = nil
}

// ContainerReader is an open container.
// It is not safe for concurrent use.
type ContainerReader interface {
	// Info returns the container metadata computed at open time.
	Info() ContainerInfo

	// NextPacket returns the next packet in container order across all streams.
	// It returns io.EOF at end of stream.
	NextPacket() (*Packet, error)

	// Close releases the container handle.
	Close() error
}

// ContainerOpener opens containers by path.
type ContainerOpener interface {
	Open(ctx context.Context, path string) (ContainerReader, error)
}

// ContainerOpenerFunc adapts a function to ContainerOpener.
type ContainerOpenerFunc func(ctx context.Context, path string) (ContainerReader, error)

// Open implements ContainerOpener.
func (f ContainerOpenerFunc) Open(ctx context.Context, path string) (ContainerReader, error) {
	return f(ctx, path)
}
