package ports

// PixelFormat names a picture layout using libavutil pixel format names.
type PixelFormat string

const (
	PixelFormatYUV420P  PixelFormat = "yuv420p"
	PixelFormatYUVJ420P PixelFormat = "yuvj420p"
	PixelFormatYUV422P  PixelFormat = "yuv422p"
	PixelFormatYUVJ422P PixelFormat = "yuvj422p"
	PixelFormatYUV444P  PixelFormat = "yuv444p"
	PixelFormatYUVJ444P PixelFormat = "yuvj444p"
	PixelFormatNV12     PixelFormat = "nv12"
	PixelFormatNV21     PixelFormat = "nv21"
	PixelFormatGray     PixelFormat = "gray"
	PixelFormatRGB24    PixelFormat = "rgb24"
	PixelFormatRGBA     PixelFormat = "rgba"
	PixelFormatBGRA     PixelFormat = "bgra"
)

// Frame is a decoded picture.
// Planes and Strides are populated for formats known to PlaneLayout;
// Data always holds the whole picture with planes packed at alignment 1.
type Frame struct {
	Width    int
	Height   int
	Format   PixelFormat
	Planes   [][]byte
	Strides  []int
	Data     []byte
	Number   int // 1-based, increases by one per successfully decoded frame
	PTS      int64
	KeyFrame bool

	release func()
}

// NewFrame builds a frame over a contiguous buffer packed at alignment 1.
// Planes are sliced out of data when the format has a known layout.
func NewFrame(width, height int, format PixelFormat, data []byte, release func()) *Frame {
	f := &Frame{
		Width:   width,
		Height:  height,
		Format:  format,
		Data:    data,
		release: release,
	}
	if layout, ok := PlaneLayout(format, width, height); ok && layout.Size() <= len(data) {
		off := 0
		for i := range layout.Strides {
			n := layout.Strides[i] * layout.Rows[i]
			f.Planes = append(f.Planes, data[off:off+n])
			f.Strides = append(f.Strides, layout.Strides[i])
			off += n
		}
	}
	return f
}

// Release hands the frame buffers back to the decoder. Calling it twice is a no-op.
func (f *Frame) Release() {
	if f == nil {
		return
	}
	if f.release != nil {
		f.release()
		f.release = nil
	}
	f.Planes = nil
	f.Data = nil
}

// Layout is the per-plane geometry of a packed picture.
type Layout struct {
	Strides []int
	Rows    []int
}

// Size returns the number of bytes of the whole picture.
func (l Layout) Size() int {
	n := 0
	for i := range l.Strides {
		n += l.Strides[i] * l.Rows[i]
	}
	return n
}

// PlaneLayout returns the plane geometry of format at alignment 1.
func PlaneLayout(format PixelFormat, width, height int) (Layout, bool) {
	if width <= 0 || height <= 0 {
		return Layout{}, false
	}
	cw, ch := (width+1)/2, (height+1)/2
	switch format {
	case PixelFormatYUV420P, PixelFormatYUVJ420P:
		return Layout{Strides: []int{width, cw, cw}, Rows: []int{height, ch, ch}}, true
	case PixelFormatYUV422P, PixelFormatYUVJ422P:
		return Layout{Strides: []int{width, cw, cw}, Rows: []int{height, height, height}}, true
	case PixelFormatYUV444P, PixelFormatYUVJ444P:
		return Layout{Strides: []int{width, width, width}, Rows: []int{height, height, height}}, true
	case PixelFormatNV12, PixelFormatNV21:
		return Layout{Strides: []int{width, cw * 2}, Rows: []int{height, ch}}, true
	case PixelFormatGray:
		return Layout{Strides: []int{width}, Rows: []int{height}}, true
	case PixelFormatRGB24:
		return Layout{Strides: []int{width * 3}, Rows: []int{height}}, true
	case PixelFormatRGBA, PixelFormatBGRA:
		return Layout{Strides: []int{width * 4}, Rows: []int{height}}, true
	}
	return Layout{}, false
}

// SessionState is the lifecycle state of a DecoderSession.
type SessionState int

const (
	SessionUnopened SessionState = iota
	SessionConfigured
	SessionOpened
	SessionClosed
)

// String returns the string representation of the state.
func (s SessionState) String() string {
	switch s {
	case SessionUnopened:
		return "unopened"
	case SessionConfigured:
		return "configured"
	case SessionOpened:
		return "opened"
	case SessionClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ReceiveStatus tags the outcome of DecoderSession.Receive.
type ReceiveStatus int

const (
	// StatusNeedMoreInput means no frame is available until more packets are submitted.
	StatusNeedMoreInput ReceiveStatus = iota
	// StatusFrameReady means Frame holds a decoded picture.
	StatusFrameReady
	// StatusEndOfStream means the decoder has been flushed and is drained.
	StatusEndOfStream
)

// String returns the string representation of the status.
func (s ReceiveStatus) String() string {
	switch s {
	case StatusNeedMoreInput:
		return "need-more-input"
	case StatusFrameReady:
		return "frame-ready"
	case StatusEndOfStream:
		return "end-of-stream"
	default:
		return "unknown"
	}
}

// ReceiveResult is the tagged result of one Receive call.
// Frame is non-nil only when Status is StatusFrameReady.
type ReceiveResult struct {
	Status ReceiveStatus
	Frame  *Frame
}

// NeedMoreInput is the result returned when the decoder has nothing to emit.
func NeedMoreInput() ReceiveResult { return ReceiveResult{Status: StatusNeedMoreInput} }

// EndOfStream is the result returned once a flushed decoder is drained.
func EndOfStream() ReceiveResult { return ReceiveResult{Status: StatusEndOfStream} }

// FrameReady wraps a decoded frame.
func FrameReady(f *Frame) ReceiveResult { return ReceiveResult{Status: StatusFrameReady, Frame: f} }

// DecoderSession owns the state of one decoder bound to one stream.
// State machine: Unopened -> Configured -> Opened -> Closed.
type DecoderSession interface {
	// Configure populates codec parameters from the stream.
	// Returns ErrParameterMismatch when the stream cannot be decoded.
	Configure(stream StreamDescriptor) error

	// Open initializes the decoder. Returns ErrCodecInit on failure.
	Open() error

	// Submit sends one packet of the configured stream. Returns ErrDecode on fatal errors.
	Submit(pkt *Packet) error

	// Flush signals end of input so buffered frames can be drained.
	Flush() error

	// Receive returns the next decoded frame, if any.
	// The caller must drain until a non-FrameReady status after every Submit.
	Receive() (ReceiveResult, error)

	// FrameCount returns the number of frames decoded so far.
	FrameCount() int

	// State returns the current lifecycle state.
	State() SessionState

	// Close releases the decoder. It is safe to call in any state.
	Close() error
}
