//go:build cgo

package ffmpeg

import (
	"fmt"

	"github.com/asticode/go-astiav"
	"github.com/user/framesampler/pkg/ports"
)

type scaleKey struct {
	srcW, srcH int
	srcFormat  ports.PixelFormat
	dstW, dstH int
	dstFormat  ports.PixelFormat
}

// Converter implements ports.PixelConverter with libswscale.
// The scale context and both frames are rebuilt when the geometry changes.
type Converter struct {
	logger ports.Logger
	key    scaleKey
	ssc    *astiav.SoftwareScaleContext
	src    *astiav.Frame
	dst    *astiav.Frame
}

// NewConverter creates a swscale converter.
func NewConverter(logger ports.Logger) ports.PixelConverter {
	return &Converter{logger: logger.WithComponent("swscale")}
}

// Convert scales frame into a fresh packed buffer.
func (c *Converter) Convert(frame *ports.Frame, target ports.PixelFormat) (*ports.RGBImage, error) {
	if frame == nil || frame.Width <= 0 || frame.Height <= 0 || len(frame.Data) == 0 {
		return nil, fmt.Errorf("%w: empty frame", ports.ErrConversion)
	}
	bpp := 3
	switch target {
	case ports.PixelFormatRGB24:
	case ports.PixelFormatRGBA:
		bpp = 4
	default:
		return nil, fmt.Errorf("%w: target %s", ports.ErrUnsupportedFormat, target)
	}

	key := scaleKey{
		srcW: frame.Width, srcH: frame.Height, srcFormat: frame.Format,
		dstW: frame.Width, dstH: frame.Height, dstFormat: target,
	}
	if err := c.ensure(key); err != nil {
		return nil, err
	}

	if err := c.src.Data().SetBytes(frame.Data, 1); err != nil {
		return nil, fmt.Errorf("%w: load source planes: %v", ports.ErrConversion, err)
	}
	if err := c.ssc.ScaleFrame(c.src, c.dst); err != nil {
		return nil, fmt.Errorf("%w: scale: %v", ports.ErrConversion, err)
	}

	n, err := c.dst.ImageBufferSize(1)
	if err != nil {
		return nil, fmt.Errorf("%w: image buffer size: %v", ports.ErrConversion, err)
	}
	img := &ports.RGBImage{
		Width:  frame.Width,
		Height: frame.Height,
		Stride: frame.Width * bpp,
		Format: target,
		Pix:    make([]byte, n),
	}
	if _, err := c.dst.ImageCopyToBuffer(img.Pix, 1); err != nil {
		return nil, fmt.Errorf("%w: copy image: %v", ports.ErrConversion, err)
	}
	return img, nil
}

func (c *Converter) ensure(key scaleKey) error {
	if c.ssc != nil && c.key == key {
		return nil
	}
	c.free()

	srcFmt := toAstiavPixelFormat(key.srcFormat)
	if srcFmt == astiav.PixelFormatNone {
		return fmt.Errorf("%w: source %s", ports.ErrUnsupportedFormat, key.srcFormat)
	}
	dstFmt := toAstiavPixelFormat(key.dstFormat)

	ssc, err := astiav.CreateSoftwareScaleContext(
		key.srcW, key.srcH, srcFmt,
		key.dstW, key.dstH, dstFmt,
		astiav.NewSoftwareScaleContextFlags(astiav.SoftwareScaleContextFlagBilinear),
	)
	if err != nil {
		return fmt.Errorf("%w: scale context %dx%d %s -> %s: %v", ports.ErrUnsupportedFormat, key.srcW, key.srcH, key.srcFormat, key.dstFormat, err)
	}

	src, err := allocImageFrame(key.srcW, key.srcH, srcFmt)
	if err != nil {
		ssc.Free()
		return err
	}
	dst, err := allocImageFrame(key.dstW, key.dstH, dstFmt)
	if err != nil {
		src.Free()
		ssc.Free()
		return err
	}

	c.ssc, c.src, c.dst, c.key = ssc, src, dst, key
	c.logger.Debug("Scaler ready: %dx%d %s -> %s", key.srcW, key.srcH, key.srcFormat, key.dstFormat)
	return nil
}

func allocImageFrame(w, h int, pf astiav.PixelFormat) (*astiav.Frame, error) {
	f := astiav.AllocFrame()
	if f == nil {
		return nil, fmt.Errorf("%w: frame: %w", ports.ErrResourceAllocation, errAlloc)
	}
	f.SetWidth(w)
	f.SetHeight(h)
	f.SetPixelFormat(pf)
	if err := f.AllocBuffer(1); err != nil {
		f.Free()
		return nil, fmt.Errorf("%w: frame buffer: %v", ports.ErrResourceAllocation, err)
	}
	return f, nil
}

func (c *Converter) free() {
	if c.dst != nil {
		c.dst.Free()
		c.dst = nil
	}
	if c.src != nil {
		c.src.Free()
		c.src = nil
	}
	if c.ssc != nil {
		c.ssc.Free()
		c.ssc = nil
	}
}

// Close frees the cached scale context.
func (c *Converter) Close() error {
	c.free()
	return nil
}

var _ ports.PixelConverter = (*Converter)(nil)
