// Package pixconv converts decoded frames to packed RGB in pure Go.
//
// YUV input uses integer BT.601 coefficients: limited range for the
// yuv4xxp and nv12/nv21 formats, full range for the yuvj variants.
package pixconv

import (
	"fmt"

	"github.com/user/framesampler/pkg/ports"
)

// contextKey identifies the geometry a scaleContext was built for.
type contextKey struct {
	srcW, srcH int
	srcFormat  ports.PixelFormat
	dstW, dstH int
	dstFormat  ports.PixelFormat
}

type layoutKind int

const (
	kindPlanar layoutKind = iota
	kindSemiPlanar
	kindGray
	kindPacked
)

// sourceFormat describes how to read one input pixel format.
type sourceFormat struct {
	kind      layoutKind
	planes    int
	shiftX    uint
	shiftY    uint
	fullRange bool
	swapUV    bool   // nv21
	order     [3]int // packed: byte offsets of r, g, b
	bpp       int    // packed: bytes per pixel
}

var sourceFormats = map[ports.PixelFormat]sourceFormat{
	ports.PixelFormatYUV420P:  {kind: kindPlanar, planes: 3, shiftX: 1, shiftY: 1},
	ports.PixelFormatYUVJ420P: {kind: kindPlanar, planes: 3, shiftX: 1, shiftY: 1, fullRange: true},
	ports.PixelFormatYUV422P:  {kind: kindPlanar, planes: 3, shiftX: 1},
	ports.PixelFormatYUVJ422P: {kind: kindPlanar, planes: 3, shiftX: 1, fullRange: true},
	ports.PixelFormatYUV444P:  {kind: kindPlanar, planes: 3},
	ports.PixelFormatYUVJ444P: {kind: kindPlanar, planes: 3, fullRange: true},
	ports.PixelFormatNV12:     {kind: kindSemiPlanar, planes: 2, shiftX: 1, shiftY: 1},
	ports.PixelFormatNV21:     {kind: kindSemiPlanar, planes: 2, shiftX: 1, shiftY: 1, swapUV: true},
	ports.PixelFormatGray:     {kind: kindGray, planes: 1},
	ports.PixelFormatRGB24:    {kind: kindPacked, planes: 1, order: [3]int{0, 1, 2}, bpp: 3},
	ports.PixelFormatRGBA:     {kind: kindPacked, planes: 1, order: [3]int{0, 1, 2}, bpp: 4},
	ports.PixelFormatBGRA:     {kind: kindPacked, planes: 1, order: [3]int{2, 1, 0}, bpp: 4},
}

func targetBytesPerPixel(f ports.PixelFormat) (int, bool) {
	switch f {
	case ports.PixelFormatRGB24:
		return 3, true
	case ports.PixelFormatRGBA:
		return 4, true
	}
	return 0, false
}

// Converter implements ports.PixelConverter.
// It is owned by one run and is not safe for concurrent use.
type Converter struct {
	logger   ports.Logger
	ctx      *scaleContext
	rebuilds int
}

// New creates a converter.
func New(logger ports.Logger) *Converter {
	return &Converter{logger: logger.WithComponent("pixconv")}
}

// Convert converts frame into a freshly allocated image in target format.
func (c *Converter) Convert(frame *ports.Frame, target ports.PixelFormat) (*ports.RGBImage, error) {
	if frame == nil || frame.Width <= 0 || frame.Height <= 0 {
		return nil, fmt.Errorf("%w: empty frame", ports.ErrConversion)
	}
	dstBpp, ok := targetBytesPerPixel(target)
	if !ok {
		return nil, fmt.Errorf("%w: target %s", ports.ErrUnsupportedFormat, target)
	}
	src, ok := sourceFormats[frame.Format]
	if !ok {
		return nil, fmt.Errorf("%w: source %s", ports.ErrUnsupportedFormat, frame.Format)
	}
	if err := checkPlanes(frame, src); err != nil {
		return nil, err
	}

	key := contextKey{
		srcW: frame.Width, srcH: frame.Height, srcFormat: frame.Format,
		dstW: frame.Width, dstH: frame.Height, dstFormat: target,
	}
	if c.ctx == nil || c.ctx.key != key {
		c.ctx = newScaleContext(key, src, dstBpp)
		c.rebuilds++
		c.logger.Debug("Scaling context ready: %dx%d %s -> %s", key.srcW, key.srcH, key.srcFormat, key.dstFormat)
	}

	img := &ports.RGBImage{
		Width:  frame.Width,
		Height: frame.Height,
		Stride: frame.Width * dstBpp,
		Format: target,
	}
	img.Pix = make([]byte, img.Stride*img.Height)
	c.ctx.convert(frame, img)
	return img, nil
}

// Rebuilds returns how many scaling contexts have been built.
func (c *Converter) Rebuilds() int {
	return c.rebuilds
}

// Close drops the cached scaling context.
func (c *Converter) Close() error {
	c.ctx = nil
	return nil
}

var _ ports.PixelConverter = (*Converter)(nil)

// checkPlanes verifies that every plane is large enough for the geometry.
func checkPlanes(frame *ports.Frame, src sourceFormat) error {
	if len(frame.Planes) < src.planes || len(frame.Strides) < src.planes {
		return fmt.Errorf("%w: %s needs %d planes, got %d", ports.ErrConversion, frame.Format, src.planes, len(frame.Planes))
	}
	for i := 0; i < src.planes; i++ {
		rowBytes, rows := frame.Width, frame.Height
		switch {
		case src.kind == kindPacked:
			rowBytes = frame.Width * src.bpp
		case i > 0 && src.kind == kindSemiPlanar:
			rowBytes = ((frame.Width + 1) >> 1) * 2
			rows = (frame.Height + 1) >> src.shiftY
		case i > 0:
			rowBytes = (frame.Width + (1 << src.shiftX) - 1) >> src.shiftX
			rows = (frame.Height + (1 << src.shiftY) - 1) >> src.shiftY
		}
		if frame.Strides[i] < rowBytes {
			return fmt.Errorf("%w: plane %d stride %d below row size %d", ports.ErrConversion, i, frame.Strides[i], rowBytes)
		}
		if need := frame.Strides[i]*(rows-1) + rowBytes; len(frame.Planes[i]) < need {
			return fmt.Errorf("%w: plane %d has %d bytes, need %d", ports.ErrConversion, i, len(frame.Planes[i]), need)
		}
	}
	return nil
}
