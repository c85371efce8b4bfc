package mocks

import (
	"fmt"

	"github.com/user/framesampler/pkg/ports"
)

// PixelConverter is a mock implementation of ports.PixelConverter.
type PixelConverter struct {
	// FailFrames lists frame numbers whose conversion fails.
	FailFrames map[int]bool

	// OnConvert, when set, runs before every conversion.
	OnConvert func(frame *ports.Frame)

	// Recorded calls for verification
	ConvertCalls []int
	CloseCalls   int
}

func (m *PixelConverter) Convert(frame *ports.Frame, target ports.PixelFormat) (*ports.RGBImage, error) {
	m.ConvertCalls = append(m.ConvertCalls, frame.Number)
	if m.OnConvert != nil {
		m.OnConvert(frame)
	}
	if m.FailFrames[frame.Number] {
		return nil, fmt.Errorf("%w: frame %d", ports.ErrConversion, frame.Number)
	}
	img := &ports.RGBImage{
		Width:  frame.Width,
		Height: frame.Height,
		Format: target,
	}
	img.Stride = frame.Width * img.BytesPerPixel()
	img.Pix = make([]byte, img.Stride*frame.Height)
	return img, nil
}

func (m *PixelConverter) Close() error {
	m.CloseCalls++
	return nil
}

var _ ports.PixelConverter = (*PixelConverter)(nil)
