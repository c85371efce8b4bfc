package mocks

import (
	"image"

	"github.com/user/framesampler/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer.
type Renderer struct {
	DecodeImageFunc func(data []byte, format ports.ImageFormat) (image.Image, error)
	EncodeImageFunc func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error)
	ResizeImageFunc func(img image.Image, width, height int) image.Image

	// Recorded calls for verification
	EncodeCalls   int
	AnnotateCalls [][]string
}

func (m *Renderer) DecodeImage(data []byte, format ports.ImageFormat) (image.Image, error) {
	if m.DecodeImageFunc != nil {
		return m.DecodeImageFunc(data, format)
	}
	return image.NewRGBA(image.Rect(0, 0, 100, 100)), nil
}

func (m *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	m.EncodeCalls++
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img, format, quality)
	}
	return []byte{0xff, 0xd8, 0xff, 0xd9}, nil
}

func (m *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	if m.ResizeImageFunc != nil {
		return m.ResizeImageFunc(img, width, height)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

func (m *Renderer) Annotate(img image.Image, lines []string) image.Image {
	m.AnnotateCalls = append(m.AnnotateCalls, lines)
	return img
}

var _ ports.Renderer = (*Renderer)(nil)
