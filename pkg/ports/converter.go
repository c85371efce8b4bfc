package ports

import (
	"image"
	"image/color"
)

// RGBImage is a packed RGB picture with an explicit row stride.
// It implements image.Image.
type RGBImage struct {
	Width  int
	Height int
	Stride int
	Format PixelFormat // PixelFormatRGB24 or PixelFormatRGBA
	Pix    []byte
}

// BytesPerPixel returns the number of bytes per pixel of the image format.
func (m *RGBImage) BytesPerPixel() int {
	if m.Format == PixelFormatRGBA {
		return 4
	}
	return 3
}

// ColorModel implements image.Image.
func (m *RGBImage) ColorModel() color.Model { return color.RGBAModel }

// Bounds implements image.Image.
func (m *RGBImage) Bounds() image.Rectangle { return image.Rect(0, 0, m.Width, m.Height) }

// At implements image.Image.
func (m *RGBImage) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return color.RGBA{}
	}
	i := y*m.Stride + x*m.BytesPerPixel()
	if m.Format == PixelFormatRGBA {
		return color.RGBA{m.Pix[i], m.Pix[i+1], m.Pix[i+2], m.Pix[i+3]}
	}
	return color.RGBA{m.Pix[i], m.Pix[i+1], m.Pix[i+2], 0xff}
}

// PixelConverter reformats decoded frames into packed RGB.
type PixelConverter interface {
	// Convert returns a freshly allocated image of the frame in target format.
	// Returns ErrUnsupportedFormat for formats it cannot handle.
	Convert(frame *Frame, target PixelFormat) (*RGBImage, error)

	// Close releases any cached scaling context.
	Close() error
}

// ToRGBImage copies any image into a packed rgb24 RGBImage.
func ToRGBImage(img image.Image) *RGBImage {
	b := img.Bounds()
	out := &RGBImage{
		Width:  b.Dx(),
		Height: b.Dy(),
		Stride: b.Dx() * 3,
		Format: PixelFormatRGB24,
	}
	out.Pix = make([]byte, out.Stride*out.Height)
	for y := 0; y < out.Height; y++ {
		row := out.Pix[y*out.Stride:]
		for x := 0; x < out.Width; x++ {
			c := color.RGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA)
			row[x*3] = c.R
			row[x*3+1] = c.G
			row[x*3+2] = c.B
		}
	}
	return out
}
