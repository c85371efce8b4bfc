// Package ggrenderer encodes, resizes and annotates images with the gg
// drawing library.
package ggrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/user/framesampler/pkg/ports"
)

// Style controls annotation drawing.
type Style struct {
	FontPath   string // TrueType font; empty uses the built-in 7x13 face
	FontSize   float64
	TextColor  color.Color
	BoxColor   color.Color
	Padding    float64
	LineHeight float64 // multiple of the font height
}

// DefaultStyle returns white text on a translucent black box.
func DefaultStyle() Style {
	return Style{
		FontSize:   12,
		TextColor:  color.White,
		BoxColor:   color.RGBA{0, 0, 0, 160},
		Padding:    4,
		LineHeight: 1.3,
	}
}

// Renderer implements ports.Renderer using the gg library.
type Renderer struct {
	style Style
}

// New creates a Renderer with DefaultStyle.
func New() *Renderer {
	return NewWithStyle(DefaultStyle())
}

// NewWithStyle creates a Renderer drawing annotations with style.
func NewWithStyle(style Style) *Renderer {
	return &Renderer{style: style}
}

// DecodeImage decodes image data into an image.Image.
func (r *Renderer) DecodeImage(data []byte, format ports.ImageFormat) (image.Image, error) {
	reader := bytes.NewReader(data)

	switch format {
	case ports.FormatJPEG:
		return jpeg.Decode(reader)
	case ports.FormatPNG:
		return png.Decode(reader)
	default:
		img, _, err := image.Decode(reader)
		return img, err
	}
}

// EncodeImage encodes an image to the specified format.
func (r *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case ports.FormatJPEG:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode JPEG: %w", err)
		}
	case ports.FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode PNG: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %d", format)
	}

	return buf.Bytes(), nil
}

// ResizeImage resizes an image to the specified dimensions.
func (r *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// Annotate draws lines over a box in the top-left corner of a copy of img.
// img itself is not modified.
func (r *Renderer) Annotate(img image.Image, lines []string) image.Image {
	dc := gg.NewContextForImage(img)
	if len(lines) == 0 {
		return dc.Image()
	}

	if r.style.FontPath != "" {
		// The built-in face stays active when the font cannot be loaded.
		_ = dc.LoadFontFace(r.style.FontPath, r.style.FontSize)
	}

	var width float64
	for _, line := range lines {
		if w, _ := dc.MeasureString(line); w > width {
			width = w
		}
	}
	step := dc.FontHeight() * r.style.LineHeight
	pad := r.style.Padding

	dc.SetColor(r.style.BoxColor)
	dc.DrawRectangle(0, 0, width+2*pad, step*float64(len(lines))+2*pad)
	dc.Fill()

	dc.SetColor(r.style.TextColor)
	for i, line := range lines {
		dc.DrawStringAnchored(line, pad, pad+step*(float64(i)+0.5), 0, 0.5)
	}
	return dc.Image()
}

var _ ports.Renderer = (*Renderer)(nil)
