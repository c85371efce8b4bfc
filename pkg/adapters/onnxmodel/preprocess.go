package onnxmodel

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Preprocess resizes img to width x height with bilinear filtering and
// writes it into dst as NHWC float32 RGB with raw 0..255 values.
func Preprocess(img image.Image, width, height int, dst []float32) error {
	if len(dst) < width*height*3 {
		return fmt.Errorf("input buffer holds %d values, need %d", len(dst), width*height*3)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("empty image %dx%d", b.Dx(), b.Dy())
	}

	scaled := image.NewRGBA(image.Rect(0, 0, width, height))
	if b.Dx() == width && b.Dy() == height {
		draw.Copy(scaled, image.Point{}, img, b, draw.Src, nil)
	} else {
		draw.BiLinear.Scale(scaled, scaled.Bounds(), img, b, draw.Src, nil)
	}

	i := 0
	for y := 0; y < height; y++ {
		row := scaled.Pix[y*scaled.Stride:]
		for x := 0; x < width; x++ {
			dst[i] = float32(row[x*4])
			dst[i+1] = float32(row[x*4+1])
			dst[i+2] = float32(row[x*4+2])
			i += 3
		}
	}
	return nil
}
