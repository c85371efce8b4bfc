package main

import (
	"image"
)

func blank(w, h int) image.Image {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}
