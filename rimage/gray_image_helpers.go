package rimage

import (
	"image"
)

// SameImgSize compares image.Images to see if they are the same size.
func SameImgSize(g1, g2 image.Image) bool {
	return g1.Bounds().Dx() == g2.Bounds().Dx() && g1.Bounds().Dy() == g2.Bounds().Dy()
}
