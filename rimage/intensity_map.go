// Package rimage holds the per-frame raster types of the measurement pipeline: the 8-bit depth
// intensity map, binary masks, GrabCut trimaps, and the morphology and drawing helpers that
// operate on them.
package rimage

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// NoReturnIntensity marks a pixel for which the depth sensor produced no measurement.
// It does not mean "infinitely far".
const NoReturnIntensity = uint8(0)

// IntensityMap is a colorized depth frame reduced to one 8-bit sample per pixel, stored row-major.
// Higher values are nearer to the camera.
type IntensityMap struct {
	width  int
	height int

	data []uint8
}

// NewEmptyIntensityMap returns an all-sentinel map of the given size.
func NewEmptyIntensityMap(width, height int) *IntensityMap {
	return &IntensityMap{
		width:  width,
		height: height,
		data:   make([]uint8, width*height),
	}
}

// NewIntensityMapFromBytes wraps a copy of row-major samples.
func NewIntensityMapFromBytes(width, height int, data []uint8) (*IntensityMap, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid intensity map size %dx%d", width, height)
	}
	if len(data) != width*height {
		return nil, errors.Errorf("intensity map %dx%d needs %d samples, got %d", width, height, width*height, len(data))
	}
	im := NewEmptyIntensityMap(width, height)
	copy(im.data, data)
	return im, nil
}

// ConvertImageToIntensityMap converts a grayscale or colorized depth image to an IntensityMap.
// Color images are converted with luma weights.
func ConvertImageToIntensityMap(img image.Image) *IntensityMap {
	b := img.Bounds()
	im := NewEmptyIntensityMap(b.Dx(), b.Dy())
	switch gray := img.(type) {
	case *image.Gray:
		for y := 0; y < im.height; y++ {
			start := gray.PixOffset(b.Min.X, b.Min.Y+y)
			copy(im.data[y*im.width:(y+1)*im.width], gray.Pix[start:start+im.width])
		}
		return im
	case *IntensityMap:
		copy(im.data, gray.data)
		return im
	}
	nrgba := imaging.Grayscale(img)
	for y := 0; y < im.height; y++ {
		for x := 0; x < im.width; x++ {
			im.data[y*im.width+x] = nrgba.Pix[y*nrgba.Stride+x*4]
		}
	}
	return im
}

// HasData returns whether the map has any pixels.
func (im *IntensityMap) HasData() bool {
	return im != nil && im.width > 0 && im.height > 0 && im.data != nil
}

// Width returns the width of the map.
func (im *IntensityMap) Width() int {
	return im.width
}

// Height returns the height of the map.
func (im *IntensityMap) Height() int {
	return im.height
}

// Contains returns whether the pixel (x, y) lies inside the map.
func (im *IntensityMap) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < im.width && y < im.height
}

// Get returns the sample at the given point.
func (im *IntensityMap) Get(p image.Point) uint8 {
	return im.data[p.Y*im.width+p.X]
}

// GetIntensity returns the sample at column x, row y.
func (im *IntensityMap) GetIntensity(x, y int) uint8 {
	return im.data[y*im.width+x]
}

// Set sets the sample at column x, row y.
func (im *IntensityMap) Set(x, y int, val uint8) {
	im.data[y*im.width+x] = val
}

// Center returns the geometric center pixel (width/2, height/2).
func (im *IntensityMap) Center() image.Point {
	return image.Point{im.width / 2, im.height / 2}
}

// Clone returns a deep copy.
func (im *IntensityMap) Clone() *IntensityMap {
	out := NewEmptyIntensityMap(im.width, im.height)
	copy(out.data, im.data)
	return out
}

// Row returns a copy of row y.
func (im *IntensityMap) Row(y int) []uint8 {
	out := make([]uint8, im.width)
	copy(out, im.data[y*im.width:(y+1)*im.width])
	return out
}

// ColorModel for image.Image.
func (im *IntensityMap) ColorModel() color.Model {
	return color.GrayModel
}

// Bounds for image.Image.
func (im *IntensityMap) Bounds() image.Rectangle {
	return image.Rect(0, 0, im.width, im.height)
}

// At for image.Image.
func (im *IntensityMap) At(x, y int) color.Color {
	if !im.Contains(x, y) {
		return color.Gray{}
	}
	return color.Gray{im.GetIntensity(x, y)}
}

// ToGray copies the map into an *image.Gray.
func (im *IntensityMap) ToGray() *image.Gray {
	g := image.NewGray(im.Bounds())
	copy(g.Pix, im.data)
	return g
}

// MinMax returns the smallest non-sentinel and largest sample. Both are 0 when every
// pixel is a sentinel.
func (im *IntensityMap) MinMax() (uint8, uint8) {
	var lo, hi uint8 = 255, 0
	found := false
	for _, v := range im.data {
		if v == NoReturnIntensity {
			continue
		}
		found = true
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if !found {
		return 0, 0
	}
	return lo, hi
}
