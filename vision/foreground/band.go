// Package foreground gates a depth-intensity image to the band of intensities that can belong to
// an object of bounded width standing at a known distance from the camera.
package foreground

import (
	"fmt"
	"math"

	"github.com/bridgewiz/trunkgauge/rimage"
	"github.com/bridgewiz/trunkgauge/utils"
)

// Class is the classification of a single depth intensity against a Band.
type Class uint8

// Intensity classes.
const (
	ClassFar Class = iota
	ClassBand
	ClassNear
)

func (c Class) String() string {
	switch c {
	case ClassFar:
		return "far"
	case ClassBand:
		return "band"
	case ClassNear:
		return "near"
	}
	return fmt.Sprintf("Class(%d)", uint8(c))
}

// Band is the open intensity interval (Far, Near) around the intensity read at the image center.
// Intensities grow as objects get nearer, so Far is the lower bound.
type Band struct {
	CenterIntensity uint8
	Delta           float64
	Far             float64
	Near            float64
}

// NewBand derives the band from the center intensity du, the measured distance to the center
// pixel and the widest object we expect to measure:
//
//	delta = du * expectedMaxDiameter / centerDistance / 2
//	far   = du - delta
//	near  = du + delta
func NewBand(centerIntensity uint8, centerDistanceMeters, expectedMaxDiameterMeters float64) (Band, error) {
	if !(centerDistanceMeters > 0) || math.IsInf(centerDistanceMeters, 0) {
		return Band{}, utils.NewInputError("center distance must be a positive number of meters, got %v", centerDistanceMeters)
	}
	if !(expectedMaxDiameterMeters > 0) || math.IsInf(expectedMaxDiameterMeters, 0) {
		return Band{}, utils.NewInputError("expected max diameter must be a positive number of meters, got %v",
			expectedMaxDiameterMeters)
	}
	du := float64(centerIntensity)
	delta := du * expectedMaxDiameterMeters / centerDistanceMeters / 2
	return Band{
		CenterIntensity: centerIntensity,
		Delta:           delta,
		Far:             du - delta,
		Near:            du + delta,
	}, nil
}

// Classify places v relative to the band. The no-return sentinel is always far, whatever the
// thresholds are.
func (b Band) Classify(v uint8) Class {
	if v == rimage.NoReturnIntensity {
		return ClassFar
	}
	f := float64(v)
	switch {
	case f <= b.Far:
		return ClassFar
	case f >= b.Near:
		return ClassNear
	default:
		return ClassBand
	}
}

// Includes reports whether v is strictly inside the band: not farther than Far and not nearer
// than Near.
func (b Band) Includes(v uint8) bool {
	notFar := v != rimage.NoReturnIntensity && float64(v) > b.Far
	notNear := float64(v) < b.Near
	return notFar && notNear
}

// lookup precomputes Includes for every possible intensity.
func (b Band) lookup() [256]bool {
	var lut [256]bool
	for v := range lut {
		lut[v] = b.Includes(uint8(v))
	}
	return lut
}

// Mask returns the binary mask of pixels inside the band.
func (b Band) Mask(img *rimage.IntensityMap) *rimage.Mask {
	lut := b.lookup()
	m := rimage.NewMask(img.Width(), img.Height())
	for y := 0; y < img.Height(); y++ {
		for x, v := range img.Row(y) {
			if lut[v] {
				m.Set(x, y, true)
			}
		}
	}
	return m
}

// CenterIntensity reads the intensity at the geometric center pixel (width/2, height/2).
func CenterIntensity(img *rimage.IntensityMap) uint8 {
	return img.Get(img.Center())
}

// BuildExclusionMask gates img to the intensity band computed from centerIntensity. Pixels that
// are nearer than the band, farther than the band, or carry no depth return are excluded.
func BuildExclusionMask(
	img *rimage.IntensityMap,
	centerIntensity uint8,
	centerDistanceMeters, expectedMaxDiameterMeters float64,
) (*rimage.Mask, error) {
	if img == nil || !img.HasData() {
		return nil, utils.NewInputError("depth image is empty")
	}
	band, err := NewBand(centerIntensity, centerDistanceMeters, expectedMaxDiameterMeters)
	if err != nil {
		return nil, err
	}
	return band.Mask(img), nil
}
