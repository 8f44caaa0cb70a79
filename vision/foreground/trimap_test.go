package foreground

import (
	"testing"

	"go.viam.com/test"

	"github.com/bridgewiz/trunkgauge/rimage"
)

func TestBuildTrimap(t *testing.T) {
	img, err := rimage.NewIntensityMapFromBytes(5, 1, []uint8{0, 100, 150, 200, 150})
	test.That(t, err, test.ShouldBeNil)
	band, err := NewBand(150, 1.0, 0.5)
	test.That(t, err, test.ShouldBeNil)

	seed, err := BuildTrimap(img, band, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, seed.Get(0, 0), test.ShouldEqual, rimage.ProbableBackground)
	test.That(t, seed.Get(1, 0), test.ShouldEqual, rimage.ProbableBackground)
	test.That(t, seed.Get(2, 0), test.ShouldEqual, rimage.DefiniteForeground)
	test.That(t, seed.Get(3, 0), test.ShouldEqual, rimage.ProbableBackground)
	test.That(t, seed.Get(4, 0), test.ShouldEqual, rimage.DefiniteForeground)
	test.That(t, seed.Count(rimage.DefiniteBackground), test.ShouldEqual, 0)

	// cleaning dropped column 4 and bridged column 1
	cleaned, err := rimage.NewMaskFromRows([][]uint8{{0, 1, 1, 0, 0}})
	test.That(t, err, test.ShouldBeNil)
	seed, err = BuildTrimap(img, band, cleaned)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, seed.Get(0, 0), test.ShouldEqual, rimage.ProbableBackground)
	test.That(t, seed.Get(1, 0), test.ShouldEqual, rimage.DefiniteForeground)
	test.That(t, seed.Get(2, 0), test.ShouldEqual, rimage.DefiniteForeground)
	test.That(t, seed.Get(3, 0), test.ShouldEqual, rimage.ProbableBackground)
	test.That(t, seed.Get(4, 0), test.ShouldEqual, rimage.ProbableForeground)

	test.That(t, seed.Foreground(false).Count(), test.ShouldEqual, 2)
	test.That(t, seed.Foreground(true).Count(), test.ShouldEqual, 3)

	_, err = BuildTrimap(img, band, rimage.NewMask(4, 1))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestBuildTrimapRelaxesNearAndFar(t *testing.T) {
	img, err := rimage.NewIntensityMapFromBytes(3, 1, []uint8{50, 150, 250})
	test.That(t, err, test.ShouldBeNil)
	band, err := NewBand(150, 1.0, 0.5)
	test.That(t, err, test.ShouldBeNil)

	seed, err := BuildTrimap(img, band, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, seed.Get(0, 0), test.ShouldEqual, rimage.ProbableBackground)
	test.That(t, seed.Get(1, 0), test.ShouldEqual, rimage.DefiniteForeground)
	test.That(t, seed.Get(2, 0), test.ShouldEqual, rimage.ProbableBackground)
}
