package camera

import (
	"image"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/bridgewiz/trunkgauge/pointcloud"
	"github.com/bridgewiz/trunkgauge/rimage"
	"github.com/bridgewiz/trunkgauge/utils"
)

func validFrame() *Frame {
	cloud := pointcloud.NewVertices(4, 3)
	_ = cloud.Set(1, 2, 4, pointcloud.NewVector(0, 0, 1.25))
	return &Frame{
		Color:                image.NewNRGBA(image.Rect(0, 0, 4, 3)),
		Depth:                rimage.NewEmptyIntensityMap(4, 3),
		Cloud:                cloud,
		CenterDistanceMeters: 1.25,
	}
}

func TestFrameValidate(t *testing.T) {
	f := validFrame()
	test.That(t, f.Validate(), test.ShouldBeNil)
	w, h := f.Size()
	test.That(t, w, test.ShouldEqual, 4)
	test.That(t, h, test.ShouldEqual, 3)
	test.That(t, CenterDistanceFromCloud(f.Cloud, w, h), test.ShouldEqual, 1.25)

	for name, mutate := range map[string]func(*Frame){
		"no depth":          func(f *Frame) { f.Depth = nil },
		"empty depth":       func(f *Frame) { f.Depth = rimage.NewEmptyIntensityMap(0, 0) },
		"color size":        func(f *Frame) { f.Color = image.NewNRGBA(image.Rect(0, 0, 3, 3)) },
		"short cloud":       func(f *Frame) { f.Cloud = f.Cloud[:30] },
		"zero distance":     func(f *Frame) { f.CenterDistanceMeters = 0 },
		"negative distance": func(f *Frame) { f.CenterDistanceMeters = -2 },
	} {
		t.Run(name, func(t *testing.T) {
			f := validFrame()
			mutate(f)
			err := f.Validate()
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, errors.Is(err, utils.ErrInvalidInput), test.ShouldBeTrue)
		})
	}

	var nilFrame *Frame
	test.That(t, errors.Is(nilFrame.Validate(), utils.ErrInvalidInput), test.ShouldBeTrue)

	// the color image is optional
	f.Color = nil
	test.That(t, f.Validate(), test.ShouldBeNil)
}

func TestFrameClone(t *testing.T) {
	f := validFrame()
	c := f.Clone()
	c.Depth.Set(0, 0, 9)
	c.Cloud[0] = 3
	test.That(t, f.Depth.GetIntensity(0, 0), test.ShouldEqual, 0)
	test.That(t, f.Cloud[0], test.ShouldEqual, float32(0))
	test.That(t, c.Color, test.ShouldEqual, f.Color)
}
