package grabcut

import (
	"context"
	"image"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/bridgewiz/trunkgauge/logging"
	"github.com/bridgewiz/trunkgauge/rimage"
	"github.com/bridgewiz/trunkgauge/utils"
	"github.com/bridgewiz/trunkgauge/vision/segmentation"
)

func TestRegistered(t *testing.T) {
	r, err := segmentation.NewRefiner(Name, utils.AttributeMap{"iterations": 2}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.(*Refiner).Iterations, test.ShouldEqual, 2)

	r, err = segmentation.NewRefiner(Name, nil, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.(*Refiner).Iterations, test.ShouldEqual, DefaultIterations)

	_, err = segmentation.NewRefiner(Name, utils.AttributeMap{"iterations": -2}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestRefineRejectsDegenerateSeed(t *testing.T) {
	r := NewRefiner(1, logging.NewTestLogger(t))
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))

	_, err := r.Refine(context.Background(), img, rimage.NewTrimap(8, 8))
	test.That(t, errors.Is(err, segmentation.ErrSegmentationFailed), test.ShouldBeTrue)

	seed := rimage.NewTrimap(4, 4)
	seed.Set(1, 1, rimage.DefiniteForeground)
	_, err = r.Refine(context.Background(), img, seed)
	test.That(t, errors.Is(err, segmentation.ErrSegmentationFailed), test.ShouldBeTrue)
}
