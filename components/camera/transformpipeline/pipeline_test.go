package transformpipeline

import (
	"context"
	"image"
	"testing"

	"go.viam.com/test"

	"github.com/bridgewiz/trunkgauge/components/camera"
	"github.com/bridgewiz/trunkgauge/components/camera/fake"
	"github.com/bridgewiz/trunkgauge/logging"
	"github.com/bridgewiz/trunkgauge/rimage"
	"github.com/bridgewiz/trunkgauge/utils"
)

func depthRow(t *testing.T, values ...uint8) *rimage.IntensityMap {
	t.Helper()
	im, err := rimage.NewIntensityMapFromBytes(len(values), 1, values)
	test.That(t, err, test.ShouldBeNil)
	return im
}

func TestHoleFill(t *testing.T) {
	tr, err := newHoleFillTransform(utils.AttributeMap{"max_gap_px": 2})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tr.Stream(), test.ShouldEqual, DepthStream)

	in := depthRow(t, 0, 90, 0, 0, 120, 0, 0, 0, 100, 0)
	out, err := tr.Apply(context.Background(), in)
	test.That(t, err, test.ShouldBeNil)
	im := out.(*rimage.IntensityMap)
	test.That(t, im.Row(0), test.ShouldResemble, []uint8{0, 90, 90, 90, 120, 0, 0, 0, 100, 0})
	// the input is untouched
	test.That(t, in.GetIntensity(2, 0), test.ShouldEqual, 0)

	tr, err = newHoleFillTransform(nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tr.(*holeFillTransform).maxGap, test.ShouldEqual, defaultMaxGap)

	_, err = newHoleFillTransform(utils.AttributeMap{"max_gap_px": 0})
	test.That(t, err, test.ShouldNotBeNil)
	_, err = newHoleFillTransform(utils.AttributeMap{"gap": 3})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestInvertDepth(t *testing.T) {
	tr, err := newInvertDepthTransform(nil)
	test.That(t, err, test.ShouldBeNil)
	out, err := tr.Apply(context.Background(), depthRow(t, 0, 1, 100, 255))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.(*rimage.IntensityMap).Row(0), test.ShouldResemble, []uint8{0, 254, 155, 1})

	_, err = newInvertDepthTransform(utils.AttributeMap{"x": 1})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestBlur(t *testing.T) {
	tr, err := newBlurTransform(utils.AttributeMap{"sigma": 1.5})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tr.Stream(), test.ShouldEqual, ColorStream)
	img := image.NewNRGBA(image.Rect(0, 0, 10, 6))
	img.Pix[4*(3*10+5)] = 255
	out, err := tr.Apply(context.Background(), img)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.Bounds(), test.ShouldResemble, img.Bounds())

	tr, err = newBlurTransform(utils.AttributeMap{})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tr.(*blurTransform).sigma, test.ShouldEqual, defaultBlurSigma)

	_, err = newBlurTransform(utils.AttributeMap{"sigma": -1})
	test.That(t, err, test.ShouldNotBeNil)
	_, err = newBlurTransform(utils.AttributeMap{"radius": 2})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestBuildAndValidate(t *testing.T) {
	cfgs := []Transformation{
		{Type: "hole_fill", Attributes: utils.AttributeMap{"max_gap_px": 4}},
		{Type: "blur", Attributes: utils.AttributeMap{"sigma": 0.5}},
	}
	transforms, err := Build(cfgs)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, transforms, test.ShouldHaveLength, 2)
	for i := range cfgs {
		test.That(t, cfgs[i].Validate("pre_filters"), test.ShouldBeNil)
	}

	_, err = Build([]Transformation{{Type: "sharpen"}})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "hole_fill")

	bad := Transformation{}
	test.That(t, bad.Validate("pre_filters.0").Error(), test.ShouldContainSubstring, `"type" is required`)
	bad.Type = "sharpen"
	test.That(t, bad.Validate("pre_filters.0"), test.ShouldNotBeNil)
	test.That(t, TransformTypes(), test.ShouldResemble, []string{"blur", "hole_fill", "invert_depth"})
}

type resizeTransform struct{}

func (resizeTransform) Stream() Stream { return ColorStream }

func (resizeTransform) Apply(ctx context.Context, img image.Image) (image.Image, error) {
	return image.NewNRGBA(image.Rect(0, 0, 1, 1)), nil
}

func TestPipelineSource(t *testing.T) {
	cfg := fake.DefaultConfig()
	cfg.Width, cfg.Height = 40, 10
	cfg.TrunkLeft, cfg.TrunkRight = 15, 24
	cfg.BackgroundDistance = 0
	src, err := fake.NewSource(cfg, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	same, err := New(src, nil, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, same, test.ShouldEqual, src)

	piped, err := New(src, []Transformation{
		{Type: "invert_depth"},
		{Type: "blur", Attributes: utils.AttributeMap{"sigma": 1}},
	}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	raw, err := src.NextFrame(context.Background())
	test.That(t, err, test.ShouldBeNil)
	frame, err := piped.NextFrame(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, frame.Validate(), test.ShouldBeNil)
	test.That(t, frame.Depth.GetIntensity(20, 5), test.ShouldEqual, 255-raw.Depth.GetIntensity(20, 5))
	test.That(t, frame.Depth.GetIntensity(0, 5), test.ShouldEqual, rimage.NoReturnIntensity)
	test.That(t, piped.Close(context.Background()), test.ShouldBeNil)

	_, err = Apply(context.Background(), raw, []Transform{resizeTransform{}})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "changed the color image")

	noColor := &camera.Frame{Depth: raw.Depth, Cloud: raw.Cloud, CenterDistanceMeters: 1}
	_, err = Apply(context.Background(), noColor, []Transform{resizeTransform{}})
	test.That(t, err, test.ShouldNotBeNil)

	_, err = New(nil, nil, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
}
