package transformpipeline

import (
	"context"
	"image"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"github.com/bridgewiz/trunkgauge/rimage"
	"github.com/bridgewiz/trunkgauge/utils"
)

// holeFillConfig are the attributes for a hole_fill transform.
type holeFillConfig struct {
	MaxGap int `json:"max_gap_px"`
}

// defaultMaxGap is the widest run of missing depth hole_fill bridges by default.
const defaultMaxGap = 8

// holeFillTransform closes short runs of no-return pixels along each row.
type holeFillTransform struct {
	maxGap int
}

func newHoleFillTransform(am utils.AttributeMap) (Transform, error) {
	conf, err := utils.TransformAttributeMap[*holeFillConfig](am)
	if err != nil {
		return nil, errors.Wrap(err, "cannot parse hole_fill attribute map")
	}
	if !am.Has("max_gap_px") {
		conf.MaxGap = defaultMaxGap
	}
	if conf.MaxGap < 1 {
		return nil, errors.New("max_gap_px for hole_fill must be at least 1")
	}
	return &holeFillTransform{maxGap: conf.MaxGap}, nil
}

func (hf *holeFillTransform) Stream() Stream {
	return DepthStream
}

// Apply fills every run of at most maxGap sentinel pixels that has valid depth on both ends with
// the farther of the two ends, so holes never pull the object closer. Runs touching the border
// are left alone.
func (hf *holeFillTransform) Apply(ctx context.Context, img image.Image) (image.Image, error) {
	_, span := trace.StartSpan(ctx, "camera::transformpipeline::hole_fill::Apply")
	defer span.End()

	im := rimage.ConvertImageToIntensityMap(img)
	for y := 0; y < im.Height(); y++ {
		row := im.Row(y)
		for x := 0; x < len(row); {
			if row[x] != rimage.NoReturnIntensity {
				x++
				continue
			}
			start := x
			for x < len(row) && row[x] == rimage.NoReturnIntensity {
				x++
			}
			if start == 0 || x == len(row) || x-start > hf.maxGap {
				continue
			}
			fill := row[start-1]
			if row[x] < fill {
				fill = row[x]
			}
			for i := start; i < x; i++ {
				im.Set(i, y, fill)
			}
		}
	}
	return im, nil
}

// blurConfig are the attributes for a blur transform.
type blurConfig struct {
	Sigma float64 `json:"sigma"`
}

// defaultBlurSigma is used when a blur transform has no sigma.
const defaultBlurSigma = 1.0

type blurTransform struct {
	sigma float64
}

func newBlurTransform(am utils.AttributeMap) (Transform, error) {
	if _, err := utils.TransformAttributeMap[*blurConfig](am); err != nil {
		return nil, errors.Wrap(err, "cannot parse blur attribute map")
	}
	sigma := am.Float64("sigma", defaultBlurSigma)
	if sigma <= 0 {
		return nil, errors.New("sigma for blur must be positive")
	}
	return &blurTransform{sigma: sigma}, nil
}

func (bt *blurTransform) Stream() Stream {
	return ColorStream
}

// Apply smooths the color image with a gaussian of the configured sigma.
func (bt *blurTransform) Apply(ctx context.Context, img image.Image) (image.Image, error) {
	_, span := trace.StartSpan(ctx, "camera::transformpipeline::blur::Apply")
	defer span.End()
	return imaging.Blur(img, bt.sigma), nil
}

// invertDepthTransform flips depth colorizations where nearer is darker.
type invertDepthTransform struct{}

func newInvertDepthTransform(am utils.AttributeMap) (Transform, error) {
	if len(am) != 0 {
		return nil, errors.New("invert_depth takes no attributes")
	}
	return invertDepthTransform{}, nil
}

func (invertDepthTransform) Stream() Stream {
	return DepthStream
}

// Apply inverts every intensity except the no-return sentinel, which keeps its meaning. A
// measured intensity never inverts onto the sentinel.
func (invertDepthTransform) Apply(ctx context.Context, img image.Image) (image.Image, error) {
	_, span := trace.StartSpan(ctx, "camera::transformpipeline::invert_depth::Apply")
	defer span.End()

	src := rimage.ConvertImageToIntensityMap(img)
	inverted := rimage.ConvertImageToIntensityMap(imaging.Invert(src))
	for y := 0; y < src.Height(); y++ {
		for x := 0; x < src.Width(); x++ {
			switch {
			case src.GetIntensity(x, y) == rimage.NoReturnIntensity:
				inverted.Set(x, y, rimage.NoReturnIntensity)
			case inverted.GetIntensity(x, y) == rimage.NoReturnIntensity:
				inverted.Set(x, y, 1)
			}
		}
	}
	return inverted, nil
}
