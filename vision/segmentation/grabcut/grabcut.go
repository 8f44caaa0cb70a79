// Package grabcut implements segmentation.Refiner with OpenCV's GrabCut, initialized from the
// trimap seed. Importing the package registers the refiner under the name "grabcut".
package grabcut

import (
	"context"
	"fmt"
	"image"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"
	"gocv.io/x/gocv"

	"github.com/bridgewiz/trunkgauge/logging"
	"github.com/bridgewiz/trunkgauge/rimage"
	"github.com/bridgewiz/trunkgauge/utils"
	"github.com/bridgewiz/trunkgauge/vision/segmentation"
)

// Name is the registered name of the refiner.
const Name = "grabcut"

// DefaultIterations is enough when the seed comes from a good depth band.
const DefaultIterations = 1

func init() {
	segmentation.RegisterRefiner(Name, func(attributes utils.AttributeMap, logger logging.Logger) (segmentation.Refiner, error) {
		conf, err := utils.TransformAttributeMap[*Config](attributes)
		if err != nil {
			return nil, err
		}
		if err := conf.Validate("segmentation.attributes"); err != nil {
			return nil, err
		}
		return &Refiner{Iterations: conf.Iterations, logger: logger}, nil
	})
}

// Config are the attributes of a grabcut refiner.
type Config struct {
	Iterations int `json:"iterations"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.Iterations < 0 {
		return utils.NewConfigValidationError(path, errors.New("iterations cannot be negative"))
	}
	if cfg.Iterations == 0 {
		cfg.Iterations = DefaultIterations
	}
	return nil
}

// Refiner runs GrabCut in mask initialization mode.
type Refiner struct {
	Iterations int
	logger     logging.Logger
}

// NewRefiner returns a refiner running the given number of iterations.
func NewRefiner(iterations int, logger logging.Logger) *Refiner {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return &Refiner{Iterations: iterations, logger: logger}
}

// Refine implements segmentation.Refiner. OpenCV raises on degenerate models, that panic is
// turned into segmentation.ErrSegmentationFailed.
func (r *Refiner) Refine(ctx context.Context, img image.Image, seed *rimage.Trimap) (out *rimage.Trimap, err error) {
	_, span := trace.StartSpan(ctx, "segmentation::grabcut::Refine")
	defer span.End()

	if err := segmentation.ValidateSeed(seed); err != nil {
		return nil, err
	}
	w, h := seed.Width(), seed.Height()
	b := img.Bounds()
	if b.Dx() != w || b.Dy() != h {
		return nil, errors.Wrapf(segmentation.ErrSegmentationFailed, "color image is %dx%d, seed is %dx%d", b.Dx(), b.Dy(), w, h)
	}

	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = errors.Wrap(segmentation.ErrSegmentationFailed, fmt.Sprint(rec))
		}
	}()

	src := imageToBGR(img)
	defer src.Close()
	mask := trimapToMat(seed)
	defer mask.Close()
	bgdModel := gocv.NewMat()
	defer bgdModel.Close()
	fgdModel := gocv.NewMat()
	defer fgdModel.Close()

	iterations := r.Iterations
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	gocv.GrabCut(src, &mask, image.Rect(0, 0, w, h), &bgdModel, &fgdModel, iterations, gocv.GCInitWithMask)

	out = rimage.NewTrimap(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := mask.GetUCharAt(y, x)
			if v > uint8(rimage.ProbableForeground) {
				return nil, errors.Wrapf(segmentation.ErrSegmentationFailed, "grabcut produced label %d", v)
			}
			out.Set(x, y, rimage.TrimapLabel(v))
		}
	}
	if r.logger != nil {
		r.logger.Debugw("grabcut done",
			"iterations", iterations,
			"foreground", out.Count(rimage.DefiniteForeground)+out.Count(rimage.ProbableForeground))
	}
	return out, nil
}

// imageToBGR copies img into an 8-bit, three channel BGR matrix.
func imageToBGR(img image.Image) gocv.Mat {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			mat.SetUCharAt(y, x*3+0, uint8(bl>>8))
			mat.SetUCharAt(y, x*3+1, uint8(g>>8))
			mat.SetUCharAt(y, x*3+2, uint8(r>>8))
		}
	}
	return mat
}

// trimapToMat copies the seed labels into a single channel matrix. The label values already
// match OpenCV's GC_BGD, GC_FGD, GC_PR_BGD and GC_PR_FGD.
func trimapToMat(seed *rimage.Trimap) gocv.Mat {
	mat := gocv.NewMatWithSize(seed.Height(), seed.Width(), gocv.MatTypeCV8UC1)
	for y := 0; y < seed.Height(); y++ {
		for x := 0; x < seed.Width(); x++ {
			mat.SetUCharAt(y, x, uint8(seed.Get(x, y)))
		}
	}
	return mat
}
