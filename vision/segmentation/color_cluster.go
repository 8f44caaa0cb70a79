package segmentation

import (
	"context"
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/pkg/errors"

	"github.com/bridgewiz/trunkgauge/logging"
	"github.com/bridgewiz/trunkgauge/rimage"
	"github.com/bridgewiz/trunkgauge/utils"
)

// ColorClusterName is the registered name of ColorClusterRefiner.
const ColorClusterName = "color_cluster"

const (
	backgroundCluster = 0
	foregroundCluster = 1
)

func init() {
	RegisterRefiner(ColorClusterName, func(attributes utils.AttributeMap, logger logging.Logger) (Refiner, error) {
		conf, err := utils.TransformAttributeMap[*ColorClusterConfig](attributes)
		if err != nil {
			return nil, err
		}
		if err := conf.Validate("segmentation.attributes"); err != nil {
			return nil, err
		}
		return &ColorClusterRefiner{MaxIterations: conf.MaxIterations, logger: logger}, nil
	})
}

// ColorClusterConfig are the attributes of a color_cluster refiner.
type ColorClusterConfig struct {
	MaxIterations int `json:"max_iterations"`
}

// Validate ensures all parts of the config are valid.
func (cfg *ColorClusterConfig) Validate(path string) error {
	if cfg.MaxIterations < 0 {
		return utils.NewConfigValidationError(path, errors.New("max_iterations cannot be negative"))
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = 5
	}
	return nil
}

// labObservation is one pixel in CIE-Lab space.
type labObservation struct {
	l float64
	a float64
	b float64
}

func newLabObservation(c colorful.Color) labObservation {
	l, a, b := c.Lab()
	return labObservation{l: l, a: a, b: b}
}

func (o labObservation) Coordinates() clusters.Coordinates {
	return clusters.Coordinates{o.l, o.a, o.b}
}

// Distance is the CIE76 color difference, the same as colorful's DistanceLab but without
// converting the cluster center back out of Lab.
func (o labObservation) Distance(point clusters.Coordinates) float64 {
	dl, da, db := o.l-point[0], o.a-point[1], o.b-point[2]
	return math.Sqrt(dl*dl + da*da + db*db)
}

// ColorClusterRefiner is a two-cluster color model. The clusters start from the seed's
// foreground and background labels; each iteration moves every probable pixel to the cluster
// with the nearer Lab center and recomputes the centers, until nothing moves or MaxIterations is
// reached. Definite pixels keep their label. There is no randomness, so the same input always
// gives the same output.
type ColorClusterRefiner struct {
	MaxIterations int
	logger        logging.Logger
}

// Refine implements Refiner.
func (r *ColorClusterRefiner) Refine(ctx context.Context, img image.Image, seed *rimage.Trimap) (*rimage.Trimap, error) {
	if err := ValidateSeed(seed); err != nil {
		return nil, err
	}
	w, h := seed.Width(), seed.Height()
	b := img.Bounds()
	if b.Dx() != w || b.Dy() != h {
		return nil, errors.Wrapf(ErrSegmentationFailed, "color image is %dx%d, seed is %dx%d", b.Dx(), b.Dy(), w, h)
	}

	n := w * h
	obs := make([]labObservation, n)
	labels := make([]rimage.TrimapLabel, n)
	assign := make([]int, n)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			c, _ := colorful.MakeColor(img.At(b.Min.X+x, b.Min.Y+y))
			obs[i] = newLabObservation(c)
			labels[i] = seed.Get(x, y)
			if labels[i].IsForeground() {
				assign[i] = foregroundCluster
			} else {
				assign[i] = backgroundCluster
			}
		}
	}

	cs := clusters.Clusters{{}, {}}
	for i := range obs {
		cs[assign[i]].Append(obs[i])
	}
	cs.Recenter()

	maxIter := r.MaxIterations
	if maxIter <= 0 {
		maxIter = 1
	}
	for iter := 0; iter < maxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cs.Reset()
		moved := 0
		for i := range obs {
			if labels[i].IsProbable() {
				if k := cs.Nearest(obs[i]); k != assign[i] {
					assign[i] = k
					moved++
				}
			}
			cs[assign[i]].Append(obs[i])
		}
		if len(cs[foregroundCluster].Observations) == 0 || len(cs[backgroundCluster].Observations) == 0 {
			return nil, errors.Wrap(ErrSegmentationFailed, "a color cluster became empty")
		}
		cs.Recenter()
		if r.logger != nil {
			r.logger.Debugw("color cluster iteration", "iteration", iter, "moved", moved)
		}
		if moved == 0 {
			break
		}
	}

	out := seed.Clone()
	for i, l := range labels {
		if !l.IsProbable() {
			continue
		}
		if assign[i] == foregroundCluster {
			out.Set(i%w, i/w, rimage.ProbableForeground)
		} else {
			out.Set(i%w, i/w, rimage.ProbableBackground)
		}
	}
	return out, nil
}
