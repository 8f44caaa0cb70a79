// Package segmentation refines the depth-gated foreground with color information. A Refiner
// takes a trimap seed and relabels its probable pixels; the Engine wraps a Refiner so that any
// failure degrades to the unrefined mask instead of failing the frame.
package segmentation

import (
	"context"
	"image"

	"github.com/pkg/errors"

	"github.com/bridgewiz/trunkgauge/logging"
	"github.com/bridgewiz/trunkgauge/rimage"
)

// ErrSegmentationFailed is returned (wrapped) by refiners that could not produce a result.
var ErrSegmentationFailed = errors.New("segmentation failed")

// A Refiner relabels a trimap seed using the color image. Definite labels of the seed must be
// preserved; probable labels may be changed. The seed must not be modified.
type Refiner interface {
	Refine(ctx context.Context, color image.Image, seed *rimage.Trimap) (*rimage.Trimap, error)
}

// ValidateSeed checks that a seed has both a foreground and a background to learn from.
func ValidateSeed(seed *rimage.Trimap) error {
	if seed == nil || seed.Width() == 0 || seed.Height() == 0 {
		return errors.Wrap(ErrSegmentationFailed, "empty seed")
	}
	fg := seed.Count(rimage.DefiniteForeground) + seed.Count(rimage.ProbableForeground)
	bg := seed.Count(rimage.DefiniteBackground) + seed.Count(rimage.ProbableBackground)
	if fg == 0 {
		return errors.Wrap(ErrSegmentationFailed, "seed has no foreground")
	}
	if bg == 0 {
		return errors.Wrap(ErrSegmentationFailed, "seed has no background")
	}
	return nil
}

// Engine runs an optional Refiner and thresholds its output.
type Engine struct {
	Refiner Refiner
	// IncludeProbable keeps probable foreground in the output mask, otherwise only definite
	// foreground survives.
	IncludeProbable bool
	Logger          logging.Logger
}

// Segment refines seed and returns the foreground mask, or fallback when there is no refiner or
// the refinement fails. refined reports which of the two was returned.
func (e *Engine) Segment(
	ctx context.Context,
	color image.Image,
	seed *rimage.Trimap,
	fallback *rimage.Mask,
) (mask *rimage.Mask, refined bool) {
	if e.Refiner == nil {
		return fallback, false
	}
	out, err := e.refine(ctx, color, seed)
	if err != nil {
		e.logger().Warnw("falling back to unrefined mask", "error", err)
		return fallback, false
	}
	return out, true
}

func (e *Engine) refine(ctx context.Context, color image.Image, seed *rimage.Trimap) (*rimage.Mask, error) {
	if err := ValidateSeed(seed); err != nil {
		return nil, err
	}
	if color == nil {
		return nil, errors.Wrap(ErrSegmentationFailed, "no color image")
	}
	b := color.Bounds()
	if b.Dx() != seed.Width() || b.Dy() != seed.Height() {
		return nil, errors.Wrapf(ErrSegmentationFailed, "color image is %dx%d, seed is %dx%d",
			b.Dx(), b.Dy(), seed.Width(), seed.Height())
	}
	out, err := e.Refiner.Refine(ctx, color, seed)
	if err != nil {
		return nil, err
	}
	if out == nil || out.Width() != seed.Width() || out.Height() != seed.Height() {
		return nil, errors.Wrap(ErrSegmentationFailed, "refiner returned a trimap of the wrong size")
	}
	mask := out.Foreground(e.IncludeProbable)
	if mask.Count() == 0 {
		return nil, errors.Wrap(ErrSegmentationFailed, "refined foreground is empty")
	}
	return mask, nil
}

func (e *Engine) logger() logging.Logger {
	if e.Logger == nil {
		return logging.NewBlankLogger("segmentation")
	}
	return e.Logger
}
