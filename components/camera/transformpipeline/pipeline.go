// Package transformpipeline defines pre-filters that are applied to frames before measurement,
// and a camera.Source that composes them. Every transform maps an image to an image of the same
// size, so transforms can be added, removed and reordered freely.
package transformpipeline

import (
	"context"
	"image"
	"sort"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"github.com/bridgewiz/trunkgauge/components/camera"
	"github.com/bridgewiz/trunkgauge/logging"
	"github.com/bridgewiz/trunkgauge/rimage"
	"github.com/bridgewiz/trunkgauge/utils"
)

// Stream is the part of a frame a transform applies to.
type Stream string

// The transformable streams.
const (
	ColorStream = Stream("color")
	DepthStream = Stream("depth")
)

// TransformType is the name of a transform in configuration.
type TransformType string

// The registered transforms.
const (
	TransformHoleFill    = TransformType("hole_fill")
	TransformBlur        = TransformType("blur")
	TransformInvertDepth = TransformType("invert_depth")
)

// Transformation is one configured step of a pipeline.
type Transformation struct {
	Type       string             `json:"type"`
	Attributes utils.AttributeMap `json:"attributes"`
}

// Validate ensures all parts of the config are valid.
func (t *Transformation) Validate(path string) error {
	if t.Type == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "type")
	}
	if _, ok := registry[TransformType(t.Type)]; !ok {
		return utils.NewConfigValidationError(path, errors.Errorf("unknown transform type %q", t.Type))
	}
	return nil
}

// A Transform is a pre-filter on one stream.
type Transform interface {
	Stream() Stream
	Apply(ctx context.Context, img image.Image) (image.Image, error)
}

type constructor func(attributes utils.AttributeMap) (Transform, error)

var registry = map[TransformType]constructor{
	TransformHoleFill:    newHoleFillTransform,
	TransformBlur:        newBlurTransform,
	TransformInvertDepth: newInvertDepthTransform,
}

// TransformTypes lists the registered transform names.
func TransformTypes() []string {
	names := make([]string, 0, len(registry))
	for t := range registry {
		names = append(names, string(t))
	}
	sort.Strings(names)
	return names
}

// Build constructs the configured transforms in order.
func Build(cfgs []Transformation) ([]Transform, error) {
	out := make([]Transform, 0, len(cfgs))
	for i, cfg := range cfgs {
		ctor, ok := registry[TransformType(cfg.Type)]
		if !ok {
			return nil, errors.Errorf("transform %d: unknown type %q, expected one of %v", i, cfg.Type, TransformTypes())
		}
		tr, err := ctor(cfg.Attributes)
		if err != nil {
			return nil, errors.Wrapf(err, "transform %d (%s)", i, cfg.Type)
		}
		out = append(out, tr)
	}
	return out, nil
}

// Apply runs the transforms over a copy of frame. The input frame is not modified.
func Apply(ctx context.Context, frame *camera.Frame, transforms []Transform) (*camera.Frame, error) {
	ctx, span := trace.StartSpan(ctx, "camera::transformpipeline::Apply")
	defer span.End()

	out := *frame
	for i, tr := range transforms {
		var src image.Image
		switch tr.Stream() {
		case ColorStream:
			src = out.Color
		case DepthStream:
			if out.Depth != nil {
				src = out.Depth
			}
		}
		if src == nil {
			return nil, errors.Errorf("transform %d needs a %s image", i, tr.Stream())
		}
		res, err := tr.Apply(ctx, src)
		if err != nil {
			return nil, errors.Wrapf(err, "transform %d", i)
		}
		if !rimage.SameImgSize(src, res) {
			return nil, errors.Errorf("transform %d changed the %s image from %v to %v",
				i, tr.Stream(), src.Bounds().Size(), res.Bounds().Size())
		}
		switch tr.Stream() {
		case ColorStream:
			out.Color = res
		case DepthStream:
			out.Depth = rimage.ConvertImageToIntensityMap(res)
		}
	}
	return &out, nil
}

// pipelineSource applies transforms to every frame of an underlying source.
type pipelineSource struct {
	src        camera.Source
	transforms []Transform
	logger     logging.Logger
}

// New wraps src with the configured transforms. With no transforms src is returned as is.
func New(src camera.Source, cfgs []Transformation, logger logging.Logger) (camera.Source, error) {
	if src == nil {
		return nil, errors.New("no source for transform pipeline")
	}
	if len(cfgs) == 0 {
		return src, nil
	}
	transforms, err := Build(cfgs)
	if err != nil {
		return nil, err
	}
	return &pipelineSource{src: src, transforms: transforms, logger: logger}, nil
}

func (ps *pipelineSource) NextFrame(ctx context.Context) (*camera.Frame, error) {
	ctx, span := trace.StartSpan(ctx, "camera::transformpipeline::NextFrame")
	defer span.End()
	frame, err := ps.src.NextFrame(ctx)
	if err != nil {
		return nil, err
	}
	out, err := Apply(ctx, frame, ps.transforms)
	if err != nil {
		return nil, err
	}
	ps.logger.Debugw("applied pre-filters", "count", len(ps.transforms))
	return out, nil
}

func (ps *pipelineSource) Close(ctx context.Context) error {
	return ps.src.Close(ctx)
}
