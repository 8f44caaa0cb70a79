// Package girth measures the diameter of the object at the center of a frame: it gates the depth
// image to a band around the center distance, optionally cleans and refines the resulting mask,
// locates the object's edges on the center scanline with several independent strategies and
// reports one diameter per strategy.
//
// A Pipeline holds no per-frame state. Every buffer is allocated per call, so processing the
// same frame twice gives identical results.
package girth

import (
	"context"
	"image"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"github.com/bridgewiz/trunkgauge/components/camera"
	"github.com/bridgewiz/trunkgauge/logging"
	"github.com/bridgewiz/trunkgauge/rimage"
	"github.com/bridgewiz/trunkgauge/utils"
	"github.com/bridgewiz/trunkgauge/vision/diameter"
	"github.com/bridgewiz/trunkgauge/vision/edges"
	"github.com/bridgewiz/trunkgauge/vision/foreground"
	"github.com/bridgewiz/trunkgauge/vision/segmentation"
)

// MaskSource selects the mask the mask boundary strategy walks.
type MaskSource string

// The mask sources.
const (
	// MaskRefined is the segmented mask when segmentation succeeded, the unrefined mask otherwise.
	MaskRefined = MaskSource("refined")
	// MaskRaw is the depth band mask, after cleaning when cleaning is enabled.
	MaskRaw = MaskSource("raw")
)

// Cleaning configures the morphological cleanup of the band mask.
type Cleaning struct {
	Enabled   bool
	SmallSize int
	LargeSize int
}

// DefaultCleaning dilates with a 4x4 square and erodes with an 8x8 square.
func DefaultCleaning() Cleaning {
	return Cleaning{
		Enabled:   true,
		SmallSize: rimage.DefaultDilationSize,
		LargeSize: rimage.DefaultErosionFactor * rimage.DefaultErosionSize,
	}
}

// Config is the part of the pipeline configuration fixed at construction.
type Config struct {
	Cleaning           Cleaning
	IncludeProbable    bool
	MaskBoundarySource MaskSource
	Strategies         []edges.Kind
	Annotate           bool
}

// DefaultConfig runs every strategy on the refined mask, with cleaning and annotation.
func DefaultConfig() Config {
	return Config{
		Cleaning:           DefaultCleaning(),
		MaskBoundarySource: MaskRefined,
		Strategies:         append([]edges.Kind(nil), edges.Kinds...),
		Annotate:           true,
	}
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.Cleaning.Enabled {
		if cfg.Cleaning.SmallSize < 1 {
			return utils.NewConfigValidationError(path, errors.New("cleaning small_px must be at least 1"))
		}
		if cfg.Cleaning.LargeSize < 2*cfg.Cleaning.SmallSize {
			return utils.NewConfigValidationError(path,
				errors.Errorf("cleaning large_px (%d) must be at least twice small_px (%d)",
					cfg.Cleaning.LargeSize, cfg.Cleaning.SmallSize))
		}
	}
	switch cfg.MaskBoundarySource {
	case MaskRefined, MaskRaw:
	default:
		return utils.NewConfigValidationError(path,
			errors.Errorf("mask_boundary_source must be %q or %q, got %q", MaskRefined, MaskRaw, cfg.MaskBoundarySource))
	}
	if len(cfg.Strategies) == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "strategies")
	}
	seen := map[edges.Kind]bool{}
	for _, k := range cfg.Strategies {
		if _, err := edges.New(k); err != nil {
			return utils.NewConfigValidationError(path, err)
		}
		if seen[k] {
			return utils.NewConfigValidationError(path, errors.Errorf("strategy %q listed twice", k))
		}
		seen[k] = true
	}
	return nil
}

// Result is everything produced for one frame.
type Result struct {
	Measurement *diameter.Measurement
	Band        foreground.Band
	// BandMask is the thresholded depth band before any cleaning.
	BandMask *rimage.Mask
	// Unrefined is BandMask after cleaning, or BandMask itself without cleaning.
	Unrefined *rimage.Mask
	// Seed is the trimap handed to segmentation, nil when segmentation is off.
	Seed *rimage.Trimap
	// Mask is the final foreground mask.
	Mask    *rimage.Mask
	Refined bool
	// Foreground and Annotated are only set when the frame has a color image.
	Foreground image.Image
	Annotated  image.Image
}

// Pipeline measures frames.
type Pipeline struct {
	cfg        Config
	diameter   *utils.Knob
	engine     *segmentation.Engine
	strategies []edges.Strategy
	logger     logging.Logger
}

// NewPipeline validates cfg and builds the pipeline. expectedDiameter is read once per frame.
// refiner may be nil to skip segmentation.
func NewPipeline(
	cfg Config,
	expectedDiameter *utils.Knob,
	refiner segmentation.Refiner,
	logger logging.Logger,
) (*Pipeline, error) {
	if expectedDiameter == nil {
		return nil, errors.New("pipeline needs an expected diameter")
	}
	if err := cfg.Validate("pipeline"); err != nil {
		return nil, err
	}
	cfg.Strategies = append([]edges.Kind(nil), cfg.Strategies...)
	strategies := make([]edges.Strategy, 0, len(cfg.Strategies))
	for _, k := range cfg.Strategies {
		s, err := edges.New(k)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, s)
	}
	return &Pipeline{
		cfg:      cfg,
		diameter: expectedDiameter,
		engine: &segmentation.Engine{
			Refiner:         refiner,
			IncludeProbable: cfg.IncludeProbable,
			Logger:          logger.Sublogger("segmentation"),
		},
		strategies: strategies,
		logger:     logger,
	}, nil
}

// Config returns a copy of the pipeline configuration.
func (p *Pipeline) Config() Config {
	cfg := p.cfg
	cfg.Strategies = append([]edges.Kind(nil), p.cfg.Strategies...)
	return cfg
}

// Process measures one frame. Malformed frames return an error wrapping utils.ErrInvalidInput
// and no result. Failing to find an edge is not an error; it shows up as an invalid estimate.
func (p *Pipeline) Process(ctx context.Context, frame *camera.Frame) (*Result, error) {
	ctx, span := trace.StartSpan(ctx, "girth::Process")
	defer span.End()

	if err := frame.Validate(); err != nil {
		return nil, err
	}
	expected := p.diameter.Load()
	w, h := frame.Size()
	dist := frame.CenterDistanceMeters

	band, bandMask, err := p.gate(ctx, frame, expected)
	if err != nil {
		return nil, err
	}
	res := &Result{Band: band, BandMask: bandMask}

	var cleaned *rimage.Mask
	res.Unrefined = bandMask
	if p.cfg.Cleaning.Enabled {
		cleaned, err = p.clean(ctx, bandMask)
		if err != nil {
			return nil, err
		}
		res.Unrefined = cleaned
	}

	res.Mask = res.Unrefined
	if p.engine.Refiner != nil && frame.Color != nil {
		res.Seed, err = foreground.BuildTrimap(frame.Depth, band, cleaned)
		if err != nil {
			return nil, err
		}
		res.Mask, res.Refined = p.segment(ctx, frame.Color, res.Seed, res.Unrefined)
	}

	boundaryMask := res.Mask
	if p.cfg.MaskBoundarySource == MaskRaw {
		boundaryMask = res.Unrefined
	}
	results, err := p.locate(ctx, edges.Scene{
		Mask:                      boundaryMask,
		Cloud:                     frame.Cloud,
		Width:                     w,
		Height:                    h,
		CenterDistanceMeters:      dist,
		ExpectedMaxDiameterMeters: expected,
	})
	if err != nil {
		return nil, err
	}
	res.Measurement = diameter.NewMeasurement(dist, expected, results)

	if frame.Color != nil {
		res.Foreground, err = rimage.ApplyMask(frame.Color, res.Mask)
		if err != nil {
			return nil, err
		}
		if p.cfg.Annotate {
			res.Annotated = Annotate(frame.Color, res.Measurement)
		}
	}

	p.logger.Debugw("processed frame",
		"distance_m", dist,
		"expected_diameter_m", expected,
		"band_far", band.Far,
		"band_near", band.Near,
		"mask_pixels", res.Mask.Count(),
		"refined", res.Refined,
		"measurement", res.Measurement.String())
	return res, nil
}

func (p *Pipeline) gate(ctx context.Context, frame *camera.Frame, expected float64) (foreground.Band, *rimage.Mask, error) {
	_, span := trace.StartSpan(ctx, "girth::mask")
	defer span.End()
	band, err := foreground.NewBand(foreground.CenterIntensity(frame.Depth), frame.CenterDistanceMeters, expected)
	if err != nil {
		return foreground.Band{}, nil, err
	}
	return band, band.Mask(frame.Depth), nil
}

func (p *Pipeline) clean(ctx context.Context, m *rimage.Mask) (*rimage.Mask, error) {
	_, span := trace.StartSpan(ctx, "girth::clean")
	defer span.End()
	return rimage.CleanMask(m, p.cfg.Cleaning.SmallSize, p.cfg.Cleaning.LargeSize)
}

func (p *Pipeline) segment(
	ctx context.Context,
	color image.Image,
	seed *rimage.Trimap,
	fallback *rimage.Mask,
) (*rimage.Mask, bool) {
	ctx, span := trace.StartSpan(ctx, "girth::segment")
	defer span.End()
	return p.engine.Segment(ctx, color, seed, fallback)
}

func (p *Pipeline) locate(ctx context.Context, scene edges.Scene) ([]edges.Result, error) {
	_, span := trace.StartSpan(ctx, "girth::edges")
	defer span.End()
	return edges.Locate(scene, p.strategies...)
}

// markerColors gives each strategy its own marker color.
var markerColors = map[edges.Kind]rimage.Marker{
	edges.KindMaskBoundary:       {Color: rimage.Green},
	edges.KindCloudDiscontinuity: {Color: rimage.Blue},
	edges.KindNeighborCorrected:  {Color: rimage.Yellow},
}

// Annotate draws the scanline crosshair and every edge column that was found.
func Annotate(img image.Image, m *diameter.Measurement) image.Image {
	var markers []rimage.Marker
	for _, e := range m.Estimates {
		for _, side := range []edges.EdgeEstimate{e.Left, e.Right} {
			if side.Column == nil {
				continue
			}
			marker := markerColors[e.Strategy]
			marker.Column = *side.Column
			markers = append(markers, marker)
		}
	}
	return rimage.Annotate(img, markers...)
}
