// Package config defines the file that configures a measurement run: the frame source and its
// pre-filters, the pipeline stages and where results go.
package config

import (
	"math"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/bridgewiz/trunkgauge/components/camera/transformpipeline"
	"github.com/bridgewiz/trunkgauge/logging"
	"github.com/bridgewiz/trunkgauge/rimage"
	"github.com/bridgewiz/trunkgauge/utils"
	"github.com/bridgewiz/trunkgauge/vision/edges"
	"github.com/bridgewiz/trunkgauge/vision/girth"
	"github.com/bridgewiz/trunkgauge/vision/segmentation"
)

// Defaults applied to fields left out of the file.
const (
	DefaultExpectedMaxDiameter = 0.5
	DefaultOutputDir           = "trunkgauge-records"
	DefaultLogLevel            = "info"
)

// Source types.
const (
	SourceFake   = "fake"
	SourceReplay = "replay"
)

// Cleaning configures the morphological cleanup of the depth band mask.
type Cleaning struct {
	Disabled  bool `json:"disabled,omitempty"`
	SmallSize int  `json:"small_px,omitempty" jsonschema_description:"side of the dilation square"`
	LargeSize int  `json:"large_px,omitempty" jsonschema_description:"side of the erosion square, at least twice small_px"`
}

// Segmentation selects the color refiner. An empty refiner skips refinement.
type Segmentation struct {
	Refiner         string             `json:"refiner,omitempty"`
	IncludeProbable bool               `json:"include_probable,omitempty"`
	Attributes      utils.AttributeMap `json:"attributes,omitempty"`
}

// Source selects where frames come from.
type Source struct {
	Type       string             `json:"type" jsonschema:"enum=fake,enum=replay"`
	Attributes utils.AttributeMap `json:"attributes,omitempty"`
}

// Config is the whole configuration file.
type Config struct {
	ConfigFilePath string `json:"-"`

	ExpectedMaxDiameter float64                            `json:"expected_max_diameter_m" jsonschema_description:"widest object expected, in meters"`
	Cleaning            Cleaning                           `json:"cleaning"`
	Segmentation        Segmentation                       `json:"segmentation"`
	MaskBoundarySource  string                             `json:"mask_boundary_source,omitempty" jsonschema:"enum=refined,enum=raw"`
	Strategies          []string                           `json:"strategies,omitempty"`
	PreFilters          []transformpipeline.Transformation `json:"pre_filters,omitempty"`
	Source              Source                             `json:"source"`
	DisableAnnotation   bool                               `json:"disable_annotation,omitempty"`
	OutputDir           string                             `json:"output_dir,omitempty"`
	LogLevel            string                             `json:"log_level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	LogFile             string                             `json:"log_file,omitempty"`
}

// Default returns the configuration used when no file is given: a synthetic scene measured with
// every strategy and no refiner.
func Default() *Config {
	cfg := &Config{Source: Source{Type: SourceFake}}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.ExpectedMaxDiameter == 0 {
		c.ExpectedMaxDiameter = DefaultExpectedMaxDiameter
	}
	if c.Cleaning.SmallSize == 0 {
		c.Cleaning.SmallSize = rimage.DefaultDilationSize
	}
	if c.Cleaning.LargeSize == 0 {
		c.Cleaning.LargeSize = rimage.DefaultErosionFactor * rimage.DefaultErosionSize
	}
	if c.MaskBoundarySource == "" {
		c.MaskBoundarySource = string(girth.MaskRefined)
	}
	if len(c.Strategies) == 0 {
		c.Strategies = lo.Map(edges.Kinds, func(k edges.Kind, _ int) string { return string(k) })
	}
	if c.Source.Type == "" {
		c.Source.Type = SourceFake
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate() error {
	if math.IsNaN(c.ExpectedMaxDiameter) || math.IsInf(c.ExpectedMaxDiameter, 0) || c.ExpectedMaxDiameter <= 0 {
		return utils.NewConfigValidationError("expected_max_diameter_m",
			errors.Errorf("must be a positive number of meters, got %v", c.ExpectedMaxDiameter))
	}
	pipeline := c.Pipeline()
	if err := pipeline.Validate("pipeline"); err != nil {
		return err
	}
	if c.Segmentation.Refiner != "" && !lo.Contains(segmentation.RegisteredRefiners(), c.Segmentation.Refiner) {
		return utils.NewConfigValidationError("segmentation",
			errors.Errorf("unknown refiner %q, have %v", c.Segmentation.Refiner, segmentation.RegisteredRefiners()))
	}
	for i := range c.PreFilters {
		if err := c.PreFilters[i].Validate("pre_filters"); err != nil {
			return err
		}
	}
	switch c.Source.Type {
	case SourceFake, SourceReplay:
	default:
		return utils.NewConfigValidationError("source", errors.Errorf("unknown source type %q", c.Source.Type))
	}
	if _, err := logging.LevelFromString(c.LogLevel); err != nil {
		return utils.NewConfigValidationError("log_level", err)
	}
	return nil
}

// Pipeline converts the pipeline part of the file.
func (c *Config) Pipeline() girth.Config {
	return girth.Config{
		Cleaning: girth.Cleaning{
			Enabled:   !c.Cleaning.Disabled,
			SmallSize: c.Cleaning.SmallSize,
			LargeSize: c.Cleaning.LargeSize,
		},
		IncludeProbable:    c.Segmentation.IncludeProbable,
		MaskBoundarySource: girth.MaskSource(c.MaskBoundarySource),
		Strategies:         lo.Map(c.Strategies, func(s string, _ int) edges.Kind { return edges.Kind(s) }),
		Annotate:           !c.DisableAnnotation,
	}
}

// Refiner builds the configured refiner, or returns nil when refinement is off.
func (c *Config) Refiner(logger logging.Logger) (segmentation.Refiner, error) {
	if c.Segmentation.Refiner == "" {
		return nil, nil
	}
	return segmentation.NewRefiner(c.Segmentation.Refiner, c.Segmentation.Attributes, logger)
}

// NewKnob returns the operator-adjustable expected diameter, starting at the configured value.
func (c *Config) NewKnob() (*utils.Knob, error) {
	return utils.NewKnob("expected_max_diameter_m", c.ExpectedMaxDiameter)
}
