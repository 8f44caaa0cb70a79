package config

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/bridgewiz/trunkgauge/components/camera"
	"github.com/bridgewiz/trunkgauge/components/camera/fake"
	"github.com/bridgewiz/trunkgauge/components/camera/replay"
	"github.com/bridgewiz/trunkgauge/components/camera/transformpipeline"
	"github.com/bridgewiz/trunkgauge/logging"
	"github.com/bridgewiz/trunkgauge/utils"
)

// ReplayConfig is the attributes of a replay source.
type ReplayConfig struct {
	Dir string `json:"dir"`
}

// Validate ensures all parts of the config are valid.
func (cfg *ReplayConfig) Validate(path string) error {
	if cfg.Dir == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "dir")
	}
	return nil
}

// FakeConfig decodes the fake source attributes over the default scene.
func (c *Config) FakeConfig() (fake.Config, error) {
	cfg := fake.DefaultConfig()
	if err := utils.DecodeAttributes(c.Source.Attributes, &cfg); err != nil {
		return fake.Config{}, utils.NewConfigValidationError("source.attributes", err)
	}
	return cfg, cfg.Validate("source.attributes")
}

// NewSource opens the configured frame source with the pre-filters applied to every frame.
func (c *Config) NewSource(ctx context.Context, logger logging.Logger) (camera.Source, error) {
	var src camera.Source
	switch c.Source.Type {
	case SourceFake:
		cfg, err := c.FakeConfig()
		if err != nil {
			return nil, err
		}
		if src, err = fake.NewSource(cfg, logger.Sublogger("fake")); err != nil {
			return nil, err
		}
	case SourceReplay:
		cfg, err := utils.TransformAttributeMap[*ReplayConfig](c.Source.Attributes)
		if err != nil {
			return nil, utils.NewConfigValidationError("source.attributes", err)
		}
		if err := cfg.Validate("source.attributes"); err != nil {
			return nil, err
		}
		if src, err = replay.NewSource(cfg.Dir, logger.Sublogger("replay")); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Errorf("unknown source type %q", c.Source.Type)
	}
	filtered, err := transformpipeline.New(src, c.PreFilters, logger.Sublogger("prefilter"))
	if err != nil {
		return nil, multierr.Combine(err, src.Close(ctx))
	}
	return filtered, nil
}
