// Package fake is a camera.Source that renders a synthetic tree trunk in front of a background,
// for tests, demos and the synth command.
package fake

import (
	"context"
	"image"
	"image/color"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/bridgewiz/trunkgauge/components/camera"
	"github.com/bridgewiz/trunkgauge/logging"
	"github.com/bridgewiz/trunkgauge/pointcloud"
	"github.com/bridgewiz/trunkgauge/rimage"
	"github.com/bridgewiz/trunkgauge/utils"
)

// Colors of the rendered scene.
var (
	BarkColor  = color.NRGBA{R: 110, G: 78, B: 46, A: 255}
	GrassColor = color.NRGBA{R: 58, G: 140, B: 52, A: 255}
)

// Config describes the synthetic scene. Columns are inclusive pixel columns of the trunk
// silhouette; a background distance of 0 renders a background without depth return.
type Config struct {
	Width               int     `json:"width_px"`
	Height              int     `json:"height_px"`
	TrunkLeft           int     `json:"trunk_left_px"`
	TrunkRight          int     `json:"trunk_right_px"`
	TrunkDistance       float64 `json:"trunk_distance_m"`
	BackgroundDistance  float64 `json:"background_distance_m"`
	MaxRange            float64 `json:"max_range_m"`
	HorizontalFOVDegree float64 `json:"hfov_degs"`
}

// DefaultConfig is a 640x480 frame of a trunk about 40cm wide, one meter away.
func DefaultConfig() Config {
	return Config{
		Width:               640,
		Height:              480,
		TrunkLeft:           240,
		TrunkRight:          399,
		TrunkDistance:       1.0,
		BackgroundDistance:  3.5,
		MaxRange:            4.0,
		HorizontalFOVDegree: 77.3,
	}
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("invalid frame size %dx%d", cfg.Width, cfg.Height))
	}
	if cfg.TrunkLeft < 0 || cfg.TrunkRight >= cfg.Width || cfg.TrunkLeft > cfg.TrunkRight {
		return utils.NewConfigValidationError(path,
			errors.Errorf("trunk columns [%d, %d] do not fit a frame %d wide", cfg.TrunkLeft, cfg.TrunkRight, cfg.Width))
	}
	if cfg.TrunkDistance <= 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "trunk_distance_m")
	}
	if cfg.BackgroundDistance < 0 {
		return utils.NewConfigValidationError(path, errors.New("background_distance_m cannot be negative"))
	}
	if cfg.MaxRange <= cfg.TrunkDistance || cfg.MaxRange < cfg.BackgroundDistance {
		return utils.NewConfigValidationError(path, errors.New("max_range_m must exceed every rendered distance"))
	}
	if cfg.HorizontalFOVDegree <= 0 || cfg.HorizontalFOVDegree >= 180 {
		return utils.NewConfigValidationError(path, errors.Errorf("invalid hfov_degs %v", cfg.HorizontalFOVDegree))
	}
	return nil
}

// metersPerPixel is the lateral size of one pixel at distance z.
func (cfg *Config) metersPerPixel(z float64) float64 {
	halfFOV := cfg.HorizontalFOVDegree / 2 * math.Pi / 180
	return z * math.Tan(halfFOV) / (float64(cfg.Width) / 2)
}

// TrunkDiameterMeters is the width of the rendered silhouette at the trunk distance.
func (cfg *Config) TrunkDiameterMeters() float64 {
	return float64(cfg.TrunkRight-cfg.TrunkLeft) * cfg.metersPerPixel(cfg.TrunkDistance)
}

// Intensity colorizes a depth so that nearer is brighter. Missing depth maps to the sentinel.
func (cfg *Config) Intensity(z float64) uint8 {
	if !pointcloud.IsValidDepth(z) {
		return rimage.NoReturnIntensity
	}
	v := math.Round(255 * (1 - z/cfg.MaxRange))
	return uint8(math.Max(1, math.Min(255, v)))
}

// Render draws the scene. The trunk is a vertical cylinder whose nearest point is at
// TrunkDistance.
func Render(cfg Config) (*camera.Frame, error) {
	if err := cfg.Validate("fake"); err != nil {
		return nil, err
	}
	w, h := cfg.Width, cfg.Height
	cx := w / 2
	radius := cfg.TrunkDiameterMeters() / 2
	axis := float64(cfg.TrunkLeft+cfg.TrunkRight) / 2
	mpp := cfg.metersPerPixel(cfg.TrunkDistance)

	colorImg := image.NewNRGBA(image.Rect(0, 0, w, h))
	depth := rimage.NewEmptyIntensityMap(w, h)
	cloud := pointcloud.NewVertices(w, h)
	for col := 0; col < w; col++ {
		z := cfg.BackgroundDistance
		c := GrassColor
		pixel := cfg.metersPerPixel(z)
		if col >= cfg.TrunkLeft && col <= cfg.TrunkRight {
			// lateral positions on the trunk are those of its silhouette plane
			off := (float64(col) - axis) * mpp
			z = cfg.TrunkDistance + radius - math.Sqrt(math.Max(0, radius*radius-off*off))
			c = BarkColor
			pixel = mpp
		}
		for row := 0; row < h; row++ {
			colorImg.SetNRGBA(col, row, c)
			depth.Set(col, row, cfg.Intensity(z))
			if !pointcloud.IsValidDepth(z) {
				continue
			}
			v := pointcloud.NewVector(float64(col-cx)*pixel, float64(row-h/2)*pixel, z)
			if err := cloud.Set(row, col, w, v); err != nil {
				return nil, err
			}
		}
	}
	return &camera.Frame{
		Color:                colorImg,
		Depth:                depth,
		Cloud:                cloud,
		CenterDistanceMeters: camera.CenterDistanceFromCloud(cloud, w, h),
		CapturedAt:           time.Now(),
	}, nil
}

// Source serves the same rendered scene on every call.
type Source struct {
	frame  *camera.Frame
	logger logging.Logger
}

// NewSource renders the scene once.
func NewSource(cfg Config, logger logging.Logger) (*Source, error) {
	frame, err := Render(cfg)
	if err != nil {
		return nil, err
	}
	logger.Debugw("rendered synthetic trunk",
		"width", cfg.Width, "height", cfg.Height,
		"diameter_m", cfg.TrunkDiameterMeters(), "distance_m", frame.CenterDistanceMeters)
	return &Source{frame: frame, logger: logger}, nil
}

// NextFrame returns a copy of the scene stamped with the current time.
func (s *Source) NextFrame(ctx context.Context) (*camera.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f := s.frame.Clone()
	f.CapturedAt = time.Now()
	return f, nil
}

// Close does nothing.
func (s *Source) Close(ctx context.Context) error {
	return nil
}
