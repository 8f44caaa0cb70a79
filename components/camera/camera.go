// Package camera defines the synchronized frame triple the measurement pipeline consumes and the
// sources that produce it.
//
// Registration of depth to color is assumed to have happened upstream: all three parts of a
// Frame share one width and height and one pixel grid.
package camera

import (
	"context"
	"image"
	"math"
	"time"

	"github.com/bridgewiz/trunkgauge/pointcloud"
	"github.com/bridgewiz/trunkgauge/rimage"
	"github.com/bridgewiz/trunkgauge/utils"
)

// Frame is one synchronized capture.
type Frame struct {
	Color image.Image
	Depth *rimage.IntensityMap
	Cloud pointcloud.Vertices
	// CenterDistanceMeters is the sensor's distance reading at the center pixel.
	CenterDistanceMeters float64
	CapturedAt           time.Time
}

// Size returns the depth image dimensions, which every other part must match.
func (f *Frame) Size() (width, height int) {
	if f.Depth == nil {
		return 0, 0
	}
	return f.Depth.Width(), f.Depth.Height()
}

// Validate checks that the frame can be measured. Errors wrap utils.ErrInvalidInput.
func (f *Frame) Validate() error {
	if f == nil {
		return utils.NewInputError("no frame")
	}
	if f.Depth == nil || !f.Depth.HasData() {
		return utils.NewInputError("depth image is empty")
	}
	w, h := f.Size()
	if f.Color != nil {
		b := f.Color.Bounds()
		if b.Dx() != w || b.Dy() != h {
			return utils.NewInputError("color image is %dx%d, depth image is %dx%d", b.Dx(), b.Dy(), w, h)
		}
	}
	if err := f.Cloud.CheckSize(w, h); err != nil {
		return utils.NewInputError("%v", err)
	}
	if !(f.CenterDistanceMeters > 0) || math.IsInf(f.CenterDistanceMeters, 0) {
		return utils.NewInputError("center distance must be a positive number of meters, got %v", f.CenterDistanceMeters)
	}
	return nil
}

// Clone returns a deep copy of the depth image and point cloud. The color image is shared since
// nothing in the pipeline writes to it.
func (f *Frame) Clone() *Frame {
	out := *f
	if f.Depth != nil {
		out.Depth = f.Depth.Clone()
	}
	if f.Cloud != nil {
		out.Cloud = f.Cloud.Clone()
	}
	return &out
}

// CenterDistanceFromCloud reads the z of the center vertex, the way the sensor reports the
// distance to the center pixel.
func CenterDistanceFromCloud(cloud pointcloud.Vertices, width, height int) float64 {
	return cloud.Z(height/2, width/2, width)
}

// A Source produces frames on demand.
type Source interface {
	NextFrame(ctx context.Context) (*Frame, error)
	Close(ctx context.Context) error
}
