// Package replay serves a frame previously written to a directory, so that a capture can be
// measured again offline.
//
// A frame directory holds three files: color.png, depth.png (8-bit gray, nearer is brighter, 0
// for no return) and cloud.csv (one "x,y,z" line per pixel, row-major).
package replay

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/bridgewiz/trunkgauge/components/camera"
	"github.com/bridgewiz/trunkgauge/logging"
	"github.com/bridgewiz/trunkgauge/pointcloud"
	"github.com/bridgewiz/trunkgauge/rimage"
)

// File names inside a frame directory.
const (
	ColorFile = "color.png"
	DepthFile = "depth.png"
	CloudFile = "cloud.csv"
)

// ReadFrame loads a frame directory. The center distance is read from the center vertex.
func ReadFrame(dir string) (*camera.Frame, error) {
	colorImg, err := rimage.ReadImageFromFile(filepath.Join(dir, ColorFile))
	if err != nil {
		return nil, err
	}
	depthImg, err := rimage.ReadImageFromFile(filepath.Join(dir, DepthFile))
	if err != nil {
		return nil, err
	}
	cloud, err := readCloud(filepath.Join(dir, CloudFile))
	if err != nil {
		return nil, err
	}
	depth := rimage.ConvertImageToIntensityMap(depthImg)

	info, err := os.Stat(filepath.Join(dir, CloudFile))
	if err != nil {
		return nil, err
	}
	frame := &camera.Frame{
		Color:                colorImg,
		Depth:                depth,
		Cloud:                cloud,
		CenterDistanceMeters: camera.CenterDistanceFromCloud(cloud, depth.Width(), depth.Height()),
		CapturedAt:           info.ModTime(),
	}
	if err := frame.Validate(); err != nil {
		return nil, errors.Wrapf(err, "frame in %q", dir)
	}
	return frame, nil
}

func readCloud(path string) (vs pointcloud.Vertices, err error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open point cloud %q", path)
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	vs, err = pointcloud.ReadCSV(f)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read point cloud %q", path)
	}
	return vs, nil
}

// WriteFrame stores frame in dir in the layout ReadFrame expects.
func WriteFrame(dir string, frame *camera.Frame) (err error) {
	if err := frame.Validate(); err != nil {
		return err
	}
	if frame.Color == nil {
		return errors.New("frame has no color image to write")
	}
	if err := rimage.WriteImageToFile(filepath.Join(dir, ColorFile), frame.Color); err != nil {
		return err
	}
	if err := rimage.WriteImageToFile(filepath.Join(dir, DepthFile), frame.Depth.ToGray()); err != nil {
		return err
	}
	//nolint:gosec
	f, err := os.Create(filepath.Join(dir, CloudFile))
	if err != nil {
		return errors.Wrap(err, "cannot create point cloud file")
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return pointcloud.WriteCSV(f, frame.Cloud)
}

// Source serves one recorded frame on every call.
type Source struct {
	dir    string
	frame  *camera.Frame
	logger logging.Logger
}

// NewSource loads the frame in dir.
func NewSource(dir string, logger logging.Logger) (*Source, error) {
	frame, err := ReadFrame(dir)
	if err != nil {
		return nil, err
	}
	w, h := frame.Size()
	logger.Debugw("loaded recorded frame", "dir", dir, "width", w, "height", h, "distance_m", frame.CenterDistanceMeters)
	return &Source{dir: dir, frame: frame, logger: logger}, nil
}

// NextFrame returns a copy of the recorded frame.
func (s *Source) NextFrame(ctx context.Context) (*camera.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.frame.Clone(), nil
}

// Close does nothing.
func (s *Source) Close(ctx context.Context) error {
	return nil
}
