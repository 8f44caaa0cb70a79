// Package edges locates the left and right boundary of the object straddling the image center.
//
// Every strategy scans the single scanline at row height/2, starting at column width/2 and
// walking outward one pixel at a time on each side. A side whose scan reaches the image border
// without finding a boundary is reported invalid; that is a normal outcome, not an error.
package edges

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/bridgewiz/trunkgauge/pointcloud"
	"github.com/bridgewiz/trunkgauge/rimage"
	"github.com/bridgewiz/trunkgauge/utils"
)

// Kind names an edge strategy.
type Kind string

// The available strategies.
const (
	KindMaskBoundary       = Kind("mask_boundary")
	KindCloudDiscontinuity = Kind("cloud_discontinuity")
	KindNeighborCorrected  = Kind("neighbor_corrected")
)

// Kinds lists every strategy in reporting order.
var Kinds = []Kind{KindMaskBoundary, KindCloudDiscontinuity, KindNeighborCorrected}

// Letter returns the short label used in records and annotations.
func (k Kind) Letter() string {
	switch k {
	case KindMaskBoundary:
		return "A"
	case KindCloudDiscontinuity:
		return "B"
	case KindNeighborCorrected:
		return "C"
	}
	return "?"
}

// Side is a scan direction expressed as a column step.
type Side int

// The two scan directions.
const (
	Left  = Side(-1)
	Right = Side(1)
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// EdgeEstimate is the boundary found on one side. Column and Point are set whenever they could be
// determined, even if the estimate as a whole is not usable.
type EdgeEstimate struct {
	Column *int
	Point  *r3.Vector
	Valid  bool
}

func invalidEdge() EdgeEstimate {
	return EdgeEstimate{}
}

func columnOnly(col int) EdgeEstimate {
	return EdgeEstimate{Column: &col}
}

func validEdge(col int, pt r3.Vector) EdgeEstimate {
	return EdgeEstimate{Column: &col, Point: &pt, Valid: true}
}

// Result holds both sides found by one strategy.
type Result struct {
	Strategy Kind
	Left     EdgeEstimate
	Right    EdgeEstimate
}

// Side returns the estimate for s.
func (r Result) Side(s Side) EdgeEstimate {
	if s == Left {
		return r.Left
	}
	return r.Right
}

// Valid reports whether both sides were found.
func (r Result) Valid() bool {
	return r.Left.Valid && r.Right.Valid
}

// Scene is everything a strategy may look at. Mask may be nil for strategies that only use the
// point cloud.
type Scene struct {
	Mask                      *rimage.Mask
	Cloud                     pointcloud.Vertices
	Width                     int
	Height                    int
	CenterDistanceMeters      float64
	ExpectedMaxDiameterMeters float64
}

// Row is the scanline.
func (s Scene) Row() int {
	return s.Height / 2
}

// CenterColumn is where every scan starts.
func (s Scene) CenterColumn() int {
	return s.Width / 2
}

// InBounds reports whether col lies on the scanline.
func (s Scene) InBounds(col int) bool {
	return col >= 0 && col < s.Width
}

// Vertex returns the point cloud vertex under column col of the scanline.
func (s Scene) Vertex(col int) (r3.Vector, error) {
	return s.Cloud.At(s.Row(), col, s.Width)
}

// Depth returns the z of column col of the scanline, NaN when unavailable.
func (s Scene) Depth(col int) float64 {
	return s.Cloud.Z(s.Row(), col, s.Width)
}

// Validate checks that the scene is internally consistent.
func (s Scene) Validate() error {
	if err := s.Cloud.CheckSize(s.Width, s.Height); err != nil {
		return utils.NewInputError("%v", err)
	}
	if s.Mask != nil && (s.Mask.Width() != s.Width || s.Mask.Height() != s.Height) {
		return utils.NewInputError("mask is %dx%d, scene is %dx%d", s.Mask.Width(), s.Mask.Height(), s.Width, s.Height)
	}
	if !(s.CenterDistanceMeters > 0) || math.IsInf(s.CenterDistanceMeters, 0) {
		return utils.NewInputError("center distance must be a positive number of meters, got %v", s.CenterDistanceMeters)
	}
	if !(s.ExpectedMaxDiameterMeters > 0) || math.IsInf(s.ExpectedMaxDiameterMeters, 0) {
		return utils.NewInputError("expected max diameter must be a positive number of meters, got %v",
			s.ExpectedMaxDiameterMeters)
	}
	return nil
}

// A Strategy finds the two boundaries of the object on the scanline.
type Strategy interface {
	Name() Kind
	LocateEdges(scene Scene) Result
}

// New returns the strategy registered under kind.
func New(kind Kind) (Strategy, error) {
	switch kind {
	case KindMaskBoundary:
		return MaskBoundary{}, nil
	case KindCloudDiscontinuity:
		return CloudDiscontinuity{}, nil
	case KindNeighborCorrected:
		return NeighborCorrected{}, nil
	}
	return nil, errors.Errorf("unknown edge strategy %q", kind)
}

// Locate validates the scene once and runs every strategy on it. Strategies only read the scene,
// so they run concurrently; results keep the order of strategies.
func Locate(scene Scene, strategies ...Strategy) ([]Result, error) {
	if err := scene.Validate(); err != nil {
		return nil, err
	}
	results := make([]Result, len(strategies))
	var g errgroup.Group
	for i, s := range strategies {
		i, s := i, s
		g.Go(func() error {
			results[i] = s.LocateEdges(scene)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
