package girth

import (
	"io"
	"math"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/bridgewiz/trunkgauge/components/camera"
	"github.com/bridgewiz/trunkgauge/pointcloud"
)

// Profile is the depth along the measurement scanline.
type Profile struct {
	Row                  int
	CenterColumn         int
	CenterDistanceMeters float64
	// Depths holds one z per column, NaN where there is no return.
	Depths []float64
}

// ProfileStats summarizes the valid depths of a profile.
type ProfileStats struct {
	Valid  int
	Mean   float64
	StdDev float64
	Median float64
	P10    float64
	P90    float64
	Min    float64
	Max    float64
}

// NewProfile extracts the scanline of the frame's point cloud.
func NewProfile(frame *camera.Frame) (*Profile, error) {
	if err := frame.Validate(); err != nil {
		return nil, err
	}
	w, h := frame.Size()
	p := &Profile{
		Row:                  h / 2,
		CenterColumn:         w / 2,
		CenterDistanceMeters: frame.CenterDistanceMeters,
		Depths:               make([]float64, w),
	}
	for col := range p.Depths {
		z := frame.Cloud.Z(p.Row, col, w)
		if !pointcloud.IsValidDepth(z) {
			z = math.NaN()
		}
		p.Depths[col] = z
	}
	return p, nil
}

func (p *Profile) valid() []float64 {
	out := make([]float64, 0, len(p.Depths))
	for _, z := range p.Depths {
		if !math.IsNaN(z) {
			out = append(out, z)
		}
	}
	return out
}

// Stats summarizes the profile. It fails when no column has a depth.
func (p *Profile) Stats() (ProfileStats, error) {
	zs := p.valid()
	if len(zs) == 0 {
		return ProfileStats{}, errors.New("profile has no valid depth")
	}
	var s ProfileStats
	var err error
	s.Valid = len(zs)
	s.Mean, s.StdDev = stat.MeanStdDev(zs, nil)
	if len(zs) == 1 {
		s.StdDev = 0
	}
	if s.Median, err = stats.Median(zs); err != nil {
		return ProfileStats{}, err
	}
	if s.P10, err = stats.Percentile(zs, 10); err != nil {
		return ProfileStats{}, err
	}
	if s.P90, err = stats.Percentile(zs, 90); err != nil {
		return ProfileStats{}, err
	}
	if s.Min, err = stats.Min(zs); err != nil {
		return ProfileStats{}, err
	}
	if s.Max, err = stats.Max(zs); err != nil {
		return ProfileStats{}, err
	}
	return s, nil
}

// Histogram buckets the valid depths. Distinct surfaces show up as separate peaks.
func (p *Profile) Histogram(bins int) (histogram.Histogram, error) {
	zs := p.valid()
	if len(zs) == 0 {
		return histogram.Histogram{}, errors.New("profile has no valid depth")
	}
	if bins < 1 {
		bins = 1
	}
	return histogram.Hist(bins, zs), nil
}

// WriteHistogram prints the depth histogram as text bars of at most width characters.
func (p *Profile) WriteHistogram(w io.Writer, bins, width int) error {
	hist, err := p.Histogram(bins)
	if err != nil {
		return err
	}
	return histogram.Fprint(w, hist, histogram.Linear(width))
}

// Plot draws depth against column with the center column and the band
// [distance-maxDiameter, distance+maxDiameter] marked.
func (p *Profile) Plot(maxDiameterMeters float64) (*plot.Plot, error) {
	pts := make(plotter.XYs, 0, len(p.Depths))
	for col, z := range p.Depths {
		if math.IsNaN(z) {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(col), Y: z})
	}
	if len(pts) == 0 {
		return nil, errors.New("profile has no valid depth")
	}

	plt := plot.New()
	plt.Title.Text = "scanline depth"
	plt.X.Label.Text = "column (px)"
	plt.Y.Label.Text = "z (m)"

	depth, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	depth.GlyphStyle.Radius = vg.Points(1)
	plt.Add(depth)

	width := float64(len(p.Depths))
	lines := []plotter.XYs{
		{{X: float64(p.CenterColumn), Y: 0}, {X: float64(p.CenterColumn), Y: p.CenterDistanceMeters + maxDiameterMeters}},
		{{X: 0, Y: p.CenterDistanceMeters - maxDiameterMeters}, {X: width, Y: p.CenterDistanceMeters - maxDiameterMeters}},
		{{X: 0, Y: p.CenterDistanceMeters + maxDiameterMeters}, {X: width, Y: p.CenterDistanceMeters + maxDiameterMeters}},
	}
	for _, xys := range lines {
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		l.Width = vg.Points(1)
		l.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		plt.Add(l)
	}
	return plt, nil
}

// SavePlot renders Plot to path. The format follows the file extension.
func (p *Profile) SavePlot(path string, maxDiameterMeters float64) error {
	plt, err := p.Plot(maxDiameterMeters)
	if err != nil {
		return err
	}
	return errors.Wrapf(plt.Save(10*vg.Inch, 4*vg.Inch, path), "cannot save profile plot to %q", path)
}
