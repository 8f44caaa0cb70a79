package girth

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"

	"github.com/bridgewiz/trunkgauge/components/camera/fake"
)

func TestProfile(t *testing.T) {
	scene := fake.DefaultConfig()
	p, err := NewProfile(renderTrunk(t, scene))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.Row, test.ShouldEqual, 240)
	test.That(t, p.CenterColumn, test.ShouldEqual, 320)
	test.That(t, len(p.Depths), test.ShouldEqual, scene.Width)
	test.That(t, p.Depths[0], test.ShouldAlmostEqual, 3.5, 1e-6)
	test.That(t, p.Depths[320], test.ShouldAlmostEqual, 1.0, 1e-3)

	s, err := p.Stats()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.Valid, test.ShouldEqual, scene.Width)
	test.That(t, s.Max, test.ShouldAlmostEqual, 3.5, 1e-6)
	test.That(t, s.Min, test.ShouldAlmostEqual, 1.0, 1e-3)
	// three quarters of the scanline is background
	test.That(t, s.Median, test.ShouldAlmostEqual, 3.5, 1e-6)
	test.That(t, s.P10, test.ShouldBeLessThan, 1.5)
	test.That(t, s.Mean, test.ShouldBeBetween, 1.0, 3.5)
	test.That(t, s.StdDev, test.ShouldBeGreaterThan, 0)

	hist, err := p.Histogram(10)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, hist.Count, test.ShouldEqual, scene.Width)
	test.That(t, hist.Buckets[0].Count, test.ShouldBeGreaterThan, 0)
	test.That(t, hist.Buckets[len(hist.Buckets)-1].Count, test.ShouldEqual, scene.Width-160)

	var buf bytes.Buffer
	test.That(t, p.WriteHistogram(&buf, 10, 40), test.ShouldBeNil)
	test.That(t, buf.Len(), test.ShouldBeGreaterThan, 0)
}

func TestProfileWithoutReturns(t *testing.T) {
	scene := fake.DefaultConfig()
	scene.BackgroundDistance = 0
	p, err := NewProfile(renderTrunk(t, scene))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, math.IsNaN(p.Depths[0]), test.ShouldBeTrue)

	s, err := p.Stats()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.Valid, test.ShouldEqual, 160)

	empty := &Profile{Depths: []float64{math.NaN(), math.NaN()}}
	_, err = empty.Stats()
	test.That(t, err, test.ShouldNotBeNil)
	_, err = empty.Histogram(4)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = empty.Plot(0.5)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestProfileSavePlot(t *testing.T) {
	p, err := NewProfile(renderTrunk(t, fake.DefaultConfig()))
	test.That(t, err, test.ShouldBeNil)

	path := filepath.Join(t.TempDir(), "profile.png")
	test.That(t, p.SavePlot(path, 0.5), test.ShouldBeNil)
	info, err := os.Stat(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, info.Size(), test.ShouldBeGreaterThan, 0)
}
