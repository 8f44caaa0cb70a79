package diameter

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/bridgewiz/trunkgauge/vision/edges"
)

func edgeAt(col int, x float64) edges.EdgeEstimate {
	pt := r3.Vector{X: x, Z: 1}
	return edges.EdgeEstimate{Column: &col, Point: &pt, Valid: true}
}

func TestComputeIsAntisymmetric(t *testing.T) {
	for _, pair := range [][2]r3.Vector{
		{{X: -0.1}, {X: 0.1}},
		{{X: 0.25, Y: 1, Z: 2}, {X: -0.5, Z: 0.3}},
		{{X: 3}, {X: 3}},
	} {
		d := Compute(pair[0], pair[1])
		test.That(t, Compute(pair[1], pair[0]), test.ShouldAlmostEqual, -d)
	}
	test.That(t, Compute(r3.Vector{X: -0.1}, r3.Vector{X: 0.1}), test.ShouldAlmostEqual, 20)
}

func TestFromResult(t *testing.T) {
	res := edges.Result{
		Strategy: edges.KindCloudDiscontinuity,
		Left:     edgeAt(40, -0.10),
		Right:    edgeAt(60, 0.10),
	}
	est := FromResult(res)
	test.That(t, est.Valid, test.ShouldBeTrue)
	test.That(t, est.DiameterCM, test.ShouldAlmostEqual, 20)
	test.That(t, est.Strategy, test.ShouldEqual, edges.KindCloudDiscontinuity)

	res.Right = edges.EdgeEstimate{}
	est = FromResult(res)
	test.That(t, est.Valid, test.ShouldBeFalse)
	test.That(t, math.IsNaN(est.DiameterCM), test.ShouldBeTrue)
	test.That(t, *est.Left.Column, test.ShouldEqual, 40)
}

func TestMeasurement(t *testing.T) {
	results := []edges.Result{
		{Strategy: edges.KindMaskBoundary, Left: edgeAt(30, -0.2), Right: edgeAt(70, 0.2)},
		{Strategy: edges.KindCloudDiscontinuity, Left: edgeAt(40, -0.1)},
	}
	m := NewMeasurement(1.0, 0.5, results)
	test.That(t, m.Estimates, test.ShouldHaveLength, 2)
	test.That(t, m.AnyValid(), test.ShouldBeTrue)
	test.That(t, m.DiameterCM(edges.KindMaskBoundary), test.ShouldAlmostEqual, 40)
	test.That(t, math.IsNaN(m.DiameterCM(edges.KindCloudDiscontinuity)), test.ShouldBeTrue)
	test.That(t, math.IsNaN(m.DiameterCM(edges.KindNeighborCorrected)), test.ShouldBeTrue)
	_, ok := m.Estimate(edges.KindNeighborCorrected)
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, m.String(), test.ShouldEqual, "distance=1.00m A=40.00cm B=invalid")

	none := NewMeasurement(1.0, 0.5, []edges.Result{{Strategy: edges.KindMaskBoundary}})
	test.That(t, none.AnyValid(), test.ShouldBeFalse)
}
