// Package diameter turns located edges into diameters in centimeters.
package diameter

import (
	"fmt"
	"math"
	"strings"

	"github.com/golang/geo/r3"

	"github.com/bridgewiz/trunkgauge/vision/edges"
)

// CentimetersPerMeter converts point cloud units to reported units.
const CentimetersPerMeter = 100

// Compute returns (right.X - left.X) in centimeters. The order matters: swapping the
// arguments negates the result.
func Compute(left, right r3.Vector) float64 {
	return (right.X - left.X) * CentimetersPerMeter
}

// Estimate is the diameter reported by one strategy.
type Estimate struct {
	Strategy   edges.Kind
	DiameterCM float64
	Valid      bool
	Left       edges.EdgeEstimate
	Right      edges.EdgeEstimate
}

// FromResult computes the diameter of an edge result. It is only valid when both sides are.
func FromResult(res edges.Result) Estimate {
	est := Estimate{
		Strategy:   res.Strategy,
		DiameterCM: math.NaN(),
		Left:       res.Left,
		Right:      res.Right,
	}
	if !res.Valid() || res.Left.Point == nil || res.Right.Point == nil {
		return est
	}
	est.DiameterCM = Compute(*res.Left.Point, *res.Right.Point)
	est.Valid = true
	return est
}

// Measurement is everything measured on one frame. Each strategy's estimate is reported on its
// own; nothing is averaged or reconciled.
type Measurement struct {
	CenterDistanceMeters      float64
	ExpectedMaxDiameterMeters float64
	Estimates                 []Estimate
}

// NewMeasurement converts every edge result into an estimate.
func NewMeasurement(centerDistanceMeters, expectedMaxDiameterMeters float64, results []edges.Result) *Measurement {
	m := &Measurement{
		CenterDistanceMeters:      centerDistanceMeters,
		ExpectedMaxDiameterMeters: expectedMaxDiameterMeters,
		Estimates:                 make([]Estimate, 0, len(results)),
	}
	for _, res := range results {
		m.Estimates = append(m.Estimates, FromResult(res))
	}
	return m
}

// Estimate returns the estimate of the given strategy, if it ran.
func (m *Measurement) Estimate(kind edges.Kind) (Estimate, bool) {
	for _, e := range m.Estimates {
		if e.Strategy == kind {
			return e, true
		}
	}
	return Estimate{}, false
}

// DiameterCM returns the diameter of the given strategy, or NaN when the strategy did not run or
// found no valid edges.
func (m *Measurement) DiameterCM(kind edges.Kind) float64 {
	e, ok := m.Estimate(kind)
	if !ok || !e.Valid {
		return math.NaN()
	}
	return e.DiameterCM
}

// AnyValid reports whether at least one strategy produced a diameter.
func (m *Measurement) AnyValid() bool {
	for _, e := range m.Estimates {
		if e.Valid {
			return true
		}
	}
	return false
}

func (m *Measurement) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "distance=%.2fm", m.CenterDistanceMeters)
	for _, e := range m.Estimates {
		if e.Valid {
			fmt.Fprintf(&sb, " %s=%.2fcm", e.Strategy.Letter(), e.DiameterCM)
		} else {
			fmt.Fprintf(&sb, " %s=invalid", e.Strategy.Letter())
		}
	}
	return sb.String()
}
