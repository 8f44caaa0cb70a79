package edges

import (
	"github.com/bridgewiz/trunkgauge/pointcloud"
)

// offObject reports whether z cannot belong to an object centered at the given distance with at
// most the given diameter.
func offObject(z, centerDistance, maxDiameter float64) bool {
	if !pointcloud.IsValidDepth(z) {
		return true
	}
	return z < centerDistance-maxDiameter || z > centerDistance+maxDiameter
}

// discontinuity scans outward in the point cloud and returns the first off-object column along
// with the edge column one step back towards the center. ok is false when the border is reached.
func discontinuity(scene Scene, side Side) (edge, off int, ok bool) {
	cx := scene.CenterColumn()
	for i := 1; ; i++ {
		col := cx + i*int(side)
		if !scene.InBounds(col) {
			return 0, 0, false
		}
		if offObject(scene.Depth(col), scene.CenterDistanceMeters, scene.ExpectedMaxDiameterMeters) {
			return col - int(side), col, true
		}
	}
}

// CloudDiscontinuity ignores the mask and walks the point cloud until a vertex has no depth or a
// depth outside [distance-diameter, distance+diameter]. The edge is the vertex just inside that
// discontinuity.
type CloudDiscontinuity struct{}

// Name returns KindCloudDiscontinuity.
func (CloudDiscontinuity) Name() Kind {
	return KindCloudDiscontinuity
}

// LocateEdges implements Strategy.
func (cd CloudDiscontinuity) LocateEdges(scene Scene) Result {
	res := Result{Strategy: cd.Name()}
	if scene.Validate() != nil {
		return res
	}
	res.Left = cd.scan(scene, Left)
	res.Right = cd.scan(scene, Right)
	return res
}

func (cd CloudDiscontinuity) scan(scene Scene, side Side) EdgeEstimate {
	edge, _, ok := discontinuity(scene, side)
	if !ok {
		return invalidEdge()
	}
	pt, err := scene.Vertex(edge)
	if err != nil || !pointcloud.IsValidDepth(pt.Z) {
		return columnOnly(edge)
	}
	return validEdge(edge, pt)
}

// NeighborCorrected refines CloudDiscontinuity. The off-object vertex has no usable coordinates,
// so its position is extrapolated from the edge vertex and the edge's neighbor towards the
// center, assuming locally uniform vertex spacing: off = edge + (edge - neighbor).
type NeighborCorrected struct{}

// Name returns KindNeighborCorrected.
func (NeighborCorrected) Name() Kind {
	return KindNeighborCorrected
}

// LocateEdges implements Strategy.
func (nc NeighborCorrected) LocateEdges(scene Scene) Result {
	res := Result{Strategy: nc.Name()}
	if scene.Validate() != nil {
		return res
	}
	res.Left = nc.scan(scene, Left)
	res.Right = nc.scan(scene, Right)
	return res
}

func (nc NeighborCorrected) scan(scene Scene, side Side) EdgeEstimate {
	edge, off, ok := discontinuity(scene, side)
	if !ok {
		return invalidEdge()
	}
	e, err := scene.Vertex(edge)
	if err != nil || !pointcloud.IsValidDepth(e.Z) {
		return columnOnly(off)
	}
	n, err := scene.Vertex(edge - int(side))
	if err != nil || !pointcloud.IsValidDepth(n.Z) {
		return columnOnly(off)
	}
	return validEdge(off, e.Add(e.Sub(n)))
}
