package edges

import (
	"github.com/bridgewiz/trunkgauge/pointcloud"
)

// MaskBoundary walks the foreground mask and takes the last foreground column before the mask
// turns to background on each side, then looks up that column's vertex.
type MaskBoundary struct{}

// Name returns KindMaskBoundary.
func (MaskBoundary) Name() Kind {
	return KindMaskBoundary
}

// LocateEdges implements Strategy. When the center pixel is not foreground there is no object to
// measure and both sides are invalid.
func (mb MaskBoundary) LocateEdges(scene Scene) Result {
	res := Result{Strategy: mb.Name()}
	if scene.Mask == nil || scene.Validate() != nil {
		return res
	}
	if !scene.Mask.Included(scene.CenterColumn(), scene.Row()) {
		return res
	}
	res.Left = mb.scan(scene, Left)
	res.Right = mb.scan(scene, Right)
	return res
}

func (mb MaskBoundary) scan(scene Scene, side Side) EdgeEstimate {
	row := scene.Row()
	col := scene.CenterColumn()
	for {
		next := col + int(side)
		if !scene.InBounds(next) {
			// foreground runs into the border, the true edge is outside the frame
			return invalidEdge()
		}
		if !scene.Mask.Included(next, row) {
			break
		}
		col = next
	}
	pt, err := scene.Vertex(col)
	if err != nil || !pointcloud.IsValidDepth(pt.Z) {
		return columnOnly(col)
	}
	return validEdge(col, pt)
}
