// Package pointcloud holds the flattened, pixel-aligned vertex buffer produced by the depth camera
// and the index arithmetic that ties a vertex to its pixel.
//
// The buffer is row-major and pixel aligned: the vertex for pixel (row r, col c) of a frame of
// the given width is vertex number r*width+c, and its x, y and z components occupy slots
// 3*index, 3*index+1 and 3*index+2. A z of exactly 0 means the sensor had no valid depth for
// that pixel.
package pointcloud

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// ComponentsPerVertex is the number of scalars stored for each vertex.
const ComponentsPerVertex = 3

// InvalidDepth is the z value reported for pixels without a depth measurement.
const InvalidDepth = float32(0)

// Vertices is a flattened x,y,z,x,y,z,... buffer in meters.
type Vertices []float32

// NewVertices allocates a buffer for a width x height frame with every vertex invalid.
func NewVertices(width, height int) Vertices {
	return make(Vertices, width*height*ComponentsPerVertex)
}

// NewVector convenience method for creating a vector.
func NewVector(x, y, z float64) r3.Vector {
	return r3.Vector{X: x, Y: y, Z: z}
}

// FlatIndexOf returns the vertex number of pixel (row, col).
func FlatIndexOf(row, col, width int) int {
	return row*width + col
}

// PixelOf inverts FlatIndexOf.
func PixelOf(flatIndex, width int) (row, col int) {
	return flatIndex / width, flatIndex % width
}

// IsValidDepth reports whether z is a real measurement rather than the sentinel or NaN.
func IsValidDepth(z float64) bool {
	return z != float64(InvalidDepth) && !math.IsNaN(z)
}

// Len returns the number of vertices.
func (vs Vertices) Len() int {
	return len(vs) / ComponentsPerVertex
}

// CheckSize verifies that the buffer holds exactly one vertex per pixel of a width x height frame.
func (vs Vertices) CheckSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.Errorf("invalid frame size %dx%d", width, height)
	}
	if len(vs) != width*height*ComponentsPerVertex {
		return errors.Errorf("point cloud has %d scalars, a %dx%d frame needs %d",
			len(vs), width, height, width*height*ComponentsPerVertex)
	}
	return nil
}

// Vertex returns vertex number i.
func (vs Vertices) Vertex(i int) (r3.Vector, error) {
	if i < 0 || i >= vs.Len() {
		return r3.Vector{}, errors.Errorf("vertex index %d out of range [0, %d)", i, vs.Len())
	}
	base := i * ComponentsPerVertex
	return NewVector(float64(vs[base]), float64(vs[base+1]), float64(vs[base+2])), nil
}

// At returns the vertex of pixel (row, col) in a frame of the given width.
func (vs Vertices) At(row, col, width int) (r3.Vector, error) {
	if col < 0 || col >= width || row < 0 {
		return r3.Vector{}, errors.Errorf("pixel (row %d, col %d) outside frame of width %d", row, col, width)
	}
	return vs.Vertex(FlatIndexOf(row, col, width))
}

// Z returns only the depth of pixel (row, col), or NaN when the pixel is out of range.
func (vs Vertices) Z(row, col, width int) float64 {
	if col < 0 || col >= width || row < 0 {
		return math.NaN()
	}
	i := FlatIndexOf(row, col, width)*ComponentsPerVertex + 2
	if i >= len(vs) {
		return math.NaN()
	}
	return float64(vs[i])
}

// Set stores v as the vertex of pixel (row, col).
func (vs Vertices) Set(row, col, width int, v r3.Vector) error {
	if col < 0 || col >= width || row < 0 {
		return errors.Errorf("pixel (row %d, col %d) outside frame of width %d", row, col, width)
	}
	i := FlatIndexOf(row, col, width)
	if i >= vs.Len() {
		return errors.Errorf("vertex index %d out of range [0, %d)", i, vs.Len())
	}
	base := i * ComponentsPerVertex
	vs[base] = float32(v.X)
	vs[base+1] = float32(v.Y)
	vs[base+2] = float32(v.Z)
	return nil
}

// Clone returns a deep copy.
func (vs Vertices) Clone() Vertices {
	out := make(Vertices, len(vs))
	copy(out, vs)
	return out
}
