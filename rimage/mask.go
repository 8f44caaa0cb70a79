package rimage

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
)

// Binary mask values.
const (
	MaskExcluded = uint8(0)
	MaskIncluded = uint8(1)
)

// Mask is a binary, row-major mask. Included pixels are candidate foreground.
type Mask struct {
	width  int
	height int

	data []uint8
}

// NewMask returns an all-excluded mask.
func NewMask(width, height int) *Mask {
	return &Mask{width: width, height: height, data: make([]uint8, width*height)}
}

// NewMaskFromRows builds a mask from rows of 0/1 values, mostly for tests and fixtures.
func NewMaskFromRows(rows [][]uint8) (*Mask, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.New("mask needs at least one pixel")
	}
	m := NewMask(len(rows[0]), len(rows))
	for y, row := range rows {
		if len(row) != m.width {
			return nil, errors.Errorf("mask row %d has %d columns, expected %d", y, len(row), m.width)
		}
		for x, v := range row {
			m.Set(x, y, v != MaskExcluded)
		}
	}
	return m, nil
}

// Width returns the width of the mask.
func (m *Mask) Width() int {
	return m.width
}

// Height returns the height of the mask.
func (m *Mask) Height() int {
	return m.height
}

// Contains returns whether the pixel (x, y) lies inside the mask.
func (m *Mask) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.width && y < m.height
}

// Included returns whether column x, row y is included.
func (m *Mask) Included(x, y int) bool {
	return m.data[y*m.width+x] == MaskIncluded
}

// Set marks column x, row y as included or excluded.
func (m *Mask) Set(x, y int, included bool) {
	if included {
		m.data[y*m.width+x] = MaskIncluded
	} else {
		m.data[y*m.width+x] = MaskExcluded
	}
}

// Count returns the number of included pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.data {
		if v == MaskIncluded {
			n++
		}
	}
	return n
}

// Equal returns whether both masks have the same size and contents.
func (m *Mask) Equal(other *Mask) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.width != other.width || m.height != other.height {
		return false
	}
	for i, v := range m.data {
		if other.data[i] != v {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (m *Mask) Clone() *Mask {
	out := NewMask(m.width, m.height)
	copy(out.data, m.data)
	return out
}

// ToGray renders the mask with included pixels white.
func (m *Mask) ToGray() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, m.width, m.height))
	for i, v := range m.data {
		if v == MaskIncluded {
			g.Pix[i] = 255
		}
	}
	return g
}

// ApplyMask copies the pixels of img selected by the mask onto a black canvas. This is the
// "foreground" image shown to the operator.
func ApplyMask(img image.Image, m *Mask) (*image.NRGBA, error) {
	b := img.Bounds()
	if b.Dx() != m.width || b.Dy() != m.height {
		return nil, errors.Errorf("image is %dx%d but mask is %dx%d", b.Dx(), b.Dy(), m.width, m.height)
	}
	out := image.NewNRGBA(image.Rect(0, 0, m.width, m.height))
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if m.Included(x, y) {
				out.Set(x, y, img.At(b.Min.X+x, b.Min.Y+y))
			} else {
				out.Set(x, y, color.NRGBA{A: 255})
			}
		}
	}
	return out, nil
}
