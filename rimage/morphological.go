package rimage

import (
	"github.com/pkg/errors"
)

// Default structuring element sizes for CleanMask. The erosion element is twice the dilation
// element so the net effect on isolated specks stays negative.
const (
	DefaultErosionSize   = 4
	DefaultDilationSize  = DefaultErosionSize
	DefaultErosionFactor = 2
)

// DilateSquare performs a dilation with a size x size square structuring element anchored at
// size/2. Pixels outside the mask never contribute.
func DilateSquare(m *Mask, size int) (*Mask, error) {
	if size < 1 {
		return nil, errors.Errorf("structuring element size must be positive, got %d", size)
	}
	return morphSquare(m, size, true), nil
}

// ErodeSquare performs an erosion with a size x size square structuring element anchored at
// size/2. Pixels outside the mask never contribute, so the border does not erode the mask.
func ErodeSquare(m *Mask, size int) (*Mask, error) {
	if size < 1 {
		return nil, errors.Errorf("structuring element size must be positive, got %d", size)
	}
	return morphSquare(m, size, false), nil
}

// CleanMask dilates with a small square and then erodes with a large one. The order bridges small
// gaps first; the larger erosion then removes specks the dilation grew.
func CleanMask(m *Mask, smallSize, largeSize int) (*Mask, error) {
	if smallSize < 1 {
		return nil, errors.Errorf("dilation size must be positive, got %d", smallSize)
	}
	if largeSize < DefaultErosionFactor*smallSize {
		return nil, errors.Errorf("erosion size %d must be at least %d times the dilation size %d",
			largeSize, DefaultErosionFactor, smallSize)
	}
	dilated, err := DilateSquare(m, smallSize)
	if err != nil {
		return nil, err
	}
	return ErodeSquare(dilated, largeSize)
}

// A square element is separable: apply the 1D max/min along rows, then along columns.
func morphSquare(m *Mask, size int, isMax bool) *Mask {
	anchor := size / 2
	tmp := NewMask(m.width, m.height)
	for y := 0; y < m.height; y++ {
		row := m.data[y*m.width : (y+1)*m.width]
		morphLine(row, tmp.data[y*m.width:(y+1)*m.width], 1, m.width, size, anchor, isMax)
	}
	out := NewMask(m.width, m.height)
	for x := 0; x < m.width; x++ {
		morphLine(tmp.data[x:], out.data[x:], m.width, m.height, size, anchor, isMax)
	}
	return out
}

// morphLine reads n samples spaced by stride from src and writes the windowed max (or min) to dst.
func morphLine(src, dst []uint8, stride, n, size, anchor int, isMax bool) {
	for i := 0; i < n; i++ {
		lo := i - anchor
		hi := lo + size - 1
		if lo < 0 {
			lo = 0
		}
		if hi > n-1 {
			hi = n - 1
		}
		v := src[lo*stride]
		for j := lo + 1; j <= hi; j++ {
			s := src[j*stride]
			if (isMax && s > v) || (!isMax && s < v) {
				v = s
			}
		}
		dst[i*stride] = v
	}
}
