package rimage

import (
	"github.com/pkg/errors"
)

// TrimapLabel is a GrabCut-style seed label. The numeric values match OpenCV's GC_* constants so
// a trimap can be handed to OpenCV without translation.
type TrimapLabel uint8

// Trimap labels.
const (
	DefiniteBackground TrimapLabel = iota
	DefiniteForeground
	ProbableBackground
	ProbableForeground
)

func (l TrimapLabel) String() string {
	switch l {
	case DefiniteBackground:
		return "definite-background"
	case DefiniteForeground:
		return "definite-foreground"
	case ProbableBackground:
		return "probable-background"
	case ProbableForeground:
		return "probable-foreground"
	}
	return "unknown"
}

// IsForeground reports definite or probable foreground.
func (l TrimapLabel) IsForeground() bool {
	return l == DefiniteForeground || l == ProbableForeground
}

// IsProbable reports a label the segmentation is allowed to change.
func (l TrimapLabel) IsProbable() bool {
	return l == ProbableBackground || l == ProbableForeground
}

// Trimap is a four-level, row-major seed for foreground/background segmentation.
type Trimap struct {
	width  int
	height int

	data []TrimapLabel
}

// NewTrimap returns a trimap where every pixel is DefiniteBackground.
func NewTrimap(width, height int) *Trimap {
	return &Trimap{width: width, height: height, data: make([]TrimapLabel, width*height)}
}

// NewTrimapFromBytes builds a trimap from raw labels, e.g. a mask read back from OpenCV.
func NewTrimapFromBytes(width, height int, raw []byte) (*Trimap, error) {
	if len(raw) != width*height {
		return nil, errors.Errorf("trimap %dx%d needs %d labels, got %d", width, height, width*height, len(raw))
	}
	t := NewTrimap(width, height)
	for i, v := range raw {
		if v > uint8(ProbableForeground) {
			return nil, errors.Errorf("invalid trimap label %d at index %d", v, i)
		}
		t.data[i] = TrimapLabel(v)
	}
	return t, nil
}

// Width returns the width of the trimap.
func (t *Trimap) Width() int {
	return t.width
}

// Height returns the height of the trimap.
func (t *Trimap) Height() int {
	return t.height
}

// Get returns the label at column x, row y.
func (t *Trimap) Get(x, y int) TrimapLabel {
	return t.data[y*t.width+x]
}

// Set sets the label at column x, row y.
func (t *Trimap) Set(x, y int, l TrimapLabel) {
	t.data[y*t.width+x] = l
}

// Count returns how many pixels carry the label.
func (t *Trimap) Count(l TrimapLabel) int {
	n := 0
	for _, v := range t.data {
		if v == l {
			n++
		}
	}
	return n
}

// Bytes returns a copy of the labels as raw bytes.
func (t *Trimap) Bytes() []byte {
	out := make([]byte, len(t.data))
	for i, v := range t.data {
		out[i] = byte(v)
	}
	return out
}

// Clone returns a deep copy.
func (t *Trimap) Clone() *Trimap {
	out := NewTrimap(t.width, t.height)
	copy(out.data, t.data)
	return out
}

// Foreground thresholds the trimap into a binary mask. Definite foreground is always included;
// probable foreground only when includeProbable is set.
func (t *Trimap) Foreground(includeProbable bool) *Mask {
	m := NewMask(t.width, t.height)
	for i, v := range t.data {
		if v == DefiniteForeground || (includeProbable && v == ProbableForeground) {
			m.data[i] = MaskIncluded
		}
	}
	return m
}
