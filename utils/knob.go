package utils

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

// Knob is a positive float64 the operator may change at any time, for example from a UI thread
// or a config file watcher, while readers take one snapshot per unit of work.
type Knob struct {
	name  string
	value atomic.Float64
}

// NewKnob returns a knob with an initial value.
func NewKnob(name string, initial float64) (*Knob, error) {
	k := &Knob{name: name}
	if err := k.Store(initial); err != nil {
		return nil, err
	}
	return k, nil
}

// Name returns the knob's name.
func (k *Knob) Name() string {
	return k.name
}

// Load returns the current value.
func (k *Knob) Load() float64 {
	return k.value.Load()
}

// Store sets a new value. Non-positive and non-finite values are rejected and leave the knob
// unchanged.
func (k *Knob) Store(v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return errors.Errorf("%s must be a positive number, got %v", k.name, v)
	}
	k.value.Store(v)
	return nil
}
