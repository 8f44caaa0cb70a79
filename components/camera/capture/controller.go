// Package capture owns the live, processing and frozen workflow around the measurement pipeline:
// the operator triggers a measurement on the live stream, the result stays frozen on screen
// until it is saved or dismissed, and only then does the stream resume.
package capture

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/bridgewiz/trunkgauge/components/camera"
	"github.com/bridgewiz/trunkgauge/logging"
)

// State is a workflow state.
type State int

// The workflow states.
const (
	Live State = iota
	Processing
	Frozen
)

func (s State) String() string {
	switch s {
	case Live:
		return "live"
	case Processing:
		return "processing"
	case Frozen:
		return "frozen"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ErrInvalidTransition is wrapped by every rejected transition.
var ErrInvalidTransition = errors.New("invalid capture transition")

func invalidTransition(op string, from State) error {
	return errors.Wrapf(ErrInvalidTransition, "cannot %s while %s", op, from)
}

// Controller is safe for concurrent use. Result is whatever the caller produced from the frozen
// frame, typically a pipeline result.
type Controller[Result any] struct {
	mu     sync.Mutex
	state  State
	frame  *camera.Frame
	result Result
	saved  bool
	logger logging.Logger
}

// NewController starts in Live.
func NewController[Result any](logger logging.Logger) *Controller[Result] {
	return &Controller[Result]{state: Live, logger: logger}
}

// State returns the current state.
func (c *Controller[Result]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Trigger moves Live to Processing and keeps frame as the frame being measured.
func (c *Controller[Result]) Trigger(frame *camera.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Live {
		return invalidTransition("trigger", c.state)
	}
	if frame == nil {
		return errors.New("cannot trigger without a frame")
	}
	c.frame = frame
	c.saved = false
	c.transition(Processing)
	return nil
}

// Complete moves Processing to Frozen with the measurement result.
func (c *Controller[Result]) Complete(result Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Processing {
		return invalidTransition("complete", c.state)
	}
	c.result = result
	c.transition(Frozen)
	return nil
}

// Abort moves Processing back to Live when the measurement failed.
func (c *Controller[Result]) Abort() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Processing {
		return invalidTransition("abort", c.state)
	}
	c.clear()
	c.transition(Live)
	return nil
}

// Frozen returns the frozen frame and result. ok is false outside Frozen.
func (c *Controller[Result]) Frozen() (frame *camera.Frame, result Result, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Frozen {
		var zero Result
		return nil, zero, false
	}
	return c.frame, c.result, true
}

// Save hands the frozen frame and result to save. It is only allowed in Frozen and at most once
// per capture.
func (c *Controller[Result]) Save(save func(frame *camera.Frame, result Result) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Frozen {
		return invalidTransition("save", c.state)
	}
	if c.saved {
		return errors.New("capture already saved")
	}
	if err := save(c.frame, c.result); err != nil {
		return err
	}
	c.saved = true
	c.logger.Debug("capture saved")
	return nil
}

// Reset moves Frozen back to Live and drops the frozen capture.
func (c *Controller[Result]) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Frozen {
		return invalidTransition("reset", c.state)
	}
	c.clear()
	c.transition(Live)
	return nil
}

func (c *Controller[Result]) clear() {
	var zero Result
	c.frame = nil
	c.result = zero
	c.saved = false
}

func (c *Controller[Result]) transition(to State) {
	c.logger.Debugw("capture state change", "from", c.state.String(), "to", to.String())
	c.state = to
}
