package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/pterm/pterm"
)

type progressSpinner interface {
	Stop() error
	Success(...any)
	Fail(...any)
	UpdateText(string)
}

type progressSpinnerFactory func(out io.Writer, text string) (progressSpinner, error)

func ptermSpinner(out io.Writer, text string) (progressSpinner, error) {
	return pterm.DefaultSpinner.
		WithWriter(out).
		WithRemoveWhenDone(false).
		WithText(text).
		Start()
}

type stepStatus int

const (
	stepPending stepStatus = iota
	stepRunning
	stepDone
	stepFailed
)

type step struct {
	message string
	status  stepStatus
	started time.Time
}

// progress shows one spinner per step of a command: opening the source, building the pipeline,
// each measured frame.
type progress struct {
	mu       sync.Mutex
	out      io.Writer
	steps    map[string]*step
	spinner  progressSpinner
	factory  progressSpinnerFactory
	disabled bool
}

func newProgress(out io.Writer, enabled bool) *progress {
	return &progress{
		out:      out,
		steps:    map[string]*step{},
		factory:  ptermSpinner,
		disabled: !enabled,
	}
}

// Start begins a step, finishing any step still spinning.
func (p *progress) Start(id, message string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.steps[id] = &step{message: message, status: stepRunning, started: time.Now()}
	if p.disabled {
		return nil
	}
	if p.spinner != nil {
		_ = p.spinner.Stop() //nolint:errcheck
	}
	s, err := p.factory(p.out, message)
	if err != nil {
		return errors.Wrap(err, "failed to start spinner")
	}
	p.spinner = s
	return nil
}

// Update changes the text of the running step.
func (p *progress) Update(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.disabled && p.spinner != nil {
		p.spinner.UpdateText(text)
	}
}

// Done completes a step. An empty message keeps the start message.
func (p *progress) Done(id, message string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.steps[id]
	if !ok {
		return errors.Errorf("step %q not found", id)
	}
	s.status = stepDone
	if message == "" {
		message = s.message
	}
	if p.disabled {
		return nil
	}
	msg := fmt.Sprintf("%s (%s)", message, time.Since(s.started).Round(time.Millisecond))
	if p.spinner != nil {
		p.spinner.Success(msg)
		p.spinner = nil
		return nil
	}
	pterm.Success.WithWriter(p.out).Println(msg)
	return nil
}

// Fail marks a step failed with the error that ended it.
func (p *progress) Fail(id string, cause error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.steps[id]
	if !ok {
		return errors.Errorf("step %q not found", id)
	}
	s.status = stepFailed
	if p.disabled {
		return nil
	}
	msg := fmt.Sprintf("%s: %v", s.message, cause)
	if p.spinner != nil {
		p.spinner.Fail(msg)
		p.spinner = nil
		return nil
	}
	pterm.Error.WithWriter(p.out).Println(msg)
	return nil
}

// Stop stops the running spinner, if any.
func (p *progress) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.spinner != nil {
		_ = p.spinner.Stop() //nolint:errcheck
		p.spinner = nil
	}
}

func (p *progress) status(id string) stepStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.steps[id]; ok {
		return s.status
	}
	return stepPending
}
