package utils

import (
	"fmt"

	"github.com/pkg/errors"
)

// NewUnexpectedTypeError is used when there is a type mismatch.
func NewUnexpectedTypeError(expected interface{}, actual interface{}) error {
	return errors.Errorf("expected %T but got %T", expected, actual)
}

// NewConfigValidationError returns a config validation error occurring at a given path.
func NewConfigValidationError(path string, err error) error {
	return errors.Wrapf(err, "error validating %q", path)
}

// NewConfigValidationFieldRequiredError is used when a config field is missing.
func NewConfigValidationFieldRequiredError(path, field string) error {
	return NewConfigValidationError(path, errors.Errorf("%q is required", field))
}

// ErrInvalidInput is the root of every error caused by a malformed frame or parameter. Callers
// test for it with errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// InputError describes why a frame or parameter was rejected.
type InputError struct {
	Reason string
}

// NewInputError returns an *InputError with a formatted reason.
func NewInputError(format string, args ...interface{}) error {
	return &InputError{Reason: fmt.Sprintf(format, args...)}
}

func (e *InputError) Error() string {
	return ErrInvalidInput.Error() + ": " + e.Reason
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}
