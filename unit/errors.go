package unit

import (
	"errors"
	"fmt"
)

// ErrAbstract is returned when constructing a worker that never declared a
// contract, like a bare Base. That is a programmer error, not a runtime
// condition to recover from.
var ErrAbstract = errors.New("unit: abstract worker has no contract")

// ErrNotImplemented is returned by the default Execute of the bare Base
var ErrNotImplemented = errors.New("unit: execute is not implemented")

// MissingAttributeError identifies the required attribute that was absent from
// the input bag. Construction fails on the first missing name.
type MissingAttributeError struct {
	Name string
}

func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("unit: missing required attribute %q", e.Name)
}

// IsContractViolation reports whether err is a hard construction failure
// rather than a business failure. Contract violations propagate out of Run
// instead of being recorded as worker errors, also when they bubble up from a
// nested run.
func IsContractViolation(err error) bool {
	var missing *MissingAttributeError
	return errors.As(err, &missing) ||
		errors.Is(err, ErrAbstract) ||
		errors.Is(err, ErrNotImplemented)
}
