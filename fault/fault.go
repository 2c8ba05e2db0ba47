// Package fault provides the structured error model workers can hand back as
// part of their produced value. A Report implements the error-reporting
// capability the unit layer defers to, so a result carrying one drives
// Success and Errors for the worker that produced it.
package fault

import (
	"fmt"

	"github.com/go-openapi/strfmt"
)

// Error is the model for a single business failure
//
// swagger:model error
type Error struct {

	// cause
	Cause *Error `json:"cause,omitempty"`

	// The error code
	// Required: true
	Code int64 `json:"code"`

	// link to help page explaining the error in more detail
	HelpURL strfmt.URI `json:"helpUrl,omitempty"`

	// The error message
	// Required: true
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// A Report is an ordered collection of business failures. The zero value is
// ready for use and reads as success.
type Report struct {
	faults []*Error
}

// Add appends a failure to the report
func (r *Report) Add(faults ...*Error) {
	r.faults = append(r.faults, faults...)
}

// Addf appends a failure built from a format string with code zero
func (r *Report) Addf(format string, args ...interface{}) {
	r.faults = append(r.faults, &Error{Message: fmt.Sprintf(format, args...)})
}

// Faults returns the recorded failures in order
func (r *Report) Faults() []*Error {
	return r.faults
}

// ErrorMessages implements the error-reporting capability of the unit layer
func (r *Report) ErrorMessages() []string {
	if len(r.faults) == 0 {
		return nil
	}
	msgs := make([]string, len(r.faults))
	for i, f := range r.faults {
		msgs[i] = f.Error()
	}
	return msgs
}
