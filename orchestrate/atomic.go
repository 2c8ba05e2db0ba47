package orchestrate

import (
	"context"
	"errors"

	"github.com/hashicorp/errwrap"
)

// Atomic is the external all-or-nothing execution boundary steps run inside,
// a database transaction being the usual implementation. Only one logical
// scope is active per orchestrator run. When a nested orchestrator requests a
// scope while an outer one is already active, joining the outer scope instead
// of opening a second one is the provider's contract, it is not reimplemented
// here.
type Atomic interface {
	// RunInScope executes body and commits its effects on normal return.
	// When body returns the Abort signal, every effect performed since the
	// scope began is unwound and RunInScope returns nil, control resumes just
	// after the call without raising. Any other error from body rolls the
	// scope back and is returned as-is.
	RunInScope(ctx context.Context, body func(ctx context.Context) error) error
}

var errAborted = errors.New("orchestrate: scope aborted")

// Abort returns the signal a scope body uses to unwind the active scope
func Abort() error {
	return errAborted
}

// IsAbort reports whether err carries the abort signal, also when wrapped
func IsAbort(err error) bool {
	return err != nil && errwrap.Contains(err, errAborted.Error())
}

// NopScope runs the body inline without any transactional effects. The abort
// signal is still swallowed so control returns to the caller the same way it
// would with a real scope.
var NopScope Atomic = nopScope{}

type nopScope struct{}

func (nopScope) RunInScope(ctx context.Context, body func(context.Context) error) error {
	if err := body(ctx); err != nil && !IsAbort(err) {
		return err
	}
	return nil
}
