package orchestrate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/casualjim/conveyor/orchestrate/internal"
	"github.com/casualjim/conveyor/unit"
	"github.com/cenkalti/backoff/v4"
)

// A Predicate guards a step. It sees the running orchestrator and the full
// input bag the orchestrator was constructed with.
type Predicate func(o *Orchestrator, attrs unit.Attrs) bool

// A Factory constructs a fresh worker for every run of a step, workers are
// single use
type Factory func() unit.Worker

type remapping struct {
	source string
	target string
}

// A Step is one declared invocation of a worker within an orchestrator
type Step struct {
	name   string
	make   Factory
	remaps []remapping
	guard  Predicate
	invert bool
	retry  backoff.BackOff
}

// Name of the step
func (s Step) Name() string {
	return s.name
}

// StepOption configures a step declaration
type StepOption func(*Step)

// Remap assigns the orchestrator's bound value for source under target in the
// step's input bag. The overlay wins over a same-named key in the original bag.
func Remap(source, target string) StepOption {
	return func(s *Step) {
		s.remaps = append(s.remaps, remapping{source: source, target: target})
	}
}

// If runs the step only when the predicate evaluates true. A step takes at
// most one guard, declaring a second one panics.
func If(pred Predicate) StepOption {
	return func(s *Step) {
		if s.guard != nil {
			panic("orchestrate: a step takes a single If or Unless guard")
		}
		s.guard, s.invert = pred, false
	}
}

// Unless runs the step only when the predicate evaluates false
func Unless(pred Predicate) StepOption {
	return func(s *Step) {
		if s.guard != nil {
			panic("orchestrate: a step takes a single If or Unless guard")
		}
		s.guard, s.invert = pred, true
	}
}

// Retry reruns a step that failed, with a fresh worker per attempt, until the
// policy gives up. Contract violations are never retried.
func Retry(policy backoff.BackOff) StepOption {
	return func(s *Step) { s.retry = policy }
}

// NewStep declares a step running the workers produced by factory
func NewStep(name string, factory Factory, opts ...StepOption) Step {
	if factory == nil {
		panic("orchestrate: a step needs a worker factory")
	}
	s := Step{name: name, make: factory}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (o *Orchestrator) runStep(ctx context.Context, st Step, bag unit.Attrs) (unit.Worker, error) {
	if st.retry == nil {
		return unit.Run(ctx, st.make(), bag)
	}

	var ran unit.Worker
	op := func() error {
		w, err := unit.Run(ctx, st.make(), bag)
		if err != nil {
			return backoff.Permanent(err)
		}
		ran = w
		if !w.Success() {
			return fmt.Errorf("step %s: %s", st.name, strings.Join(w.Errors(), "; "))
		}
		return nil
	}
	notify := func(err error, next time.Duration) {
		internal.PublishEvent(ctx, TopicRetry, RetryEvent{
			Run:    o.id.String(),
			Name:   st.name,
			Reason: err,
			Next:   next,
		})
	}

	err := backoff.RetryNotify(op, backoff.WithContext(st.retry, ctx), notify)
	if err != nil && ran == nil {
		return nil, err
	}
	if err != nil && unit.IsContractViolation(err) {
		return nil, err
	}
	// retries exhausted, the last failed worker carries the failure
	return ran, nil
}
