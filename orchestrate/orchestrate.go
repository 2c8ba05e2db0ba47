package orchestrate

import (
	"context"
	"errors"

	"github.com/casualjim/conveyor/eventbus"
	"github.com/casualjim/conveyor/orchestrate/internal"
	"github.com/casualjim/conveyor/unit"
	multierror "github.com/hashicorp/go-multierror"
	"github.com/segmentio/ksuid"
)

// A Definition is the immutable per-type configuration of an orchestrator:
// its own attribute contract, the ordered steps, the transaction mode and
// whether runs happen inside an atomic scope. Define it once at package init
// time and construct orchestrators from it.
type Definition struct {
	contract *unit.Contract
	steps    []Step
	mode     TxMode
	atomic   bool
}

// DefineOption configures an orchestrator definition
type DefineOption func(*Definition)

// Steps declares the ordered steps of the orchestrator
func Steps(steps ...Step) DefineOption {
	return func(d *Definition) { d.steps = append(d.steps, steps...) }
}

// Mode sets the transaction mode, TxNone when not given
func Mode(mode TxMode) DefineOption {
	return func(d *Definition) { d.mode = mode }
}

// InAtomicScope makes every run of the orchestrator execute its steps inside
// the configured atomic scope
func InAtomicScope() DefineOption {
	return func(d *Definition) { d.atomic = true }
}

// Define builds an orchestrator definition. A nil contract declares nothing.
func Define(contract *unit.Contract, opts ...DefineOption) *Definition {
	if contract == nil {
		contract = unit.Declare()
	}
	d := &Definition{contract: contract}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// A StepResult records one step of a run, in declaration order. Skipped steps
// leave an absent marker: no worker and no value.
type StepResult struct {
	Name    string
	Skipped bool
	Worker  unit.Worker
	Value   interface{}
}

// An Orchestrator is itself a worker: it validates its own contract through
// the unit layer and then runs its declared steps in order, remapping inputs,
// evaluating guards and applying the transaction mode. Its produced value is
// the value of the last step that actually ran. Like any worker it is single
// use, construct a fresh one per run.
type Orchestrator struct {
	unit.Base

	def     *Definition
	scope   Atomic
	bus     eventbus.EventBus
	id      ksuid.KSUID
	results []StepResult
}

// Opt configures a single orchestrator run
type Opt func(*Orchestrator)

// WithScope sets the atomic scope provider backing InAtomicScope definitions
func WithScope(scope Atomic) Opt {
	return func(o *Orchestrator) {
		if scope != nil {
			o.scope = scope
		}
	}
}

// PublishTo emits step lifecycle events on the given bus
func PublishTo(bus eventbus.EventBus) Opt {
	return func(o *Orchestrator) {
		if bus != nil {
			o.bus = bus
		}
	}
}

// New creates an orchestrator from its definition
func New(def *Definition, opts ...Opt) *Orchestrator {
	o := &Orchestrator{
		def:   def,
		scope: NopScope,
		bus:   eventbus.NopBus,
		id:    ksuid.New(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ID of this run, used to correlate lifecycle events
func (o *Orchestrator) ID() string {
	return o.id.String()
}

// Contract returns the orchestrator's own attribute declarations
func (o *Orchestrator) Contract() *unit.Contract {
	return o.def.contract
}

// Results lists the per-step outcomes of the run in declaration order
func (o *Orchestrator) Results() []StepResult {
	return o.results
}

// Err folds the accumulated failure messages into a single error, nil when
// the run was successful
func (o *Orchestrator) Err() error {
	var merr *multierror.Error
	for _, msg := range o.Errors() {
		merr = multierror.Append(merr, errors.New(msg))
	}
	return merr.ErrorOrNil()
}

// Execute runs the declared steps, inside the atomic scope when the
// definition asks for one. It is invoked through unit.Run like any worker.
func (o *Orchestrator) Execute(ctx context.Context) (interface{}, error) {
	if o.bus != eventbus.NopBus {
		ctx = internal.SetPublisher(ctx, o.bus)
	}

	if !o.def.atomic {
		return o.runSteps(ctx, false)
	}

	var last interface{}
	err := o.scope.RunInScope(ctx, func(ctx context.Context) error {
		v, err := o.runSteps(ctx, true)
		last = v
		return err
	})
	return last, err
}

func (o *Orchestrator) runSteps(ctx context.Context, inScope bool) (interface{}, error) {
	var last interface{}

	for _, st := range o.def.steps {
		if st.guard != nil {
			run := st.guard(o, o.Input())
			if st.invert {
				run = !run
			}
			if !run {
				o.results = append(o.results, StepResult{Name: st.name, Skipped: true})
				o.publish(ctx, st.name, StateSkipped, nil)
				continue
			}
		}

		o.publish(ctx, st.name, StateProcessing, nil)
		w, err := o.runStep(ctx, st, o.stepBag(st))
		if err != nil {
			// contract violations are hard stops, not business failures
			o.publish(ctx, st.name, StateFailed, []string{err.Error()})
			return last, err
		}

		last = w.Result()
		o.results = append(o.results, StepResult{Name: st.name, Worker: w, Value: w.Result()})

		if !w.Success() {
			o.publish(ctx, st.name, StateFailed, w.Errors())
			if inScope && o.def.mode == TxRollbackOnFailure {
				// the whole scope unwinds here, the aborting step's errors
				// are not guaranteed to be recorded on the orchestrator
				return last, Abort()
			}
			o.AddError(w.Errors()...)
			continue
		}
		o.publish(ctx, st.name, StateSuccess, nil)
	}

	if inScope && o.def.mode == TxRollbackIfFailed && !o.Success() {
		// durable effects are undone, the accumulated errors and results stay
		return last, Abort()
	}
	return last, nil
}

// stepBag builds the input bag for a step: the orchestrator's full input bag
// overlaid with the remapped bound values
func (o *Orchestrator) stepBag(st Step) unit.Attrs {
	input := o.Input()
	bag := make(unit.Attrs, len(input)+len(st.remaps))
	for k, v := range input {
		bag[k] = v
	}
	for _, m := range st.remaps {
		bag[m.target] = o.Get(m.source)
	}
	return bag
}

func (o *Orchestrator) publish(ctx context.Context, step string, state State, reasons []string) {
	internal.PublishEvent(ctx, TopicLifecycle, StepEvent{
		Run:     o.id.String(),
		Name:    step,
		State:   state,
		Reasons: reasons,
	})
}
