package unit

import "context"

// Attrs is a plain input bag mapping attribute names to values
type Attrs map[string]interface{}

// An ErrorReporter is a produced value that carries its own error messages.
// When a worker's result implements it, the reporter's messages take
// precedence over anything the worker recorded itself.
type ErrorReporter interface {
	ErrorMessages() []string
}

// A Permitter is a boundary parameter bag that can extract named fields into a
// plain bag, like the parameter types of the usual web frameworks.
type Permitter interface {
	Permit(names ...string) map[string]interface{}
}

// A Worker is a single-use encapsulation of business logic with a validated
// input contract. Implementations embed Base and provide Contract and Execute.
// Re-running a worker instance is undefined, orchestrators construct a fresh
// one per run.
type Worker interface {
	// Contract returns the attribute declarations governing construction
	Contract() *Contract
	// Execute runs the business logic. The returned value is captured as the
	// worker's result by Run. A returned error is recorded as a business
	// failure message unless it is a contract violation, which propagates.
	Execute(ctx context.Context) (interface{}, error)

	// the uniform inspection surface, provided by the embedded Base
	Result() interface{}
	Errors() []string
	Success() bool

	state() *Base
}

// Base carries the bound state every worker shares. Embed it by value.
type Base struct {
	attrs  Attrs
	input  Attrs
	result interface{}
	errs   []string
}

func (b *Base) state() *Base { return b }

// Contract marks the bare base as abstract, concrete workers shadow it
func (b *Base) Contract() *Contract { return nil }

// Execute on the bare base fails unconditionally
func (b *Base) Execute(context.Context) (interface{}, error) {
	return nil, ErrNotImplemented
}

// Attr returns the bound value for name. Optional names that were not
// supplied, skipped names and undeclared names all read as absent. An
// explicitly supplied nil is present.
func (b *Base) Attr(name string) (interface{}, bool) {
	v, ok := b.attrs[name]
	return v, ok
}

// Get returns the bound value for name, or nil when it is absent
func (b *Base) Get(name string) interface{} {
	return b.attrs[name]
}

// Set binds a derived value under name. This is the read-write side reserved
// for post-bind hooks and the worker's own logic.
func (b *Base) Set(name string, value interface{}) {
	if b.attrs == nil {
		b.attrs = Attrs{}
	}
	b.attrs[name] = value
}

// Input is the full bag the worker was constructed with, not just the names
// the contract bound
func (b *Base) Input() Attrs {
	return b.input
}

// Result is the produced value captured by Run
func (b *Base) Result() interface{} {
	return b.result
}

// AddError records business failure messages in order
func (b *Base) AddError(messages ...string) {
	b.errs = append(b.errs, messages...)
}

// Errors returns the worker's failure messages. When the result implements
// ErrorReporter the reporter is always deferred to, even when its list is
// empty or the worker recorded messages of its own.
func (b *Base) Errors() []string {
	if rep, ok := b.result.(ErrorReporter); ok {
		return rep.ErrorMessages()
	}
	return b.errs
}

// Success is true iff Errors is empty
func (b *Base) Success() bool {
	return len(b.Errors()) == 0
}

// New validates attrs against the worker's contract and binds the matching
// values. Required names must be present in the bag, presence of the key is
// what is checked, so an explicit nil is valid. On failure the worker is left
// untouched, no partially bound state is observable.
func New(w Worker, attrs Attrs) error {
	c := w.Contract()
	if c == nil {
		return ErrAbstract
	}
	r := c.resolve()

	bound := make(Attrs, len(r.required)+len(r.optional))
	for _, name := range r.required {
		v, ok := attrs[name]
		if !ok {
			return &MissingAttributeError{Name: name}
		}
		bound[name] = v
	}
	for _, name := range r.optional {
		if v, ok := attrs[name]; ok {
			bound[name] = v
		}
	}

	b := w.state()
	b.attrs = bound
	b.input = attrs
	for _, hook := range r.hooks {
		hook(w)
	}
	return nil
}

// Run is the run-and-capture entry point: construct the worker, execute it,
// store the produced value in the result slot and return the worker itself so
// callers inspect Success and Errors uniformly. The error return is reserved
// for hard failures, a failing Execute is recorded on the worker instead.
func Run(ctx context.Context, w Worker, attrs Attrs) (Worker, error) {
	if err := New(w, attrs); err != nil {
		return nil, err
	}
	res, err := w.Execute(ctx)
	b := w.state()
	b.result = res
	if err != nil {
		if IsContractViolation(err) {
			return nil, err
		}
		b.errs = append(b.errs, err.Error())
	}
	return w, nil
}
