package orchestrate

import (
	"fmt"
	"time"

	"github.com/casualjim/conveyor/eventbus"
)

var stateKeyNames map[State]string
var namedStateKeys map[string]State

func init() {
	stateKeyNames = map[State]string{
		StateUnknown:    "unknown",
		StateWaiting:    "waiting",
		StateSkipped:    "skipped",
		StateProcessing: "processing",
		StateSuccess:    "completed",
		StateFailed:     "failed",
	}

	namedStateKeys = make(map[string]State, len(stateKeyNames))
	for k, v := range stateKeyNames {
		namedStateKeys[v] = k
	}
}

// StateFromString creates a step state from a string
func StateFromString(name string) (State, error) {
	if v, ok := namedStateKeys[name]; ok {
		return v, nil
	}
	return StateUnknown, fmt.Errorf("invalid step state %q", name)
}

// State represents the lifecycle state of a step within a run
type State uint8

const (
	// StateUnknown indicates the step is unknown
	StateUnknown State = iota
	// StateWaiting indicates the step is known but hasn't started yet
	StateWaiting
	// StateProcessing indicates the step is currently executing
	StateProcessing
	// StateSkipped indicates the step's guard evaluated false
	StateSkipped
	// StateSuccess indicates the step ran successfully
	StateSuccess
	// StateFailed indicates the step recorded failures
	StateFailed
)

func (e State) String() string {
	return stateKeyNames[e]
}

// MarshalText renders this step state to text
func (e State) MarshalText() (text []byte, err error) {
	return []byte(stateKeyNames[e]), nil
}

// UnmarshalText parses this step state from text
func (e *State) UnmarshalText(text []byte) error {
	st, err := StateFromString(string(text))
	if err != nil {
		return err
	}
	*e = st
	return nil
}

const (
	// TopicLifecycle is the event topic for step lifecycle events
	TopicLifecycle = "lifecycle"
	// TopicRetry is the event topic for step retries
	TopicRetry = "retry"
)

// A StepEvent is emitted as a step moves through its lifecycle
type StepEvent struct {
	Run     string
	Name    string
	State   State
	Reasons []string
}

// A RetryEvent is emitted before a failed step is attempted again
type RetryEvent struct {
	Run    string
	Name   string
	Reason error
	Next   time.Duration
}

// StepEventFilter matches lifecycle events in the given state
func StepEventFilter(state State) eventbus.EventPredicate {
	return func(evt eventbus.Event) bool {
		if evt.Name != TopicLifecycle {
			return false
		}
		se, ok := evt.Args.(StepEvent)
		return ok && se.State == state
	}
}

// RetryEventFilter only selects retry events
func RetryEventFilter(evt eventbus.Event) bool {
	if evt.Name != TopicRetry {
		return false
	}
	_, ok := evt.Args.(RetryEvent)
	return ok
}
