package orchestrate_test

import (
	"testing"
	"time"

	"github.com/casualjim/conveyor/eventbus"
	"github.com/casualjim/conveyor/orchestrate"
	"github.com/casualjim/conveyor/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrchestrator_PublishesLifecycleEvents(t *testing.T) {
	bus := eventbus.New(nil)
	defer bus.Close()

	evts := make(chan orchestrate.StepEvent, 10)
	bus.Subscribe(eventbus.Handler(func(evt eventbus.Event) error {
		if se, ok := evt.Args.(orchestrate.StepEvent); ok {
			evts <- se
		}
		return nil
	}))

	store := new(memStore)
	def := orchestrate.Define(
		unit.Declare(unit.Requires("params", "user")),
		orchestrate.Steps(
			orchestrate.NewStep("a", writes(store, "a")),
			orchestrate.NewStep("b", writes(store, "b"),
				orchestrate.If(func(*orchestrate.Orchestrator, unit.Attrs) bool { return false }),
			),
		),
	)

	o := run(t, def, unit.Attrs{"params": "p", "user": "u"}, orchestrate.PublishTo(bus))

	// processing and completed for a, skipped for b; delivery order across
	// events is not guaranteed so count by state
	states := make(map[orchestrate.State]int)
	timeout := time.After(3 * time.Second)
	for i := 0; i < 3; i++ {
		select {
		case se := <-evts:
			assert.Equal(t, o.ID(), se.Run)
			states[se.State]++
		case <-timeout:
			t.Fatalf("timed out after %d events", i)
		}
	}
	assert.Equal(t, 1, states[orchestrate.StateProcessing])
	assert.Equal(t, 1, states[orchestrate.StateSuccess])
	assert.Equal(t, 1, states[orchestrate.StateSkipped])
}

func TestStepEventFilter(t *testing.T) {
	evt := eventbus.Event{
		Name: orchestrate.TopicLifecycle,
		Args: orchestrate.StepEvent{Name: "a", State: orchestrate.StateFailed},
	}
	assert.True(t, orchestrate.StepEventFilter(orchestrate.StateFailed)(evt))
	assert.False(t, orchestrate.StepEventFilter(orchestrate.StateSuccess)(evt))
	assert.False(t, orchestrate.StepEventFilter(orchestrate.StateFailed)(eventbus.Event{Name: "other"}))
}

func TestState_TextRoundTrip(t *testing.T) {
	for _, state := range []orchestrate.State{
		orchestrate.StateWaiting,
		orchestrate.StateProcessing,
		orchestrate.StateSkipped,
		orchestrate.StateSuccess,
		orchestrate.StateFailed,
	} {
		text, err := state.MarshalText()
		require.NoError(t, err)

		var parsed orchestrate.State
		require.NoError(t, parsed.UnmarshalText(text))
		assert.Equal(t, state, parsed)
	}

	var bogus orchestrate.State
	assert.Error(t, bogus.UnmarshalText([]byte("not-a-state")))
}

func TestTxMode_TextRoundTrip(t *testing.T) {
	for _, mode := range []orchestrate.TxMode{
		orchestrate.TxNone,
		orchestrate.TxRollbackOnFailure,
		orchestrate.TxRollbackIfFailed,
	} {
		text, err := mode.MarshalText()
		require.NoError(t, err)

		var parsed orchestrate.TxMode
		require.NoError(t, parsed.UnmarshalText(text))
		assert.Equal(t, mode, parsed)
	}

	_, err := orchestrate.ModeFromString("two-phase")
	assert.Error(t, err)
}
