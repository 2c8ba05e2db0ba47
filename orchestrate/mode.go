package orchestrate

import "fmt"

var modeKeyNames map[TxMode]string
var namedModeKeys map[string]TxMode

func init() {
	modeKeyNames = map[TxMode]string{
		TxNone:              "none",
		TxRollbackOnFailure: "rollback-on-failure",
		TxRollbackIfFailed:  "rollback-if-failed",
	}

	namedModeKeys = make(map[string]TxMode, len(modeKeyNames))
	for k, v := range modeKeyNames {
		namedModeKeys[v] = k
	}
}

// ModeFromString creates a transaction mode from a string
func ModeFromString(name string) (TxMode, error) {
	if v, ok := namedModeKeys[name]; ok {
		return v, nil
	}
	return TxNone, fmt.Errorf("invalid transaction mode %q", name)
}

// TxMode governs when an active atomic scope undoes its effects relative to
// step and overall success
type TxMode uint8

const (
	// TxNone never aborts the scope, partial effects from earlier steps
	// persist even when a later step fails
	TxNone TxMode = iota
	// TxRollbackOnFailure aborts the whole scope on the first failing step,
	// no later steps run and nothing from the run persists
	TxRollbackOnFailure
	// TxRollbackIfFailed lets every step attempt to run and undoes everything
	// after the full pass when the orchestrator is not successful overall
	TxRollbackIfFailed
)

func (m TxMode) String() string {
	return modeKeyNames[m]
}

// MarshalText renders this transaction mode to text
func (m TxMode) MarshalText() (text []byte, err error) {
	return []byte(modeKeyNames[m]), nil
}

// UnmarshalText parses this transaction mode from text
func (m *TxMode) UnmarshalText(text []byte) error {
	v, err := ModeFromString(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
