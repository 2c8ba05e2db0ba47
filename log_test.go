package conveyor_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/casualjim/conveyor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextLogger(t *testing.T) {
	log := conveyor.GoLog(nil, "", 0)
	ctx := conveyor.SetLogger(context.Background(), log)

	require.Equal(t, log, conveyor.ContextLogger(ctx))

	var buf bytes.Buffer
	log = conveyor.GoLog(&buf, "", 0)

	log.Debugf("level")
	log.Infof("level")
	log.Warnf("level")
	log.Errorf("level")

	str := buf.String()
	assert.Contains(t, str, "[DEBUG] level")
	assert.Contains(t, str, "[INFO]  level")
	assert.Contains(t, str, "[WARN]  level")
	assert.Contains(t, str, "[ERROR] level")

	log = conveyor.ContextLogger(context.Background())
	assert.Equal(t, conveyor.NopLogger, log)
	log.Debugf("level")
	log.Infof("level")
	log.Warnf("level")
	log.Errorf("level")
}
