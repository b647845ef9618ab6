package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/palantir/angellist-enrichment-connector/internal/logging"
)

func TestNew(t *testing.T) {
	t.Parallel()

	log, err := logging.New("debug", "console")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	log, err = logging.New("", "")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))

	_, err = logging.New("loud", "json")
	assert.Error(t, err)

	_, err = logging.New("info", "xml")
	assert.Error(t, err)
}
