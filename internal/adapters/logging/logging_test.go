package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_LevelAndFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fpv.log")
	log, err := New(Config{Level: "WARN", Format: "json", OutputPath: path})
	require.NoError(t, err)

	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))

	log.Warn("source failed")
	log.Info("dropped")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"source failed"`)
	assert.NotContains(t, string(data), "dropped")
}

func TestNew_Defaults(t *testing.T) {
	log, err := New(Config{})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(Config{Level: "chatty"})
	assert.Error(t, err)
}
