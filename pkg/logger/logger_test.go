package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoggerUsableBeforeInit(t *testing.T) {
	require.NotNil(t, Logger())
	require.NotNil(t, WithModule("test"))
	// Must not panic.
	Error("pre-init message")
}

func TestInitLevels(t *testing.T) {
	require.NoError(t, Init(Options{Level: "debug"}))
	require.True(t, Logger().Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, Init(Options{Level: "warn"}))
	require.False(t, Logger().Core().Enabled(zapcore.InfoLevel))
	require.True(t, Logger().Core().Enabled(zapcore.WarnLevel))
}

func TestInitFallsBackToInfoOnBadLevel(t *testing.T) {
	require.NoError(t, Init(Options{Level: "shouting"}))
	require.True(t, Logger().Core().Enabled(zapcore.InfoLevel))
	require.False(t, Logger().Core().Enabled(zapcore.DebugLevel))
}

func TestInitConsoleFormat(t *testing.T) {
	require.NoError(t, Init(Options{Level: "info", Format: "console"}))
	require.NotNil(t, Logger())
}
