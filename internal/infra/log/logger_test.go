package log

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConfig_Defaults(t *testing.T) {
	cfg, err := config(Options{})
	require.NoError(t, err)
	require.Equal(t, zap.InfoLevel, cfg.Level.Level())
	require.Equal(t, "console", cfg.Encoding)
	require.True(t, cfg.Development)
	require.Nil(t, cfg.InitialFields)
}

func TestConfig_Production(t *testing.T) {
	cfg, err := config(Options{Level: "warn", Production: true, Service: "board"})
	require.NoError(t, err)
	require.Equal(t, zap.WarnLevel, cfg.Level.Level())
	require.Equal(t, "json", cfg.Encoding)
	require.False(t, cfg.Development)
	require.Nil(t, cfg.Sampling)
	require.Equal(t, "ts", cfg.EncoderConfig.TimeKey)
	require.Equal(t, map[string]any{"service": "board"}, cfg.InitialFields)
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	require.Error(t, err)
}

func TestMust_FallsBackToInfo(t *testing.T) {
	l := Must(Options{Level: "loud"})
	require.NotNil(t, l)
	require.True(t, l.Core().Enabled(zap.InfoLevel))
	require.False(t, l.Core().Enabled(zap.DebugLevel))

	l = Must(Options{Level: "debug"})
	require.True(t, l.Core().Enabled(zap.DebugLevel))
}
