package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":  zapcore.DebugLevel,
		"info":   zapcore.InfoLevel,
		" warn ": zapcore.WarnLevel,
		"ERROR":  zapcore.ErrorLevel,
		"panic":  zapcore.PanicLevel,
		"fatal":  zapcore.FatalLevel,
		"dpanic": zapcore.DPanicLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok, s)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestContextLogger verifies loggers travel through the context with names and fields.
func TestContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := NewWithWriter(&buf, zap.NewAtomicLevelAt(zapcore.DebugLevel))

	ctx := ToContext(context.Background(), l)
	ctx = WithName(ctx, "bridge")
	ctx = WithKV(ctx, "serial", "R58M")

	InfoKV(ctx, "Stability mode enabled", "poll_interval", "5s")

	out := buf.String()
	require.Contains(t, out, "bridge")
	require.Contains(t, out, "Stability mode enabled")
	require.Contains(t, out, "R58M")
	require.Contains(t, out, "poll_interval")

	require.Same(t, Logger(), FromContext(context.Background()))
}

// TestWithFields verifies structured fields and error entries reach the writer.
func TestWithFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := NewWithWriter(&buf, zap.NewAtomicLevelAt(zapcore.DebugLevel))

	ctx := WithFields(ToContext(context.Background(), l),
		zap.String("caller_username", "alice"),
		zap.String("caller_hostname", "lab-pc"))

	ErrorKV(ctx, "Failed to persist optimization settings", "error", "disk full")

	out := buf.String()
	require.Contains(t, out, "ERROR")
	require.Contains(t, out, "alice")
	require.Contains(t, out, "lab-pc")
	require.Contains(t, out, "disk full")
}

// TestSetLevel verifies Level reports the level set on the global logger.
func TestSetLevel(t *testing.T) {
	previous := Level()
	t.Cleanup(func() { SetLevel(previous) })

	SetLevel(zapcore.DebugLevel)
	require.Equal(t, zapcore.DebugLevel, Level())

	SetLevel(zapcore.WarnLevel)
	require.Equal(t, zapcore.WarnLevel, Level())
}
