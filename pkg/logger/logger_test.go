package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"syscall"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

const mockLogLevel int8 = 0 // zapcore.InfoLevel

func TestNewWritesJSONWithBuildFields(t *testing.T) {
	var buf bytes.Buffer
	lgr, zl := New(mockLogLevel, zapcore.AddSync(&buf))
	require.NotNil(t, lgr)
	require.NotNil(t, zl)

	lgr.Info("theme activated", ThemeKey, "neon", TileKey, "uart_tiles/karma")
	require.NoError(t, zl.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "theme activated", entry[MessageKey])
	assert.Equal(t, "neon", entry[ThemeKey])
	assert.Equal(t, "uart_tiles/karma", entry[TileKey])
	for _, k := range []string{TimeStampKey, CommitKey, VersionKey, BuildTimeKey, GoVersionKey} {
		assert.Contains(t, entry, k)
	}
}

func TestNewHonoursVerbosity(t *testing.T) {
	tests := []struct {
		name  string
		level int8
		v     int
		want  bool
	}{
		{name: "info level hides V(1)", level: 0, v: 1, want: false},
		{name: "debug level shows V(1)", level: -1, v: 1, want: true},
		{name: "debug level hides V(2)", level: -1, v: 2, want: false},
		{name: "level -2 shows V(2)", level: -2, v: 2, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			lgr, _ := New(tt.level, zapcore.AddSync(&buf))
			lgr.V(tt.v).Info("field rejected")
			assert.Equal(t, tt.want, buf.Len() > 0)
		})
	}
}

func TestGetReturnsSameInstanceOnSubsequentCalls(t *testing.T) {
	logger1 := Get(mockLogLevel)
	require.NotNil(t, logger1)
	assert.Same(t, logger1, Get(-1))
}

func TestGetReturnsNoopLoggerIfGlobalLoggerNil(t *testing.T) {
	Get(mockLogLevel)
	orig := globalLogrLogger
	globalLogrLogger = nil
	defer func() { globalLogrLogger = orig }()

	assert.Same(t, &defaultNoopLogger, Get(mockLogLevel))
}

func TestWithLogger(t *testing.T) {
	ctx := context.Background()
	lgr := Get(mockLogLevel)

	withLogger := WithLogger(ctx, lgr)
	assert.Same(t, lgr, withLogger.Value(loggerContextKey{}))
	assert.Equal(t, withLogger, WithLogger(withLogger, lgr), "same logger keeps the context")

	other := logr.Discard()
	replaced := WithLogger(withLogger, &other)
	assert.Same(t, &other, replaced.Value(loggerContextKey{}))
}

func TestFromContext(t *testing.T) {
	global := Get(mockLogLevel)
	assert.Same(t, global, FromContext(context.Background()))

	scoped := WithValues(global, ThemeKey, "neon")
	ctx := WithLogger(context.Background(), scoped)
	assert.Same(t, scoped, FromContext(ctx))

	orig := globalLogrLogger
	globalLogrLogger = nil
	defer func() { globalLogrLogger = orig }()
	noop := FromContext(context.Background())
	assert.Same(t, &defaultNoopLogger, noop)
	assert.NotPanics(t, func() { noop.Info("dropped") })
}

func TestFromContextPrefersGlobalOverNoop(t *testing.T) {
	orig := globalLogrLogger
	defer func() { globalLogrLogger = orig }()

	mock := logr.Discard()
	globalLogrLogger = &mock
	assert.Same(t, &mock, FromContext(context.Background()))
}

func TestSyncWithoutGlobalLogger(t *testing.T) {
	orig := globalZapLogger
	globalZapLogger = nil
	defer func() { globalZapLogger = orig }()
	assert.NotPanics(t, Sync)
}

func TestIsIgnorableSyncError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "tty", err: &os.PathError{Op: "sync", Path: "/dev/stderr", Err: syscall.ENOTTY}, want: true},
		{name: "pipe", err: &os.PathError{Op: "sync", Path: "/dev/stderr", Err: syscall.EINVAL}, want: true},
		{name: "serial console", err: syscall.EIO, want: true},
		{name: "closed", err: syscall.EBADF, want: true},
		{name: "windows console", err: errors.New("sync /dev/stderr: The handle is invalid."), want: true},
		{name: "disk full", err: syscall.ENOSPC, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isIgnorableSyncError(tt.err))
		})
	}
}

func TestWithValues(t *testing.T) {
	lgr := Get(mockLogLevel)
	scoped := WithValues(lgr, PathKey, "/sd/themes/neon")
	require.NotNil(t, scoped)
	assert.NotSame(t, lgr, scoped)
	assert.NotSame(t, lgr, WithValues(lgr))

	var nilLogger *logr.Logger
	assert.Panics(t, func() { _ = WithValues(nilLogger, "key", "value") })
}
