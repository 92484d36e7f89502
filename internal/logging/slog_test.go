package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufLogger(level slog.Level) (*SlogLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	handler := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: level})

	return NewSlog(slog.New(handler)), buf
}

func TestNewSlog(t *testing.T) {
	logger, _ := newBufLogger(slog.LevelDebug)

	require.NotNil(t, logger)
	require.NotNil(t, logger.logger)
}

func TestNewSlogDefault(t *testing.T) {
	logger := NewSlogDefault()

	require.NotNil(t, logger)
	require.NotNil(t, logger.logger)
}

func TestSlogLogger_Debug(t *testing.T) {
	logger, buf := newBufLogger(slog.LevelDebug)

	logger.Debug("scheduling announcement", "delay", "2s")

	output := buf.String()
	assert.Contains(t, output, "scheduling announcement")
	assert.Contains(t, output, "delay=2s")
	assert.Contains(t, output, "level=DEBUG")
}

func TestSlogLogger_Info(t *testing.T) {
	logger, buf := newBufLogger(slog.LevelInfo)

	logger.Info("subject deleted", "subjectId", "integration:client")

	output := buf.String()
	assert.Contains(t, output, "subject deleted")
	assert.Contains(t, output, "subjectId=integration:client")
	assert.Contains(t, output, "level=INFO")
}

func TestSlogLogger_Warn(t *testing.T) {
	logger, buf := newBufLogger(slog.LevelWarn)

	logger.Warn("unexpected event", "state", "ToDelete")

	output := buf.String()
	assert.Contains(t, output, "unexpected event")
	assert.Contains(t, output, "state=ToDelete")
	assert.Contains(t, output, "level=WARN")
}

func TestSlogLogger_Error(t *testing.T) {
	logger, buf := newBufLogger(slog.LevelError)

	logger.Error("grace period past", "error", "timeout")

	output := buf.String()
	assert.Contains(t, output, "grace period past")
	assert.Contains(t, output, "error=timeout")
	assert.Contains(t, output, "level=ERROR")
}

func TestNopLogger(t *testing.T) {
	logger := NewNop()

	require.NotPanics(t, func() {
		logger.Debug("debug")
		logger.Info("info", "k", "v")
		logger.Warn("warn")
		logger.Error("error")
		logger.Fatal("fatal must not exit")
	})
}
