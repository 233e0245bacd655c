package lifelog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.level.String())
		})
	}
}

func TestDefaultLogger_LogLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewDefaultLogger(LevelDebug, buf)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	output := buf.String()
	assert.Contains(t, output, "[DEBUG]")
	assert.Contains(t, output, "[INFO]")
	assert.Contains(t, output, "[WARN]")
	assert.Contains(t, output, "[ERROR]")
	assert.Contains(t, output, "debug message")
	assert.Contains(t, output, "info message")
	assert.Contains(t, output, "warn message")
	assert.Contains(t, output, "error message")
}

func TestDefaultLogger_FilterByLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewDefaultLogger(LevelWarn, buf)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	output := buf.String()
	assert.NotContains(t, output, "debug message")
	assert.NotContains(t, output, "info message")
	assert.Contains(t, output, "warn message")
	assert.Contains(t, output, "error message")
}

func TestDefaultLogger_Formatting(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewDefaultLogger(LevelInfo, buf)

	logger.Info("count: %d, name: %s", 42, "test")

	output := buf.String()
	assert.Contains(t, output, "count: 42, name: test")
}

func TestLoggerInterface(t *testing.T) {
	var _ Logger = &DefaultLogger{}
}

func TestDefaultLogger_TimestampFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewDefaultLogger(LevelInfo, buf)

	logger.Info("test message")

	output := buf.String()
	lines := strings.Split(strings.TrimSpace(output), "\n")
	assert.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "["))
}
