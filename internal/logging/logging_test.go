package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "service.log")

	logger, closeFunc, err := NewFileLogger(logPath, "testsvc", slog.LevelInfo)
	require.NoError(t, err)
	require.NotNil(t, logger)

	logger.Info("hello", "key", "value")
	require.NoError(t, closeFunc())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "testsvc", entry["service"])
	assert.Equal(t, "value", entry["key"])
}

func TestNewFileLogger_LevelFilter(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "service.log")

	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelWarn)

	logger, closeFunc, err := NewFileLogger(logPath, "testsvc", levelVar)
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept")
	require.NoError(t, closeFunc())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "kept")
}

func TestNewDiscardLogger(t *testing.T) {
	logger := NewDiscardLogger("testsvc", slog.LevelInfo)
	require.NotNil(t, logger)
	// Must not panic; output goes nowhere.
	logger.Info("into the void")
}

func TestReplaceLevelNames(t *testing.T) {
	attr := slog.Attr{Key: slog.LevelKey, Value: slog.AnyValue(LevelTrace)}
	replaced := replaceLevelNames(nil, attr)
	assert.Equal(t, "TRACE", replaced.Value.String())

	attr = slog.Attr{Key: slog.LevelKey, Value: slog.AnyValue(slog.LevelInfo)}
	replaced = replaceLevelNames(nil, attr)
	assert.Equal(t, "INFO", replaced.Value.String())
}
