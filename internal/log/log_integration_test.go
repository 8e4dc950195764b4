package log

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogging(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "douga-log-test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	logPath := filepath.Join(tempDir, "test.log")

	logger, err := New(Config{
		Level:    "debug",
		FilePath: logPath,
	})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	SetDefaultLogger(logger)

	Debug("Debug message", "test", true)
	Info("Info message", "test", true)
	Warn("Warning message", "test", true)
	Error("Error message", "error", fmt.Errorf("test error"))
	// Trace is gated off at debug level and must not appear
	Trace("Trace message")
	logger.With("component", "player").Info("Scoped message")

	// Close to ensure everything is flushed to disk
	assert.NoError(t, logger.Close())

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	contentStr := string(content)
	assert.Contains(t, contentStr, "Debug message")
	assert.Contains(t, contentStr, "Info message")
	assert.Contains(t, contentStr, "Warning message")
	assert.Contains(t, contentStr, "Error message")
	assert.Contains(t, contentStr, "test error")
	assert.Contains(t, contentStr, "Scoped message")
	assert.Contains(t, contentStr, `"component":"player"`)
	assert.NotContains(t, contentStr, "Trace message")
}

func TestTraceEnabled(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "douga-log-test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	logPath := filepath.Join(tempDir, "trace.log")

	logger, err := New(Config{
		Level:    "trace",
		FilePath: logPath,
	})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	logger.Trace("IPC payload", "raw", "{}")
	assert.NoError(t, logger.Close())

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	assert.Contains(t, string(content), "TRACE: IPC payload")
}
