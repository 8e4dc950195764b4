package log

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Logger wraps the underlying logging framework for Douga's purposes.
// The TUI owns stdout, so all logging goes to a file.
type Logger struct {
	logger       *slog.Logger
	file         *os.File
	traceEnabled bool
}

// Config controls how the logging framework is set up
type Config struct {
	// Level is one of: trace, debug, info, warn, error
	Level string
	// FilePath is the file to log into. Parent directories are created.
	FilePath string
}

// New creates a Logger writing JSON records to the configured file
func New(config Config) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0700); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}

	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level: parseLogLevel(config.Level),
	})

	return &Logger{
		logger:       slog.New(handler),
		file:         file,
		traceEnabled: strings.EqualFold(config.Level, "trace"),
	}, nil
}

// With returns a derived Logger carrying the given attributes on every
// record. The log file is shared with the parent, so only the root
// Logger should be closed.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		logger:       l.logger.With(args...),
		file:         l.file,
		traceEnabled: l.traceEnabled,
	}
}

// Close the log file
func (l *Logger) Close() error {
	return l.file.Close()
}

// Debug logs a message at debug level
func (l *Logger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

// Info logs a message at info level
func (l *Logger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

// Warn logs a message at warn level
func (l *Logger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

// Error logs a message at error level
func (l *Logger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

// Trace logs a message at debug level when trace logging is enabled.
// slog has no trace level, so records are prefixed instead.
func (l *Logger) Trace(msg string, args ...any) {
	if l.traceEnabled {
		l.logger.Debug("TRACE: "+msg, args...)
	}
}

// parseLogLevel converts a level string to its slog equivalent,
// defaulting to info when the string is not recognised.
func parseLogLevel(lvl string) slog.Level {
	switch strings.ToLower(lvl) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "trace":
		// Trace records are emitted at debug and gated separately
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
