// Package logging provides a tiny abstraction over slog so downstream code can
// depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a richer WireLogger with contextual helpers
// (component, run id) and domain specific logging helpers for encoding passes
// and run streams.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// LogLevel is a thin enum for user friendly level configuration decoupled
// from slog.
type LogLevel int

const (
	// LogLevelDebug is the debug logging level.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the informational logging level.
	LogLevelInfo
	// LogLevelWarn is the warning logging level.
	LogLevelWarn
	// LogLevelError is the error logging level.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger defines the minimal logging interface used across the module. This
// allows users to provide their own logger implementation or use the built-in
// adapters.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// NoOpLogger discards all log messages. Useful for testing or when logging is
// disabled; every component in this module defaults to it.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}

// LoggerConfig configures construction of a WireLogger.
type LoggerConfig struct {
	Level     LogLevel
	Format    string // json or text
	Output    io.Writer
	AddSource bool
	Component string
	RunID     string
}

// DefaultLoggerConfig returns a baseline JSON info level configuration.
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{Level: LogLevelInfo, Format: "json", Output: os.Stdout}
}

// WireLogger wraps slog.Logger adding contextual cloning helpers and domain
// convenience methods for the encode / transport layers. Cheap to copy via
// With* methods.
type WireLogger struct {
	logger    *slog.Logger
	level     LogLevel
	component string
	runID     string
}

// NewLogger builds a WireLogger from a config (or defaults if nil).
func NewLogger(cfg *LoggerConfig) *WireLogger {
	if cfg == nil {
		cfg = DefaultLoggerConfig()
	}
	opts := &slog.HandlerOptions{Level: slogLevel(cfg.Level), AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(cfg.Output, opts)
	} else {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	}
	return &WireLogger{logger: slog.New(handler), level: cfg.Level, component: cfg.Component, runID: cfg.RunID}
}

func slogLevel(l LogLevel) slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithComponent sets the logical component (resolver, encoder, transport).
func (l *WireLogger) WithComponent(c string) *WireLogger {
	nl := *l
	nl.component = c
	return &nl
}

// WithRun attaches a run identifier.
func (l *WireLogger) WithRun(runID string) *WireLogger {
	nl := *l
	nl.runID = runID
	return &nl
}

func (l *WireLogger) attrs(extra ...slog.Attr) []slog.Attr {
	out := make([]slog.Attr, 0, len(extra)+2)
	if l.component != "" {
		out = append(out, slog.String("component", l.component))
	}
	if l.runID != "" {
		out = append(out, slog.String("run_id", l.runID))
	}
	return append(out, extra...)
}

func (l *WireLogger) log(level slog.Level, allowed bool, msg string, extra ...slog.Attr) {
	if !allowed {
		return
	}
	l.logger.LogAttrs(context.Background(), level, msg, l.attrs(extra...)...)
}

// Debug logs at debug level.
func (l *WireLogger) Debug(msg string, args ...any) {
	l.log(slog.LevelDebug, l.level <= LogLevelDebug, msg, slog.Group("args", args...))
}

// Info logs at info level.
func (l *WireLogger) Info(msg string, args ...any) {
	l.log(slog.LevelInfo, l.level <= LogLevelInfo, msg, slog.Group("args", args...))
}

// Warn logs at warn level.
func (l *WireLogger) Warn(msg string, args ...any) {
	l.log(slog.LevelWarn, l.level <= LogLevelWarn, msg, slog.Group("args", args...))
}

// Error logs at error level.
func (l *WireLogger) Error(msg string, args ...any) {
	l.log(slog.LevelError, l.level <= LogLevelError, msg, slog.Group("args", args...))
}

// LogEncode records the outcome of one encoding pass (resolver or pidgin).
func (l *WireLogger) LogEncode(path string, segments int, dur time.Duration, err error) {
	attrs := []slog.Attr{
		slog.String("encode_path", path),
		slog.Int("segments", segments),
		slog.Duration("duration", dur),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		l.log(slog.LevelError, l.level <= LogLevelError, "Encoding failed", attrs...)
		return
	}
	l.log(slog.LevelDebug, l.level <= LogLevelDebug, "Encoding completed", attrs...)
}

// LogRunEvent records one decoded run stream event.
func (l *WireLogger) LogRunEvent(eventType string) {
	l.log(slog.LevelDebug, l.level <= LogLevelDebug, "Run event", slog.String("event_type", eventType))
}

// LogRunEnd records how a run stream terminated (finish, abort or failure).
func (l *WireLogger) LogRunEnd(aborted bool, dur time.Duration, err error) {
	attrs := []slog.Attr{slog.Bool("aborted", aborted), slog.Duration("duration", dur)}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		l.log(slog.LevelError, l.level <= LogLevelError, "Run failed", attrs...)
		return
	}
	l.log(slog.LevelInfo, l.level <= LogLevelInfo, "Run completed", attrs...)
}
