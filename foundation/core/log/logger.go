// File: logger.go
// Title: Core Logger Implementation
// Description: Implements the Logger type that provides structured logging
//              with contextual fields on top of zap. The public surface is
//              kept small: leveled methods taking optional Fields, derived
//              loggers via WithField/WithFields and an always-on audit level.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-14
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with structured logging
// - 2026-10-14 v0.2.0: Backed by go.uber.org/zap, async worker removed

package log

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger represents a structured logger with contextual information
type Logger struct {
	zl    *zap.Logger
	level zap.AtomicLevel
	name  string
}

// Config represents logger configuration
type Config struct {
	Level        Level
	Format       Format
	Output       io.Writer
	Name         string
	EnableCaller bool
}

// New creates a new logger with default configuration
func New() *Logger {
	return NewWithConfig(Config{Level: DefaultLevel(), Format: FormatJSON})
}

// NewWithConfig creates a new logger with the specified configuration
func NewWithConfig(config Config) *Logger {
	output := config.Output
	if output == nil {
		output = os.Stdout
	}

	level := zap.NewAtomicLevelAt(config.Level.zap())
	core := zapcore.NewCore(config.Format.encoder(), zapcore.AddSync(output), level)

	opts := []zap.Option{zap.AddCallerSkip(1)}
	if config.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}

	zl := zap.New(core, opts...)
	if config.Name != "" {
		zl = zl.Named(config.Name)
	}

	return &Logger{zl: zl, level: level, name: config.Name}
}

// NewFromZap wraps an existing zap logger. The level is governed by the
// core of z; SetLevel has no effect on the wrapped core.
func NewFromZap(z *zap.Logger) *Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &Logger{
		zl:    z.WithOptions(zap.AddCallerSkip(1)),
		level: zap.NewAtomicLevelAt(zapTraceLevel),
	}
}

// NewNop returns a logger that discards everything
func NewNop() *Logger {
	return NewFromZap(zap.NewNop())
}

// WithName returns a logger with the given name segment appended
func (l *Logger) WithName(name string) *Logger {
	clone := *l
	clone.zl = l.zl.Named(name)
	clone.name = name
	return &clone
}

// WithField adds a persistent field to all log entries
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(Fields{key: value})
}

// WithFields adds persistent fields to all log entries
func (l *Logger) WithFields(fields Fields) *Logger {
	clone := *l
	clone.zl = l.zl.With(fields.zapFields()...)
	return &clone
}

// WithRequestID sets the request ID context
func (l *Logger) WithRequestID(requestID string) *Logger {
	return l.WithField("request_id", requestID)
}

// Trace logs a message at trace level
func (l *Logger) Trace(message string, fields ...Fields) {
	l.log(LevelTrace, message, fields)
}

// Debug logs a message at debug level
func (l *Logger) Debug(message string, fields ...Fields) {
	l.log(LevelDebug, message, fields)
}

// Info logs a message at info level
func (l *Logger) Info(message string, fields ...Fields) {
	l.log(LevelInfo, message, fields)
}

// Warn logs a message at warn level
func (l *Logger) Warn(message string, fields ...Fields) {
	l.log(LevelWarn, message, fields)
}

// Error logs a message at error level
func (l *Logger) Error(message string, fields ...Fields) {
	l.log(LevelError, message, fields)
}

// Fatal logs a message at fatal level and exits
func (l *Logger) Fatal(message string, fields ...Fields) {
	l.log(LevelFatal, message, fields)
}

// Audit logs an audit trail event
func (l *Logger) Audit(message string, fields ...Fields) {
	l.log(LevelAudit, message, fields)
}

// ErrorWithErr logs an error message with an attached error
func (l *Logger) ErrorWithErr(message string, err error, fields ...Fields) {
	l.log(LevelError, message, append(fields, Err(err)))
}

// WarnWithErr logs a warning message with an attached error
func (l *Logger) WarnWithErr(message string, err error, fields ...Fields) {
	l.log(LevelWarn, message, append(fields, Err(err)))
}

// StartTimer starts a timer that logs the operation duration on Stop
func (l *Logger) StartTimer(operation string) *Timer {
	return NewTimer(l, operation)
}

// IsLevelEnabled reports whether entries at level would be written
func (l *Logger) IsLevelEnabled(level Level) bool {
	return l.zl.Core().Enabled(level.zap())
}

// GetLevel returns the minimum level
func (l *Logger) GetLevel() Level {
	return levelFromZap(l.level.Level())
}

// SetLevel changes the minimum level for this logger and all loggers derived from it
func (l *Logger) SetLevel(level Level) {
	l.level.SetLevel(level.zap())
}

// Zap exposes the underlying zap logger for libraries that want one
func (l *Logger) Zap() *zap.Logger {
	return l.zl.WithOptions(zap.AddCallerSkip(-1))
}

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.zl.Sync()
}

func (l *Logger) log(level Level, message string, fields []Fields) {
	var merged Fields
	switch len(fields) {
	case 0:
	case 1:
		merged = fields[0]
	default:
		merged = Fields{}
		for _, f := range fields {
			merged = merged.Merge(f)
		}
	}
	l.zl.Log(level.zap(), message, merged.zapFields()...)
}

var (
	defaultLogger *Logger
	defaultMu     sync.RWMutex
)

// GetDefault returns the process-wide default logger
func GetDefault() *Logger {
	defaultMu.RLock()
	logger := defaultLogger
	defaultMu.RUnlock()
	if logger != nil {
		return logger
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = New()
	}
	return defaultLogger
}

// SetDefault replaces the process-wide default logger
func SetDefault(logger *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}
