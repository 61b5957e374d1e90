// File: level.go
// Title: Log Levels
// Description: Defines the log levels used across termcore and maps them onto
//              zap levels, including the trace and audit levels zap lacks.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-14
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation
// - 2026-10-14 v0.2.0: Levels mapped onto zapcore

package log

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Level represents the importance level of a log message
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal

	// LevelAudit is always emitted regardless of the configured minimum
	LevelAudit
)

const (
	zapTraceLevel = zapcore.DebugLevel - 1
	zapAuditLevel = zapcore.FatalLevel + 1
)

// String returns the string representation of the log level
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	case LevelAudit:
		return "audit"
	default:
		return "unknown"
	}
}

// ParseLevel converts a level name to a Level
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "fatal":
		return LevelFatal, nil
	case "audit":
		return LevelAudit, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// DefaultLevel returns the production default
func DefaultLevel() Level {
	return LevelInfo
}

func (l Level) zap() zapcore.Level {
	switch l {
	case LevelTrace:
		return zapTraceLevel
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelInfo:
		return zapcore.InfoLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	case LevelFatal:
		return zapcore.FatalLevel
	case LevelAudit:
		return zapAuditLevel
	default:
		return zapcore.InfoLevel
	}
}

func levelFromZap(l zapcore.Level) Level {
	switch {
	case l <= zapTraceLevel:
		return LevelTrace
	case l == zapcore.DebugLevel:
		return LevelDebug
	case l == zapcore.InfoLevel:
		return LevelInfo
	case l == zapcore.WarnLevel:
		return LevelWarn
	case l >= zapAuditLevel:
		return LevelAudit
	case l >= zapcore.FatalLevel:
		return LevelFatal
	default:
		return LevelError
	}
}

// encodeLevel renders zap levels with our level names so trace and audit
// do not show up as Level(-2) / Level(6).
func encodeLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(levelFromZap(l).String())
}
