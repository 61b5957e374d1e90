// File: logger_test.go
// Title: Logger Tests
// Description: Tests for levels, fields, derived loggers and timers.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-14

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestNewWithConfig_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithConfig(Config{Level: LevelInfo, Format: FormatJSON, Output: &buf, Name: "test-logger"})

	logger.Info("hello", Fields{"command": "scan"})

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, "hello", lines[0]["message"])
	assert.Equal(t, "test-logger", lines[0]["logger"])
	assert.Equal(t, "scan", lines[0]["command"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithConfig(Config{Level: LevelWarn, Output: &buf})

	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("kept")
	logger.Audit("always kept")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "warn", lines[0]["level"])
	assert.Equal(t, "audit", lines[1]["level"])
}

func TestLogger_SetLevelAffectsDerived(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithConfig(Config{Level: LevelError, Output: &buf})
	derived := logger.WithField("component", "executor")

	derived.Info("dropped")
	logger.SetLevel(LevelDebug)
	derived.Info("kept")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "executor", lines[0]["component"])
	assert.Equal(t, LevelDebug, logger.GetLevel())
}

func TestLogger_ErrorWithErr(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithConfig(Config{Level: LevelInfo, Output: &buf})

	logger.ErrorWithErr("sink failed", errors.New("connection refused"), Fields{"sink": "http"})

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "connection refused", lines[0]["error"])
	assert.Equal(t, "http", lines[0]["sink"])
}

func TestNewFromZap_Observer(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewFromZap(zap.New(core))

	logger.WithRequestID("req-1").Debug("traced", Fields{"n": 1})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "traced", entries[0].Message)
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"trace", LevelTrace, false},
		{"DEBUG", LevelDebug, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"audit", LevelAudit, false},
		{"loud", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimer_StopOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithConfig(Config{Level: LevelDebug, Output: &buf})

	timer := logger.StartTimer("registry_build").WithField("mode", "web-engineering")
	assert.GreaterOrEqual(t, int64(timer.Stop()), int64(0))
	assert.Equal(t, int64(0), int64(timer.Stop()))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "registry_build completed", lines[0]["message"])
	assert.Equal(t, "web-engineering", lines[0]["mode"])
}
