// File: error_test.go
// Title: Error Tests
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-14

package error

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New("boom")

	assert.Equal(t, "boom", err.Error())
	assert.Equal(t, CodeUnknown, err.Code())
	assert.Empty(t, err.Details())
}

func TestWrap_InheritsCodeAndDetails(t *testing.T) {
	inner := New("sink unreachable").WithCode(CodeAuditDelivery).WithDetail("sink", "http")
	outer := Wrap(inner, "audit emit")

	assert.Equal(t, "audit emit: sink unreachable", outer.Error())
	assert.Equal(t, CodeAuditDelivery, outer.Code())
	assert.Equal(t, "http", outer.Details()["sink"])
	assert.ErrorIs(t, outer, inner)
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "nothing"))
}

func TestWrap_StandardError(t *testing.T) {
	base := errors.New("eof")
	err := Wrap(base, "read")

	assert.Equal(t, CodeUnknown, err.Code())
	assert.True(t, errors.Is(err, base))
}

func TestGetCode_ThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("outer: %w", New("t").WithCode(CodeTimeout))

	assert.Equal(t, CodeTimeout, GetCode(err))
	assert.True(t, HasCode(err, CodeTimeout))
	assert.False(t, HasCode(nil, CodeTimeout))
	assert.Equal(t, CodeUnknown, GetCode(errors.New("plain")))
}

func TestIs_MatchesByCode(t *testing.T) {
	err := New("no such command").WithCode(CodeUnknownCommand)

	assert.True(t, errors.Is(err, New("").WithCode(CodeUnknownCommand)))
	assert.False(t, errors.Is(err, New("").WithCode(CodeTimeout)))
	assert.False(t, errors.Is(err, New("")))
}

func TestDetailed(t *testing.T) {
	err := New("bad descriptor").
		WithCode(CodeValidationFailed).
		WithOperation("command.Validate").
		WithDetail("name", "scan").
		WithDetail("field", "examples")

	require.Equal(t, "[VALIDATION_FAILED] command.Validate: bad descriptor field=examples name=scan", err.Detailed())
}

func TestCode_IsRecoverable(t *testing.T) {
	assert.True(t, CodeTimeout.IsRecoverable())
	assert.True(t, CodeUnknownCommand.IsRecoverable())
	assert.False(t, CodeHandlerFailure.IsRecoverable())
}
