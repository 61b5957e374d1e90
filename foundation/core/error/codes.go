// File: codes.go
// Title: Error Code Definitions
// Description: Error codes classifying the failures the command interpreter
//              can observe. Codes double as the "kind" of a failure when it
//              is rendered into a command result or a log entry.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-14
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with core error codes
// - 2026-10-14 v0.2.0: Reduced to interpreter codes

package error

// Code represents a structured error code for categorizing errors
type Code string

const (
	CodeUnknown          Code = "UNKNOWN"
	CodeInternal         Code = "INTERNAL"
	CodeInvalidInput     Code = "INVALID_INPUT"
	CodeTimeout          Code = "TIMEOUT"
	CodeConfigError      Code = "CONFIG_ERROR"
	CodeValidationFailed Code = "VALIDATION_FAILED"

	// Interpreter failure taxonomy
	CodeParseAmbiguity Code = "PARSE_AMBIGUITY"
	CodeUnknownCommand Code = "UNKNOWN_COMMAND"
	CodeHandlerFailure Code = "HANDLER_FAILURE"
	CodeAuditDelivery  Code = "AUDIT_DELIVERY"
)

// String returns the code as a string
func (c Code) String() string {
	return string(c)
}

// IsRecoverable reports whether an operation failing with this code may
// reasonably be attempted again by the user
func (c Code) IsRecoverable() bool {
	switch c {
	case CodeTimeout, CodeInvalidInput, CodeUnknownCommand:
		return true
	default:
		return false
	}
}
