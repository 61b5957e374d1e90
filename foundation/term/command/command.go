// File: command.go
// Title: Command Contract Types
// Description: Parsed command lines, command results with status
//              classification, and the descriptor interface every
//              registered command satisfies.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial implementation

package command

import (
	"context"
	"fmt"
)

// Parsed is the structured form of one command line
type Parsed struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Options map[string]string `json:"options"`
}

// Empty reports whether the line contained no command
func (p Parsed) Empty() bool {
	return p.Command == ""
}

// Option returns the value of an option and whether it was given
func (p Parsed) Option(name string) (string, bool) {
	v, ok := p.Options[name]
	return v, ok
}

// Status classifies a command result
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusWarning Status = "warning"
	StatusInfo    Status = "info"
)

// Valid reports whether s is one of the four known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusSuccess, StatusError, StatusWarning, StatusInfo:
		return true
	}
	return false
}

// Result is what every execution produces
type Result struct {
	Output string      `json:"output"`
	Status Status      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
}

// WithData returns a copy of r carrying the structured payload
func (r Result) WithData(data interface{}) Result {
	r.Data = data
	return r
}

// IsError reports whether the result has error status
func (r Result) IsError() bool {
	return r.Status == StatusError
}

// Success builds a success result
func Success(format string, args ...interface{}) Result {
	return newResult(StatusSuccess, format, args)
}

// Error builds an error result
func Error(format string, args ...interface{}) Result {
	return newResult(StatusError, format, args)
}

// Warning builds a warning result
func Warning(format string, args ...interface{}) Result {
	return newResult(StatusWarning, format, args)
}

// Info builds an info result
func Info(format string, args ...interface{}) Result {
	return newResult(StatusInfo, format, args)
}

func newResult(status Status, format string, args []interface{}) Result {
	output := format
	if len(args) > 0 {
		output = fmt.Sprintf(format, args...)
	}
	return Result{Output: output, Status: status}
}

// Handler runs one command. Options without a value carry "true".
type Handler func(ctx context.Context, args []string, options map[string]string) (Result, error)

// Descriptor describes a registered command
type Descriptor interface {
	// Name is the token the command is invoked by
	Name() string
	// HelpSummary is a one-line description
	HelpSummary() string
	// Usage shows the invocation form, <required> and [optional]
	Usage() string
	// Examples lists at least one sample invocation
	Examples() []string
	// Run invokes the handler
	Run(ctx context.Context, args []string, options map[string]string) (Result, error)
}
