// File: definition.go
// Title: Descriptor Implementation and Validation
// Description: Definition is the struct form of a Descriptor used by the
//              mode tables. Validate enforces the descriptor contract.
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
	"strings"
	"unicode"

	mdwerror "github.com/msto63/termcore/foundation/core/error"
)

// Definition is a Descriptor backed by plain fields
type Definition struct {
	CommandName string
	Summary     string
	UsageText   string
	ExampleList []string
	Handler     Handler
}

// Name implements Descriptor
func (d *Definition) Name() string { return d.CommandName }

// HelpSummary implements Descriptor
func (d *Definition) HelpSummary() string { return d.Summary }

// Usage implements Descriptor
func (d *Definition) Usage() string { return d.UsageText }

// Examples implements Descriptor
func (d *Definition) Examples() []string { return d.ExampleList }

// Run implements Descriptor
func (d *Definition) Run(ctx context.Context, args []string, options map[string]string) (Result, error) {
	return d.Handler(ctx, args, options)
}

// Validate checks that d satisfies the descriptor contract: a single-token
// name, non-empty summary and usage, at least one non-blank example, and a
// runnable handler when d is a Definition.
func Validate(d Descriptor) error {
	if d == nil {
		return invalid("", "descriptor", "descriptor is nil")
	}

	name := d.Name()
	if name == "" {
		return invalid(name, "name", "name is empty")
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return invalid(name, "name", "name contains whitespace")
	}
	if strings.TrimSpace(d.HelpSummary()) == "" {
		return invalid(name, "summary", "help summary is empty")
	}
	if strings.TrimSpace(d.Usage()) == "" {
		return invalid(name, "usage", "usage string is empty")
	}

	examples := d.Examples()
	if len(examples) == 0 {
		return invalid(name, "examples", "at least one example is required")
	}
	for i, ex := range examples {
		if strings.TrimSpace(ex) == "" {
			return invalid(name, "examples", "example is blank").WithDetail("index", i)
		}
	}

	if def, ok := d.(*Definition); ok && def.Handler == nil {
		return invalid(name, "handler", "handler is nil")
	}
	return nil
}

func invalid(name, field, msg string) *mdwerror.Error {
	return mdwerror.New(msg).
		WithCode(mdwerror.CodeValidationFailed).
		WithOperation("command.Validate").
		WithDetail("name", name).
		WithDetail("field", field)
}
