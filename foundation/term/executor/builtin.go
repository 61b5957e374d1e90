// File: builtin.go
// Title: Built-in Meta-Commands
// Description: help, clear and mode are answered by the dispatcher itself
//              and take precedence over registered commands. Unknown
//              names get a pointer to help and a close-match suggestion.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial implementation

package executor

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/msto63/termcore/foundation/term/command"
	"github.com/msto63/termcore/foundation/term/registry"
)

const (
	cmdHelp  = "help"
	cmdClear = "clear"
	cmdMode  = "mode"

	// maxSuggestDistance is the largest edit distance still suggested
	maxSuggestDistance = 2
)

// builtin describes a reserved command for help output
type builtin struct {
	name, summary, usage string
	examples             []string
}

var builtins = []builtin{
	{cmdHelp, "Show available commands or details for one command", "help [command]", []string{"help", "help echo"}},
	{cmdClear, "Clear the terminal output", "clear", []string{"clear"}},
	{cmdMode, "Show the active mode", "mode", []string{"mode"}},
}

// ReservedNames returns the names the dispatcher answers itself
func ReservedNames() []string {
	names := make([]string, len(builtins))
	for i, b := range builtins {
		names[i] = b.name
	}
	return names
}

// IsReserved reports whether name is a built-in command
func IsReserved(name string) bool {
	for _, b := range builtins {
		if b.name == name {
			return true
		}
	}
	return false
}

func (e *Engine) help(reg *registry.Registry, args []string) command.Result {
	if len(args) > 0 {
		if d, ok := reg.Lookup(args[0]); ok && !IsReserved(args[0]) {
			return command.Info("%s", formatDetail(d.Name(), d.HelpSummary(), d.Usage(), d.Examples())).
				WithData(map[string]interface{}{"command": d.Name()})
		}
		for _, b := range builtins {
			if b.name == args[0] {
				return command.Info("%s", formatDetail(b.name, b.summary, b.usage, b.examples)).
					WithData(map[string]interface{}{"command": b.name, "builtin": true})
			}
		}
	}

	descriptors := reg.Descriptors()
	width := 0
	for _, d := range descriptors {
		width = max(width, len(d.Name()))
	}
	for _, b := range builtins {
		width = max(width, len(b.name))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Available commands (mode: %s):\n", modeLabel(reg))
	names := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		if IsReserved(d.Name()) {
			continue
		}
		names = append(names, d.Name())
		fmt.Fprintf(&sb, "  %-*s  %s\n", width, d.Name(), d.HelpSummary())
	}
	sb.WriteString("\nBuilt-in:\n")
	for _, b := range builtins {
		fmt.Fprintf(&sb, "  %-*s  %s\n", width, b.name, b.summary)
	}
	sb.WriteString("\nType 'help <command>' for usage and examples.")

	return command.Info("%s", sb.String()).WithData(map[string]interface{}{
		"mode":     reg.Mode(),
		"commands": names,
	})
}

func formatDetail(name, summary, usage string, examples []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s - %s\n\nUsage: %s", name, summary, usage)
	if len(examples) > 0 {
		sb.WriteString("\n\nExamples:")
		for _, ex := range examples {
			sb.WriteString("\n  ")
			sb.WriteString(ex)
		}
	}
	return sb.String()
}

func (e *Engine) describeMode(reg *registry.Registry) command.Result {
	out := fmt.Sprintf("Current mode: %s", modeLabel(reg))
	if !reg.KnownMode() {
		out += " (unrecognized, base commands only)"
	}
	return command.Info("%s", out).WithData(map[string]interface{}{
		"mode":     reg.Mode(),
		"known":    reg.KnownMode(),
		"commands": reg.Len(),
	})
}

func (e *Engine) unknown(reg *registry.Registry, name string) command.Result {
	out := fmt.Sprintf("Command not found: %s. Type 'help' to list available commands.", name)
	if s := suggest(reg, name); s != "" {
		out += fmt.Sprintf(" Did you mean '%s'?", s)
	}
	return command.Error("%s", out)
}

// suggest returns the closest registered or built-in name within
// maxSuggestDistance, preferring the alphabetically first on ties
func suggest(reg *registry.Registry, name string) string {
	best, bestDist := "", maxSuggestDistance+1
	candidates := append(reg.Names(), ReservedNames()...)
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(name, c)
		if d < bestDist || (d == bestDist && c < best) {
			best, bestDist = c, d
		}
	}
	if bestDist > maxSuggestDistance {
		return ""
	}
	return best
}

func modeLabel(reg *registry.Registry) string {
	if reg.Mode() == "" {
		return "base"
	}
	return reg.Mode()
}
