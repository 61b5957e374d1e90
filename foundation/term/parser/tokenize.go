// File: tokenize.go
// Title: Command Line Classification
// Description: Classifies lexer tokens into the command word, positional
//              arguments and options, producing a command.Parsed value.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial implementation

package parser

import (
	"strings"

	"github.com/msto63/termcore/foundation/term/command"
)

// flagTrue is the value recorded for options given without a value
const flagTrue = "true"

// Tokenize parses one raw line. It never fails: empty input yields an
// empty command.Parsed and malformed input is recovered from.
func Tokenize(line string) command.Parsed {
	parsed, _ := Analyze(line)
	return parsed
}

// Analyze parses one raw line and also reports every recovery performed
// along the way
func Analyze(line string) (command.Parsed, []Issue) {
	lx := NewLexer(line)
	tokens := lx.Tokens()
	issues := append([]Issue(nil), lx.Issues()...)

	parsed := command.Parsed{
		Args:    []string{},
		Options: map[string]string{},
	}
	if len(tokens) == 0 {
		return parsed, issues
	}

	parsed.Command = tokens[0].Value
	rest := tokens[1:]

	// takeValue consumes rest[i+1] when it can serve as an option value
	takeValue := func(i int) (string, int) {
		if i+1 < len(rest) && !strings.HasPrefix(rest[i+1].Value, "-") {
			return rest[i+1].Value, i + 1
		}
		return flagTrue, i
	}

	for i := 0; i < len(rest); i++ {
		tok := rest[i]
		val := tok.Value

		switch {
		case tok.LeadingQuote, val == "-", val == "--":
			parsed.Args = append(parsed.Args, val)

		case strings.HasPrefix(val, "--"):
			body := val[2:]
			if name, value, ok := strings.Cut(body, "="); ok {
				if name == "" {
					issues = append(issues, Issue{Position: tok.Position, Message: "long option without a name kept as argument"})
					parsed.Args = append(parsed.Args, val)
					continue
				}
				parsed.Options[name] = value
				continue
			}
			parsed.Options[body], i = takeValue(i)

		case strings.HasPrefix(val, "-"):
			if strings.Contains(val, "=") {
				issues = append(issues, Issue{Position: tok.Position, Message: "short flag cluster with '=' kept as argument"})
				parsed.Args = append(parsed.Args, val)
				continue
			}
			flags := []rune(val[1:])
			for _, f := range flags[:len(flags)-1] {
				parsed.Options[string(f)] = flagTrue
			}
			parsed.Options[string(flags[len(flags)-1])], i = takeValue(i)

		default:
			parsed.Args = append(parsed.Args, val)
		}
	}

	return parsed, issues
}
