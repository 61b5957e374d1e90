// File: doc.go
// Title: Command Line Tokenizer Package Documentation
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14

/*
Package parser turns one raw command line into a command.Parsed value.

The grammar is deliberately flat: a command word followed by positional
arguments and options. There are no pipes, redirections, subshells or
variable expansion.

Lexing rules:

  - whitespace outside quotes separates tokens
  - single and double quotes group a run; a quote only closes the run it
    opened, so 'it"s' is one token
  - a backslash directly before a quote makes the quote literal and is
    dropped; any other backslash is kept as is
  - an unterminated quote absorbs the rest of the line

Classification of every token after the command word:

	--name=value   option name with value (split on the first '=')
	--name value   option name consumes the next token unless it starts with '-'
	--name         option name = "true"
	-abc           a, b = "true"; c consumes the next token under the same rule
	anything else  positional argument, in order

Quoted tokens are never options, and a lone "-" or "--" is positional.
Repeated option names overwrite earlier values.

Malformed input never fails. Analyze reports the places where the
tokenizer had to recover so callers can log them.
*/
package parser
