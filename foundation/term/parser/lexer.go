// File: lexer.go
// Title: Command Line Lexer
// Description: Splits a raw command line into tokens, honouring single and
//              double quote grouping and backslash-escaped quotes. Keeps
//              byte positions for diagnostics.
// Author: msto63
// Version: v0.1.1
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial lexer implementation
// - 2026-10-14 v0.1.1: Track whether a token opened with a quote

package parser

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Token is one lexical token of a command line
type Token struct {
	Value        string // Token text with quotes and escapes removed
	Position     int    // Byte offset of the token start in the input
	Quoted       bool   // At least one part of the token was quoted
	LeadingQuote bool   // The token opened with a quote delimiter
}

// String returns a debug representation of the token
func (t Token) String() string {
	if t.Quoted {
		return fmt.Sprintf("%q@%d", t.Value, t.Position)
	}
	return fmt.Sprintf("%s@%d", t.Value, t.Position)
}

// Issue describes input the lexer or classifier had to recover from
type Issue struct {
	Position int
	Message  string
}

// String returns a readable form of the issue
func (i Issue) String() string {
	return fmt.Sprintf("position %d: %s", i.Position, i.Message)
}

// Lexer tokenizes a single command line
type Lexer struct {
	input  string
	tokens []Token
	issues []Issue
	done   bool
}

// NewLexer creates a lexer for the given input
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Tokens returns the token stream of the input
func (l *Lexer) Tokens() []Token {
	l.run()
	return l.tokens
}

// Issues returns the recoveries performed while lexing
func (l *Lexer) Issues() []Issue {
	l.run()
	return l.issues
}

// Tokens is a shorthand for NewLexer(line).Tokens()
func Tokens(line string) []Token {
	return NewLexer(line).Tokens()
}

func (l *Lexer) run() {
	if l.done {
		return
	}
	l.done = true

	var (
		buf     strings.Builder
		inToken bool
		quoted  bool
		leading bool
		start   int
		quote   rune // active quote character, 0 outside quotes
		quoteAt int
	)

	flush := func() {
		if inToken {
			l.tokens = append(l.tokens, Token{Value: buf.String(), Position: start, Quoted: quoted, LeadingQuote: leading})
		}
		buf.Reset()
		inToken, quoted, leading = false, false, false
	}
	begin := func(pos int, opensQuote bool) {
		if !inToken {
			inToken = true
			start = pos
			leading = opensQuote
		}
	}

	for pos := 0; pos < len(l.input); {
		r, size := utf8.DecodeRuneInString(l.input[pos:])

		switch {
		case r == '\\' && pos+size < len(l.input) && isQuote(l.input[pos+size]):
			begin(pos, false)
			buf.WriteByte(l.input[pos+size])
			pos += size + 1
			continue

		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				buf.WriteRune(r)
			}

		case isQuoteRune(r):
			begin(pos, true)
			quote, quoteAt = r, pos
			quoted = true

		case unicode.IsSpace(r):
			flush()

		default:
			begin(pos, false)
			buf.WriteRune(r)
		}
		pos += size
	}

	if quote != 0 {
		l.issues = append(l.issues, Issue{
			Position: quoteAt,
			Message:  fmt.Sprintf("unterminated %c quote absorbed the rest of the line", quote),
		})
	}
	flush()
}

func isQuote(b byte) bool {
	return b == '"' || b == '\''
}

func isQuoteRune(r rune) bool {
	return r == '"' || r == '\''
}
