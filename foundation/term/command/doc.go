// File: doc.go
// Title: Command Contract Package Documentation
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14

/*
Package command defines the contract shared by the tokenizer, the
capability registry, the executor and every leaf command: the parsed form
of a command line, the result a command produces, and the descriptor a
command is registered with.

A leaf command is usually declared as a Definition:

	var Hash = &command.Definition{
		CommandName: "hash",
		Summary:     "Compute a digest of the given text",
		UsageText:   "hash <text...> [--algo=sha256|sha1|md5]",
		ExampleList: []string{"hash hello", "hash --algo=md5 hello"},
		Handler: func(ctx context.Context, args []string, opts map[string]string) (command.Result, error) {
			...
			return command.Success("%x", sum), nil
		},
	}

Handlers report user-triggerable problems (missing arguments, bad values)
as error-status results. A returned Go error or a panic is treated as an
unexpected failure and converted into an error result by the executor.
*/
package command
