// File: doc.go
// Title: Command Executor Package Documentation
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14

/*
Package executor dispatches command lines.

Engine.Execute tokenizes a line, resolves the registry of the active mode,
answers the built-in commands help, clear and mode itself, invokes the
handler of any other registered name and reports everything else as an
unknown command. Built-in names always take precedence over registered
commands with the same name.

Execute never returns an error and never panics. Handler errors, handler
panics and handler timeouts become error-status results. After every
execution one AuditRecord is handed to the configured Auditor on a
separate goroutine; nothing the auditor does can delay or change the
result.
*/
package executor
