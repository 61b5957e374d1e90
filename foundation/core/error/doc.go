// File: doc.go
// Title: Error Package Documentation
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-14

/*
Package error provides the structured error type used across termcore.

	err := mdwerror.New("handler panicked").
		WithCode(mdwerror.CodeHandlerFailure).
		WithOperation("executor.invoke").
		WithDetail("command", "scan")

	if mdwerror.HasCode(err, mdwerror.CodeHandlerFailure) {
		// convert to an error-status result
	}
*/
package error
