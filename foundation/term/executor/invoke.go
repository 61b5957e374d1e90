// File: invoke.go
// Title: Handler Invocation
// Description: Runs a descriptor handler under an optional timeout and
//              converts errors and panics into error results.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial implementation

package executor

import (
	"context"
	"errors"
	"fmt"

	mdwerror "github.com/msto63/termcore/foundation/core/error"
	mdwlog "github.com/msto63/termcore/foundation/core/log"
	"github.com/msto63/termcore/foundation/term/command"
)

type outcome struct {
	result command.Result
	err    error
}

// invoke runs d and waits for it, the timeout or the caller's context
func (e *Engine) invoke(ctx context.Context, d command.Descriptor, parsed command.Parsed) command.Result {
	timeout := e.options.HandlerTimeout
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// Buffered so an abandoned handler can still finish and exit
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: mdwerror.Newf("panic: %v", r).
					WithCode(mdwerror.CodeHandlerFailure).
					WithOperation("executor.invoke").
					WithDetail("command", d.Name())}
			}
		}()
		res, err := d.Run(ctx, parsed.Args, parsed.Options)
		done <- outcome{result: res, err: err}
	}()

	var out outcome
	select {
	case out = <-done:
		if out.err == nil {
			return out.result
		}
	case <-ctx.Done():
		out.err = ctx.Err()
	}

	if timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		e.logger.Warn("Command timed out", mdwlog.Fields{
			"command": d.Name(),
			"timeout": timeout.String(),
			"code":    mdwerror.CodeHandlerFailure.String(),
		})
		return command.Error("Command '%s' timed out after %s", d.Name(), timeout)
	}
	return e.handlerFailure(d.Name(), out.err)
}

func (e *Engine) handlerFailure(name string, err error) command.Result {
	wrapped := mdwerror.Wrap(err, fmt.Sprintf("command %s failed", name))
	if wrapped.Code() == mdwerror.CodeUnknown {
		wrapped.WithCode(mdwerror.CodeHandlerFailure)
	}

	e.logger.WarnWithErr("Command handler failed", err, mdwlog.Fields{
		"command": name,
		"code":    wrapped.Code().String(),
	})
	return command.Error("Error executing '%s': %s", name, err.Error())
}
