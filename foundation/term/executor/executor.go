// File: executor.go
// Title: Command Dispatcher
// Description: Tokenize, resolve, dispatch and audit one command line.
//              Every outcome is a command.Result; failures never escape.
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
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	mdwerror "github.com/msto63/termcore/foundation/core/error"
	mdwlog "github.com/msto63/termcore/foundation/core/log"
	"github.com/msto63/termcore/foundation/term/command"
	"github.com/msto63/termcore/foundation/term/parser"
	"github.com/msto63/termcore/foundation/term/registry"
)

const (
	// DefaultHandlerTimeout bounds a single handler invocation
	DefaultHandlerTimeout = 30 * time.Second
	// DefaultMaxInputLength is the longest accepted line in bytes
	DefaultMaxInputLength = 4096

	tracerName = "github.com/msto63/termcore/foundation/term/executor"
)

// Options configures the engine
type Options struct {
	Logger  *mdwlog.Logger
	Auditor Auditor
	Tracer  trace.Tracer

	// HandlerTimeout bounds handler invocation. Zero selects the default,
	// a negative value disables the timeout.
	HandlerTimeout time.Duration

	// MaxInputLength rejects longer lines. Zero selects the default, a
	// negative value disables the check.
	MaxInputLength int

	// DefaultMode is used when Execute is called with an empty mode
	DefaultMode string
}

// Engine dispatches command lines against per-mode registries
type Engine struct {
	cache   *registry.Cache
	auditor Auditor
	tracer  trace.Tracer
	logger  *mdwlog.Logger
	options Options
	now     func() time.Time
	pending sync.WaitGroup // audit hand-offs not yet returned
}

// New creates an engine resolving registries through cache
func New(cache *registry.Cache, opts Options) (*Engine, error) {
	if cache == nil {
		return nil, mdwerror.New("registry cache is required").
			WithCode(mdwerror.CodeConfigError).
			WithOperation("executor.New")
	}

	// Set defaults
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}
	if opts.Auditor == nil {
		opts.Auditor = nopAuditor{}
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(tracerName)
	}
	if opts.HandlerTimeout == 0 {
		opts.HandlerTimeout = DefaultHandlerTimeout
	}
	if opts.MaxInputLength == 0 {
		opts.MaxInputLength = DefaultMaxInputLength
	}
	opts.DefaultMode = registry.NormalizeMode(opts.DefaultMode)

	e := &Engine{
		cache:   cache,
		auditor: opts.Auditor,
		tracer:  opts.Tracer,
		logger:  opts.Logger.WithField("component", "executor"),
		options: opts,
		now:     time.Now,
	}

	e.logger.Debug("Command executor initialized", mdwlog.Fields{
		"handlerTimeout": opts.HandlerTimeout.String(),
		"maxInputLength": opts.MaxInputLength,
		"defaultMode":    opts.DefaultMode,
	})

	return e, nil
}

// Execute runs one command line in mode and always returns a result
func (e *Engine) Execute(ctx context.Context, line, mode string) (result command.Result) {
	start := e.now()
	mode = registry.NormalizeMode(mode)
	if mode == "" {
		mode = e.options.DefaultMode
	}

	ctx, span := e.tracer.Start(ctx, "termcore.execute",
		trace.WithAttributes(attribute.String("termcore.mode", mode)))
	defer span.End()

	branch := BranchEmpty
	defer func() {
		if r := recover(); r != nil {
			err := mdwerror.Newf("%v", r).
				WithCode(mdwerror.CodeInternal).
				WithOperation("executor.Execute")
			e.logger.Error("Dispatcher panicked", mdwlog.Fields{"panic": fmt.Sprint(r), "mode": mode})
			result = command.Error("Internal error: %s", err.Message())
		}

		if result.Status == "" {
			result.Status = command.StatusSuccess
		}

		elapsed := e.now().Sub(start)
		span.SetAttributes(
			attribute.String("termcore.branch", string(branch)),
			attribute.String("termcore.status", string(result.Status)),
		)
		if result.IsError() {
			span.SetStatus(codes.Error, result.Output)
		}

		e.logger.Debug("Command executed", mdwlog.Fields{
			"mode":     mode,
			"branch":   string(branch),
			"status":   string(result.Status),
			"duration": elapsed.String(),
		})

		e.emit(AuditRecord{
			ID:        uuid.NewString(),
			Command:   line,
			Output:    result.Output,
			Mode:      mode,
			Status:    result.Status,
			Branch:    branch,
			Timestamp: start,
			Duration:  elapsed,
		})
	}()

	if limit := e.options.MaxInputLength; limit > 0 && len(line) > limit {
		branch = BranchRejected
		return command.Error("Input too long: %d bytes exceeds the limit of %d", len(line), limit)
	}

	parsed, issues := parser.Analyze(line)
	if len(issues) > 0 {
		e.logger.Debug("Recovered from ambiguous input", mdwlog.Fields{
			"code":   mdwerror.CodeParseAmbiguity.String(),
			"issues": fmt.Sprint(issues),
		})
	}
	if parsed.Empty() {
		return command.Success("")
	}
	span.SetAttributes(attribute.String("termcore.command", parsed.Command))

	reg := e.cache.Resolve(ctx, mode)

	switch parsed.Command {
	case cmdHelp:
		branch = BranchHelp
		return e.help(reg, parsed.Args)
	case cmdClear:
		branch = BranchClear
		return command.Success("")
	case cmdMode:
		branch = BranchMode
		return e.describeMode(reg)
	}

	if d, ok := reg.Lookup(parsed.Command); ok {
		branch = BranchCommand
		return e.invoke(ctx, d, parsed)
	}

	branch = BranchUnknown
	return e.unknown(reg, parsed.Command)
}

// Registry resolves the registry of mode through the engine's cache
func (e *Engine) Registry(ctx context.Context, mode string) *registry.Registry {
	mode = registry.NormalizeMode(mode)
	if mode == "" {
		mode = e.options.DefaultMode
	}
	return e.cache.Resolve(ctx, mode)
}
