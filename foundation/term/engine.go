// File: engine.go
// Title: Interpreter Engine
// Description: High-level entry point combining registry cache and
//              executor for embedding in servers and command line tools.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial implementation

package term

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	mdwlog "github.com/msto63/termcore/foundation/core/log"
	"github.com/msto63/termcore/foundation/term/command"
	"github.com/msto63/termcore/foundation/term/executor"
	"github.com/msto63/termcore/foundation/term/parser"
	"github.com/msto63/termcore/foundation/term/registry"
)

// Options configures the interpreter
type Options struct {
	Logger         *mdwlog.Logger
	Auditor        executor.Auditor
	Tracer         trace.Tracer
	HandlerTimeout time.Duration
	MaxInputLength int
	DefaultMode    string
}

// Engine is the embeddable command interpreter
type Engine struct {
	cache    *registry.Cache
	executor *executor.Engine
	logger   *mdwlog.Logger
}

// New creates an interpreter over catalog
func New(catalog registry.Catalog, opts Options) (*Engine, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}

	logger := opts.Logger.WithField("component", "term-engine")
	cache := registry.NewCache(catalog, registry.CacheOptions{Logger: opts.Logger})

	exec, err := executor.New(cache, executor.Options{
		Logger:         opts.Logger,
		Auditor:        opts.Auditor,
		Tracer:         opts.Tracer,
		HandlerTimeout: opts.HandlerTimeout,
		MaxInputLength: opts.MaxInputLength,
		DefaultMode:    opts.DefaultMode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize executor: %w", err)
	}

	logger.Info("Command interpreter initialized", mdwlog.Fields{
		"defaultMode": registry.NormalizeMode(opts.DefaultMode),
	})

	return &Engine{cache: cache, executor: exec, logger: logger}, nil
}

// Execute runs one line in mode
func (e *Engine) Execute(ctx context.Context, line, mode string) command.Result {
	return e.executor.Execute(ctx, line, mode)
}

// Tokenize parses a line without executing it
func (e *Engine) Tokenize(line string) command.Parsed {
	return parser.Tokenize(line)
}

// Registry returns the resolved registry of mode
func (e *Engine) Registry(ctx context.Context, mode string) *registry.Registry {
	return e.executor.Registry(ctx, mode)
}

// Invalidate drops the cached registry of mode
func (e *Engine) Invalidate(mode string) {
	e.cache.Invalidate(mode)
}

// InvalidateAll drops every cached registry
func (e *Engine) InvalidateAll() {
	e.cache.InvalidateAll()
}

// Flush waits for pending audit hand-offs; call it before closing the
// auditor so the last executions are not dropped
func (e *Engine) Flush(ctx context.Context) error {
	return e.executor.Flush(ctx)
}

// CacheStats returns registry cache counters
func (e *Engine) CacheStats() registry.CacheStats {
	return e.cache.Stats()
}
