package cmd

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"

	mdwlog "github.com/msto63/termcore/foundation/core/log"
	"github.com/msto63/termcore/foundation/term"
	"github.com/msto63/termcore/internal/audit"
	"github.com/msto63/termcore/internal/commands"
	"github.com/msto63/termcore/pkg/core/config"
)

// app bundles the interpreter with its catalog and audit emitter
type app struct {
	engine  *term.Engine
	catalog *commands.Catalog
	emitter *audit.Emitter
	logger  *mdwlog.Logger
}

// newApp wires catalog, audit pipeline and engine from cfg
func newApp(cfg *config.Config, logger *mdwlog.Logger) (*app, error) {
	catalog, err := commands.NewCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to build command catalog: %w", err)
	}
	catalog.SetDisabled(cfg.DisabledCommands())

	sink, err := audit.NewSink(audit.SinkConfig{
		Kinds:      cfg.Audit.Sinks,
		Endpoint:   cfg.Audit.Endpoint,
		SQLitePath: cfg.Audit.SQLitePath,
		Timeout:    cfg.Audit.Timeout.Duration,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build audit sink: %w", err)
	}

	emitter := audit.NewEmitter(sink, audit.Config{
		QueueSize:       cfg.Audit.QueueSize,
		Workers:         cfg.Audit.Workers,
		RateLimit:       cfg.Audit.RateLimit,
		Burst:           cfg.Audit.Burst,
		MaxOutputLength: cfg.Audit.MaxOutputLength,
		WriteTimeout:    cfg.Audit.Timeout.Duration,
		Logger:          logger,
	})

	engine, err := term.New(catalog, term.Options{
		Logger:         logger,
		Auditor:        emitter,
		Tracer:         otel.Tracer("github.com/msto63/termcore"),
		HandlerTimeout: cfg.Executor.HandlerTimeout.Duration,
		MaxInputLength: cfg.Executor.MaxInputLength,
		DefaultMode:    cfg.General.DefaultMode,
	})
	if err != nil {
		emitter.Close(context.Background())
		return nil, err
	}

	return &app{engine: engine, catalog: catalog, emitter: emitter, logger: logger}, nil
}

// applyConfig installs the disabled-commands overlay of cfg and drops the
// cached registries it affects
func (rt *app) applyConfig(cfg *config.Config) {
	changed := rt.catalog.SetDisabled(cfg.DisabledCommands())
	for _, key := range changed {
		if key == commands.BaseKey {
			rt.engine.InvalidateAll()
			break
		}
		rt.engine.Invalidate(key)
	}
	if len(changed) > 0 {
		rt.logger.Info("Command overlay reloaded", mdwlog.Fields{"changed": changed})
	}
}

// Close waits for in-flight audit hand-offs, then drains the audit queue
func (rt *app) Close(ctx context.Context) error {
	if err := rt.engine.Flush(ctx); err != nil {
		rt.logger.WarnWithErr("Audit hand-offs still pending", err)
	}
	return rt.emitter.Close(ctx)
}
