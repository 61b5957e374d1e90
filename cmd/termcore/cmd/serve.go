package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	mdwlog "github.com/msto63/termcore/foundation/core/log"
	"github.com/msto63/termcore/internal/server"
	"github.com/msto63/termcore/pkg/core/config"
	"github.com/msto63/termcore/pkg/core/health"
	"github.com/msto63/termcore/pkg/core/logging"
	"github.com/msto63/termcore/pkg/core/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP/WebSocket front end",
	Long: `Run the HTTP/WebSocket front end and, when server.grpc_port is set,
the gRPC health endpoint.

Endpoints:
  POST /api/v1/terminal/execute   {"line": "...", "mode": "..."}
  GET  /api/v1/terminal/modes
  GET  /api/v1/terminal/ws        WebSocket
  GET  /health

A config file given with --config or found on the default paths is
watched; changes to the per-mode disabled commands take effect without
restart.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(appConfig, appLogger)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Address:         appConfig.Server.Address(),
		GRPCAddress:     appConfig.Server.GRPCAddress(),
		ReadTimeout:     appConfig.Server.ReadTimeout.Duration,
		WriteTimeout:    appConfig.Server.WriteTimeout.Duration,
		ShutdownTimeout: appConfig.Server.ShutdownTimeout.Duration,
		AllowedOrigins:  appConfig.Server.AllowedOrigins,
		DefaultMode:     appConfig.General.DefaultMode,
		Version:         version.Version,
		Logger:          logging.Wrap(appLogger, "server"),
	}, a.engine)
	if err != nil {
		return err
	}
	registerHealthChecks(srv.HealthRegistry(), a)

	fmt.Fprintf(cmd.OutOrStdout(), "%s listening on %s\n", HeaderStyle.Render("termcore"), srv.Address())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	if configPath != "" {
		g.Go(func() error {
			err := config.Watch(gctx, configPath, a.applyConfig, func(err error) {
				appLogger.WarnWithErr("Config reload failed", err, mdwlog.Fields{"path": configPath})
			})
			if err != nil {
				// serving continues without hot reload
				appLogger.WarnWithErr("Config watch unavailable", err, mdwlog.Fields{"path": configPath})
			}
			return nil
		})
	}

	err = g.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.Server.ShutdownTimeout.Duration)
	defer cancel()
	if cerr := a.Close(shutdownCtx); cerr != nil {
		appLogger.WarnWithErr("Audit queue not drained", cerr)
	}
	return err
}

// registerHealthChecks reports audit queue pressure and registry cache use
func registerHealthChecks(reg *health.Registry, a *app) {
	reg.Register(health.Threshold("audit_queue", a.emitter.QueueLoad, 0.75, 0.95, func() map[string]interface{} {
		s := a.emitter.Stats()
		return map[string]interface{}{
			"queued":    s.Queued,
			"capacity":  s.Capacity,
			"delivered": s.Delivered,
			"failed":    s.Failed,
			"dropped":   s.Dropped,
		}
	}))
	reg.RegisterFunc("registry_cache", func(ctx context.Context) health.CheckResult {
		s := a.engine.CacheStats()
		return health.CheckResult{
			Name:    "registry_cache",
			Status:  health.StatusHealthy,
			Message: fmt.Sprintf("%d registries cached", s.Entries),
			Details: map[string]interface{}{
				"hits":          s.Hits,
				"misses":        s.Misses,
				"builds":        s.Builds,
				"invalidations": s.Invalidations,
			},
		}
	})
}
