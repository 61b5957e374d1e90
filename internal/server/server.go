package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/msto63/termcore/foundation/term/command"
	"github.com/msto63/termcore/foundation/term/registry"
	grpcx "github.com/msto63/termcore/pkg/core/grpc"
	"github.com/msto63/termcore/pkg/core/health"
	"github.com/msto63/termcore/pkg/core/logging"
)

// HealthService is the gRPC health service name reported by the server
const HealthService = "termcore"

// Executor runs command lines and exposes the registry behind a mode
type Executor interface {
	Execute(ctx context.Context, line, mode string) command.Result
	Registry(ctx context.Context, mode string) *registry.Registry
}

// Server is the HTTP/WebSocket front end of the interpreter
type Server struct {
	httpServer *http.Server
	grpc       *grpcx.Server
	handler    *Handler
	health     *health.Registry
	logger     *logging.Logger
	config     Config
}

// Config holds server configuration
type Config struct {
	Address         string
	GRPCAddress     string // empty disables the gRPC health endpoint
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	DefaultMode     string
	Version         string
	Logger          *logging.Logger
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Address:         "0.0.0.0:8080",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		DefaultMode:     "general-purpose",
		Version:         "0.1.0",
	}
}

// New creates the front end for exec
func New(cfg Config, exec Executor) (*Server, error) {
	if exec == nil {
		return nil, fmt.Errorf("executor is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.New("termcore-server")
	}

	healthRegistry := health.NewRegistry("termcore", cfg.Version)
	healthRegistry.RegisterFunc("http", func(ctx context.Context) health.CheckResult {
		return health.CheckResult{
			Name:    "http",
			Status:  health.StatusHealthy,
			Message: "HTTP server is running",
		}
	})
	healthRegistry.RegisterFunc("registry", func(ctx context.Context) health.CheckResult {
		reg := exec.Registry(ctx, cfg.DefaultMode)
		if reg == nil || reg.Len() == 0 {
			return health.CheckResult{
				Name:    "registry",
				Status:  health.StatusUnhealthy,
				Message: "No commands registered",
			}
		}
		return health.CheckResult{
			Name:    "registry",
			Status:  health.StatusHealthy,
			Message: fmt.Sprintf("%d commands in mode %s", reg.Len(), reg.Mode()),
		}
	})

	h := NewHandler(exec, healthRegistry, HandlerConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/v1/terminal/ws", NewWebSocketHandler(exec, cfg.AllowedOrigins, logger))
	mux.Handle("/", h)

	httpServer := &http.Server{
		Addr:         cfg.Address,
		Handler:      loggingMiddleware(logger, mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	var grpcServer *grpcx.Server
	if cfg.GRPCAddress != "" {
		grpcCfg := grpcx.DefaultServerConfig(cfg.GRPCAddress)
		grpcCfg.Logger = logger
		grpcServer = grpcx.NewServer(grpcCfg)
	}

	return &Server{
		httpServer: httpServer,
		grpc:       grpcServer,
		handler:    h,
		health:     healthRegistry,
		logger:     logger,
		config:     cfg,
	}, nil
}

// loggingMiddleware adds request logging
func loggingMiddleware(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapper.statusCode,
			"duration", time.Since(start),
		)
	})
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController (and the WebSocket upgrade) reach
// the underlying writer
func (w *responseWrapper) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Hijack exposes the connection for the WebSocket upgrade
func (w *responseWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hj.Hijack()
}

// Handler returns the root HTTP handler including middleware
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves HTTP (and gRPC health, if configured) until ctx is done,
// then shuts both down gracefully
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Address, err)
	}
	return s.Serve(ctx, lis)
}

// Serve is Run on an existing listener
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	if s.grpc != nil {
		if err := s.grpc.Listen(); err != nil {
			lis.Close()
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	s.logger.Info("Starting termcore front end", "address", lis.Addr().String())

	g.Go(func() error {
		if err := s.httpServer.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if s.grpc != nil {
		s.grpc.SetServing("", true)
		s.grpc.SetServing(HealthService, true)
		g.Go(func() error {
			return s.grpc.Serve(gctx, nil)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return s.Stop()
	})

	return g.Wait()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	s.logger.Info("Stopping termcore front end")

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if s.grpc != nil {
		s.grpc.SetServing(HealthService, false)
	}
	return s.httpServer.Shutdown(ctx)
}

// Address returns the configured HTTP address
func (s *Server) Address() string {
	return s.config.Address
}

// GRPCAddress returns the gRPC health address, or "" when disabled
func (s *Server) GRPCAddress() string {
	if s.grpc == nil {
		return ""
	}
	return s.grpc.Address()
}

// HealthRegistry returns the health check registry
func (s *Server) HealthRegistry() *health.Registry {
	return s.health
}
