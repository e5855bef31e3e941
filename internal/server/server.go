// Package server assembles the petstore application and runs it.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/buildwithgo/amarodoc"
	"github.com/buildwithgo/amarodoc/addons/cache"
	"github.com/buildwithgo/amarodoc/internal/config"
	"github.com/buildwithgo/amarodoc/internal/petstore"
	"github.com/buildwithgo/amarodoc/middlewares"
	"github.com/buildwithgo/amarodoc/openapi"
	"github.com/buildwithgo/amarodoc/routers"
)

// Server is the petstore HTTP application.
type Server struct {
	cfg         config.Config
	logger      *zap.Logger
	app         *amarodoc.App
	gen         *openapi.Generator
	store       *petstore.Store
	idempotency *cache.MemoryCache
	commentsDir string
	registry    *prometheus.Registry
}

type Option func(*Server)

// WithCommentsDir documents schemas with the doc comments of the Go files in dir.
func WithCommentsDir(dir string) Option {
	return func(s *Server) { s.commentsDir = dir }
}

// WithRegistry registers the request metrics with reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

// New builds the application described by cfg.
func New(cfg config.Config, logger *zap.Logger, opts ...Option) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:         cfg,
		logger:      logger,
		store:       petstore.NewStore(petstore.DefaultHistory),
		idempotency: cache.NewMemoryCache(time.Minute),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.setup(); err != nil {
		s.idempotency.Close()
		return nil, err
	}
	return s, nil
}

func (s *Server) setup() error {
	s.app = amarodoc.New(
		amarodoc.WithRouter(routers.NewTrieRouter()),
		amarodoc.WithLogger(s.logger),
	)
	s.app.Use(amarodoc.Recovery(amarodoc.WithRecoveryLogger(s.logger)))
	s.app.Use(middlewares.RequestID())
	s.app.Use(middlewares.Logger(s.logger))
	if s.cfg.Metrics.Enabled {
		m, err := middlewares.NewMetrics(s.cfg.Metrics.Namespace, s.registry)
		if err != nil {
			return fmt.Errorf("server: metrics: %w", err)
		}
		s.app.Use(m.Middleware())
		if err := s.app.GET(s.cfg.Metrics.Path, m.Handler()); err != nil {
			return fmt.Errorf("server: mount metrics: %w", err)
		}
	}
	s.app.Use(middlewares.Secure())
	s.app.Use(middlewares.CORS(s.cfg.CORS))
	s.app.Use(middlewares.Compress())

	s.gen = petstore.NewGenerator(s.cfg.OpenAPI, s.logger)
	api := petstore.NewAPI(s.store, s.gen,
		petstore.WithLogger(s.logger),
		petstore.WithAuth(middlewares.JWT(
			middlewares.WithSecret(s.cfg.JWT.Secret),
			middlewares.WithIssuer(s.cfg.JWT.Issuer),
		)),
		petstore.WithIdempotency(s.idempotency, petstore.DefaultIdempotencyTTL))
	if err := api.Register(s.app); err != nil {
		return fmt.Errorf("server: register api: %w", err)
	}
	if s.commentsDir != "" && s.gen.Enabled() {
		if err := openapi.ApplyComments(s.gen, s.commentsDir); err != nil {
			return fmt.Errorf("server: %w", err)
		}
	}
	if err := openapi.Mount(s.app, s.gen); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := s.app.GET("/healthz", func(c *amarodoc.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}); err != nil {
		return err
	}
	if s.gen.Enabled() {
		for _, r := range openapi.Undocumented(s.gen, s.app.Routes()) {
			s.logger.Debug("route not documented", zap.String("method", r.Method), zap.String("path", r.Path))
		}
	}
	return nil
}

// App returns the application handler.
func (s *Server) App() *amarodoc.App {
	return s.app
}

// Generator returns the generator documenting the application.
func (s *Server) Generator() *openapi.Generator {
	return s.gen
}

// Store returns the pet store served by the application.
func (s *Server) Store() *petstore.Store {
	return s.store
}

// Close releases the background resources of the server. Serve calls it on return.
func (s *Server) Close() {
	s.idempotency.Close()
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves connections from ln until ctx is done, then shuts down
// gracefully within the configured timeout. Open event streams are ended
// when shutdown starts.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.Close()

	srv := s.app.Server(ln.Addr().String())
	base, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	srv.BaseContext = func(net.Listener) context.Context { return base }
	srv.RegisterOnShutdown(cancelBase)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("server started", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		timeout := s.cfg.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s.logger.Info("server shutting down", zap.Duration("timeout", timeout))
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
