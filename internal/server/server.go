package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/akave-ai/seclog/internal/config"
	"github.com/akave-ai/seclog/internal/handler"
	"github.com/akave-ai/seclog/internal/ingest"
	"github.com/akave-ai/seclog/internal/metrics"
	"github.com/akave-ai/seclog/internal/repository"
)

// Database is the connection provider the server needs: transactions and
// queries for the repository, Ping for the health check.
type Database interface {
	repository.DB
	Ping(ctx context.Context) error
}

// Options carries optional collaborators. Zero values disable them.
type Options struct {
	Archiver ingest.Archiver
	NewRelic *newrelic.Application
}

// Server holds the Echo app and dependencies.
type Server struct {
	Echo    *echo.Echo
	Config  *config.Config
	Metrics *metrics.Metrics
	logger  zerolog.Logger
}

// New builds the Echo server and registers routes.
func New(cfg *config.Config, logger zerolog.Logger, db Database, opts Options) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = time.Duration(cfg.Server.ReadTimeout) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.Server.WriteTimeout) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.Server.IdleTimeout) * time.Second

	renderer, err := handler.NewTemplateRenderer()
	if err != nil {
		return nil, err
	}
	e.Renderer = renderer

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	e.Use(
		middleware.Recover(),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: newRequestID}),
		requestLogger(logger),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.Server.CORSAllowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
		}),
	)
	if opts.NewRelic != nil {
		e.Use(newRelic(opts.NewRelic))
	}

	repo := repository.NewLogRepository(db, logger)
	logHandler := &handler.LogHandler{
		Ingester: ingest.NewService(repo, opts.Archiver, m, logger),
		Reader:   repo,
		DB:       db,
		Logger:   logger.With().Str("component", "handler").Logger(),
	}

	ingestMW := []echo.MiddlewareFunc{middleware.BodyLimit(cfg.Server.BodyLimit)}
	if cfg.Server.RateLimit > 0 {
		ingestMW = append(ingestMW, rateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst))
	}

	e.POST("/api/log", logHandler.Ingest, ingestMW...)
	e.GET("/api/logs/recent", logHandler.Recent)
	e.GET("/admin/logs", logHandler.AdminView)
	e.GET("/healthz", logHandler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	return &Server{Echo: e, Config: cfg, Metrics: m, logger: logger}, nil
}

// Start starts the HTTP server. Blocks until the context is cancelled or the server fails.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		addr := ":" + s.Config.Server.Port
		s.logger.Info().Str("addr", addr).Msg("server listening")
		errCh <- s.Echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down server")
	return s.Echo.Shutdown(ctx)
}
