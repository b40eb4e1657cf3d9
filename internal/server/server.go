// Package server exposes the analyzer over HTTP with gin.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/rewired-gh/polysteamroller/internal/analyzer"
	"github.com/rewired-gh/polysteamroller/internal/config"
	"github.com/rewired-gh/polysteamroller/internal/logger"
	"github.com/rewired-gh/polysteamroller/internal/resolver"
)

const (
	shutdownTimeout = 10 * time.Second
	notifyTimeout   = 30 * time.Second
)

// Analyzer produces a report for a raw query.
type Analyzer interface {
	AnalyzeEvent(ctx context.Context, raw string) (*analyzer.Report, error)
}

// Notifier pushes reports to an alert sink.
type Notifier interface {
	SendVerdict(ctx context.Context, report *analyzer.Report) (bool, error)
}

// Server is the HTTP host.
type Server struct {
	engine   *gin.Engine
	addr     string
	analyzer Analyzer
	notifier Notifier
}

// Option configures a Server.
type Option func(*Server)

// WithNotifier sends every successful report to n in the background.
func WithNotifier(n Notifier) Option {
	return func(s *Server) { s.notifier = n }
}

// WithMetricsHandler mounts h at GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.engine.GET("/metrics", gin.WrapH(h)) }
}

// New builds the gin engine and its routes.
func New(cfg config.ServerConfig, a Analyzer, opts ...Option) *Server {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(), corsMiddleware(cfg.AllowedOrigins))
	if cfg.Mode == gin.DebugMode {
		pprof.Register(engine)
	}

	s := &Server{
		engine:   engine,
		addr:     cfg.Addr,
		analyzer: a,
	}

	engine.GET("/ping", s.ping)
	engine.GET("/api/steamroller", s.steamroller)

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening on %s", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func (s *Server) ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// steamroller handles GET /api/steamroller?q=... (slug= is accepted too).
func (s *Server) steamroller(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("q"))
	if raw == "" {
		raw = strings.TrimSpace(c.Query("slug"))
	}
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing ?q= parameter"})
		return
	}

	report, err := s.analyzer.AnalyzeEvent(c.Request.Context(), raw)
	if err != nil {
		status := statusFor(err)
		logger.With(map[string]interface{}{"query": raw, "status": status}).
			WithError(err).Warn("steamroller request failed")
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	if s.notifier != nil {
		go s.notify(report)
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) notify(report *analyzer.Report) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	if _, err := s.notifier.SendVerdict(ctx, report); err != nil {
		logger.Error("Failed to send Telegram notification: %v", err)
	}
}

// statusFor maps analysis errors onto HTTP status codes.
func statusFor(err error) int {
	var resErr *resolver.ResolutionError
	switch {
	case errors.As(err, &resErr):
		if resErr.Kind == resolver.NotFound {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
