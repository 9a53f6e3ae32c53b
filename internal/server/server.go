// Package server exposes crash log parsing over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ccollicutt/crashlog/pkg/analyzer"
	"github.com/ccollicutt/crashlog/pkg/config"
	"github.com/ccollicutt/crashlog/pkg/webhook"
)

// multipartOverhead is the allowance for form framing on top of the log itself.
const multipartOverhead = 64 << 10

// Server accepts crash log uploads and forwards the reports to webhooks.
type Server struct {
	cfg        config.ServerConfig
	maxLogSize int64
	analyzer   *analyzer.Analyzer
	dispatcher *webhook.Dispatcher
	logger     *zap.Logger
	registry   *prometheus.Registry
	metrics    *Metrics
	router     *gin.Engine
}

// New creates a server. A nil dispatcher delivers nowhere; a nil logger is silent.
func New(cfg *config.Config, a *analyzer.Analyzer, d *webhook.Dispatcher, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if d == nil {
		d = webhook.NewDispatcher(nil, nil, logger)
	}

	registry := prometheus.NewRegistry()

	s := &Server{
		cfg:        cfg.Server,
		maxLogSize: cfg.Limits.MaxLogSize,
		analyzer:   a,
		dispatcher: d,
		logger:     logger,
		registry:   registry,
		metrics:    NewMetrics(registry),
	}
	s.router = s.routes()

	return s
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), AccessLog(s.logger))

	upload := []gin.HandlerFunc{}
	if s.cfg.RateLimit > 0 {
		limiter := rate.NewLimiter(rate.Limit(s.cfg.RateLimit), max(s.cfg.Burst, 1))
		upload = append(upload, RateLimit(limiter, s.metrics))
	}
	upload = append(upload, s.handleUpload)

	router.POST("/crash_upload", upload...)
	router.GET("/healthz", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	return router
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("crash upload server listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = config.DefaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down crash upload server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	<-errCh

	return nil
}
