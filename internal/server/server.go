package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/confroute/confroute/internal/config"
	"github.com/confroute/confroute/internal/observability"
	"github.com/confroute/confroute/internal/router"
)

// Server serves the router over HTTP.
type Server struct {
	cfg        *config.ServerConfig
	engine     *gin.Engine
	dispatcher *router.Dispatcher
	logger     observability.Logger
	httpServer *http.Server
}

// New builds the HTTP server around a dispatcher. All metric
// collectors are registered with the given registry, which backs the
// /metrics endpoint.
func New(cfg *config.ServerConfig, dispatcher *router.Dispatcher, registry *prometheus.Registry, logger observability.Logger) *Server {
	if logger == nil {
		logger = observability.NopLogger()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	httpMetrics := observability.NewHTTPMetrics("confroute")
	httpMetrics.MustRegister(registry)

	engine.Use(
		RequestID(),
		AccessLog(logger),
		Metrics(httpMetrics),
		RateLimit(cfg.RateLimit),
		Recovery(logger),
	)

	s := &Server{
		cfg:        cfg,
		engine:     engine,
		dispatcher: dispatcher,
		logger:     logger,
	}

	engine.GET("/healthz", s.handleHealth)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	v1 := engine.Group("/v1")
	v1.GET("/paths", s.handlePaths)
	v1.GET("/config/*path", s.handleRead)
	v1.PUT("/config/*path", s.handleWrite)

	return s
}

// Handler exposes the underlying HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start listens and serves until Shutdown is called. The returned
// error is nil on a clean shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Address, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout.Duration(),
		WriteTimeout: s.cfg.WriteTimeout.Duration(),
		IdleTimeout:  s.cfg.IdleTimeout.Duration(),
	}

	s.logger.Info("http server starting",
		observability.String("addr", addr))

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handlePaths(c *gin.Context) {
	paths := s.dispatcher.ListPaths()
	if paths == nil {
		paths = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"paths": paths})
}

// handleRead resolves a config path. The wildcard route parameter
// keeps its leading slash, and the raw query string is reattached so
// the matcher sees the full input path.
func (s *Server) handleRead(c *gin.Context) {
	path := c.Param("path")
	if raw := c.Request.URL.RawQuery; raw != "" {
		path += "?" + raw
	}

	value, found, err := s.dispatcher.Read(c.Request.Context(), path)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "no handler for path"})
		return
	}

	// A Callback-coerced result is a deferred producer; resolve it
	// before encoding.
	if fn, ok := value.(func() any); ok {
		value = fn()
	}

	c.JSON(http.StatusOK, gin.H{
		"path":  c.Param("path"),
		"value": value,
	})
}

func (s *Server) handleWrite(c *gin.Context) {
	path := c.Param("path")
	if raw := c.Request.URL.RawQuery; raw != "" {
		path += "?" + raw
	}

	var data map[string]any
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&data); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body: " + err.Error()})
			return
		}
	}

	if err := s.dispatcher.Write(c.Request.Context(), path, data); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
