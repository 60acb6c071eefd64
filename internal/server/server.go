package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"presaleScope/internal/cache"
	"presaleScope/internal/etherscan"
	"presaleScope/internal/pipeline"
)

// errMissingAPIKey is the exact error string the legacy consumers match on.
const errMissingAPIKey = "Missing ETHERSCAN_API_KEY"

// Server exposes the presale analytics over HTTP.
type Server struct {
	pipeline  *pipeline.Pipeline
	cache     *cache.PayloadCache
	hasAPIKey bool
	logger    *zap.Logger
	engine    *gin.Engine
}

// New wires the gin engine and routes.
func New(p *pipeline.Pipeline, c *cache.PayloadCache, hasAPIKey bool, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{
		pipeline:  p,
		cache:     c,
		hasAPIKey: hasAPIKey,
		logger:    logger,
		engine:    engine,
	}

	engine.GET("/health", s.handleHealth)
	engine.GET("/api/presale", s.handlePresale)

	return s
}

// Handler exposes the underlying HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handlePresale serves the cached payload when fresh, otherwise runs the
// full pipeline. Concurrent misses may both recompute; the cache is
// last-write-wins and the result is idempotent.
func (s *Server) handlePresale(c *gin.Context) {
	if payload, ok := s.cache.Get(); ok {
		c.JSON(http.StatusOK, payload)
		return
	}

	if !s.hasAPIKey {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errMissingAPIKey})
		return
	}

	payload, err := s.pipeline.Build(c.Request.Context())
	if err != nil {
		var upstream *etherscan.UpstreamError
		if errors.As(err, &upstream) {
			s.logger.Error("upstream error", zap.Error(upstream))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Etherscan error",
				"details": upstream.Body,
			})
			return
		}
		s.logger.Error("pipeline failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Unhandled error",
			"message": err.Error(),
		})
		return
	}

	s.cache.Set(payload)
	c.JSON(http.StatusOK, payload)
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}
