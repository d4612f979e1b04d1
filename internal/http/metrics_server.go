package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/getachewzemene/minalesh-amplify-sub001/internal/metrics"
)

const metricsPath = "/metrics"

// MetricsServer exposes the settlement, ledger and outbox instruments for Prometheus on
// a port separate from the public webhook listener.
type MetricsServer struct {
	server *http.Server
	logger *slog.Logger
}

// NewMetricsServer creates a MetricsServer. A nil provider leaves only /health mounted.
func NewMetricsServer(
	host string,
	port int,
	logger *slog.Logger,
	metricsProvider *metrics.Provider,
) *MetricsServer {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(scrapeLoggerMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	if metricsProvider != nil {
		router.GET(metricsPath, gin.WrapH(metricsProvider.Handler()))
	}

	return &MetricsServer{
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger: logger,
	}
}

// scrapeLoggerMiddleware logs successful scrapes at debug level and everything else
// through the access log.
func scrapeLoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	access := CustomLoggerMiddleware(logger)

	return func(c *gin.Context) {
		if c.Request.URL.Path != metricsPath {
			access(c)
			return
		}

		start := time.Now()
		c.Next()

		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			logger.Warn("metrics scrape failed",
				slog.Int("status", status),
				slog.String("client_ip", c.ClientIP()),
			)
			return
		}
		logger.Debug("metrics scraped",
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			slog.Int("body_size", c.Writer.Size()),
		)
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *MetricsServer) GetHandler() http.Handler {
	return s.server.Handler
}

// Start serves until Shutdown is called.
func (s *MetricsServer) Start(ctx context.Context) error {
	s.logger.Info("starting metrics server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the metrics server.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down metrics server")
	return s.server.Shutdown(ctx)
}
