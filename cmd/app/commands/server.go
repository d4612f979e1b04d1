package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/getachewzemene/minalesh-amplify-sub001/internal/app"
	"github.com/getachewzemene/minalesh-amplify-sub001/internal/config"
)

const shutdownTimeout = 15 * time.Second

// component is something the server command runs until shutdown.
type component interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// RunServer starts the API server, the metrics server when METRICS_ENABLED and the
// outbox worker when OUTBOX_WORKER_ENABLED. It blocks until SIGINT/SIGTERM or until one
// of them fails, then shuts the others down.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()
	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)
	logger := container.Logger()
	logger.Info("starting server", slog.String("version", version))
	defer closeContainer(container, logger)

	server, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}
	components := []component{server}

	if cfg.MetricsEnabled {
		metricsServer, err := container.MetricsServer()
		if err != nil {
			return fmt.Errorf("failed to initialize metrics server: %w", err)
		}
		components = append(components, metricsServer)
	}

	var worker interface{ Start(ctx context.Context) error }
	if cfg.OutboxWorkerEnabled {
		worker, err = container.OutboxUseCase()
		if err != nil {
			return fmt.Errorf("failed to initialize outbox worker: %w", err)
		}
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return serve(ctx, logger, components, worker)
}

// serve runs components and the optional worker under one errgroup. The first failure,
// or ctx ending, shuts every component down.
func serve(
	ctx context.Context,
	logger *slog.Logger,
	components []component,
	worker interface{ Start(ctx context.Context) error },
) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, c := range components {
		g.Go(func() error {
			return c.Start(gctx)
		})
	}

	if worker != nil {
		g.Go(func() error {
			if err := worker.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("outbox worker: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		var shutdownErrors []error
		for _, c := range components {
			if err := c.Shutdown(shutdownCtx); err != nil {
				shutdownErrors = append(shutdownErrors, err)
			}
		}
		return errors.Join(shutdownErrors...)
	})

	return g.Wait()
}
