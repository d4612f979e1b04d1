package commands

import (
	"context"
	"errors"
	"log/slog"

	outboxUsecase "github.com/getachewzemene/minalesh-amplify-sub001/internal/outbox/usecase"
)

// RunWorker processes outbox events until ctx is cancelled. Cancellation is a clean stop.
func RunWorker(ctx context.Context, worker outboxUsecase.UseCase, logger *slog.Logger) error {
	logger.Info("starting outbox worker")

	if err := worker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("outbox worker stopped")
	return nil
}
