// Package usecase runs the outbox worker and the processors for settlement side effects.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/getachewzemene/minalesh-amplify-sub001/internal/database"
	outboxDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/outbox/domain"
)

// Config holds outbox worker configuration.
type Config struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// OutboxEventRepository defines outbox event repository operations.
type OutboxEventRepository interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]*outboxDomain.OutboxEvent, error)
	Update(ctx context.Context, event *outboxDomain.OutboxEvent) error
}

// EventProcessor handles a single outbox event. It runs inside the batch transaction.
type EventProcessor interface {
	Process(ctx context.Context, event *outboxDomain.OutboxEvent) error
}

// UseCase defines the outbox worker operations.
type UseCase interface {
	Start(ctx context.Context) error
	ProcessEvents(ctx context.Context) error
}

// OutboxUseCase polls pending outbox events and hands them to an EventProcessor.
type OutboxUseCase struct {
	config         Config
	txManager      database.TxManager
	outboxRepo     OutboxEventRepository
	eventProcessor EventProcessor
	logger         *slog.Logger
}

// NewOutboxUseCase creates a new OutboxUseCase.
func NewOutboxUseCase(
	config Config,
	txManager database.TxManager,
	outboxRepo OutboxEventRepository,
	eventProcessor EventProcessor,
	logger *slog.Logger,
) *OutboxUseCase {
	return &OutboxUseCase{
		config:         config,
		txManager:      txManager,
		outboxRepo:     outboxRepo,
		eventProcessor: eventProcessor,
		logger:         logger,
	}
}

// Start processes outbox events every Interval until ctx is cancelled.
func (uc *OutboxUseCase) Start(ctx context.Context) error {
	if uc.logger != nil {
		uc.logger.Info("starting outbox worker",
			slog.Duration("interval", uc.config.Interval),
			slog.Int("batch_size", uc.config.BatchSize),
			slog.Int("max_retries", uc.config.MaxRetries),
		)
	}

	ticker := time.NewTicker(uc.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if uc.logger != nil {
				uc.logger.Info("stopping outbox worker")
			}
			return ctx.Err()
		case <-ticker.C:
			if err := uc.ProcessEvents(ctx); err != nil && uc.logger != nil {
				uc.logger.Error("failed to process outbox events", slog.Any("error", err))
			}
		}
	}
}

// ProcessEvents claims one batch of pending events and processes it in a single transaction.
// A failing event has its retry count bumped and is marked failed after MaxRetries attempts;
// it does not stop the rest of the batch.
func (uc *OutboxUseCase) ProcessEvents(ctx context.Context) error {
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		events, err := uc.outboxRepo.GetPendingEvents(ctx, uc.config.BatchSize)
		if err != nil {
			return err
		}

		if len(events) == 0 {
			return nil
		}

		if uc.logger != nil {
			uc.logger.Debug("processing outbox events", slog.Int("count", len(events)))
		}

		for _, event := range events {
			if err := uc.eventProcessor.Process(ctx, event); err != nil {
				event.RecordFailure(err, uc.config.MaxRetries)
				if uc.logger != nil {
					uc.logger.Error("failed to process outbox event",
						slog.String("event_id", event.ID.String()),
						slog.String("event_type", event.EventType),
						slog.Int("retries", event.Retries),
						slog.String("status", string(event.Status)),
						slog.Any("error", err),
					)
				}
			} else {
				event.MarkProcessed(time.Now().UTC())
			}

			if err := uc.outboxRepo.Update(ctx, event); err != nil {
				return err
			}
		}

		return nil
	})
}
