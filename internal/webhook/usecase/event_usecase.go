package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/getachewzemene/minalesh-amplify-sub001/internal/errors"
	webhookDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/domain"
)

// eventUseCase implements EventUseCase.
type eventUseCase struct {
	repo EventRepository
	now  func() time.Time
}

// NewEventUseCase creates a new EventUseCase.
func NewEventUseCase(repo EventRepository) EventUseCase {
	return &eventUseCase{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (e *eventUseCase) List(
	ctx context.Context,
	filter webhookDomain.ListFilter,
	offset, limit int,
) ([]*webhookDomain.Event, error) {
	return e.repo.List(ctx, filter, offset, limit)
}

func (e *eventUseCase) Get(ctx context.Context, id uuid.UUID) (*webhookDomain.Event, error) {
	return e.repo.GetByID(ctx, id)
}

func (e *eventUseCase) ListStuck(
	ctx context.Context,
	olderThan time.Duration,
	limit int,
) ([]*webhookDomain.Event, error) {
	if olderThan <= 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "older-than must be positive")
	}
	return e.repo.ListStuck(ctx, e.now().Add(-olderThan), limit)
}

func (e *eventUseCase) Archive(ctx context.Context, olderThanDays int, dryRun bool) (int64, error) {
	if olderThanDays < 1 {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "days must be at least 1")
	}

	cutoff := e.now().AddDate(0, 0, -olderThanDays)
	if dryRun {
		return e.repo.CountArchivable(ctx, cutoff)
	}
	return e.repo.Archive(ctx, cutoff)
}
