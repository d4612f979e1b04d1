package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/getachewzemene/minalesh-amplify-sub001/internal/errors"
	"github.com/getachewzemene/minalesh-amplify-sub001/internal/metrics"
	webhookDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/domain"
)

// settlementUseCaseWithMetrics decorates SettlementUseCase with metrics instrumentation.
type settlementUseCaseWithMetrics struct {
	next    SettlementUseCase
	metrics metrics.BusinessMetrics
}

// NewSettlementUseCaseWithMetrics wraps a SettlementUseCase with metrics recording.
// The status label is the settlement outcome, or the error class on failure.
func NewSettlementUseCaseWithMetrics(useCase SettlementUseCase, m metrics.BusinessMetrics) SettlementUseCase {
	return &settlementUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Settle records metrics for webhook settlement.
func (s *settlementUseCaseWithMetrics) Settle(ctx context.Context, input SettleInput) (*SettleResult, error) {
	start := time.Now()
	result, err := s.next.Settle(ctx, input)

	status := errorClass(err)
	if err == nil {
		status = string(result.Outcome)
		if result.Downgraded {
			s.metrics.RecordOperation(ctx, "webhook", "plain_secret_auth", "success")
		}
	}

	s.metrics.RecordOperation(ctx, "webhook", "settle", status)
	s.metrics.RecordDuration(ctx, "webhook", "settle", time.Since(start), status)

	return result, err
}

// errorClass maps an error to a bounded metric label.
func errorClass(err error) string {
	switch {
	case err == nil:
		return "success"
	case apperrors.Is(err, apperrors.ErrUnauthorized):
		return "unauthorized"
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		return "invalid_input"
	case apperrors.Is(err, apperrors.ErrNotFound):
		return "not_found"
	case apperrors.Is(err, apperrors.ErrPreconditionFailed):
		return "amount_mismatch"
	case apperrors.Is(err, apperrors.ErrMisconfigured):
		return "misconfigured"
	default:
		return "error"
	}
}

// eventUseCaseWithMetrics decorates EventUseCase with metrics instrumentation.
type eventUseCaseWithMetrics struct {
	next    EventUseCase
	metrics metrics.BusinessMetrics
}

// NewEventUseCaseWithMetrics wraps an EventUseCase with metrics recording.
func NewEventUseCaseWithMetrics(useCase EventUseCase, m metrics.BusinessMetrics) EventUseCase {
	return &eventUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (e *eventUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	e.metrics.RecordOperation(ctx, "webhook", operation, status)
	e.metrics.RecordDuration(ctx, "webhook", operation, time.Since(start), status)
}

// List records metrics for ledger listing.
func (e *eventUseCaseWithMetrics) List(
	ctx context.Context,
	filter webhookDomain.ListFilter,
	offset, limit int,
) ([]*webhookDomain.Event, error) {
	start := time.Now()
	events, err := e.next.List(ctx, filter, offset, limit)
	e.record(ctx, "event_list", start, err)
	return events, err
}

// Get records metrics for ledger row retrieval.
func (e *eventUseCaseWithMetrics) Get(ctx context.Context, id uuid.UUID) (*webhookDomain.Event, error) {
	start := time.Now()
	event, err := e.next.Get(ctx, id)
	e.record(ctx, "event_get", start, err)
	return event, err
}

// ListStuck records metrics for stuck event listing.
func (e *eventUseCaseWithMetrics) ListStuck(
	ctx context.Context,
	olderThan time.Duration,
	limit int,
) ([]*webhookDomain.Event, error) {
	start := time.Now()
	events, err := e.next.ListStuck(ctx, olderThan, limit)
	e.record(ctx, "event_list_stuck", start, err)
	return events, err
}

// Archive records metrics for ledger archival.
func (e *eventUseCaseWithMetrics) Archive(ctx context.Context, olderThanDays int, dryRun bool) (int64, error) {
	start := time.Now()
	count, err := e.next.Archive(ctx, olderThanDays, dryRun)
	e.record(ctx, "event_archive", start, err)
	return count, err
}
