package commands

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	webhookDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/domain"
	"github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/usecase/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunStuckEvents(t *testing.T) {
	ctx := context.Background()
	olderThan := 10 * time.Minute
	updated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	eventID := "tx-123"
	orderID := uuid.Must(uuid.NewV7())

	stuck := []*webhookDomain.Event{
		{
			ID:         uuid.Must(uuid.NewV7()),
			Provider:   "telebirr",
			EventID:    &eventID,
			Status:     webhookDomain.EventStatusProcessing,
			OrderID:    &orderID,
			Attempts:   1,
			Deliveries: 2,
			CreatedAt:  updated.Add(-time.Minute),
			UpdatedAt:  updated,
		},
	}

	t.Run("text-output", func(t *testing.T) {
		uc := &mocks.MockEventUseCase{}
		uc.On("ListStuck", ctx, olderThan, 100).Return(stuck, nil).Once()

		var out bytes.Buffer
		err := RunStuckEvents(ctx, uc, discardLogger(), &out, olderThan, 100, "text")

		require.NoError(t, err)
		assert.Contains(t, out.String(), "1 webhook event(s) stuck for more than 10m0s")
		assert.Contains(t, out.String(), "provider=telebirr status=processing attempts=1 deliveries=2")
		assert.Contains(t, out.String(), "event_id=tx-123")
		assert.Contains(t, out.String(), "order_id="+orderID.String())
		uc.AssertExpectations(t)
	})

	t.Run("json-output", func(t *testing.T) {
		uc := &mocks.MockEventUseCase{}
		uc.On("ListStuck", ctx, olderThan, 5).Return(stuck, nil).Once()

		var out bytes.Buffer
		err := RunStuckEvents(ctx, uc, discardLogger(), &out, olderThan, 5, "json")

		require.NoError(t, err)
		assert.Contains(t, out.String(), `"count": 1`)
		assert.Contains(t, out.String(), `"status": "processing"`)
		assert.Contains(t, out.String(), `"updated_at": "2026-03-01T12:00:00Z"`)
		uc.AssertExpectations(t)
	})

	t.Run("nothing-stuck", func(t *testing.T) {
		uc := &mocks.MockEventUseCase{}
		uc.On("ListStuck", ctx, olderThan, 100).Return([]*webhookDomain.Event{}, nil).Once()

		var out bytes.Buffer
		err := RunStuckEvents(ctx, uc, discardLogger(), &out, olderThan, 100, "text")

		require.NoError(t, err)
		assert.Equal(t, "No webhook events stuck for more than 10m0s\n", out.String())
	})

	t.Run("use-case-error", func(t *testing.T) {
		uc := &mocks.MockEventUseCase{}
		uc.On("ListStuck", ctx, olderThan, 100).Return(nil, assert.AnError).Once()

		err := RunStuckEvents(ctx, uc, discardLogger(), &bytes.Buffer{}, olderThan, 100, "text")

		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("invalid-arguments", func(t *testing.T) {
		uc := &mocks.MockEventUseCase{}

		err := RunStuckEvents(ctx, uc, discardLogger(), &bytes.Buffer{}, olderThan, 0, "text")
		assert.ErrorContains(t, err, "limit must be a positive number")

		err = RunStuckEvents(ctx, uc, discardLogger(), &bytes.Buffer{}, olderThan, 10, "yaml")
		assert.ErrorContains(t, err, "invalid format")

		uc.AssertNotCalled(t, "ListStuck")
	})
}
