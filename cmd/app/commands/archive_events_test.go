package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/usecase/mocks"
)

func TestRunArchiveEvents(t *testing.T) {
	ctx := context.Background()
	days := 30

	t.Run("text-output", func(t *testing.T) {
		uc := &mocks.MockEventUseCase{}
		uc.On("Archive", ctx, days, false).Return(int64(100), nil)

		var out bytes.Buffer
		err := RunArchiveEvents(ctx, uc, discardLogger(), &out, days, false, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Successfully archived 100 webhook event(s) older than 30 day(s)")
		uc.AssertExpectations(t)
	})

	t.Run("dry-run-text-output", func(t *testing.T) {
		uc := &mocks.MockEventUseCase{}
		uc.On("Archive", ctx, days, true).Return(int64(7), nil)

		var out bytes.Buffer
		err := RunArchiveEvents(ctx, uc, discardLogger(), &out, days, true, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Dry-run mode: Would archive 7 webhook event(s)")
		uc.AssertExpectations(t)
	})

	t.Run("json-output", func(t *testing.T) {
		uc := &mocks.MockEventUseCase{}
		uc.On("Archive", ctx, days, true).Return(int64(50), nil)

		var out bytes.Buffer
		err := RunArchiveEvents(ctx, uc, discardLogger(), &out, days, true, "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"count": 50`)
		require.Contains(t, out.String(), `"dry_run": true`)
		uc.AssertExpectations(t)
	})

	t.Run("invalid-days", func(t *testing.T) {
		uc := &mocks.MockEventUseCase{}
		err := RunArchiveEvents(ctx, uc, discardLogger(), &bytes.Buffer{}, 0, false, "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "days must be a positive number")
	})

	t.Run("use-case-error", func(t *testing.T) {
		uc := &mocks.MockEventUseCase{}
		uc.On("Archive", ctx, days, false).Return(int64(0), assert.AnError)

		err := RunArchiveEvents(ctx, uc, discardLogger(), &bytes.Buffer{}, days, false, "text")

		require.ErrorIs(t, err, assert.AnError)
	})
}
