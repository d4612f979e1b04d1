// Package mocks provides mock implementations of the webhook use cases for testing.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	webhookDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/domain"
	webhookUsecase "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/usecase"
)

// MockSettlementUseCase is a mock implementation of SettlementUseCase.
type MockSettlementUseCase struct {
	mock.Mock
}

// Settle mocks the Settle method of SettlementUseCase.
func (m *MockSettlementUseCase) Settle(
	ctx context.Context,
	input webhookUsecase.SettleInput,
) (*webhookUsecase.SettleResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*webhookUsecase.SettleResult), args.Error(1)
}

// MockEventUseCase is a mock implementation of EventUseCase.
type MockEventUseCase struct {
	mock.Mock
}

// List mocks the List method of EventUseCase.
func (m *MockEventUseCase) List(
	ctx context.Context,
	filter webhookDomain.ListFilter,
	offset, limit int,
) ([]*webhookDomain.Event, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*webhookDomain.Event), args.Error(1)
}

// Get mocks the Get method of EventUseCase.
func (m *MockEventUseCase) Get(ctx context.Context, id uuid.UUID) (*webhookDomain.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*webhookDomain.Event), args.Error(1)
}

// ListStuck mocks the ListStuck method of EventUseCase.
func (m *MockEventUseCase) ListStuck(
	ctx context.Context,
	olderThan time.Duration,
	limit int,
) ([]*webhookDomain.Event, error) {
	args := m.Called(ctx, olderThan, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*webhookDomain.Event), args.Error(1)
}

// Archive mocks the Archive method of EventUseCase.
func (m *MockEventUseCase) Archive(ctx context.Context, olderThanDays int, dryRun bool) (int64, error) {
	args := m.Called(ctx, olderThanDays, dryRun)
	return args.Get(0).(int64), args.Error(1)
}
