package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	commissionDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/commission/domain"
	notificationService "github.com/getachewzemene/minalesh-amplify-sub001/internal/notification/service"
	orderDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/order/domain"
	outboxDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/outbox/domain"
)

type MockOutboxEventRepository struct {
	mock.Mock
}

func (m *MockOutboxEventRepository) Create(ctx context.Context, event *outboxDomain.OutboxEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockOutboxEventRepository) GetPendingEvents(
	ctx context.Context,
	limit int,
) ([]*outboxDomain.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outboxDomain.OutboxEvent), args.Error(1)
}

func (m *MockOutboxEventRepository) Update(ctx context.Context, event *outboxDomain.OutboxEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockEventProcessor struct {
	mock.Mock
}

func (m *MockEventProcessor) Process(ctx context.Context, event *outboxDomain.OutboxEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockOrderLookup struct {
	mock.Mock
}

func (m *MockOrderLookup) GetByID(ctx context.Context, id uuid.UUID) (*orderDomain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderDomain.Order), args.Error(1)
}

type MockCommissionUseCase struct {
	mock.Mock
}

func (m *MockCommissionUseCase) PostForOrder(ctx context.Context, orderID uuid.UUID) (int, error) {
	args := m.Called(ctx, orderID)
	return args.Int(0), args.Error(1)
}

func (m *MockCommissionUseCase) ListByOrder(
	ctx context.Context,
	orderID uuid.UUID,
) ([]*commissionDomain.Entry, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*commissionDomain.Entry), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) PaymentSettled(ctx context.Context, msg notificationService.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockNotifier) PaymentFailed(ctx context.Context, msg notificationService.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
