package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	commissionDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/commission/domain"
	apperrors "github.com/getachewzemene/minalesh-amplify-sub001/internal/errors"
	orderDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/order/domain"
)

type mockCommissionRepository struct {
	mock.Mock
}

func (m *mockCommissionRepository) Create(ctx context.Context, entry *commissionDomain.Entry) (bool, error) {
	args := m.Called(ctx, entry)
	return args.Bool(0), args.Error(1)
}

func (m *mockCommissionRepository) ListByOrder(
	ctx context.Context,
	orderID uuid.UUID,
) ([]*commissionDomain.Entry, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*commissionDomain.Entry), args.Error(1)
}

type mockOrderReader struct {
	mock.Mock
}

func (m *mockOrderReader) GetByID(ctx context.Context, id uuid.UUID) (*orderDomain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderDomain.Order), args.Error(1)
}

func (m *mockOrderReader) ListItems(ctx context.Context, orderID uuid.UUID) ([]*orderDomain.OrderItem, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*orderDomain.OrderItem), args.Error(1)
}

func settledOrder() *orderDomain.Order {
	return &orderDomain.Order{
		ID:            uuid.Must(uuid.NewV7()),
		OrderNumber:   "ORD-2001",
		PaymentStatus: orderDomain.PaymentStatusCompleted,
		Status:        orderDomain.OrderStatusPaid,
		TotalAmount:   decimal.RequireFromString("80.00"),
	}
}

func itemsFor(orderID uuid.UUID, vendors ...uuid.UUID) []*orderDomain.OrderItem {
	items := make([]*orderDomain.OrderItem, 0, len(vendors))
	for _, vendorID := range vendors {
		items = append(items, &orderDomain.OrderItem{
			ID:        uuid.Must(uuid.NewV7()),
			OrderID:   orderID,
			ProductID: uuid.Must(uuid.NewV7()),
			VendorID:  vendorID,
			Quantity:  2,
			UnitPrice: decimal.RequireFromString("20.00"),
		})
	}
	return items
}

func TestNewCommissionUseCase_InvalidRate(t *testing.T) {
	_, err := NewCommissionUseCase(&mockCommissionRepository{}, &mockOrderReader{}, decimal.RequireFromString("1.5"))

	assert.ErrorIs(t, err, commissionDomain.ErrInvalidRate)
}

func TestCommissionUseCase_PostForOrder(t *testing.T) {
	ctx := context.Background()
	rate := decimal.RequireFromString("0.10")

	t.Run("Success", func(t *testing.T) {
		order := settledOrder()
		vendorA, vendorB := uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7())
		orderRepo := &mockOrderReader{}
		commissionRepo := &mockCommissionRepository{}

		orderRepo.On("GetByID", ctx, order.ID).Return(order, nil)
		orderRepo.On("ListItems", ctx, order.ID).Return(itemsFor(order.ID, vendorA, vendorB), nil)
		commissionRepo.On("Create", ctx, mock.MatchedBy(func(e *commissionDomain.Entry) bool {
			return e.OrderID == order.ID &&
				e.GrossAmount.Equal(decimal.RequireFromString("40")) &&
				e.CommissionAmount.Equal(decimal.RequireFromString("4")) &&
				e.VendorPayout.Equal(decimal.RequireFromString("36"))
		})).Return(true, nil).Twice()

		uc, err := NewCommissionUseCase(commissionRepo, orderRepo, rate)
		require.NoError(t, err)

		created, err := uc.PostForOrder(ctx, order.ID)

		require.NoError(t, err)
		assert.Equal(t, 2, created)
		commissionRepo.AssertExpectations(t)
	})

	t.Run("RepeatedPostingCreatesNothing", func(t *testing.T) {
		order := settledOrder()
		orderRepo := &mockOrderReader{}
		commissionRepo := &mockCommissionRepository{}

		orderRepo.On("GetByID", ctx, order.ID).Return(order, nil)
		orderRepo.On("ListItems", ctx, order.ID).Return(itemsFor(order.ID, uuid.Must(uuid.NewV7())), nil)
		commissionRepo.On("Create", ctx, mock.Anything).Return(false, nil).Once()

		uc, err := NewCommissionUseCase(commissionRepo, orderRepo, rate)
		require.NoError(t, err)

		created, err := uc.PostForOrder(ctx, order.ID)

		require.NoError(t, err)
		assert.Zero(t, created)
	})

	t.Run("OrderNotCompleted", func(t *testing.T) {
		order := settledOrder()
		order.PaymentStatus = orderDomain.PaymentStatusPending
		orderRepo := &mockOrderReader{}
		commissionRepo := &mockCommissionRepository{}

		orderRepo.On("GetByID", ctx, order.ID).Return(order, nil)

		uc, err := NewCommissionUseCase(commissionRepo, orderRepo, rate)
		require.NoError(t, err)

		_, err = uc.PostForOrder(ctx, order.ID)

		assert.ErrorIs(t, err, commissionDomain.ErrOrderNotSettled)
		assert.True(t, apperrors.Is(err, apperrors.ErrPreconditionFailed))
		orderRepo.AssertNotCalled(t, "ListItems", mock.Anything, mock.Anything)
	})

	t.Run("OrderNotFound", func(t *testing.T) {
		id := uuid.Must(uuid.NewV7())
		orderRepo := &mockOrderReader{}

		orderRepo.On("GetByID", ctx, id).Return(nil, orderDomain.ErrOrderNotFound)

		uc, err := NewCommissionUseCase(&mockCommissionRepository{}, orderRepo, rate)
		require.NoError(t, err)

		_, err = uc.PostForOrder(ctx, id)

		assert.ErrorIs(t, err, orderDomain.ErrOrderNotFound)
	})

	t.Run("CreateError", func(t *testing.T) {
		order := settledOrder()
		orderRepo := &mockOrderReader{}
		commissionRepo := &mockCommissionRepository{}
		dbErr := errors.New("connection reset")

		orderRepo.On("GetByID", ctx, order.ID).Return(order, nil)
		orderRepo.On("ListItems", ctx, order.ID).Return(itemsFor(order.ID, uuid.Must(uuid.NewV7())), nil)
		commissionRepo.On("Create", ctx, mock.Anything).Return(false, dbErr)

		uc, err := NewCommissionUseCase(commissionRepo, orderRepo, rate)
		require.NoError(t, err)

		created, err := uc.PostForOrder(ctx, order.ID)

		assert.ErrorIs(t, err, dbErr)
		assert.Zero(t, created)
	})
}
