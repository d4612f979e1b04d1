// Package mocks provides mock implementations of the inventory use cases for testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	inventoryDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/inventory/domain"
)

// MockReservationUseCase is a mock implementation of ReservationUseCase.
type MockReservationUseCase struct {
	mock.Mock
}

// Reserve mocks the Reserve method of ReservationUseCase.
func (m *MockReservationUseCase) Reserve(
	ctx context.Context,
	orderID, productID uuid.UUID,
	quantity int,
) (*inventoryDomain.Reservation, error) {
	args := m.Called(ctx, orderID, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventoryDomain.Reservation), args.Error(1)
}

// FindActiveReservations mocks the FindActiveReservations method of ReservationUseCase.
func (m *MockReservationUseCase) FindActiveReservations(
	ctx context.Context,
	orderID uuid.UUID,
) ([]*inventoryDomain.Reservation, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*inventoryDomain.Reservation), args.Error(1)
}

// Commit mocks the Commit method of ReservationUseCase.
func (m *MockReservationUseCase) Commit(ctx context.Context, reservationID, orderID uuid.UUID) (bool, error) {
	args := m.Called(ctx, reservationID, orderID)
	return args.Bool(0), args.Error(1)
}

// Release mocks the Release method of ReservationUseCase.
func (m *MockReservationUseCase) Release(ctx context.Context, reservationID uuid.UUID) (bool, error) {
	args := m.Called(ctx, reservationID)
	return args.Bool(0), args.Error(1)
}
