// Package usecase implements the inventory reservation ledger: holding stock for an order,
// committing holds into sales and releasing them back to stock.
package usecase

import (
	"context"

	"github.com/google/uuid"

	inventoryDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/inventory/domain"
)

// ReservationRepository defines persistence operations for reservations and stock counters.
type ReservationRepository interface {
	Create(ctx context.Context, reservation *inventoryDomain.Reservation) error
	GetByID(ctx context.Context, id uuid.UUID) (*inventoryDomain.Reservation, error)
	ListActiveByOrder(ctx context.Context, orderID uuid.UUID) ([]*inventoryDomain.Reservation, error)
	MarkCommitted(ctx context.Context, id, orderID uuid.UUID) (bool, error)
	MarkReleased(ctx context.Context, id uuid.UUID) (bool, error)
	HoldStock(ctx context.Context, productID uuid.UUID, quantity int) (bool, error)
	ApplyCommit(ctx context.Context, productID uuid.UUID, quantity int) error
	ApplyRelease(ctx context.Context, productID uuid.UUID, quantity int) error
}

// ReservationUseCase is the narrow, idempotent interface through which reservations change.
type ReservationUseCase interface {
	// Reserve holds quantity units of a product against an order.
	Reserve(ctx context.Context, orderID, productID uuid.UUID, quantity int) (*inventoryDomain.Reservation, error)

	// FindActiveReservations returns the holds of an order that are still active.
	FindActiveReservations(ctx context.Context, orderID uuid.UUID) ([]*inventoryDomain.Reservation, error)

	// Commit converts an active hold of orderID into a sale. Committing an already committed
	// reservation of the same order returns true. Returns false when the reservation was
	// released or belongs to another order.
	Commit(ctx context.Context, reservationID, orderID uuid.UUID) (bool, error)

	// Release returns an active hold to stock. Releasing a released reservation returns true;
	// a committed reservation is never released and returns false.
	Release(ctx context.Context, reservationID uuid.UUID) (bool, error)
}
