package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/getachewzemene/minalesh-amplify-sub001/internal/database"
	inventoryDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/inventory/domain"
)

type reservationUseCase struct {
	txManager database.TxManager
	repo      ReservationRepository
}

// NewReservationUseCase creates a reservation use case.
func NewReservationUseCase(txManager database.TxManager, repo ReservationRepository) ReservationUseCase {
	return &reservationUseCase{
		txManager: txManager,
		repo:      repo,
	}
}

func (r *reservationUseCase) Reserve(
	ctx context.Context,
	orderID, productID uuid.UUID,
	quantity int,
) (*inventoryDomain.Reservation, error) {
	if quantity <= 0 {
		return nil, inventoryDomain.ErrInvalidQuantity
	}

	now := time.Now().UTC()
	reservation := &inventoryDomain.Reservation{
		ID:        uuid.Must(uuid.NewV7()),
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  quantity,
		Status:    inventoryDomain.ReservationStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := r.txManager.WithTx(ctx, func(ctx context.Context) error {
		held, err := r.repo.HoldStock(ctx, productID, quantity)
		if err != nil {
			return err
		}
		if !held {
			return inventoryDomain.ErrInsufficientStock
		}
		return r.repo.Create(ctx, reservation)
	})
	if err != nil {
		return nil, err
	}
	return reservation, nil
}

func (r *reservationUseCase) FindActiveReservations(
	ctx context.Context,
	orderID uuid.UUID,
) ([]*inventoryDomain.Reservation, error) {
	return r.repo.ListActiveByOrder(ctx, orderID)
}

func (r *reservationUseCase) Commit(ctx context.Context, reservationID, orderID uuid.UUID) (bool, error) {
	var committed bool

	err := r.txManager.WithTx(ctx, func(ctx context.Context) error {
		reservation, err := r.repo.GetByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if reservation.OrderID != orderID {
			return nil
		}

		switch reservation.Status {
		case inventoryDomain.ReservationStatusCommitted:
			committed = true
			return nil
		case inventoryDomain.ReservationStatusReleased:
			return nil
		}

		ok, err := r.repo.MarkCommitted(ctx, reservationID, orderID)
		if err != nil {
			return err
		}
		if !ok {
			// Lost a race; the current row decides.
			current, err := r.repo.GetByID(ctx, reservationID)
			if err != nil {
				return err
			}
			committed = current.Status == inventoryDomain.ReservationStatusCommitted
			return nil
		}

		if err := r.repo.ApplyCommit(ctx, reservation.ProductID, reservation.Quantity); err != nil {
			return err
		}
		committed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return committed, nil
}

func (r *reservationUseCase) Release(ctx context.Context, reservationID uuid.UUID) (bool, error) {
	var released bool

	err := r.txManager.WithTx(ctx, func(ctx context.Context) error {
		reservation, err := r.repo.GetByID(ctx, reservationID)
		if err != nil {
			return err
		}

		switch reservation.Status {
		case inventoryDomain.ReservationStatusReleased:
			released = true
			return nil
		case inventoryDomain.ReservationStatusCommitted:
			return nil
		}

		ok, err := r.repo.MarkReleased(ctx, reservationID)
		if err != nil {
			return err
		}
		if !ok {
			current, err := r.repo.GetByID(ctx, reservationID)
			if err != nil {
				return err
			}
			released = current.Status == inventoryDomain.ReservationStatusReleased
			return nil
		}

		if err := r.repo.ApplyRelease(ctx, reservation.ProductID, reservation.Quantity); err != nil {
			return err
		}
		released = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return released, nil
}
