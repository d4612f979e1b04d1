// Package domain defines inventory reservations: per-order stock holds that are either
// committed into a sale or released back to stock.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReservationStatus is the lifecycle state of a stock hold.
type ReservationStatus string

const (
	ReservationStatusActive    ReservationStatus = "active"
	ReservationStatusCommitted ReservationStatus = "committed"
	ReservationStatusReleased  ReservationStatus = "released"
)

// CanTransitionTo reports whether a reservation in status s may move to next.
// Only active reservations transition, and only to committed or released.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	if s != ReservationStatusActive {
		return false
	}
	return next == ReservationStatusCommitted || next == ReservationStatusReleased
}

// Reservation holds Quantity units of a product against an order.
type Reservation struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	Status    ReservationStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive reports whether the reservation still holds stock.
func (r *Reservation) IsActive() bool {
	return r.Status == ReservationStatusActive
}
