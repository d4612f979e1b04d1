package domain

import (
	"github.com/getachewzemene/minalesh-amplify-sub001/internal/errors"
)

// Inventory-specific error definitions.
var (
	// ErrReservationNotFound indicates the reservation does not exist.
	ErrReservationNotFound = errors.Wrap(errors.ErrNotFound, "reservation not found")

	// ErrProductNotFound indicates the product does not exist.
	ErrProductNotFound = errors.Wrap(errors.ErrNotFound, "product not found")

	// ErrInsufficientStock indicates the product cannot cover the requested hold.
	ErrInsufficientStock = errors.Wrap(errors.ErrConflict, "insufficient stock")

	// ErrInvalidQuantity indicates a non-positive reservation quantity.
	ErrInvalidQuantity = errors.Wrap(errors.ErrInvalidInput, "quantity must be positive")
)
