package domain

import (
	"github.com/getachewzemene/minalesh-amplify-sub001/internal/errors"
)

// Order-specific error definitions.
var (
	// ErrOrderNotFound indicates no order matched the payment reference, order number or id.
	ErrOrderNotFound = errors.Wrap(errors.ErrNotFound, "order not found")

	// ErrOrderAlreadyCompleted indicates the order payment is already completed.
	ErrOrderAlreadyCompleted = errors.Wrap(errors.ErrConflict, "order payment already completed")

	// ErrInvalidPaymentTransition indicates a payment status change the state machine does not allow.
	ErrInvalidPaymentTransition = errors.Wrap(errors.ErrInvalidInput, "invalid payment transition")

	// ErrAmountMismatch indicates the declared payment amount differs from the order total.
	ErrAmountMismatch = errors.Wrap(errors.ErrPreconditionFailed, "amount mismatch")
)
