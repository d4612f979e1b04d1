// Package domain defines the order aggregate and its payment-facing state machine.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the payment-facing status of an order.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Supersedes reports whether a provider report of s replaces an earlier report of previous
// for the same payment. Payments move pending -> failed -> completed and never back.
func (s PaymentStatus) Supersedes(previous PaymentStatus) bool {
	switch previous {
	case PaymentStatusPending:
		return s == PaymentStatusFailed || s == PaymentStatusCompleted
	case PaymentStatusFailed:
		return s == PaymentStatusCompleted
	default:
		return false
	}
}

// Fulfillment statuses mirrored on the order when payment state changes.
const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
)

// Order is the subset of a marketplace order the settlement pipeline reads and mutates.
type Order struct {
	ID               uuid.UUID
	OrderNumber      string
	PaymentReference *string
	PaymentStatus    PaymentStatus
	Status           string
	TotalAmount      decimal.Decimal
	Notes            string
	PaidAt           *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsCompleted reports whether the order has reached the absorbing completed state.
func (o *Order) IsCompleted() bool {
	return o.PaymentStatus == PaymentStatusCompleted
}

// AmountWithinTolerance reports whether declared is within tolerance of the order total.
func (o *Order) AmountWithinTolerance(declared, tolerance decimal.Decimal) bool {
	return declared.Sub(o.TotalAmount).Abs().LessThanOrEqual(tolerance)
}

// MarkCompleted moves the order to completed/paid. Completed orders are never mutated again.
func (o *Order) MarkCompleted(now time.Time) error {
	if o.IsCompleted() {
		return ErrOrderAlreadyCompleted
	}
	o.PaymentStatus = PaymentStatusCompleted
	o.Status = OrderStatusPaid
	o.PaidAt = &now
	o.UpdatedAt = now
	return nil
}

// RecordPaymentOutcome applies a non-success provider status. A failed status moves the
// payment to failed; a pending status only annotates the order. Either way the provider
// note is prepended to the existing notes.
func (o *Order) RecordPaymentOutcome(status PaymentStatus, provider string, now time.Time) error {
	if o.IsCompleted() {
		return ErrOrderAlreadyCompleted
	}

	switch status {
	case PaymentStatusFailed:
		o.PaymentStatus = PaymentStatusFailed
	case PaymentStatusPending:
	default:
		return fmt.Errorf("%w: %s", ErrInvalidPaymentTransition, status)
	}

	o.Notes = PaymentNote(status, provider, o.Notes)
	o.UpdatedAt = now
	return nil
}

// PaymentNote builds the note prepended to an order when a provider reports a non-success status.
func PaymentNote(status PaymentStatus, provider, existing string) string {
	note := fmt.Sprintf("Payment %s from %s", status, provider)
	if existing == "" {
		return note
	}
	return note + "\n" + existing
}
