// Package service delivers buyer and vendor notifications about payment outcomes.
package service

import (
	"context"

	"github.com/google/uuid"
)

// Message describes a payment outcome to notify about.
type Message struct {
	OrderID     uuid.UUID
	OrderNumber string
	Provider    string
	EventKey    string
}

// Notifier sends payment notifications. Implementations must tolerate the same
// message being delivered more than once.
type Notifier interface {
	PaymentSettled(ctx context.Context, msg Message) error
	PaymentFailed(ctx context.Context, msg Message) error
}
