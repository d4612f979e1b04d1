package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order event types appended by the settlement pipeline.
const (
	OrderEventPaymentCompleted = "payment_completed"
	OrderEventPaymentFailed    = "payment_failed"
	OrderEventPaymentPending   = "payment_pending"
)

// OrderEvent is an append-only entry in an order's history.
type OrderEvent struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	EventType   string
	Status      string
	Description string
	Metadata    map[string]any
	CreatedAt   time.Time
}

// NewOrderEvent creates an order event with a fresh UUIDv7 identifier.
func NewOrderEvent(orderID uuid.UUID, eventType, status, description string, metadata map[string]any) *OrderEvent {
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &OrderEvent{
		ID:          uuid.Must(uuid.NewV7()),
		OrderID:     orderID,
		EventType:   eventType,
		Status:      status,
		Description: description,
		Metadata:    metadata,
		CreatedAt:   time.Now().UTC(),
	}
}
