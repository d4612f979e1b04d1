package usecase

import (
	"context"

	"github.com/google/uuid"

	outboxDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/outbox/domain"
)

// Dispatcher records settlement side effects as outbox events for the worker to run.
type Dispatcher struct {
	outboxRepo OutboxEventRepository
}

// NewDispatcher creates a Dispatcher writing to outboxRepo.
func NewDispatcher(outboxRepo OutboxEventRepository) *Dispatcher {
	return &Dispatcher{outboxRepo: outboxRepo}
}

// NotifySettled enqueues an order.settled event.
func (d *Dispatcher) NotifySettled(ctx context.Context, orderID uuid.UUID, provider, eventKey string) error {
	return d.enqueue(ctx, outboxDomain.EventTypeOrderSettled, orderID, provider, eventKey)
}

// NotifyPaymentFailed enqueues an order.payment_failed event.
func (d *Dispatcher) NotifyPaymentFailed(ctx context.Context, orderID uuid.UUID, provider, eventKey string) error {
	return d.enqueue(ctx, outboxDomain.EventTypeOrderPaymentFailed, orderID, provider, eventKey)
}

func (d *Dispatcher) enqueue(ctx context.Context, eventType string, orderID uuid.UUID, provider, eventKey string) error {
	event, err := outboxDomain.NewOutboxEvent(eventType, outboxDomain.SettlementPayload{
		OrderID:  orderID,
		Provider: provider,
		EventKey: eventKey,
	})
	if err != nil {
		return err
	}
	return d.outboxRepo.Create(ctx, event)
}
