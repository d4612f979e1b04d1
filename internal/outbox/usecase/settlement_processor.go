package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	commissionUsecase "github.com/getachewzemene/minalesh-amplify-sub001/internal/commission/usecase"
	apperrors "github.com/getachewzemene/minalesh-amplify-sub001/internal/errors"
	inventoryUsecase "github.com/getachewzemene/minalesh-amplify-sub001/internal/inventory/usecase"
	notificationService "github.com/getachewzemene/minalesh-amplify-sub001/internal/notification/service"
	orderDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/order/domain"
	outboxDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/outbox/domain"
)

// OrderLookup loads the order an outbox event refers to.
type OrderLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*orderDomain.Order, error)
}

// SettlementEventProcessor finishes the side effects of a settled or failed payment:
// it sweeps the order's remaining reservations, posts commission for settled orders
// and notifies buyers.
type SettlementEventProcessor struct {
	orders       OrderLookup
	reservations inventoryUsecase.ReservationUseCase
	commission   commissionUsecase.CommissionUseCase
	notifier     notificationService.Notifier
	logger       *slog.Logger
}

// NewSettlementEventProcessor creates a SettlementEventProcessor.
func NewSettlementEventProcessor(
	orders OrderLookup,
	reservations inventoryUsecase.ReservationUseCase,
	commission commissionUsecase.CommissionUseCase,
	notifier notificationService.Notifier,
	logger *slog.Logger,
) *SettlementEventProcessor {
	return &SettlementEventProcessor{
		orders:       orders,
		reservations: reservations,
		commission:   commission,
		notifier:     notifier,
		logger:       logger,
	}
}

// Process dispatches an event by type. Unknown types are errors so they end up failed
// instead of silently processed.
func (p *SettlementEventProcessor) Process(ctx context.Context, event *outboxDomain.OutboxEvent) error {
	switch event.EventType {
	case outboxDomain.EventTypeOrderSettled, outboxDomain.EventTypeOrderPaymentFailed:
	default:
		return apperrors.Wrapf(outboxDomain.ErrUnknownEventType, "%q", event.EventType)
	}

	payload, err := event.DecodeSettlementPayload()
	if err != nil {
		return err
	}

	order, err := p.orders.GetByID(ctx, payload.OrderID)
	if err != nil {
		return err
	}

	msg := notificationService.Message{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Provider:    payload.Provider,
		EventKey:    payload.EventKey,
	}

	if event.EventType == outboxDomain.EventTypeOrderPaymentFailed {
		// A later completed delivery may have settled the order since; its holds stay.
		if order.PaymentStatus == orderDomain.PaymentStatusFailed {
			if err := p.releaseReservations(ctx, order.ID); err != nil {
				return err
			}
		}
		return p.notifier.PaymentFailed(ctx, msg)
	}

	if err := p.commitReservations(ctx, order.ID); err != nil {
		return err
	}

	created, err := p.commission.PostForOrder(ctx, order.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to post commission")
	}
	if p.logger != nil {
		p.logger.Info("commission posted",
			slog.String("order_id", order.ID.String()),
			slog.Int("entries_created", created),
		)
	}

	return p.notifier.PaymentSettled(ctx, msg)
}

// commitReservations converts holds the settlement request left active into sales.
func (p *SettlementEventProcessor) commitReservations(ctx context.Context, orderID uuid.UUID) error {
	reservations, err := p.reservations.FindActiveReservations(ctx, orderID)
	if err != nil {
		return apperrors.Wrap(err, "failed to list reservations to commit")
	}
	for _, r := range reservations {
		ok, err := p.reservations.Commit(ctx, r.ID, orderID)
		if err != nil {
			return apperrors.Wrapf(err, "failed to commit reservation %s", r.ID)
		}
		if !ok {
			p.warn("reservation not committed", orderID, r.ID)
		}
	}
	return nil
}

// releaseReservations returns holds of a failed payment to stock.
func (p *SettlementEventProcessor) releaseReservations(ctx context.Context, orderID uuid.UUID) error {
	reservations, err := p.reservations.FindActiveReservations(ctx, orderID)
	if err != nil {
		return apperrors.Wrap(err, "failed to list reservations to release")
	}
	for _, r := range reservations {
		ok, err := p.reservations.Release(ctx, r.ID)
		if err != nil {
			return apperrors.Wrapf(err, "failed to release reservation %s", r.ID)
		}
		if !ok {
			p.warn("reservation not released", orderID, r.ID)
		}
	}
	return nil
}

func (p *SettlementEventProcessor) warn(msg string, orderID, reservationID uuid.UUID) {
	if p.logger == nil {
		return
	}
	p.logger.Warn(msg,
		slog.String("order_id", orderID.String()),
		slog.String("reservation_id", reservationID.String()),
	)
}
