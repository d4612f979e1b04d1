package service

import (
	"context"
	"log/slog"
)

// LogNotifier writes notifications as structured log records for an external mail/SMS
// relay to pick up.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// PaymentSettled logs a payment confirmation notice.
func (n *LogNotifier) PaymentSettled(ctx context.Context, msg Message) error {
	n.log(ctx, "payment_settled", msg)
	return nil
}

// PaymentFailed logs a payment failure notice.
func (n *LogNotifier) PaymentFailed(ctx context.Context, msg Message) error {
	n.log(ctx, "payment_failed", msg)
	return nil
}

func (n *LogNotifier) log(ctx context.Context, kind string, msg Message) {
	if n.logger == nil {
		return
	}
	n.logger.InfoContext(ctx, "notification dispatched",
		slog.String("kind", kind),
		slog.String("order_id", msg.OrderID.String()),
		slog.String("order_number", msg.OrderNumber),
		slog.String("provider", msg.Provider),
		slog.String("event_key", msg.EventKey),
	)
}
