// Package usecase implements the payment webhook settlement pipeline and the webhook
// event ledger operations behind the admin and reconciliation surfaces.
package usecase

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	orderDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/order/domain"
	webhookDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/domain"
)

// EventRepository defines persistence operations for the webhook event ledger.
type EventRepository interface {
	Insert(ctx context.Context, event *webhookDomain.Event) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*webhookDomain.Event, error)
	GetByProviderEventID(ctx context.Context, provider, eventID string) (*webhookDomain.Event, error)
	RecordDelivery(ctx context.Context, id uuid.UUID) error
	Reclaim(ctx context.Context, event *webhookDomain.Event, expectedAttempts int) (bool, error)
	MarkProcessing(ctx context.Context, id uuid.UUID, attempts int) (bool, error)
	Finalize(ctx context.Context, id uuid.UUID, attempts int, input webhookDomain.FinalizeInput) (bool, error)
	List(ctx context.Context, filter webhookDomain.ListFilter, offset, limit int) ([]*webhookDomain.Event, error)
	ListStuck(ctx context.Context, olderThan time.Time, limit int) ([]*webhookDomain.Event, error)
	CountArchivable(ctx context.Context, olderThan time.Time) (int64, error)
	Archive(ctx context.Context, olderThan time.Time) (int64, error)
}

// OrderRepository is the slice of order persistence the settlement pipeline needs.
type OrderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*orderDomain.Order, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*orderDomain.Order, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*orderDomain.Order, error)
	GetByPaymentReference(ctx context.Context, reference string) (*orderDomain.Order, error)
	UpdatePayment(ctx context.Context, order *orderDomain.Order) error
	CreateEvent(ctx context.Context, event *orderDomain.OrderEvent) error
}

// Notifier hands settled and failed payments to downstream consumers
// (commission posting, customer notification).
type Notifier interface {
	NotifySettled(ctx context.Context, orderID uuid.UUID, provider, eventKey string) error
	NotifyPaymentFailed(ctx context.Context, orderID uuid.UUID, provider, eventKey string) error
}

// SettleInput is one raw webhook delivery.
type SettleInput struct {
	Body     []byte
	Headers  http.Header
	SourceIP string
}

// SettlementOutcome labels how a delivery that did not error was handled.
type SettlementOutcome string

const (
	OutcomeSettled          SettlementOutcome = "settled"
	OutcomePaymentFailed    SettlementOutcome = "payment_failed"
	OutcomePaymentPending   SettlementOutcome = "payment_pending"
	OutcomeAlreadyCompleted SettlementOutcome = "already_completed"
	OutcomeDuplicate        SettlementOutcome = "duplicate"
	OutcomeInFlight         SettlementOutcome = "in_flight"
)

// SettleResult describes a successfully handled delivery.
type SettleResult struct {
	Outcome    SettlementOutcome
	Message    string
	Provider   string
	EventKey   string
	AuthMethod webhookDomain.AuthMethod
	Downgraded bool
	// Order is the order after the delivery was applied. It is nil for no-op outcomes.
	Order *orderDomain.Order
	// EventID is the ledger row that recorded the delivery, when one was claimed.
	EventID *uuid.UUID
}

// SettlementUseCase turns an authenticated provider notification into an order state change.
type SettlementUseCase interface {
	// Settle authenticates, deduplicates and applies a webhook delivery. Duplicates and
	// deliveries for completed orders return a result without side effects.
	Settle(ctx context.Context, input SettleInput) (*SettleResult, error)
}

// EventUseCase exposes the webhook event ledger to operators.
type EventUseCase interface {
	// List returns ledger rows, newest first.
	List(ctx context.Context, filter webhookDomain.ListFilter, offset, limit int) ([]*webhookDomain.Event, error)

	// Get returns one ledger row.
	Get(ctx context.Context, id uuid.UUID) (*webhookDomain.Event, error)

	// ListStuck returns rows that have not reached a terminal status for at least olderThan.
	ListStuck(ctx context.Context, olderThan time.Duration, limit int) ([]*webhookDomain.Event, error)

	// Archive flags terminal rows older than the given number of days. With dryRun it only
	// counts them.
	Archive(ctx context.Context, olderThanDays int, dryRun bool) (int64, error)
}
