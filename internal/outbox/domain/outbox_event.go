// Package domain defines the transactional outbox used to run settlement side effects
// after the settlement transaction has committed.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/getachewzemene/minalesh-amplify-sub001/internal/errors"
)

// OutboxEventStatus represents the status of an outbox event.
type OutboxEventStatus string

const (
	OutboxEventStatusPending   OutboxEventStatus = "pending"
	OutboxEventStatusProcessed OutboxEventStatus = "processed"
	OutboxEventStatusFailed    OutboxEventStatus = "failed"
)

// Event types emitted by the settlement pipeline.
const (
	EventTypeOrderSettled       = "order.settled"
	EventTypeOrderPaymentFailed = "order.payment_failed"
)

// ErrUnknownEventType indicates an outbox event no processor handles.
var ErrUnknownEventType = apperrors.Wrap(apperrors.ErrInvalidInput, "unknown outbox event type")

// OutboxEvent is a pending side effect recorded in the outbox table.
type OutboxEvent struct {
	ID          uuid.UUID
	EventType   string
	Payload     string
	Status      OutboxEventStatus
	Retries     int
	LastError   *string
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SettlementPayload is the body of order.settled and order.payment_failed events.
type SettlementPayload struct {
	OrderID  uuid.UUID `json:"orderId"`
	Provider string    `json:"provider"`
	EventKey string    `json:"eventKey,omitempty"`
}

// NewOutboxEvent creates a pending event with payload encoded as JSON.
func NewOutboxEvent(eventType string, payload any) (*OutboxEvent, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encode outbox payload")
	}
	now := time.Now().UTC()
	return &OutboxEvent{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: eventType,
		Payload:   string(body),
		Status:    OutboxEventStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// DecodeSettlementPayload parses the payload of a settlement event.
func (e *OutboxEvent) DecodeSettlementPayload() (*SettlementPayload, error) {
	var payload SettlementPayload
	if err := json.Unmarshal([]byte(e.Payload), &payload); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "outbox event %s payload: %v", e.ID, err)
	}
	if payload.OrderID == uuid.Nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "outbox event %s has no order id", e.ID)
	}
	return &payload, nil
}

// RecordFailure counts a failed attempt and marks the event failed once maxRetries is reached.
func (e *OutboxEvent) RecordFailure(err error, maxRetries int) {
	e.Retries++
	msg := err.Error()
	e.LastError = &msg
	if e.Retries >= maxRetries {
		e.Status = OutboxEventStatusFailed
	}
}

// MarkProcessed marks the event as processed at now.
func (e *OutboxEvent) MarkProcessed(now time.Time) {
	e.Status = OutboxEventStatusProcessed
	e.ProcessedAt = &now
}
