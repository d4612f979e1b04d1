// Package domain defines the webhook event ledger entities and the inbound payment payload.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventStatus is the processing state of a ledger row.
type EventStatus string

const (
	EventStatusReceived   EventStatus = "received"
	EventStatusProcessing EventStatus = "processing"
	EventStatusProcessed  EventStatus = "processed"
	EventStatusFailed     EventStatus = "failed"
	EventStatusError      EventStatus = "error"
)

// IsTerminal reports whether a row in this status is never processed again.
func (s EventStatus) IsTerminal() bool {
	return s == EventStatusProcessed || s == EventStatusFailed
}

// AuthMethod records how a delivery was authenticated.
type AuthMethod string

const (
	AuthMethodProviderHMAC AuthMethod = "provider_hmac"
	AuthMethodGenericHMAC  AuthMethod = "generic_hmac"
	AuthMethodPlainSecret  AuthMethod = "plain_secret"
)

// Event is one row of the webhook event ledger. Rows with an EventID are unique per
// (Provider, EventID); rows without one are always inserted and never deduplicated.
type Event struct {
	ID             uuid.UUID
	Provider       string
	EventID        *string
	Payload        []byte
	Signature      *string
	SignatureHash  *string
	AuthMethod     AuthMethod
	Status         EventStatus
	SourceIP       string
	OrderID        *uuid.UUID
	LatencyMs      *int64
	ErrorMessage   *string
	Attempts       int
	Deliveries     int
	Archived       bool
	ProcessedAt    *time.Time
	LastDeliveryAt time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewEvent builds a received ledger row for a verified delivery. An empty eventKey
// produces an anonymous row.
func NewEvent(provider, eventKey string, payload []byte, v *Verification, sourceIP string, now time.Time) *Event {
	e := &Event{
		ID:             uuid.Must(uuid.NewV7()),
		Provider:       provider,
		Payload:        payload,
		Status:         EventStatusReceived,
		SourceIP:       sourceIP,
		Attempts:       1,
		Deliveries:     1,
		LastDeliveryAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if eventKey != "" {
		e.EventID = &eventKey
	}
	if v != nil {
		e.AuthMethod = v.Method
		if v.Presented != "" {
			e.Signature = &v.Presented
		}
		if v.Computed != "" {
			e.SignatureHash = &v.Computed
		}
	}
	return e
}

// IsTerminal reports whether the row is processed or failed.
func (e *Event) IsTerminal() bool {
	return e.Status.IsTerminal()
}

// IsReclaimable reports whether a later delivery may take the row over. Rows in error
// are always reclaimable; received/processing rows only once they are older than staleAfter.
func (e *Event) IsReclaimable(now time.Time, staleAfter time.Duration) bool {
	switch e.Status {
	case EventStatusError:
		return true
	case EventStatusReceived, EventStatusProcessing:
		return now.Sub(e.UpdatedAt) >= staleAfter
	default:
		return false
	}
}

// FinalizeInput carries the outcome recorded when a row leaves received/processing.
type FinalizeInput struct {
	Status       EventStatus
	OrderID      *uuid.UUID
	LatencyMs    int64
	ErrorMessage string
}

// ClaimOutcome is the result of an idempotent ledger upsert.
type ClaimOutcome int

const (
	// ClaimFirstSight means a new row was inserted and the caller owns processing.
	ClaimFirstSight ClaimOutcome = iota
	// ClaimReclaimed means a stale or errored row was taken over by the caller.
	ClaimReclaimed
	// ClaimDuplicateProcessed means the key was already processed.
	ClaimDuplicateProcessed
	// ClaimDuplicateFailed means the key already finished with a failed payment.
	ClaimDuplicateFailed
	// ClaimInFlight means another delivery holds the key.
	ClaimInFlight
	// ClaimSuperseded means a finished row was taken over by a delivery reporting a later
	// payment status, such as completed after failed.
	ClaimSuperseded
)

// String returns the log/metric label of the outcome.
func (o ClaimOutcome) String() string {
	switch o {
	case ClaimFirstSight:
		return "first_sight"
	case ClaimReclaimed:
		return "reclaimed"
	case ClaimDuplicateProcessed:
		return "duplicate_processed"
	case ClaimDuplicateFailed:
		return "duplicate_failed"
	case ClaimInFlight:
		return "in_flight"
	case ClaimSuperseded:
		return "superseded"
	default:
		return "unknown"
	}
}

// ClaimResult is returned by the ledger upsert.
type ClaimResult struct {
	Event   *Event
	Outcome ClaimOutcome
}

// Proceeds reports whether the caller owns the row and must process the delivery.
func (r *ClaimResult) Proceeds() bool {
	return r.Outcome == ClaimFirstSight || r.Outcome == ClaimReclaimed || r.Outcome == ClaimSuperseded
}

// ListFilter narrows admin listings of the ledger.
type ListFilter struct {
	Status          EventStatus
	Provider        string
	IncludeArchived bool
}
