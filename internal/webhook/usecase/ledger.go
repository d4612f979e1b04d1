package usecase

import (
	"context"
	"time"

	apperrors "github.com/getachewzemene/minalesh-amplify-sub001/internal/errors"
	orderDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/order/domain"
	webhookDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/domain"
)

// UpsertInput is a verified delivery about to be recorded in the ledger.
type UpsertInput struct {
	Provider     string
	EventKey     string
	Payload      []byte
	Verification *webhookDomain.Verification
	SourceIP     string
	// Declared is the payment status the delivery reports. A finished row is handed to a
	// delivery whose status supersedes the one the row recorded.
	Declared orderDomain.PaymentStatus
}

// Ledger records every delivery and decides which one owns the processing of an event key.
// Exclusivity comes from the (provider, event_id) unique constraint and the attempts
// compare-and-swap, never from in-process locks.
type Ledger struct {
	repo       EventRepository
	staleAfter time.Duration
	now        func() time.Time
}

// NewLedger creates a Ledger. Rows in received/processing become reclaimable after staleAfter.
func NewLedger(repo EventRepository, staleAfter time.Duration) *Ledger {
	return &Ledger{
		repo:       repo,
		staleAfter: staleAfter,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Upsert claims the event key of a delivery.
func (l *Ledger) Upsert(ctx context.Context, in UpsertInput) (*webhookDomain.ClaimResult, error) {
	now := l.now()
	event := webhookDomain.NewEvent(in.Provider, in.EventKey, in.Payload, in.Verification, in.SourceIP, now)

	inserted, err := l.repo.Insert(ctx, event)
	if err != nil {
		return nil, err
	}
	if inserted {
		return &webhookDomain.ClaimResult{Event: event, Outcome: webhookDomain.ClaimFirstSight}, nil
	}

	existing, err := l.repo.GetByProviderEventID(ctx, in.Provider, in.EventKey)
	if err != nil {
		return nil, err
	}

	superseded := existing.IsTerminal() && in.Declared.Supersedes(webhookDomain.DeclaredStatus(existing))

	switch {
	case superseded || existing.IsReclaimable(now, l.staleAfter):
		reclaimed := *existing
		reclaimed.Payload = event.Payload
		reclaimed.Signature = event.Signature
		reclaimed.SignatureHash = event.SignatureHash
		reclaimed.AuthMethod = event.AuthMethod
		reclaimed.SourceIP = event.SourceIP

		ok, err := l.repo.Reclaim(ctx, &reclaimed, existing.Attempts)
		if err != nil {
			return nil, err
		}
		if !ok {
			return &webhookDomain.ClaimResult{Event: existing, Outcome: webhookDomain.ClaimInFlight}, nil
		}

		reclaimed.Status = webhookDomain.EventStatusReceived
		reclaimed.Attempts = existing.Attempts + 1
		reclaimed.Deliveries = existing.Deliveries + 1
		reclaimed.ErrorMessage = nil
		reclaimed.LatencyMs = nil
		reclaimed.ProcessedAt = nil
		reclaimed.LastDeliveryAt = now
		reclaimed.UpdatedAt = now

		outcome := webhookDomain.ClaimReclaimed
		if superseded {
			outcome = webhookDomain.ClaimSuperseded
		}
		return &webhookDomain.ClaimResult{Event: &reclaimed, Outcome: outcome}, nil

	case existing.IsTerminal():
		if err := l.repo.RecordDelivery(ctx, existing.ID); err != nil {
			return nil, err
		}
		outcome := webhookDomain.ClaimDuplicateProcessed
		if existing.Status == webhookDomain.EventStatusFailed {
			outcome = webhookDomain.ClaimDuplicateFailed
		}
		return &webhookDomain.ClaimResult{Event: existing, Outcome: outcome}, nil

	default:
		if err := l.repo.RecordDelivery(ctx, existing.ID); err != nil {
			return nil, err
		}
		return &webhookDomain.ClaimResult{Event: existing, Outcome: webhookDomain.ClaimInFlight}, nil
	}
}

// MarkProcessing moves a claimed row to processing. It returns false when the claim was lost.
func (l *Ledger) MarkProcessing(ctx context.Context, event *webhookDomain.Event) (bool, error) {
	ok, err := l.repo.MarkProcessing(ctx, event.ID, event.Attempts)
	if err != nil {
		return false, err
	}
	if ok {
		event.Status = webhookDomain.EventStatusProcessing
	}
	return ok, nil
}

// Finalize records the outcome of a claimed row exactly once.
func (l *Ledger) Finalize(ctx context.Context, event *webhookDomain.Event, input webhookDomain.FinalizeInput) error {
	ok, err := l.repo.Finalize(ctx, event.ID, event.Attempts, input)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.Wrapf(webhookDomain.ErrEventAlreadyFinalized, "event %s", event.ID)
	}
	event.Status = input.Status
	return nil
}
