package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/getachewzemene/minalesh-amplify-sub001/internal/database"
	apperrors "github.com/getachewzemene/minalesh-amplify-sub001/internal/errors"
	inventoryUsecase "github.com/getachewzemene/minalesh-amplify-sub001/internal/inventory/usecase"
	orderDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/order/domain"
	webhookDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/domain"
	webhookService "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/service"
)

// SettlementConfig holds the tunables of the settlement pipeline.
type SettlementConfig struct {
	// AmountTolerance is the largest accepted gap between a declared amount and the order total.
	AmountTolerance decimal.Decimal
	// RequireEventKey rejects deliveries from which no idempotency key can be derived.
	RequireEventKey bool
	// SettleTimeout bounds one Settle call. Zero disables the bound.
	SettleTimeout time.Duration
}

// settlementUseCase implements SettlementUseCase.
type settlementUseCase struct {
	txManager    database.TxManager
	verifier     webhookService.SignatureVerifier
	ledger       *Ledger
	orderRepo    OrderRepository
	reservations inventoryUsecase.ReservationUseCase
	notifier     Notifier
	cfg          SettlementConfig
	logger       *slog.Logger
	now          func() time.Time
}

// NewSettlementUseCase creates a new SettlementUseCase.
func NewSettlementUseCase(
	txManager database.TxManager,
	verifier webhookService.SignatureVerifier,
	ledger *Ledger,
	orderRepo OrderRepository,
	reservations inventoryUsecase.ReservationUseCase,
	notifier Notifier,
	cfg SettlementConfig,
	logger *slog.Logger,
) SettlementUseCase {
	return &settlementUseCase{
		txManager:    txManager,
		verifier:     verifier,
		ledger:       ledger,
		orderRepo:    orderRepo,
		reservations: reservations,
		notifier:     notifier,
		cfg:          cfg,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// settlementRun carries the state of one delivery through the pipeline.
type settlementRun struct {
	start        time.Time
	input        SettleInput
	provider     string
	eventKey     string
	verification *webhookDomain.Verification
	payload      *webhookDomain.Payload
	order        *orderDomain.Order
	event        *webhookDomain.Event
}

// Settle runs verify, parse, resolve, claim, apply and dispatch for one delivery.
func (s *settlementUseCase) Settle(ctx context.Context, input SettleInput) (result *SettleResult, err error) {
	if s.cfg.SettleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.SettleTimeout)
		defer cancel()
	}

	run := &settlementRun{start: s.now(), input: input}
	defer func() {
		s.logOutcome(ctx, run, result, err)
	}()

	run.provider = webhookDomain.PeekProvider(input.Body)
	run.verification, err = s.verifier.Verify(run.provider, input.Headers, input.Body)
	if err != nil {
		return nil, err
	}

	run.payload, err = webhookDomain.ParsePayload(input.Body)
	if err != nil {
		return nil, err
	}
	if err := run.payload.Validate(); err != nil {
		return nil, err
	}

	run.eventKey = webhookDomain.ExtractEventID(run.payload)
	if run.eventKey == "" && s.cfg.RequireEventKey {
		return nil, webhookDomain.ErrMissingEventKey
	}

	run.order, err = s.resolveOrder(ctx, run.payload)
	if err != nil {
		return nil, err
	}
	if run.order.IsCompleted() {
		return s.noop(run, OutcomeAlreadyCompleted, "Already completed"), nil
	}

	claim, err := s.ledger.Upsert(ctx, UpsertInput{
		Provider:     run.provider,
		EventKey:     run.eventKey,
		Payload:      input.Body,
		Verification: run.verification,
		SourceIP:     input.SourceIP,
		Declared:     run.payload.Status,
	})
	if err != nil {
		return nil, err
	}
	run.event = claim.Event

	switch claim.Outcome {
	case webhookDomain.ClaimDuplicateProcessed, webhookDomain.ClaimDuplicateFailed:
		return s.noop(run, OutcomeDuplicate, "Duplicate event"), nil
	case webhookDomain.ClaimInFlight:
		return s.noop(run, OutcomeInFlight, "Event is being processed"), nil
	}

	ok, err := s.ledger.MarkProcessing(ctx, run.event)
	if err != nil {
		return nil, s.fail(ctx, run, err)
	}
	if !ok {
		return s.noop(run, OutcomeInFlight, "Event is being processed"), nil
	}

	if run.payload.Status == orderDomain.PaymentStatusCompleted {
		return s.settleCompleted(ctx, run)
	}
	return s.settleOutcome(ctx, run)
}

// resolveOrder looks the order up by payment reference, then order number, then id.
func (s *settlementUseCase) resolveOrder(ctx context.Context, p *webhookDomain.Payload) (*orderDomain.Order, error) {
	lookups := make([]func() (*orderDomain.Order, error), 0, 3)
	if p.PaymentReference != "" {
		lookups = append(lookups, func() (*orderDomain.Order, error) {
			return s.orderRepo.GetByPaymentReference(ctx, p.PaymentReference)
		})
	}
	if p.OrderNumber != "" {
		lookups = append(lookups, func() (*orderDomain.Order, error) {
			return s.orderRepo.GetByOrderNumber(ctx, p.OrderNumber)
		})
	}
	if id, err := uuid.Parse(p.OrderID); err == nil {
		lookups = append(lookups, func() (*orderDomain.Order, error) {
			return s.orderRepo.GetByID(ctx, id)
		})
	}

	for _, lookup := range lookups {
		order, err := lookup()
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, orderDomain.ErrOrderNotFound) {
			return nil, err
		}
	}
	return nil, orderDomain.ErrOrderNotFound
}

func (s *settlementUseCase) settleCompleted(ctx context.Context, run *settlementRun) (*SettleResult, error) {
	if amount := run.payload.Amount; amount != nil &&
		!run.order.AmountWithinTolerance(*amount, s.cfg.AmountTolerance) {
		mismatch := apperrors.Wrapf(
			orderDomain.ErrAmountMismatch,
			"declared %s, expected %s",
			amount.StringFixed(2),
			run.order.TotalAmount.StringFixed(2),
		)
		return nil, s.fail(ctx, run, mismatch)
	}

	var settled *orderDomain.Order
	alreadyCompleted := false

	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		order, err := s.orderRepo.GetByIDForUpdate(ctx, run.order.ID)
		if err != nil {
			return err
		}
		if order.IsCompleted() {
			alreadyCompleted = true
			return s.ledger.Finalize(ctx, run.event, s.finalizeInput(run, webhookDomain.EventStatusProcessed, ""))
		}

		if err := order.MarkCompleted(s.now()); err != nil {
			return err
		}
		if err := s.orderRepo.UpdatePayment(ctx, order); err != nil {
			return err
		}
		if err := s.orderRepo.CreateEvent(ctx, orderDomain.NewOrderEvent(
			order.ID,
			orderDomain.OrderEventPaymentCompleted,
			string(orderDomain.PaymentStatusCompleted),
			fmt.Sprintf("Payment completed via %s", run.provider),
			s.eventMetadata(run),
		)); err != nil {
			return err
		}
		if err := s.notifier.NotifySettled(ctx, order.ID, run.provider, run.eventKey); err != nil {
			return apperrors.Wrap(err, "failed to enqueue settlement event")
		}
		if err := s.ledger.Finalize(ctx, run.event, s.finalizeInput(run, webhookDomain.EventStatusProcessed, "")); err != nil {
			return err
		}
		settled = order
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, run, err)
	}
	if alreadyCompleted {
		return s.noop(run, OutcomeAlreadyCompleted, "Already completed"), nil
	}

	// The order.settled outbox event commits whatever this pass leaves active.
	s.commitReservations(context.WithoutCancel(ctx), settled.ID)

	return s.applied(run, OutcomeSettled, "Payment settled", settled), nil
}

func (s *settlementUseCase) settleOutcome(ctx context.Context, run *settlementRun) (*SettleResult, error) {
	status := run.payload.Status
	ledgerStatus := webhookDomain.EventStatusProcessed
	eventType := orderDomain.OrderEventPaymentPending
	outcome := OutcomePaymentPending
	if status == orderDomain.PaymentStatusFailed {
		ledgerStatus = webhookDomain.EventStatusFailed
		eventType = orderDomain.OrderEventPaymentFailed
		outcome = OutcomePaymentFailed
	}

	var updated *orderDomain.Order
	alreadyCompleted := false

	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		order, err := s.orderRepo.GetByIDForUpdate(ctx, run.order.ID)
		if err != nil {
			return err
		}
		if order.IsCompleted() {
			alreadyCompleted = true
			return s.ledger.Finalize(ctx, run.event, s.finalizeInput(run, webhookDomain.EventStatusProcessed, ""))
		}

		if err := order.RecordPaymentOutcome(status, run.provider, s.now()); err != nil {
			return err
		}
		if err := s.orderRepo.UpdatePayment(ctx, order); err != nil {
			return err
		}
		if err := s.orderRepo.CreateEvent(ctx, orderDomain.NewOrderEvent(
			order.ID,
			eventType,
			string(status),
			fmt.Sprintf("Payment %s from %s", status, run.provider),
			s.eventMetadata(run),
		)); err != nil {
			return err
		}
		if status == orderDomain.PaymentStatusFailed {
			if err := s.notifier.NotifyPaymentFailed(ctx, order.ID, run.provider, run.eventKey); err != nil {
				return apperrors.Wrap(err, "failed to enqueue payment failure event")
			}
		}
		if err := s.ledger.Finalize(ctx, run.event, s.finalizeInput(run, ledgerStatus, "")); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, run, err)
	}
	if alreadyCompleted {
		return s.noop(run, OutcomeAlreadyCompleted, "Already completed"), nil
	}

	// A pending payment may still complete, so only failed releases its holds.
	if status == orderDomain.PaymentStatusFailed {
		s.releaseReservations(context.WithoutCancel(ctx), updated.ID)
	}

	return s.applied(run, outcome, fmt.Sprintf("Payment %s recorded", status), updated), nil
}

// commitReservations converts the order's active holds into sales one by one.
// Failures are logged; the outbox sweep retries them.
func (s *settlementUseCase) commitReservations(ctx context.Context, orderID uuid.UUID) {
	reservations, err := s.reservations.FindActiveReservations(ctx, orderID)
	if err != nil {
		s.logger.Error("failed to list reservations to commit",
			slog.String("order_id", orderID.String()),
			slog.Any("error", err),
		)
		return
	}

	for _, r := range reservations {
		ok, err := s.reservations.Commit(ctx, r.ID, orderID)
		if err != nil || !ok {
			s.logger.Error("failed to commit reservation",
				slog.String("order_id", orderID.String()),
				slog.String("reservation_id", r.ID.String()),
				slog.Bool("committed", ok),
				slog.Any("error", err),
			)
		}
	}
}

// releaseReservations returns the order's active holds to stock one by one.
func (s *settlementUseCase) releaseReservations(ctx context.Context, orderID uuid.UUID) {
	reservations, err := s.reservations.FindActiveReservations(ctx, orderID)
	if err != nil {
		s.logger.Error("failed to list reservations to release",
			slog.String("order_id", orderID.String()),
			slog.Any("error", err),
		)
		return
	}

	for _, r := range reservations {
		ok, err := s.reservations.Release(ctx, r.ID)
		if err != nil || !ok {
			s.logger.Error("failed to release reservation",
				slog.String("order_id", orderID.String()),
				slog.String("reservation_id", r.ID.String()),
				slog.Bool("released", ok),
				slog.Any("error", err),
			)
		}
	}
}

// fail marks a claimed row as error so the next delivery can reclaim it, then returns err.
func (s *settlementUseCase) fail(ctx context.Context, run *settlementRun, err error) error {
	if run.event == nil {
		return err
	}

	finalizeCtx := context.WithoutCancel(ctx)
	if ferr := s.ledger.Finalize(finalizeCtx, run.event, s.finalizeInput(run, webhookDomain.EventStatusError, err.Error())); ferr != nil {
		s.logger.Warn("failed to record webhook event error",
			slog.String("event_id", run.event.ID.String()),
			slog.Any("error", ferr),
		)
	}
	return err
}

func (s *settlementUseCase) finalizeInput(
	run *settlementRun,
	status webhookDomain.EventStatus,
	errMessage string,
) webhookDomain.FinalizeInput {
	input := webhookDomain.FinalizeInput{
		Status:       status,
		LatencyMs:    s.now().Sub(run.start).Milliseconds(),
		ErrorMessage: errMessage,
	}
	if run.order != nil {
		orderID := run.order.ID
		input.OrderID = &orderID
	}
	return input
}

func (s *settlementUseCase) eventMetadata(run *settlementRun) map[string]any {
	metadata := map[string]any{
		"provider":   run.provider,
		"authMethod": string(run.verification.Method),
	}
	if run.eventKey != "" {
		metadata["eventKey"] = run.eventKey
	}
	if run.event != nil {
		metadata["webhookEventId"] = run.event.ID.String()
	}
	if run.payload.PaymentReference != "" {
		metadata["paymentReference"] = run.payload.PaymentReference
	}
	if run.payload.Amount != nil {
		metadata["amount"] = run.payload.Amount.String()
	}
	return metadata
}

func (s *settlementUseCase) noop(run *settlementRun, outcome SettlementOutcome, message string) *SettleResult {
	return s.applied(run, outcome, message, nil)
}

func (s *settlementUseCase) applied(
	run *settlementRun,
	outcome SettlementOutcome,
	message string,
	order *orderDomain.Order,
) *SettleResult {
	result := &SettleResult{
		Outcome:    outcome,
		Message:    message,
		Provider:   run.provider,
		EventKey:   run.eventKey,
		AuthMethod: run.verification.Method,
		Downgraded: run.verification.Downgraded,
		Order:      order,
	}
	if run.event != nil {
		id := run.event.ID
		result.EventID = &id
	}
	return result
}

// logOutcome writes the single structured line recorded for every delivery.
func (s *settlementUseCase) logOutcome(ctx context.Context, run *settlementRun, result *SettleResult, err error) {
	attrs := []slog.Attr{
		slog.String("provider", run.provider),
		slog.String("event_key", run.eventKey),
		slog.String("source_ip", run.input.SourceIP),
		slog.Int64("latency_ms", s.now().Sub(run.start).Milliseconds()),
	}
	if run.order != nil {
		attrs = append(attrs, slog.String("order_id", run.order.ID.String()))
	}
	if run.event != nil {
		attrs = append(attrs, slog.String("webhook_event_id", run.event.ID.String()))
	}
	if run.verification != nil {
		attrs = append(attrs,
			slog.String("auth_method", string(run.verification.Method)),
			slog.Bool("downgraded", run.verification.Downgraded),
		)
	}

	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
		level := slog.LevelWarn
		if !isClientError(err) {
			level = slog.LevelError
		}
		s.logger.LogAttrs(ctx, level, "webhook rejected", attrs...)
		return
	}

	attrs = append(attrs, slog.String("outcome", string(result.Outcome)))
	s.logger.LogAttrs(ctx, slog.LevelInfo, "webhook handled", attrs...)
}

func isClientError(err error) bool {
	return apperrors.Is(err, apperrors.ErrUnauthorized) ||
		apperrors.Is(err, apperrors.ErrInvalidInput) ||
		apperrors.Is(err, apperrors.ErrNotFound) ||
		apperrors.Is(err, apperrors.ErrPreconditionFailed)
}
