package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/getachewzemene/minalesh-amplify-sub001/internal/database"
	apperrors "github.com/getachewzemene/minalesh-amplify-sub001/internal/errors"
	webhookDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/domain"
)

// MySQLEventRepository implements the webhook event ledger for MySQL databases.
// UUIDs are stored as BINARY(16).
type MySQLEventRepository struct {
	db *sql.DB
}

// NewMySQLEventRepository creates a new MySQL webhook event repository.
func NewMySQLEventRepository(db *sql.DB) *MySQLEventRepository {
	return &MySQLEventRepository{db: db}
}

// Insert adds a ledger row. A duplicate-key error on (provider, event_id) is reported as
// not inserted.
func (m *MySQLEventRepository) Insert(ctx context.Context, event *webhookDomain.Event) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO webhook_events (id, provider, event_id, payload, signature, signature_hash,
			  auth_method, status, source_ip, attempts, deliveries, last_delivery_at, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		database.UUIDToBinary(event.ID),
		event.Provider,
		event.EventID,
		event.Payload,
		event.Signature,
		event.SignatureHash,
		event.AuthMethod,
		event.Status,
		event.SourceIP,
		event.Attempts,
		event.Deliveries,
		event.LastDeliveryAt,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return false, nil
		}
		return false, apperrors.Wrap(err, "failed to insert webhook event")
	}
	return true, nil
}

// GetByID retrieves a ledger row by its identifier.
func (m *MySQLEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*webhookDomain.Event, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + eventColumns + ` FROM webhook_events WHERE id = ?`

	event, err := scanMySQLEvent(querier.QueryRowContext(ctx, query, database.UUIDToBinary(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, webhookDomain.ErrEventNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get webhook event by id")
	}
	return event, nil
}

// GetByProviderEventID retrieves the ledger row holding an idempotency key.
func (m *MySQLEventRepository) GetByProviderEventID(
	ctx context.Context,
	provider, eventID string,
) (*webhookDomain.Event, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + eventColumns + ` FROM webhook_events WHERE provider = ? AND event_id = ?`

	event, err := scanMySQLEvent(querier.QueryRowContext(ctx, query, provider, eventID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, webhookDomain.ErrEventNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get webhook event by key")
	}
	return event, nil
}

// RecordDelivery counts a duplicate delivery against an existing row.
func (m *MySQLEventRepository) RecordDelivery(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE webhook_events
			  SET deliveries = deliveries + 1, last_delivery_at = NOW(6)
			  WHERE id = ?`

	if _, err := querier.ExecContext(ctx, query, database.UUIDToBinary(id)); err != nil {
		return apperrors.Wrap(err, "failed to record webhook delivery")
	}
	return nil
}

// Reclaim hands a stale, errored or superseded row to a new delivery, guarded by expectedAttempts.
func (m *MySQLEventRepository) Reclaim(
	ctx context.Context,
	event *webhookDomain.Event,
	expectedAttempts int,
) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE webhook_events
			  SET status = 'received', payload = ?, signature = ?, signature_hash = ?, auth_method = ?,
			      source_ip = ?, error_message = NULL, latency_ms = NULL, processed_at = NULL, attempts = attempts + 1,
			      deliveries = deliveries + 1, last_delivery_at = NOW(6), updated_at = NOW(6)
			  WHERE id = ? AND attempts = ?`

	return execAffected(ctx, querier, "failed to reclaim webhook event", query,
		event.Payload,
		event.Signature,
		event.SignatureHash,
		event.AuthMethod,
		event.SourceIP,
		database.UUIDToBinary(event.ID),
		expectedAttempts,
	)
}

// MarkProcessing moves a claimed row from received to processing.
func (m *MySQLEventRepository) MarkProcessing(ctx context.Context, id uuid.UUID, attempts int) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE webhook_events SET status = 'processing', updated_at = NOW(6)
			  WHERE id = ? AND attempts = ? AND status = 'received'`

	return execAffected(ctx, querier, "failed to mark webhook event processing", query,
		database.UUIDToBinary(id), attempts)
}

// Finalize records the outcome of a claimed row at most once per claim.
func (m *MySQLEventRepository) Finalize(
	ctx context.Context,
	id uuid.UUID,
	attempts int,
	input webhookDomain.FinalizeInput,
) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE webhook_events
			  SET status = ?, order_id = ?, latency_ms = ?, error_message = ?, processed_at = ?,
			      updated_at = NOW(6)
			  WHERE id = ? AND attempts = ? AND status IN ('received', 'processing')`

	return execAffected(ctx, querier, "failed to finalize webhook event", query,
		input.Status,
		database.NullableUUIDToBinary(input.OrderID),
		input.LatencyMs,
		nullableString(input.ErrorMessage),
		processedAt(input.Status),
		database.UUIDToBinary(id),
		attempts,
	)
}

// List returns ledger rows, newest first, with offset/limit pagination.
func (m *MySQLEventRepository) List(
	ctx context.Context,
	filter webhookDomain.ListFilter,
	offset, limit int,
) ([]*webhookDomain.Event, error) {
	querier := database.GetTx(ctx, m.db)

	conditions := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if !filter.IncludeArchived {
		conditions = append(conditions, "archived = FALSE")
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Provider != "" {
		conditions = append(conditions, "provider = ?")
		args = append(args, filter.Provider)
	}

	query := `SELECT ` + eventColumns + ` FROM webhook_events`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	return m.query(ctx, querier, "failed to list webhook events", query, args...)
}

// ListStuck returns rows left in received, processing or error since before olderThan, oldest first.
func (m *MySQLEventRepository) ListStuck(
	ctx context.Context,
	olderThan time.Time,
	limit int,
) ([]*webhookDomain.Event, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + eventColumns + ` FROM webhook_events
			  WHERE status IN ('received', 'processing', 'error') AND updated_at < ?
			  ORDER BY updated_at ASC
			  LIMIT ?`

	return m.query(ctx, querier, "failed to list stuck webhook events", query, olderThan, limit)
}

// CountArchivable counts terminal, unarchived rows created before olderThan.
func (m *MySQLEventRepository) CountArchivable(ctx context.Context, olderThan time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT COUNT(*) FROM webhook_events
			  WHERE archived = FALSE AND status IN ('processed', 'failed') AND created_at < ?`

	var count int64
	if err := querier.QueryRowContext(ctx, query, olderThan).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count archivable webhook events")
	}
	return count, nil
}

// Archive flags terminal rows created before olderThan and returns how many were flagged.
func (m *MySQLEventRepository) Archive(ctx context.Context, olderThan time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE webhook_events SET archived = TRUE, updated_at = NOW(6)
			  WHERE archived = FALSE AND status IN ('processed', 'failed') AND created_at < ?`

	result, err := querier.ExecContext(ctx, query, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to archive webhook events")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	return count, nil
}

func (m *MySQLEventRepository) query(
	ctx context.Context,
	querier database.Querier,
	errMessage, query string,
	args ...any,
) ([]*webhookDomain.Event, error) {
	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, errMessage)
	}
	defer rows.Close() //nolint:errcheck

	events := make([]*webhookDomain.Event, 0)
	for rows.Next() {
		event, err := scanMySQLEvent(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan webhook event")
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate webhook events")
	}
	return events, nil
}

func scanMySQLEvent(row rowScanner) (*webhookDomain.Event, error) {
	var event webhookDomain.Event
	var id []byte
	var orderID []byte

	err := row.Scan(
		&id,
		&event.Provider,
		&event.EventID,
		&event.Payload,
		&event.Signature,
		&event.SignatureHash,
		&event.AuthMethod,
		&event.Status,
		&event.SourceIP,
		&orderID,
		&event.LatencyMs,
		&event.ErrorMessage,
		&event.Attempts,
		&event.Deliveries,
		&event.Archived,
		&event.ProcessedAt,
		&event.LastDeliveryAt,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if event.ID, err = database.UUIDFromBinary(id); err != nil {
		return nil, err
	}
	if event.OrderID, err = database.NullableUUIDFromBinary(orderID); err != nil {
		return nil, err
	}
	return &event, nil
}
