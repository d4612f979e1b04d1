// Package repository implements webhook event ledger persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/getachewzemene/minalesh-amplify-sub001/internal/database"
	apperrors "github.com/getachewzemene/minalesh-amplify-sub001/internal/errors"
	webhookDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/domain"
)

const eventColumns = `id, provider, event_id, payload, signature, signature_hash, auth_method, status,
	source_ip, order_id, latency_ms, error_message, attempts, deliveries, archived, processed_at,
	last_delivery_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// PostgreSQLEventRepository implements the webhook event ledger for PostgreSQL databases.
type PostgreSQLEventRepository struct {
	db *sql.DB
}

// NewPostgreSQLEventRepository creates a new PostgreSQL webhook event repository.
func NewPostgreSQLEventRepository(db *sql.DB) *PostgreSQLEventRepository {
	return &PostgreSQLEventRepository{db: db}
}

// Insert adds a ledger row. It returns false without error when a row with the same
// (provider, event_id) already exists.
func (p *PostgreSQLEventRepository) Insert(ctx context.Context, event *webhookDomain.Event) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO webhook_events (id, provider, event_id, payload, signature, signature_hash,
			  auth_method, status, source_ip, attempts, deliveries, last_delivery_at, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			  ON CONFLICT (provider, event_id) DO NOTHING`

	result, err := querier.ExecContext(
		ctx,
		query,
		event.ID,
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

	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to get rows affected")
	}
	return rows == 1, nil
}

// GetByID retrieves a ledger row by its identifier.
func (p *PostgreSQLEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*webhookDomain.Event, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + eventColumns + ` FROM webhook_events WHERE id = $1`

	event, err := scanPostgreSQLEvent(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, webhookDomain.ErrEventNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get webhook event by id")
	}
	return event, nil
}

// GetByProviderEventID retrieves the ledger row holding an idempotency key.
func (p *PostgreSQLEventRepository) GetByProviderEventID(
	ctx context.Context,
	provider, eventID string,
) (*webhookDomain.Event, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + eventColumns + ` FROM webhook_events WHERE provider = $1 AND event_id = $2`

	event, err := scanPostgreSQLEvent(querier.QueryRowContext(ctx, query, provider, eventID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, webhookDomain.ErrEventNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get webhook event by key")
	}
	return event, nil
}

// RecordDelivery counts a duplicate delivery against an existing row.
func (p *PostgreSQLEventRepository) RecordDelivery(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE webhook_events
			  SET deliveries = deliveries + 1, last_delivery_at = NOW()
			  WHERE id = $1`

	if _, err := querier.ExecContext(ctx, query, id); err != nil {
		return apperrors.Wrap(err, "failed to record webhook delivery")
	}
	return nil
}

// Reclaim hands a row to a new delivery: a stale or errored row, or a finished row whose
// payment report is superseded. The update only applies while the row still has
// expectedAttempts, so at most one concurrent reclaimer wins.
func (p *PostgreSQLEventRepository) Reclaim(
	ctx context.Context,
	event *webhookDomain.Event,
	expectedAttempts int,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE webhook_events
			  SET status = 'received', payload = $1, signature = $2, signature_hash = $3, auth_method = $4,
			      source_ip = $5, error_message = NULL, latency_ms = NULL, processed_at = NULL, attempts = attempts + 1,
			      deliveries = deliveries + 1, last_delivery_at = NOW(), updated_at = NOW()
			  WHERE id = $6 AND attempts = $7`

	return execAffected(ctx, querier, "failed to reclaim webhook event", query,
		event.Payload,
		event.Signature,
		event.SignatureHash,
		event.AuthMethod,
		event.SourceIP,
		event.ID,
		expectedAttempts,
	)
}

// MarkProcessing moves a claimed row from received to processing.
func (p *PostgreSQLEventRepository) MarkProcessing(ctx context.Context, id uuid.UUID, attempts int) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE webhook_events SET status = 'processing', updated_at = NOW()
			  WHERE id = $1 AND attempts = $2 AND status = 'received'`

	return execAffected(ctx, querier, "failed to mark webhook event processing", query, id, attempts)
}

// Finalize records the outcome of a claimed row. It only applies while the row is still
// received/processing under the same attempt, so a row is finalized at most once per claim.
func (p *PostgreSQLEventRepository) Finalize(
	ctx context.Context,
	id uuid.UUID,
	attempts int,
	input webhookDomain.FinalizeInput,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE webhook_events
			  SET status = $1, order_id = $2, latency_ms = $3, error_message = $4, processed_at = $5,
			      updated_at = NOW()
			  WHERE id = $6 AND attempts = $7 AND status IN ('received', 'processing')`

	return execAffected(ctx, querier, "failed to finalize webhook event", query,
		input.Status,
		input.OrderID,
		input.LatencyMs,
		nullableString(input.ErrorMessage),
		processedAt(input.Status),
		id,
		attempts,
	)
}

// List returns ledger rows, newest first, with offset/limit pagination.
func (p *PostgreSQLEventRepository) List(
	ctx context.Context,
	filter webhookDomain.ListFilter,
	offset, limit int,
) ([]*webhookDomain.Event, error) {
	querier := database.GetTx(ctx, p.db)

	conditions := make([]string, 0, 3)
	args := make([]any, 0, 5)
	if !filter.IncludeArchived {
		conditions = append(conditions, "archived = FALSE")
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Provider != "" {
		args = append(args, filter.Provider)
		conditions = append(conditions, fmt.Sprintf("provider = $%d", len(args)))
	}

	query := `SELECT ` + eventColumns + ` FROM webhook_events`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	return p.query(ctx, querier, "failed to list webhook events", query, args...)
}

// ListStuck returns rows left in received, processing or error since before olderThan, oldest first.
func (p *PostgreSQLEventRepository) ListStuck(
	ctx context.Context,
	olderThan time.Time,
	limit int,
) ([]*webhookDomain.Event, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + eventColumns + ` FROM webhook_events
			  WHERE status IN ('received', 'processing', 'error') AND updated_at < $1
			  ORDER BY updated_at ASC
			  LIMIT $2`

	return p.query(ctx, querier, "failed to list stuck webhook events", query, olderThan, limit)
}

// CountArchivable counts terminal, unarchived rows created before olderThan.
func (p *PostgreSQLEventRepository) CountArchivable(ctx context.Context, olderThan time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COUNT(*) FROM webhook_events
			  WHERE archived = FALSE AND status IN ('processed', 'failed') AND created_at < $1`

	var count int64
	if err := querier.QueryRowContext(ctx, query, olderThan).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count archivable webhook events")
	}
	return count, nil
}

// Archive flags terminal rows created before olderThan and returns how many were flagged.
func (p *PostgreSQLEventRepository) Archive(ctx context.Context, olderThan time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE webhook_events SET archived = TRUE, updated_at = NOW()
			  WHERE archived = FALSE AND status IN ('processed', 'failed') AND created_at < $1`

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

func (p *PostgreSQLEventRepository) query(
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
		event, err := scanPostgreSQLEvent(rows)
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

func scanPostgreSQLEvent(row rowScanner) (*webhookDomain.Event, error) {
	var event webhookDomain.Event
	err := row.Scan(
		&event.ID,
		&event.Provider,
		&event.EventID,
		&event.Payload,
		&event.Signature,
		&event.SignatureHash,
		&event.AuthMethod,
		&event.Status,
		&event.SourceIP,
		&event.OrderID,
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
	return &event, nil
}

func execAffected(
	ctx context.Context,
	querier database.Querier,
	errMessage, query string,
	args ...any,
) (bool, error) {
	result, err := querier.ExecContext(ctx, query, args...)
	if err != nil {
		return false, apperrors.Wrap(err, errMessage)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to get rows affected")
	}
	return rows > 0, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func processedAt(status webhookDomain.EventStatus) *time.Time {
	if !status.IsTerminal() {
		return nil
	}
	now := time.Now().UTC()
	return &now
}
