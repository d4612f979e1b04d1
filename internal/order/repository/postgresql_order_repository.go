// Package repository implements order persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/getachewzemene/minalesh-amplify-sub001/internal/database"
	apperrors "github.com/getachewzemene/minalesh-amplify-sub001/internal/errors"
	orderDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/order/domain"
)

const postgresOrderColumns = `id, order_number, payment_reference, payment_status, status, total_amount,
	notes, paid_at, created_at, updated_at`

// PostgreSQLOrderRepository implements order persistence for PostgreSQL databases.
type PostgreSQLOrderRepository struct {
	db *sql.DB
}

// NewPostgreSQLOrderRepository creates a new PostgreSQL order repository.
func NewPostgreSQLOrderRepository(db *sql.DB) *PostgreSQLOrderRepository {
	return &PostgreSQLOrderRepository{db: db}
}

// Create inserts a new order.
func (p *PostgreSQLOrderRepository) Create(ctx context.Context, order *orderDomain.Order) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO orders (id, order_number, payment_reference, payment_status, status, total_amount,
			  notes, paid_at, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())`

	_, err := querier.ExecContext(
		ctx,
		query,
		order.ID,
		order.OrderNumber,
		order.PaymentReference,
		order.PaymentStatus,
		order.Status,
		order.TotalAmount,
		order.Notes,
		order.PaidAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create order")
	}
	return nil
}

// CreateItem inserts an order line.
func (p *PostgreSQLOrderRepository) CreateItem(ctx context.Context, item *orderDomain.OrderItem) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO order_items (id, order_id, product_id, vendor_id, quantity, unit_price, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, NOW())`

	_, err := querier.ExecContext(
		ctx,
		query,
		item.ID,
		item.OrderID,
		item.ProductID,
		item.VendorID,
		item.Quantity,
		item.UnitPrice,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create order item")
	}
	return nil
}

// GetByID retrieves an order by its identifier.
func (p *PostgreSQLOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*orderDomain.Order, error) {
	query := `SELECT ` + postgresOrderColumns + ` FROM orders WHERE id = $1`
	return p.getOne(ctx, query, "failed to get order by id", id)
}

// GetByIDForUpdate retrieves an order by id and locks the row for the current transaction.
func (p *PostgreSQLOrderRepository) GetByIDForUpdate(
	ctx context.Context,
	id uuid.UUID,
) (*orderDomain.Order, error) {
	query := `SELECT ` + postgresOrderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
	return p.getOne(ctx, query, "failed to lock order", id)
}

// GetByOrderNumber retrieves an order by its human-facing order number.
func (p *PostgreSQLOrderRepository) GetByOrderNumber(
	ctx context.Context,
	orderNumber string,
) (*orderDomain.Order, error) {
	query := `SELECT ` + postgresOrderColumns + ` FROM orders WHERE order_number = $1`
	return p.getOne(ctx, query, "failed to get order by number", orderNumber)
}

// GetByPaymentReference retrieves an order by the provider payment reference.
func (p *PostgreSQLOrderRepository) GetByPaymentReference(
	ctx context.Context,
	reference string,
) (*orderDomain.Order, error) {
	query := `SELECT ` + postgresOrderColumns + ` FROM orders WHERE payment_reference = $1`
	return p.getOne(ctx, query, "failed to get order by payment reference", reference)
}

func (p *PostgreSQLOrderRepository) getOne(
	ctx context.Context,
	query, errMessage string,
	arg any,
) (*orderDomain.Order, error) {
	querier := database.GetTx(ctx, p.db)

	var order orderDomain.Order
	err := querier.QueryRowContext(ctx, query, arg).Scan(
		&order.ID,
		&order.OrderNumber,
		&order.PaymentReference,
		&order.PaymentStatus,
		&order.Status,
		&order.TotalAmount,
		&order.Notes,
		&order.PaidAt,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, orderDomain.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, errMessage)
	}
	return &order, nil
}

// UpdatePayment persists the payment-facing fields of an order.
func (p *PostgreSQLOrderRepository) UpdatePayment(ctx context.Context, order *orderDomain.Order) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE orders
			  SET payment_status = $1, status = $2, notes = $3, paid_at = $4, updated_at = NOW()
			  WHERE id = $5`

	result, err := querier.ExecContext(
		ctx,
		query,
		order.PaymentStatus,
		order.Status,
		order.Notes,
		order.PaidAt,
		order.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update order payment")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return orderDomain.ErrOrderNotFound
	}
	return nil
}

// CreateEvent appends an entry to the order history.
func (p *PostgreSQLOrderRepository) CreateEvent(ctx context.Context, event *orderDomain.OrderEvent) error {
	querier := database.GetTx(ctx, p.db)

	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal order event metadata")
	}

	query := `INSERT INTO order_events (id, order_id, event_type, status, description, metadata, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = querier.ExecContext(
		ctx,
		query,
		event.ID,
		event.OrderID,
		event.EventType,
		event.Status,
		event.Description,
		metadata,
		event.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create order event")
	}
	return nil
}

// ListEvents returns the history of an order, oldest first.
func (p *PostgreSQLOrderRepository) ListEvents(
	ctx context.Context,
	orderID uuid.UUID,
) ([]*orderDomain.OrderEvent, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, order_id, event_type, status, description, metadata, created_at
			  FROM order_events
			  WHERE order_id = $1
			  ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list order events")
	}
	defer rows.Close() //nolint:errcheck

	events := make([]*orderDomain.OrderEvent, 0)
	for rows.Next() {
		var event orderDomain.OrderEvent
		var metadata []byte
		if err := rows.Scan(
			&event.ID,
			&event.OrderID,
			&event.EventType,
			&event.Status,
			&event.Description,
			&metadata,
			&event.CreatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan order event")
		}
		if err := json.Unmarshal(metadata, &event.Metadata); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal order event metadata")
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate order events")
	}
	return events, nil
}

// ListItems returns the lines of an order.
func (p *PostgreSQLOrderRepository) ListItems(
	ctx context.Context,
	orderID uuid.UUID,
) ([]*orderDomain.OrderItem, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, order_id, product_id, vendor_id, quantity, unit_price
			  FROM order_items
			  WHERE order_id = $1
			  ORDER BY created_at ASC, id ASC`

	rows, err := querier.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list order items")
	}
	defer rows.Close() //nolint:errcheck

	items := make([]*orderDomain.OrderItem, 0)
	for rows.Next() {
		var item orderDomain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.VendorID,
			&item.Quantity,
			&item.UnitPrice,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan order item")
		}
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate order items")
	}
	return items, nil
}
