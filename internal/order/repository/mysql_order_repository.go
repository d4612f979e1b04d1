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

const mysqlOrderColumns = `id, order_number, payment_reference, payment_status, status, total_amount,
	notes, paid_at, created_at, updated_at`

// MySQLOrderRepository implements order persistence for MySQL databases.
// UUIDs are stored as BINARY(16).
type MySQLOrderRepository struct {
	db *sql.DB
}

// NewMySQLOrderRepository creates a new MySQL order repository.
func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

// Create inserts a new order.
func (m *MySQLOrderRepository) Create(ctx context.Context, order *orderDomain.Order) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO orders (id, order_number, payment_reference, payment_status, status, total_amount,
			  notes, paid_at, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, NOW(6), NOW(6))`

	_, err := querier.ExecContext(
		ctx,
		query,
		database.UUIDToBinary(order.ID),
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
func (m *MySQLOrderRepository) CreateItem(ctx context.Context, item *orderDomain.OrderItem) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO order_items (id, order_id, product_id, vendor_id, quantity, unit_price, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, NOW(6))`

	_, err := querier.ExecContext(
		ctx,
		query,
		database.UUIDToBinary(item.ID),
		database.UUIDToBinary(item.OrderID),
		database.UUIDToBinary(item.ProductID),
		database.UUIDToBinary(item.VendorID),
		item.Quantity,
		item.UnitPrice,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create order item")
	}
	return nil
}

// GetByID retrieves an order by its identifier.
func (m *MySQLOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*orderDomain.Order, error) {
	query := `SELECT ` + mysqlOrderColumns + ` FROM orders WHERE id = ?`
	return m.getOne(ctx, query, "failed to get order by id", database.UUIDToBinary(id))
}

// GetByIDForUpdate retrieves an order by id and locks the row for the current transaction.
func (m *MySQLOrderRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*orderDomain.Order, error) {
	query := `SELECT ` + mysqlOrderColumns + ` FROM orders WHERE id = ? FOR UPDATE`
	return m.getOne(ctx, query, "failed to lock order", database.UUIDToBinary(id))
}

// GetByOrderNumber retrieves an order by its human-facing order number.
func (m *MySQLOrderRepository) GetByOrderNumber(
	ctx context.Context,
	orderNumber string,
) (*orderDomain.Order, error) {
	query := `SELECT ` + mysqlOrderColumns + ` FROM orders WHERE order_number = ?`
	return m.getOne(ctx, query, "failed to get order by number", orderNumber)
}

// GetByPaymentReference retrieves an order by the provider payment reference.
func (m *MySQLOrderRepository) GetByPaymentReference(
	ctx context.Context,
	reference string,
) (*orderDomain.Order, error) {
	query := `SELECT ` + mysqlOrderColumns + ` FROM orders WHERE payment_reference = ?`
	return m.getOne(ctx, query, "failed to get order by payment reference", reference)
}

func (m *MySQLOrderRepository) getOne(
	ctx context.Context,
	query, errMessage string,
	arg any,
) (*orderDomain.Order, error) {
	querier := database.GetTx(ctx, m.db)

	var order orderDomain.Order
	var id []byte
	err := querier.QueryRowContext(ctx, query, arg).Scan(
		&id,
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

	if order.ID, err = database.UUIDFromBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse order id")
	}
	return &order, nil
}

// UpdatePayment persists the payment-facing fields of an order.
func (m *MySQLOrderRepository) UpdatePayment(ctx context.Context, order *orderDomain.Order) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE orders
			  SET payment_status = ?, status = ?, notes = ?, paid_at = ?, updated_at = NOW(6)
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		order.PaymentStatus,
		order.Status,
		order.Notes,
		order.PaidAt,
		database.UUIDToBinary(order.ID),
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
func (m *MySQLOrderRepository) CreateEvent(ctx context.Context, event *orderDomain.OrderEvent) error {
	querier := database.GetTx(ctx, m.db)

	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal order event metadata")
	}

	query := `INSERT INTO order_events (id, order_id, event_type, status, description, metadata, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		database.UUIDToBinary(event.ID),
		database.UUIDToBinary(event.OrderID),
		event.EventType,
		event.Status,
		event.Description,
		string(metadata),
		event.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create order event")
	}
	return nil
}

// ListEvents returns the history of an order, oldest first.
func (m *MySQLOrderRepository) ListEvents(
	ctx context.Context,
	orderID uuid.UUID,
) ([]*orderDomain.OrderEvent, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, order_id, event_type, status, description, metadata, created_at
			  FROM order_events
			  WHERE order_id = ?
			  ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, database.UUIDToBinary(orderID))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list order events")
	}
	defer rows.Close() //nolint:errcheck

	events := make([]*orderDomain.OrderEvent, 0)
	for rows.Next() {
		var event orderDomain.OrderEvent
		var id, eventOrderID, metadata []byte
		if err := rows.Scan(
			&id,
			&eventOrderID,
			&event.EventType,
			&event.Status,
			&event.Description,
			&metadata,
			&event.CreatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan order event")
		}
		if event.ID, err = database.UUIDFromBinary(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to parse order event id")
		}
		if event.OrderID, err = database.UUIDFromBinary(eventOrderID); err != nil {
			return nil, apperrors.Wrap(err, "failed to parse order id")
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
func (m *MySQLOrderRepository) ListItems(
	ctx context.Context,
	orderID uuid.UUID,
) ([]*orderDomain.OrderItem, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, order_id, product_id, vendor_id, quantity, unit_price
			  FROM order_items
			  WHERE order_id = ?
			  ORDER BY created_at ASC, id ASC`

	rows, err := querier.QueryContext(ctx, query, database.UUIDToBinary(orderID))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list order items")
	}
	defer rows.Close() //nolint:errcheck

	items := make([]*orderDomain.OrderItem, 0)
	for rows.Next() {
		var item orderDomain.OrderItem
		var id, itemOrderID, productID, vendorID []byte
		if err := rows.Scan(
			&id,
			&itemOrderID,
			&productID,
			&vendorID,
			&item.Quantity,
			&item.UnitPrice,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan order item")
		}
		for _, pair := range []struct {
			dst *uuid.UUID
			src []byte
		}{
			{&item.ID, id},
			{&item.OrderID, itemOrderID},
			{&item.ProductID, productID},
			{&item.VendorID, vendorID},
		} {
			if *pair.dst, err = database.UUIDFromBinary(pair.src); err != nil {
				return nil, apperrors.Wrap(err, "failed to parse order item uuid")
			}
		}
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate order items")
	}
	return items, nil
}
