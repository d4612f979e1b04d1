package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/getachewzemene/minalesh-amplify-sub001/internal/database"
	apperrors "github.com/getachewzemene/minalesh-amplify-sub001/internal/errors"
	inventoryDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/inventory/domain"
)

// MySQLReservationRepository implements reservation and stock persistence for MySQL.
// UUIDs are stored as BINARY(16).
type MySQLReservationRepository struct {
	db *sql.DB
}

// NewMySQLReservationRepository creates a new MySQL reservation repository.
func NewMySQLReservationRepository(db *sql.DB) *MySQLReservationRepository {
	return &MySQLReservationRepository{db: db}
}

// CreateProduct inserts a product with its stock counters.
func (m *MySQLReservationRepository) CreateProduct(ctx context.Context, product *inventoryDomain.Product) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO products (id, vendor_id, name, price, stock_quantity, reserved_quantity, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, NOW(6), NOW(6))`

	_, err := querier.ExecContext(
		ctx,
		query,
		database.UUIDToBinary(product.ID),
		database.UUIDToBinary(product.VendorID),
		product.Name,
		product.Price,
		product.StockQuantity,
		product.ReservedQuantity,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create product")
	}
	return nil
}

// GetProduct retrieves a product by id.
func (m *MySQLReservationRepository) GetProduct(ctx context.Context, id uuid.UUID) (*inventoryDomain.Product, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, vendor_id, name, price, stock_quantity, reserved_quantity, created_at, updated_at
			  FROM products WHERE id = ?`

	var product inventoryDomain.Product
	var productID, vendorID []byte
	err := querier.QueryRowContext(ctx, query, database.UUIDToBinary(id)).Scan(
		&productID,
		&vendorID,
		&product.Name,
		&product.Price,
		&product.StockQuantity,
		&product.ReservedQuantity,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, inventoryDomain.ErrProductNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get product")
	}

	if product.ID, err = database.UUIDFromBinary(productID); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse product id")
	}
	if product.VendorID, err = database.UUIDFromBinary(vendorID); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse vendor id")
	}
	return &product, nil
}

// HoldStock increments the reserved counter when enough unreserved stock exists.
func (m *MySQLReservationRepository) HoldStock(ctx context.Context, productID uuid.UUID, quantity int) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE products
			  SET reserved_quantity = reserved_quantity + ?, updated_at = NOW(6)
			  WHERE id = ? AND stock_quantity - reserved_quantity >= ?`

	return execAffected(ctx, querier, "failed to hold stock", query,
		quantity, database.UUIDToBinary(productID), quantity)
}

// ApplyCommit converts held units into sold units.
func (m *MySQLReservationRepository) ApplyCommit(ctx context.Context, productID uuid.UUID, quantity int) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE products
			  SET stock_quantity = stock_quantity - ?,
			      reserved_quantity = GREATEST(reserved_quantity - ?, 0),
			      updated_at = NOW(6)
			  WHERE id = ?`

	if _, err := querier.ExecContext(ctx, query, quantity, quantity, database.UUIDToBinary(productID)); err != nil {
		return apperrors.Wrap(err, "failed to apply reservation commit to stock")
	}
	return nil
}

// ApplyRelease returns held units to available stock.
func (m *MySQLReservationRepository) ApplyRelease(ctx context.Context, productID uuid.UUID, quantity int) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE products
			  SET reserved_quantity = GREATEST(reserved_quantity - ?, 0), updated_at = NOW(6)
			  WHERE id = ?`

	if _, err := querier.ExecContext(ctx, query, quantity, database.UUIDToBinary(productID)); err != nil {
		return apperrors.Wrap(err, "failed to apply reservation release to stock")
	}
	return nil
}

// Create inserts a reservation.
func (m *MySQLReservationRepository) Create(ctx context.Context, reservation *inventoryDomain.Reservation) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO inventory_reservations (id, order_id, product_id, quantity, status, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		database.UUIDToBinary(reservation.ID),
		database.UUIDToBinary(reservation.OrderID),
		database.UUIDToBinary(reservation.ProductID),
		reservation.Quantity,
		reservation.Status,
		reservation.CreatedAt,
		reservation.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create reservation")
	}
	return nil
}

// GetByID retrieves a reservation by id.
func (m *MySQLReservationRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*inventoryDomain.Reservation, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, order_id, product_id, quantity, status, created_at, updated_at
			  FROM inventory_reservations WHERE id = ?`

	row := querier.QueryRowContext(ctx, query, database.UUIDToBinary(id))
	reservation, err := scanMySQLReservation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, inventoryDomain.ErrReservationNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get reservation")
	}
	return reservation, nil
}

// ListActiveByOrder returns the reservations of an order that still hold stock.
func (m *MySQLReservationRepository) ListActiveByOrder(
	ctx context.Context,
	orderID uuid.UUID,
) ([]*inventoryDomain.Reservation, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, order_id, product_id, quantity, status, created_at, updated_at
			  FROM inventory_reservations
			  WHERE order_id = ? AND status = ?
			  ORDER BY created_at ASC, id ASC`

	rows, err := querier.QueryContext(ctx, query,
		database.UUIDToBinary(orderID), inventoryDomain.ReservationStatusActive)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list active reservations")
	}
	defer rows.Close() //nolint:errcheck

	reservations := make([]*inventoryDomain.Reservation, 0)
	for rows.Next() {
		reservation, err := scanMySQLReservation(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan reservation")
		}
		reservations = append(reservations, reservation)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate reservations")
	}
	return reservations, nil
}

// MarkCommitted moves an active reservation of orderID to committed.
func (m *MySQLReservationRepository) MarkCommitted(ctx context.Context, id, orderID uuid.UUID) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE inventory_reservations
			  SET status = ?, updated_at = NOW(6)
			  WHERE id = ? AND order_id = ? AND status = ?`

	return execAffected(ctx, querier, "failed to commit reservation", query,
		inventoryDomain.ReservationStatusCommitted,
		database.UUIDToBinary(id),
		database.UUIDToBinary(orderID),
		inventoryDomain.ReservationStatusActive,
	)
}

// MarkReleased moves an active reservation to released.
func (m *MySQLReservationRepository) MarkReleased(ctx context.Context, id uuid.UUID) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE inventory_reservations
			  SET status = ?, updated_at = NOW(6)
			  WHERE id = ? AND status = ?`

	return execAffected(ctx, querier, "failed to release reservation", query,
		inventoryDomain.ReservationStatusReleased,
		database.UUIDToBinary(id),
		inventoryDomain.ReservationStatusActive,
	)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMySQLReservation(row rowScanner) (*inventoryDomain.Reservation, error) {
	var reservation inventoryDomain.Reservation
	var id, orderID, productID []byte
	if err := row.Scan(
		&id,
		&orderID,
		&productID,
		&reservation.Quantity,
		&reservation.Status,
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if reservation.ID, err = database.UUIDFromBinary(id); err != nil {
		return nil, err
	}
	if reservation.OrderID, err = database.UUIDFromBinary(orderID); err != nil {
		return nil, err
	}
	if reservation.ProductID, err = database.UUIDFromBinary(productID); err != nil {
		return nil, err
	}
	return &reservation, nil
}
