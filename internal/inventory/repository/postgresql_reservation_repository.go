// Package repository implements inventory persistence for PostgreSQL and MySQL.
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

// PostgreSQLReservationRepository implements reservation and stock persistence for PostgreSQL.
type PostgreSQLReservationRepository struct {
	db *sql.DB
}

// NewPostgreSQLReservationRepository creates a new PostgreSQL reservation repository.
func NewPostgreSQLReservationRepository(db *sql.DB) *PostgreSQLReservationRepository {
	return &PostgreSQLReservationRepository{db: db}
}

// CreateProduct inserts a product with its stock counters.
func (p *PostgreSQLReservationRepository) CreateProduct(ctx context.Context, product *inventoryDomain.Product) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO products (id, vendor_id, name, price, stock_quantity, reserved_quantity, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())`

	_, err := querier.ExecContext(
		ctx,
		query,
		product.ID,
		product.VendorID,
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
func (p *PostgreSQLReservationRepository) GetProduct(
	ctx context.Context,
	id uuid.UUID,
) (*inventoryDomain.Product, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, vendor_id, name, price, stock_quantity, reserved_quantity, created_at, updated_at
			  FROM products WHERE id = $1`

	var product inventoryDomain.Product
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.VendorID,
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
	return &product, nil
}

// HoldStock increments the reserved counter when enough unreserved stock exists.
// Returns false when the product cannot cover the quantity.
func (p *PostgreSQLReservationRepository) HoldStock(ctx context.Context, productID uuid.UUID, quantity int) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE products
			  SET reserved_quantity = reserved_quantity + $1, updated_at = NOW()
			  WHERE id = $2 AND stock_quantity - reserved_quantity >= $1`

	return execAffected(ctx, querier, "failed to hold stock", query, quantity, productID)
}

// ApplyCommit converts held units into sold units.
func (p *PostgreSQLReservationRepository) ApplyCommit(ctx context.Context, productID uuid.UUID, quantity int) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE products
			  SET stock_quantity = stock_quantity - $1,
			      reserved_quantity = GREATEST(reserved_quantity - $1, 0),
			      updated_at = NOW()
			  WHERE id = $2`

	if _, err := querier.ExecContext(ctx, query, quantity, productID); err != nil {
		return apperrors.Wrap(err, "failed to apply reservation commit to stock")
	}
	return nil
}

// ApplyRelease returns held units to available stock.
func (p *PostgreSQLReservationRepository) ApplyRelease(ctx context.Context, productID uuid.UUID, quantity int) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE products
			  SET reserved_quantity = GREATEST(reserved_quantity - $1, 0), updated_at = NOW()
			  WHERE id = $2`

	if _, err := querier.ExecContext(ctx, query, quantity, productID); err != nil {
		return apperrors.Wrap(err, "failed to apply reservation release to stock")
	}
	return nil
}

// Create inserts a reservation.
func (p *PostgreSQLReservationRepository) Create(
	ctx context.Context,
	reservation *inventoryDomain.Reservation,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO inventory_reservations (id, order_id, product_id, quantity, status, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(
		ctx,
		query,
		reservation.ID,
		reservation.OrderID,
		reservation.ProductID,
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
func (p *PostgreSQLReservationRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*inventoryDomain.Reservation, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, order_id, product_id, quantity, status, created_at, updated_at
			  FROM inventory_reservations WHERE id = $1`

	var reservation inventoryDomain.Reservation
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&reservation.ID,
		&reservation.OrderID,
		&reservation.ProductID,
		&reservation.Quantity,
		&reservation.Status,
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, inventoryDomain.ErrReservationNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get reservation")
	}
	return &reservation, nil
}

// ListActiveByOrder returns the reservations of an order that still hold stock.
func (p *PostgreSQLReservationRepository) ListActiveByOrder(
	ctx context.Context,
	orderID uuid.UUID,
) ([]*inventoryDomain.Reservation, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, order_id, product_id, quantity, status, created_at, updated_at
			  FROM inventory_reservations
			  WHERE order_id = $1 AND status = $2
			  ORDER BY created_at ASC, id ASC`

	rows, err := querier.QueryContext(ctx, query, orderID, inventoryDomain.ReservationStatusActive)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list active reservations")
	}
	defer rows.Close() //nolint:errcheck

	reservations := make([]*inventoryDomain.Reservation, 0)
	for rows.Next() {
		var reservation inventoryDomain.Reservation
		if err := rows.Scan(
			&reservation.ID,
			&reservation.OrderID,
			&reservation.ProductID,
			&reservation.Quantity,
			&reservation.Status,
			&reservation.CreatedAt,
			&reservation.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan reservation")
		}
		reservations = append(reservations, &reservation)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate reservations")
	}
	return reservations, nil
}

// MarkCommitted moves an active reservation of orderID to committed.
// Returns false when the reservation is not active or belongs to another order.
func (p *PostgreSQLReservationRepository) MarkCommitted(
	ctx context.Context,
	id, orderID uuid.UUID,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE inventory_reservations
			  SET status = $1, updated_at = NOW()
			  WHERE id = $2 AND order_id = $3 AND status = $4`

	return execAffected(ctx, querier, "failed to commit reservation", query,
		inventoryDomain.ReservationStatusCommitted, id, orderID, inventoryDomain.ReservationStatusActive)
}

// MarkReleased moves an active reservation to released.
// Returns false when the reservation is not active.
func (p *PostgreSQLReservationRepository) MarkReleased(ctx context.Context, id uuid.UUID) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE inventory_reservations
			  SET status = $1, updated_at = NOW()
			  WHERE id = $2 AND status = $3`

	return execAffected(ctx, querier, "failed to release reservation", query,
		inventoryDomain.ReservationStatusReleased, id, inventoryDomain.ReservationStatusActive)
}

// execAffected runs a conditional write and reports whether it touched a row.
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
