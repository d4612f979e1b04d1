package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	commissionDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/commission/domain"
	"github.com/getachewzemene/minalesh-amplify-sub001/internal/database"
	apperrors "github.com/getachewzemene/minalesh-amplify-sub001/internal/errors"
)

// MySQLCommissionRepository implements commission persistence for MySQL databases.
// UUIDs are stored as BINARY(16).
type MySQLCommissionRepository struct {
	db *sql.DB
}

// NewMySQLCommissionRepository creates a new MySQL commission repository.
func NewMySQLCommissionRepository(db *sql.DB) *MySQLCommissionRepository {
	return &MySQLCommissionRepository{db: db}
}

// Create inserts an entry unless one already exists for the same order and vendor.
func (m *MySQLCommissionRepository) Create(ctx context.Context, entry *commissionDomain.Entry) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO commission_entries (id, order_id, vendor_id, gross_amount, rate, commission_amount,
			  vendor_payout, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		database.UUIDToBinary(entry.ID),
		database.UUIDToBinary(entry.OrderID),
		database.UUIDToBinary(entry.VendorID),
		entry.GrossAmount,
		entry.Rate,
		entry.CommissionAmount,
		entry.VendorPayout,
		entry.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return false, nil
		}
		return false, apperrors.Wrap(err, "failed to create commission entry")
	}
	return true, nil
}

// ListByOrder returns the entries of an order.
func (m *MySQLCommissionRepository) ListByOrder(
	ctx context.Context,
	orderID uuid.UUID,
) ([]*commissionDomain.Entry, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, order_id, vendor_id, gross_amount, rate, commission_amount, vendor_payout, created_at
			  FROM commission_entries
			  WHERE order_id = ?
			  ORDER BY vendor_id ASC`

	rows, err := querier.QueryContext(ctx, query, database.UUIDToBinary(orderID))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list commission entries")
	}
	defer rows.Close() //nolint:errcheck

	entries := make([]*commissionDomain.Entry, 0)
	for rows.Next() {
		var entry commissionDomain.Entry
		var id, order, vendor []byte
		if err := rows.Scan(
			&id,
			&order,
			&vendor,
			&entry.GrossAmount,
			&entry.Rate,
			&entry.CommissionAmount,
			&entry.VendorPayout,
			&entry.CreatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan commission entry")
		}
		if entry.ID, err = database.UUIDFromBinary(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to parse commission entry id")
		}
		if entry.OrderID, err = database.UUIDFromBinary(order); err != nil {
			return nil, apperrors.Wrap(err, "failed to parse commission order id")
		}
		if entry.VendorID, err = database.UUIDFromBinary(vendor); err != nil {
			return nil, apperrors.Wrap(err, "failed to parse commission vendor id")
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate commission entries")
	}
	return entries, nil
}
