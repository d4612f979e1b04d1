// Package repository implements commission entry persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	commissionDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/commission/domain"
	"github.com/getachewzemene/minalesh-amplify-sub001/internal/database"
	apperrors "github.com/getachewzemene/minalesh-amplify-sub001/internal/errors"
)

// PostgreSQLCommissionRepository implements commission persistence for PostgreSQL databases.
type PostgreSQLCommissionRepository struct {
	db *sql.DB
}

// NewPostgreSQLCommissionRepository creates a new PostgreSQL commission repository.
func NewPostgreSQLCommissionRepository(db *sql.DB) *PostgreSQLCommissionRepository {
	return &PostgreSQLCommissionRepository{db: db}
}

// Create inserts an entry unless one already exists for the same order and vendor.
// It reports whether a row was written.
func (p *PostgreSQLCommissionRepository) Create(ctx context.Context, entry *commissionDomain.Entry) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO commission_entries (id, order_id, vendor_id, gross_amount, rate, commission_amount,
			  vendor_payout, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  ON CONFLICT (order_id, vendor_id) DO NOTHING`

	result, err := querier.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.OrderID,
		entry.VendorID,
		entry.GrossAmount,
		entry.Rate,
		entry.CommissionAmount,
		entry.VendorPayout,
		entry.CreatedAt,
	)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to create commission entry")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to get rows affected")
	}
	return rows == 1, nil
}

// ListByOrder returns the entries of an order.
func (p *PostgreSQLCommissionRepository) ListByOrder(
	ctx context.Context,
	orderID uuid.UUID,
) ([]*commissionDomain.Entry, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, order_id, vendor_id, gross_amount, rate, commission_amount, vendor_payout, created_at
			  FROM commission_entries
			  WHERE order_id = $1
			  ORDER BY vendor_id ASC`

	rows, err := querier.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list commission entries")
	}
	defer rows.Close() //nolint:errcheck

	entries := make([]*commissionDomain.Entry, 0)
	for rows.Next() {
		var entry commissionDomain.Entry
		if err := rows.Scan(
			&entry.ID,
			&entry.OrderID,
			&entry.VendorID,
			&entry.GrossAmount,
			&entry.Rate,
			&entry.CommissionAmount,
			&entry.VendorPayout,
			&entry.CreatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan commission entry")
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate commission entries")
	}
	return entries, nil
}
