// Package domain defines vendor commission entries posted when an order is settled.
package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	orderDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/order/domain"
)

// Entry is the commission owed by one vendor for one settled order.
type Entry struct {
	ID               uuid.UUID
	OrderID          uuid.UUID
	VendorID         uuid.UUID
	GrossAmount      decimal.Decimal
	Rate             decimal.Decimal
	CommissionAmount decimal.Decimal
	VendorPayout     decimal.Decimal
	CreatedAt        time.Time
}

// Compute groups order lines by vendor and splits each vendor's gross into the
// marketplace commission and the vendor payout. Amounts are rounded to cents.
func Compute(orderID uuid.UUID, items []*orderDomain.OrderItem, rate decimal.Decimal) ([]*Entry, error) {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, ErrInvalidRate
	}

	gross := make(map[uuid.UUID]decimal.Decimal)
	for _, item := range items {
		gross[item.VendorID] = gross[item.VendorID].Add(item.Subtotal())
	}

	vendors := make([]uuid.UUID, 0, len(gross))
	for vendorID := range gross {
		vendors = append(vendors, vendorID)
	}
	sort.Slice(vendors, func(i, j int) bool {
		return vendors[i].String() < vendors[j].String()
	})

	now := time.Now().UTC()
	entries := make([]*Entry, 0, len(vendors))
	for _, vendorID := range vendors {
		amount := gross[vendorID].Round(2)
		commission := amount.Mul(rate).Round(2)
		entries = append(entries, &Entry{
			ID:               uuid.Must(uuid.NewV7()),
			OrderID:          orderID,
			VendorID:         vendorID,
			GrossAmount:      amount,
			Rate:             rate,
			CommissionAmount: commission,
			VendorPayout:     amount.Sub(commission),
			CreatedAt:        now,
		})
	}
	return entries, nil
}
