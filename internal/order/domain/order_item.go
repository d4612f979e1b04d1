package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is a line of an order sold by a single vendor.
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	VendorID  uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal returns quantity times unit price.
func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
