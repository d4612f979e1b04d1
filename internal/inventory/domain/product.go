package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product carries the stock counters touched by reservations.
type Product struct {
	ID               uuid.UUID
	VendorID         uuid.UUID
	Name             string
	Price            decimal.Decimal
	StockQuantity    int
	ReservedQuantity int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Available returns the units that are neither sold nor held.
func (p *Product) Available() int {
	return p.StockQuantity - p.ReservedQuantity
}
