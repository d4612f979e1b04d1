package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReservationStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     ReservationStatus
		to       ReservationStatus
		expected bool
	}{
		{ReservationStatusActive, ReservationStatusCommitted, true},
		{ReservationStatusActive, ReservationStatusReleased, true},
		{ReservationStatusActive, ReservationStatusActive, false},
		{ReservationStatusCommitted, ReservationStatusReleased, false},
		{ReservationStatusCommitted, ReservationStatusActive, false},
		{ReservationStatusReleased, ReservationStatusCommitted, false},
		{ReservationStatusReleased, ReservationStatusActive, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestProduct_Available(t *testing.T) {
	p := &Product{StockQuantity: 10, ReservedQuantity: 3}
	assert.Equal(t, 7, p.Available())
}
