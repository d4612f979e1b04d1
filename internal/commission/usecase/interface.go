// Package usecase posts vendor commission entries for settled orders.
package usecase

import (
	"context"

	"github.com/google/uuid"

	commissionDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/commission/domain"
	orderDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/order/domain"
)

// CommissionRepository persists commission entries.
type CommissionRepository interface {
	// Create inserts an entry and reports false when the (order, vendor) pair already exists.
	Create(ctx context.Context, entry *commissionDomain.Entry) (bool, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*commissionDomain.Entry, error)
}

// OrderReader is the read side of the order store needed to compute commission.
type OrderReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*orderDomain.Order, error)
	ListItems(ctx context.Context, orderID uuid.UUID) ([]*orderDomain.OrderItem, error)
}

// CommissionUseCase defines commission posting operations.
type CommissionUseCase interface {
	// PostForOrder records one entry per vendor of a completed order and returns
	// how many entries were newly created. Posting twice creates nothing the second time.
	PostForOrder(ctx context.Context, orderID uuid.UUID) (int, error)

	// ListByOrder returns the entries posted for an order.
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*commissionDomain.Entry, error)
}
